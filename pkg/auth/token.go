package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintUserToken issues a signed JWT for an owner session.
func MintUserToken(cfg config.JWTConfig, now time.Time, userID uuid.UUID) (string, error) {
	if err := validateJWTConfig(cfg); err != nil {
		return "", err
	}
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id is required")
	}

	claims := UserClaims{
		UserID:           userID,
		RegisteredClaims: registeredClaims(cfg, now),
	}

	return sign(cfg, claims)
}

// MintAdminToken issues a signed JWT for a factory-panel admin session.
func MintAdminToken(cfg config.JWTConfig, now time.Time, adminID uuid.UUID) (string, error) {
	if err := validateJWTConfig(cfg); err != nil {
		return "", err
	}
	if adminID == uuid.Nil {
		return "", fmt.Errorf("admin id is required")
	}

	claims := AdminClaims{
		AdminID:          adminID,
		IsAdmin:          true,
		RegisteredClaims: registeredClaims(cfg, now),
	}

	return sign(cfg, claims)
}

// ParseUserToken validates the JWT string and returns typed owner claims.
func ParseUserToken(cfg config.JWTConfig, tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := parse(cfg, tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseAdminToken validates the JWT string and returns typed admin claims.
// Tokens without the is_admin marker are rejected even when the signature
// checks out, so an owner token can never reach an admin route.
func ParseAdminToken(cfg config.JWTConfig, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := parse(cfg, tokenString, claims); err != nil {
		return nil, err
	}
	if !claims.IsAdmin || claims.AdminID == uuid.Nil {
		return nil, fmt.Errorf("token does not carry admin privileges")
	}
	return claims, nil
}

func registeredClaims(cfg config.JWTConfig, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL())),
		ID:        uuid.NewString(),
	}
}

func sign(cfg config.JWTConfig, claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

func parse(cfg config.JWTConfig, tokenString string, claims jwt.Claims) error {
	if cfg.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	return err
}

func validateJWTConfig(cfg config.JWTConfig) error {
	if cfg.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return fmt.Errorf("jwt issuer is required")
	}
	if cfg.TokenTTL() <= 0 {
		return fmt.Errorf("jwt expiration must be positive")
	}
	return nil
}

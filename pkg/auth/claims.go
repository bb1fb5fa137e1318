package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserClaims is the typed JWT issued to pet owners.
type UserClaims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// AdminClaims is the typed JWT issued to factory-panel admins.
type AdminClaims struct {
	AdminID uuid.UUID `json:"admin_id"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}

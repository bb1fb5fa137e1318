package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/wooftrace/wooftrace-backend/pkg/auth"
	"github.com/wooftrace/wooftrace-backend/pkg/config"
	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/security"
)

type adminsRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	CreateFirst(ctx context.Context, admin *models.Admin) (bool, error)
}

// LoginRequest captures the admin credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetupRequest creates the very first admin account.
type SetupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
}

// AdminDTO is the transport shape for admin accounts.
type AdminDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// LoginResponse contains the admin bearer token.
type LoginResponse struct {
	Token string    `json:"token"`
	Admin *AdminDTO `json:"admin"`
}

// Service exposes the factory-panel admin account operations.
type Service interface {
	Login(ctx context.Context, input LoginRequest) (*LoginResponse, error)
	Bootstrap(ctx context.Context, input SetupRequest) (*AdminDTO, error)
}

type service struct {
	repo adminsRepository
	jwt  config.JWTConfig
	now  func() time.Time
}

func NewService(repo adminsRepository, jwt config.JWTConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	return &service{repo: repo, jwt: jwt, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, input LoginRequest) (*LoginResponse, error) {
	admin, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup admin")
	}

	if !security.VerifyPassword(input.Password, admin.PasswordHash) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := pkgauth.MintAdminToken(s.jwt, s.now(), admin.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint admin token")
	}

	return &LoginResponse{Token: token, Admin: toDTO(admin)}, nil
}

// Bootstrap creates the first admin account. Once any admin exists the
// endpoint is permanently closed.
func (s *service) Bootstrap(ctx context.Context, input SetupRequest) (*AdminDTO, error) {
	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	admin := &models.Admin{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
	}

	created, err := s.repo.CreateFirst(ctx, admin)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
	}
	if !created {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "setup already completed")
	}

	return toDTO(admin), nil
}

func toDTO(admin *models.Admin) *AdminDTO {
	if admin == nil {
		return nil
	}
	return &AdminDTO{ID: admin.ID, Email: admin.Email, Name: admin.Name}
}

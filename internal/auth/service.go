package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/internal/notifications"
	"github.com/wooftrace/wooftrace-backend/internal/users"
	pkgauth "github.com/wooftrace/wooftrace-backend/pkg/auth"
	"github.com/wooftrace/wooftrace-backend/pkg/config"
	"github.com/wooftrace/wooftrace-backend/pkg/db"
	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
	"github.com/wooftrace/wooftrace-backend/pkg/security"
)

const (
	verificationTokenBytes = 32
	verificationTTL        = 24 * time.Hour
	resetTokenBytes        = 32
	resetTTL               = time.Hour
)

type usersRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// Service exposes owner registration, login, and the email-token flows.
type Service interface {
	Register(ctx context.Context, input RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, input LoginRequest) (*LoginResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input ResetPasswordRequest) error
}

type service struct {
	repo     usersRepository
	notifier notifications.Notifier
	jwt      config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the auth service backed by the user repository and notifier.
func NewService(repo usersRepository, notifier notifications.Notifier, jwt config.JWTConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     repo,
		notifier: notifier,
		jwt:      jwt,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	token, err := security.GenerateToken(verificationTokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
	}
	expires := s.now().Add(verificationTTL)

	user := &models.User{
		Email:                    email,
		PasswordHash:             hash,
		Name:                     strings.TrimSpace(input.Name),
		EmailVerificationToken:   &token,
		EmailVerificationExpires: &expires,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	s.notify(ctx, notifications.Event{
		Kind:  notifications.KindEmailVerification,
		To:    created.Email,
		Name:  created.Name,
		Token: token,
	})
	s.notify(ctx, notifications.Event{Kind: notifications.KindUserRegistered, To: created.Email})

	return &RegisterResponse{
		Message: "registration successful, check your email to verify your account",
		User:    users.FromModel(created),
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	if !security.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if !user.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "email not verified")
	}

	token, err := pkgauth.MintUserToken(s.jwt, s.now(), user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	return &LoginResponse{
		Token: token,
		User:  users.FromModel(user),
	}, nil
}

func (s *service) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}

	user, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup verification token")
	}

	if user.EmailVerificationExpires == nil || s.now().After(*user.EmailVerificationExpires) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification token")
	}

	user.EmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExpires = nil

	if err := s.repo.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark email verified")
	}
	return nil
}

// ResendVerification never reveals whether the address exists.
func (s *service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	if user.EmailVerified {
		return nil
	}

	token, err := security.GenerateToken(verificationTokenBytes)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
	}
	expires := s.now().Add(verificationTTL)
	user.EmailVerificationToken = &token
	user.EmailVerificationExpires = &expires

	if err := s.repo.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification token")
	}

	s.notify(ctx, notifications.Event{
		Kind:  notifications.KindEmailVerification,
		To:    user.Email,
		Name:  user.Name,
		Token: token,
	})
	return nil
}

// ForgotPassword never reveals whether the address exists.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	token, err := security.GenerateToken(resetTokenBytes)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	expires := s.now().Add(resetTTL)
	user.PasswordResetToken = &token
	user.PasswordResetExpires = &expires

	if err := s.repo.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store reset token")
	}

	s.notify(ctx, notifications.Event{
		Kind:  notifications.KindPasswordReset,
		To:    user.Email,
		Name:  user.Name,
		Token: token,
	})
	return nil
}

func (s *service) ResetPassword(ctx context.Context, input ResetPasswordRequest) error {
	user, err := s.repo.FindByResetToken(ctx, input.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired reset token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup reset token")
	}

	if user.PasswordResetExpires == nil || s.now().After(*user.PasswordResetExpires) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired reset token")
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user.PasswordHash = hash
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil

	if err := s.repo.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store new password")
	}
	return nil
}

func (s *service) notify(ctx context.Context, event notifications.Event) {
	if err := s.notifier.Notify(ctx, event); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "kind", string(event.Kind)), "notify.enqueue_failed")
	}
}

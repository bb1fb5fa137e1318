package admins

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/pkg/config"
	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/security"
)

type stubAdminsRepo struct {
	byEmail map[string]*models.Admin
	hasAny  bool
}

func newStubAdminsRepo() *stubAdminsRepo {
	return &stubAdminsRepo{byEmail: map[string]*models.Admin{}}
}

func (s *stubAdminsRepo) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	admin, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return admin, nil
}

func (s *stubAdminsRepo) CreateFirst(_ context.Context, admin *models.Admin) (bool, error) {
	if s.hasAny {
		return false, nil
	}
	s.hasAny = true
	s.byEmail[admin.Email] = admin
	return true, nil
}

func testAdminService(t *testing.T, repo *stubAdminsRepo) Service {
	t.Helper()
	svc, err := NewService(repo, config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationHours: 1})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestBootstrapCreatesFirstAdminOnly(t *testing.T) {
	repo := newStubAdminsRepo()
	svc := testAdminService(t, repo)

	input := SetupRequest{Email: "Admin@Example.com", Password: "factory-pass", Name: "Ops"}
	dto, err := svc.Bootstrap(context.Background(), input)
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if dto.Email != "admin@example.com" {
		t.Fatalf("email should be normalized, got %q", dto.Email)
	}

	_, err = svc.Bootstrap(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("second setup must be forbidden, got %v", err)
	}
}

func TestAdminLogin(t *testing.T) {
	repo := newStubAdminsRepo()
	svc := testAdminService(t, repo)

	hash, _ := security.HashPassword("factory-pass")
	repo.byEmail["admin@example.com"] = &models.Admin{ID: uuid.New(), Email: "admin@example.com", PasswordHash: hash, Name: "Ops"}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "factory-pass"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.Token == "" || resp.Admin == nil {
		t.Fatalf("expected token and admin in response")
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

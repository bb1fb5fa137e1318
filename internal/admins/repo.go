package admins

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

// Repository exposes admin persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail returns the admin with the given email, matched case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).First(&admin, "lower(email) = ?", normalized).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// CreateFirst inserts the admin only while the admins table is empty. The
// guard and the insert are one statement, so two concurrent setup calls
// cannot both succeed. Returns false when an admin already exists.
func (r *Repository) CreateFirst(ctx context.Context, admin *models.Admin) (bool, error) {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	now := time.Now()

	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO admins (id, email, password_hash, name, created_at, updated_at)
		 SELECT ?, ?, ?, ?, ?, ?
		 WHERE NOT EXISTS (SELECT 1 FROM admins)`,
		admin.ID, admin.Email, admin.PasswordHash, admin.Name, now, now,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

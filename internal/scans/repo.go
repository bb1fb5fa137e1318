package scans

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

// Repository exposes location-scan persistence. Scans are append-only; there
// is no update path.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a scan row.
func (r *Repository) Create(ctx context.Context, scan *models.LocationScan) (*models.LocationScan, error) {
	if err := r.db.WithContext(ctx).Create(scan).Error; err != nil {
		return nil, err
	}
	return scan, nil
}

// ListByPet returns the pet's scans newest first, capped at limit.
func (r *Repository) ListByPet(ctx context.Context, petID uuid.UUID, limit int) ([]models.LocationScan, error) {
	var rows []models.LocationScan
	err := r.db.WithContext(ctx).
		Where("pet_id = ?", petID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkEmailSent records that the owner alert for this scan was handed off.
func (r *Repository) MarkEmailSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.LocationScan{}).
		Where("id = ?", id).
		Update("email_sent", true).Error
}

// DeleteByPet removes every scan belonging to the pet.
func (r *Repository) DeleteByPet(ctx context.Context, db *gorm.DB, petID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Delete(&models.LocationScan{}, "pet_id = ?", petID).Error
}

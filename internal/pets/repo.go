package pets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

// Repository exposes pet persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new pet row, optionally inside an existing transaction.
func (r *Repository) Create(ctx context.Context, db *gorm.DB, pet *models.Pet) (*models.Pet, error) {
	if db == nil {
		db = r.db
	}
	if err := db.WithContext(ctx).Create(pet).Error; err != nil {
		return nil, err
	}
	return pet, nil
}

// FindByID returns the pet with the given id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.WithContext(ctx).First(&pet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

// FindByQRCode returns the pet carrying the legacy QR identifier.
func (r *Repository) FindByQRCode(ctx context.Context, qrCode string) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.WithContext(ctx).First(&pet, "qr_code = ?", qrCode).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

// FindByNFCID returns the pet carrying the legacy NFC identifier.
func (r *Repository) FindByNFCID(ctx context.Context, nfcID string) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.WithContext(ctx).First(&pet, "nfc_id = ?", nfcID).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

// ListByOwner returns the owner's pets, newest first.
func (r *Repository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Pet, error) {
	var rows []models.Pet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every pet, newest first, for the admin panel.
func (r *Repository) ListAll(ctx context.Context) ([]models.Pet, error) {
	var rows []models.Pet
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the full pet row.
func (r *Repository) Update(ctx context.Context, pet *models.Pet) error {
	return r.db.WithContext(ctx).Save(pet).Error
}

// UpdateOwner reassigns the pet to a new owner inside an existing transaction.
func (r *Repository) UpdateOwner(ctx context.Context, db *gorm.DB, petID, newUserID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Model(&models.Pet{}).
		Where("id = ?", petID).
		Update("user_id", newUserID).Error
}

// SetTagCodes mirrors the linked tag's code onto the legacy identifier columns.
func (r *Repository) SetTagCodes(ctx context.Context, db *gorm.DB, petID uuid.UUID, tagCode string) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Model(&models.Pet{}).
		Where("id = ?", petID).
		Updates(map[string]any{"qr_code": tagCode, "nfc_id": tagCode}).Error
}

// Delete removes the pet row, optionally inside an existing transaction.
func (r *Repository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Delete(&models.Pet{}, "id = ?", id).Error
}

// CountByUser returns how many pets the given owner holds.
func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Pet{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

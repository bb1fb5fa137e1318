package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

// Repository exposes emergency-contact persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new contact row.
func (r *Repository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// FindByID returns the contact with the given id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// ListByPet returns a pet's contacts ordered by ascending priority. Ties keep
// insertion order via the created_at tiebreak.
func (r *Repository) ListByPet(ctx context.Context, petID uuid.UUID) ([]models.Contact, error) {
	var rows []models.Contact
	err := r.db.WithContext(ctx).
		Where("pet_id = ?", petID).
		Order("priority ASC").Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByPetPublic returns a pet's contacts ordered by descending priority,
// matching the ordering the tag-scan page has always used.
func (r *Repository) ListByPetPublic(ctx context.Context, petID uuid.UUID) ([]models.Contact, error) {
	var rows []models.Contact
	err := r.db.WithContext(ctx).
		Where("pet_id = ?", petID).
		Order("priority DESC").Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the full contact row.
func (r *Repository) Update(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// Delete removes the contact row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id).Error
}

// DeleteByPet removes every contact belonging to the pet.
func (r *Repository) DeleteByPet(ctx context.Context, db *gorm.DB, petID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Delete(&models.Contact{}, "pet_id = ?", petID).Error
}

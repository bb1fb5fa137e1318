package tags

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

// ListFilter is the typed filter for the admin tag listing. Nil fields are
// not applied.
type ListFilter struct {
	BatchNumber *string
	IsActivated *bool
	Linked      *bool
	UserID      *uuid.UUID
	Page        int
	Limit       int
}

// BatchStat is a per-batch tag count.
type BatchStat struct {
	BatchNumber string `json:"batchNumber"`
	Count       int64  `json:"count"`
}

// Stats summarizes the tag inventory.
type Stats struct {
	Total     int64       `json:"total"`
	Activated int64       `json:"activated"`
	Linked    int64       `json:"linked"`
	Available int64       `json:"available"`
	Batches   []BatchStat `json:"batches"`
}

// Repository exposes tag persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tag repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBatch inserts the provided tags in one statement.
func (r *Repository) CreateBatch(ctx context.Context, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tags).Error
}

// FindByID returns the tag with the given id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByActivationCode returns the tag holding the given activation code.
func (r *Repository) FindByActivationCode(ctx context.Context, code string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "activation_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByTagCode returns the tag with the given public tag code.
func (r *Repository) FindByTagCode(ctx context.Context, tagCode string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "tag_code = ?", tagCode).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListByUser returns the tags activated by the given owner, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Tag, error) {
	var rows []models.Tag
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ActivationCodeExists reports whether any tag already carries the code.
func (r *Repository) ActivationCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("activation_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Activate flips the tag to activated and claims it for the owner. The
// update is conditioned on the tag still being unactivated, so of two
// concurrent callers exactly one sees a row change.
func (r *Repository) Activate(ctx context.Context, tagID, userID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("id = ? AND is_activated = ?", tagID, false).
		Updates(map[string]any{
			"is_activated": true,
			"activated_at": at,
			"user_id":      userID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// LinkToPet sets the tag's pet reference, conditioned on it being unlinked.
func (r *Repository) LinkToPet(ctx context.Context, db *gorm.DB, tagID, petID uuid.UUID) (bool, error) {
	if db == nil {
		db = r.db
	}
	result := db.WithContext(ctx).Model(&models.Tag{}).
		Where("id = ? AND pet_id IS NULL", tagID).
		Update("pet_id", petID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Unlink clears the tag's pet reference.
func (r *Repository) Unlink(ctx context.Context, db *gorm.DB, tagID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Model(&models.Tag{}).
		Where("id = ?", tagID).
		Update("pet_id", nil).Error
}

// UnlinkByPet clears the pet reference on whichever tag points at the pet.
func (r *Repository) UnlinkByPet(ctx context.Context, db *gorm.DB, petID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Model(&models.Tag{}).
		Where("pet_id = ?", petID).
		Update("pet_id", nil).Error
}

// UpdateOwner reassigns the tag to a new owner without touching activation state.
func (r *Repository) UpdateOwner(ctx context.Context, db *gorm.DB, tagID, newUserID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Model(&models.Tag{}).
		Where("id = ?", tagID).
		Update("user_id", newUserID).Error
}

// UpdateOwnerByPet reassigns whichever tag points at the pet to a new owner.
func (r *Repository) UpdateOwnerByPet(ctx context.Context, db *gorm.DB, petID, newUserID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Model(&models.Tag{}).
		Where("pet_id = ?", petID).
		Update("user_id", newUserID).Error
}

// Update persists the full tag row.
func (r *Repository) Update(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

// Delete removes the tag row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Tag{}, "id = ?", id).Error
}

// CountByUser returns how many tags the given owner holds.
func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// List returns a page of tags matching the filter plus the unpaged total.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Tag, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Tag{})
	if filter.BatchNumber != nil {
		query = query.Where("batch_number = ?", *filter.BatchNumber)
	}
	if filter.IsActivated != nil {
		query = query.Where("is_activated = ?", *filter.IsActivated)
	}
	if filter.Linked != nil {
		if *filter.Linked {
			query = query.Where("pet_id IS NOT NULL")
		} else {
			query = query.Where("pet_id IS NULL")
		}
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var rows []models.Tag
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CollectStats computes inventory counters across all tags.
func (r *Repository) CollectStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	model := func() *gorm.DB { return r.db.WithContext(ctx).Model(&models.Tag{}) }

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := model().Where("is_activated = ?", true).Count(&stats.Activated).Error; err != nil {
		return nil, err
	}
	if err := model().Where("pet_id IS NOT NULL").Count(&stats.Linked).Error; err != nil {
		return nil, err
	}
	stats.Available = stats.Total - stats.Activated

	err := model().
		Select("batch_number AS batch_number, COUNT(*) AS count").
		Group("batch_number").
		Order("batch_number").
		Scan(&stats.Batches).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

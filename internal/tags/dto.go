package tags

import (
	"time"

	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

// TagDTO is the owner-facing transport shape; the activation code is never
// echoed back once printed.
type TagDTO struct {
	ID          uuid.UUID  `json:"id"`
	TagCode     string     `json:"tagCode"`
	BatchNumber string     `json:"batchNumber"`
	IsActivated bool       `json:"isActivated"`
	ActivatedAt *time.Time `json:"activatedAt"`
	UserID      *uuid.UUID `json:"userId"`
	PetID       *uuid.UUID `json:"petId"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AdminTagDTO adds the activation code for the factory panel.
type AdminTagDTO struct {
	TagDTO
	ActivationCode string `json:"activationCode"`
}

func FromModel(t *models.Tag) *TagDTO {
	if t == nil {
		return nil
	}
	return &TagDTO{
		ID:          t.ID,
		TagCode:     t.TagCode,
		BatchNumber: t.BatchNumber,
		IsActivated: t.IsActivated,
		ActivatedAt: t.ActivatedAt,
		UserID:      t.UserID,
		PetID:       t.PetID,
		CreatedAt:   t.CreatedAt,
	}
}

func AdminFromModel(t *models.Tag) *AdminTagDTO {
	if t == nil {
		return nil
	}
	return &AdminTagDTO{
		TagDTO:         *FromModel(t),
		ActivationCode: t.ActivationCode,
	}
}

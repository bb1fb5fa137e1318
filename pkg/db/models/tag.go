package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag represents a physical QR/NFC tag. It is minted unactivated by the
// factory, claims an owner on activation, and may later be linked to a pet.
// A non-null PetID implies IsActivated.
type Tag struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TagCode        string     `gorm:"column:tag_code;type:text;not null;uniqueIndex"`
	ActivationCode string     `gorm:"column:activation_code;type:text;not null;uniqueIndex"`
	BatchNumber    string     `gorm:"column:batch_number;type:text;not null;index"`
	IsActivated    bool       `gorm:"column:is_activated;not null;default:false"`
	ActivatedAt    *time.Time `gorm:"column:activated_at"`
	UserID         *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	PetID          *uuid.UUID `gorm:"column:pet_id;type:uuid;index"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Tag) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

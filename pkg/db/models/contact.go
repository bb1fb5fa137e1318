package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is an emergency contact attached to a pet. Contacts have no
// independent ownership; access is gated by the parent pet's owner.
type Contact struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PetID     uuid.UUID `gorm:"column:pet_id;type:uuid;not null;index"`
	Name      string    `gorm:"type:text;not null"`
	Relation  *string   `gorm:"type:text"`
	Phone     *string   `gorm:"type:text"`
	Email     *string   `gorm:"type:text"`
	Address   *string   `gorm:"type:text"`
	Facebook  *string   `gorm:"type:text"`
	Instagram *string   `gorm:"type:text"`
	Priority  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Contact) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

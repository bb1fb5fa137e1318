package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationScan is an append-only record of a public page visitor sharing
// their position. Rows are never mutated after insert.
type LocationScan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PetID     uuid.UUID `gorm:"column:pet_id;type:uuid;not null;index"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	Accuracy  *float64  `gorm:"type:double precision"`
	UserAgent *string   `gorm:"column:user_agent;type:text"`
	IPAddress *string   `gorm:"column:ip_address;type:text"`
	EmailSent bool      `gorm:"column:email_sent;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (s *LocationScan) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

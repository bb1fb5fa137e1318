package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pet is an owner's pet profile. QRCode and NFCID duplicate the linked tag's
// tag_code; both columns predate the Tag table and stay for old scan URLs.
type Pet struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Name             string     `gorm:"type:text;not null"`
	Species          string     `gorm:"type:text;not null"`
	Breed            *string    `gorm:"type:text"`
	Age              *int       `gorm:"type:int"`
	Sex              *string    `gorm:"type:text"`
	Color            *string    `gorm:"type:text"`
	Description      *string    `gorm:"type:text"`
	ImageURL         *string    `gorm:"column:image_url;type:text"`
	QRCode           string     `gorm:"column:qr_code;type:text;not null;uniqueIndex"`
	NFCID            string     `gorm:"column:nfc_id;type:text;not null;uniqueIndex"`
	OwnerPhone       *string    `gorm:"column:owner_phone;type:text"`
	OwnerEmail       *string    `gorm:"column:owner_email;type:text"`
	VetName          *string    `gorm:"column:vet_name;type:text"`
	VetPhone         *string    `gorm:"column:vet_phone;type:text"`
	MedicalInfo      *string    `gorm:"column:medical_info;type:text"`
	IsLost           bool       `gorm:"column:is_lost;not null;default:false"`
	LostDate         *time.Time `gorm:"column:lost_date"`
	LastSeenLocation *string    `gorm:"column:last_seen_location;type:text"`
	ShowBreed        bool       `gorm:"column:show_breed;not null;default:true"`
	ShowAge          bool       `gorm:"column:show_age;not null;default:true"`
	ShowMedicalInfo  bool       `gorm:"column:show_medical_info;not null;default:true"`
	ShowVetInfo      bool       `gorm:"column:show_vet_info;not null;default:true"`
	ShowOwnerPhone   bool       `gorm:"column:show_owner_phone;not null;default:true"`
	ShowOwnerEmail   bool       `gorm:"column:show_owner_email;not null;default:true"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Pet) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

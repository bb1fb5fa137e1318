package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a pet owner account.
type User struct {
	ID                       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email                    string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash             string     `gorm:"column:password_hash;not null"`
	Name                     string     `gorm:"type:text;not null"`
	EmailVerified            bool       `gorm:"column:email_verified;not null;default:false"`
	EmailVerificationToken   *string    `gorm:"column:email_verification_token;index"`
	EmailVerificationExpires *time.Time `gorm:"column:email_verification_expires"`
	PasswordResetToken       *string    `gorm:"column:password_reset_token;index"`
	PasswordResetExpires     *time.Time `gorm:"column:password_reset_expires"`
	CreatedAt                time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

package scans

import (
	"time"

	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

type ScanDTO struct {
	ID        uuid.UUID `json:"id"`
	PetID     uuid.UUID `json:"petId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy"`
	UserAgent *string   `json:"userAgent"`
	IPAddress *string   `json:"ipAddress"`
	EmailSent bool      `json:"emailSent"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromModel(s *models.LocationScan) *ScanDTO {
	if s == nil {
		return nil
	}
	return &ScanDTO{
		ID:        s.ID,
		PetID:     s.PetID,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Accuracy:  s.Accuracy,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		EmailSent: s.EmailSent,
		CreatedAt: s.CreatedAt,
	}
}

// RecordScanRequest is submitted from the public pet page, so the latitude
// and longitude bounds are enforced here rather than trusted.
type RecordScanRequest struct {
	Latitude  float64  `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64  `json:"longitude" validate:"min=-180,max=180"`
	Accuracy  *float64 `json:"accuracy" validate:"omitempty,min=0"`
	UserAgent *string  `json:"userAgent"`
}

type RecordScanResponse struct {
	Message string    `json:"message"`
	ScanID  uuid.UUID `json:"scanId"`
}

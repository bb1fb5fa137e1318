package pets

import (
	"time"

	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

// PetDTO is the owner-facing transport shape with every column visible.
type PetDTO struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"userId"`
	Name             string     `json:"name"`
	Species          string     `json:"species"`
	Breed            *string    `json:"breed"`
	Age              *int       `json:"age"`
	Sex              *string    `json:"sex"`
	Color            *string    `json:"color"`
	Description      *string    `json:"description"`
	ImageURL         *string    `json:"imageUrl"`
	QRCode           string     `json:"qrCode"`
	NFCID            string     `json:"nfcId"`
	OwnerPhone       *string    `json:"ownerPhone"`
	OwnerEmail       *string    `json:"ownerEmail"`
	VetName          *string    `json:"vetName"`
	VetPhone         *string    `json:"vetPhone"`
	MedicalInfo      *string    `json:"medicalInfo"`
	IsLost           bool       `json:"isLost"`
	LostDate         *time.Time `json:"lostDate"`
	LastSeenLocation *string    `json:"lastSeenLocation"`
	ShowBreed        bool       `json:"showBreed"`
	ShowAge          bool       `json:"showAge"`
	ShowMedicalInfo  bool       `json:"showMedicalInfo"`
	ShowVetInfo      bool       `json:"showVetInfo"`
	ShowOwnerPhone   bool       `json:"showOwnerPhone"`
	ShowOwnerEmail   bool       `json:"showOwnerEmail"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func FromModel(p *models.Pet) *PetDTO {
	if p == nil {
		return nil
	}
	return &PetDTO{
		ID:               p.ID,
		UserID:           p.UserID,
		Name:             p.Name,
		Species:          p.Species,
		Breed:            p.Breed,
		Age:              p.Age,
		Sex:              p.Sex,
		Color:            p.Color,
		Description:      p.Description,
		ImageURL:         p.ImageURL,
		QRCode:           p.QRCode,
		NFCID:            p.NFCID,
		OwnerPhone:       p.OwnerPhone,
		OwnerEmail:       p.OwnerEmail,
		VetName:          p.VetName,
		VetPhone:         p.VetPhone,
		MedicalInfo:      p.MedicalInfo,
		IsLost:           p.IsLost,
		LostDate:         p.LostDate,
		LastSeenLocation: p.LastSeenLocation,
		ShowBreed:        p.ShowBreed,
		ShowAge:          p.ShowAge,
		ShowMedicalInfo:  p.ShowMedicalInfo,
		ShowVetInfo:      p.ShowVetInfo,
		ShowOwnerPhone:   p.ShowOwnerPhone,
		ShowOwnerEmail:   p.ShowOwnerEmail,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// CreatePetRequest creates a pet and links the referenced tag in one
// transaction.
type CreatePetRequest struct {
	TagID       uuid.UUID `json:"tagId" validate:"required"`
	Name        string    `json:"name" validate:"required,min=1,max=100"`
	Species     string    `json:"species" validate:"required,min=1,max=50"`
	Breed       *string   `json:"breed"`
	Age         *int      `json:"age" validate:"omitempty,min=0,max=100"`
	Sex         *string   `json:"sex"`
	Color       *string   `json:"color"`
	Description *string   `json:"description"`
	OwnerPhone  *string   `json:"ownerPhone"`
	OwnerEmail  *string   `json:"ownerEmail" validate:"omitempty,email"`
	VetName     *string   `json:"vetName"`
	VetPhone    *string   `json:"vetPhone"`
	MedicalInfo *string   `json:"medicalInfo"`
}

// UpdatePetRequest is a partial update; nil fields keep their stored value.
type UpdatePetRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Species     *string `json:"species" validate:"omitempty,min=1,max=50"`
	Breed       *string `json:"breed"`
	Age         *int    `json:"age" validate:"omitempty,min=0,max=100"`
	Sex         *string `json:"sex"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
	OwnerPhone  *string `json:"ownerPhone"`
	OwnerEmail  *string `json:"ownerEmail" validate:"omitempty,email"`
	VetName     *string `json:"vetName"`
	VetPhone    *string `json:"vetPhone"`
	MedicalInfo *string `json:"medicalInfo"`
}

// LostStatusRequest toggles lost mode.
type LostStatusRequest struct {
	IsLost           bool       `json:"isLost"`
	LastSeenLocation *string    `json:"lastSeenLocation"`
	LostDate         *time.Time `json:"lostDate"`
}

// QRCodeDTO carries the rendered QR image as a data URL plus the raw code.
type QRCodeDTO struct {
	QRCodeImage string `json:"qrCodeImage"`
	QRCode      string `json:"qrCode"`
}

// PrivacyFlagsRequest is a partial update of the public-page redaction flags;
// nil fields keep their stored value.
type PrivacyFlagsRequest struct {
	ShowBreed       *bool `json:"showBreed"`
	ShowAge         *bool `json:"showAge"`
	ShowMedicalInfo *bool `json:"showMedicalInfo"`
	ShowVetInfo     *bool `json:"showVetInfo"`
	ShowOwnerPhone  *bool `json:"showOwnerPhone"`
	ShowOwnerEmail  *bool `json:"showOwnerEmail"`
}

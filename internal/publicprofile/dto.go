package publicprofile

import (
	"time"

	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

// PublicPetDTO is the anonymous scan-page projection. Gated fields are
// present but null when the matching privacy flag is off, never omitted.
type PublicPetDTO struct {
	ID               uuid.UUID          `json:"id"`
	Name             string             `json:"name"`
	Species          string             `json:"species"`
	Description      *string            `json:"description"`
	ImageURL         *string            `json:"imageUrl"`
	Sex              *string            `json:"sex"`
	Color            *string            `json:"color"`
	IsLost           bool               `json:"isLost"`
	LostDate         *time.Time         `json:"lostDate"`
	LastSeenLocation *string            `json:"lastSeenLocation"`
	OwnerName        string             `json:"ownerName"`
	Breed            *string            `json:"breed"`
	Age              *int               `json:"age"`
	MedicalInfo      *string            `json:"medicalInfo"`
	VetName          *string            `json:"vetName"`
	VetPhone         *string            `json:"vetPhone"`
	OwnerPhone       *string            `json:"ownerPhone"`
	OwnerEmail       *string            `json:"ownerEmail"`
	Contacts         []PublicContactDTO `json:"contacts"`
}

type PublicContactDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Relation *string   `json:"relation"`
	Phone    *string   `json:"phone"`
	Email    *string   `json:"email"`
}

// PublicContactDetailDTO is the standalone contact-list shape. Unlike the
// scan projection it carries the full reachability fields.
type PublicContactDetailDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Relation  *string   `json:"relation"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	Address   *string   `json:"address"`
	Facebook  *string   `json:"facebook"`
	Instagram *string   `json:"instagram"`
}

// project applies the pet's privacy flags field by field. The owner's
// display name is always visible so a finder knows who to ask for.
func project(pet *models.Pet, ownerName string, contacts []models.Contact) *PublicPetDTO {
	dto := &PublicPetDTO{
		ID:               pet.ID,
		Name:             pet.Name,
		Species:          pet.Species,
		Description:      pet.Description,
		ImageURL:         pet.ImageURL,
		Sex:              pet.Sex,
		Color:            pet.Color,
		IsLost:           pet.IsLost,
		LostDate:         pet.LostDate,
		LastSeenLocation: pet.LastSeenLocation,
		OwnerName:        ownerName,
		Contacts:         make([]PublicContactDTO, 0, len(contacts)),
	}
	if pet.ShowBreed {
		dto.Breed = pet.Breed
	}
	if pet.ShowAge {
		dto.Age = pet.Age
	}
	if pet.ShowMedicalInfo {
		dto.MedicalInfo = pet.MedicalInfo
	}
	if pet.ShowVetInfo {
		dto.VetName = pet.VetName
		dto.VetPhone = pet.VetPhone
	}
	if pet.ShowOwnerPhone {
		dto.OwnerPhone = pet.OwnerPhone
	}
	if pet.ShowOwnerEmail {
		dto.OwnerEmail = pet.OwnerEmail
	}
	for i := range contacts {
		c := &contacts[i]
		dto.Contacts = append(dto.Contacts, PublicContactDTO{
			ID:       c.ID,
			Name:     c.Name,
			Relation: c.Relation,
			Phone:    c.Phone,
			Email:    c.Email,
		})
	}
	return dto
}

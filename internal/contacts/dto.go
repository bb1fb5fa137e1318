package contacts

import (
	"time"

	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
)

type ContactDTO struct {
	ID        uuid.UUID `json:"id"`
	PetID     uuid.UUID `json:"petId"`
	Name      string    `json:"name"`
	Relation  *string   `json:"relation"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	Address   *string   `json:"address"`
	Facebook  *string   `json:"facebook"`
	Instagram *string   `json:"instagram"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromModel(c *models.Contact) *ContactDTO {
	if c == nil {
		return nil
	}
	return &ContactDTO{
		ID:        c.ID,
		PetID:     c.PetID,
		Name:      c.Name,
		Relation:  c.Relation,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		Facebook:  c.Facebook,
		Instagram: c.Instagram,
		Priority:  c.Priority,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type CreateContactRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=100"`
	Relation  *string `json:"relation"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Address   *string `json:"address"`
	Facebook  *string `json:"facebook"`
	Instagram *string `json:"instagram"`
	Priority  *int    `json:"priority" validate:"omitempty,min=0,max=100"`
}

// UpdateContactRequest is a partial update; nil fields keep their stored value.
type UpdateContactRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Relation  *string `json:"relation"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Address   *string `json:"address"`
	Facebook  *string `json:"facebook"`
	Instagram *string `json:"instagram"`
	Priority  *int    `json:"priority" validate:"omitempty,min=0,max=100"`
}

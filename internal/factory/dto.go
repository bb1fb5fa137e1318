package factory

import (
	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/internal/tags"
	"github.com/wooftrace/wooftrace-backend/internal/users"
)

type GenerateBatchRequest struct {
	Quantity    int     `json:"quantity" validate:"required,min=1,max=1000"`
	BatchNumber *string `json:"batchNumber" validate:"omitempty,min=1,max=64"`
}

type GenerateBatchResponse struct {
	Message     string             `json:"message"`
	BatchNumber string             `json:"batchNumber"`
	Count       int                `json:"count"`
	Tags        []tags.AdminTagDTO `json:"tags"`
}

type TagListResponse struct {
	Tags       []tags.AdminTagDTO `json:"tags"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

// ProgrammingDataDTO carries what the factory writes onto the physical tag
// and prints on its insert. The NFC chip stores the url plus the bare tag
// code so a reader app can resolve either.
type ProgrammingDataDTO struct {
	TagID          uuid.UUID  `json:"tagId"`
	TagCode        string     `json:"tagCode"`
	ActivationCode string     `json:"activationCode"`
	BatchNumber    string     `json:"batchNumber"`
	QRData         string     `json:"qrData"`
	NFCData        NFCDataDTO `json:"nfcData"`
}

type NFCDataDTO struct {
	URL     string `json:"url"`
	TagCode string `json:"tagCode"`
}

// AdminUserDTO decorates the user with its asset counts so the panel can
// tell which accounts are deletable.
type AdminUserDTO struct {
	users.UserDTO
	PetCount int64 `json:"petCount"`
	TagCount int64 `json:"tagCount"`
}

type UpdateUserRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email         *string `json:"email" validate:"omitempty,email"`
	EmailVerified *bool   `json:"emailVerified"`
}

type UpdateTagRequest struct {
	BatchNumber *string `json:"batchNumber" validate:"omitempty,min=1,max=64"`
}

type TransferPetRequest struct {
	NewUserID uuid.UUID `json:"newUserId" validate:"required"`
}

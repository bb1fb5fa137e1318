package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

type contactsRepository interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	ListByPet(ctx context.Context, petID uuid.UUID) ([]models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type petsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
}

// Service manages a pet's emergency contacts. Every operation re-verifies
// that the parent pet belongs to the caller.
type Service interface {
	Create(ctx context.Context, userID, petID uuid.UUID, input CreateContactRequest) (*ContactDTO, error)
	ListByPet(ctx context.Context, userID, petID uuid.UUID) ([]ContactDTO, error)
	Update(ctx context.Context, userID, contactID uuid.UUID, input UpdateContactRequest) (*ContactDTO, error)
	Delete(ctx context.Context, userID, contactID uuid.UUID) error
}

type service struct {
	repo contactsRepository
	pets petsRepository
	logg *logger.Logger
}

func NewService(repo contactsRepository, pets petsRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	if pets == nil {
		return nil, fmt.Errorf("pet repository required")
	}
	return &service{repo: repo, pets: pets, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, userID, petID uuid.UUID, input CreateContactRequest) (*ContactDTO, error) {
	if _, err := s.ownedPet(ctx, userID, petID); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		PetID:     petID,
		Name:      strings.TrimSpace(input.Name),
		Relation:  input.Relation,
		Phone:     input.Phone,
		Email:     input.Email,
		Address:   input.Address,
		Facebook:  input.Facebook,
		Instagram: input.Instagram,
	}
	if input.Priority != nil {
		contact.Priority = *input.Priority
	}

	if _, err := s.repo.Create(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contact")
	}
	return FromModel(contact), nil
}

func (s *service) ListByPet(ctx context.Context, userID, petID uuid.UUID) ([]ContactDTO, error) {
	if _, err := s.ownedPet(ctx, userID, petID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}
	out := make([]ContactDTO, len(rows))
	for i := range rows {
		out[i] = *FromModel(&rows[i])
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, userID, contactID uuid.UUID, input UpdateContactRequest) (*ContactDTO, error) {
	contact, err := s.ownedContact(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		contact.Name = strings.TrimSpace(*input.Name)
	}
	if input.Relation != nil {
		contact.Relation = input.Relation
	}
	if input.Phone != nil {
		contact.Phone = input.Phone
	}
	if input.Email != nil {
		contact.Email = input.Email
	}
	if input.Address != nil {
		contact.Address = input.Address
	}
	if input.Facebook != nil {
		contact.Facebook = input.Facebook
	}
	if input.Instagram != nil {
		contact.Instagram = input.Instagram
	}
	if input.Priority != nil {
		contact.Priority = *input.Priority
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contact")
	}
	return FromModel(contact), nil
}

func (s *service) Delete(ctx context.Context, userID, contactID uuid.UUID) error {
	contact, err := s.ownedContact(ctx, userID, contactID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, contact.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contact")
	}
	return nil
}

// ownedContact loads the contact, then checks ownership through its pet.
// An unknown contact is NotFound; a contact on someone else's pet is
// Forbidden.
func (s *service) ownedContact(ctx context.Context, userID, contactID uuid.UUID) (*models.Contact, error) {
	contact, err := s.repo.FindByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup contact")
	}
	if _, err := s.ownedPet(ctx, userID, contact.PetID); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *service) ownedPet(ctx context.Context, userID, petID uuid.UUID) (*models.Pet, error) {
	pet, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup pet")
	}
	if pet.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "pet belongs to another owner")
	}
	return pet, nil
}

package publicprofile

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

type tagsRepository interface {
	FindByTagCode(ctx context.Context, tagCode string) (*models.Tag, error)
}

type petsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	FindByQRCode(ctx context.Context, qrCode string) (*models.Pet, error)
	FindByNFCID(ctx context.Context, nfcID string) (*models.Pet, error)
}

type contactsRepository interface {
	ListByPet(ctx context.Context, petID uuid.UUID) ([]models.Contact, error)
	ListByPetPublic(ctx context.Context, petID uuid.UUID) ([]models.Contact, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service resolves public identifiers to the privacy-filtered scan page.
// All three identifiers reach the same pet through different unique columns.
type Service interface {
	ResolveByTagCode(ctx context.Context, tagCode string) (*PublicPetDTO, error)
	ResolveByQRCode(ctx context.Context, qrCode string) (*PublicPetDTO, error)
	ResolveByNFCID(ctx context.Context, nfcID string) (*PublicPetDTO, error)
	PublicContacts(ctx context.Context, petID uuid.UUID) ([]PublicContactDetailDTO, error)
}

type service struct {
	tags     tagsRepository
	pets     petsRepository
	contacts contactsRepository
	users    usersRepository
	logg     *logger.Logger
}

func NewService(tags tagsRepository, pets petsRepository, contacts contactsRepository, users usersRepository, logg *logger.Logger) (Service, error) {
	if tags == nil {
		return nil, fmt.Errorf("tag repository required")
	}
	if pets == nil {
		return nil, fmt.Errorf("pet repository required")
	}
	if contacts == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{tags: tags, pets: pets, contacts: contacts, users: users, logg: logg}, nil
}

// ResolveByTagCode requires an activated, linked tag before exposing any
// pet data. The distinct errors let the scan page tell a finder the tag is
// real but not set up yet.
func (s *service) ResolveByTagCode(ctx context.Context, tagCode string) (*PublicPetDTO, error) {
	tag, err := s.tags.FindByTagCode(ctx, normalizeCode(tagCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup tag")
	}
	if !tag.IsActivated {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag has not been activated yet")
	}
	if tag.PetID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag is not linked to a pet yet")
	}

	pet, err := s.pets.FindByID(ctx, *tag.PetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup pet")
	}
	return s.render(ctx, pet)
}

// ResolveByQRCode serves the legacy identifier path. The pet row only
// carries a qr_code once its tag was activated and linked, so there is no
// tag-state recheck here.
func (s *service) ResolveByQRCode(ctx context.Context, qrCode string) (*PublicPetDTO, error) {
	pet, err := s.pets.FindByQRCode(ctx, normalizeCode(qrCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup pet")
	}
	return s.render(ctx, pet)
}

// ResolveByNFCID serves the legacy identifier path, same as qr codes.
func (s *service) ResolveByNFCID(ctx context.Context, nfcID string) (*PublicPetDTO, error) {
	pet, err := s.pets.FindByNFCID(ctx, normalizeCode(nfcID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup pet")
	}
	return s.render(ctx, pet)
}

// PublicContacts serves the standalone contact list, ordered by ascending
// priority like the owner's view. Only the tag-scan projection uses the
// descending order.
func (s *service) PublicContacts(ctx context.Context, petID uuid.UUID) ([]PublicContactDetailDTO, error) {
	if _, err := s.pets.FindByID(ctx, petID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup pet")
	}
	rows, err := s.contacts.ListByPet(ctx, petID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}
	out := make([]PublicContactDetailDTO, 0, len(rows))
	for i := range rows {
		c := &rows[i]
		out = append(out, PublicContactDetailDTO{
			ID:        c.ID,
			Name:      c.Name,
			Relation:  c.Relation,
			Phone:     c.Phone,
			Email:     c.Email,
			Address:   c.Address,
			Facebook:  c.Facebook,
			Instagram: c.Instagram,
		})
	}
	return out, nil
}

func (s *service) render(ctx context.Context, pet *models.Pet) (*PublicPetDTO, error) {
	contacts, err := s.contacts.ListByPetPublic(ctx, pet.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}

	// A missing owner row leaves the name blank rather than hiding the page.
	ownerName := ""
	owner, err := s.users.FindByID(ctx, pet.UserID)
	switch {
	case err == nil:
		ownerName = owner.Name
	case errors.Is(err, gorm.ErrRecordNotFound):
		if s.logg != nil {
			s.logg.Warn(s.logg.WithPetID(ctx, pet.ID.String()), "publicprofile.owner_missing")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup owner")
	}
	return project(pet, ownerName, contacts), nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

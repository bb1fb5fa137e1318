package pets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/internal/notifications"
	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

const qrImageSize = 256

type petsRepository interface {
	Create(ctx context.Context, db *gorm.DB, pet *models.Pet) (*models.Pet, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Pet, error)
	Update(ctx context.Context, pet *models.Pet) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
}

type tagsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	LinkToPet(ctx context.Context, db *gorm.DB, tagID, petID uuid.UUID) (bool, error)
	UnlinkByPet(ctx context.Context, db *gorm.DB, petID uuid.UUID) error
}

type contactsRepository interface {
	DeleteByPet(ctx context.Context, db *gorm.DB, petID uuid.UUID) error
}

type scansRepository interface {
	DeleteByPet(ctx context.Context, db *gorm.DB, petID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns pet profiles: creation bound to a tag, profile and privacy
// updates, lost mode, and the cascading delete.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreatePetRequest) (*PetDTO, error)
	Get(ctx context.Context, userID, petID uuid.UUID) (*PetDTO, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]PetDTO, error)
	Update(ctx context.Context, userID, petID uuid.UUID, input UpdatePetRequest) (*PetDTO, error)
	Delete(ctx context.Context, userID, petID uuid.UUID) error
	SetLostStatus(ctx context.Context, userID, petID uuid.UUID, input LostStatusRequest) (*PetDTO, error)
	SetPrivacyFlags(ctx context.Context, userID, petID uuid.UUID, input PrivacyFlagsRequest) (*PetDTO, error)
	SetImage(ctx context.Context, userID, petID uuid.UUID, imageURL string) (*PetDTO, error)
	QRCodeImage(ctx context.Context, userID, petID uuid.UUID) (*QRCodeDTO, error)
}

type service struct {
	repo        petsRepository
	tags        tagsRepository
	contacts    contactsRepository
	scans       scansRepository
	tx          txRunner
	notifier    notifications.Notifier
	logg        *logger.Logger
	frontendURL string
	now         func() time.Time
}

// NewService builds the pet service.
func NewService(repo petsRepository, tags tagsRepository, contacts contactsRepository, scans scansRepository, tx txRunner, notifier notifications.Notifier, frontendURL string, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pet repository required")
	}
	if tags == nil {
		return nil, fmt.Errorf("tag repository required")
	}
	if contacts == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	if scans == nil {
		return nil, fmt.Errorf("scan repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		tags:        tags,
		contacts:    contacts,
		scans:       scans,
		tx:          tx,
		notifier:    notifier,
		logg:        logg,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}, nil
}

// Create persists the pet and links its tag as one transaction; a failed
// link leaves no orphaned pet row behind.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreatePetRequest) (*PetDTO, error) {
	tag, err := s.tags.FindByID(ctx, input.TagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup tag")
	}
	if tag.UserID == nil || *tag.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "tag belongs to another owner")
	}
	if !tag.IsActivated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag is not activated")
	}
	if tag.PetID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag already linked to a pet")
	}

	pet := &models.Pet{
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		Species:     strings.TrimSpace(input.Species),
		Breed:       input.Breed,
		Age:         input.Age,
		Sex:         input.Sex,
		Color:       input.Color,
		Description: input.Description,
		QRCode:      tag.TagCode,
		NFCID:       tag.TagCode,
		OwnerPhone:  input.OwnerPhone,
		OwnerEmail:  input.OwnerEmail,
		VetName:     input.VetName,
		VetPhone:    input.VetPhone,
		MedicalInfo: input.MedicalInfo,
		ShowBreed:   true, ShowAge: true, ShowMedicalInfo: true,
		ShowVetInfo: true, ShowOwnerPhone: true, ShowOwnerEmail: true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.Create(ctx, tx, pet); err != nil {
			return err
		}
		linked, err := s.tags.LinkToPet(ctx, tx, tag.ID, pet.ID)
		if err != nil {
			return err
		}
		if !linked {
			return pkgerrors.New(pkgerrors.CodeConflict, "tag already linked to a pet")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pet")
	}

	s.notify(ctx, notifications.Event{Kind: notifications.KindPetRegistered, PetName: pet.Name})

	return FromModel(pet), nil
}

func (s *service) Get(ctx context.Context, userID, petID uuid.UUID) (*PetDTO, error) {
	pet, err := s.ownedPet(ctx, userID, petID)
	if err != nil {
		return nil, err
	}
	return FromModel(pet), nil
}

func (s *service) ListByOwner(ctx context.Context, userID uuid.UUID) ([]PetDTO, error) {
	rows, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pets")
	}
	out := make([]PetDTO, len(rows))
	for i := range rows {
		out[i] = *FromModel(&rows[i])
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, userID, petID uuid.UUID, input UpdatePetRequest) (*PetDTO, error) {
	pet, err := s.ownedPet(ctx, userID, petID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		pet.Name = strings.TrimSpace(*input.Name)
	}
	if input.Species != nil {
		pet.Species = strings.TrimSpace(*input.Species)
	}
	if input.Breed != nil {
		pet.Breed = input.Breed
	}
	if input.Age != nil {
		pet.Age = input.Age
	}
	if input.Sex != nil {
		pet.Sex = input.Sex
	}
	if input.Color != nil {
		pet.Color = input.Color
	}
	if input.Description != nil {
		pet.Description = input.Description
	}
	if input.OwnerPhone != nil {
		pet.OwnerPhone = input.OwnerPhone
	}
	if input.OwnerEmail != nil {
		pet.OwnerEmail = input.OwnerEmail
	}
	if input.VetName != nil {
		pet.VetName = input.VetName
	}
	if input.VetPhone != nil {
		pet.VetPhone = input.VetPhone
	}
	if input.MedicalInfo != nil {
		pet.MedicalInfo = input.MedicalInfo
	}

	if err := s.repo.Update(ctx, pet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pet")
	}
	return FromModel(pet), nil
}

// Delete removes the pet, its contacts, and its scans, and unlinks the tag,
// all in one transaction. The tag itself survives.
func (s *service) Delete(ctx context.Context, userID, petID uuid.UUID) error {
	pet, err := s.ownedPet(ctx, userID, petID)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.contacts.DeleteByPet(ctx, tx, pet.ID); err != nil {
			return err
		}
		if err := s.scans.DeleteByPet(ctx, tx, pet.ID); err != nil {
			return err
		}
		if err := s.tags.UnlinkByPet(ctx, tx, pet.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, pet.ID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pet")
	}
	return nil
}

func (s *service) SetLostStatus(ctx context.Context, userID, petID uuid.UUID, input LostStatusRequest) (*PetDTO, error) {
	pet, err := s.ownedPet(ctx, userID, petID)
	if err != nil {
		return nil, err
	}

	if input.IsLost {
		pet.IsLost = true
		if input.LostDate != nil {
			pet.LostDate = input.LostDate
		} else {
			now := s.now()
			pet.LostDate = &now
		}
		pet.LastSeenLocation = input.LastSeenLocation
	} else {
		pet.IsLost = false
		pet.LostDate = nil
		pet.LastSeenLocation = nil
	}

	if err := s.repo.Update(ctx, pet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update lost status")
	}

	s.notify(ctx, notifications.Event{Kind: notifications.KindPetLostModeChange, PetName: pet.Name})

	return FromModel(pet), nil
}

// SetPrivacyFlags applies only the supplied flags; an empty body is a no-op.
func (s *service) SetPrivacyFlags(ctx context.Context, userID, petID uuid.UUID, input PrivacyFlagsRequest) (*PetDTO, error) {
	pet, err := s.ownedPet(ctx, userID, petID)
	if err != nil {
		return nil, err
	}

	if input.ShowBreed != nil {
		pet.ShowBreed = *input.ShowBreed
	}
	if input.ShowAge != nil {
		pet.ShowAge = *input.ShowAge
	}
	if input.ShowMedicalInfo != nil {
		pet.ShowMedicalInfo = *input.ShowMedicalInfo
	}
	if input.ShowVetInfo != nil {
		pet.ShowVetInfo = *input.ShowVetInfo
	}
	if input.ShowOwnerPhone != nil {
		pet.ShowOwnerPhone = *input.ShowOwnerPhone
	}
	if input.ShowOwnerEmail != nil {
		pet.ShowOwnerEmail = *input.ShowOwnerEmail
	}

	if err := s.repo.Update(ctx, pet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update privacy flags")
	}
	return FromModel(pet), nil
}

func (s *service) SetImage(ctx context.Context, userID, petID uuid.UUID, imageURL string) (*PetDTO, error) {
	pet, err := s.ownedPet(ctx, userID, petID)
	if err != nil {
		return nil, err
	}
	pet.ImageURL = &imageURL
	if err := s.repo.Update(ctx, pet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pet image")
	}
	return FromModel(pet), nil
}

// QRCodeImage renders the pet's public page URL as a PNG data URL.
func (s *service) QRCodeImage(ctx context.Context, userID, petID uuid.UUID) (*QRCodeDTO, error) {
	pet, err := s.ownedPet(ctx, userID, petID)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/pet/qr/%s", s.frontendURL, pet.QRCode)
	png, err := qrcode.Encode(url, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render qr code")
	}
	return &QRCodeDTO{
		QRCodeImage: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		QRCode:      pet.QRCode,
	}, nil
}

// ownedPet loads the pet and enforces NotFound before Forbidden.
func (s *service) ownedPet(ctx context.Context, userID, petID uuid.UUID) (*models.Pet, error) {
	pet, err := s.repo.FindByID(ctx, petID)
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

func (s *service) notify(ctx context.Context, event notifications.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "kind", string(event.Kind)), "notify.enqueue_failed")
	}
}

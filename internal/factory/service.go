package factory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/internal/pets"
	"github.com/wooftrace/wooftrace-backend/internal/tags"
	"github.com/wooftrace/wooftrace-backend/internal/users"
	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

const maxBatchQuantity = 1000

type tagsRepository interface {
	CreateBatch(ctx context.Context, rows []models.Tag) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ActivationCodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter tags.ListFilter) ([]models.Tag, int64, error)
	CollectStats(ctx context.Context) (*tags.Stats, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	Unlink(ctx context.Context, db *gorm.DB, tagID uuid.UUID) error
	UnlinkByPet(ctx context.Context, db *gorm.DB, petID uuid.UUID) error
	UpdateOwnerByPet(ctx context.Context, db *gorm.DB, petID, newUserID uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type petsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	ListAll(ctx context.Context) ([]models.Pet, error)
	Update(ctx context.Context, pet *models.Pet) error
	UpdateOwner(ctx context.Context, db *gorm.DB, petID, newUserID uuid.UUID) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
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

// Service is the factory/admin panel: batch tag generation, inventory
// management, and cross-account maintenance operations.
type Service interface {
	GenerateBatch(ctx context.Context, input GenerateBatchRequest) (*GenerateBatchResponse, error)
	ListTags(ctx context.Context, filter tags.ListFilter) (*TagListResponse, error)
	Stats(ctx context.Context) (*tags.Stats, error)
	ProgrammingData(ctx context.Context, tagID uuid.UUID) (*ProgrammingDataDTO, error)
	UpdateTag(ctx context.Context, tagID uuid.UUID, input UpdateTagRequest) (*tags.AdminTagDTO, error)
	DeleteTag(ctx context.Context, tagID uuid.UUID) error
	UnlinkTag(ctx context.Context, tagID uuid.UUID) error

	ListUsers(ctx context.Context) ([]AdminUserDTO, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateUserRequest) (*users.UserDTO, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error

	ListPets(ctx context.Context) ([]pets.PetDTO, error)
	UpdatePet(ctx context.Context, petID uuid.UUID, input pets.UpdatePetRequest) (*pets.PetDTO, error)
	TransferPet(ctx context.Context, petID, newUserID uuid.UUID) (*pets.PetDTO, error)
	DeletePet(ctx context.Context, petID uuid.UUID) error
}

type service struct {
	tags        tagsRepository
	pets        petsRepository
	users       usersRepository
	contacts    contactsRepository
	scans       scansRepository
	tx          txRunner
	logg        *logger.Logger
	frontendURL string
	nowUnixMs   func() int64
}

func NewService(tagsRepo tagsRepository, petsRepo petsRepository, usersRepo usersRepository, contactsRepo contactsRepository, scansRepo scansRepository, tx txRunner, frontendURL string, logg *logger.Logger, nowUnixMs func() int64) (Service, error) {
	if tagsRepo == nil {
		return nil, fmt.Errorf("tag repository required")
	}
	if petsRepo == nil {
		return nil, fmt.Errorf("pet repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if contactsRepo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	if scansRepo == nil {
		return nil, fmt.Errorf("scan repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if nowUnixMs == nil {
		return nil, fmt.Errorf("clock required")
	}
	return &service{
		tags:        tagsRepo,
		pets:        petsRepo,
		users:       usersRepo,
		contacts:    contactsRepo,
		scans:       scansRepo,
		tx:          tx,
		logg:        logg,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		nowUnixMs:   nowUnixMs,
	}, nil
}

// GenerateBatch mints a run of unactivated tags. Activation codes are drawn
// from the retry-capped generator; tag codes lean on the unique index.
func (s *service) GenerateBatch(ctx context.Context, input GenerateBatchRequest) (*GenerateBatchResponse, error) {
	if input.Quantity < 1 || input.Quantity > maxBatchQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", maxBatchQuantity))
	}
	batchNumber := fmt.Sprintf("BATCH-%d", s.nowUnixMs())
	if input.BatchNumber != nil && strings.TrimSpace(*input.BatchNumber) != "" {
		batchNumber = strings.TrimSpace(*input.BatchNumber)
	}

	drawn := map[string]bool{}
	rows := make([]models.Tag, 0, input.Quantity)
	for len(rows) < input.Quantity {
		code, err := tags.UniqueActivationCode(ctx, func(ctx context.Context, candidate string) (bool, error) {
			if drawn[candidate] {
				return true, nil
			}
			return s.tags.ActivationCodeExists(ctx, candidate)
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate activation code")
		}
		drawn[code] = true

		tagCode, err := tags.GenerateTagCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate tag code")
		}
		rows = append(rows, models.Tag{
			TagCode:        tagCode,
			ActivationCode: code,
			BatchNumber:    batchNumber,
		})
	}

	if err := s.tags.CreateBatch(ctx, rows); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert tag batch")
	}

	out := make([]tags.AdminTagDTO, len(rows))
	for i := range rows {
		out[i] = *tags.AdminFromModel(&rows[i])
	}
	return &GenerateBatchResponse{
		Message:     "batch generated",
		BatchNumber: batchNumber,
		Count:       len(rows),
		Tags:        out,
	}, nil
}

func (s *service) ListTags(ctx context.Context, filter tags.ListFilter) (*TagListResponse, error) {
	rows, total, err := s.tags.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	out := make([]tags.AdminTagDTO, len(rows))
	for i := range rows {
		out[i] = *tags.AdminFromModel(&rows[i])
	}
	return &TagListResponse{Tags: out, Total: total, Page: page, Limit: limit, TotalPages: totalPages}, nil
}

func (s *service) Stats(ctx context.Context) (*tags.Stats, error) {
	stats, err := s.tags.CollectStats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "collect tag stats")
	}
	return stats, nil
}

// ProgrammingData serves the payloads the factory line writes onto a tag.
func (s *service) ProgrammingData(ctx context.Context, tagID uuid.UUID) (*ProgrammingDataDTO, error) {
	tag, err := s.findTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	return &ProgrammingDataDTO{
		TagID:          tag.ID,
		TagCode:        tag.TagCode,
		ActivationCode: tag.ActivationCode,
		BatchNumber:    tag.BatchNumber,
		QRData:         fmt.Sprintf("%s/pet/qr/%s", s.frontendURL, tag.TagCode),
		NFCData: NFCDataDTO{
			URL:     fmt.Sprintf("%s/pet/nfc/%s", s.frontendURL, tag.TagCode),
			TagCode: tag.TagCode,
		},
	}, nil
}

func (s *service) UpdateTag(ctx context.Context, tagID uuid.UUID, input UpdateTagRequest) (*tags.AdminTagDTO, error) {
	tag, err := s.findTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if input.BatchNumber != nil {
		tag.BatchNumber = strings.TrimSpace(*input.BatchNumber)
	}
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tag")
	}
	return tags.AdminFromModel(tag), nil
}

// DeleteTag removes inventory that never left the factory. Claimed or
// linked tags are immutable history.
func (s *service) DeleteTag(ctx context.Context, tagID uuid.UUID) error {
	tag, err := s.findTag(ctx, tagID)
	if err != nil {
		return err
	}
	if tag.IsActivated || tag.PetID != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "tag has been activated or linked")
	}
	if err := s.tags.Delete(ctx, tag.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete tag")
	}
	return nil
}

func (s *service) UnlinkTag(ctx context.Context, tagID uuid.UUID) error {
	tag, err := s.findTag(ctx, tagID)
	if err != nil {
		return err
	}
	if tag.PetID == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "tag is not linked to a pet")
	}
	if err := s.tags.Unlink(ctx, nil, tag.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlink tag")
	}
	return nil
}

func (s *service) ListUsers(ctx context.Context) ([]AdminUserDTO, error) {
	rows, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]AdminUserDTO, len(rows))
	for i := range rows {
		petCount, err := s.pets.CountByUser(ctx, rows[i].ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pets")
		}
		tagCount, err := s.tags.CountByUser(ctx, rows[i].ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tags")
		}
		out[i] = AdminUserDTO{UserDTO: *users.FromModel(&rows[i]), PetCount: petCount, TagCount: tagCount}
	}
	return out, nil
}

func (s *service) UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateUserRequest) (*users.UserDTO, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.EmailVerified != nil {
		user.EmailVerified = *input.EmailVerified
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return users.FromModel(user), nil
}

// DeleteUser only removes accounts with no owned assets; tags and pets must
// be reassigned or deleted first.
func (s *service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	petCount, err := s.pets.CountByUser(ctx, user.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pets")
	}
	tagCount, err := s.tags.CountByUser(ctx, user.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tags")
	}
	if petCount > 0 || tagCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "user still owns pets or tags").
			WithDetails(map[string]any{"petCount": petCount, "tagCount": tagCount})
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *service) ListPets(ctx context.Context) ([]pets.PetDTO, error) {
	rows, err := s.pets.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pets")
	}
	out := make([]pets.PetDTO, len(rows))
	for i := range rows {
		out[i] = *pets.FromModel(&rows[i])
	}
	return out, nil
}

func (s *service) UpdatePet(ctx context.Context, petID uuid.UUID, input pets.UpdatePetRequest) (*pets.PetDTO, error) {
	pet, err := s.findPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	applyPetUpdate(pet, input)
	if err := s.pets.Update(ctx, pet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pet")
	}
	return pets.FromModel(pet), nil
}

// TransferPet moves the pet and its linked tag to another account in one
// transaction.
func (s *service) TransferPet(ctx context.Context, petID, newUserID uuid.UUID) (*pets.PetDTO, error) {
	pet, err := s.findPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findUser(ctx, newUserID); err != nil {
		return nil, err
	}
	if pet.UserID == newUserID {
		return pets.FromModel(pet), nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.pets.UpdateOwner(ctx, tx, pet.ID, newUserID); err != nil {
			return err
		}
		return s.tags.UpdateOwnerByPet(ctx, tx, pet.ID, newUserID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transfer pet")
	}

	pet.UserID = newUserID
	return pets.FromModel(pet), nil
}

// DeletePet is the admin-side cascade: contacts, scans, and the tag link go
// with the pet; the tag row survives.
func (s *service) DeletePet(ctx context.Context, petID uuid.UUID) error {
	pet, err := s.findPet(ctx, petID)
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
		return s.pets.Delete(ctx, tx, pet.ID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pet")
	}
	return nil
}

func (s *service) findTag(ctx context.Context, tagID uuid.UUID) (*models.Tag, error) {
	tag, err := s.tags.FindByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup tag")
	}
	return tag, nil
}

func (s *service) findPet(ctx context.Context, petID uuid.UUID) (*models.Pet, error) {
	pet, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup pet")
	}
	return pet, nil
}

func (s *service) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	return user, nil
}

func applyPetUpdate(pet *models.Pet, input pets.UpdatePetRequest) {
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
}

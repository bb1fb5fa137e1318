package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/internal/notifications"
	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

type tagsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	FindByActivationCode(ctx context.Context, code string) (*models.Tag, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Tag, error)
	Activate(ctx context.Context, tagID, userID uuid.UUID, at time.Time) (bool, error)
	LinkToPet(ctx context.Context, db *gorm.DB, tagID, petID uuid.UUID) (bool, error)
	Unlink(ctx context.Context, db *gorm.DB, tagID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type petsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	SetTagCodes(ctx context.Context, db *gorm.DB, petID uuid.UUID, tagCode string) error
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ValidateCodeResult is the pre-activation check result; it never mutates.
type ValidateCodeResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Service owns the tag lifecycle on the owner side: activation, linking,
// unlinking, and listing.
type Service interface {
	ValidateCode(ctx context.Context, code string) (*ValidateCodeResult, error)
	Activate(ctx context.Context, userID uuid.UUID, code string) (*TagDTO, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]TagDTO, error)
	LinkToPet(ctx context.Context, userID, tagID, petID uuid.UUID) (*TagDTO, error)
	Unlink(ctx context.Context, userID, tagID uuid.UUID) error
}

type service struct {
	repo     tagsRepository
	pets     petsRepository
	users    usersRepository
	tx       txRunner
	notifier notifications.Notifier
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the tag service.
func NewService(repo tagsRepository, pets petsRepository, users usersRepository, tx txRunner, notifier notifications.Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tag repository required")
	}
	if pets == nil {
		return nil, fmt.Errorf("pet repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		pets:     pets,
		users:    users,
		tx:       tx,
		notifier: notifier,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// ValidateCode reports whether an activation code exists and is still
// unused, without consuming it. Unknown and consumed codes are errors so the
// activation form can surface the exact failure before login.
func (s *service) ValidateCode(ctx context.Context, code string) (*ValidateCodeResult, error) {
	normalized := normalizeActivationCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activation code is required")
	}

	tag, err := s.repo.FindByActivationCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invalid activation code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup activation code")
	}
	if tag.IsActivated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag already activated")
	}

	return &ValidateCodeResult{Valid: true, Message: "activation code verified successfully"}, nil
}

func (s *service) Activate(ctx context.Context, userID uuid.UUID, code string) (*TagDTO, error) {
	normalized := normalizeActivationCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activation code is required")
	}

	tag, err := s.repo.FindByActivationCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activation code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup activation code")
	}
	if tag.IsActivated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag already activated")
	}

	now := s.now()
	won, err := s.repo.Activate(ctx, tag.ID, userID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate tag")
	}
	if !won {
		// another caller flipped it between the read and the update
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag already activated")
	}

	tag.IsActivated = true
	tag.ActivatedAt = &now
	tag.UserID = &userID

	// the confirmation email needs the owner's address; a failed lookup only
	// costs the email, never the activation
	if owner, err := s.users.FindByID(ctx, userID); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "tag.owner_lookup_failed")
		}
	} else {
		s.notify(ctx, notifications.Event{
			Kind:           notifications.KindTagActivated,
			To:             owner.Email,
			Name:           owner.Name,
			TagCode:        tag.TagCode,
			ActivationCode: tag.ActivationCode,
		})
	}

	return FromModel(tag), nil
}

func (s *service) ListByOwner(ctx context.Context, userID uuid.UUID) ([]TagDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	out := make([]TagDTO, len(rows))
	for i := range rows {
		out[i] = *FromModel(&rows[i])
	}
	return out, nil
}

func (s *service) LinkToPet(ctx context.Context, userID, tagID, petID uuid.UUID) (*TagDTO, error) {
	tag, err := s.ownedTag(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}
	if !tag.IsActivated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag is not activated")
	}
	if tag.PetID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag already linked to a pet")
	}

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

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		linked, err := s.repo.LinkToPet(ctx, tx, tag.ID, pet.ID)
		if err != nil {
			return err
		}
		if !linked {
			return pkgerrors.New(pkgerrors.CodeConflict, "tag already linked to a pet")
		}
		return s.pets.SetTagCodes(ctx, tx, pet.ID, tag.TagCode)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link tag")
	}

	tag.PetID = &pet.ID
	return FromModel(tag), nil
}

func (s *service) Unlink(ctx context.Context, userID, tagID uuid.UUID) error {
	tag, err := s.ownedTag(ctx, userID, tagID)
	if err != nil {
		return err
	}
	if tag.PetID == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "tag is not linked to a pet")
	}

	if err := s.repo.Unlink(ctx, nil, tag.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlink tag")
	}
	return nil
}

// ownedTag loads the tag and enforces NotFound before Forbidden.
func (s *service) ownedTag(ctx context.Context, userID, tagID uuid.UUID) (*models.Tag, error) {
	tag, err := s.repo.FindByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup tag")
	}
	if tag.UserID == nil || *tag.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "tag belongs to another owner")
	}
	return tag, nil
}

func (s *service) notify(ctx context.Context, event notifications.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "kind", string(event.Kind)), "notify.enqueue_failed")
	}
}

func normalizeActivationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

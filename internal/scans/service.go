package scans

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/internal/notifications"
	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

// historyLimit caps the owner-facing scan history; older rows stay in the
// table but are not returned.
const historyLimit = 50

type scansRepository interface {
	Create(ctx context.Context, scan *models.LocationScan) (*models.LocationScan, error)
	ListByPet(ctx context.Context, petID uuid.UUID, limit int) ([]models.LocationScan, error)
	MarkEmailSent(ctx context.Context, id uuid.UUID) error
}

type petsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type contactsRepository interface {
	ListByPet(ctx context.Context, petID uuid.UUID) ([]models.Contact, error)
}

// Service records public tag-scan locations and serves the owner's history.
type Service interface {
	Record(ctx context.Context, petID uuid.UUID, input RecordScanRequest, ipAddress string) (*RecordScanResponse, error)
	ListByPet(ctx context.Context, userID, petID uuid.UUID) ([]ScanDTO, error)
}

type service struct {
	repo     scansRepository
	pets     petsRepository
	users    usersRepository
	contacts contactsRepository
	notifier notifications.Notifier
	logg     *logger.Logger
}

func NewService(repo scansRepository, pets petsRepository, users usersRepository, contacts contactsRepository, notifier notifications.Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("scan repository required")
	}
	if pets == nil {
		return nil, fmt.Errorf("pet repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if contacts == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	return &service{repo: repo, pets: pets, users: users, contacts: contacts, notifier: notifier, logg: logg}, nil
}

// Record appends a scan row and hands off the owner alert. The endpoint is
// public; a failed alert never fails the scan itself.
func (s *service) Record(ctx context.Context, petID uuid.UUID, input RecordScanRequest, ipAddress string) (*RecordScanResponse, error) {
	pet, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup pet")
	}

	scan := &models.LocationScan{
		PetID:     pet.ID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Accuracy:  input.Accuracy,
		UserAgent: input.UserAgent,
	}
	if ipAddress != "" {
		scan.IPAddress = &ipAddress
	}

	if _, err := s.repo.Create(ctx, scan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record scan")
	}

	if s.notifier != nil {
		sent := false
		for _, to := range s.alertAddresses(ctx, pet) {
			err := s.notifier.Notify(ctx, notifications.Event{
				Kind:      notifications.KindPetScanned,
				To:        to,
				PetName:   pet.Name,
				Latitude:  scan.Latitude,
				Longitude: scan.Longitude,
				At:        scan.CreatedAt,
			})
			if err != nil {
				if s.logg != nil {
					s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "scan.alert_enqueue_failed")
				}
				continue
			}
			sent = true
		}
		if sent {
			if err := s.repo.MarkEmailSent(ctx, scan.ID); err != nil && s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "scan.mark_email_sent_failed")
			}
		}
	}

	return &RecordScanResponse{Message: "location recorded", ScanID: scan.ID}, nil
}

// ListByPet returns the owner's scan history, newest first, capped at 50.
func (s *service) ListByPet(ctx context.Context, userID, petID uuid.UUID) ([]ScanDTO, error) {
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

	rows, err := s.repo.ListByPet(ctx, petID, historyLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list scans")
	}
	out := make([]ScanDTO, len(rows))
	for i := range rows {
		out[i] = *FromModel(&rows[i])
	}
	return out, nil
}

// alertAddresses collects the owner address plus every emergency contact
// with an email, deduplicated. The owner address prefers the contact email
// on the pet profile and falls back to the account address.
func (s *service) alertAddresses(ctx context.Context, pet *models.Pet) []string {
	seen := map[string]bool{}
	var out []string
	add := func(addr string) {
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		out = append(out, addr)
	}

	if pet.OwnerEmail != nil && *pet.OwnerEmail != "" {
		add(*pet.OwnerEmail)
	} else if owner, err := s.users.FindByID(ctx, pet.UserID); err == nil {
		add(owner.Email)
	} else if s.logg != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "scan.owner_lookup_failed")
	}

	rows, err := s.contacts.ListByPet(ctx, pet.ID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "scan.contact_lookup_failed")
		}
		return out
	}
	for i := range rows {
		if rows[i].Email != nil {
			add(*rows[i].Email)
		}
	}
	return out
}

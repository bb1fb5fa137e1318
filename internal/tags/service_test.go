package tags

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/internal/notifications"
	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
)

type stubTagsRepo struct {
	byID     map[uuid.UUID]*models.Tag
	byCode   map[string]*models.Tag
	byUser   map[uuid.UUID][]models.Tag
	linkFail bool
}

func newStubTagsRepo() *stubTagsRepo {
	return &stubTagsRepo{
		byID:   map[uuid.UUID]*models.Tag{},
		byCode: map[string]*models.Tag{},
		byUser: map[uuid.UUID][]models.Tag{},
	}
}

func (s *stubTagsRepo) add(tag *models.Tag) *models.Tag {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	s.byID[tag.ID] = tag
	s.byCode[tag.ActivationCode] = tag
	return tag
}

func (s *stubTagsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *tag
	return &copied, nil
}

func (s *stubTagsRepo) FindByActivationCode(_ context.Context, code string) (*models.Tag, error) {
	tag, ok := s.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *tag
	return &copied, nil
}

func (s *stubTagsRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Tag, error) {
	return s.byUser[userID], nil
}

func (s *stubTagsRepo) Activate(_ context.Context, tagID, userID uuid.UUID, at time.Time) (bool, error) {
	tag, ok := s.byID[tagID]
	if !ok || tag.IsActivated {
		return false, nil
	}
	tag.IsActivated = true
	tag.ActivatedAt = &at
	tag.UserID = &userID
	return true, nil
}

func (s *stubTagsRepo) LinkToPet(_ context.Context, _ *gorm.DB, tagID, petID uuid.UUID) (bool, error) {
	tag, ok := s.byID[tagID]
	if !ok || tag.PetID != nil || s.linkFail {
		return false, nil
	}
	tag.PetID = &petID
	return true, nil
}

func (s *stubTagsRepo) Unlink(_ context.Context, _ *gorm.DB, tagID uuid.UUID) error {
	if tag, ok := s.byID[tagID]; ok {
		tag.PetID = nil
	}
	return nil
}

func (s *stubTagsRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

type stubPetsRepo struct {
	byID     map[uuid.UUID]*models.Pet
	setCodes map[uuid.UUID]string
}

func newStubPetsRepo() *stubPetsRepo {
	return &stubPetsRepo{byID: map[uuid.UUID]*models.Pet{}, setCodes: map[uuid.UUID]string{}}
}

func (s *stubPetsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Pet, error) {
	pet, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pet, nil
}

func (s *stubPetsRepo) SetTagCodes(_ context.Context, _ *gorm.DB, petID uuid.UUID, tagCode string) error {
	s.setCodes[petID] = tagCode
	return nil
}

type stubUsersRepo struct {
	byID map[uuid.UUID]*models.User
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{byID: map[uuid.UUID]*models.User{}}
}

func (s *stubUsersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type captureNotifier struct {
	events []notifications.Event
}

func (c *captureNotifier) Notify(_ context.Context, event notifications.Event) error {
	c.events = append(c.events, event)
	return nil
}

func testTagService(t *testing.T, repo *stubTagsRepo, pets *stubPetsRepo) Service {
	t.Helper()
	svc, err := NewService(repo, pets, newStubUsersRepo(), stubTx{}, nil, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestValidateCode(t *testing.T) {
	repo := newStubTagsRepo()
	repo.add(&models.Tag{ActivationCode: "ABCD2345", TagCode: "AAAA111122223333"})
	used := repo.add(&models.Tag{ActivationCode: "WXYZ6789", TagCode: "BBBB111122223333"})
	used.IsActivated = true

	svc := testTagService(t, repo, newStubPetsRepo())

	res, err := svc.ValidateCode(context.Background(), " abcd2345 ")
	if err != nil {
		t.Fatalf("ValidateCode returned error: %v", err)
	}
	if !res.Valid || res.Message == "" {
		t.Fatalf("fresh code should be valid, got %+v", res)
	}

	_, err = svc.ValidateCode(context.Background(), "WXYZ6789")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("used code must conflict, got %v", err)
	}

	_, err = svc.ValidateCode(context.Background(), "NOPE2345")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown code must be not found, got %v", err)
	}
}

func TestActivateEmailsTheOwner(t *testing.T) {
	repo := newStubTagsRepo()
	repo.add(&models.Tag{ActivationCode: "ABCD2345", TagCode: "AAAA111122223333"})
	users := newStubUsersRepo()
	notifier := &captureNotifier{}

	owner := uuid.New()
	users.byID[owner] = &models.User{ID: owner, Email: "owner@example.com", Name: "Jordan Vale"}

	svc, err := NewService(repo, newStubPetsRepo(), users, stubTx{}, notifier, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	if _, err := svc.Activate(context.Background(), owner, "ABCD2345"); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("expected one event, got %d", len(notifier.events))
	}
	ev := notifier.events[0]
	if ev.Kind != notifications.KindTagActivated || ev.To != "owner@example.com" || ev.Name != "Jordan Vale" {
		t.Fatalf("event missing recipient details: %+v", ev)
	}
	if ev.TagCode != "AAAA111122223333" || ev.ActivationCode != "ABCD2345" {
		t.Fatalf("event missing tag details: %+v", ev)
	}
}

func TestActivateClaimsTagOnce(t *testing.T) {
	repo := newStubTagsRepo()
	repo.add(&models.Tag{ActivationCode: "ABCD2345", TagCode: "AAAA111122223333"})
	svc := testTagService(t, repo, newStubPetsRepo())

	owner := uuid.New()
	dto, err := svc.Activate(context.Background(), owner, "ABCD2345")
	if err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if !dto.IsActivated || dto.UserID == nil || *dto.UserID != owner || dto.ActivatedAt == nil {
		t.Fatalf("activation state not set: %+v", dto)
	}

	_, err = svc.Activate(context.Background(), uuid.New(), "ABCD2345")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("second activation must conflict, got %v", err)
	}
}

func TestActivateUnknownCodeNotFound(t *testing.T) {
	svc := testTagService(t, newStubTagsRepo(), newStubPetsRepo())
	_, err := svc.Activate(context.Background(), uuid.New(), "NOPE2345")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestActivateLostRaceConflicts(t *testing.T) {
	repo := newStubTagsRepo()
	tag := repo.add(&models.Tag{ActivationCode: "ABCD2345", TagCode: "AAAA111122223333"})
	svc := testTagService(t, repo, newStubPetsRepo())

	// the lookup path still sees the tag unactivated, but the stored row was
	// claimed in between, so the conditional update must lose
	winner := uuid.New()
	repo.byCode["ABCD2345"] = &models.Tag{ID: tag.ID, ActivationCode: "ABCD2345", TagCode: tag.TagCode}
	tag.IsActivated = true
	tag.UserID = &winner

	_, err := svc.Activate(context.Background(), uuid.New(), "ABCD2345")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("losing a concurrent activation must conflict, got %v", err)
	}
	if *tag.UserID != winner {
		t.Fatalf("winner ownership must be preserved")
	}
}

func TestLinkToPetSetsLegacyCodes(t *testing.T) {
	repo := newStubTagsRepo()
	pets := newStubPetsRepo()
	owner := uuid.New()
	now := time.Now()
	tag := repo.add(&models.Tag{ActivationCode: "ABCD2345", TagCode: "AAAA111122223333", IsActivated: true, ActivatedAt: &now, UserID: &owner})
	pet := &models.Pet{ID: uuid.New(), UserID: owner, Name: "Rex", Species: "Dog"}
	pets.byID[pet.ID] = pet

	svc := testTagService(t, repo, pets)
	dto, err := svc.LinkToPet(context.Background(), owner, tag.ID, pet.ID)
	if err != nil {
		t.Fatalf("LinkToPet returned error: %v", err)
	}
	if dto.PetID == nil || *dto.PetID != pet.ID {
		t.Fatalf("tag must reference the pet, got %+v", dto)
	}
	if pets.setCodes[pet.ID] != tag.TagCode {
		t.Fatalf("pet legacy codes must mirror the tag code")
	}
}

func TestLinkToPetGuards(t *testing.T) {
	repo := newStubTagsRepo()
	pets := newStubPetsRepo()
	owner := uuid.New()
	other := uuid.New()
	now := time.Now()

	activated := repo.add(&models.Tag{ActivationCode: "AAAA2345", TagCode: "AAAA111122223333", IsActivated: true, ActivatedAt: &now, UserID: &owner})
	unactivated := repo.add(&models.Tag{ActivationCode: "BBBB2345", TagCode: "BBBB111122223333", UserID: &owner})
	linkedPetID := uuid.New()
	linked := repo.add(&models.Tag{ActivationCode: "CCCC2345", TagCode: "CCCC111122223333", IsActivated: true, UserID: &owner, PetID: &linkedPetID})

	pet := &models.Pet{ID: uuid.New(), UserID: owner, Name: "Rex", Species: "Dog"}
	otherPet := &models.Pet{ID: uuid.New(), UserID: other, Name: "Mia", Species: "Cat"}
	pets.byID[pet.ID] = pet
	pets.byID[otherPet.ID] = otherPet

	svc := testTagService(t, repo, pets)

	cases := []struct {
		name  string
		tagID uuid.UUID
		petID uuid.UUID
		user  uuid.UUID
		code  pkgerrors.Code
	}{
		{"unknown tag", uuid.New(), pet.ID, owner, pkgerrors.CodeNotFound},
		{"foreign tag", activated.ID, pet.ID, other, pkgerrors.CodeForbidden},
		{"unactivated tag", unactivated.ID, pet.ID, owner, pkgerrors.CodeConflict},
		{"already linked", linked.ID, pet.ID, owner, pkgerrors.CodeConflict},
		{"unknown pet", activated.ID, uuid.New(), owner, pkgerrors.CodeNotFound},
		{"foreign pet", activated.ID, otherPet.ID, owner, pkgerrors.CodeForbidden},
	}
	for _, tc := range cases {
		_, err := svc.LinkToPet(context.Background(), tc.user, tc.tagID, tc.petID)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != tc.code {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestUnlink(t *testing.T) {
	repo := newStubTagsRepo()
	owner := uuid.New()
	petID := uuid.New()
	tag := repo.add(&models.Tag{ActivationCode: "ABCD2345", TagCode: "AAAA111122223333", IsActivated: true, UserID: &owner, PetID: &petID})

	svc := testTagService(t, repo, newStubPetsRepo())

	if err := svc.Unlink(context.Background(), owner, tag.ID); err != nil {
		t.Fatalf("Unlink returned error: %v", err)
	}
	if repo.byID[tag.ID].PetID != nil {
		t.Fatalf("pet reference must be cleared")
	}

	err := svc.Unlink(context.Background(), owner, tag.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unlinking an unlinked tag must conflict, got %v", err)
	}
}

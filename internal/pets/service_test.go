package pets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
)

type stubPetsRepo struct {
	byID      map[uuid.UUID]*models.Pet
	createErr error
	deleted   []uuid.UUID
}

func newStubPetsRepo() *stubPetsRepo {
	return &stubPetsRepo{byID: map[uuid.UUID]*models.Pet{}}
}

func (s *stubPetsRepo) Create(_ context.Context, _ *gorm.DB, pet *models.Pet) (*models.Pet, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if pet.ID == uuid.Nil {
		pet.ID = uuid.New()
	}
	s.byID[pet.ID] = pet
	return pet, nil
}

func (s *stubPetsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Pet, error) {
	pet, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pet, nil
}

func (s *stubPetsRepo) ListByOwner(_ context.Context, userID uuid.UUID) ([]models.Pet, error) {
	var out []models.Pet
	for _, pet := range s.byID {
		if pet.UserID == userID {
			out = append(out, *pet)
		}
	}
	return out, nil
}

func (s *stubPetsRepo) Update(_ context.Context, pet *models.Pet) error {
	s.byID[pet.ID] = pet
	return nil
}

func (s *stubPetsRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubTagsRepo struct {
	byID     map[uuid.UUID]*models.Tag
	linkErr  error
	unlinked []uuid.UUID
}

func newStubTagsRepo() *stubTagsRepo {
	return &stubTagsRepo{byID: map[uuid.UUID]*models.Tag{}}
}

func (s *stubTagsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tag, nil
}

func (s *stubTagsRepo) LinkToPet(_ context.Context, _ *gorm.DB, tagID, petID uuid.UUID) (bool, error) {
	if s.linkErr != nil {
		return false, s.linkErr
	}
	tag, ok := s.byID[tagID]
	if !ok || tag.PetID != nil {
		return false, nil
	}
	tag.PetID = &petID
	return true, nil
}

func (s *stubTagsRepo) UnlinkByPet(_ context.Context, _ *gorm.DB, petID uuid.UUID) error {
	s.unlinked = append(s.unlinked, petID)
	for _, tag := range s.byID {
		if tag.PetID != nil && *tag.PetID == petID {
			tag.PetID = nil
		}
	}
	return nil
}

type stubCascadeRepo struct {
	deletedPets []uuid.UUID
}

func (s *stubCascadeRepo) DeleteByPet(_ context.Context, _ *gorm.DB, petID uuid.UUID) error {
	s.deletedPets = append(s.deletedPets, petID)
	return nil
}

// rollbackTx mimics transactional semantics closely enough to verify that a
// failed link aborts the pet insert.
type rollbackTx struct {
	repo       *stubPetsRepo
	rolledBack bool
}

func (r *rollbackTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	snapshot := make(map[uuid.UUID]*models.Pet, len(r.repo.byID))
	for k, v := range r.repo.byID {
		snapshot[k] = v
	}
	if err := fn(nil); err != nil {
		r.repo.byID = snapshot
		r.rolledBack = true
		return err
	}
	return nil
}

type fixture struct {
	repo     *stubPetsRepo
	tags     *stubTagsRepo
	contacts *stubCascadeRepo
	scans    *stubCascadeRepo
	tx       *rollbackTx
	svc      Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newStubPetsRepo(),
		tags:     newStubTagsRepo(),
		contacts: &stubCascadeRepo{},
		scans:    &stubCascadeRepo{},
	}
	f.tx = &rollbackTx{repo: f.repo}
	svc, err := NewService(f.repo, f.tags, f.contacts, f.scans, f.tx, nil, "http://localhost:5173", nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) addActivatedTag(owner uuid.UUID) *models.Tag {
	now := time.Now()
	tag := &models.Tag{
		ID:             uuid.New(),
		TagCode:        "AAAA111122223333",
		ActivationCode: "ABCD2345",
		IsActivated:    true,
		ActivatedAt:    &now,
		UserID:         &owner,
	}
	f.tags.byID[tag.ID] = tag
	return tag
}

func (f *fixture) addPet(owner uuid.UUID) *models.Pet {
	pet := &models.Pet{
		ID: uuid.New(), UserID: owner, Name: "Rex", Species: "Dog",
		QRCode: "AAAA111122223333", NFCID: "AAAA111122223333",
		ShowBreed: true, ShowAge: true, ShowMedicalInfo: true,
		ShowVetInfo: true, ShowOwnerPhone: true, ShowOwnerEmail: true,
	}
	f.repo.byID[pet.ID] = pet
	return pet
}

func TestCreateLinksTagAndCopiesCodes(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	tag := f.addActivatedTag(owner)

	dto, err := f.svc.Create(context.Background(), owner, CreatePetRequest{
		TagID:   tag.ID,
		Name:    " Rex ",
		Species: "Dog",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if dto.Name != "Rex" {
		t.Fatalf("name should be trimmed, got %q", dto.Name)
	}
	if dto.QRCode != tag.TagCode || dto.NFCID != tag.TagCode {
		t.Fatalf("legacy identifiers must mirror the tag code")
	}
	if tag.PetID == nil || *tag.PetID != dto.ID {
		t.Fatalf("tag must be linked to the new pet")
	}
	if !dto.ShowOwnerPhone || !dto.ShowOwnerEmail || !dto.ShowBreed {
		t.Fatalf("privacy flags must default to visible")
	}
}

func TestCreateRejectsBadTagStates(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	other := uuid.New()

	unactivated := &models.Tag{ID: uuid.New(), TagCode: "BBBB111122223333", ActivationCode: "BBBB2345", UserID: &owner}
	f.tags.byID[unactivated.ID] = unactivated

	linkedPet := uuid.New()
	now := time.Now()
	linked := &models.Tag{ID: uuid.New(), TagCode: "CCCC111122223333", ActivationCode: "CCCC2345", IsActivated: true, ActivatedAt: &now, UserID: &owner, PetID: &linkedPet}
	f.tags.byID[linked.ID] = linked

	foreign := f.addActivatedTag(other)

	cases := []struct {
		name  string
		tagID uuid.UUID
		code  pkgerrors.Code
	}{
		{"unknown tag", uuid.New(), pkgerrors.CodeNotFound},
		{"foreign tag", foreign.ID, pkgerrors.CodeForbidden},
		{"unactivated tag", unactivated.ID, pkgerrors.CodeConflict},
		{"linked tag", linked.ID, pkgerrors.CodeConflict},
	}
	for _, tc := range cases {
		_, err := f.svc.Create(context.Background(), owner, CreatePetRequest{TagID: tc.tagID, Name: "Rex", Species: "Dog"})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != tc.code {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
		if len(f.repo.byID) != 0 {
			t.Fatalf("%s: no pet row may survive a failed create", tc.name)
		}
	}
}

func TestCreateRollsBackWhenLinkFails(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	tag := f.addActivatedTag(owner)
	f.tags.linkErr = errors.New("link write failed")

	_, err := f.svc.Create(context.Background(), owner, CreatePetRequest{TagID: tag.ID, Name: "Rex", Species: "Dog"})
	if err == nil {
		t.Fatalf("expected create to fail")
	}
	if !f.tx.rolledBack {
		t.Fatalf("transaction must roll back")
	}
	if len(f.repo.byID) != 0 {
		t.Fatalf("pet row must not survive a failed link")
	}
}

func TestGetChecksNotFoundBeforeForbidden(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	pet := f.addPet(owner)

	_, err := f.svc.Get(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown pet must be not found, got %v", err)
	}

	_, err = f.svc.Get(context.Background(), uuid.New(), pet.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("foreign pet must be forbidden, got %v", err)
	}

	dto, err := f.svc.Get(context.Background(), owner, pet.ID)
	if err != nil || dto.ID != pet.ID {
		t.Fatalf("owner read failed: %v", err)
	}
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	pet := f.addPet(owner)
	breed := "Beagle"
	pet.Breed = &breed

	newName := "Max"
	dto, err := f.svc.Update(context.Background(), owner, pet.ID, UpdatePetRequest{Name: &newName})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if dto.Name != "Max" {
		t.Fatalf("name not applied")
	}
	if dto.Breed == nil || *dto.Breed != "Beagle" {
		t.Fatalf("omitted fields must keep their value")
	}
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	pet := f.addPet(owner)
	tag := f.addActivatedTag(owner)
	tag.PetID = &pet.ID

	if err := f.svc.Delete(context.Background(), owner, pet.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := f.repo.byID[pet.ID]; ok {
		t.Fatalf("pet row must be removed")
	}
	if tag.PetID != nil {
		t.Fatalf("tag must survive unlinked")
	}
	if len(f.contacts.deletedPets) != 1 || len(f.scans.deletedPets) != 1 {
		t.Fatalf("contacts and scans must cascade")
	}
}

func TestSetLostStatusDefaultsAndClears(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	pet := f.addPet(owner)
	location := "Hyde Park"

	dto, err := f.svc.SetLostStatus(context.Background(), owner, pet.ID, LostStatusRequest{IsLost: true, LastSeenLocation: &location})
	if err != nil {
		t.Fatalf("SetLostStatus returned error: %v", err)
	}
	if !dto.IsLost || dto.LostDate == nil || dto.LastSeenLocation == nil {
		t.Fatalf("lost mode must set date and location: %+v", dto)
	}

	dto, err = f.svc.SetLostStatus(context.Background(), owner, pet.ID, LostStatusRequest{IsLost: false})
	if err != nil {
		t.Fatalf("SetLostStatus returned error: %v", err)
	}
	if dto.IsLost || dto.LostDate != nil || dto.LastSeenLocation != nil {
		t.Fatalf("clearing lost mode must wipe date and location: %+v", dto)
	}
}

func TestSetPrivacyFlagsPartialAndIdempotent(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	pet := f.addPet(owner)

	off := false
	dto, err := f.svc.SetPrivacyFlags(context.Background(), owner, pet.ID, PrivacyFlagsRequest{ShowOwnerPhone: &off})
	if err != nil {
		t.Fatalf("SetPrivacyFlags returned error: %v", err)
	}
	if dto.ShowOwnerPhone {
		t.Fatalf("supplied flag must change")
	}
	if !dto.ShowOwnerEmail || !dto.ShowBreed {
		t.Fatalf("omitted flags must keep their value")
	}

	// empty body changes nothing
	dto2, err := f.svc.SetPrivacyFlags(context.Background(), owner, pet.ID, PrivacyFlagsRequest{})
	if err != nil {
		t.Fatalf("SetPrivacyFlags returned error: %v", err)
	}
	if *dto2 != *dto {
		t.Fatalf("empty update must be a no-op")
	}
}

func TestQRCodeImageRendersDataURL(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	pet := f.addPet(owner)

	qr, err := f.svc.QRCodeImage(context.Background(), owner, pet.ID)
	if err != nil {
		t.Fatalf("QRCodeImage returned error: %v", err)
	}
	if !strings.HasPrefix(qr.QRCodeImage, "data:image/png;base64,") {
		t.Fatalf("expected a PNG data URL, got %q", qr.QRCodeImage[:min(len(qr.QRCodeImage), 40)])
	}
	if qr.QRCode != pet.QRCode {
		t.Fatalf("expected qr code %q, got %q", pet.QRCode, qr.QRCode)
	}
}

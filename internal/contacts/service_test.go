package contacts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wooftrace/wooftrace-backend/pkg/db/models"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
)

type stubContactsRepo struct {
	byID map[uuid.UUID]*models.Contact
}

func newStubContactsRepo() *stubContactsRepo {
	return &stubContactsRepo{byID: map[uuid.UUID]*models.Contact{}}
}

func (s *stubContactsRepo) Create(_ context.Context, contact *models.Contact) (*models.Contact, error) {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	s.byID[contact.ID] = contact
	return contact, nil
}

func (s *stubContactsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Contact, error) {
	contact, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contact, nil
}

func (s *stubContactsRepo) ListByPet(_ context.Context, petID uuid.UUID) ([]models.Contact, error) {
	var out []models.Contact
	for _, c := range s.byID {
		if c.PetID == petID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubContactsRepo) Update(_ context.Context, contact *models.Contact) error {
	s.byID[contact.ID] = contact
	return nil
}

func (s *stubContactsRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

type stubPetsRepo struct {
	byID map[uuid.UUID]*models.Pet
}

func (s *stubPetsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Pet, error) {
	pet, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pet, nil
}

func newFixture(t *testing.T) (Service, *stubContactsRepo, *stubPetsRepo) {
	t.Helper()
	repo := newStubContactsRepo()
	pets := &stubPetsRepo{byID: map[uuid.UUID]*models.Pet{}}
	svc, err := NewService(repo, pets, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, repo, pets
}

func TestCreateRequiresPetOwnership(t *testing.T) {
	svc, repo, pets := newFixture(t)
	owner := uuid.New()
	pet := &models.Pet{ID: uuid.New(), UserID: owner}
	pets.byID[pet.ID] = pet

	_, err := svc.Create(context.Background(), owner, uuid.New(), CreateContactRequest{Name: "Ana"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown pet must be not found, got %v", err)
	}

	_, err = svc.Create(context.Background(), uuid.New(), pet.ID, CreateContactRequest{Name: "Ana"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("foreign pet must be forbidden, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("no contact row may survive a failed create")
	}
}

func TestCreateDefaultsPriorityToZero(t *testing.T) {
	svc, _, pets := newFixture(t)
	owner := uuid.New()
	pet := &models.Pet{ID: uuid.New(), UserID: owner}
	pets.byID[pet.ID] = pet

	dto, err := svc.Create(context.Background(), owner, pet.ID, CreateContactRequest{Name: " Ana "})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if dto.Name != "Ana" {
		t.Fatalf("name should be trimmed, got %q", dto.Name)
	}
	if dto.Priority != 0 {
		t.Fatalf("priority should default to 0, got %d", dto.Priority)
	}
	if dto.PetID != pet.ID {
		t.Fatalf("contact must hang off the pet")
	}
}

func TestUpdateChecksOwnershipThroughPet(t *testing.T) {
	svc, repo, pets := newFixture(t)
	owner := uuid.New()
	pet := &models.Pet{ID: uuid.New(), UserID: owner}
	pets.byID[pet.ID] = pet
	contact := &models.Contact{ID: uuid.New(), PetID: pet.ID, Name: "Ana", Priority: 2}
	repo.byID[contact.ID] = contact

	_, err := svc.Update(context.Background(), uuid.New(), contact.ID, UpdateContactRequest{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("foreign contact must be forbidden, got %v", err)
	}

	phone := "+1 555 0100"
	dto, err := svc.Update(context.Background(), owner, contact.ID, UpdateContactRequest{Phone: &phone})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if dto.Phone == nil || *dto.Phone != phone {
		t.Fatalf("phone not applied")
	}
	if dto.Name != "Ana" || dto.Priority != 2 {
		t.Fatalf("omitted fields must keep their value")
	}
}

func TestDeleteRemovesContact(t *testing.T) {
	svc, repo, pets := newFixture(t)
	owner := uuid.New()
	pet := &models.Pet{ID: uuid.New(), UserID: owner}
	pets.byID[pet.ID] = pet
	contact := &models.Contact{ID: uuid.New(), PetID: pet.ID, Name: "Ana"}
	repo.byID[contact.ID] = contact

	if err := svc.Delete(context.Background(), owner, contact.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := repo.byID[contact.ID]; ok {
		t.Fatalf("contact row must be removed")
	}

	err := svc.Delete(context.Background(), owner, contact.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("second delete must be not found, got %v", err)
	}
}

func TestListByPetGatedByOwnership(t *testing.T) {
	svc, repo, pets := newFixture(t)
	owner := uuid.New()
	pet := &models.Pet{ID: uuid.New(), UserID: owner}
	pets.byID[pet.ID] = pet
	seeded := &models.Contact{ID: uuid.New(), PetID: pet.ID, Name: "Ana"}
	repo.byID[seeded.ID] = seeded

	if _, err := svc.ListByPet(context.Background(), uuid.New(), pet.ID); err == nil {
		t.Fatalf("foreign caller must not list contacts")
	}
	rows, err := svc.ListByPet(context.Background(), owner, pet.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("owner list failed: %v (%d rows)", err, len(rows))
	}
}

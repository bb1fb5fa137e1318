package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/internal/admins"
	"github.com/wooftrace/wooftrace-backend/internal/auth"
	"github.com/wooftrace/wooftrace-backend/internal/contacts"
	"github.com/wooftrace/wooftrace-backend/internal/factory"
	"github.com/wooftrace/wooftrace-backend/internal/pets"
	"github.com/wooftrace/wooftrace-backend/internal/publicprofile"
	"github.com/wooftrace/wooftrace-backend/internal/scans"
	"github.com/wooftrace/wooftrace-backend/internal/tags"
	"github.com/wooftrace/wooftrace-backend/internal/users"
	pkgauth "github.com/wooftrace/wooftrace-backend/pkg/auth"
	"github.com/wooftrace/wooftrace-backend/pkg/config"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return &auth.RegisterResponse{}, nil
}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) VerifyEmail(context.Context, string) error {
	return nil
}

func (stubAuthService) ResendVerification(context.Context, string) error {
	return nil
}

func (stubAuthService) ForgotPassword(context.Context, string) error {
	return nil
}

func (stubAuthService) ResetPassword(context.Context, auth.ResetPasswordRequest) error {
	return nil
}

type stubAdminsService struct{}

func (stubAdminsService) Login(context.Context, admins.LoginRequest) (*admins.LoginResponse, error) {
	return &admins.LoginResponse{}, nil
}

func (stubAdminsService) Bootstrap(context.Context, admins.SetupRequest) (*admins.AdminDTO, error) {
	return &admins.AdminDTO{}, nil
}

type stubTagsService struct{}

func (stubTagsService) ValidateCode(context.Context, string) (*tags.ValidateCodeResult, error) {
	return &tags.ValidateCodeResult{Valid: true}, nil
}

func (stubTagsService) Activate(context.Context, uuid.UUID, string) (*tags.TagDTO, error) {
	return &tags.TagDTO{}, nil
}

func (stubTagsService) ListByOwner(context.Context, uuid.UUID) ([]tags.TagDTO, error) {
	return []tags.TagDTO{}, nil
}

func (stubTagsService) LinkToPet(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*tags.TagDTO, error) {
	return &tags.TagDTO{}, nil
}

func (stubTagsService) Unlink(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type stubPetsService struct{}

func (stubPetsService) Create(context.Context, uuid.UUID, pets.CreatePetRequest) (*pets.PetDTO, error) {
	return &pets.PetDTO{}, nil
}

func (stubPetsService) Get(context.Context, uuid.UUID, uuid.UUID) (*pets.PetDTO, error) {
	return &pets.PetDTO{}, nil
}

func (stubPetsService) ListByOwner(context.Context, uuid.UUID) ([]pets.PetDTO, error) {
	return []pets.PetDTO{}, nil
}

func (stubPetsService) Update(context.Context, uuid.UUID, uuid.UUID, pets.UpdatePetRequest) (*pets.PetDTO, error) {
	return &pets.PetDTO{}, nil
}

func (stubPetsService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubPetsService) SetLostStatus(context.Context, uuid.UUID, uuid.UUID, pets.LostStatusRequest) (*pets.PetDTO, error) {
	return &pets.PetDTO{}, nil
}

func (stubPetsService) SetPrivacyFlags(context.Context, uuid.UUID, uuid.UUID, pets.PrivacyFlagsRequest) (*pets.PetDTO, error) {
	return &pets.PetDTO{}, nil
}

func (stubPetsService) SetImage(context.Context, uuid.UUID, uuid.UUID, string) (*pets.PetDTO, error) {
	return &pets.PetDTO{}, nil
}

func (stubPetsService) QRCodeImage(context.Context, uuid.UUID, uuid.UUID) (*pets.QRCodeDTO, error) {
	return &pets.QRCodeDTO{QRCodeImage: "data:image/png;base64,"}, nil
}

type stubContactsService struct{}

func (stubContactsService) Create(context.Context, uuid.UUID, uuid.UUID, contacts.CreateContactRequest) (*contacts.ContactDTO, error) {
	return &contacts.ContactDTO{}, nil
}

func (stubContactsService) ListByPet(context.Context, uuid.UUID, uuid.UUID) ([]contacts.ContactDTO, error) {
	return []contacts.ContactDTO{}, nil
}

func (stubContactsService) Update(context.Context, uuid.UUID, uuid.UUID, contacts.UpdateContactRequest) (*contacts.ContactDTO, error) {
	return &contacts.ContactDTO{}, nil
}

func (stubContactsService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type stubScansService struct{}

func (stubScansService) Record(context.Context, uuid.UUID, scans.RecordScanRequest, string) (*scans.RecordScanResponse, error) {
	return &scans.RecordScanResponse{Message: "scan recorded", ScanID: uuid.New()}, nil
}

func (stubScansService) ListByPet(context.Context, uuid.UUID, uuid.UUID) ([]scans.ScanDTO, error) {
	return []scans.ScanDTO{}, nil
}

type stubPublicService struct{}

func (stubPublicService) ResolveByTagCode(context.Context, string) (*publicprofile.PublicPetDTO, error) {
	return &publicprofile.PublicPetDTO{Name: "Rex"}, nil
}

func (stubPublicService) ResolveByQRCode(context.Context, string) (*publicprofile.PublicPetDTO, error) {
	return &publicprofile.PublicPetDTO{Name: "Rex"}, nil
}

func (stubPublicService) ResolveByNFCID(context.Context, string) (*publicprofile.PublicPetDTO, error) {
	return &publicprofile.PublicPetDTO{Name: "Rex"}, nil
}

func (stubPublicService) PublicContacts(context.Context, uuid.UUID) ([]publicprofile.PublicContactDetailDTO, error) {
	return []publicprofile.PublicContactDetailDTO{}, nil
}

type stubFactoryService struct{}

func (stubFactoryService) GenerateBatch(context.Context, factory.GenerateBatchRequest) (*factory.GenerateBatchResponse, error) {
	return &factory.GenerateBatchResponse{}, nil
}

func (stubFactoryService) ListTags(context.Context, tags.ListFilter) (*factory.TagListResponse, error) {
	return &factory.TagListResponse{}, nil
}

func (stubFactoryService) Stats(context.Context) (*tags.Stats, error) {
	return &tags.Stats{}, nil
}

func (stubFactoryService) ProgrammingData(context.Context, uuid.UUID) (*factory.ProgrammingDataDTO, error) {
	return &factory.ProgrammingDataDTO{}, nil
}

func (stubFactoryService) UpdateTag(context.Context, uuid.UUID, factory.UpdateTagRequest) (*tags.AdminTagDTO, error) {
	return &tags.AdminTagDTO{}, nil
}

func (stubFactoryService) DeleteTag(context.Context, uuid.UUID) error {
	return nil
}

func (stubFactoryService) UnlinkTag(context.Context, uuid.UUID) error {
	return nil
}

func (stubFactoryService) ListUsers(context.Context) ([]factory.AdminUserDTO, error) {
	return []factory.AdminUserDTO{}, nil
}

func (stubFactoryService) UpdateUser(context.Context, uuid.UUID, factory.UpdateUserRequest) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubFactoryService) DeleteUser(context.Context, uuid.UUID) error {
	return nil
}

func (stubFactoryService) ListPets(context.Context) ([]pets.PetDTO, error) {
	return []pets.PetDTO{}, nil
}

func (stubFactoryService) UpdatePet(context.Context, uuid.UUID, pets.UpdatePetRequest) (*pets.PetDTO, error) {
	return &pets.PetDTO{}, nil
}

func (stubFactoryService) TransferPet(context.Context, uuid.UUID, uuid.UUID) (*pets.PetDTO, error) {
	return &pets.PetDTO{}, nil
}

func (stubFactoryService) DeletePet(context.Context, uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:          "secret",
			Issuer:          "issuer",
			ExpirationHours: 1,
		},
		Frontend: config.FrontendConfig{BaseURL: "http://localhost:5173"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis client
		nil, // http metrics
		nil, // upload store
		stubAuthService{},
		stubAdminsService{},
		stubTagsService{},
		stubPetsService{},
		stubContactsService{},
		stubScansService{},
		stubPublicService{},
		stubFactoryService{},
	)
}

func userToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintUserToken(cfg.JWT, time.Now(), uuid.New())
	if err != nil {
		t.Fatalf("mint user token: %v", err)
	}
	return token
}

func adminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAdminToken(cfg.JWT, time.Now(), uuid.New())
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}
	return token
}

func TestHealthLiveSetsEnvHeader(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
	if env := resp.Header().Get("X-WoofTrace-Env"); env != "test" {
		t.Fatalf("expected env header test got %q", env)
	}
}

func TestOwnerRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, target := range []string{"/api/pets", "/api/tags", "/api/location/scans/" + uuid.NewString()} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token got %d", target, resp.Code)
		}
	}
}

func TestOwnerRoutesAcceptUserToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/pets", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for pet list got %d", resp.Code)
	}
}

func TestAdminRoutesRejectUserToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/factory/stats", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for user token on admin route got %d", resp.Code)
	}
}

func TestAdminRoutesAcceptAdminToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/factory/stats", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin stats got %d", resp.Code)
	}
}

func TestAdminFactoryManagementRoutes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := adminToken(t, cfg)

	for _, tc := range []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/admin/factory/tags", ""},
		{http.MethodGet, "/api/admin/factory/users", ""},
		{http.MethodGet, "/api/admin/factory/pets", ""},
		{http.MethodPatch, "/api/admin/factory/users/" + uuid.NewString(), `{"name":"New Name"}`},
		{http.MethodPatch, "/api/admin/factory/pets/" + uuid.NewString(), `{"name":"Rex"}`},
		{http.MethodPatch, "/api/admin/factory/pets/" + uuid.NewString() + "/transfer", `{"newUserId":"` + uuid.NewString() + `"}`},
		{http.MethodPost, "/api/admin/factory/tags/" + uuid.NewString() + "/unlink", ""},
	} {
		var body io.Reader
		if tc.body != "" {
			body = strings.NewReader(tc.body)
		}
		req := httptest.NewRequest(tc.method, tc.target, body)
		req.Header.Set("Authorization", "Bearer "+token)
		if tc.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s %s got %d", tc.method, tc.target, resp.Code)
		}
	}
}

func TestTagValidateCodeIsAnonymous(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"activationCode":"ABCD2345"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tags/validate-code", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous validate-code got %d", resp.Code)
	}
}

func TestTagScanIsAnonymous(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/tags/scan/ABCDEF0123456789", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public scan got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Rex") {
		t.Fatalf("expected public profile body got %s", resp.Body.String())
	}
}

func TestLocationScanRecordIsAnonymous(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"latitude":51.5,"longitude":-0.12,"accuracy":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/location/scan/"+uuid.NewString(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for anonymous scan got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "scanId") {
		t.Fatalf("expected scanId in body got %s", resp.Body.String())
	}
}

func TestPublicProfileRoutesAreAnonymous(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, target := range []string{
		"/api/pets/public/qr/deadbeef",
		"/api/pets/public/nfc/deadbeef",
		"/api/contacts/public/pet/" + uuid.NewString(),
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", target, resp.Code)
		}
	}
}

func TestRegisterRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestVerifyEmailRequiresToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without token got %d", resp.Code)
	}
}

func TestAdminSetupIsAnonymous(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"email":"ops@example.com","password":"supersecret","name":"Ops"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/setup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin setup got %d", resp.Code)
	}
}

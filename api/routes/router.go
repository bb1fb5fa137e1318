package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wooftrace/wooftrace-backend/api/controllers"
	"github.com/wooftrace/wooftrace-backend/api/middleware"
	"github.com/wooftrace/wooftrace-backend/internal/admins"
	"github.com/wooftrace/wooftrace-backend/internal/auth"
	"github.com/wooftrace/wooftrace-backend/internal/contacts"
	"github.com/wooftrace/wooftrace-backend/internal/factory"
	"github.com/wooftrace/wooftrace-backend/internal/pets"
	"github.com/wooftrace/wooftrace-backend/internal/publicprofile"
	"github.com/wooftrace/wooftrace-backend/internal/scans"
	"github.com/wooftrace/wooftrace-backend/internal/tags"
	"github.com/wooftrace/wooftrace-backend/pkg/config"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
	"github.com/wooftrace/wooftrace-backend/pkg/metrics"
	"github.com/wooftrace/wooftrace-backend/pkg/redis"
	"github.com/wooftrace/wooftrace-backend/pkg/storage/local"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	uploadStore *local.Store,
	authService auth.Service,
	adminsService admins.Service,
	tagsService tags.Service,
	petsService pets.Service,
	contactsService contacts.Service,
	scansService scans.Service,
	publicService publicprofile.Service,
	factoryService factory.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Frontend),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
		r.Handle("/metrics", httpMetrics.Handler())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	limit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if redisClient == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, logg))
	})

	if uploadStore != nil {
		r.Handle(local.PublicPrefix+"/*", uploadStore.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())

		r.Route("/auth", func(r chi.Router) {
			r.With(limit(registerPolicy)).Post("/register", controllers.Register(authService, logg))
			r.With(limit(loginPolicy)).Post("/login", controllers.Login(authService, logg))
			r.Get("/verify-email", controllers.VerifyEmail(authService, logg))
			r.With(limit(registerPolicy)).Post("/resend-verification", controllers.ResendVerification(authService, logg))
			r.With(limit(loginPolicy)).Post("/forgot-password", controllers.ForgotPassword(authService, logg))
			r.Post("/reset-password", controllers.ResetPassword(authService, logg))
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/scan/{tagCode}", controllers.TagScan(publicService, logg))
			r.Post("/validate-code", controllers.TagValidateCode(tagsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Post("/activate", controllers.TagActivate(tagsService, logg))
				r.Get("/", controllers.TagList(tagsService, logg))
				r.Post("/link", controllers.TagLink(tagsService, logg))
				r.Delete("/{tagId}/unlink", controllers.TagUnlink(tagsService, logg))
			})
		})

		r.Route("/pets", func(r chi.Router) {
			r.Get("/public/qr/{qrCode}", controllers.PetPublicByQR(publicService, logg))
			r.Get("/public/nfc/{nfcId}", controllers.PetPublicByNFC(publicService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Post("/", controllers.PetCreate(petsService, logg))
				r.Get("/", controllers.PetList(petsService, logg))
				r.Get("/{id}", controllers.PetGet(petsService, logg))
				r.Put("/{id}", controllers.PetUpdate(petsService, logg))
				r.Delete("/{id}", controllers.PetDelete(petsService, logg))
				r.Patch("/{id}/lost-status", controllers.PetLostStatus(petsService, logg))
				r.Patch("/{id}/privacy", controllers.PetPrivacy(petsService, logg))
				r.Get("/{id}/qrcode", controllers.PetQRCode(petsService, logg))
				r.Post("/{id}/upload", controllers.PetUpload(petsService, uploadStore, logg))
			})
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/public/pet/{petId}", controllers.ContactPublicList(publicService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Get("/pet/{petId}", controllers.ContactList(contactsService, logg))
				r.Post("/pet/{petId}", controllers.ContactCreate(contactsService, logg))
				r.Put("/{contactId}", controllers.ContactUpdate(contactsService, logg))
				r.Delete("/{contactId}", controllers.ContactDelete(contactsService, logg))
			})
		})

		r.Route("/location", func(r chi.Router) {
			r.Post("/scan/{petId}", controllers.LocationScanRecord(scansService, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).Get("/scans/{petId}", controllers.LocationScanList(scansService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.With(limit(loginPolicy)).Post("/login", controllers.AdminLogin(adminsService, logg))
				r.Post("/setup", controllers.AdminSetup(adminsService, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(cfg.JWT, logg))

				r.Route("/factory", func(r chi.Router) {
					r.Post("/generate", controllers.FactoryGenerate(factoryService, logg))
					r.Get("/stats", controllers.FactoryStats(factoryService, logg))
					r.Get("/program/{tagId}", controllers.FactoryProgram(factoryService, logg))

					r.Route("/tags", func(r chi.Router) {
						r.Get("/", controllers.FactoryTags(factoryService, logg))
						r.Patch("/{tagId}", controllers.AdminTagUpdate(factoryService, logg))
						r.Delete("/{tagId}", controllers.AdminTagDelete(factoryService, logg))
						r.Post("/{tagId}/unlink", controllers.AdminTagUnlink(factoryService, logg))
					})

					r.Route("/users", func(r chi.Router) {
						r.Get("/", controllers.AdminUsersList(factoryService, logg))
						r.Patch("/{userId}", controllers.AdminUserUpdate(factoryService, logg))
						r.Delete("/{userId}", controllers.AdminUserDelete(factoryService, logg))
					})

					r.Route("/pets", func(r chi.Router) {
						r.Get("/", controllers.AdminPetsList(factoryService, logg))
						r.Patch("/{petId}", controllers.AdminPetUpdate(factoryService, logg))
						r.Patch("/{petId}/transfer", controllers.AdminPetTransfer(factoryService, logg))
						r.Delete("/{petId}", controllers.AdminPetDelete(factoryService, logg))
					})
				})
			})
		})
	})

	return r
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wooftrace/wooftrace-backend/api/routes"
	"github.com/wooftrace/wooftrace-backend/internal/admins"
	"github.com/wooftrace/wooftrace-backend/internal/auth"
	"github.com/wooftrace/wooftrace-backend/internal/contacts"
	"github.com/wooftrace/wooftrace-backend/internal/factory"
	"github.com/wooftrace/wooftrace-backend/internal/notifications"
	"github.com/wooftrace/wooftrace-backend/internal/pets"
	"github.com/wooftrace/wooftrace-backend/internal/publicprofile"
	"github.com/wooftrace/wooftrace-backend/internal/scans"
	"github.com/wooftrace/wooftrace-backend/internal/tags"
	"github.com/wooftrace/wooftrace-backend/internal/users"
	"github.com/wooftrace/wooftrace-backend/pkg/config"
	"github.com/wooftrace/wooftrace-backend/pkg/db"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
	"github.com/wooftrace/wooftrace-backend/pkg/metrics"
	"github.com/wooftrace/wooftrace-backend/pkg/migrate"
	"github.com/wooftrace/wooftrace-backend/pkg/redis"
	"github.com/wooftrace/wooftrace-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	notifier := notifications.NewDispatcher(cfg.Notify, cfg.Frontend, notifications.NewEmailSender(cfg.Email, logg), logg)
	notifier.Start()

	uploadStore, err := local.NewStore(cfg.Uploads, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload storage", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	adminsRepo := admins.NewRepository(dbClient.DB())
	tagsRepo := tags.NewRepository(dbClient.DB())
	petsRepo := pets.NewRepository(dbClient.DB())
	contactsRepo := contacts.NewRepository(dbClient.DB())
	scansRepo := scans.NewRepository(dbClient.DB())

	authService, err := auth.NewService(usersRepo, notifier, cfg.JWT, logg)
	fatalIf(logg, "auth service", err)

	adminsService, err := admins.NewService(adminsRepo, cfg.JWT)
	fatalIf(logg, "admin service", err)

	tagsService, err := tags.NewService(tagsRepo, petsRepo, usersRepo, dbClient, notifier, logg)
	fatalIf(logg, "tag service", err)

	petsService, err := pets.NewService(petsRepo, tagsRepo, contactsRepo, scansRepo, dbClient, notifier, cfg.Frontend.BaseURL, logg)
	fatalIf(logg, "pet service", err)

	contactsService, err := contacts.NewService(contactsRepo, petsRepo, logg)
	fatalIf(logg, "contact service", err)

	scansService, err := scans.NewService(scansRepo, petsRepo, usersRepo, contactsRepo, notifier, logg)
	fatalIf(logg, "scan service", err)

	publicService, err := publicprofile.NewService(tagsRepo, petsRepo, contactsRepo, usersRepo, logg)
	fatalIf(logg, "public profile service", err)

	factoryService, err := factory.NewService(
		tagsRepo,
		petsRepo,
		usersRepo,
		contactsRepo,
		scansRepo,
		dbClient,
		cfg.Frontend.BaseURL,
		logg,
		func() int64 { return time.Now().UnixMilli() },
	)
	fatalIf(logg, "factory service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			metrics.NewHTTPMetrics(),
			uploadStore,
			authService,
			adminsService,
			tagsService,
			petsService,
			contactsService,
			scansService,
			publicService,
			factoryService,
		),
	}

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
		if err := notifier.Stop(shutdownCtx); err != nil {
			logg.Error(ctx, "error draining notifications", err)
		}
	}
}

func fatalIf(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithField(context.Background(), "component", name)
	logg.Error(ctx, "failed to initialize component", err)
	os.Exit(1)
}

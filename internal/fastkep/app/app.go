package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/documents"
	httpapi "github.com/aussiebroadwan/fastkep/internal/fastkep/http"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/revocation"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/service"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store/drivers/postgres"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/store/drivers/sqlite"
	"github.com/aussiebroadwan/fastkep/pkg/cryptox"
	"github.com/aussiebroadwan/fastkep/pkg/httpx"
	"github.com/aussiebroadwan/fastkep/pkg/jwtx"
	"github.com/aussiebroadwan/fastkep/pkg/metricsx"
	"github.com/aussiebroadwan/fastkep/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application owns every long-lived dependency of the service.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metricsx.Metrics

	db          store.Store
	keyManager  *jwtx.KeyManager
	revocations revocation.Store
	redis       *revocation.Redis // set when the redis backend is selected

	issuer       *service.TokenIssuer
	verifier     *service.TokenVerifier
	authService  *service.AuthService
	housekeeping *service.HousekeepingService
	registry     *documents.Registry
	renderer     *documents.Renderer

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "fastkep",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metricsx.New(),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	keyManager, err := InitSigningKeys(cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initRevocations(ctx); err != nil {
		app.closeStores()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	if err := app.initDocuments(); err != nil {
		app.closeStores()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("fastkep starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"revocation_backend", app.cfg.RevocationBackend,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeeping.Stop()
			app.closeStores()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping and closes stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down fastkep...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("fastkep stopped")
	return nil
}

// Handler exposes the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) closeStores() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// initDatabase opens PostgreSQL when DATABASE_URL is set, SQLite otherwise,
// and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db     store.Store
		driver string
		err    error
	)

	if isPostgresURL(app.cfg.DatabaseURL) {
		driver = "postgres"
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	} else {
		driver = "sqlite"
		dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s database: %w", driver, err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", driver)
	return nil
}

func isPostgresURL(u string) bool {
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

func (app *Application) initRevocations(ctx context.Context) error {
	switch app.cfg.RevocationBackend {
	case revocation.BackendRedis:
		r, err := revocation.NewRedisFromURL(ctx, app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect revocation redis: %w", err)
		}
		app.redis = r
		app.revocations = r
	case revocation.BackendMemory:
		app.logger.Warn("revocations are held in memory; logouts are lost on restart and not shared between instances")
		app.revocations = revocation.NewMemory()
	default:
		app.revocations = revocation.NewSQL(app.db)
	}
	return nil
}

func (app *Application) initServices() error {
	issuer, err := service.NewTokenIssuer(
		app.keyManager.Signer,
		app.cfg.Issuer,
		app.cfg.AccessTokenTTL,
		app.cfg.RefreshTokenTTL,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	issuer.Metrics = app.metrics
	app.issuer = issuer

	app.verifier = service.NewTokenVerifier(
		app.keyManager.Verifier,
		app.revocations,
		app.db.Users(),
		app.cfg.RevocationLookupTimeout,
	)
	app.verifier.Metrics = app.metrics

	app.authService = &service.AuthService{
		Store:        app.db,
		Policy:       app.cfg.PasswordPolicy(),
		Issuer:       app.issuer,
		Verifier:     app.verifier,
		Revocations:  app.revocations,
		Metrics:      app.metrics,
		WriteTimeout: app.cfg.RevocationLookupTimeout,
	}

	app.housekeeping = service.NewHousekeepingService(
		app.revocations,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeeping.Metrics = app.metrics
	return nil
}

func (app *Application) initDocuments() error {
	registry, err := documents.Builtin()
	if err != nil {
		return fmt.Errorf("failed to build document registry: %w", err)
	}
	app.registry = registry

	loc, err := time.LoadLocation(app.cfg.DocumentTimezone)
	if err != nil {
		return fmt.Errorf("failed to load document timezone: %w", err)
	}

	var converter documents.Converter = documents.HTMLPassthrough{}
	if app.cfg.DocumentPDFConverter != "" {
		pdf, err := documents.NewWKHTMLToPDF(app.cfg.DocumentPDFConverter)
		if err != nil {
			return err
		}
		converter = pdf
		app.logger.Info("documents rendered as PDF", "converter", pdf.Path)
	}

	app.renderer = documents.NewRenderer(registry, converter, loc)
	app.renderer.Metrics = app.metrics
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.logger, app.metrics, httpx.RateLimitProfilesFromEnv())

	router.AuthService = app.authService
	router.Verifier = app.verifier
	router.Registry = app.registry
	router.Renderer = app.renderer
	router.ReadinessChecks["database"] = app.db.Ping
	if app.redis != nil {
		router.ReadinessChecks["revocation"] = app.redis.Ping
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Package server initializes and runs the studio application server.
// It opens the slot store, rehydrates the state slices, and starts the
// HTTP server with graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/admin"
	"github.com/mzarzor/imagestudio/internal/server/blob"
	"github.com/mzarzor/imagestudio/internal/server/config"
	"github.com/mzarzor/imagestudio/internal/server/genapi"
	"github.com/mzarzor/imagestudio/internal/server/history"
	"github.com/mzarzor/imagestudio/internal/server/httpapi"
	"github.com/mzarzor/imagestudio/internal/server/lockout"
	"github.com/mzarzor/imagestudio/internal/server/notify"
	"github.com/mzarzor/imagestudio/internal/server/relay"
	"github.com/mzarzor/imagestudio/internal/server/session"
	"github.com/mzarzor/imagestudio/internal/server/settings"
	"github.com/mzarzor/imagestudio/internal/server/studio"
	"github.com/mzarzor/imagestudio/internal/server/users"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  kvstore.Store
	http   *httpapi.HTTPServer
}

// openStore selects the slot-store backend by driver name.
func openStore(ctx context.Context, cfg *config.Config) (kvstore.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return kvstore.NewSQLiteStore(ctx, cfg.StoreDSN)
	case "postgres":
		return kvstore.NewPostgresStore(ctx, cfg.StoreDSN)
	case "memory":
		return kvstore.NewInMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	guard := lockout.NewGuard(ctx, store, logger, cfg.LockoutThreshold, cfg.LockoutWindow)

	adminAuth, err := admin.NewAuthenticator(ctx, store, guard, logger, admin.Options{
		AdminEmail:         cfg.AdminEmail,
		AdminPassword:      cfg.AdminPassword,
		BypassCode:         cfg.BypassCode,
		BiometricEnabled:   cfg.BiometricEnabled,
		BiometricReference: cfg.BiometricReference,
	})
	if err != nil {
		return nil, fmt.Errorf("admin init error: %w", err)
	}

	sender := relay.NewClient(cfg.RelayEndpoint, cfg.RelayAPIKey, cfg.RelayTemplateID, logger)
	registry := users.NewRegistry(store, logger, sender, cfg.OTPValidityDuration)

	sessions := session.NewManager(ctx, store, logger)
	set := settings.NewManager(store, logger, cfg.DefaultLanguage)
	hist := history.NewLog(ctx, store, logger, set.SiteConfig(ctx).MaxHistory)
	queue := notify.NewQueue(notify.DefaultToastTTL)

	gen := genapi.NewClient(cfg.GenAPIEndpoint, cfg.GenAPIKey, logger)
	images := blob.NewS3Store(cfg)
	st := studio.NewService(gen, images, hist, queue, set, logger)

	httpServer := httpapi.NewHTTPServer(
		cfg.EndpointAddrHTTP,
		logger,
		cfg.SecretKey,
		cfg.AccessTokenValidityDuration,
		store,
		sessions,
		registry,
		adminAuth,
		guard,
		st,
		hist,
		queue,
		set,
	)

	return &App{config: cfg, logger: logger, store: store, http: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "store close error", "error", err)
	}
}

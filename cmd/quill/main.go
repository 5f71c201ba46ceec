package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/jackc/pgx/v5/pgxpool"

	fiberadapter "github.com/lborres/quill/adapters/fiber"
	pgxadapter "github.com/lborres/quill/adapters/pgx"
	"github.com/lborres/quill/config"
	"github.com/lborres/quill/core"
	"github.com/lborres/quill/logging"
	"github.com/lborres/quill/migrations"
	"github.com/lborres/quill/oauth"
	"github.com/lborres/quill/pkg/crypto"
	"github.com/lborres/quill/services"
)

const pruneInterval = time.Hour

func main() {
	log := logging.Default()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Error(ctx, "invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrations.Run(ctx, cfg.DatabaseDSN); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	storage := pgxadapter.New(pool)
	cache := core.NewInMemoryCache(core.CacheConfig{TTL: 5 * time.Minute})

	sessions := services.NewSessionManager(services.SessionConfig{TTL: cfg.SessionTTL}, storage, cache)
	auth := services.NewAuthService(storage, crypto.NewArgon2(), sessions, log)
	posts := services.NewPostService(storage)

	var google *oauth.Client
	if cfg.GoogleEnabled() {
		google = oauth.NewGoogleClient(oauth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Timeout:      cfg.ProviderTimeout,
		})
		log.Info(ctx, "google federation enabled", "redirect", cfg.GoogleRedirectURL)
	} else {
		log.Info(ctx, "google federation disabled")
	}

	app := fiber.New()
	app.Use(fiberlogger.New())
	// Session and state cookies are encrypted at rest in the browser
	// with a key derived from the session secret.
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: cfg.CookieKey(),
	}))

	adapter := fiberadapter.New(fiberadapter.Config{
		Auth:       auth,
		Posts:      posts,
		Google:     google,
		Log:        log,
		CookieName: cfg.SessionCookieName,
		SessionTTL: cfg.SessionTTL,
	})
	adapter.RegisterRoutes(app)

	go pruneSessions(ctx, sessions, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.ListenAddr)
	}()
	log.Info(ctx, "server listening", "addr", cfg.ListenAddr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info(ctx, "shutting down")
		return app.Shutdown()
	}
}

// pruneSessions deletes expired sessions on a fixed interval so the
// table does not accumulate dead rows between logins.
func pruneSessions(ctx context.Context, sessions *services.SessionManager, log logging.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PruneExpired(ctx)
			if err != nil {
				log.Warn(ctx, "session pruning failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info(ctx, "pruned expired sessions", "count", n)
			}
		}
	}
}

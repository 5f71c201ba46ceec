// Package fiber exposes the auth core and the post collaborator over
// HTTP. Handlers translate transport concerns (cookies, status codes,
// redirects) and delegate every decision to the services.
package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill/logging"
	"github.com/lborres/quill/oauth"
	"github.com/lborres/quill/services"
)

const defaultCookieName = "quill_session"

// Config wires the adapter's collaborators.
type Config struct {
	Auth  *services.AuthService
	Posts *services.PostService

	// Google is nil when federation is not configured; the federation
	// routes then answer 404.
	Google *oauth.Client

	Log logging.Logger

	CookieName string
	SessionTTL time.Duration
}

type Adapter struct {
	auth   *services.AuthService
	posts  *services.PostService
	google *oauth.Client
	log    logging.Logger

	cookieName string
	sessionTTL time.Duration
}

func New(cfg Config) *Adapter {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = defaultCookieName
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = services.DefaultSessionConfig().TTL
	}
	return &Adapter{
		auth:       cfg.Auth,
		posts:      cfg.Posts,
		google:     cfg.Google,
		log:        cfg.Log,
		cookieName: cookieName,
		sessionTTL: sessionTTL,
	}
}

// RegisterRoutes mounts the public surface and the gated post routes.
func (a *Adapter) RegisterRoutes(app *fiber.App) {
	app.Get("/", a.home)

	auth := app.Group("/auth")
	auth.Post("/register", a.register)
	auth.Post("/login", a.login)
	auth.Post("/logout", a.logout)
	auth.Get("/session", a.session)
	auth.Get("/google", a.googleStart)
	auth.Get("/google/callback", a.googleCallback)

	// Everything below the gate sees only authenticated requests.
	posts := app.Group("/posts")
	posts.Use(a.requireSession)
	posts.Get("/", a.listPosts)
	posts.Post("/", a.createPost)
	posts.Get("/:id", a.getPost)
	posts.Put("/:id", a.updatePost)
	posts.Delete("/:id", a.deletePost)
}

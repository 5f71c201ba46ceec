package fiber

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill/pkg/crypto"
)

const stateCookieTTL = 10 * time.Minute

// googleStart sends the browser to the provider's consent screen with
// a single-use anti-forgery state bound to this browser via a
// short-lived cookie.
func (a *Adapter) googleStart(c fiber.Ctx) error {
	if a.google == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "federated sign-in is not configured",
		})
	}

	state, err := crypto.GenerateToken(16)
	if err != nil {
		return a.handleError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     a.stateCookieName(),
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(stateCookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect().Status(fiber.StatusFound).To(a.google.AuthURL(state))
}

// googleCallback completes the flow: state check, code redemption,
// federation, session. A denial or a provider failure leaves no
// account and no session behind.
func (a *Adapter) googleCallback(c fiber.Ctx) error {
	if a.google == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "federated sign-in is not configured",
		})
	}

	// The user declined at the consent screen; back to the landing page.
	if c.Query("error") != "" {
		return c.Redirect().Status(fiber.StatusFound).To("/")
	}

	// A missing or stale state means the callback was not initiated by
	// this browser; send it back to the landing page with no session.
	state := c.Query("state")
	expected := c.Cookies(a.stateCookieName())
	a.clearStateCookie(c)
	if state == "" || expected == "" || state != expected {
		return c.Redirect().Status(fiber.StatusFound).To("/")
	}

	code := c.Query("code")
	if code == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "missing authorization code",
		})
	}

	profile, err := a.google.Authenticate(c.Context(), code)
	if err != nil {
		return a.handleError(c, err)
	}

	principal, err := a.auth.Federate(c.Context(), *profile)
	if err != nil {
		return a.handleError(c, err)
	}

	if err := a.startSession(c, principal.ID); err != nil {
		return a.handleError(c, err)
	}

	return c.Redirect().Status(fiber.StatusFound).To("/posts")
}

func (a *Adapter) stateCookieName() string {
	return a.cookieName + "_state"
}

func (a *Adapter) clearStateCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.stateCookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

package fiber

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/services"
)

func (a *Adapter) home(c fiber.Ctx) error {
	// The landing page doubles as the redirect target for anonymous
	// requests; it answers regardless of session state.
	token := c.Cookies(a.cookieName)
	if principal, err := a.auth.CurrentPrincipal(c.Context(), token); err == nil {
		return c.JSON(fiber.Map{"message": "welcome back", "principal": principal})
	}
	return c.JSON(fiber.Map{"message": "welcome"})
}

func (a *Adapter) register(c fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	principal, err := a.auth.Register(c.Context(), input)
	if err != nil {
		return a.handleError(c, err)
	}

	// Registration implies login.
	if err := a.startSession(c, principal.ID); err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(principal)
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *Adapter) login(c fiber.Ctx) error {
	var input loginInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	principal, err := a.auth.Login(c.Context(), input.Email, input.Password)
	if err != nil {
		return a.handleError(c, err)
	}

	if err := a.startSession(c, principal.ID); err != nil {
		return a.handleError(c, err)
	}

	return c.JSON(principal)
}

func (a *Adapter) logout(c fiber.Ctx) error {
	token := c.Cookies(a.cookieName)
	if token != "" {
		err := a.auth.Sessions().Destroy(c.Context(), token)
		if err != nil && !errors.Is(err, core.ErrSessionNotFound) {
			return a.handleError(c, err)
		}
	}

	a.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "signed out"})
}

func (a *Adapter) session(c fiber.Ctx) error {
	token := c.Cookies(a.cookieName)

	principal, err := a.auth.CurrentPrincipal(c.Context(), token)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.JSON(principal)
}

// startSession mints a fresh session for the account and hands the raw
// token to the client as an HTTP-only cookie.
func (a *Adapter) startSession(c fiber.Ctx, accountID string) error {
	result, err := a.auth.Sessions().Create(c.Context(), accountID, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     a.cookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func (a *Adapter) clearSessionCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// handleError maps service errors to HTTP responses. Unknown errors
// answer with a generic message; internals stay in the log.
func (a *Adapter) handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		a.log.Error(c.Context(), "request failed", "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrAccountNotFound),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSessionExpired):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrDuplicateIdentity):
		return http.StatusConflict

	case errors.Is(err, core.ErrProviderUnavailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, core.ErrPostNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooShort),
		errors.Is(err, core.ErrPasswordTooLong),
		errors.Is(err, core.ErrDisplayNameRequired),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrEmailMissing),
		errors.Is(err, core.ErrEmailUnverified),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrBodyRequired):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill/core"
)

const principalKey = "principal"

// requireSession is the route gate. It resolves the session cookie to
// a principal and stores it for downstream handlers; anonymous
// requests are sent back to the landing page, never answered with
// gated content.
func (a *Adapter) requireSession(c fiber.Ctx) error {
	token := c.Cookies(a.cookieName)

	principal, err := a.auth.CurrentPrincipal(c.Context(), token)
	if err != nil {
		a.clearSessionCookie(c)
		return c.Redirect().Status(fiber.StatusFound).To("/")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// principalFrom returns the principal the gate stored, or nil on an
// ungated route.
func principalFrom(c fiber.Ctx) *core.Principal {
	principal, _ := c.Locals(principalKey).(*core.Principal)
	return principal
}

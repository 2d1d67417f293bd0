package server

import (
	"errors"
	"net/url"
	"time"

	"quill/internal/models"
	"quill/internal/session"

	"github.com/gofiber/fiber/v2"
)

const flashCookieName = "quill_flash"

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// sessionMiddleware resolves the session cookie to a user exactly once per
// request. A cookie pointing at a deleted account resolves to anonymous.
func (s *Server) sessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(session.CookieName)
		if token == "" {
			return c.Next()
		}

		userID, err := s.sessions.Parse(c.Context(), token)
		if err != nil {
			// Stale or tampered cookie: drop it and continue anonymous.
			s.clearSessionCookie(c)
			return c.Next()
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				s.clearSessionCookie(c)
				return c.Next()
			}
			return err
		}

		c.Locals("userID", user.ID)
		c.Locals("currentUser", user)
		return c.Next()
	}
}

// currentUser returns the resolved session identity, or nil for anonymous.
func (s *Server) currentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals("currentUser").(*models.User); ok {
		return user
	}
	return nil
}

// LoginRequired gates a route on an authenticated session, redirecting
// anonymous visitors to the login page with a flash.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.currentUser(c) == nil {
			return s.redirectWithFlash(c, "/login", "You need to login or register to do that.")
		}
		return c.Next()
	}
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(session.TTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production" || s.config.Env == "prod",
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// setFlash stores a one-shot notice shown on the next rendered page.
func (s *Server) setFlash(c *fiber.Ctx, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		Expires:  time.Now().Add(5 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// popFlash returns the pending flash message, clearing it.
func (s *Server) popFlash(c *fiber.Ctx) string {
	raw := c.Cookies(flashCookieName)
	if raw == "" {
		return ""
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}

// redirectWithFlash sets a flash and issues a see-other redirect.
func (s *Server) redirectWithFlash(c *fiber.Ctx, location, message string) error {
	s.setFlash(c, message)
	return c.Redirect(location, fiber.StatusSeeOther)
}

// render draws a template, injecting the current identity and any pending
// flash. Values already present in bind win, so handlers can re-render a
// form with an inline flash without a redirect.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	if _, ok := bind["CurrentUser"]; !ok {
		bind["CurrentUser"] = s.currentUser(c)
	}
	if _, ok := bind["Flash"]; !ok {
		bind["Flash"] = s.popFlash(c)
	}
	return c.Render(name, bind)
}

// renderNotFound draws the 404 page.
func (s *Server) renderNotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{
		"CurrentUser": s.currentUser(c),
		"Flash":       s.popFlash(c),
		"Message":     message,
	})
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 page and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = s.renderNotFound(c, "That page does not exist.")
		return 0, errResponseWritten
	}
	return uint(id), nil
}

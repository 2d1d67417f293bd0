package server

import (
	"log/slog"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"
	"quill/internal/session"

	"github.com/gofiber/fiber/v2"
)

// ShowLogin handles GET /login.
func (s *Server) ShowLogin(c *fiber.Ctx) error {
	if s.currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return s.render(c, "login", fiber.Map{"Title": "Log In"})
}

// Login handles POST /login.
func (s *Server) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	user, err := s.authService.Login(c.Context(), email, password)
	if err != nil {
		switch models.CodeOf(err) {
		case models.CodeUserNotFound:
			return s.render(c, "login", fiber.Map{
				"Title": "Log In",
				"Flash": "That email does not exist, please try again.",
			})
		case models.CodeInvalidCredentials:
			return s.render(c, "login", fiber.Map{
				"Title": "Log In",
				"Flash": "Password incorrect, please try again.",
			})
		default:
			return err
		}
	}

	return s.establishSession(c, user, "/")
}

// Logout handles GET /logout. Safe to call with no active session.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(session.CookieName); token != "" {
		if err := s.sessions.Revoke(c.Context(), token); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "session revocation failed",
				slog.String("error", err.Error()))
		}
	}
	s.clearSessionCookie(c)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// ShowRegister handles GET /register.
func (s *Server) ShowRegister(c *fiber.Ctx) error {
	if s.currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return s.render(c, "register", fiber.Map{"Title": "Register"})
}

// Register handles POST /register.
func (s *Server) Register(c *fiber.Ctx) error {
	user, err := s.authService.Register(c.Context(), service.RegisterInput{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	})
	if err != nil {
		switch models.CodeOf(err) {
		case models.CodeDuplicateEmail:
			return s.redirectWithFlash(c, "/login", "Email already exists, try logging in instead.")
		case models.CodeValidation:
			return s.render(c, "register", fiber.Map{
				"Title": "Register",
				"Flash": err.Error(),
			})
		default:
			return err
		}
	}

	return s.establishSession(c, user, "/")
}

// establishSession issues a session token for the user, sets the cookie, and
// redirects.
func (s *Server) establishSession(c *fiber.Ctx, user *models.User, location string) error {
	token, err := s.sessions.Issue(user.ID, user.Name)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.setSessionCookie(c, token)
	return c.Redirect(location, fiber.StatusSeeOther)
}

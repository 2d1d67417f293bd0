package server

import (
	"strings"

	"quill/internal/mailer"
	"quill/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SubmitContact handles POST /: the contact form at the bottom of the home
// page. The message is queued for delivery and the visitor is acknowledged
// immediately; delivery failures are logged and counted, not surfaced here.
func (s *Server) SubmitContact(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.TrimSpace(c.FormValue("email"))
	message := strings.TrimSpace(c.FormValue("message"))

	if name == "" || message == "" {
		return s.redirectWithFlash(c, "/", "Please fill in your name and a message.")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return s.redirectWithFlash(c, "/", "Please provide a valid email address.")
	}

	s.dispatcher.Enqueue(c.UserContext(), mailer.Message{
		Name:  name,
		Email: email,
		Body:  message,
	})

	return s.redirectWithFlash(c, "/", "Message sent!")
}

// About handles GET /about.
func (s *Server) About(c *fiber.Ctx) error {
	return s.render(c, "about", fiber.Map{"Title": "About Me"})
}

// Elements handles GET /elements, the style-reference page.
func (s *Server) Elements(c *fiber.Ctx) error {
	return s.render(c, "elements", fiber.Map{"Title": "Elements"})
}

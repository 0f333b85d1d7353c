package handlers

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/melodyground/backend/internal/models"
	"github.com/melodyground/backend/internal/services"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// currentUser extracts the authenticated user placed in the request context
// by the auth middleware.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("user").(*models.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// validateRegistration checks the registration payload before it reaches
// the auth service. Lengths count runes, not bytes, so multibyte names
// within the limits pass.
func validateRegistration(username, email, password string) string {
	switch n := utf8.RuneCountInString(username); {
	case n < 3 || n > 50:
		return "Username must be between 3 and 50 characters"
	case !emailPattern.MatchString(email):
		return "Email address is not valid"
	case utf8.RuneCountInString(password) < 6:
		return "Password must be at least 6 characters"
	}
	return ""
}

// validateComposition checks the composition payload before it reaches the
// composition service.
func validateComposition(input *services.CompositionInput) string {
	switch {
	case strings.TrimSpace(input.Title) == "":
		return "Title must not be blank"
	case utf8.RuneCountInString(input.Title) > 200:
		return "Title must be at most 200 characters"
	case input.Tempo == nil:
		return "Tempo is required"
	case len(input.Notes) == 0:
		return "Notes must not be empty"
	}

	for i, note := range input.Notes {
		switch {
		case note.Note == "" || utf8.RuneCountInString(note.Note) > 10:
			return fmt.Sprintf("Note %d: pitch must be 1-10 characters", i)
		case note.Instrument == "" || utf8.RuneCountInString(note.Instrument) > 50:
			return fmt.Sprintf("Note %d: instrument must be 1-50 characters", i)
		case note.Duration == nil:
			return fmt.Sprintf("Note %d: duration is required", i)
		}
	}

	return ""
}

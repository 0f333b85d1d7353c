package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/melodyground/backend/internal/services"
	"github.com/melodyground/backend/internal/types"
	"github.com/melodyground/backend/internal/utils"
)

// AuthHandler handles registration, login and identity routes
type AuthHandler struct {
	Auth *services.AuthService
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
// @Summary Register a new account
// @Description Create a user with a unique username and email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "Registration payload"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}

	if msg := validateRegistration(req.Username, req.Email, req.Password); msg != "" {
		return utils.ErrorResponse(c, msg, fiber.StatusBadRequest, "auth.validation.input")
	}

	_, err := h.Auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrDuplicateUsername) || errors.Is(err, types.ErrDuplicateEmail) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "auth.registration.conflict")
		}
		return utils.ErrorResponse(c, "Registration failed", fiber.StatusInternalServerError, "register")
	}

	return utils.MessageResponse(c, "Registration successful")
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Verify credentials and issue a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Login payload"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}

	token, user, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrInvalidCredentials) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "auth.login.credentials")
		}
		return utils.ErrorResponse(c, "Login failed", fiber.StatusInternalServerError, "login")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Me handles GET /api/auth/me
// @Summary Current identity
// @Description Return the username and email of the authenticated caller
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "auth.identity")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"username": user.Username,
		"email":    user.Email,
	})
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/melodyground/backend/internal/services"
	"github.com/melodyground/backend/internal/types"
	"github.com/melodyground/backend/internal/utils"
)

// CompositionHandler handles the composition routes. All routes sit behind
// the auth middleware, which resolves the caller's identity.
type CompositionHandler struct {
	Compositions *services.CompositionService
}

// List handles GET /api/compositions
// @Summary List own compositions
// @Description Return all compositions owned by the authenticated caller
// @Tags Compositions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Composition
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /compositions [get]
func (h *CompositionHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "compositions.identity")
	}

	compositions, err := h.Compositions.List(user)
	if err != nil {
		return utils.ErrorResponse(c, "Failed to list compositions", fiber.StatusInternalServerError, "listCompositions")
	}

	return utils.SuccessResponse(c, compositions, fiber.StatusOK)
}

// Get handles GET /api/compositions/:id
// @Summary Get one composition
// @Description Return a composition with its notes in insertion order
// @Tags Compositions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Composition ID"
// @Success 200 {object} models.Composition
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /compositions/{id} [get]
func (h *CompositionHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "compositions.identity")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.NotFoundResponse(c, types.ErrNotFound.Error())
	}

	composition, err := h.Compositions.Get(user, uint64(id))
	if err != nil {
		// A composition owned by someone else is reported exactly like a
		// missing one so the response never reveals it exists.
		if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrForbidden) {
			return utils.NotFoundResponse(c, types.ErrNotFound.Error())
		}
		return utils.ErrorResponse(c, "Failed to get composition", fiber.StatusInternalServerError, "getComposition")
	}

	return utils.SuccessResponse(c, composition, fiber.StatusOK)
}

// Create handles POST /api/compositions
// @Summary Create a composition
// @Description Create a composition with its full note sequence in one transaction
// @Tags Compositions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CompositionInput true "Composition payload"
// @Success 200 {object} models.Composition
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /compositions [post]
func (h *CompositionHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "compositions.identity")
	}

	var input services.CompositionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "compositions.validation.input")
	}

	if msg := validateComposition(&input); msg != "" {
		return utils.ErrorResponse(c, msg, fiber.StatusBadRequest, "compositions.validation.input")
	}

	composition, err := h.Compositions.Create(user, &input)
	if err != nil {
		return utils.ErrorResponse(c, "Failed to create composition", fiber.StatusInternalServerError, "createComposition")
	}

	return utils.SuccessResponse(c, composition, fiber.StatusOK)
}

// Delete handles DELETE /api/compositions/:id
// @Summary Delete a composition
// @Description Delete a composition and all of its notes
// @Tags Compositions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Composition ID"
// @Success 200
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /compositions/{id} [delete]
func (h *CompositionHandler) Delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "compositions.identity")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.NotFoundResponse(c, types.ErrNotFound.Error())
	}

	if err := h.Compositions.Delete(user, uint64(id)); err != nil {
		if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrForbidden) {
			return utils.NotFoundResponse(c, types.ErrNotFound.Error())
		}
		return utils.ErrorResponse(c, "Failed to delete composition", fiber.StatusInternalServerError, "deleteComposition")
	}

	return c.Status(fiber.StatusOK).Send(nil)
}

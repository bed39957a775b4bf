package moods

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Camier/searxng-convivial-instance/src/core/helpers"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// List handles GET /moods
func (h *Handler) List(c *fiber.Ctx) error {
	return helpers.HandleSuccess(c, fiber.StatusOK, "Moods fetched", List())
}

type setMoodRequest struct {
	Mood string `json:"mood" validate:"required,max=50"`
}

// Set handles POST /presence/mood
func (h *Handler) Set(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or missing auth_id", nil)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Malformed user id in token", err)
	}

	var req setMoodRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := helpers.Validate(req); err != nil {
		return helpers.HandleError(c, fiber.StatusUnprocessableEntity, "Invalid mood payload", err)
	}

	mood, err := h.Svc.Set(c.UserContext(), id, req.Mood)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Mood set", mood)
}

// Current handles GET /presence/mood
func (h *Handler) Current(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or missing auth_id", nil)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Malformed user id in token", err)
	}

	mood, active, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	if !active {
		return helpers.HandleSuccess(c, fiber.StatusOK, "No active mood", nil)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Current mood fetched", mood)
}

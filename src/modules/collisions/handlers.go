package collisions

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Camier/searxng-convivial-instance/src/core/helpers"
)

type Handler struct {
	Detector *Detector
}

func NewHandler(d *Detector) *Handler {
	return &Handler{Detector: d}
}

// Recent handles GET /social/collisions
func (h *Handler) Recent(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or missing auth_id", nil)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Malformed user id in token", err)
	}

	limit := c.QueryInt("limit", 20)
	recent, err := h.Detector.Recent(c.UserContext(), id, limit)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Collisions fetched", recent)
}

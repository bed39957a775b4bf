package presence

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/helpers"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// Online handles GET /presence/online
func (h *Handler) Online(c *fiber.Ctx) error {
	friends, err := h.Svc.ActiveFriends(c.UserContext())
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Active friends fetched", friends)
}

package digest

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

// MorningCoffee handles GET /social/morning-coffee
func (h *Handler) MorningCoffee(c *fiber.Ctx) error {
	digest, err := h.Svc.Get(c.UserContext())
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Morning coffee fetched", digest)
}

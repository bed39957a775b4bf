package gifts

import (
	"log"
	"time"

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

type wrapRequest struct {
	DiscoveryID string `json:"discovery_id" validate:"required,uuid"`
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
	Message     string `json:"message" validate:"max=500"`
	RevealHours int    `json:"reveal_hours" validate:"omitempty,min=1,max=720"`
	Theme       string `json:"theme" validate:"max=50"`
}

// Wrap handles POST /gifts
func (h *Handler) Wrap(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or missing auth_id", nil)
	}
	creatorID, err := uuid.Parse(userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Malformed user id in token", err)
	}

	var req wrapRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := helpers.Validate(req); err != nil {
		return helpers.HandleError(c, fiber.StatusUnprocessableEntity, "Invalid wrap parameters", err)
	}
	discoveryID, err := uuid.Parse(req.DiscoveryID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnprocessableEntity, "Invalid discovery id", err)
	}
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnprocessableEntity, "Invalid recipient id", err)
	}

	gift, err := h.Svc.Wrap(c.UserContext(), creatorID, WrapInput{
		DiscoveryID: discoveryID,
		RecipientID: recipientID,
		Message:     req.Message,
		RevealDelay: time.Duration(req.RevealHours) * time.Hour,
		Theme:       req.Theme,
	})
	if err != nil {
		log.Printf("Wrap failed for user %s: %v\n", userID, err)
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusCreated, "Gift wrapped", gift)
}

// Shake handles POST /gifts/:id/shake
func (h *Handler) Shake(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or missing auth_id", nil)
	}
	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Malformed user id in token", err)
	}
	giftID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnprocessableEntity, "Invalid gift id", err)
	}

	result, err := h.Svc.Shake(c.UserContext(), giftID, requesterID)
	if err != nil {
		log.Printf("Shake failed for gift %s: %v\n", giftID, err)
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Gift shaken", result)
}

// Pending handles GET /gifts/pending
func (h *Handler) Pending(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or missing auth_id", nil)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Malformed user id in token", err)
	}

	gifts, err := h.Svc.Pending(c.UserContext(), id)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Pending gifts fetched", gifts)
}

// Inbox handles GET /gifts/inbox
func (h *Handler) Inbox(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or missing auth_id", nil)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Malformed user id in token", err)
	}

	limit := int64(c.QueryInt("limit", 20))
	entries, err := h.Svc.Inbox(c.UserContext(), id, limit)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Gift inbox fetched", entries)
}

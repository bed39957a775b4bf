package discoveries

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Camier/searxng-convivial-instance/src/core/helpers"
	"github.com/Camier/searxng-convivial-instance/src/modules/collisions"
	"github.com/Camier/searxng-convivial-instance/src/modules/presence"
	"github.com/Camier/searxng-convivial-instance/src/modules/users"
)

type Handler struct {
	Svc        *Service
	Users      users.Store
	Presence   *presence.Service
	Collisions *collisions.Detector
}

func NewHandler(svc *Service, u users.Store, p *presence.Service, d *collisions.Detector) *Handler {
	return &Handler{Svc: svc, Users: u, Presence: p, Collisions: d}
}

type trackRequest struct {
	Query   string   `json:"query" validate:"required,max=500"`
	Results []Result `json:"results" validate:"max=50"`
}

// TrackSearch handles POST /search/track: the post-search hook. It
// broadcasts presence, scores results into discoveries and checks for
// collisions. A failed collision check never fails the request.
func (h *Handler) TrackSearch(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or missing auth_id", nil)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Malformed user id in token", err)
	}

	var req trackRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := helpers.Validate(req); err != nil {
		return helpers.HandleError(c, fiber.StatusUnprocessableEntity, "Invalid track payload", err)
	}

	user, err := h.Users.Get(c.UserContext(), id)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}

	if err := h.Presence.TrackSearch(c.UserContext(), user, req.Query); err != nil {
		log.Printf("Presence broadcast failed for %s: %v\n", user.Username, err)
	}

	entries, err := h.Svc.ProcessSearch(c.UserContext(), id, user.Username, req.Query, req.Results)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}

	matches, err := h.Collisions.Check(c.UserContext(), id, user.Username, req.Query, user.CurrentMood)
	if err != nil {
		// Collision detection degrades silently; the search itself
		// already succeeded.
		log.Printf("Collision check failed for %s: %v\n", user.Username, err)
		matches = nil
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Search tracked", fiber.Map{
		"discoveries": entries,
		"collisions":  matches,
	})
}

type recordRequest struct {
	Query  string `json:"query" validate:"required,max=500"`
	Result Result `json:"result" validate:"required"`
}

// Record handles POST /discoveries: an explicit user-flagged discovery.
func (h *Handler) Record(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or missing auth_id", nil)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Malformed user id in token", err)
	}

	var req recordRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := helpers.Validate(req); err != nil {
		return helpers.HandleError(c, fiber.StatusUnprocessableEntity, "Invalid discovery payload", err)
	}

	user, err := h.Users.Get(c.UserContext(), id)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}

	discovery, err := h.Svc.Record(c.UserContext(), id, user.Username, req.Query, req.Result)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusCreated, "Discovery recorded", discovery)
}

// Feed handles GET /discoveries/feed
func (h *Handler) Feed(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 20))
	entries, err := h.Svc.Feed(c.UserContext(), limit)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Discovery feed fetched", entries)
}

// Trending handles GET /discoveries/trending
func (h *Handler) Trending(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	topics, err := h.Svc.Trending(c.UserContext(), hours)
	if err != nil {
		return helpers.HandleServiceError(c, err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Trending topics fetched", topics)
}

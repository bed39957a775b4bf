package collisions

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/models"
	"github.com/Camier/searxng-convivial-instance/src/modules/notifications"
)

// Window is the trailing interval in which two identical queries count as
// a collision.
const Window = time.Hour

const collisionChannel = "presence:collisions"

// Match is another user who recently issued the same query.
type Match struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

type Store interface {
	RecordSession(ctx context.Context, s *models.SearchSession) error
	// MatchingSessions returns distinct other users who issued the exact
	// query since the cutoff, excluding userID.
	MatchingSessions(ctx context.Context, userID uuid.UUID, query string, since time.Time) ([]Match, error)
	CreateCollision(ctx context.Context, c *models.Collision) error
	RecentCollisions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Collision, error)
}

// Detector records search sessions and finds friends who searched the
// same thing within the window.
type Detector struct {
	store    Store
	notifier *notifications.Notifier
	now      func() time.Time
}

func NewDetector(store Store, n *notifications.Notifier) *Detector {
	return &Detector{store: store, notifier: n, now: time.Now}
}

// Check records the search session and evaluates the collision predicate.
// One collision row is persisted per matched user and a single aggregate
// event is published listing every colliding username. Repeated identical
// collisions within the window are re-recorded on every check; there is
// no dedup.
func (d *Detector) Check(ctx context.Context, userID uuid.UUID, username, query, mood string) ([]Match, error) {
	now := d.now().UTC()

	session := &models.SearchSession{
		ID:           uuid.New(),
		UserID:       userID,
		Query:        query,
		Mood:         mood,
		SessionStart: now,
	}
	if err := d.store.RecordSession(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to record search session")
	}

	matches, err := d.store.MatchingSessions(ctx, userID, query, now.Add(-Window))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to match sessions", goerr.V("query", query))
	}
	if len(matches) == 0 {
		return nil, nil
	}

	for _, match := range matches {
		collision := &models.Collision{
			ID:            uuid.New(),
			User1ID:       userID,
			User2ID:       match.UserID,
			Query:         query,
			CollisionType: "simultaneous",
			OccurredAt:    now,
		}
		if err := d.store.CreateCollision(ctx, collision); err != nil {
			return nil, goerr.Wrap(err, "failed to record collision", goerr.V("with", match.Username))
		}
	}

	users := make([]string, 0, len(matches)+1)
	users = append(users, username)
	for _, match := range matches {
		users = append(users, match.Username)
	}
	event := map[string]interface{}{
		"event":     "collision_detected",
		"users":     users,
		"query":     query,
		"type":      "simultaneous",
		"timestamp": now,
	}
	if err := d.notifier.Publish(ctx, collisionChannel, event); err != nil {
		log.Printf("Failed to publish collision event: %v\n", err)
	}

	return matches, nil
}

// Recent lists collisions involving the user, newest first.
func (d *Detector) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Collision, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return d.store.RecentCollisions(ctx, userID, limit)
}

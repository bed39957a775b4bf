package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/cache"
	"github.com/Camier/searxng-convivial-instance/src/core/models"
	"github.com/Camier/searxng-convivial-instance/src/modules/notifications"
)

// TTL after which a presence record expires naturally.
const TTL = 5 * time.Minute

const searchChannel = "presence:search"

type Service struct {
	cache    cache.Cache
	notifier *notifications.Notifier
	now      func() time.Time
}

func NewService(c cache.Cache, n *notifications.Notifier) *Service {
	return &Service{cache: c, notifier: n, now: time.Now}
}

func presenceKey(userID uuid.UUID) string {
	return fmt.Sprintf("presence:%s", userID)
}

// TrackSearch broadcasts ambient search activity and refreshes the
// user's presence record. Ghost-mode users are invisible: no broadcast,
// no record.
func (s *Service) TrackSearch(ctx context.Context, user *models.User, query string) error {
	if user.IsGhost {
		return nil
	}

	now := s.now().UTC()
	if err := s.notifier.Publish(ctx, searchChannel, map[string]interface{}{
		"user_id":    user.ID,
		"username":   user.Username,
		"mood":       user.CurrentMood,
		"query_hint": AnonymizeQuery(query),
		"timestamp":  now,
		"event":      "search_started",
	}); err != nil {
		log.Printf("Failed to broadcast presence for %s: %v\n", user.Username, err)
	}

	record := models.PresenceRecord{
		UserID:    user.ID.String(),
		Username:  user.Username,
		Status:    "searching",
		Mood:      user.CurrentMood,
		QueryHint: AnonymizeQuery(query),
		LastSeen:  now,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return goerr.Wrap(err, "failed to encode presence record")
	}
	return s.cache.Set(ctx, presenceKey(user.ID), string(payload), TTL)
}

// AnonymizeQuery turns a query into a hint without revealing it: short
// queries become a sparkle, single words keep only their first letter,
// and phrases expose just the word count and opening word.
func AnonymizeQuery(query string) string {
	if len(query) < 5 {
		return "✨"
	}
	words := strings.Fields(query)
	if len(words) == 1 {
		return fmt.Sprintf("%c%s", rune(query[0]), strings.Repeat("*", len(query)-1))
	}
	return fmt.Sprintf("%d words about %s...", len(words), words[0])
}

// ActiveFriends lists everyone with a live presence record.
func (s *Service) ActiveFriends(ctx context.Context) ([]models.PresenceRecord, error) {
	keys, err := s.cache.Keys(ctx, "presence:*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan presence keys")
	}

	friends := make([]models.PresenceRecord, 0, len(keys))
	for _, key := range keys {
		raw, err := s.cache.Get(ctx, key)
		if err != nil {
			continue
		}
		var record models.PresenceRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			continue
		}
		friends = append(friends, record)
	}
	return friends, nil
}

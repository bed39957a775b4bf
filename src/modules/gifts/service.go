package gifts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
	"github.com/Camier/searxng-convivial-instance/src/core/cache"
	"github.com/Camier/searxng-convivial-instance/src/core/models"
	"github.com/Camier/searxng-convivial-instance/src/modules/notifications"
)

// DefaultRevealDelay applies when a wrap request carries no delay.
const DefaultRevealDelay = 24 * time.Hour

// DueReveal is one capsule past its reveal time, joined with everything
// the reveal payload needs.
type DueReveal struct {
	Capsule      models.TimeCapsule
	Discovery    models.Discovery
	FromUsername string
	ToUsername   string
}

// Store is the durable side of the gift subsystem.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetDiscovery(ctx context.Context, id uuid.UUID) (*models.Discovery, error)
	GetCapsule(ctx context.Context, id uuid.UUID) (*models.TimeCapsule, error)
	// SaveCapsule persists the capsule and flags the discovery as gifted
	// in one transaction; on failure no partial capsule remains.
	SaveCapsule(ctx context.Context, c *models.TimeCapsule) error
	DueCapsules(ctx context.Context, now time.Time) ([]DueReveal, error)
	// MarkRevealed flips revealed false->true through a conditional
	// update. Returns false when another sweep already claimed it.
	MarkRevealed(ctx context.Context, id uuid.UUID) (bool, error)
}

// WrappedGift is the cached, pre-reveal view of a capsule.
type WrappedGift struct {
	ID            uuid.UUID      `json:"id"`
	FromID        uuid.UUID      `json:"from_id"`
	FromUsername  string         `json:"from_username"`
	ToID          uuid.UUID      `json:"to_id"`
	ToUsername    string         `json:"to_username"`
	Theme         string         `json:"theme"`
	ThemeData     ThemeData      `json:"theme_data"`
	RevealAt      time.Time      `json:"reveal_at"`
	Teaser        Teaser         `json:"teaser"`
	WrappedAt     time.Time      `json:"wrapped_at"`
	TimeRemaining *TimeRemaining `json:"time_remaining,omitempty"`
}

// TimeRemaining is a display-friendly countdown to the reveal.
type TimeRemaining struct {
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Human   string `json:"human"`
}

// WrapInput are the caller-supplied wrap parameters.
type WrapInput struct {
	DiscoveryID uuid.UUID
	RecipientID uuid.UUID
	Message     string
	RevealDelay time.Duration
	Theme       string
}

// ShakeResult is the outcome of shaking a wrapped gift.
type ShakeResult struct {
	GiftID     uuid.UUID `json:"gift_id"`
	NewHint    string    `json:"new_hint"`
	ShakeCount int64     `json:"shake_count"`
}

// RevealEvent is the payload delivered when a capsule opens.
type RevealEvent struct {
	Type       string          `json:"type"`
	GiftID     uuid.UUID       `json:"gift_id"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Discovery  RevealDiscovery `json:"discovery"`
	Message    string          `json:"message,omitempty"`
	WrappedAt  time.Time       `json:"wrapped_at"`
	RevealedAt time.Time       `json:"revealed_at"`
}

// RevealDiscovery carries the full discovery, disclosed only at reveal.
type RevealDiscovery struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type Service struct {
	store    Store
	cache    cache.Cache
	notifier *notifications.Notifier
	now      func() time.Time
	pick     func(n int) int
}

func NewService(store Store, c cache.Cache, n *notifications.Notifier) *Service {
	return &Service{
		store:    store,
		cache:    c,
		notifier: n,
		now:      time.Now,
		pick:     rand.Intn,
	}
}

func wrappedKey(id uuid.UUID) string     { return fmt.Sprintf("gift:wrapped:%s", id) }
func pendingKey(uid uuid.UUID) string    { return fmt.Sprintf("gifts:pending:%s", uid) }
func inboxKey(uid uuid.UUID) string      { return fmt.Sprintf("gifts:inbox:%s", uid) }
func shakeCountKey(id uuid.UUID) string  { return fmt.Sprintf("gift:total_shakes:%s", id) }
func shakenKey(id, uid uuid.UUID) string { return fmt.Sprintf("gift:shaken:%s:%s", id, uid) }

func receivedChannel(uid uuid.UUID) string { return fmt.Sprintf("gift:received:%s", uid) }
func revealedChannel(uid uuid.UUID) string { return fmt.Sprintf("gift:revealed:%s", uid) }
func shakenChannel(uid uuid.UUID) string   { return fmt.Sprintf("gift:shaken:%s", uid) }

// Wrap creates a time capsule binding a discovery to a recipient. The
// capsule stays WRAPPED until the reveal scheduler sweeps it; until then
// only the teaser is visible to the recipient.
func (s *Service) Wrap(ctx context.Context, creatorID uuid.UUID, in WrapInput) (*WrappedGift, error) {
	if in.RecipientID == creatorID {
		return nil, goerr.Wrap(apperr.ErrValidation, "cannot gift a discovery to yourself")
	}
	if in.RevealDelay < 0 {
		return nil, goerr.Wrap(apperr.ErrValidation, "reveal delay must not be negative")
	}
	delay := in.RevealDelay
	if delay == 0 {
		delay = DefaultRevealDelay
	}

	discovery, err := s.store.GetDiscovery(ctx, in.DiscoveryID)
	if err != nil {
		return nil, err
	}
	creator, err := s.store.GetUser(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.store.GetUser(ctx, in.RecipientID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	themeKey, themeData := ResolveTheme(in.Theme, now)

	capsule := &models.TimeCapsule{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		RecipientID: in.RecipientID,
		DiscoveryID: in.DiscoveryID,
		Message:     in.Message,
		Theme:       themeKey,
		RevealAt:    now.Add(delay),
		Revealed:    false,
		CreatedAt:   now,
	}
	if err := s.store.SaveCapsule(ctx, capsule); err != nil {
		return nil, err
	}

	wrapped := &WrappedGift{
		ID:           capsule.ID,
		FromID:       creatorID,
		FromUsername: creator.Username,
		ToID:         in.RecipientID,
		ToUsername:   recipient.Username,
		Theme:        themeKey,
		ThemeData:    themeData,
		RevealAt:     capsule.RevealAt,
		Teaser:       buildTeaser(discovery, in.Message, s.pick),
		WrappedAt:    now,
	}

	// Cache lives slightly longer than the reveal delay so pending views
	// keep working right up to the sweep.
	if payload, err := json.Marshal(wrapped); err == nil {
		ttl := delay + delay/10
		if err := s.cache.Set(ctx, wrappedKey(capsule.ID), string(payload), ttl); err != nil {
			log.Printf("Failed to cache wrapped gift %s: %v\n", capsule.ID, err)
		}
	}
	if err := s.cache.ZAdd(ctx, pendingKey(in.RecipientID), capsule.ID.String(), float64(capsule.RevealAt.Unix())); err != nil {
		log.Printf("Failed to index pending gift %s: %v\n", capsule.ID, err)
	}

	if err := s.notifier.Publish(ctx, receivedChannel(in.RecipientID), map[string]interface{}{
		"type": "new_gift",
		"gift": wrapped,
	}); err != nil {
		log.Printf("Failed to publish new gift %s: %v\n", capsule.ID, err)
	}

	return wrapped, nil
}

// Shake returns one additional random hint about a wrapped gift. Only
// the recipient may shake, at most once per calendar day per capsule.
func (s *Service) Shake(ctx context.Context, giftID, requesterID uuid.UUID) (*ShakeResult, error) {
	capsule, err := s.store.GetCapsule(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if capsule.RecipientID != requesterID {
		return nil, goerr.Wrap(apperr.ErrForbidden, "only the recipient may shake a gift", goerr.V("gift_id", giftID))
	}
	if capsule.Revealed {
		return nil, goerr.Wrap(apperr.ErrValidation, "gift is already revealed")
	}

	cooldownKey := shakenKey(giftID, requesterID)
	shaken, err := s.cache.Exists(ctx, cooldownKey)
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "failed to check shake cooldown", goerr.V("cause", err.Error()))
	}
	if shaken {
		return nil, goerr.Wrap(apperr.ErrRateLimited, "already shaken today", goerr.V("gift_id", giftID))
	}

	discovery, err := s.store.GetDiscovery(ctx, capsule.DiscoveryID)
	if err != nil {
		return nil, err
	}

	hint := "The gift remains mysterious!"
	if hints := shakeHints(discovery); len(hints) > 0 {
		hint = hints[s.pick(len(hints))]
	}

	count, err := s.cache.Incr(ctx, shakeCountKey(giftID))
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "failed to count shake", goerr.V("cause", err.Error()))
	}

	// Cooldown marker expires at the end of the calendar day (UTC).
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	if err := s.cache.Set(ctx, cooldownKey, "1", midnight.Sub(now)); err != nil {
		log.Printf("Failed to set shake cooldown for %s: %v\n", giftID, err)
	}

	if err := s.notifier.Publish(ctx, shakenChannel(capsule.CreatorID), map[string]interface{}{
		"gift_id":          giftID,
		"shaker":           requesterID,
		"excitement_level": count,
	}); err != nil {
		log.Printf("Failed to publish shake event for %s: %v\n", giftID, err)
	}

	return &ShakeResult{GiftID: giftID, NewHint: hint, ShakeCount: count}, nil
}

// Pending returns the user's wrapped gifts ordered by reveal time, each
// with a humanized countdown.
func (s *Service) Pending(ctx context.Context, userID uuid.UUID) ([]WrappedGift, error) {
	ids, err := s.cache.ZRange(ctx, pendingKey(userID), 0, -1)
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "failed to read pending index", goerr.V("cause", err.Error()))
	}

	now := s.now().UTC()
	gifts := make([]WrappedGift, 0, len(ids))
	for _, id := range ids {
		raw, err := s.cache.Get(ctx, wrappedKey(mustParseUUID(id)))
		if err != nil {
			continue
		}
		var gift WrappedGift
		if err := json.Unmarshal([]byte(raw), &gift); err != nil {
			continue
		}
		remaining := gift.RevealAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		gift.TimeRemaining = &TimeRemaining{
			Hours:   int(remaining / time.Hour),
			Minutes: int(remaining % time.Hour / time.Minute),
			Human:   humanizeDuration(remaining),
		}
		gifts = append(gifts, gift)
	}
	return gifts, nil
}

// Inbox returns revealed gifts from the recipient's bounded inbox,
// newest first.
func (s *Service) Inbox(ctx context.Context, userID uuid.UUID, limit int64) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.notifier.Inbox(ctx, inboxKey(userID), limit)
}

func mustParseUUID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "less than a minute"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/(24*time.Hour)), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

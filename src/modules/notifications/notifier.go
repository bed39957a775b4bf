package notifications

import (
	"context"
	"encoding/json"
	"log"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/cache"
)

// InboxCap bounds every durable inbox list; the oldest entries are
// evicted first.
const InboxCap = 100

// Notifier carries the two delivery primitives used across the convivial
// subsystem: a transient at-most-once channel publish for live UI updates
// and a durable bounded list per recipient for inbox/history.
type Notifier struct {
	cache cache.Cache
	bus   cache.Bus
}

func New(c cache.Cache, b cache.Bus) *Notifier {
	return &Notifier{cache: c, bus: b}
}

// Publish sends the event to a named channel. Nothing is persisted; if no
// subscriber is listening the event is lost.
func (n *Notifier) Publish(ctx context.Context, channel string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return goerr.Wrap(err, "failed to encode event", goerr.V("channel", channel))
	}
	return n.bus.Publish(ctx, channel, string(payload))
}

// PushInbox appends the event to the recipient's bounded inbox list.
// Appends are commutative and the trim is idempotent top-K retention, so
// concurrent writers need no locking.
func (n *Notifier) PushInbox(ctx context.Context, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return goerr.Wrap(err, "failed to encode event", goerr.V("key", key))
	}
	if err := n.cache.LPush(ctx, key, string(payload)); err != nil {
		return goerr.Wrap(err, "failed to push inbox", goerr.V("key", key))
	}
	return n.cache.LTrim(ctx, key, 0, InboxCap-1)
}

// Inbox returns up to limit recent entries, newest first.
func (n *Notifier) Inbox(ctx context.Context, key string, limit int64) ([]json.RawMessage, error) {
	if limit <= 0 || limit > InboxCap {
		limit = InboxCap
	}
	raw, err := n.cache.LRange(ctx, key, 0, limit-1)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read inbox", goerr.V("key", key))
	}
	entries := make([]json.RawMessage, 0, len(raw))
	for _, item := range raw {
		if !json.Valid([]byte(item)) {
			log.Printf("Skipping malformed inbox entry in %s\n", key)
			continue
		}
		entries = append(entries, json.RawMessage(item))
	}
	return entries, nil
}

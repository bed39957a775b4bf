package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Camier/searxng-convivial-instance/src/core/cache"
)

func TestPublish(t *testing.T) {
	mem := cache.NewMemory()
	notifier := New(mem, mem)
	ctx := context.Background()

	err := notifier.Publish(ctx, "presence:search", map[string]string{"user": "alice"})
	require.NoError(t, err)

	published := mem.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "presence:search", published[0].Channel)
	assert.JSONEq(t, `{"user":"alice"}`, published[0].Payload)
}

func TestPublishReachesSubscriber(t *testing.T) {
	mem := cache.NewMemory()
	notifier := New(mem, mem)
	ctx := context.Background()

	events, unsubscribe, err := mem.Subscribe(ctx, "digest:ready")
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, notifier.Publish(ctx, "digest:ready", map[string]string{"date": "2026-08-29"}))
	require.NoError(t, notifier.Publish(ctx, "unrelated", map[string]string{"x": "y"}))

	msg := <-events
	assert.Equal(t, "digest:ready", msg.Channel)
	assert.Contains(t, msg.Payload, "2026-08-29")

	select {
	case stray := <-events:
		t.Fatalf("received message from unsubscribed channel: %+v", stray)
	default:
	}
}

func TestPushInboxBounded(t *testing.T) {
	mem := cache.NewMemory()
	notifier := New(mem, mem)
	ctx := context.Background()

	for i := 0; i < InboxCap+20; i++ {
		err := notifier.PushInbox(ctx, "gifts:inbox:alice", map[string]int{"seq": i})
		require.NoError(t, err)
	}

	list := mem.List("gifts:inbox:alice")
	require.Len(t, list, InboxCap)

	// Newest first; the 20 oldest entries were evicted.
	var newest, oldest map[string]int
	require.NoError(t, json.Unmarshal([]byte(list[0]), &newest))
	require.NoError(t, json.Unmarshal([]byte(list[len(list)-1]), &oldest))
	assert.Equal(t, InboxCap+19, newest["seq"])
	assert.Equal(t, 20, oldest["seq"])
}

func TestInboxLimit(t *testing.T) {
	mem := cache.NewMemory()
	notifier := New(mem, mem)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, notifier.PushInbox(ctx, "inbox", map[string]int{"seq": i}))
	}

	entries, err := notifier.Inbox(ctx, "inbox", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var first map[string]int
	require.NoError(t, json.Unmarshal(entries[0], &first))
	assert.Equal(t, 9, first["seq"])

	// Zero and oversized limits clamp to the cap.
	entries, err = notifier.Inbox(ctx, "inbox", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 10)

	entries, err = notifier.Inbox(ctx, "inbox", 500)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

func TestInboxSkipsMalformedEntries(t *testing.T) {
	mem := cache.NewMemory()
	notifier := New(mem, mem)
	ctx := context.Background()

	require.NoError(t, mem.LPush(ctx, "inbox", `{"ok":1}`))
	require.NoError(t, mem.LPush(ctx, "inbox", `{broken`))
	require.NoError(t, mem.LPush(ctx, "inbox", `{"ok":2}`))

	entries, err := notifier.Inbox(ctx, "inbox", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for i, entry := range entries {
		assert.True(t, json.Valid(entry), fmt.Sprintf("entry %d", i))
	}
}

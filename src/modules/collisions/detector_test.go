package collisions

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Camier/searxng-convivial-instance/src/core/cache"
	"github.com/Camier/searxng-convivial-instance/src/core/models"
	"github.com/Camier/searxng-convivial-instance/src/modules/notifications"
)

type fakeStore struct {
	mu         sync.Mutex
	sessions   []models.SearchSession
	collisions []models.Collision
	usernames  map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{usernames: make(map[uuid.UUID]string)}
}

func (f *fakeStore) RecordSession(_ context.Context, s *models.SearchSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, *s)
	return nil
}

func (f *fakeStore) MatchingSessions(_ context.Context, userID uuid.UUID, query string, since time.Time) ([]Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var matches []Match
	for _, s := range f.sessions {
		if s.UserID == userID || s.Query != query || !s.SessionStart.After(since) || seen[s.UserID] {
			continue
		}
		seen[s.UserID] = true
		matches = append(matches, Match{UserID: s.UserID, Username: f.usernames[s.UserID]})
	}
	return matches, nil
}

func (f *fakeStore) CreateCollision(_ context.Context, c *models.Collision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collisions = append(f.collisions, *c)
	return nil
}

func (f *fakeStore) RecentCollisions(_ context.Context, userID uuid.UUID, limit int) ([]models.Collision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Collision
	for i := len(f.collisions) - 1; i >= 0 && len(out) < limit; i-- {
		c := f.collisions[i]
		if c.User1ID == userID || c.User2ID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func newDetectorFixture() (*Detector, *fakeStore, *cache.Memory, func(time.Time)) {
	store := newFakeStore()
	mem := cache.NewMemory()
	detector := NewDetector(store, notifications.New(mem, mem))

	now := time.Date(2026, time.May, 2, 21, 0, 0, 0, time.UTC)
	detector.now = func() time.Time { return now }
	setNow := func(t time.Time) { now = t }
	return detector, store, mem, setNow
}

func TestCheckNoMatch(t *testing.T) {
	detector, store, mem, _ := newDetectorFixture()
	alice := uuid.New()
	store.usernames[alice] = "alice"

	matches, err := detector.Check(context.Background(), alice, "alice", "mushroom foraging", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Len(t, store.sessions, 1)
	assert.Empty(t, store.collisions)
	assert.Empty(t, mem.Published())
}

func TestCheckDetectsCollision(t *testing.T) {
	detector, store, mem, setNow := newDetectorFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	store.usernames[alice] = "alice"
	store.usernames[bob] = "bob"

	base := time.Date(2026, time.May, 2, 21, 0, 0, 0, time.UTC)
	setNow(base)
	_, err := detector.Check(ctx, alice, "alice", "mushroom foraging", "botanical")
	require.NoError(t, err)

	setNow(base.Add(10 * time.Minute))
	matches, err := detector.Check(ctx, bob, "bob", "mushroom foraging", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, alice, matches[0].UserID)
	assert.Equal(t, "alice", matches[0].Username)

	require.Len(t, store.collisions, 1)
	collision := store.collisions[0]
	assert.Equal(t, bob, collision.User1ID)
	assert.Equal(t, alice, collision.User2ID)
	assert.Equal(t, "mushroom foraging", collision.Query)
	assert.Equal(t, "simultaneous", collision.CollisionType)

	// One aggregate event on the shared channel, naming both users.
	published := mem.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "presence:collisions", published[0].Channel)

	var event struct {
		Event string   `json:"event"`
		Users []string `json:"users"`
		Query string   `json:"query"`
	}
	require.NoError(t, json.Unmarshal([]byte(published[0].Payload), &event))
	assert.Equal(t, "collision_detected", event.Event)
	assert.ElementsMatch(t, []string{"alice", "bob"}, event.Users)
	assert.Equal(t, "mushroom foraging", event.Query)
}

func TestCheckOutsideWindow(t *testing.T) {
	detector, store, _, setNow := newDetectorFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	store.usernames[alice] = "alice"
	store.usernames[bob] = "bob"

	base := time.Date(2026, time.May, 2, 10, 0, 0, 0, time.UTC)
	setNow(base)
	_, err := detector.Check(ctx, alice, "alice", "tide charts", "")
	require.NoError(t, err)

	// 61 minutes later the first session has aged out.
	setNow(base.Add(Window + time.Minute))
	matches, err := detector.Check(ctx, bob, "bob", "tide charts", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Empty(t, store.collisions)
}

func TestCheckDifferentQueries(t *testing.T) {
	detector, store, _, _ := newDetectorFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	store.usernames[alice] = "alice"
	store.usernames[bob] = "bob"

	_, err := detector.Check(ctx, alice, "alice", "tide charts", "")
	require.NoError(t, err)
	matches, err := detector.Check(ctx, bob, "bob", "tide tables", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCheckOneRowPerMatchedUser(t *testing.T) {
	detector, store, mem, _ := newDetectorFixture()
	ctx := context.Background()
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	store.usernames[alice] = "alice"
	store.usernames[bob] = "bob"
	store.usernames[carol] = "carol"

	_, err := detector.Check(ctx, alice, "alice", "vinyl pressing plants", "")
	require.NoError(t, err)
	_, err = detector.Check(ctx, bob, "bob", "vinyl pressing plants", "")
	require.NoError(t, err)

	matches, err := detector.Check(ctx, carol, "carol", "vinyl pressing plants", "")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// alice+bob from the second check, plus carol+alice and carol+bob
	// from the third: one row per matched pair per check.
	assert.Len(t, store.collisions, 3)

	// Each check that matched published exactly one aggregate event.
	var events int
	for _, msg := range mem.Published() {
		if msg.Channel == "presence:collisions" && strings.Contains(msg.Payload, "collision_detected") {
			events++
		}
	}
	assert.Equal(t, 2, events)
}

func TestRecent(t *testing.T) {
	detector, store, _, _ := newDetectorFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	store.usernames[alice] = "alice"
	store.usernames[bob] = "bob"

	_, err := detector.Check(ctx, alice, "alice", "shared query", "")
	require.NoError(t, err)
	_, err = detector.Check(ctx, bob, "bob", "shared query", "")
	require.NoError(t, err)

	recent, err := detector.Recent(ctx, alice, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "shared query", recent[0].Query)

	stranger, err := detector.Recent(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, stranger)
}

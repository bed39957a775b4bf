package digest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Camier/searxng-convivial-instance/src/core/cache"
	"github.com/Camier/searxng-convivial-instance/src/modules/notifications"
)

type fakeStore struct {
	discoveries []Discovery
	queries     []QueryCount
	collisions  []CollisionMoment

	fromSeen, toSeen time.Time
	calls            int
}

func (f *fakeStore) DiscoveriesBetween(_ context.Context, from, to time.Time) ([]Discovery, error) {
	f.fromSeen, f.toSeen = from, to
	f.calls++
	return f.discoveries, nil
}

func (f *fakeStore) PopularQueries(_ context.Context, from, to time.Time) ([]QueryCount, error) {
	return f.queries, nil
}

func (f *fakeStore) CollisionsBetween(_ context.Context, from, to time.Time) ([]CollisionMoment, error) {
	return f.collisions, nil
}

func newDigestFixture() (*Service, *fakeStore, *cache.Memory) {
	store := &fakeStore{}
	mem := cache.NewMemory()
	svc := NewService(store, mem, notifications.New(mem, mem))
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 30, 8, 0, 0, 0, time.UTC)
	}
	return svc, store, mem
}

func TestGenerate(t *testing.T) {
	svc, store, mem := newDigestFixture()
	store.discoveries = []Discovery{
		{ID: "1", Title: "Gallica scan", Query: "medieval maps", Engine: "gallica", DiscoveredBy: "alice"},
		{ID: "2", Title: "Bandcamp find", Query: "sahel funk", Engine: "bandcamp", DiscoveredBy: "bob"},
	}
	store.queries = []QueryCount{
		{Query: "medieval maps", Count: 3},
		{Query: "sahel funk", Count: 1},
	}
	store.collisions = []CollisionMoment{
		{Users: "alice & bob", Query: "medieval maps", Type: "simultaneous", Emoji: "✨"},
	}

	digest, err := svc.Generate(context.Background())
	require.NoError(t, err)

	// The window is yesterday, midnight to midnight UTC.
	assert.Equal(t, "2026-08-29", digest.Date)
	assert.Equal(t, time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC), store.fromSeen)
	assert.Equal(t, time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC), store.toSeen)

	assert.Len(t, digest.Discoveries, 2)
	assert.Equal(t, []string{"medieval maps (3 searches)"}, digest.Themes)
	assert.Len(t, digest.Collisions, 1)

	assert.Equal(t, 2, digest.Stats.TotalDiscoveries)
	assert.Equal(t, 4, digest.Stats.TotalSearches)
	assert.Equal(t, 2, digest.Stats.UniqueEngines)
	assert.Equal(t, 1, digest.Stats.CollisionCount)

	// Cached for later reads, and announced.
	_, err = mem.Get(context.Background(), "morning_coffee:2026-08-29")
	require.NoError(t, err)

	published := mem.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "digest:ready", published[0].Channel)
	assert.Contains(t, published[0].Payload, "2026-08-29")
}

func TestGetUsesCache(t *testing.T) {
	svc, store, _ := newDigestFixture()

	first, err := svc.Get(context.Background())
	require.NoError(t, err)
	second, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Date, second.Date)
	assert.Equal(t, 1, store.calls, "second read must come from cache")
}

func TestFormatDiscoveriesTruncates(t *testing.T) {
	long := strings.Repeat("x", 250)
	formatted := formatDiscoveries([]Discovery{{Snippet: long}, {Snippet: "short"}})
	require.Len(t, formatted, 2)
	assert.Len(t, formatted[0].Snippet, 203)
	assert.True(t, strings.HasSuffix(formatted[0].Snippet, "..."))
	assert.Equal(t, "short", formatted[1].Snippet)
}

func TestFormatDiscoveriesCapsEntries(t *testing.T) {
	many := make([]Discovery, 30)
	assert.Len(t, formatDiscoveries(many), maxEntries)
}

func TestExtractThemes(t *testing.T) {
	queries := []QueryCount{
		{Query: "octopus cognition", Count: 4},
		{Query: "one-off", Count: 1},
	}
	discoveries := []Discovery{
		{Query: "octopus cognition"},
		{Query: "octopus anatomy"},
		{Query: "octopus gardens"},
	}

	themes := extractThemes(discoveries, queries)
	assert.Contains(t, themes, "octopus cognition (4 searches)")
	assert.Contains(t, themes, "Octopus theme")
	assert.NotContains(t, themes, "one-off (1 searches)")
}

func TestExtractThemesCapped(t *testing.T) {
	queries := make([]QueryCount, 0, 6)
	for _, q := range []string{"a", "b", "c", "d", "e", "f"} {
		queries = append(queries, QueryCount{Query: q, Count: 2})
	}
	themes := extractThemes(nil, queries)
	assert.LessOrEqual(t, len(themes), maxThemes)
}

func TestBuildStatsEmptyDay(t *testing.T) {
	stats := buildStats(nil, nil, nil)
	assert.Zero(t, stats.TotalDiscoveries)
	assert.Zero(t, stats.TotalSearches)
	assert.Zero(t, stats.UniqueEngines)
	assert.Zero(t, stats.CollisionCount)
}

package moods

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
	"github.com/Camier/searxng-convivial-instance/src/core/cache"
	"github.com/Camier/searxng-convivial-instance/src/core/models"
)

func TestListAndLookup(t *testing.T) {
	all := List()
	assert.Len(t, all, 8)

	mood, ok := Lookup("vinyl-digging")
	require.True(t, ok)
	assert.Equal(t, "🎵 Vinyl digging simulation", mood.Name)
	assert.Contains(t, mood.BoostEngines, "bandcamp")

	_, ok = Lookup("nonexistent")
	assert.False(t, ok)
}

func TestDetectByKeyword(t *testing.T) {
	noon := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		query string
		want  string
	}{
		{"rare jazz vinyl 1970s", "vinyl-digging"},
		{"Medieval trade routes", "historical"},
		{"quantum entanglement basics", "deep-science"},
		{"garden design ideas", "botanical"},
	}
	for _, tt := range tests {
		mood, ok := Detect(tt.query, noon)
		require.True(t, ok, "query %q", tt.query)
		assert.Equal(t, tt.want, mood.Key, "query %q", tt.query)
	}

	_, ok := Detect("ordinary lunch recipe", noon)
	assert.False(t, ok)
}

func TestDetectByTimeRange(t *testing.T) {
	// 23:30 on any day falls inside the late-night 22-4 wrap.
	lateNight := time.Date(2026, time.July, 1, 23, 30, 0, 0, time.UTC)
	mood, ok := Detect("lunch recipe", lateNight)
	require.True(t, ok)
	assert.Equal(t, "late-night", mood.Key)

	// 02:00 is still late-night, past the midnight wrap.
	smallHours := time.Date(2026, time.July, 2, 2, 0, 0, 0, time.UTC)
	mood, ok = Detect("lunch recipe", smallHours)
	require.True(t, ok)
	assert.Equal(t, "late-night", mood.Key)

	// Sunday 9am is botanical territory.
	sundayMorning := time.Date(2026, time.July, 5, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, sundayMorning.Weekday())
	mood, ok = Detect("lunch recipe", sundayMorning)
	require.True(t, ok)
	assert.Equal(t, "botanical", mood.Key)

	// Monday 9am matches no timed mood.
	mondayMorning := time.Date(2026, time.July, 6, 9, 0, 0, 0, time.UTC)
	_, ok = Detect("lunch recipe", mondayMorning)
	assert.False(t, ok)
}

func TestDetectKeywordBeatsTime(t *testing.T) {
	lateNight := time.Date(2026, time.July, 1, 23, 30, 0, 0, time.UTC)
	mood, ok := Detect("funk albums", lateNight)
	require.True(t, ok)
	assert.Equal(t, "vinyl-digging", mood.Key)
}

type fakeUserStore struct {
	mu    sync.Mutex
	moods map[uuid.UUID]string
}

func (f *fakeUserStore) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (f *fakeUserStore) SetMood(_ context.Context, id uuid.UUID, mood string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moods == nil {
		f.moods = make(map[uuid.UUID]string)
	}
	f.moods[id] = mood
	return nil
}

func TestServiceSetAndGet(t *testing.T) {
	mem := cache.NewMemory()
	store := &fakeUserStore{}
	svc := NewService(mem, store)
	ctx := context.Background()
	alice := uuid.New()

	mood, err := svc.Set(ctx, alice, "chaos")
	require.NoError(t, err)
	assert.Equal(t, "chaos", mood.Key)
	assert.Equal(t, "🎪 Anything goes chaos mode", store.moods[alice])

	got, ok, err := svc.Get(ctx, alice)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "chaos", got.Key)
}

func TestServiceSetUnknownMood(t *testing.T) {
	svc := NewService(cache.NewMemory(), &fakeUserStore{})

	_, err := svc.Set(context.Background(), uuid.New(), "melancholy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestServiceGetNoMood(t *testing.T) {
	svc := NewService(cache.NewMemory(), &fakeUserStore{})

	_, ok, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

package moods

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
	"github.com/Camier/searxng-convivial-instance/src/core/cache"
	"github.com/Camier/searxng-convivial-instance/src/modules/users"
)

// Duration a set mood persists before expiring.
const Duration = time.Hour

// Mood is one search vibe with its engine boosts and UI theme.
type Mood struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	BoostEngines []string `json:"boost_engines,omitempty"`
	Keywords     []string `json:"keywords"`
	Theme        Theme    `json:"theme"`

	// startHour/endHour bound time-based auto-detection; endHour may wrap
	// past midnight. weekday restricts detection to one day, -1 for any.
	startHour int
	endHour   int
	weekday   time.Weekday
	timed     bool
}

type Theme struct {
	Background string `json:"background"`
	Primary    string `json:"primary"`
	Text       string `json:"text"`
}

var moodTable = []Mood{
	{
		Key:          "late-night",
		Name:         "🌙 Late night rabbit hole",
		Description:  "Deep dives and weird finds",
		BoostEngines: []string{"wikipedia", "arxiv", "archive.org"},
		Keywords:     []string{"weird", "strange", "theory", "conspiracy", "ancient"},
		Theme:        Theme{Background: "#1a1a2e", Primary: "#e94560", Text: "#eaeaea"},
		startHour:    22, endHour: 4, weekday: -1, timed: true,
	},
	{
		Key:          "botanical",
		Name:         "🌺 Sunday morning botanical",
		Description:  "Nature, plants, and peaceful discoveries",
		BoostEngines: []string{"gbif", "plants_of_world", "inaturalist"},
		Keywords:     []string{"plant", "flower", "garden", "nature", "botanical"},
		Theme:        Theme{Background: "#f7ede2", Primary: "#52734d", Text: "#2d2d2d"},
		startHour:    6, endHour: 11, weekday: time.Sunday, timed: true,
	},
	{
		Key:          "vinyl-digging",
		Name:         "🎵 Vinyl digging simulation",
		Description:  "Crate digging for musical gems",
		BoostEngines: []string{"bandcamp", "soundcloud", "discogs"},
		Keywords:     []string{"vinyl", "album", "band", "music", "jazz", "funk"},
		Theme:        Theme{Background: "#2b2b2b", Primary: "#ff6b6b", Text: "#fafafa"},
		weekday:      -1,
	},
	{
		Key:          "serious-research",
		Name:         "📚 Serious research mode",
		Description:  "Academic focus, minimal distractions",
		BoostEngines: []string{"google_scholar", "pubmed", "semantic_scholar"},
		Keywords:     []string{"research", "study", "analysis", "thesis", "paper"},
		Theme:        Theme{Background: "#fafafa", Primary: "#2c3e50", Text: "#2c3e50"},
		weekday:      -1,
	},
	{
		Key:          "weird-finds",
		Name:         "🍄 Weird finds only",
		Description:  "Embrace the strange and unusual",
		BoostEngines: []string{"archive.org", "wiby"},
		Keywords:     []string{"weird", "unusual", "bizarre", "odd", "strange"},
		Theme:        Theme{Background: "#6a0572", Primary: "#ff6b9d", Text: "#ffc8dd"},
		weekday:      -1,
	},
	{
		Key:          "historical",
		Name:         "🗺️ Historical adventures",
		Description:  "Journey through time",
		BoostEngines: []string{"gallica", "archives_nationales", "europeana"},
		Keywords:     []string{"history", "ancient", "medieval", "archive", "old"},
		Theme:        Theme{Background: "#f5e6d3", Primary: "#8b4513", Text: "#3a2317"},
		weekday:      -1,
	},
	{
		Key:          "deep-science",
		Name:         "🔬 Deep science dive",
		Description:  "Complex topics, detailed results",
		BoostEngines: []string{"arxiv", "pubmed", "chembl"},
		Keywords:     []string{"quantum", "biology", "chemistry", "physics", "research"},
		Theme:        Theme{Background: "#0a0e27", Primary: "#00d9ff", Text: "#e0e0e0"},
		weekday:      -1,
	},
	{
		Key:         "chaos",
		Name:        "🎪 Anything goes chaos mode",
		Description: "Random engines, surprising results",
		Keywords:    []string{"random", "surprise", "anything", "chaos"},
		Theme:       Theme{Background: "linear-gradient(45deg, #ff006e, #8338ec, #3a86ff)", Primary: "#ffbe0b", Text: "#ffffff"},
		weekday:     -1,
	},
}

// List returns every defined mood.
func List() []Mood {
	return moodTable
}

// Lookup returns the mood for a key.
func Lookup(key string) (Mood, bool) {
	for _, mood := range moodTable {
		if mood.Key == key {
			return mood, true
		}
	}
	return Mood{}, false
}

// Detect auto-detects a mood for a query: keyword match wins, then a
// time-range match, otherwise none.
func Detect(query string, now time.Time) (Mood, bool) {
	lowered := strings.ToLower(query)
	for _, mood := range moodTable {
		for _, keyword := range mood.Keywords {
			if strings.Contains(lowered, keyword) {
				return mood, true
			}
		}
	}

	for _, mood := range moodTable {
		if !mood.timed {
			continue
		}
		if mood.weekday >= 0 && now.Weekday() != mood.weekday {
			continue
		}
		hour := now.Hour()
		inRange := false
		if mood.startHour <= mood.endHour {
			inRange = hour >= mood.startHour && hour < mood.endHour
		} else {
			// Range wraps past midnight, e.g. 22-4.
			inRange = hour >= mood.startHour || hour < mood.endHour
		}
		if inRange {
			return mood, true
		}
	}

	return Mood{}, false
}

// Service handles per-user current mood with a TTL.
type Service struct {
	cache cache.Cache
	users users.Store
}

func NewService(c cache.Cache, u users.Store) *Service {
	return &Service{cache: c, users: u}
}

func moodKey(userID uuid.UUID) string {
	return fmt.Sprintf("mood:%s", userID)
}

// Set records the user's current mood for an hour and mirrors it onto
// the user row so presence broadcasts pick it up.
func (s *Service) Set(ctx context.Context, userID uuid.UUID, key string) (Mood, error) {
	mood, ok := Lookup(key)
	if !ok {
		return Mood{}, goerr.Wrap(apperr.ErrValidation, "unknown mood", goerr.V("mood", key))
	}
	if err := s.cache.Set(ctx, moodKey(userID), mood.Key, Duration); err != nil {
		return Mood{}, goerr.Wrap(apperr.ErrStorageUnavailable, "cache mood", goerr.V("cause", err.Error()))
	}
	if err := s.users.SetMood(ctx, userID, mood.Name); err != nil {
		return Mood{}, err
	}
	return mood, nil
}

// Get returns the user's active mood, if any remains.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (Mood, bool, error) {
	key, err := s.cache.Get(ctx, moodKey(userID))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return Mood{}, false, nil
		}
		return Mood{}, false, goerr.Wrap(apperr.ErrStorageUnavailable, "read mood", goerr.V("cause", err.Error()))
	}
	mood, ok := Lookup(key)
	return mood, ok, nil
}

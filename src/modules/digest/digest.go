package digest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
	"github.com/Camier/searxng-convivial-instance/src/core/cache"
	"github.com/Camier/searxng-convivial-instance/src/modules/notifications"
)

const (
	cacheTTL     = 7 * 24 * time.Hour
	readyChannel = "digest:ready"
	maxEntries   = 20
	maxThemes    = 5
)

// Discovery is one digest row joined with its discoverer.
type Discovery struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Snippet      string    `json:"snippet"`
	Query        string    `json:"query"`
	Engine       string    `json:"engine"`
	DiscoveredBy string    `json:"discovered_by"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// QueryCount is a query with its search frequency.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// CollisionMoment is a collision formatted for the digest.
type CollisionMoment struct {
	Users string `json:"users"`
	Query string `json:"query"`
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

// Stats summarize yesterday's activity.
type Stats struct {
	TotalDiscoveries int `json:"total_discoveries"`
	TotalSearches    int `json:"total_searches"`
	UniqueEngines    int `json:"unique_engines"`
	CollisionCount   int `json:"collision_count"`
}

// Digest is the morning coffee: yesterday's collective discoveries.
type Digest struct {
	Date        string            `json:"date"`
	Discoveries []Discovery       `json:"discoveries"`
	Themes      []string          `json:"themes"`
	Collisions  []CollisionMoment `json:"collisions"`
	Stats       Stats             `json:"stats"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Store reads yesterday's activity for the digest.
type Store interface {
	DiscoveriesBetween(ctx context.Context, from, to time.Time) ([]Discovery, error)
	PopularQueries(ctx context.Context, from, to time.Time) ([]QueryCount, error)
	CollisionsBetween(ctx context.Context, from, to time.Time) ([]CollisionMoment, error)
}

type Service struct {
	store    Store
	cache    cache.Cache
	notifier *notifications.Notifier
	now      func() time.Time
}

func NewService(store Store, c cache.Cache, n *notifications.Notifier) *Service {
	return &Service{store: store, cache: c, notifier: n, now: time.Now}
}

func digestKey(date string) string {
	return fmt.Sprintf("morning_coffee:%s", date)
}

// Generate builds and caches yesterday's digest, then announces it.
// Run daily by the scheduler and on demand when the cache is cold.
func (s *Service) Generate(ctx context.Context) (*Digest, error) {
	now := s.now().UTC()
	yesterday := now.AddDate(0, 0, -1)
	from := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	discoveries, err := s.store.DiscoveriesBetween(ctx, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load digest discoveries")
	}
	queries, err := s.store.PopularQueries(ctx, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load popular queries")
	}
	collisions, err := s.store.CollisionsBetween(ctx, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load digest collisions")
	}

	digest := &Digest{
		Date:        from.Format("2006-01-02"),
		Discoveries: formatDiscoveries(discoveries),
		Themes:      extractThemes(discoveries, queries),
		Collisions:  collisions,
		Stats:       buildStats(discoveries, queries, collisions),
		GeneratedAt: now,
	}

	if payload, err := json.Marshal(digest); err == nil {
		if err := s.cache.Set(ctx, digestKey(digest.Date), string(payload), cacheTTL); err != nil {
			log.Printf("Failed to cache digest for %s: %v\n", digest.Date, err)
		}
	}

	if err := s.notifier.Publish(ctx, readyChannel, map[string]interface{}{
		"date":            digest.Date,
		"discovery_count": digest.Stats.TotalDiscoveries,
	}); err != nil {
		log.Printf("Failed to announce digest for %s: %v\n", digest.Date, err)
	}

	log.Printf("Morning coffee generated for %s\n", digest.Date)
	return digest, nil
}

// Run is the scheduler entry point.
func (s *Service) Run(ctx context.Context) error {
	_, err := s.Generate(ctx)
	return err
}

// Get returns yesterday's digest, generating it when the cache is cold.
func (s *Service) Get(ctx context.Context) (*Digest, error) {
	yesterday := s.now().UTC().AddDate(0, 0, -1)
	date := yesterday.Format("2006-01-02")

	raw, err := s.cache.Get(ctx, digestKey(date))
	if err == nil {
		var digest Digest
		if err := json.Unmarshal([]byte(raw), &digest); err == nil {
			return &digest, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "read digest cache", goerr.V("cause", err.Error()))
	}

	return s.Generate(ctx)
}

func formatDiscoveries(discoveries []Discovery) []Discovery {
	if len(discoveries) > maxEntries {
		discoveries = discoveries[:maxEntries]
	}
	formatted := make([]Discovery, len(discoveries))
	for i, d := range discoveries {
		if len(d.Snippet) > 200 {
			d.Snippet = d.Snippet[:200] + "..."
		}
		formatted[i] = d
	}
	return formatted
}

// extractThemes pulls the day's themes from repeated queries and
// frequent long words across discovery queries.
func extractThemes(discoveries []Discovery, queries []QueryCount) []string {
	var themes []string

	top := queries
	if len(top) > 5 {
		top = top[:5]
	}
	for _, q := range top {
		if q.Count > 1 {
			themes = append(themes, fmt.Sprintf("%s (%d searches)", q.Query, q.Count))
		}
	}

	topics := map[string]int{}
	for _, d := range discoveries {
		for _, word := range strings.Fields(strings.ToLower(d.Query)) {
			if len(word) > 4 {
				topics[word]++
			}
		}
	}
	type topicCount struct {
		word  string
		count int
	}
	sorted := make([]topicCount, 0, len(topics))
	for word, count := range topics {
		sorted = append(sorted, topicCount{word, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].word < sorted[j].word
	})
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}
	for _, topic := range sorted {
		if topic.count > 2 {
			themes = append(themes, fmt.Sprintf("%s theme", capitalize(topic.word)))
		}
	}

	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	return themes
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func buildStats(discoveries []Discovery, queries []QueryCount, collisions []CollisionMoment) Stats {
	engines := map[string]struct{}{}
	for _, d := range discoveries {
		engines[d.Engine] = struct{}{}
	}
	totalSearches := 0
	for _, q := range queries {
		totalSearches += q.Count
	}
	return Stats{
		TotalDiscoveries: len(discoveries),
		TotalSearches:    totalSearches,
		UniqueEngines:    len(engines),
		CollisionCount:   len(collisions),
	}
}

package discoveries

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/cache"
	"github.com/Camier/searxng-convivial-instance/src/core/models"
	"github.com/Camier/searxng-convivial-instance/src/modules/notifications"
)

const (
	feedKey     = "discovery_feed:global"
	feedCap     = 100
	topResults  = 5
	feedChannel = "discovery_feed:new"
)

// TrendingTopic is one query multiple friends converged on recently.
type TrendingTopic struct {
	Topic       string    `json:"topic"`
	Users       int       `json:"users"`
	Discoveries int       `json:"discoveries"`
	Momentum    string    `json:"momentum"`
	LastSeen    time.Time `json:"last_seen"`
}

// Store is the durable side of the discovery pipeline.
type Store interface {
	CreateDiscovery(ctx context.Context, d *models.Discovery) error
	Trending(ctx context.Context, since time.Time) ([]TrendingTopic, error)
}

// FeedEntry is what lands on the shared discovery feed.
type FeedEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Query     string    `json:"query"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet"`
	Engine    string    `json:"engine"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
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

// ProcessSearch scores the top results of a completed search and persists
// those crossing the share threshold as discoveries. Scored discoveries
// land on the shared feed and a single summary event is published.
func (s *Service) ProcessSearch(ctx context.Context, userID uuid.UUID, username, query string, results []Result) ([]FeedEntry, error) {
	if len(results) > topResults {
		results = results[:topResults]
	}

	var entries []FeedEntry
	for _, result := range results {
		score := Score(result, query)
		if score <= ShareThreshold {
			continue
		}

		snippet := result.Content
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		discovery := &models.Discovery{
			ID:           uuid.New(),
			UserID:       userID,
			Query:        query,
			URL:          result.URL,
			Title:        result.Title,
			Snippet:      snippet,
			Engine:       result.Engine,
			Score:        score,
			DiscoveredAt: s.now().UTC(),
		}
		if err := s.store.CreateDiscovery(ctx, discovery); err != nil {
			return nil, goerr.Wrap(err, "failed to persist discovery", goerr.V("query", query))
		}

		entries = append(entries, s.pushFeed(ctx, discovery, username))
	}

	if len(entries) > 0 {
		event := map[string]interface{}{
			"user":          username,
			"count":         len(entries),
			"top_discovery": entries[0],
		}
		if err := s.notifier.Publish(ctx, feedChannel, event); err != nil {
			log.Printf("Failed to publish feed event: %v\n", err)
		}
	}

	return entries, nil
}

// Record persists an explicitly user-flagged discovery. The threshold is
// bypassed; the score is still computed for feed ranking.
func (s *Service) Record(ctx context.Context, userID uuid.UUID, username, query string, result Result) (*models.Discovery, error) {
	discovery := &models.Discovery{
		ID:           uuid.New(),
		UserID:       userID,
		Query:        query,
		URL:          result.URL,
		Title:        result.Title,
		Snippet:      result.Content,
		Engine:       result.Engine,
		Score:        Score(result, query),
		DiscoveredAt: s.now().UTC(),
	}
	if err := s.store.CreateDiscovery(ctx, discovery); err != nil {
		return nil, goerr.Wrap(err, "failed to persist discovery", goerr.V("query", query))
	}

	s.pushFeed(ctx, discovery, username)
	if err := s.notifier.Publish(ctx, "discovery:shared", map[string]interface{}{
		"type":      "explicit_share",
		"user":      username,
		"query":     query,
		"title":     result.Title,
		"url":       result.URL,
		"shared_at": s.now().UTC(),
	}); err != nil {
		log.Printf("Failed to publish share event: %v\n", err)
	}

	return discovery, nil
}

func (s *Service) pushFeed(ctx context.Context, d *models.Discovery, username string) FeedEntry {
	entry := FeedEntry{
		ID:        d.ID,
		UserID:    d.UserID,
		Username:  username,
		Query:     d.Query,
		URL:       d.URL,
		Title:     d.Title,
		Snippet:   d.Snippet,
		Engine:    d.Engine,
		Score:     d.Score,
		Timestamp: d.DiscoveredAt,
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Failed to encode feed entry: %v\n", err)
		return entry
	}
	if err := s.cache.ZAdd(ctx, feedKey, string(payload), float64(d.DiscoveredAt.UnixNano())); err != nil {
		log.Printf("Failed to push feed entry: %v\n", err)
		return entry
	}
	if err := s.cache.ZRemRangeByRank(ctx, feedKey, 0, -(feedCap + 1)); err != nil {
		log.Printf("Failed to trim feed: %v\n", err)
	}
	return entry
}

// Feed returns recent feed entries, newest first.
func (s *Service) Feed(ctx context.Context, limit int64) ([]FeedEntry, error) {
	if limit <= 0 || limit > feedCap {
		limit = 20
	}
	items, err := s.cache.ZRevRange(ctx, feedKey, 0, limit-1)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read discovery feed")
	}

	entries := make([]FeedEntry, 0, len(items))
	for _, item := range items {
		var entry FeedEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Trending lists queries that multiple friends discovered through within
// the trailing window.
func (s *Service) Trending(ctx context.Context, hours int) ([]TrendingTopic, error) {
	if hours <= 0 {
		hours = 24
	}
	since := s.now().UTC().Add(-time.Duration(hours) * time.Hour)
	topics, err := s.store.Trending(ctx, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load trending topics")
	}
	for i := range topics {
		if topics[i].Users > 2 {
			topics[i].Momentum = "rising"
		} else {
			topics[i].Momentum = "steady"
		}
	}
	return topics, nil
}

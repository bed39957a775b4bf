package digest

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
)

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DiscoveriesBetween(ctx context.Context, from, to time.Time) ([]Discovery, error) {
	var rows []struct {
		ID            string
		ResultTitle   string
		ResultURL     string
		ResultSnippet string
		Query         string
		Engine        string
		Username      string
		DisplayName   string
		DiscoveredAt  time.Time
	}
	err := s.db.WithContext(ctx).
		Table("discoveries d").
		Select("d.id, d.result_title, d.result_url, d.result_snippet, d.query, d.engine, u.username, u.display_name, d.discovered_at").
		Joins("JOIN users u ON u.id = d.user_id").
		Where("d.discovered_at >= ? AND d.discovered_at < ?", from, to).
		Where("d.is_gift = ?", false).
		Order("d.discovered_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "query digest discoveries", goerr.V("cause", err.Error()))
	}

	discoveries := make([]Discovery, len(rows))
	for i, row := range rows {
		by := row.DisplayName
		if by == "" {
			by = row.Username
		}
		discoveries[i] = Discovery{
			ID:           row.ID,
			Title:        row.ResultTitle,
			URL:          row.ResultURL,
			Snippet:      row.ResultSnippet,
			Query:        row.Query,
			Engine:       row.Engine,
			DiscoveredBy: by,
			DiscoveredAt: row.DiscoveredAt,
		}
	}
	return discoveries, nil
}

func (s *gormStore) PopularQueries(ctx context.Context, from, to time.Time) ([]QueryCount, error) {
	var rows []QueryCount
	err := s.db.WithContext(ctx).
		Table("search_sessions").
		Select("query, COUNT(*) AS count").
		Where("session_start >= ? AND session_start < ?", from, to).
		Group("query").
		Order("count DESC").
		Limit(10).
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "query popular searches", goerr.V("cause", err.Error()))
	}
	return rows, nil
}

func (s *gormStore) CollisionsBetween(ctx context.Context, from, to time.Time) ([]CollisionMoment, error) {
	var rows []struct {
		Query         string
		CollisionType string
		User1         string
		User2         string
	}
	err := s.db.WithContext(ctx).
		Table("collisions c").
		Select("c.query, c.collision_type, u1.username AS user1, u2.username AS user2").
		Joins("JOIN users u1 ON u1.id = c.user1_id").
		Joins("JOIN users u2 ON u2.id = c.user2_id").
		Where("c.occurred_at >= ? AND c.occurred_at < ?", from, to).
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "query digest collisions", goerr.V("cause", err.Error()))
	}

	moments := make([]CollisionMoment, len(rows))
	for i, row := range rows {
		emoji := "🔄"
		if row.CollisionType == "simultaneous" {
			emoji = "✨"
		}
		moments[i] = CollisionMoment{
			Users: row.User1 + " & " + row.User2,
			Query: row.Query,
			Type:  row.CollisionType,
			Emoji: emoji,
		}
	}
	return moments, nil
}

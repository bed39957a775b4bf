package discoveries

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
	"github.com/Camier/searxng-convivial-instance/src/core/models"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the Postgres-backed discovery store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateDiscovery(ctx context.Context, d *models.Discovery) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return goerr.Wrap(apperr.ErrStorageUnavailable, "insert discovery", goerr.V("cause", err.Error()))
	}
	return nil
}

func (s *gormStore) Trending(ctx context.Context, since time.Time) ([]TrendingTopic, error) {
	var rows []struct {
		Query            string
		UniqueUsers      int
		TotalDiscoveries int
		LastSeen         time.Time
	}
	err := s.db.WithContext(ctx).
		Table("discoveries").
		Select("query, COUNT(DISTINCT user_id) AS unique_users, COUNT(*) AS total_discoveries, MAX(discovered_at) AS last_seen").
		Where("discovered_at > ?", since).
		Group("query").
		Having("COUNT(DISTINCT user_id) > 1").
		Order("unique_users DESC, total_discoveries DESC").
		Limit(10).
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "query trending topics", goerr.V("cause", err.Error()))
	}

	topics := make([]TrendingTopic, len(rows))
	for i, row := range rows {
		topics[i] = TrendingTopic{
			Topic:       row.Query,
			Users:       row.UniqueUsers,
			Discoveries: row.TotalDiscoveries,
			LastSeen:    row.LastSeen,
		}
	}
	return topics, nil
}

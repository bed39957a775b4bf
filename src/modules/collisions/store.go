package collisions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
	"github.com/Camier/searxng-convivial-instance/src/core/models"
)

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) RecordSession(ctx context.Context, session *models.SearchSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return goerr.Wrap(apperr.ErrStorageUnavailable, "insert search session", goerr.V("cause", err.Error()))
	}
	return nil
}

func (s *gormStore) MatchingSessions(ctx context.Context, userID uuid.UUID, query string, since time.Time) ([]Match, error) {
	var rows []struct {
		UserID   uuid.UUID
		Username string
	}
	err := s.db.WithContext(ctx).
		Table("search_sessions ss").
		Select("DISTINCT ss.user_id, u.username").
		Joins("JOIN users u ON u.id = ss.user_id").
		Where("ss.user_id != ?", userID).
		Where("ss.query = ?", query).
		Where("ss.session_start > ?", since).
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "query matching sessions", goerr.V("cause", err.Error()))
	}

	matches := make([]Match, len(rows))
	for i, row := range rows {
		matches[i] = Match{UserID: row.UserID, Username: row.Username}
	}
	return matches, nil
}

func (s *gormStore) CreateCollision(ctx context.Context, collision *models.Collision) error {
	if err := s.db.WithContext(ctx).Create(collision).Error; err != nil {
		return goerr.Wrap(apperr.ErrStorageUnavailable, "insert collision", goerr.V("cause", err.Error()))
	}
	return nil
}

func (s *gormStore) RecentCollisions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Collision, error) {
	var collisions []models.Collision
	err := s.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&collisions).Error
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "query collisions", goerr.V("cause", err.Error()))
	}
	return collisions, nil
}

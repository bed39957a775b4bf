package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
	"github.com/Camier/searxng-convivial-instance/src/core/models"
)

// Store looks up and updates the friend roster.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetMood(ctx context.Context, id uuid.UUID, mood string) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, goerr.Wrap(apperr.ErrNotFound, "unknown user", goerr.V("id", id))
		}
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "lookup user", goerr.V("cause", err.Error()))
	}
	return &user, nil
}

func (s *gormStore) SetMood(ctx context.Context, id uuid.UUID, mood string) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("current_mood", mood)
	if res.Error != nil {
		return goerr.Wrap(apperr.ErrStorageUnavailable, "update mood", goerr.V("cause", res.Error.Error()))
	}
	if res.RowsAffected == 0 {
		return goerr.Wrap(apperr.ErrNotFound, "unknown user", goerr.V("id", id))
	}
	return nil
}

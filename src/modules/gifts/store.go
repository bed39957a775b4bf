package gifts

import (
	"context"
	"errors"
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

// NewStore returns the Postgres-backed capsule store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapLookupErr(err, "user", id)
	}
	return &user, nil
}

func (s *gormStore) GetDiscovery(ctx context.Context, id uuid.UUID) (*models.Discovery, error) {
	var discovery models.Discovery
	if err := s.db.WithContext(ctx).First(&discovery, "id = ?", id).Error; err != nil {
		return nil, wrapLookupErr(err, "discovery", id)
	}
	return &discovery, nil
}

func (s *gormStore) GetCapsule(ctx context.Context, id uuid.UUID) (*models.TimeCapsule, error) {
	var capsule models.TimeCapsule
	if err := s.db.WithContext(ctx).First(&capsule, "id = ?", id).Error; err != nil {
		return nil, wrapLookupErr(err, "gift", id)
	}
	return &capsule, nil
}

// SaveCapsule inserts the capsule and flags the discovery as gifted in a
// single transaction.
func (s *gormStore) SaveCapsule(ctx context.Context, capsule *models.TimeCapsule) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(capsule).Error; err != nil {
			return err
		}
		return tx.Model(&models.Discovery{}).
			Where("id = ?", capsule.DiscoveryID).
			Updates(map[string]interface{}{
				"is_gift":   true,
				"gifted_to": capsule.RecipientID,
			}).Error
	})
	if err != nil {
		return goerr.Wrap(apperr.ErrStorageUnavailable, "insert capsule", goerr.V("cause", err.Error()))
	}
	return nil
}

func (s *gormStore) DueCapsules(ctx context.Context, now time.Time) ([]DueReveal, error) {
	var rows []struct {
		models.TimeCapsule
		ResultTitle   string
		ResultURL     string
		ResultSnippet string
		FromUsername  string
		ToUsername    string
	}
	err := s.db.WithContext(ctx).
		Table("time_capsules tc").
		Select("tc.*, d.result_title, d.result_url, d.result_snippet, u_from.username AS from_username, u_to.username AS to_username").
		Joins("JOIN discoveries d ON d.id = tc.discovery_id").
		Joins("JOIN users u_from ON u_from.id = tc.creator_id").
		Joins("JOIN users u_to ON u_to.id = tc.recipient_id").
		Where("tc.reveal_at <= ?", now).
		Where("tc.revealed = ?", false).
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(apperr.ErrStorageUnavailable, "query due capsules", goerr.V("cause", err.Error()))
	}

	due := make([]DueReveal, len(rows))
	for i, row := range rows {
		due[i] = DueReveal{
			Capsule: row.TimeCapsule,
			Discovery: models.Discovery{
				ID:      row.TimeCapsule.DiscoveryID,
				Title:   row.ResultTitle,
				URL:     row.ResultURL,
				Snippet: row.ResultSnippet,
			},
			FromUsername: row.FromUsername,
			ToUsername:   row.ToUsername,
		}
	}
	return due, nil
}

// MarkRevealed performs the one-shot reveal transition. The WHERE guard
// on the prior value makes the flip a compare-and-swap, so concurrent
// sweeps (including ones in other processes) cannot double-reveal.
func (s *gormStore) MarkRevealed(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.TimeCapsule{}).
		Where("id = ?", id).
		Where("revealed = ?", false).
		Update("revealed", true)
	if res.Error != nil {
		return false, goerr.Wrap(apperr.ErrStorageUnavailable, "update capsule", goerr.V("cause", res.Error.Error()))
	}
	return res.RowsAffected == 1, nil
}

func wrapLookupErr(err error, kind string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return goerr.Wrap(apperr.ErrNotFound, "unknown "+kind, goerr.V("id", id))
	}
	return goerr.Wrap(apperr.ErrStorageUnavailable, "lookup "+kind, goerr.V("cause", err.Error()))
}

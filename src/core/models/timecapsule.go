package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeCapsule is a discovery wrapped for delayed disclosure to a specific
// recipient. Rows are append-only with a single mutation point: Revealed
// flips false to true exactly once, by the reveal scheduler, through a
// conditional update guarded on the prior value.
type TimeCapsule struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CreatorID   uuid.UUID `gorm:"column:creator_id;type:uuid;not null" json:"creator_id"`
	RecipientID uuid.UUID `gorm:"column:recipient_id;type:uuid;not null;index" json:"recipient_id"`
	DiscoveryID uuid.UUID `gorm:"column:discovery_id;type:uuid;not null" json:"discovery_id"`
	Message     string    `gorm:"column:message;type:text" json:"message"`
	Theme       string    `gorm:"column:theme;type:varchar(50)" json:"theme"`
	RevealAt    time.Time `gorm:"column:reveal_at;type:timestamp;not null;index" json:"reveal_at"`
	Revealed    bool      `gorm:"column:revealed;default:false" json:"revealed"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TimeCapsule) TableName() string {
	return "time_capsules"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Collision records two distinct users issuing the identical query within
// the detection window. Append-only; never updated.
type Collision struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	User1ID       uuid.UUID `gorm:"column:user1_id;type:uuid;not null;index" json:"user1_id"`
	User2ID       uuid.UUID `gorm:"column:user2_id;type:uuid;not null;index" json:"user2_id"`
	Query         string    `gorm:"column:query;type:text;not null" json:"query"`
	CollisionType string    `gorm:"column:collision_type;type:varchar(30);default:simultaneous" json:"collision_type"`
	OccurredAt    time.Time `gorm:"column:occurred_at;type:timestamp;default:CURRENT_TIMESTAMP" json:"occurred_at"`
}

func (Collision) TableName() string {
	return "collisions"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Discovery is a search result flagged as noteworthy, either by the
// interest scorer crossing its threshold or by an explicit user action.
// Rows are immutable after creation except for IsGift/GiftedTo, which are
// set once when the discovery is wrapped as a gift.
type Discovery struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Query        string     `gorm:"column:query;type:text;not null" json:"query"`
	URL          string     `gorm:"column:result_url;type:text" json:"url"`
	Title        string     `gorm:"column:result_title;type:text" json:"title"`
	Snippet      string     `gorm:"column:result_snippet;type:text" json:"snippet"`
	Engine       string     `gorm:"column:engine;type:varchar(50)" json:"engine"`
	Score        float64    `gorm:"column:score" json:"score"`
	IsGift       bool       `gorm:"column:is_gift;default:false" json:"is_gift"`
	GiftedTo     *uuid.UUID `gorm:"column:gifted_to;type:uuid" json:"gifted_to,omitempty"`
	DiscoveredAt time.Time  `gorm:"column:discovered_at;type:timestamp;default:CURRENT_TIMESTAMP;index" json:"discovered_at"`
}

func (Discovery) TableName() string {
	return "discoveries"
}

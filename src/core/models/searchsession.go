package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchSession is one tracked search. The collision detector's trailing
// window predicate reads this table.
type SearchSession struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Query        string    `gorm:"column:query;type:text;not null;index" json:"query"`
	Mood         string    `gorm:"column:mood;type:varchar(100)" json:"mood"`
	SessionStart time.Time `gorm:"column:session_start;type:timestamp;default:CURRENT_TIMESTAMP;index" json:"session_start"`
}

func (SearchSession) TableName() string {
	return "search_sessions"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"column:username;type:varchar(50);uniqueIndex;not null" json:"username"`
	DisplayName string    `gorm:"column:display_name;type:varchar(100)" json:"display_name"`
	Role        string    `gorm:"column:role;type:varchar(20);default:friend" json:"role"`
	CurrentMood string    `gorm:"column:current_mood;type:varchar(100)" json:"current_mood"`
	IsGhost     bool      `gorm:"column:is_ghost;default:false" json:"is_ghost"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

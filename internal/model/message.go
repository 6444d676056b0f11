package model

import (
	"time"
)

// Message chat message posted to a room (channel name or direct room).
// Immutable once stored; only bulk deletion by room.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Room      string    `gorm:"type:varchar(191);not null;index;comment:channel or dm room" json:"room"`
	Author    string    `gorm:"type:varchar(64);not null;comment:sender username" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"message"`
	Timestamp string    `gorm:"type:varchar(64);comment:client supplied display time" json:"time"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Message) TableName() string { return "message" }

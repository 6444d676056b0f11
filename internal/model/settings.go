package model

import "time"

type UserSettings struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	Theme         string    `gorm:"type:varchar(16);not null" json:"theme"`
	Notifications bool      `gorm:"not null" json:"notifications"`
	Language      string    `gorm:"type:varchar(32);not null" json:"language"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (UserSettings) TableName() string { return "user_settings" }

// DefaultSettings light theme, notifications on, English.
func DefaultSettings(username string) *UserSettings {
	return &UserSettings{
		Username:      username,
		Theme:         "light",
		Notifications: true,
		Language:      "English",
	}
}

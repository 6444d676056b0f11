package model

import (
	"time"
)

// User status values
const (
	StatusOnline  = "online"
	StatusBusy    = "busy"
	StatusAway    = "away"
	StatusOffline = "offline"
)

// DefaultAvatarColor is assigned at registration
const DefaultAvatarColor = "#6264A7"

// User account; only the password hash is stored.
// Username is unique and never changes once created.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"type:varchar(64);not null;uniqueIndex;comment:login name" json:"username"`
	PasswordHash     string    `gorm:"type:varchar(255);not null;comment:bcrypt hash" json:"-"`
	Status           string    `gorm:"type:varchar(16);default:'offline';comment:presence status" json:"status"`
	AvatarColor      string    `gorm:"type:varchar(16);default:'#6264A7'" json:"avatarColor"`
	Email            string    `gorm:"type:varchar(128)" json:"email"`
	Mobile           string    `gorm:"type:varchar(32)" json:"mobile"`
	IsEmailVerified  bool      `json:"isEmailVerified"`
	IsMobileVerified bool      `json:"isMobileVerified"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "user" }

// ValidStatus reports whether s is one of the user status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusOnline, StatusBusy, StatusAway, StatusOffline:
		return true
	}
	return false
}

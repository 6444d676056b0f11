package model

import "time"

// Activity types
const (
	ActivityMention  = "mention"
	ActivityReaction = "reaction"
	ActivityReply    = "reply"
	ActivityTeam     = "team"
)

// Activity notification stored for TargetUser; only Read changes after creation.
type Activity struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Type       string    `gorm:"type:varchar(16);not null" json:"type"`
	TargetUser string    `gorm:"type:varchar(64);not null;index" json:"targetUser"`
	FromUser   string    `gorm:"type:varchar(64)" json:"fromUser"`
	Channel    string    `gorm:"type:varchar(191)" json:"channel"`
	Message    string    `gorm:"type:varchar(255)" json:"message"`
	Read       bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Activity) TableName() string { return "activity" }

func ValidActivityType(t string) bool {
	switch t {
	case ActivityMention, ActivityReaction, ActivityReply, ActivityTeam:
		return true
	}
	return false
}

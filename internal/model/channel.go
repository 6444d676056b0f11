package model

import "time"

// Member roles
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Well-known channels
const (
	GeneralChannel = "General"
	RandomChannel  = "Random"
	SystemUser     = "system"
)

type Channel struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedBy   string    `gorm:"type:varchar(64);not null;default:'system'" json:"createdBy"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Channel) TableName() string { return "channel" }

// ChannelMember (channel, username) is unique.
type ChannelMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Channel   string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_channel_member" json:"channel"`
	Username  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_channel_member;index" json:"username"`
	Role      string    `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ChannelMember) TableName() string { return "channel_member" }

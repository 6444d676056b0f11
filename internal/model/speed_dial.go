package model

import "time"

// SpeedDial one quick-call contact of a user; (user, contact) is unique.
type SpeedDial struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_speed_dial_contact" json:"userId"`
	ContactUsername string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_speed_dial_contact" json:"contactUsername"`
	Order           int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (SpeedDial) TableName() string { return "speed_dial" }

// SpeedDialContact is a speed dial entry with the contact's current status.
type SpeedDialContact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Status   string `json:"status"`
	Order    int    `json:"order"`
}

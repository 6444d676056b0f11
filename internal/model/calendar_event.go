package model

import "time"

// Event types
const (
	EventMeeting  = "meeting"
	EventVideo    = "video"
	EventReminder = "reminder"
)

const DefaultEventColor = "#5B5FC7"

// CalendarEvent Date is YYYY-MM-DD, times are HH:MM.
type CalendarEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Date        string    `gorm:"type:varchar(10);not null;index" json:"date"`
	StartTime   string    `gorm:"type:varchar(8)" json:"startTime"`
	EndTime     string    `gorm:"type:varchar(8)" json:"endTime"`
	Type        string    `gorm:"type:varchar(16);not null;default:'meeting'" json:"type"`
	Color       string    `gorm:"type:varchar(16);default:'#5B5FC7'" json:"color"`
	CreatedBy   string    `gorm:"type:varchar(64)" json:"createdBy"`
	Attendees   []string  `gorm:"type:text;serializer:json" json:"attendees"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (CalendarEvent) TableName() string { return "calendar_event" }

func ValidEventType(t string) bool {
	switch t {
	case EventMeeting, EventVideo, EventReminder:
		return true
	}
	return false
}

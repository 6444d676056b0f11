package model

import "time"

// Call types
const (
	CallVoice = "voice"
	CallVideo = "video"
)

// Call status stored on the row, and the requester relative direction in listings.
const (
	CallOutgoing = "outgoing"
	CallIncoming = "incoming"
	CallMissed   = "missed"
)

type CallHistory struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CallerUsername   string    `gorm:"type:varchar(64);not null;index" json:"callerUsername"`
	ReceiverUsername string    `gorm:"type:varchar(64);not null;index" json:"receiverUsername"`
	CallType         string    `gorm:"type:varchar(16);not null;default:'voice'" json:"callType"`
	Status           string    `gorm:"type:varchar(16);not null;default:'outgoing'" json:"status"`
	Duration         string    `gorm:"type:varchar(16)" json:"duration"`
	CreatedAt        time.Time `gorm:"index" json:"createdAt"`
}

func (CallHistory) TableName() string { return "call_history" }

// CallEntry is a call as seen by one participant.
type CallEntry struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	CallType string    `json:"callType"`
	Duration string    `json:"duration"`
	Time     time.Time `json:"time"`
}

// ViewFor projects the call relative to username: the other party's name and
// outgoing when username placed it, otherwise missed or incoming.
func (c *CallHistory) ViewFor(username string) CallEntry {
	entry := CallEntry{
		ID:       c.ID,
		CallType: c.CallType,
		Duration: c.Duration,
		Time:     c.CreatedAt,
	}
	switch {
	case c.CallerUsername == username:
		entry.Name = c.ReceiverUsername
		entry.Type = CallOutgoing
	case c.Status == CallMissed:
		entry.Name = c.CallerUsername
		entry.Type = CallMissed
	default:
		entry.Name = c.CallerUsername
		entry.Type = CallIncoming
	}
	return entry
}

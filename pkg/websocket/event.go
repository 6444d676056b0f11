package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"connectsphere/internal/model"
)

// Inbound events
const (
	EventJoinRoom     = "join_room"
	EventSendMessage  = "send_message"
	EventInitiateCall = "initiate_call"
	EventEndCall      = "end_call"
)

// Outbound events
const (
	EventMessageHistory = "receive_message_history"
	EventReceiveMessage = "receive_message"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventUserStatus     = "user_status_update"
	EventNewActivity    = "new_activity"
	EventIncomingCall   = "incoming_call"
	EventCallInitiated  = "call_initiated"
	EventError          = "error"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// encode builds an outbound frame.
func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

type JoinRoomPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

type SendMessagePayload struct {
	Room    string `json:"room"`
	Author  string `json:"author"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

type InitiateCallPayload struct {
	CallerUsername   string `json:"callerUsername"`
	ReceiverUsername string `json:"receiverUsername"`
	CallType         string `json:"callType"`
}

type EndCallPayload struct {
	CallID   uint          `json:"callId"`
	Duration FlexibleValue `json:"duration"`
}

// FlexibleValue accepts a JSON string or number and keeps its text.
type FlexibleValue string

func (v *FlexibleValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FlexibleValue(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("duration must be a string or number")
	}
	*v = FlexibleValue(b)
	return nil
}

// ChatMessage is a persisted message as clients see it.
type ChatMessage struct {
	Room    string `json:"room"`
	Author  string `json:"author"`
	Message string `json:"message"`
	Time    string `json:"time"`
	ID      uint   `json:"id"`
}

func toChatMessage(m *model.Message) ChatMessage {
	return ChatMessage{Room: m.Room, Author: m.Author, Message: m.Content, Time: m.Timestamp, ID: m.ID}
}

type UserJoinedPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type UserLeftPayload struct {
	Username string `json:"username"`
	Room     string `json:"room,omitempty"`
}

type UserStatusPayload struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

type NewActivityPayload struct {
	ID         uint   `json:"id"`
	TargetUser string `json:"targetUser"`
	Type       string `json:"type"`
	FromUser   string `json:"fromUser"`
	Channel    string `json:"channel"`
	Message    string `json:"message"`
}

type CallPayload struct {
	CallID           uint   `json:"callId"`
	CallerUsername   string `json:"callerUsername"`
	ReceiverUsername string `json:"receiverUsername"`
	CallType         string `json:"callType"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

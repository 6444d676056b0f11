package model

import "strings"

const directRoomPrefix = "dm_"

// DirectRoomName is the canonical room of a user pair, the same whichever side starts it.
func DirectRoomName(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return directRoomPrefix + a + "_" + b
}

// IsDirectRoom reports whether room was built by DirectRoomName.
func IsDirectRoom(room string) bool {
	return strings.HasPrefix(room, directRoomPrefix)
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Channel{},
		&ChannelMember{},
		&Message{},
		&Activity{},
		&CalendarEvent{},
		&CallHistory{},
		&SpeedDial{},
		&UserSettings{},
	}
}

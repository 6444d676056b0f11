package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectRoomName(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"Zed", "amy"},
		{"same", "same"},
		{"user_1", "user_10"},
	}

	for _, p := range pairs {
		t.Run(p[0]+"+"+p[1], func(t *testing.T) {
			ab := DirectRoomName(p[0], p[1])
			ba := DirectRoomName(p[1], p[0])
			assert.Equal(t, ab, ba)
			assert.True(t, IsDirectRoom(ab))
		})
	}

	assert.Equal(t, "dm_alice_bob", DirectRoomName("bob", "alice"))
	assert.False(t, IsDirectRoom("General"))
}

func TestCallHistoryViewFor(t *testing.T) {
	call := &CallHistory{ID: 7, CallerUsername: "alice", ReceiverUsername: "bob", CallType: CallVideo, Status: CallOutgoing, Duration: "0:42"}

	caller := call.ViewFor("alice")
	assert.Equal(t, "bob", caller.Name)
	assert.Equal(t, CallOutgoing, caller.Type)
	assert.Equal(t, "0:42", caller.Duration)

	receiver := call.ViewFor("bob")
	assert.Equal(t, "alice", receiver.Name)
	assert.Equal(t, CallIncoming, receiver.Type)

	call.Status = CallMissed
	assert.Equal(t, CallMissed, call.ViewFor("bob").Type)
	assert.Equal(t, CallOutgoing, call.ViewFor("alice").Type)
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"online", "busy", "away", "offline"} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("invisible"))
	assert.False(t, ValidStatus(""))
}

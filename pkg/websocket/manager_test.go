package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"connectsphere/config"
	"connectsphere/internal/model"
	"connectsphere/internal/presence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMessages struct {
	historyErr error
	limits     []int
}

func (s *stubMessages) Post(_ context.Context, msg *model.Message) ([]*model.Activity, error) {
	msg.ID = 1
	return nil, nil
}

func (s *stubMessages) History(_ context.Context, _ string, limit int) ([]model.Message, error) {
	s.limits = append(s.limits, limit)
	return nil, s.historyErr
}

type stubStatuses struct {
	mu  sync.Mutex
	set map[string]string
}

func (s *stubStatuses) SetStatus(_ context.Context, username, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set == nil {
		s.set = make(map[string]string)
	}
	s.set[username] = status
	return nil
}

func (s *stubStatuses) get(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set[username]
}

// brokenLeave behaves like the memory tracker except that Leave always fails.
type brokenLeave struct {
	*presence.MemoryTracker
}

func (brokenLeave) Leave(context.Context, string) (presence.Entry, bool, int, error) {
	return presence.Entry{}, false, 0, errors.New("redis: connection refused")
}

func connect(t *testing.T, m *Manager, username string) *Client {
	t.Helper()
	c := newClient(m, nil, username)
	require.True(t, m.register(c))
	return c
}

// events drains every frame queued for c and returns the event names.
func events(t *testing.T, c *Client) []string {
	t.Helper()
	var out []string
	for {
		select {
		case frame := <-c.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(frame, &env))
			out = append(out, env.Event)
		default:
			return out
		}
	}
}

func TestHistoryLimitIsCapped(t *testing.T) {
	tests := []struct {
		configured int
		want       int
	}{
		{0, 50},
		{20, 20},
		{50, 50},
		{500, 50},
	}
	for _, tt := range tests {
		m := NewManager(config.WebSocketConfig{HistoryLimit: tt.configured}, presence.NewMemoryTracker(), &stubMessages{}, &stubStatuses{}, nil)
		assert.Equal(t, tt.want, m.cfg.HistoryLimit, "configured %d", tt.configured)
	}

	messages := &stubMessages{}
	m := NewManager(config.WebSocketConfig{HistoryLimit: 1000}, presence.NewMemoryTracker(), messages, &stubStatuses{}, nil)
	alice := connect(t, m, "alice")
	require.NoError(t, m.joinRoom(context.Background(), alice, JoinRoomPayload{Room: "General"}))
	assert.Equal(t, []int{50}, messages.limits)
}

func TestFailedJoinKeepsPreviousRoom(t *testing.T) {
	ctx := context.Background()
	messages := &stubMessages{}
	tracker := presence.NewMemoryTracker()
	m := NewManager(config.WebSocketConfig{}, tracker, messages, &stubStatuses{}, nil)

	alice := connect(t, m, "alice")
	bob := connect(t, m, "bob")
	require.NoError(t, m.joinRoom(ctx, alice, JoinRoomPayload{Room: "General"}))
	require.NoError(t, m.joinRoom(ctx, bob, JoinRoomPayload{Room: "General"}))
	events(t, alice)
	events(t, bob)

	messages.historyErr = errors.New("database is locked")
	err := m.joinRoom(ctx, alice, JoinRoomPayload{Room: "Random"})
	require.Error(t, err)

	m.mu.RLock()
	assert.Equal(t, "General", alice.room)
	_, inRandom := m.rooms["Random"]
	_, inGeneral := m.rooms["General"][alice]
	m.mu.RUnlock()
	assert.False(t, inRandom)
	assert.True(t, inGeneral)

	entry, ok, err := tracker.Lookup(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "General", entry.Room)

	assert.Empty(t, events(t, bob), "no user_left for a join that did not happen")
}

func TestDisconnectAnnouncesDepartureWhenTrackerFails(t *testing.T) {
	ctx := context.Background()
	statuses := &stubStatuses{}
	m := NewManager(config.WebSocketConfig{}, brokenLeave{presence.NewMemoryTracker()}, &stubMessages{}, statuses, nil)

	alice := connect(t, m, "alice")
	bob := connect(t, m, "bob")
	require.NoError(t, m.joinRoom(ctx, alice, JoinRoomPayload{Room: "General"}))
	require.NoError(t, m.joinRoom(ctx, bob, JoinRoomPayload{Room: "General"}))
	events(t, bob)
	require.Equal(t, model.StatusOnline, statuses.get("alice"))

	m.disconnect(alice)

	assert.Equal(t, []string{EventUserLeft, EventUserStatus}, events(t, bob))
	assert.Equal(t, model.StatusOffline, statuses.get("alice"))
}

func TestDisconnectFallbackKeepsUserOnlineWithOtherConnection(t *testing.T) {
	ctx := context.Background()
	statuses := &stubStatuses{}
	m := NewManager(config.WebSocketConfig{}, brokenLeave{presence.NewMemoryTracker()}, &stubMessages{}, statuses, nil)

	phone := connect(t, m, "alice")
	laptop := connect(t, m, "alice")
	bob := connect(t, m, "bob")
	for _, c := range []*Client{phone, laptop, bob} {
		require.NoError(t, m.joinRoom(ctx, c, JoinRoomPayload{Room: "General"}))
	}
	events(t, bob)

	m.disconnect(phone)

	assert.Equal(t, []string{EventUserLeft}, events(t, bob))
	assert.Equal(t, model.StatusOnline, statuses.get("alice"))
}

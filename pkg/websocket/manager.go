package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"time"

	"connectsphere/config"
	"connectsphere/internal/model"
	"connectsphere/internal/presence"
	"connectsphere/pkg/errs"
	"connectsphere/pkg/logger"

	"go.uber.org/zap"
)

const (
	roomLockStripes = 64
	opTimeout       = 5 * time.Second

	// maxHistory caps the messages replayed on join_room.
	maxHistory = 50
)

// MessageStore persists chat messages and the mention activities they produce.
type MessageStore interface {
	Post(ctx context.Context, msg *model.Message) ([]*model.Activity, error)
	History(ctx context.Context, room string, limit int) ([]model.Message, error)
}

// StatusStore records a user's persisted presence status.
type StatusStore interface {
	SetStatus(ctx context.Context, username, status string) error
}

// CallStore records call signalling.
type CallStore interface {
	Start(ctx context.Context, caller, receiver, callType string) (*model.CallHistory, error)
	End(ctx context.Context, username string, id uint, duration string) error
}

// Manager fans events out to room subscribers, to every connection of a
// user, or to everyone.
//
// Joining a room and posting to it hold the same room lock, so a joiner's
// history and the live messages that follow it never overlap or leave a gap.
type Manager struct {
	cfg      config.WebSocketConfig
	tracker  presence.Tracker
	messages MessageStore
	statuses StatusStore
	calls    CallStore

	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	users   map[string]map[*Client]struct{}
	closed  bool

	roomLocks [roomLockStripes]sync.Mutex
}

func NewManager(cfg config.WebSocketConfig, tracker presence.Tracker, messages MessageStore, statuses StatusStore, calls CallStore) *Manager {
	return &Manager{
		cfg:      withDefaults(cfg),
		tracker:  tracker,
		messages: messages,
		statuses: statuses,
		calls:    calls,
		clients:  make(map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
		users:    make(map[string]map[*Client]struct{}),
	}
}

func withDefaults(cfg config.WebSocketConfig) config.WebSocketConfig {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= cfg.PingInterval {
		cfg.ReadTimeout = cfg.PingInterval * 2
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 64 * 1024
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistory {
		cfg.HistoryLimit = maxHistory
	}
	return cfg
}

func (m *Manager) roomLock(room string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	return &m.roomLocks[h.Sum32()%roomLockStripes]
}

// register adds c to the connection set; false once the manager is closed.
func (m *Manager) register(c *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.clients[c] = struct{}{}
	set, ok := m.users[c.Username]
	if !ok {
		set = make(map[*Client]struct{})
		m.users[c.Username] = set
	}
	set[c] = struct{}{}
	return true
}

// subscribe moves c into room and returns the room it left, if any.
func (m *Manager) subscribe(c *Client, room string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := c.room
	if previous == room {
		return ""
	}
	if previous != "" {
		m.removeFromRoom(c, previous)
	}
	set, ok := m.rooms[room]
	if !ok {
		set = make(map[*Client]struct{})
		m.rooms[room] = set
	}
	set[c] = struct{}{}
	c.room = room
	return previous
}

// removeFromRoom must be called with mu held.
func (m *Manager) removeFromRoom(c *Client, room string) {
	if set, ok := m.rooms[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(m.rooms, room)
		}
	}
}

// disconnect tears down c and announces the departure. The user goes
// offline only when no other live connection of theirs remains.
func (m *Manager) disconnect(c *Client) {
	c.stop()

	m.mu.Lock()
	delete(m.clients, c)
	if set, ok := m.users[c.Username]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(m.users, c.Username)
		}
	}
	room := c.room
	if room != "" {
		m.removeFromRoom(c, room)
	}
	localJoined := 0
	for other := range m.users[c.Username] {
		if other.room != "" {
			localJoined++
		}
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	entry, ok, remaining, err := m.tracker.Leave(ctx, c.ID)
	if err != nil {
		// fall back to what this instance knows about the connection
		logger.Error("leave presence failed", zap.String("conn_id", c.ID), zap.Error(err))
		entry = presence.Entry{ConnID: c.ID, Username: c.Username, Room: room}
		ok, remaining = room != "", localJoined
	}
	if !ok {
		return
	}

	m.BroadcastRoom(entry.Room, EventUserLeft, UserLeftPayload{Username: entry.Username, Room: entry.Room})
	if remaining > 0 {
		return
	}
	if err := m.statuses.SetStatus(ctx, entry.Username, model.StatusOffline); err != nil {
		logger.Warn("mark user offline failed", zap.String("username", entry.Username), zap.Error(err))
	}
	m.Broadcast(EventUserStatus, UserStatusPayload{Username: entry.Username, Status: model.StatusOffline})
	logger.Info("user offline", zap.String("username", entry.Username))
}

func (m *Manager) dispatch(c *Client, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
		c.emitError("", "malformed frame")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var err error
	switch env.Event {
	case EventJoinRoom:
		var p JoinRoomPayload
		if err = decode(env.Data, &p); err == nil {
			err = m.joinRoom(ctx, c, p)
		}
	case EventSendMessage:
		var p SendMessagePayload
		if err = decode(env.Data, &p); err == nil {
			err = m.sendMessage(ctx, c, p)
		}
	case EventInitiateCall:
		var p InitiateCallPayload
		if err = decode(env.Data, &p); err == nil {
			err = m.initiateCall(ctx, c, p)
		}
	case EventEndCall:
		var p EndCallPayload
		if err = decode(env.Data, &p); err == nil {
			err = m.calls.End(ctx, c.Username, p.CallID, string(p.Duration))
		}
	default:
		err = errs.Invalid("unknown event %q", env.Event)
	}

	if err != nil {
		if errs.HTTPStatus(err) >= http.StatusInternalServerError {
			logger.Error("websocket event failed",
				zap.String("event", env.Event), zap.String("username", c.Username), zap.Error(err))
		}
		c.emitError(env.Event, errs.Message(err))
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errs.Invalid("missing data")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errs.Invalid("malformed data: %v", err)
	}
	return nil
}

// actingAs resolves the username a payload claims, defaulting to the
// connection's own user and rejecting anyone else.
func actingAs(c *Client, claimed string) (string, error) {
	if claimed == "" || claimed == c.Username {
		return c.Username, nil
	}
	return "", errs.Unauthorized("cannot act as %s", claimed)
}

func (m *Manager) joinRoom(ctx context.Context, c *Client, p JoinRoomPayload) error {
	room := strings.TrimSpace(p.Room)
	if room == "" {
		return errs.Invalid("room is required")
	}
	if _, err := actingAs(c, p.Username); err != nil {
		return err
	}

	lock := m.roomLock(room)
	lock.Lock()
	// a failed history load leaves the connection where it was
	history, err := m.messages.History(ctx, room, m.cfg.HistoryLimit)
	if err != nil {
		lock.Unlock()
		return err
	}
	if previous := m.subscribe(c, room); previous != "" {
		m.BroadcastRoom(previous, EventUserLeft, UserLeftPayload{Username: c.Username, Room: previous})
	}
	if err := m.tracker.Join(ctx, presence.Entry{ConnID: c.ID, Username: c.Username, Room: room}); err != nil {
		logger.Warn("store presence failed", zap.String("conn_id", c.ID), zap.Error(err))
	}
	view := make([]ChatMessage, 0, len(history))
	for i := range history {
		view = append(view, toChatMessage(&history[i]))
	}
	c.emit(EventMessageHistory, view)
	lock.Unlock()

	if err := m.statuses.SetStatus(ctx, c.Username, model.StatusOnline); err != nil {
		logger.Warn("mark user online failed", zap.String("username", c.Username), zap.Error(err))
	}
	m.BroadcastRoom(room, EventUserJoined, UserJoinedPayload{Username: c.Username, Room: room})
	m.Broadcast(EventUserStatus, UserStatusPayload{Username: c.Username, Status: model.StatusOnline})
	return nil
}

func (m *Manager) sendMessage(ctx context.Context, c *Client, p SendMessagePayload) error {
	room := strings.TrimSpace(p.Room)
	if room == "" {
		return errs.Invalid("room is required")
	}
	author, err := actingAs(c, p.Author)
	if err != nil {
		return err
	}
	stamp := p.Time
	if stamp == "" {
		stamp = time.Now().Format(time.RFC3339)
	}
	msg := &model.Message{Room: room, Author: author, Content: p.Message, Timestamp: stamp}

	lock := m.roomLock(room)
	lock.Lock()
	activities, err := m.messages.Post(ctx, msg)
	if msg.ID == 0 {
		lock.Unlock()
		return err
	}
	m.BroadcastRoom(room, EventReceiveMessage, toChatMessage(msg))
	lock.Unlock()

	if err != nil {
		logger.Error("record mentions failed", zap.Uint("message_id", msg.ID), zap.Error(err))
		return nil
	}
	for _, a := range activities {
		m.SendToUser(a.TargetUser, EventNewActivity, NewActivityPayload{
			ID:         a.ID,
			TargetUser: a.TargetUser,
			Type:       a.Type,
			FromUser:   a.FromUser,
			Channel:    a.Channel,
			Message:    a.Message,
		})
	}
	return nil
}

func (m *Manager) initiateCall(ctx context.Context, c *Client, p InitiateCallPayload) error {
	caller, err := actingAs(c, p.CallerUsername)
	if err != nil {
		return err
	}
	call, err := m.calls.Start(ctx, caller, p.ReceiverUsername, p.CallType)
	if err != nil {
		return err
	}
	payload := CallPayload{
		CallID:           call.ID,
		CallerUsername:   call.CallerUsername,
		ReceiverUsername: call.ReceiverUsername,
		CallType:         call.CallType,
	}
	m.SendToUser(call.ReceiverUsername, EventIncomingCall, payload)
	c.emit(EventCallInitiated, payload)
	return nil
}

// BroadcastRoom delivers to every connection subscribed to room.
func (m *Manager) BroadcastRoom(room, event string, data any) {
	frame, ok := m.frame(event, data)
	if !ok {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.rooms[room] {
		c.enqueue(frame)
	}
}

// SendToUser delivers to every connection of username; a no-op when offline.
func (m *Manager) SendToUser(username, event string, data any) {
	frame, ok := m.frame(event, data)
	if !ok {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.users[username] {
		c.enqueue(frame)
	}
}

// Broadcast delivers to every connection.
func (m *Manager) Broadcast(event string, data any) {
	frame, ok := m.frame(event, data)
	if !ok {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.clients {
		c.enqueue(frame)
	}
}

func (m *Manager) frame(event string, data any) ([]byte, bool) {
	frame, err := encode(event, data)
	if err != nil {
		logger.Error("encode event failed", zap.String("event", event), zap.Error(err))
		return nil, false
	}
	return frame, true
}

// OnlineUsers usernames with at least one connection that joined a room.
func (m *Manager) OnlineUsers(ctx context.Context) ([]string, error) {
	return m.tracker.OnlineUsers(ctx)
}

// ConnectionCount live connections on this instance.
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Close refuses new connections and asks every live one to close. The
// read pumps then run the usual disconnect path until ctx expires.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	clients := make([]*Client, 0, len(m.clients))
	for c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.Unlock()

	for _, c := range clients {
		c.stop()
	}

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for m.ConnectionCount() > 0 {
		select {
		case <-ctx.Done():
			return errors.New("websocket manager: connections still open at shutdown")
		case <-ticker.C:
		}
	}
	return nil
}

package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectsphere/config"
	"connectsphere/internal/model"
	"connectsphere/internal/presence"
	"connectsphere/internal/repository"
	"connectsphere/internal/service"
	"connectsphere/internal/testutil"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/password"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type gateway struct {
	server   *httptest.Server
	manager  *Manager
	users    *service.UserService
	messages *service.MessageService
	calls    *service.CallService
	tokens   map[string]string
}

func newGateway(t *testing.T, names ...string) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orm := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(orm)
	activityRepo := repository.NewActivityRepository(orm)
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "gateway", Issuer: "test", ExpireTime: time.Hour})

	g := &gateway{
		users: service.NewUserService(userRepo,
			repository.NewChannelRepository(orm),
			repository.NewMemberRepository(orm),
			repository.NewSettingsRepository(orm),
			jwtService,
			password.NewHasher(bcrypt.MinCost)),
		messages: service.NewMessageService(repository.NewMessageRepository(orm), activityRepo),
		calls:    service.NewCallService(repository.NewCallRepository(orm)),
		tokens:   make(map[string]string),
	}
	g.manager = NewManager(config.WebSocketConfig{HistoryLimit: 50}, presence.NewMemoryTracker(), g.messages, g.users, g.calls)

	for _, n := range names {
		res, err := g.users.Register(context.Background(), n, "pw-"+n)
		require.NoError(t, err)
		g.tokens[n] = res.Token
	}

	router := gin.New()
	router.GET("/ws", NewHandler(g.manager, jwtService, nil).ServeWS)
	g.server = httptest.NewServer(router)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = g.manager.Close(ctx)
		g.server.Close()
	})
	return g
}

func (g *gateway) dial(t *testing.T, username string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(g.server.URL, "http") + "/ws?token=" + g.tokens[username]
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, Data: raw}))
}

func next(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

// expect skips frames until one carries event and decodes it into v.
func expect(t *testing.T, conn *websocket.Conn, event string, v any) {
	t.Helper()
	for {
		env := next(t, conn)
		if env.Event == event {
			if v != nil {
				require.NoError(t, json.Unmarshal(env.Data, v))
			}
			return
		}
	}
}

func join(t *testing.T, conn *websocket.Conn, room, username string) []ChatMessage {
	t.Helper()
	send(t, conn, EventJoinRoom, JoinRoomPayload{Room: room, Username: username})
	var history []ChatMessage
	expect(t, conn, EventMessageHistory, &history)
	return history
}

func TestServeWSRequiresToken(t *testing.T) {
	g := newGateway(t)
	url := "ws" + strings.TrimPrefix(g.server.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJoinRoomReplaysHistoryThenLiveMessages(t *testing.T) {
	g := newGateway(t, "alice", "bob")

	_, err := g.messages.Post(context.Background(), &model.Message{Room: "General", Author: "bob", Content: "earlier", Timestamp: "09:00"})
	require.NoError(t, err)

	alice := g.dial(t, "alice")
	history := join(t, alice, "General", "alice")
	require.Len(t, history, 1)
	assert.Equal(t, "earlier", history[0].Message)
	assert.Equal(t, "bob", history[0].Author)

	bob := g.dial(t, "bob")
	join(t, bob, "General", "bob")

	var joined UserJoinedPayload
	expect(t, alice, EventUserJoined, &joined)
	assert.Equal(t, UserJoinedPayload{Username: "bob", Room: "General"}, joined)

	send(t, bob, EventSendMessage, SendMessagePayload{Room: "General", Author: "bob", Message: "hi @alice", Time: "10:00"})

	var got ChatMessage
	expect(t, bob, EventReceiveMessage, &got)
	assert.Equal(t, "hi @alice", got.Message)
	assert.NotZero(t, got.ID)

	expect(t, alice, EventReceiveMessage, &got)
	assert.Equal(t, "bob", got.Author)
	assert.Equal(t, "10:00", got.Time)

	var activity NewActivityPayload
	expect(t, alice, EventNewActivity, &activity)
	assert.Equal(t, "alice", activity.TargetUser)
	assert.Equal(t, "bob", activity.FromUser)
	assert.Equal(t, model.ActivityMention, activity.Type)
	assert.Equal(t, "General", activity.Channel)
}

func TestMessageToUnwatchedRoomIsStored(t *testing.T) {
	g := newGateway(t, "alice", "bob")

	alice := g.dial(t, "alice")
	send(t, alice, EventSendMessage, SendMessagePayload{Room: "Random", Message: "anyone?"})

	require.Eventually(t, func() bool {
		msgs, err := g.messages.History(context.Background(), "Random", 50)
		return err == nil && len(msgs) == 1
	}, 2*time.Second, 20*time.Millisecond)

	bob := g.dial(t, "bob")
	history := join(t, bob, "Random", "bob")
	require.Len(t, history, 1)
	assert.Equal(t, "alice", history[0].Author)
}

func TestSwitchingRoomsLeavesThePreviousOne(t *testing.T) {
	g := newGateway(t, "alice", "bob")

	alice := g.dial(t, "alice")
	bob := g.dial(t, "bob")
	join(t, bob, "A", "bob")
	join(t, alice, "A", "alice")
	join(t, alice, "B", "alice")

	var left UserLeftPayload
	expect(t, bob, EventUserLeft, &left)
	assert.Equal(t, UserLeftPayload{Username: "alice", Room: "A"}, left)

	send(t, bob, EventSendMessage, SendMessagePayload{Room: "A", Message: "still here?"})
	expect(t, bob, EventReceiveMessage, nil)

	send(t, alice, EventSendMessage, SendMessagePayload{Room: "B", Message: "moved"})
	var got ChatMessage
	expect(t, alice, EventReceiveMessage, &got)
	assert.Equal(t, "B", got.Room)
	assert.Equal(t, "moved", got.Message)
}

func TestUserGoesOfflineWithLastConnection(t *testing.T) {
	g := newGateway(t, "alice", "bob")
	ctx := context.Background()

	bob := g.dial(t, "bob")
	join(t, bob, "General", "bob")
	expect(t, bob, EventUserStatus, nil)

	first := g.dial(t, "alice")
	join(t, first, "General", "alice")
	expect(t, bob, EventUserStatus, nil)
	second := g.dial(t, "alice")
	join(t, second, "General", "alice")
	expect(t, bob, EventUserStatus, nil)

	online, err := g.manager.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, online)

	require.NoError(t, first.Close())
	env := next(t, bob)
	require.Equal(t, EventUserLeft, env.Event)

	user, err := g.users.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnline, user.Status)

	require.NoError(t, second.Close())
	env = next(t, bob)
	require.Equal(t, EventUserLeft, env.Event)

	var status UserStatusPayload
	env = next(t, bob)
	require.Equal(t, EventUserStatus, env.Event)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, UserStatusPayload{Username: "alice", Status: model.StatusOffline}, status)

	user, err = g.users.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOffline, user.Status)
}

func TestCallSignalling(t *testing.T) {
	g := newGateway(t, "alice", "bob")

	alice := g.dial(t, "alice")
	bob := g.dial(t, "bob")
	require.Eventually(t, func() bool { return g.manager.ConnectionCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	send(t, alice, EventInitiateCall, InitiateCallPayload{CallerUsername: "alice", ReceiverUsername: "bob", CallType: model.CallVideo})

	var incoming CallPayload
	expect(t, bob, EventIncomingCall, &incoming)
	assert.Equal(t, "alice", incoming.CallerUsername)
	assert.Equal(t, model.CallVideo, incoming.CallType)
	require.NotZero(t, incoming.CallID)

	var initiated CallPayload
	expect(t, alice, EventCallInitiated, &initiated)
	assert.Equal(t, incoming.CallID, initiated.CallID)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"end_call","data":{"callId":`+jsonNumber(incoming.CallID)+`,"duration":"01:05"}}`)))

	require.Eventually(t, func() bool {
		calls, err := g.calls.History(context.Background(), "bob")
		return err == nil && len(calls) == 1 && calls[0].Duration == "01:05"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRejectsImpersonationAndUnknownEvents(t *testing.T) {
	g := newGateway(t, "alice", "bob")
	alice := g.dial(t, "alice")

	send(t, alice, EventSendMessage, SendMessagePayload{Room: "General", Author: "bob", Message: "not me"})
	var failure ErrorPayload
	expect(t, alice, EventError, &failure)
	assert.Equal(t, EventSendMessage, failure.Event)

	send(t, alice, "dance", map[string]string{})
	expect(t, alice, EventError, &failure)
	assert.Contains(t, failure.Message, "unknown event")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	expect(t, alice, EventError, &failure)
	assert.Equal(t, "malformed frame", failure.Message)

	msgs, err := g.messages.History(context.Background(), "General", 50)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestFlexibleValue(t *testing.T) {
	var p EndCallPayload
	require.NoError(t, json.Unmarshal([]byte(`{"callId":3,"duration":"12:34"}`), &p))
	assert.Equal(t, FlexibleValue("12:34"), p.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"callId":3,"duration":95}`), &p))
	assert.Equal(t, FlexibleValue("95"), p.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"callId":3,"duration":true}`), &p))
}

func TestOfferedProtocol(t *testing.T) {
	assert.Equal(t, "access_token.abc", offeredProtocol("chat, access_token.abc"))
	assert.Equal(t, "chat", offeredProtocol("chat"))
	assert.Equal(t, "", offeredProtocol(""))
}

func jsonNumber(n uint) string {
	b, _ := json.Marshal(n)
	return string(b)
}

package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	connKeyPrefix = "cs:presence:conn:" // connection id -> entry JSON, with TTL
	userKeyPrefix = "cs:presence:user:" // username -> set of connection ids
	onlineKey     = "cs:presence:online"
)

// RedisTracker shares presence between processes. Every entry expires after
// ttl unless refreshed, so connections of a crashed process age out.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	return &RedisTracker{client: client, ttl: ttl}
}

// WithPrefix namespaces every key, used to isolate tests sharing a server.
func (t *RedisTracker) WithPrefix(prefix string) *RedisTracker {
	t.prefix = prefix
	return t
}

func (t *RedisTracker) connKey(id string) string   { return t.prefix + connKeyPrefix + id }
func (t *RedisTracker) userKey(name string) string { return t.prefix + userKeyPrefix + name }
func (t *RedisTracker) onlineKey() string          { return t.prefix + onlineKey }

func (t *RedisTracker) Join(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal presence: %w", err)
	}

	if old, ok, err := t.Lookup(ctx, e.ConnID); err != nil {
		return err
	} else if ok && old.Username != e.Username {
		t.client.SRem(ctx, t.userKey(old.Username), e.ConnID)
	}

	_, err = t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, t.connKey(e.ConnID), data, t.ttl)
		pipe.SAdd(ctx, t.userKey(e.Username), e.ConnID)
		pipe.Expire(ctx, t.userKey(e.Username), t.ttl)
		pipe.SAdd(ctx, t.onlineKey(), e.Username)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store presence: %w", err)
	}
	return nil
}

func (t *RedisTracker) Lookup(ctx context.Context, connID string) (Entry, bool, error) {
	data, err := t.client.Get(ctx, t.connKey(connID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("load presence: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode presence: %w", err)
	}
	return e, true, nil
}

func (t *RedisTracker) Leave(ctx context.Context, connID string) (Entry, bool, int, error) {
	e, ok, err := t.Lookup(ctx, connID)
	if err != nil || !ok {
		return Entry{}, false, 0, err
	}

	_, err = t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, t.connKey(connID))
		pipe.SRem(ctx, t.userKey(e.Username), connID)
		return nil
	})
	if err != nil {
		return Entry{}, false, 0, fmt.Errorf("remove presence: %w", err)
	}

	remaining, err := t.liveConnections(ctx, e.Username)
	if err != nil {
		return e, true, 0, err
	}
	if remaining == 0 {
		t.client.SRem(ctx, t.onlineKey(), e.Username)
	}
	return e, true, remaining, nil
}

func (t *RedisTracker) Refresh(ctx context.Context, connID string) error {
	e, ok, err := t.Lookup(ctx, connID)
	if err != nil || !ok {
		return err
	}
	_, err = t.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Expire(ctx, t.connKey(connID), t.ttl)
		pipe.Expire(ctx, t.userKey(e.Username), t.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("refresh presence: %w", err)
	}
	return nil
}

// OnlineUsers drops users whose connections have all expired.
func (t *RedisTracker) OnlineUsers(ctx context.Context) ([]string, error) {
	users, err := t.client.SMembers(ctx, t.onlineKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list online users: %w", err)
	}
	out := make([]string, 0, len(users))
	for _, u := range users {
		n, err := t.liveConnections(ctx, u)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			t.client.SRem(ctx, t.onlineKey(), u)
			continue
		}
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

// liveConnections counts the user's connections whose entry has not expired,
// pruning the dead ones from the user's set.
func (t *RedisTracker) liveConnections(ctx context.Context, username string) (int, error) {
	ids, err := t.client.SMembers(ctx, t.userKey(username)).Result()
	if err != nil {
		return 0, fmt.Errorf("list connections: %w", err)
	}
	live := 0
	for _, id := range ids {
		n, err := t.client.Exists(ctx, t.connKey(id)).Result()
		if err != nil {
			return 0, fmt.Errorf("check connection: %w", err)
		}
		if n == 0 {
			t.client.SRem(ctx, t.userKey(username), id)
			continue
		}
		live++
	}
	return live, nil
}

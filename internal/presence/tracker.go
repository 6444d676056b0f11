// Package presence tracks which user is on which live connection and in which room.
package presence

import "context"

// Entry binds one live connection to a user and the room it has joined.
type Entry struct {
	ConnID   string `json:"connId"`
	Username string `json:"username"`
	Room     string `json:"room"`
}

// Tracker stores presence entries. Implementations are safe for concurrent use.
type Tracker interface {
	// Join records or replaces the entry for e.ConnID.
	Join(ctx context.Context, e Entry) error
	// Lookup returns the entry of a connection.
	Lookup(ctx context.Context, connID string) (Entry, bool, error)
	// Leave removes the entry of a connection and returns it. remaining counts
	// the live connections the same user still has.
	Leave(ctx context.Context, connID string) (e Entry, ok bool, remaining int, err error)
	// Refresh keeps the entry of a live connection from expiring.
	Refresh(ctx context.Context, connID string) error
	// OnlineUsers lists usernames with at least one live connection, sorted.
	OnlineUsers(ctx context.Context) ([]string, error)
}

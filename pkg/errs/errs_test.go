package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid", Invalid("username is required"), http.StatusBadRequest},
		{"conflict", Conflict("channel exists"), http.StatusBadRequest},
		{"wrapped conflict", fmt.Errorf("create member: %w", ErrConflict), http.StatusBadRequest},
		{"not found", NotFound("user not found"), http.StatusNotFound},
		{"unauthorized", Unauthorized("invalid token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("activity 3 belongs to another user"), http.StatusForbidden},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "user not found", Message(NotFound("user not found")))
	assert.Equal(t, "user not found", Message(fmt.Errorf("lookup: %w", NotFound("user not found"))))
	assert.Equal(t, "server error", Message(errors.New("sql: connection refused")))
	assert.Equal(t, "already exists", Message(fmt.Errorf("insert: %w", ErrConflict)))
	assert.True(t, errors.Is(Conflict("x"), ErrConflict))
}

package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectsphere/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expire time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "connectsphere", ExpireTime: expire})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newTestService(time.Hour)

	token, err := s.GenerateToken(42, "alice")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, uint(42), claims.UserID())

	_, err = s.GenerateToken(1, "")
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	s := newTestService(time.Hour)
	token, err := s.GenerateToken(1, "alice")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "other", Issuer: "connectsphere", ExpireTime: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	foreign := NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "someone-else", ExpireTime: time.Hour})
	_, err = foreign.ValidateToken(token)
	assert.Error(t, err, "wrong issuer")

	expired, err := newTestService(-time.Minute).GenerateToken(1, "alice")
	require.NoError(t, err)
	_, err = s.ValidateToken(expired)
	assert.Error(t, err, "expired")

	_, err = s.ValidateToken("")
	assert.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=q", nil)
	assert.Equal(t, "q", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer h")
	assert.Equal(t, "h", TokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Sec-WebSocket-Protocol", "chat, access_token.p")
	assert.Equal(t, "p", TokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.Equal(t, "", TokenFromRequest(r))
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestService(time.Hour)

	router := gin.New()
	router.GET("/me", s.AuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "%s:%d", GetUsername(c), GetUserID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := s.GenerateToken(7, "bob")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob:7", w.Body.String())
}

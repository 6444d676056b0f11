package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"connectsphere/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// JWTService issues and checks HS256 access tokens.
// Subject carries the user ID; the username travels in Username.
type JWTService struct {
	secretKey   []byte
	issuer      string
	expireAfter time.Duration
}

// Claims token payload
type Claims struct {
	Username string `json:"username"`
	jwtv5.RegisteredClaims
}

// UserID parses the subject back into a user ID.
func (c *Claims) UserID() uint {
	id, _ := strconv.ParseUint(c.Subject, 10, 64)
	return uint(id)
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		expireAfter: cfg.ExpireTime,
	}
}

// GenerateToken signs a token for the given account.
func (s *JWTService) GenerateToken(userID uint, username string) (string, error) {
	if username == "" {
		return "", errors.New("username is required")
	}

	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expireAfter)),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, issuer and expiry and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}

	claims := &Claims{}
	parsed, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			if token.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid || claims.Username == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

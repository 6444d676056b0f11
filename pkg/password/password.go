package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmpty is returned when hashing an empty password.
var ErrEmpty = errors.New("password is empty")

// Hasher hashes with a fixed bcrypt cost; tests use bcrypt.MinCost.
type Hasher struct {
	cost int
}

// NewHasher cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of plain
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

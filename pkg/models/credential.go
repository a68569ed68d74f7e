package models

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the default cost parameter for bcrypt hashing.
const DefaultBcryptCost = 10

// Password length constraints. bcrypt silently truncates input after 72
// bytes, so longer passwords are rejected instead.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, ErrInvariantViolation)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d characters: %w", MaxPasswordLength, ErrInvariantViolation)
)

// dummyHashes caches one hash per cost. A missing login name is compared
// against the hash for the cost real accounts use, so an unknown name costs
// the same bcrypt work as a wrong password.
var dummyHashes sync.Map // int -> []byte

func dummyHash(cost int) []byte {
	if h, ok := dummyHashes.Load(cost); ok {
		return h.([]byte)
	}
	h, err := bcrypt.GenerateFromPassword([]byte("rowguard-timing-equalizer"), cost)
	if err != nil {
		panic(err)
	}
	actual, _ := dummyHashes.LoadOrStore(cost, h)
	return actual.([]byte)
}

// HashPassword validates and bcrypt-hashes password.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, DefaultBcryptCost)
}

// HashPasswordWithCost is HashPassword with an explicit bcrypt cost (4..31).
// Tests use bcrypt.MinCost to stay fast.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. The comparison is
// constant-time. An empty hash is checked against a dummy hash of the
// default cost and fails.
func VerifyPassword(password, hash string) bool {
	return VerifyPasswordWithCost(password, hash, DefaultBcryptCost)
}

// VerifyPasswordWithCost is VerifyPassword with the cost used for the dummy
// comparison. Pass the cost stored hashes are created with.
func VerifyPasswordWithCost(password, hash string, cost int) bool {
	if hash == "" {
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			cost = DefaultBcryptCost
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(cost), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword checks the length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// NeedsRehash reports whether hash was produced with a weaker cost than the
// current default.
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < DefaultBcryptCost
}

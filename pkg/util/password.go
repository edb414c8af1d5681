package util

import (
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used unless SetBcryptCost overrides it.
const DefaultBcryptCost = 12

var bcryptCost atomic.Int64

func init() {
	bcryptCost.Store(DefaultBcryptCost)
}

// SetBcryptCost changes the work factor for future hashes. Out of range values
// fall back to the default. Existing hashes keep verifying since the cost is
// encoded in them.
func SetBcryptCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	bcryptCost.Store(int64(cost))
}

// BcryptCost returns the work factor currently in use.
func BcryptCost() int {
	return int(bcryptCost.Load())
}

// HashPassword hashes a plain text password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost())
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword checks if a plain text password matches a hashed password
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

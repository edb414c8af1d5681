package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SessionTokenBytes is the entropy of an opaque session token.
const SessionTokenBytes = 32

// RandomString returns n random bytes encoded as unpadded base64url.
func RandomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateSessionToken returns an opaque bearer token. It carries no claims;
// it only means something once looked up in the token store.
func GenerateSessionToken() (string, error) {
	return RandomString(SessionTokenBytes)
}

// GenerateRandomPassword returns a throwaway password for imported accounts.
// Its owner is expected to replace it through the reset flow.
func GenerateRandomPassword() (string, error) {
	return RandomString(24)
}

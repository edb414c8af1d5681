package util

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const resetTokenIssuer = "popaccueil-reset"

var (
	ErrInvalidResetToken = errors.New("invalid reset token")
	ErrResetTokenExpired = fmt.Errorf("%w: expired", ErrInvalidResetToken)
)

// ResetClaims is the payload of a password reset token.
type ResetClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// ResetTokenCodec signs and verifies password reset tokens.
// A token proves "user X asked for a reset before exp"; whether it is still the
// latest one issued is checked against the stored value by the caller.
type ResetTokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResetTokenCodec builds a codec. now may be nil to use the wall clock.
func NewResetTokenCodec(secret string, ttl time.Duration, now func() time.Time) *ResetTokenCodec {
	if now == nil {
		now = time.Now
	}
	return &ResetTokenCodec{secret: []byte(secret), ttl: ttl, now: now}
}

// TTL returns how long issued tokens stay valid.
func (c *ResetTokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue returns a signed token for userID and the instant it stops verifying.
func (c *ResetTokenCodec) Issue(userID uint) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, errors.New("reset token secret is empty")
	}

	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.ttl)
	claims := ResetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    resetTokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign reset token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded user id.
// Every failure is ErrInvalidResetToken; expiry is ErrResetTokenExpired which wraps it.
func (c *ResetTokenCodec) Verify(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, ErrInvalidResetToken
	}

	claims := &ResetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(resetTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrResetTokenExpired
		}
		return 0, ErrInvalidResetToken
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidResetToken
	}
	return claims.UserID, nil
}

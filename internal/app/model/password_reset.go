package model

import (
	"time"
)

// A user has at most one outstanding reset token. Storing a new one
// supersedes the previous; consuming it clears both columns.

// SetResetToken records token as the only valid reset token for the user.
func (u *User) SetResetToken(token string, expiresAt time.Time) {
	u.ResetPasswordToken = &token
	u.ResetPasswordExpiresAt = &expiresAt
}

// ClearResetToken invalidates any outstanding reset token.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = nil
	u.ResetPasswordExpiresAt = nil
}

// ResetTokenMatches reports whether token is the one currently stored.
func (u *User) ResetTokenMatches(token string) bool {
	return token != "" && u.ResetPasswordToken != nil && *u.ResetPasswordToken == token
}

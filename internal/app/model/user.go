package model

import (
	"errors"
	"strings"
	"time"

	"github.com/spf-popaccueil/popaccueil-backend/pkg/util"
)

// Capability is a permission flag carried by a user.
type Capability string

const (
	CapabilityVolunteer Capability = "volunteer"
	CapabilityAdmin     Capability = "admin"
)

type User struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"not null" json:"-"`
	FirstName        string    `gorm:"size:100;not null" json:"firstName"`
	LastName         string    `gorm:"size:100;not null" json:"lastName"`
	PopAccueilNumber string    `gorm:"size:50" json:"popAccueilNumber"`
	IsVolunteer      bool      `gorm:"not null;default:false" json:"isVolunteer"`
	IsAdmin          bool      `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Outstanding password reset, see password_reset.go.
	ResetPasswordToken     *string    `gorm:"type:text" json:"-"`
	ResetPasswordExpiresAt *time.Time `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword replaces the stored hash. It is the only way PasswordHash changes.
func (u *User) SetPassword(plaintext string) error {
	if plaintext == "" {
		return errors.New("password must not be empty")
	}
	hash, err := util.HashPassword(plaintext)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword reports whether plaintext matches the stored hash.
func (u *User) CheckPassword(plaintext string) bool {
	return util.VerifyPassword(u.PasswordHash, plaintext)
}

// HasCapability reports whether the user holds capability c.
func (u *User) HasCapability(c Capability) bool {
	switch c {
	case CapabilityVolunteer:
		return u.IsVolunteer
	case CapabilityAdmin:
		return u.IsAdmin
	default:
		return false
	}
}

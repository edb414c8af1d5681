package model

import (
	"time"
)

// TokenTypeBearer is the only session token type issued.
const TokenTypeBearer = "bearer"

// SessionToken is one login session. Rows are never expired or revoked.
type SessionToken struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Token     string    `gorm:"size:255;uniqueIndex;not null" json:"token"`
	Type      string    `gorm:"size:20;not null;default:'bearer'" json:"type"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SessionToken) TableName() string {
	return "tokens"
}

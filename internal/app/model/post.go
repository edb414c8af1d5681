package model

import (
	"time"
)

type Post struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	IsForVolunteers bool      `gorm:"not null;default:false" json:"isForVolunteers"`
	UserID          uint      `gorm:"not null;index" json:"userId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

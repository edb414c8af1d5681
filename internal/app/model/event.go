package model

import (
	"time"
)

type Event struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	StartAt   time.Time `gorm:"not null;index" json:"startAt"`
	EndAt     time.Time `gorm:"not null" json:"endAt"`
	MaxPeople *int      `json:"maxPeople"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Comment   string    `gorm:"type:text" json:"comment"`
	IsFree    bool      `gorm:"not null;default:false" json:"isFree"`
	IsClosed  bool      `gorm:"not null;default:false" json:"isClosed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Event) TableName() string {
	return "events"
}

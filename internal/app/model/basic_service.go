package model

import (
	"time"
)

// BasicService is a recurring slot (meal, shower, laundry...) members subscribe to.
type BasicService struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	StartAt   time.Time `gorm:"not null;index" json:"startAt"`
	EndAt     time.Time `gorm:"not null" json:"endAt"`
	MaxPeople *int      `json:"maxPeople"`
	IsClosed  bool      `gorm:"not null;default:false" json:"isClosed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Subscribers []BasicServiceSubscriber `gorm:"foreignKey:BasicServiceID;constraint:OnDelete:CASCADE" json:"subscribers,omitempty"`
}

func (BasicService) TableName() string {
	return "basic_services"
}

// IsFull reports whether count subscribers exhaust the capacity. No capacity means unlimited.
func (b *BasicService) IsFull(count int64) bool {
	return b.MaxPeople != nil && count >= int64(*b.MaxPeople)
}

type BasicServiceSubscriber struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_basic_service_subscriber" json:"userId"`
	BasicServiceID uint      `gorm:"not null;uniqueIndex:idx_basic_service_subscriber" json:"basicServiceId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (BasicServiceSubscriber) TableName() string {
	return "basic_service_subscribers"
}

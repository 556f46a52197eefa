package models

import (
	"time"

	"gorm.io/gorm"
)

// ItineraryStatus defines the lifecycle state of an itinerary.
type ItineraryStatus string

const (
	// ItineraryStatusPlanning indicates the itinerary is still being drafted.
	ItineraryStatusPlanning ItineraryStatus = "planning"
	// ItineraryStatusUpcoming indicates the trip is confirmed and pending.
	ItineraryStatusUpcoming ItineraryStatus = "upcoming"
	// ItineraryStatusCompleted indicates the trip has happened.
	ItineraryStatusCompleted ItineraryStatus = "completed"
)

// Itinerary represents a group trip plan shared inside a community.
type Itinerary struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	Title         string              `gorm:"size:200;not null" json:"title"`
	Destination   string              `gorm:"size:200;not null" json:"destination"`
	StartDate     time.Time           `gorm:"not null" json:"start_date"`
	EndDate       time.Time           `gorm:"not null" json:"end_date"`
	TravelerCount int                 `gorm:"not null;default:1" json:"traveler_count"`
	Status        ItineraryStatus     `gorm:"type:varchar(20);not null;default:'planning'" json:"status"`
	UserID        uint                `gorm:"not null;index" json:"user_id"`
	User          User                `gorm:"foreignKey:UserID" json:"user"`
	CommunityID   uint                `gorm:"not null;index" json:"community_id"`
	Community     *Community          `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	Activities    []ItineraryActivity `gorm:"foreignKey:ItineraryID" json:"activities,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`
}

// ItineraryActivity is one planned activity within an itinerary.
type ItineraryActivity struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ItineraryID uint   `gorm:"not null;index" json:"itinerary_id"`
	Day         int    `gorm:"not null;default:1" json:"day"`
	Position    int    `gorm:"not null" json:"position"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Notes       string `gorm:"type:text" json:"notes"`
}

// ValidStatusTransition reports whether an itinerary may move from one
// status to another. Same-status updates are always allowed.
func ValidStatusTransition(from, to ItineraryStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case ItineraryStatusPlanning:
		return to == ItineraryStatusUpcoming || to == ItineraryStatusCompleted
	case ItineraryStatusUpcoming:
		return to == ItineraryStatusCompleted
	default:
		return false
	}
}

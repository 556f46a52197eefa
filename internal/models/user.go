// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a traveler account in the Wayfarer application.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"unique;not null" json:"username"`
	Email       string         `gorm:"unique;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	DisplayName string         `gorm:"size:80" json:"display_name"`
	Bio         string         `json:"bio"`
	Avatar      string         `json:"avatar"`
	Karma       int            `gorm:"not null;default:0" json:"karma"`
	IsAdmin     bool           `gorm:"not null;default:false" json:"is_admin"`
	IsBanned    bool           `gorm:"not null;default:false" json:"is_banned"`
	ReportCount int            `gorm:"not null;default:0" json:"report_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Posts       []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

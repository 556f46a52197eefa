package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post or a review. Exactly one of
// PostID and ReviewID is set. ParentID links a reply to its parent comment.
type Comment struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Content     string   `gorm:"not null" json:"content"`
	UserID      uint     `gorm:"not null;index" json:"user_id"`
	User        User     `gorm:"foreignKey:UserID" json:"user"`
	PostID      *uint    `gorm:"index" json:"post_id,omitempty"`
	Post        *Post    `gorm:"foreignKey:PostID" json:"post,omitempty"`
	ReviewID    *uint    `gorm:"index" json:"review_id,omitempty"`
	Review      *Review  `gorm:"foreignKey:ReviewID" json:"review,omitempty"`
	ParentID    *uint    `gorm:"index" json:"parent_id,omitempty"`
	Parent      *Comment `gorm:"foreignKey:ParentID" json:"-"`
	ReportCount int      `gorm:"not null;default:0" json:"report_count"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this comment (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

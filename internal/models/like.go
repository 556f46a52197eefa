package models

import "time"

// LikeTarget identifies the kind of entity a like points at.
type LikeTarget string

const (
	// LikeTargetPost marks a like on a post.
	LikeTargetPost LikeTarget = "post"
	// LikeTargetReview marks a like on a review.
	LikeTargetReview LikeTarget = "review"
	// LikeTargetComment marks a like on a comment.
	LikeTargetComment LikeTarget = "comment"
)

// Like records that a user liked a post, review, or comment.
// The composite unique index backs the ON CONFLICT DO NOTHING insert,
// so concurrent double-likes cannot double-count.
type Like struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_like_identity" json:"user_id"`
	TargetType LikeTarget `gorm:"type:varchar(10);not null;uniqueIndex:idx_like_identity" json:"target_type"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_like_identity" json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

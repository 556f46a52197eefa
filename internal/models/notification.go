package models

import "time"

// NotificationType enumerates the event kinds that produce notifications.
type NotificationType string

const (
	// NotificationTypePostLike is sent to a post author when their post is liked.
	NotificationTypePostLike NotificationType = "post_like"
	// NotificationTypeCommentLike is sent to a comment author when their comment is liked.
	NotificationTypeCommentLike NotificationType = "comment_like"
	// NotificationTypeCommentReply is sent to a comment author when someone replies.
	NotificationTypeCommentReply NotificationType = "comment_reply"
	// NotificationTypePostComment is sent to a post author on a new top-level comment.
	NotificationTypePostComment NotificationType = "post_comment"
	// NotificationTypeReviewLike is sent to a review author when their review is liked.
	NotificationTypeReviewLike NotificationType = "review_like"
	// NotificationTypeReviewComment is sent to a review author when someone comments.
	NotificationTypeReviewComment NotificationType = "review_comment"
	// NotificationTypeReviewCommentReply is sent to a review-comment author on a reply.
	NotificationTypeReviewCommentReply NotificationType = "review_comment_reply"
	// NotificationTypeCommunityPost is sent to community members when a post is published.
	NotificationTypeCommunityPost NotificationType = "community_post"
	// NotificationTypeCommunityItinerary is sent to community members when an itinerary is shared.
	NotificationTypeCommunityItinerary NotificationType = "community_itinerary"
	// NotificationTypeSystem is a platform-originated notification (welcome, announcements).
	NotificationTypeSystem NotificationType = "system"
)

// Notification is a per-recipient record of a qualifying domain event.
// Exactly one reference cluster is populated for a given type; the rest
// stay nil.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notifications_recipient" json:"recipient_id"`
	SenderID    *uint            `gorm:"index" json:"sender_id,omitempty"`
	Sender      *User            `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Message     string           `gorm:"type:text" json:"message"`
	PostID      *uint            `gorm:"index" json:"post_id,omitempty"`
	Post        *Post            `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CommentID   *uint            `gorm:"index" json:"comment_id,omitempty"`
	Comment     *Comment         `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
	ReviewID    *uint            `gorm:"index" json:"review_id,omitempty"`
	Review      *Review          `gorm:"foreignKey:ReviewID" json:"review,omitempty"`
	CommunityID *uint            `gorm:"index" json:"community_id,omitempty"`
	Community   *Community       `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	ItineraryID *uint            `gorm:"index" json:"itinerary_id,omitempty"`
	Itinerary   *Itinerary       `gorm:"foreignKey:ItineraryID" json:"itinerary,omitempty"`
	IsSeen      bool             `gorm:"not null;default:false;index:idx_notifications_recipient" json:"is_seen"`
	IsRead      bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}

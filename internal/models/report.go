package models

import "time"

// ReportTarget identifies the kind of entity a report points at.
type ReportTarget string

const (
	// ReportTargetUser marks a report against a user.
	ReportTargetUser ReportTarget = "user"
	// ReportTargetCommunity marks a report against a community.
	ReportTargetCommunity ReportTarget = "community"
	// ReportTargetPost marks a report against a post.
	ReportTargetPost ReportTarget = "post"
	// ReportTargetReview marks a report against a review.
	ReportTargetReview ReportTarget = "review"
	// ReportTargetComment marks a report against a comment.
	ReportTargetComment ReportTarget = "comment"
)

// ReportStatus defines the moderation state of a report.
type ReportStatus string

const (
	// ReportStatusPending indicates a report awaiting review.
	ReportStatusPending ReportStatus = "pending"
	// ReportStatusReviewed indicates an admin has looked at the report.
	ReportStatusReviewed ReportStatus = "reviewed"
	// ReportStatusResolved indicates the report led to action.
	ReportStatusResolved ReportStatus = "resolved"
	// ReportStatusDismissed indicates the report was closed without action.
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Report is a user-submitted moderation report against a platform entity.
type Report struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	ReporterUserID   uint         `gorm:"not null;index" json:"reporter_user_id"`
	ReporterUser     *User        `gorm:"foreignKey:ReporterUserID" json:"reporter_user,omitempty"`
	TargetType       ReportTarget `gorm:"type:varchar(20);not null;index:idx_reports_target" json:"target_type"`
	TargetID         uint         `gorm:"not null;index:idx_reports_target" json:"target_id"`
	Reason           string       `gorm:"size:200;not null" json:"reason"`
	Details          string       `gorm:"type:text" json:"details"`
	Status           ReportStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminNotes       string       `gorm:"type:text" json:"admin_notes"`
	ReviewedByUserID *uint        `json:"reviewed_by_user_id,omitempty"`
	ReviewedByUser   *User        `gorm:"foreignKey:ReviewedByUserID" json:"reviewed_by_user,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// ValidReportTransition reports whether a report status change is allowed:
// pending -> reviewed -> {resolved, dismissed}, with resolved and
// dismissed also reachable directly from pending.
func ValidReportTransition(from, to ReportStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case ReportStatusPending:
		return to == ReportStatusReviewed || to == ReportStatusResolved || to == ReportStatusDismissed
	case ReportStatusReviewed:
		return to == ReportStatusResolved || to == ReportStatusDismissed
	default:
		return false
	}
}

package service

import (
	"context"
	"errors"

	"wayfarer/internal/models"
	"wayfarer/internal/observability"
	"wayfarer/internal/repository"

	"gorm.io/gorm"
)

const maxReportReasonLen = 200

// ModerationService implements user reporting and the admin moderation
// surface.
type ModerationService struct {
	db            *gorm.DB
	reportRepo    repository.ReportRepository
	userRepo      repository.UserRepository
	deletion      *DeletionService
	notifications *NotificationService
}

type SubmitReportInput struct {
	ReporterID uint
	TargetType models.ReportTarget
	TargetID   uint
	Reason     string
	Details    string
}

type ReviewReportInput struct {
	AdminID    uint
	ReportID   uint
	Status     models.ReportStatus
	AdminNotes string
}

func NewModerationService(
	db *gorm.DB,
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	deletion *DeletionService,
	notifications *NotificationService,
) *ModerationService {
	return &ModerationService{
		db:            db,
		reportRepo:    reportRepo,
		userRepo:      userRepo,
		deletion:      deletion,
		notifications: notifications,
	}
}

// SubmitReport files a report against a platform entity and bumps the
// target's report counter. One open report per reporter per target.
func (s *ModerationService) SubmitReport(ctx context.Context, in SubmitReportInput) (*models.Report, error) {
	if in.Reason == "" {
		return nil, models.NewValidationError("Reason is required")
	}
	if len(in.Reason) > maxReportReasonLen {
		return nil, models.NewValidationError("Reason too long (max 200 characters)")
	}

	ownerID, err := s.targetOwner(ctx, in.TargetType, in.TargetID)
	if err != nil {
		return nil, err
	}
	if ownerID == in.ReporterID {
		return nil, models.NewValidationError("You cannot report your own content")
	}

	open, err := s.reportRepo.HasOpenReport(ctx, in.ReporterID, in.TargetType, in.TargetID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, models.NewConflictError("You already have an open report against this target")
	}

	report := &models.Report{
		ReporterUserID: in.ReporterID,
		TargetType:     in.TargetType,
		TargetID:       in.TargetID,
		Reason:         in.Reason,
		Details:        in.Details,
		Status:         models.ReportStatusPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	if err := s.bumpReportCount(ctx, in.TargetType, in.TargetID, 1); err != nil {
		return nil, err
	}

	observability.ReportsSubmitted.WithLabelValues(string(in.TargetType)).Inc()
	return report, nil
}

// targetOwner verifies the target exists and returns the user who owns
// it. Communities report their owner as the creating user.
func (s *ModerationService) targetOwner(ctx context.Context, targetType models.ReportTarget, targetID uint) (uint, error) {
	notFound := func(resource string) error {
		return models.NewNotFoundError(resource, targetID)
	}

	switch targetType {
	case models.ReportTargetUser:
		var user models.User
		if err := s.db.WithContext(ctx).First(&user, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, notFound("User")
			}
			return 0, err
		}
		return user.ID, nil
	case models.ReportTargetCommunity:
		var community models.Community
		if err := s.db.WithContext(ctx).First(&community, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, notFound("Community")
			}
			return 0, err
		}
		if community.CreatedByUserID != nil {
			return *community.CreatedByUserID, nil
		}
		return 0, nil
	case models.ReportTargetPost:
		var post models.Post
		if err := s.db.WithContext(ctx).First(&post, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, notFound("Post")
			}
			return 0, err
		}
		return post.UserID, nil
	case models.ReportTargetReview:
		var review models.Review
		if err := s.db.WithContext(ctx).First(&review, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, notFound("Review")
			}
			return 0, err
		}
		return review.UserID, nil
	case models.ReportTargetComment:
		var comment models.Comment
		if err := s.db.WithContext(ctx).First(&comment, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, notFound("Comment")
			}
			return 0, err
		}
		return comment.UserID, nil
	default:
		return 0, models.NewValidationError("Invalid report target type")
	}
}

// bumpReportCount adjusts the denormalized report counter on the target
// row atomically.
func (s *ModerationService) bumpReportCount(ctx context.Context, targetType models.ReportTarget, targetID uint, delta int) error {
	var model interface{}
	switch targetType {
	case models.ReportTargetUser:
		model = &models.User{}
	case models.ReportTargetCommunity:
		model = &models.Community{}
	case models.ReportTargetPost:
		model = &models.Post{}
	case models.ReportTargetReview:
		model = &models.Review{}
	case models.ReportTargetComment:
		model = &models.Comment{}
	default:
		return models.NewValidationError("Invalid report target type")
	}
	return s.db.WithContext(ctx).
		Model(model).
		Where("id = ?", targetID).
		Update("report_count", gorm.Expr("GREATEST(report_count + ?, 0)", delta)).Error
}

// ListReports returns reports for the admin queue, optionally filtered by
// status.
func (s *ModerationService) ListReports(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.Report, error) {
	if status != "" {
		switch status {
		case models.ReportStatusPending, models.ReportStatusReviewed, models.ReportStatusResolved, models.ReportStatusDismissed:
		default:
			return nil, models.NewValidationError("Invalid report status")
		}
	}
	return s.reportRepo.List(ctx, status, limit, offset)
}

func (s *ModerationService) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	return s.reportRepo.GetByID(ctx, id)
}

func (s *ModerationService) ListReportsForTarget(ctx context.Context, targetType models.ReportTarget, targetID uint) ([]*models.Report, error) {
	return s.reportRepo.ListForTarget(ctx, targetType, targetID)
}

// ReviewReport advances a report through the moderation workflow.
// Dismissing a report decrements the target's report counter.
func (s *ModerationService) ReviewReport(ctx context.Context, in ReviewReportInput) (*models.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, in.ReportID)
	if err != nil {
		return nil, err
	}

	if !models.ValidReportTransition(report.Status, in.Status) {
		return nil, models.NewValidationError("Invalid report status transition")
	}

	wasOpen := report.Status == models.ReportStatusPending || report.Status == models.ReportStatusReviewed
	report.Status = in.Status
	report.ReviewedByUserID = &in.AdminID
	if in.AdminNotes != "" {
		report.AdminNotes = in.AdminNotes
	}
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	if in.Status == models.ReportStatusDismissed && wasOpen {
		if err := s.bumpReportCount(ctx, report.TargetType, report.TargetID, -1); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// BanUser bans the user and notifies them. Admins cannot be banned.
func (s *ModerationService) BanUser(ctx context.Context, adminID, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return models.NewForbiddenError("Admins cannot be banned")
	}
	if err := s.userRepo.SetBanned(ctx, userID, true); err != nil {
		return err
	}
	if s.notifications != nil {
		_ = s.notifications.NotifySystem(ctx, userID, "Your account has been suspended for violating community guidelines.")
	}
	return nil
}

// UnbanUser lifts a ban.
func (s *ModerationService) UnbanUser(ctx context.Context, adminID, userID uint) error {
	return s.userRepo.SetBanned(ctx, userID, false)
}

// RemoveTarget deletes the entity a report points at, cascading its
// dependents, and resolves every open report against it.
func (s *ModerationService) RemoveTarget(ctx context.Context, adminID uint, targetType models.ReportTarget, targetID uint) error {
	if _, err := s.targetOwner(ctx, targetType, targetID); err != nil {
		return err
	}

	var err error
	switch targetType {
	case models.ReportTargetUser:
		err = s.deletion.DeleteUser(ctx, targetID)
	case models.ReportTargetCommunity:
		err = s.deletion.DeleteCommunity(ctx, targetID)
	case models.ReportTargetPost:
		err = s.deletion.DeletePost(ctx, targetID)
	case models.ReportTargetReview:
		err = s.deletion.DeleteReview(ctx, targetID)
	case models.ReportTargetComment:
		err = s.deletion.DeleteComment(ctx, targetID)
	default:
		return models.NewValidationError("Invalid report target type")
	}
	if err != nil {
		return err
	}

	return s.reportRepo.ResolveForTarget(ctx, targetType, targetID, adminID)
}

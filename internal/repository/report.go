package repository

import (
	"context"
	"errors"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines persistence operations for moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	HasOpenReport(ctx context.Context, reporterID uint, targetType models.ReportTarget, targetID uint) (bool, error)
	List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.Report, error)
	ListForTarget(ctx context.Context, targetType models.ReportTarget, targetID uint) ([]*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
	ResolveForTarget(ctx context.Context, targetType models.ReportTarget, targetID uint, reviewerID uint) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Preload("ReporterUser").
		Preload("ReviewedByUser").
		First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &report, nil
}

// HasOpenReport reports whether the user already has a pending report
// against the same target. Duplicate open reports are rejected upstream.
func (r *reportRepository) HasOpenReport(ctx context.Context, reporterID uint, targetType models.ReportTarget, targetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("reporter_user_id = ? AND target_type = ? AND target_id = ? AND status = ?",
			reporterID, targetType, targetID, models.ReportStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *reportRepository) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.Report, error) {
	var reports []*models.Report
	q := r.db.WithContext(ctx).Preload("ReporterUser")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) ListForTarget(ctx context.Context, targetType models.ReportTarget, targetID uint) ([]*models.Report, error) {
	var reports []*models.Report
	err := r.db.WithContext(ctx).
		Preload("ReporterUser").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) Update(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

// ResolveForTarget closes every open report against a target, used when
// an admin deletes the reported entity.
func (r *reportRepository) ResolveForTarget(ctx context.Context, targetType models.ReportTarget, targetID uint, reviewerID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("target_type = ? AND target_id = ? AND status IN ?",
			targetType, targetID, []models.ReportStatus{models.ReportStatusPending, models.ReportStatusReviewed}).
		Updates(map[string]interface{}{
			"status":              models.ReportStatusResolved,
			"reviewed_by_user_id": reviewerID,
		}).Error
}

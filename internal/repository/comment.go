package repository

import (
	"context"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments on posts and reviews.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, currentUserID uint) ([]*models.Comment, error)
	ListByReview(ctx context.Context, reviewID uint, currentUserID uint) ([]*models.Comment, error)
	ListReported(ctx context.Context, limit, offset int) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, commentID uint) (bool, error)
	Like(ctx context.Context, userID, commentID uint) error
	Unlike(ctx context.Context, userID, commentID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, currentUserID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListByReview(ctx context.Context, reviewID uint, currentUserID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("review_id = ?", reviewID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListReported(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), 0).
		Preload("User").
		Where("report_count > 0").
		Order("report_count DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) applyCommentDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "comments.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.target_type = 'comment' AND likes.target_id = comments.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.target_type = 'comment' AND likes.target_id = comments.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (r *commentRepository) IsLiked(ctx context.Context, userID, commentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, models.LikeTargetComment, commentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *commentRepository) Like(ctx context.Context, userID, commentID uint) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, target_type, target_id, created_at)
		 VALUES (?, 'comment', ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, target_type, target_id) DO NOTHING`,
		userID, commentID,
	).Error
}

func (r *commentRepository) Unlike(ctx context.Context, userID, commentID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, models.LikeTargetComment, commentID).
		Delete(&models.Like{}).Error
}

package repository

import (
	"context"

	"wayfarer/internal/cache"
	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Review, error)
	GetByCommunityID(ctx context.Context, communityID uint, limit, offset int, currentUserID uint) ([]*models.Review, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Review, error)
	Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Review, error)
	ListReported(ctx context.Context, limit, offset int) ([]*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, reviewID uint) (bool, error)
	Like(ctx context.Context, userID, reviewID uint) error
	Unlike(ctx context.Context, userID, reviewID uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Create(review).Error
	if err == nil {
		cache.InvalidateReviewsList(ctx)
	}
	return err
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Review, error) {
	var review models.Review

	var err error
	if currentUserID == 0 {
		key := cache.ReviewKey(id)
		err = cache.Aside(ctx, key, &review, cache.ReviewTTL, func() error {
			return r.applyReviewDetails(r.db.WithContext(ctx), 0).
				Preload("User").
				First(&review, id).Error
		})
	} else {
		err = r.applyReviewDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			First(&review, id).Error
	}

	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByCommunityID(ctx context.Context, communityID uint, limit, offset int, currentUserID uint) ([]*models.Review, error) {
	var reviews []*models.Review
	err := r.applyReviewDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("community_id = ?", communityID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Review, error) {
	var reviews []*models.Review
	err := r.applyReviewDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Review, error) {
	var reviews []*models.Review
	like := "%" + query + "%"
	err := r.applyReviewDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("title ILIKE ? OR content ILIKE ? OR place_name ILIKE ?", like, like, like).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) ListReported(ctx context.Context, limit, offset int) ([]*models.Review, error) {
	var reviews []*models.Review
	err := r.applyReviewDetails(r.db.WithContext(ctx), 0).
		Preload("User").
		Where("report_count > 0").
		Order("report_count DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, err
}

// applyReviewDetails adds subqueries to fetch counts and liked status in a single query.
func (r *reviewRepository) applyReviewDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "reviews.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.review_id = reviews.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.target_type = 'review' AND likes.target_id = reviews.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.target_type = 'review' AND likes.target_id = reviews.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Save(review).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.ReviewKey(review.ID))
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Review{}, id).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.ReviewKey(id))
	cache.InvalidateReviewsList(ctx)
	return nil
}

func (r *reviewRepository) IsLiked(ctx context.Context, userID, reviewID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, models.LikeTargetReview, reviewID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reviewRepository) Like(ctx context.Context, userID, reviewID uint) error {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, target_type, target_id, created_at)
		 VALUES (?, 'review', ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, target_type, target_id) DO NOTHING`,
		userID, reviewID,
	)
	if result.Error == nil {
		cache.Invalidate(ctx, cache.ReviewKey(reviewID))
	}
	return result.Error
}

func (r *reviewRepository) Unlike(ctx context.Context, userID, reviewID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, models.LikeTargetReview, reviewID).
		Delete(&models.Like{}).Error
	if err == nil {
		cache.Invalidate(ctx, cache.ReviewKey(reviewID))
	}
	return err
}

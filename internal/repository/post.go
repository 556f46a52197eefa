package repository

import (
	"context"

	"wayfarer/internal/cache"
	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	GetByCommunityID(ctx context.Context, communityID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListReported(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePostsList(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post

	var err error
	if currentUserID == 0 {
		key := cache.PostKey(id)
		err = cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
			return r.applyPostDetails(r.db.WithContext(ctx), 0).
				Preload("User").
				First(&post, id).Error
		})
	} else {
		err = r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			First(&post, id).Error
	}

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) GetByCommunityID(ctx context.Context, communityID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("community_id = ?", communityID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + query + "%"
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("title ILIKE ? OR content ILIKE ?", like, like).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListReported(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), 0).
		Preload("User").
		Where("report_count > 0").
		Order("report_count DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.target_type = 'post' AND likes.target_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.target_type = 'post' AND likes.target_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(post.ID))
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(id))
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, models.LikeTargetPost, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// INSERT ... ON CONFLICT DO NOTHING is atomic and prevents duplicate
	// likes under concurrent double-clicks.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, target_type, target_id, created_at)
		 VALUES (?, 'post', ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, target_type, target_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error == nil {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return result.Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, models.LikeTargetPost, postID).
		Delete(&models.Like{}).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return err
}

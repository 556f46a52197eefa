package service

import (
	"context"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"
	"wayfarer/internal/validation"
)

const (
	maxReviewTitleLen   = 300
	maxReviewContentLen = 50000
	maxPlaceNameLen     = 200
)

// ReviewService implements destination reviews and their likes.
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	userRepo      repository.UserRepository
	communityRepo repository.CommunityRepository
	notifications *NotificationService
	deletion      *DeletionService
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

type CreateReviewInput struct {
	UserID      uint
	CommunityID uint
	Title       string
	Content     string
	PlaceName   string
	Rating      int
}

type UpdateReviewInput struct {
	UserID   uint
	ReviewID uint
	Title    string
	Content  string
	Rating   *int
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	communityRepo repository.CommunityRepository,
	notifications *NotificationService,
	deletion *DeletionService,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		userRepo:      userRepo,
		communityRepo: communityRepo,
		notifications: notifications,
		deletion:      deletion,
		isAdmin:       isAdmin,
	}
}

// CreateReview publishes a review into a community. The author must be a
// member and the rating must be within the 1-5 scale.
func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxReviewTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxReviewContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if in.PlaceName == "" {
		return nil, models.NewValidationError("place_name is required")
	}
	if len(in.PlaceName) > maxPlaceNameLen {
		return nil, models.NewValidationError("place_name too long (max 200 characters)")
	}
	if err := validation.ValidateRating(in.Rating); err != nil {
		return nil, err
	}
	if in.CommunityID == 0 {
		return nil, models.NewValidationError("community_id is required")
	}

	if _, err := s.communityRepo.GetByID(ctx, in.CommunityID); err != nil {
		return nil, err
	}
	membership, err := s.communityRepo.GetMembership(ctx, in.CommunityID, in.UserID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, models.NewForbiddenError("You must join the community before reviewing")
	}

	review := &models.Review{
		Title:       in.Title,
		Content:     in.Content,
		PlaceName:   in.PlaceName,
		Rating:      in.Rating,
		UserID:      in.UserID,
		CommunityID: in.CommunityID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return s.reviewRepo.GetByID(ctx, review.ID, in.UserID)
}

func (s *ReviewService) GetReview(ctx context.Context, id uint, currentUserID uint) (*models.Review, error) {
	return s.reviewRepo.GetByID(ctx, id, currentUserID)
}

func (s *ReviewService) ListReviews(ctx context.Context, communityID *uint, limit, offset int, currentUserID uint) ([]*models.Review, error) {
	if communityID != nil {
		return s.reviewRepo.GetByCommunityID(ctx, *communityID, limit, offset, currentUserID)
	}
	return s.reviewRepo.List(ctx, limit, offset, currentUserID)
}

func (s *ReviewService) SearchReviews(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Review, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.reviewRepo.Search(ctx, query, limit, offset, currentUserID)
}

func (s *ReviewService) UpdateReview(ctx context.Context, in UpdateReviewInput) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, in.ReviewID, in.UserID)
	if err != nil {
		return nil, err
	}

	if review.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own reviews")
	}

	if in.Title != "" {
		review.Title = in.Title
	}
	if in.Content != "" {
		review.Content = in.Content
	}
	if in.Rating != nil {
		if err := validation.ValidateRating(*in.Rating); err != nil {
			return nil, err
		}
		review.Rating = *in.Rating
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview cascades a review away together with its comments, likes
// and referencing notifications. Author or admin only.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID uint) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID, userID)
	if err != nil {
		return err
	}

	if review.UserID != userID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own reviews")
		}
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own reviews")
		}
	}

	return s.deletion.DeleteReview(ctx, reviewID)
}

// ToggleLike flips the current user's like on a review, notifying the
// author on like and retracting on unlike.
func (s *ReviewService) ToggleLike(ctx context.Context, userID, reviewID uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}

	isLiked, err := s.reviewRepo.IsLiked(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	if isLiked {
		if err := s.reviewRepo.Unlike(ctx, userID, reviewID); err != nil {
			return nil, err
		}
		if s.notifications != nil {
			_ = s.notifications.RetractReviewLike(ctx, userID, review)
		}
	} else {
		if err := s.reviewRepo.Like(ctx, userID, reviewID); err != nil {
			return nil, err
		}
		if s.notifications != nil {
			actor, err := s.userRepo.GetByID(ctx, userID)
			if err == nil {
				_ = s.notifications.NotifyReviewLiked(ctx, actor, review)
			}
		}
	}

	return s.reviewRepo.GetByID(ctx, reviewID, userID)
}

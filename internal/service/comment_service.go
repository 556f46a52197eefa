package service

import (
	"context"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"
)

const maxCommentLen = 10000

// CommentService implements comments and replies on posts and reviews.
type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	reviewRepo    repository.ReviewRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	deletion      *DeletionService
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID   uint
	Content  string
	PostID   *uint
	ReviewID *uint
	ParentID *uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	deletion *DeletionService,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		reviewRepo:    reviewRepo,
		userRepo:      userRepo,
		notifications: notifications,
		deletion:      deletion,
		isAdmin:       isAdmin,
	}
}

// CreateComment adds a comment to exactly one of a post or a review.
// Replies carry a parent comment on the same target. Parent authors are
// notified of replies, and the post or review author of new top-level
// comments.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}
	if (in.PostID == nil) == (in.ReviewID == nil) {
		return nil, models.NewValidationError("Exactly one of post_id and review_id is required")
	}

	var post *models.Post
	var review *models.Review
	if in.PostID != nil {
		var err error
		post, err = s.postRepo.GetByID(ctx, *in.PostID, 0)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		review, err = s.reviewRepo.GetByID(ctx, *in.ReviewID, 0)
		if err != nil {
			return nil, err
		}
	}

	var parent *models.Comment
	if in.ParentID != nil {
		var err error
		parent, err = s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, models.NewNotFoundError("Comment", *in.ParentID)
		}
		if !sameTarget(parent, in.PostID, in.ReviewID) {
			return nil, models.NewValidationError("Parent comment belongs to a different thread")
		}
	}

	comment := &models.Comment{
		Content:  in.Content,
		UserID:   in.UserID,
		PostID:   in.PostID,
		ReviewID: in.ReviewID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		actor, err := s.userRepo.GetByID(ctx, in.UserID)
		if err == nil {
			if parent != nil {
				_ = s.notifications.NotifyCommentReply(ctx, actor, parent, comment)
			} else if review != nil {
				_ = s.notifications.NotifyReviewCommented(ctx, actor, review, comment)
			} else if post != nil {
				_ = s.notifications.NotifyPostCommented(ctx, actor, post, comment)
			}
		}
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) GetPostComments(ctx context.Context, postID uint, currentUserID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID, currentUserID)
}

func (s *CommentService) GetReviewComments(ctx context.Context, reviewID uint, currentUserID uint) ([]*models.Comment, error) {
	if _, err := s.reviewRepo.GetByID(ctx, reviewID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, currentUserID)
}

func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment together with its reply tree and the
// likes on all of them. Author or admin only.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own comments")
		}
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own comments")
		}
	}
	return s.deletion.DeleteComment(ctx, commentID)
}

// ToggleLike flips the current user's like on a comment, notifying the
// author on like and retracting on unlike.
func (s *CommentService) ToggleLike(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	isLiked, err := s.commentRepo.IsLiked(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}

	if isLiked {
		if err := s.commentRepo.Unlike(ctx, userID, commentID); err != nil {
			return nil, err
		}
		if s.notifications != nil {
			_ = s.notifications.RetractCommentLike(ctx, userID, comment)
		}
	} else {
		if err := s.commentRepo.Like(ctx, userID, commentID); err != nil {
			return nil, err
		}
		if s.notifications != nil {
			actor, err := s.userRepo.GetByID(ctx, userID)
			if err == nil {
				_ = s.notifications.NotifyCommentLiked(ctx, actor, comment)
			}
		}
	}

	return s.commentRepo.GetByID(ctx, commentID)
}

func sameTarget(parent *models.Comment, postID, reviewID *uint) bool {
	if postID != nil {
		return parent.PostID != nil && *parent.PostID == *postID
	}
	return parent.ReviewID != nil && *parent.ReviewID == *reviewID
}

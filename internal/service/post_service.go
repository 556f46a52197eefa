package service

import (
	"context"

	"wayfarer/internal/cache"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"
)

const (
	maxPostTitleLen   = 300
	maxPostContentLen = 50000
)

// PostService implements post publishing, listing and likes.
type PostService struct {
	postRepo      repository.PostRepository
	userRepo      repository.UserRepository
	communityRepo repository.CommunityRepository
	notifications *NotificationService
	deletion      *DeletionService
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

type CreatePostInput struct {
	UserID      uint
	CommunityID uint
	Title       string
	Content     string
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
	CommunityID   *uint
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	communityRepo repository.CommunityRepository,
	notifications *NotificationService,
	deletion *DeletionService,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		userRepo:      userRepo,
		communityRepo: communityRepo,
		notifications: notifications,
		deletion:      deletion,
		isAdmin:       isAdmin,
	}
}

// CreatePost publishes a post into a community. The author must be a
// member; members are notified of the new post.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxPostTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if in.CommunityID == 0 {
		return nil, models.NewValidationError("community_id is required")
	}

	community, err := s.communityRepo.GetByID(ctx, in.CommunityID)
	if err != nil {
		return nil, err
	}
	membership, err := s.communityRepo.GetMembership(ctx, in.CommunityID, in.UserID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, models.NewForbiddenError("You must join the community before posting")
	}

	post := &models.Post{
		Title:       in.Title,
		Content:     in.Content,
		UserID:      in.UserID,
		CommunityID: in.CommunityID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		actor, err := s.userRepo.GetByID(ctx, in.UserID)
		if err == nil {
			_ = s.notifications.NotifyCommunityPost(ctx, actor, community, post)
		}
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	if in.CommunityID != nil {
		return s.postRepo.GetByCommunityID(ctx, *in.CommunityID, in.Limit, in.Offset, in.CurrentUserID)
	}

	// The anonymous front page is the hottest read path, so it is served
	// from the cached recent list.
	if in.CurrentUserID == 0 && in.Offset == 0 && in.Limit <= 20 {
		var posts []*models.Post
		err := cache.Aside(ctx, cache.PostsListKeyName, &posts, cache.ListTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, in.Limit, in.Offset, 0)
			return fetchErr
		})
		return posts, err
	}

	return s.postRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID)
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.postRepo.Search(ctx, query, limit, offset, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != "" {
		if len(in.Title) > maxPostTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = in.Title
	}
	if in.Content != "" {
		if len(in.Content) > maxPostContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = in.Content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost cascades a post away together with its comments, likes and
// referencing notifications. The author may always delete their own;
// admins may delete any.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	if post.UserID != in.UserID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own posts")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own posts")
		}
	}

	return s.deletion.DeletePost(ctx, in.PostID)
}

// ToggleLike flips the current user's like on a post. Liking notifies the
// author; unliking retracts that notification.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	isLiked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if isLiked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
		if s.notifications != nil {
			_ = s.notifications.RetractPostLike(ctx, userID, post)
		}
	} else {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return nil, err
		}
		if s.notifications != nil {
			actor, err := s.userRepo.GetByID(ctx, userID)
			if err == nil {
				_ = s.notifications.NotifyPostLiked(ctx, actor, post)
			}
		}
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

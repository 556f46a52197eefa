package service

import (
	"context"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"
)

const (
	maxDisplayNameLen = 80
	maxBioLen         = 1000
)

// UserService implements user profile operations.
type UserService struct {
	userRepo repository.UserRepository
	deletion *DeletionService
}

type UpdateProfileInput struct {
	UserID      uint
	DisplayName *string
	Bio         *string
	Avatar      *string
}

func NewUserService(userRepo repository.UserRepository, deletion *DeletionService) *UserService {
	return &UserService{userRepo: userRepo, deletion: deletion}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns a user with their most recent posts attached.
func (s *UserService) GetProfile(ctx context.Context, id uint, postLimit int) (*models.User, error) {
	return s.userRepo.GetByIDWithPosts(ctx, id, postLimit)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		if len(*in.DisplayName) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 80 characters)")
		}
		user.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 1000 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, query, limit, offset)
}

// DeleteAccount removes the user and cascades their content away.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.deletion.DeleteUser(ctx, userID)
}

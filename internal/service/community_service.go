package service

import (
	"context"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"
	"wayfarer/internal/validation"
)

const maxCommunityRules = 15

// CommunityService implements community management and membership.
type CommunityService struct {
	communityRepo repository.CommunityRepository
	deletion      *DeletionService
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommunityInput struct {
	UserID      uint
	Name        string
	Slug        string
	Description string
}

type UpdateCommunityInput struct {
	UserID      uint
	CommunityID uint
	Name        string
	Description string
	Avatar      string
}

func NewCommunityService(
	communityRepo repository.CommunityRepository,
	deletion *DeletionService,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		deletion:      deletion,
		isAdmin:       isAdmin,
	}
}

// CreateCommunity creates a community and makes the creator its owner.
// Slugs are globally unique; a taken slug is a conflict.
func (s *CommunityService) CreateCommunity(ctx context.Context, in CreateCommunityInput) (*models.Community, error) {
	if in.Name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(in.Name) > 120 {
		return nil, models.NewValidationError("Name too long (max 120 characters)")
	}
	if err := validation.ValidateCommunitySlug(in.Slug); err != nil {
		return nil, err
	}

	existing, err := s.communityRepo.GetBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("A community with this slug already exists")
	}

	community := &models.Community{
		Name:            in.Name,
		Slug:            in.Slug,
		Description:     in.Description,
		CreatedByUserID: &in.UserID,
	}
	if err := s.communityRepo.CreateWithOwner(ctx, community, in.UserID); err != nil {
		return nil, err
	}

	return s.communityRepo.GetByID(ctx, community.ID)
}

func (s *CommunityService) GetCommunity(ctx context.Context, id uint) (*models.Community, error) {
	return s.communityRepo.GetByID(ctx, id)
}

func (s *CommunityService) GetCommunityBySlug(ctx context.Context, slug string) (*models.Community, error) {
	community, err := s.communityRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, models.NewNotFoundError("Community", slug)
	}
	return community, nil
}

func (s *CommunityService) ListCommunities(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	return s.communityRepo.List(ctx, limit, offset)
}

func (s *CommunityService) SearchCommunities(ctx context.Context, query string, limit, offset int) ([]*models.Community, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.communityRepo.Search(ctx, query, limit, offset)
}

func (s *CommunityService) ListUserCommunities(ctx context.Context, userID uint) ([]*models.Community, error) {
	return s.communityRepo.ListForUser(ctx, userID)
}

// UpdateCommunity updates name, description or avatar. Only the owner, a
// moderator or a platform admin may update. The slug never changes.
func (s *CommunityService) UpdateCommunity(ctx context.Context, in UpdateCommunityInput) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, in.CommunityID)
	if err != nil {
		return nil, err
	}

	if err := s.requireModerator(ctx, in.CommunityID, in.UserID); err != nil {
		return nil, err
	}

	if in.Name != "" {
		if len(in.Name) > 120 {
			return nil, models.NewValidationError("Name too long (max 120 characters)")
		}
		community.Name = in.Name
	}
	if in.Description != "" {
		community.Description = in.Description
	}
	if in.Avatar != "" {
		community.Avatar = in.Avatar
	}

	if err := s.communityRepo.Update(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

// SetRules replaces the community's ordered rule list. Owner or
// moderator only.
func (s *CommunityService) SetRules(ctx context.Context, userID, communityID uint, rules []models.CommunityRule) (*models.Community, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, communityID, userID); err != nil {
		return nil, err
	}
	if len(rules) > maxCommunityRules {
		return nil, models.NewValidationError("Too many rules (max 15)")
	}
	for _, rule := range rules {
		if rule.Title == "" {
			return nil, models.NewValidationError("Every rule needs a title")
		}
	}

	if err := s.communityRepo.ReplaceRules(ctx, communityID, rules); err != nil {
		return nil, err
	}
	return s.communityRepo.GetByID(ctx, communityID)
}

// DeleteCommunity cascades the community away. Owner or platform admin only.
func (s *CommunityService) DeleteCommunity(ctx context.Context, userID, communityID uint) error {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return err
	}

	membership, err := s.communityRepo.GetMembership(ctx, communityID, userID)
	if err != nil {
		return err
	}
	isOwner := membership != nil && membership.Role == models.CommunityMembershipRoleOwner
	if !isOwner {
		admin, err := s.checkAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("Only the owner can delete a community")
		}
	}

	return s.deletion.DeleteCommunity(ctx, communityID)
}

// Join adds the user as a member. Joining twice is a no-op.
func (s *CommunityService) Join(ctx context.Context, userID, communityID uint) (*models.Community, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	if err := s.communityRepo.AddMember(ctx, communityID, userID, models.CommunityMembershipRoleMember); err != nil {
		return nil, err
	}
	return s.communityRepo.GetByID(ctx, communityID)
}

// Leave removes the user's membership. The owner cannot leave; they must
// transfer ownership or delete the community.
func (s *CommunityService) Leave(ctx context.Context, userID, communityID uint) error {
	membership, err := s.communityRepo.GetMembership(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return models.NewValidationError("You are not a member of this community")
	}
	if membership.Role == models.CommunityMembershipRoleOwner {
		return models.NewForbiddenError("The owner cannot leave their community")
	}
	return s.communityRepo.RemoveMember(ctx, communityID, userID)
}

func (s *CommunityService) ListMembers(ctx context.Context, communityID uint, limit, offset int) ([]*models.CommunityMembership, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.communityRepo.ListMembers(ctx, communityID, limit, offset)
}

// SetMemberRole promotes or demotes a member between member and mod.
// Owner only; the owner role itself cannot be granted or revoked here.
func (s *CommunityService) SetMemberRole(ctx context.Context, actorID, communityID, memberID uint, role models.CommunityMembershipRole) error {
	if role != models.CommunityMembershipRoleMod && role != models.CommunityMembershipRoleMember {
		return models.NewValidationError("Role must be mod or member")
	}

	actorMembership, err := s.communityRepo.GetMembership(ctx, communityID, actorID)
	if err != nil {
		return err
	}
	if actorMembership == nil || actorMembership.Role != models.CommunityMembershipRoleOwner {
		return models.NewForbiddenError("Only the owner can change member roles")
	}

	target, err := s.communityRepo.GetMembership(ctx, communityID, memberID)
	if err != nil {
		return err
	}
	if target == nil {
		return models.NewNotFoundError("Membership", memberID)
	}
	if target.Role == models.CommunityMembershipRoleOwner {
		return models.NewForbiddenError("The owner role cannot be changed")
	}

	// AddMember upserts nothing on conflict, so remove and re-add with
	// the new role.
	if err := s.communityRepo.RemoveMember(ctx, communityID, memberID); err != nil {
		return err
	}
	return s.communityRepo.AddMember(ctx, communityID, memberID, role)
}

// requireModerator allows owners, mods and platform admins through.
func (s *CommunityService) requireModerator(ctx context.Context, communityID, userID uint) error {
	membership, err := s.communityRepo.GetMembership(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if membership != nil &&
		(membership.Role == models.CommunityMembershipRoleOwner || membership.Role == models.CommunityMembershipRoleMod) {
		return nil
	}
	admin, err := s.checkAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError("Moderator access required")
	}
	return nil
}

func (s *CommunityService) checkAdmin(ctx context.Context, userID uint) (bool, error) {
	if s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}

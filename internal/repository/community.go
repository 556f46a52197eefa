package repository

import (
	"context"
	"errors"

	"wayfarer/internal/cache"
	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// CommunityRepository defines persistence operations for communities,
// their rule lists and their membership rows.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	CreateWithOwner(ctx context.Context, community *models.Community, ownerID uint) error
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	GetBySlug(ctx context.Context, slug string) (*models.Community, error)
	List(ctx context.Context, limit, offset int) ([]*models.Community, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Community, error)
	ListReported(ctx context.Context, limit, offset int) ([]*models.Community, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id uint) error

	ReplaceRules(ctx context.Context, communityID uint, rules []models.CommunityRule) error

	GetMembership(ctx context.Context, communityID, userID uint) (*models.CommunityMembership, error)
	AddMember(ctx context.Context, communityID, userID uint, role models.CommunityMembershipRole) error
	RemoveMember(ctx context.Context, communityID, userID uint) error
	ListMembers(ctx context.Context, communityID uint, limit, offset int) ([]*models.CommunityMembership, error)
	ListMemberIDs(ctx context.Context, communityID uint) ([]uint, error)
	CountMembers(ctx context.Context, communityID uint) (int64, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// applyMemberCount adds the members_count subquery to a community select.
func (r *communityRepository) applyMemberCount(db *gorm.DB) *gorm.DB {
	return db.Select("communities.*, " +
		"(SELECT COUNT(*) FROM community_memberships WHERE community_memberships.community_id = communities.id) as members_count")
}

func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Create(community).Error
}

// CreateWithOwner creates a community and its owner membership in one
// transaction, so a membership failure never leaves an ownerless community.
func (r *communityRepository) CreateWithOwner(ctx context.Context, community *models.Community, ownerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		return tx.Exec(
			`INSERT INTO community_memberships (community_id, user_id, role, created_at, updated_at)
			 VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
			community.ID, ownerID, models.CommunityMembershipRoleOwner,
		).Error
	})
}

func (r *communityRepository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	key := cache.CommunityKey(id)

	err := cache.Aside(ctx, key, &community, cache.CommunityTTL, func() error {
		return r.applyMemberCount(r.db.WithContext(ctx)).
			Preload("Rules", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC")
			}).
			First(&community, id).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", id)
		}
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) GetBySlug(ctx context.Context, slug string) (*models.Community, error) {
	var community models.Community
	err := r.applyMemberCount(r.db.WithContext(ctx)).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("slug = ?", slug).
		First(&community).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &community, nil
}

func (r *communityRepository) List(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.applyMemberCount(r.db.WithContext(ctx)).
		Order("members_count DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error
	return communities, err
}

func (r *communityRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Community, error) {
	var communities []*models.Community
	like := "%" + query + "%"
	err := r.applyMemberCount(r.db.WithContext(ctx)).
		Where("name ILIKE ? OR slug ILIKE ? OR description ILIKE ?", like, like, like).
		Order("members_count DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error
	return communities, err
}

func (r *communityRepository) ListReported(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.applyMemberCount(r.db.WithContext(ctx)).
		Where("report_count > 0").
		Order("report_count DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error
	return communities, err
}

func (r *communityRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.applyMemberCount(r.db.WithContext(ctx)).
		Joins("JOIN community_memberships ON community_memberships.community_id = communities.id").
		Where("community_memberships.user_id = ?", userID).
		Order("communities.name ASC").
		Find(&communities).Error
	return communities, err
}

func (r *communityRepository) Update(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Save(community).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.CommunityKey(community.ID))
	return nil
}

func (r *communityRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Community{}, id).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.CommunityKey(id))
	return nil
}

// ReplaceRules swaps a community's entire rule list atomically. Positions
// are normalized to the order given.
func (r *communityRepository) ReplaceRules(ctx context.Context, communityID uint, rules []models.CommunityRule) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", communityID).Delete(&models.CommunityRule{}).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].ID = 0
			rules[i].CommunityID = communityID
			rules[i].Position = i + 1
		}
		if len(rules) == 0 {
			return nil
		}
		return tx.Create(&rules).Error
	})
	if err == nil {
		cache.Invalidate(ctx, cache.CommunityKey(communityID))
	}
	return err
}

func (r *communityRepository) GetMembership(ctx context.Context, communityID, userID uint) (*models.CommunityMembership, error) {
	var membership models.CommunityMembership
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &membership, nil
}

func (r *communityRepository) AddMember(ctx context.Context, communityID, userID uint, role models.CommunityMembershipRole) error {
	// Joining twice is a no-op, matching the likes insert pattern.
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO community_memberships (community_id, user_id, role, created_at, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT (community_id, user_id) DO NOTHING`,
		communityID, userID, role,
	).Error
	if err == nil {
		cache.Invalidate(ctx, cache.CommunityKey(communityID))
	}
	return err
}

func (r *communityRepository) RemoveMember(ctx context.Context, communityID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.CommunityMembership{}).Error
	if err == nil {
		cache.Invalidate(ctx, cache.CommunityKey(communityID))
	}
	return err
}

func (r *communityRepository) ListMembers(ctx context.Context, communityID uint, limit, offset int) ([]*models.CommunityMembership, error) {
	var memberships []*models.CommunityMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("community_id = ?", communityID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&memberships).Error
	return memberships, err
}

// ListMemberIDs returns every member's user ID; used for notification fan-out.
func (r *communityRepository) ListMemberIDs(ctx context.Context, communityID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.CommunityMembership{}).
		Where("community_id = ?", communityID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *communityRepository) CountMembers(ctx context.Context, communityID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommunityMembership{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	return count, err
}

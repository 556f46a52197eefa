package service

import (
	"context"

	"wayfarer/internal/cache"
	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// DeletionService removes entities together with their dependent rows.
// Every cascade runs inside a single transaction so a failure leaves the
// original graph intact.
type DeletionService struct {
	db *gorm.DB
}

// NewDeletionService returns a new DeletionService.
func NewDeletionService(db *gorm.DB) *DeletionService {
	return &DeletionService{db: db}
}

// DeletePost removes a post with its comments and all likes on the post
// and those comments.
func (s *DeletionService) DeletePost(ctx context.Context, postID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteCommentsWhere(tx, "post_id = ?", postID); err != nil {
			return err
		}
		if err := deleteLikes(tx, models.LikeTargetPost, postID); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(postID))
		cache.InvalidatePostsList(ctx)
	}
	return err
}

// DeleteReview removes a review with its comments and likes.
func (s *DeletionService) DeleteReview(ctx context.Context, reviewID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteCommentsWhere(tx, "review_id = ?", reviewID); err != nil {
			return err
		}
		if err := deleteLikes(tx, models.LikeTargetReview, reviewID); err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Review{}, reviewID).Error
	})
	if err == nil {
		cache.Invalidate(ctx, cache.ReviewKey(reviewID))
		cache.InvalidateReviewsList(ctx)
	}
	return err
}

// DeleteComment removes a comment, its replies and the likes on all of them.
func (s *DeletionService) DeleteComment(ctx context.Context, commentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCommentTree(tx, []uint{commentID})
	})
}

// DeleteCommunity removes a community with everything published in it:
// posts, reviews, itineraries, their comments and likes, the rule list
// and all memberships.
func (s *DeletionService) DeleteCommunity(ctx context.Context, communityID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("community_id = ?", communityID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		for _, id := range postIDs {
			if err := deleteCommentsWhere(tx, "post_id = ?", id); err != nil {
				return err
			}
			if err := deleteLikes(tx, models.LikeTargetPost, id); err != nil {
				return err
			}
		}

		var reviewIDs []uint
		if err := tx.Model(&models.Review{}).Where("community_id = ?", communityID).Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}
		for _, id := range reviewIDs {
			if err := deleteCommentsWhere(tx, "review_id = ?", id); err != nil {
				return err
			}
			if err := deleteLikes(tx, models.LikeTargetReview, id); err != nil {
				return err
			}
		}

		var itineraryIDs []uint
		if err := tx.Model(&models.Itinerary{}).Where("community_id = ?", communityID).Pluck("id", &itineraryIDs).Error; err != nil {
			return err
		}
		if len(itineraryIDs) > 0 {
			if err := tx.Where("itinerary_id IN ?", itineraryIDs).Delete(&models.ItineraryActivity{}).Error; err != nil {
				return err
			}
		}

		// Like and fan-out notifications reference the post/review/itinerary
		// directly, without a community id.
		if err := deleteContentNotifications(tx, postIDs, reviewIDs, itineraryIDs); err != nil {
			return err
		}

		steps := []func() error{
			func() error {
				return tx.Where("community_id = ?", communityID).Delete(&models.Post{}).Error
			},
			func() error {
				return tx.Where("community_id = ?", communityID).Delete(&models.Review{}).Error
			},
			func() error {
				return tx.Where("community_id = ?", communityID).Delete(&models.Itinerary{}).Error
			},
			func() error {
				return tx.Where("community_id = ?", communityID).Delete(&models.CommunityRule{}).Error
			},
			func() error {
				return tx.Where("community_id = ?", communityID).Delete(&models.CommunityMembership{}).Error
			},
			func() error {
				return tx.Where("community_id = ?", communityID).Delete(&models.Notification{}).Error
			},
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		return tx.Delete(&models.Community{}, communityID).Error
	})
	if err == nil {
		cache.Invalidate(ctx, cache.CommunityKey(communityID))
		cache.InvalidatePostsList(ctx)
		cache.InvalidateReviewsList(ctx)
	}
	return err
}

// DeleteUser removes a user account together with their content: posts,
// reviews, comments (and replies to them), likes given and received,
// itineraries, memberships and notifications.
func (s *DeletionService) DeleteUser(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		for _, id := range postIDs {
			if err := deleteCommentsWhere(tx, "post_id = ?", id); err != nil {
				return err
			}
			if err := deleteLikes(tx, models.LikeTargetPost, id); err != nil {
				return err
			}
		}

		var reviewIDs []uint
		if err := tx.Model(&models.Review{}).Where("user_id = ?", userID).Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}
		for _, id := range reviewIDs {
			if err := deleteCommentsWhere(tx, "review_id = ?", id); err != nil {
				return err
			}
			if err := deleteLikes(tx, models.LikeTargetReview, id); err != nil {
				return err
			}
		}

		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", userID).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := deleteCommentTree(tx, commentIDs); err != nil {
				return err
			}
		}

		var itineraryIDs []uint
		if err := tx.Model(&models.Itinerary{}).Where("user_id = ?", userID).Pluck("id", &itineraryIDs).Error; err != nil {
			return err
		}
		if len(itineraryIDs) > 0 {
			if err := tx.Where("itinerary_id IN ?", itineraryIDs).Delete(&models.ItineraryActivity{}).Error; err != nil {
				return err
			}
		}

		if err := deleteContentNotifications(tx, postIDs, reviewIDs, itineraryIDs); err != nil {
			return err
		}

		steps := []func() error{
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.Post{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.Review{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.Itinerary{}).Error },
			func() error { return tx.Where("user_id = ?", userID).Delete(&models.Like{}).Error },
			func() error {
				return tx.Where("user_id = ?", userID).Delete(&models.CommunityMembership{}).Error
			},
			func() error {
				return tx.Where("recipient_id = ? OR sender_id = ?", userID, userID).Delete(&models.Notification{}).Error
			},
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		return tx.Delete(&models.User{}, userID).Error
	})
	if err == nil {
		cache.InvalidateUser(ctx, userID)
		cache.InvalidatePostsList(ctx)
		cache.InvalidateReviewsList(ctx)
	}
	return err
}

// deleteCommentsWhere removes the comments matching the condition along
// with likes on each of them.
func deleteCommentsWhere(tx *gorm.DB, query string, arg interface{}) error {
	var ids []uint
	if err := tx.Model(&models.Comment{}).Where(query, arg).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("target_type = ? AND target_id IN ?", models.LikeTargetComment, ids).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := tx.Where("comment_id IN ?", ids).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	return tx.Where(query, arg).Delete(&models.Comment{}).Error
}

// deleteCommentTree removes comments and, level by level, the replies
// underneath them.
func deleteCommentTree(tx *gorm.DB, ids []uint) error {
	for len(ids) > 0 {
		var childIDs []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", ids).Pluck("id", &childIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id IN ?", models.LikeTargetComment, ids).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		ids = childIDs
	}
	return nil
}

// deleteContentNotifications removes notifications referencing any of the
// given posts, reviews or itineraries.
func deleteContentNotifications(tx *gorm.DB, postIDs, reviewIDs, itineraryIDs []uint) error {
	if len(postIDs) > 0 {
		if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
	}
	if len(reviewIDs) > 0 {
		if err := tx.Where("review_id IN ?", reviewIDs).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
	}
	if len(itineraryIDs) > 0 {
		if err := tx.Where("itinerary_id IN ?", itineraryIDs).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteLikes(tx *gorm.DB, targetType models.LikeTarget, targetID uint) error {
	return tx.Where("target_type = ? AND target_id = ?", targetType, targetID).Delete(&models.Like{}).Error
}

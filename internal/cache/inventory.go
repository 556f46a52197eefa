package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	PostKeyPrefix      = "post:%d"
	ReviewKeyPrefix    = "review:%d"
	CommunityKeyPrefix = "community:%d"
	PostsListKeyName   = "posts:recent"
	ReviewsListKeyName = "reviews:recent"
)

const (
	UserTTL      = 5 * time.Minute
	CommunityTTL = 10 * time.Minute
	PostTTL      = 30 * time.Minute
	ReviewTTL    = 30 * time.Minute
	ListTTL      = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ReviewKey(reviewID uint) string {
	return fmt.Sprintf(ReviewKeyPrefix, reviewID)
}

func CommunityKey(communityID uint) string {
	return fmt.Sprintf(CommunityKeyPrefix, communityID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateCommunity(ctx context.Context, communityID uint) {
	Invalidate(ctx, CommunityKey(communityID))
}

func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, PostsListKeyName)
}

func InvalidateReviewsList(ctx context.Context) {
	Invalidate(ctx, ReviewsListKeyName)
}

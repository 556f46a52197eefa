package service

import (
	"context"
	"testing"

	"wayfarer/internal/models"
)

func TestCreatePostRequiresMembership(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	owner := env.createUser(t)
	outsider := env.createUser(t)
	community := env.createCommunity(t, owner)

	_, err := env.posts.CreatePost(ctx, CreatePostInput{
		UserID:      outsider.ID,
		CommunityID: community.ID,
		Title:       "Drive the Ring Road",
		Content:     "Ten days around the island.",
	})
	assertAppError(t, err, "FORBIDDEN")

	env.join(t, community, outsider)
	post, err := env.posts.CreatePost(ctx, CreatePostInput{
		UserID:      outsider.ID,
		CommunityID: community.ID,
		Title:       "Drive the Ring Road",
		Content:     "Ten days around the island.",
	})
	if err != nil {
		t.Fatalf("CreatePost after joining failed: %v", err)
	}
	if post.CommunityID != community.ID {
		t.Errorf("post community = %d", post.CommunityID)
	}
}

func TestCreatePostNotifiesMembersExceptAuthor(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	owner := env.createUser(t)
	author := env.createUser(t)
	lurker := env.createUser(t)
	community := env.createCommunity(t, owner)
	env.join(t, community, author)
	env.join(t, community, lurker)

	if _, err := env.posts.CreatePost(ctx, CreatePostInput{
		UserID:      author.ID,
		CommunityID: community.ID,
		Title:       "Night trains worth taking",
		Content:     "Start with the Nightjet.",
	}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	for _, member := range []*models.User{owner, lurker} {
		got := env.notificationsFor(t, member.ID)
		if len(got) != 1 || got[0].Type != models.NotificationTypeCommunityPost {
			t.Errorf("member %d: expected one community_post notification, got %+v", member.ID, got)
		}
	}
	if got := env.notificationsFor(t, author.ID); len(got) != 0 {
		t.Errorf("author must not be notified of their own post, got %d", len(got))
	}
}

func TestPostToggleLikeRoundTrip(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	liker := env.createUser(t)
	community := env.createCommunity(t, author)
	env.join(t, community, liker)
	post := env.createPost(t, author, community)

	liked, err := env.posts.ToggleLike(ctx, liker.ID, post.ID)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if liked.LikesCount != 1 || !liked.Liked {
		t.Errorf("after like: count=%d liked=%v", liked.LikesCount, liked.Liked)
	}
	if got := env.notificationsFor(t, author.ID); len(got) != 1 || got[0].Type != models.NotificationTypePostLike {
		t.Errorf("expected one post_like notification, got %+v", got)
	}

	unliked, err := env.posts.ToggleLike(ctx, liker.ID, post.ID)
	if err != nil {
		t.Fatalf("second ToggleLike failed: %v", err)
	}
	if unliked.LikesCount != 0 || unliked.Liked {
		t.Errorf("after unlike: count=%d liked=%v", unliked.LikesCount, unliked.Liked)
	}
	if got := env.notificationsFor(t, author.ID); len(got) != 0 {
		t.Errorf("like notification should be retracted, have %d", len(got))
	}
}

func TestUpdatePostOwnership(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	other := env.createUser(t)
	community := env.createCommunity(t, author)
	post := env.createPost(t, author, community)

	_, err := env.posts.UpdatePost(ctx, UpdatePostInput{
		UserID: other.ID,
		PostID: post.ID,
		Title:  "hijacked",
	})
	assertAppError(t, err, "FORBIDDEN")

	got, err := env.posts.UpdatePost(ctx, UpdatePostInput{
		UserID: author.ID,
		PostID: post.ID,
		Title:  "Updated title",
	})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if got.Title != "Updated title" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestDeletePostAdminOverride(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	other := env.createUser(t)
	admin := env.createUser(t)
	if err := env.db.Model(&models.User{}).Where("id = ?", admin.ID).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote admin: %v", err)
	}
	community := env.createCommunity(t, author)
	post := env.createPost(t, author, community)

	err := env.posts.DeletePost(ctx, DeletePostInput{UserID: other.ID, PostID: post.ID})
	assertAppError(t, err, "FORBIDDEN")

	if err := env.posts.DeletePost(ctx, DeletePostInput{UserID: admin.ID, PostID: post.ID}); err != nil {
		t.Fatalf("admin DeletePost failed: %v", err)
	}
	if _, err := env.posts.GetPost(ctx, post.ID, 0); err == nil {
		t.Error("deleted post should not be retrievable")
	}
}

func TestDeletePostByAuthorCascades(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	other := env.createUser(t)
	community := env.createCommunity(t, author)
	env.join(t, community, other)
	post := env.createPost(t, author, community)

	comment, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID: other.ID, Content: "saving this route", PostID: &post.ID,
	})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if _, err := env.posts.ToggleLike(ctx, other.ID, post.ID); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}

	if err := env.posts.DeletePost(ctx, DeletePostInput{UserID: author.ID, PostID: post.ID}); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}

	// The author-side delete runs the same cascade as moderation: the
	// comment thread, the likes and the referencing notifications all go.
	if got := env.countWhere(t, &models.Comment{}, "post_id = ?", post.ID); got != 0 {
		t.Errorf("surviving comments = %d", got)
	}
	if got := env.countWhere(t, &models.Like{}, "target_type = ? AND target_id = ?", models.LikeTargetPost, post.ID); got != 0 {
		t.Errorf("surviving post likes = %d", got)
	}
	if got := env.countWhere(t, &models.Like{}, "target_type = ? AND target_id = ?", models.LikeTargetComment, comment.ID); got != 0 {
		t.Errorf("surviving comment likes = %d", got)
	}
	if got := env.countWhere(t, &models.Notification{}, "post_id = ?", post.ID); got != 0 {
		t.Errorf("surviving notifications = %d", got)
	}
}

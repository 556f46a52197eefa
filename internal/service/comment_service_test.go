package service

import (
	"context"
	"testing"

	"wayfarer/internal/models"
)

func TestCreateCommentRequiresExactlyOneTarget(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	community := env.createCommunity(t, author)
	post := env.createPost(t, author, community)
	review := env.createReview(t, author, community)

	_, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:  author.ID,
		Content: "no target",
	})
	assertAppError(t, err, "VALIDATION_ERROR")

	_, err = env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:   author.ID,
		Content:  "both targets",
		PostID:   &post.ID,
		ReviewID: &review.ID,
	})
	assertAppError(t, err, "VALIDATION_ERROR")
}

func TestCreateCommentRejectsCrossThreadParent(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	community := env.createCommunity(t, author)
	postA := env.createPost(t, author, community)
	postB := env.createPost(t, author, community)

	parent, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:  author.ID,
		Content: "top level",
		PostID:  &postA.ID,
	})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	_, err = env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:   author.ID,
		Content:  "reply on the wrong post",
		PostID:   &postB.ID,
		ParentID: &parent.ID,
	})
	assertAppError(t, err, "VALIDATION_ERROR")
}

func TestCommentReplyNotifiesParentAuthor(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	alice := env.createUser(t)
	bob := env.createUser(t)
	community := env.createCommunity(t, alice)
	env.join(t, community, bob)
	post := env.createPost(t, alice, community)

	parent, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:  alice.ID,
		Content: "top level",
		PostID:  &post.ID,
	})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	reply, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:   bob.ID,
		Content:  "I was there last spring",
		PostID:   &post.ID,
		ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("reply failed: %v", err)
	}

	notifications := env.notificationsFor(t, alice.ID)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification for parent author, got %d", len(notifications))
	}
	n := notifications[0]
	if n.Type != models.NotificationTypeCommentReply {
		t.Errorf("notification type = %s", n.Type)
	}
	if n.CommentID == nil || *n.CommentID != reply.ID {
		t.Error("notification should reference the reply")
	}
	if env.publisher.count(alice.ID) != 1 {
		t.Error("notification should be pushed to the recipient")
	}

	// Replying to yourself stays silent.
	if _, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:   alice.ID,
		Content:  "following up on my own comment",
		PostID:   &post.ID,
		ParentID: &parent.ID,
	}); err != nil {
		t.Fatalf("self-reply failed: %v", err)
	}
	if got := len(env.notificationsFor(t, alice.ID)); got != 1 {
		t.Errorf("self-reply must not notify, have %d notifications", got)
	}
}

func TestTopLevelPostCommentNotifiesPostAuthor(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	commenter := env.createUser(t)
	community := env.createCommunity(t, author)
	env.join(t, community, commenter)
	post := env.createPost(t, author, community)

	comment, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:  commenter.ID,
		Content: "Which hostel did you stay at?",
		PostID:  &post.ID,
	})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	notifications := env.notificationsFor(t, author.ID)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification for post author, got %d", len(notifications))
	}
	n := notifications[0]
	if n.Type != models.NotificationTypePostComment {
		t.Errorf("notification type = %s", n.Type)
	}
	if n.PostID == nil || *n.PostID != post.ID {
		t.Error("notification should reference the post")
	}
	if n.CommentID == nil || *n.CommentID != comment.ID {
		t.Error("notification should reference the comment")
	}

	// Commenting on your own post stays silent.
	if _, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:  author.ID,
		Content: "edit: hostel details below",
		PostID:  &post.ID,
	}); err != nil {
		t.Fatalf("self-comment failed: %v", err)
	}
	if got := len(env.notificationsFor(t, author.ID)); got != 1 {
		t.Errorf("self-comment must not notify, have %d notifications", got)
	}
}

func TestReviewCommentNotifiesReviewAuthor(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	reviewer := env.createUser(t)
	commenter := env.createUser(t)
	community := env.createCommunity(t, reviewer)
	env.join(t, community, commenter)
	review := env.createReview(t, reviewer, community)

	if _, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:   commenter.ID,
		Content:  "How were the crowds?",
		ReviewID: &review.ID,
	}); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	notifications := env.notificationsFor(t, reviewer.ID)
	if len(notifications) != 1 || notifications[0].Type != models.NotificationTypeReviewComment {
		t.Errorf("expected one review_comment notification, got %+v", notifications)
	}
}

func TestUpdateCommentOwnership(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	other := env.createUser(t)
	community := env.createCommunity(t, author)
	post := env.createPost(t, author, community)

	comment, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:  author.ID,
		Content: "original",
		PostID:  &post.ID,
	})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	_, err = env.comments.UpdateComment(ctx, other.ID, comment.ID, "hijacked")
	assertAppError(t, err, "FORBIDDEN")

	got, err := env.comments.UpdateComment(ctx, author.ID, comment.ID, "edited")
	if err != nil {
		t.Fatalf("UpdateComment failed: %v", err)
	}
	if got.Content != "edited" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestDeleteCommentRemovesReplyTree(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	other := env.createUser(t)
	community := env.createCommunity(t, author)
	env.join(t, community, other)
	post := env.createPost(t, author, community)

	parent, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID: author.ID, Content: "ask me anything", PostID: &post.ID,
	})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	reply, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID: other.ID, Content: "best month to go?", PostID: &post.ID, ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if _, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID: author.ID, Content: "late May", PostID: &post.ID, ParentID: &reply.ID,
	}); err != nil {
		t.Fatalf("nested reply failed: %v", err)
	}
	if _, err := env.comments.ToggleLike(ctx, other.ID, parent.ID); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}

	if err := env.comments.DeleteComment(ctx, author.ID, parent.ID); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}

	// Replies to replies go with the parent, along with their likes.
	if got := env.countWhere(t, &models.Comment{}, "post_id = ?", post.ID); got != 0 {
		t.Errorf("surviving comments = %d", got)
	}
	if got := env.countWhere(t, &models.Like{}, "target_type = ?", models.LikeTargetComment); got != 0 {
		t.Errorf("surviving comment likes = %d", got)
	}
}

func TestCommentToggleLikeNotifiesAndRetracts(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	liker := env.createUser(t)
	community := env.createCommunity(t, author)
	env.join(t, community, liker)
	post := env.createPost(t, author, community)

	comment, err := env.comments.CreateComment(ctx, CreateCommentInput{
		UserID:  author.ID,
		Content: "pack light",
		PostID:  &post.ID,
	})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	liked, err := env.comments.ToggleLike(ctx, liker.ID, comment.ID)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if liked.LikesCount != 1 {
		t.Errorf("LikesCount = %d, want 1", liked.LikesCount)
	}
	if got := env.notificationsFor(t, author.ID); len(got) != 1 || got[0].Type != models.NotificationTypeCommentLike {
		t.Errorf("expected one comment_like notification, got %+v", got)
	}

	// Unliking retracts both the like and its notification.
	unliked, err := env.comments.ToggleLike(ctx, liker.ID, comment.ID)
	if err != nil {
		t.Fatalf("second ToggleLike failed: %v", err)
	}
	if unliked.LikesCount != 0 {
		t.Errorf("LikesCount after unlike = %d, want 0", unliked.LikesCount)
	}
	if got := env.notificationsFor(t, author.ID); len(got) != 0 {
		t.Errorf("like notification should be retracted, have %d", len(got))
	}
}

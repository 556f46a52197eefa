package repository

import (
	"context"
	"testing"
	"time"

	"wayfarer/internal/models"
)

func seedNotification(t *testing.T, repo NotificationRepository, recipient, sender uint, nType models.NotificationType, postID *uint) *models.Notification {
	t.Helper()
	n := &models.Notification{
		RecipientID: recipient,
		SenderID:    &sender,
		Type:        nType,
		Message:     "someone liked your post",
		PostID:      postID,
	}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("failed to create notification: %v", err)
	}
	return n
}

func TestNotificationRepositoryListPage(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	recipient := createTestUser(t, db)
	sender := createTestUser(t, db)
	other := createTestUser(t, db)

	for i := 0; i < 5; i++ {
		seedNotification(t, repo, recipient.ID, sender.ID, models.NotificationTypePostLike, nil)
	}
	seedNotification(t, repo, other.ID, sender.ID, models.NotificationTypePostLike, nil)

	page, total, err := repo.ListPage(ctx, recipient.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 {
		t.Errorf("page size = %d, want 2", len(page))
	}

	// Newest first with a stable id tiebreak: pages never overlap.
	seen := map[uint]bool{}
	for offset := 0; offset < 5; offset += 2 {
		page, _, err := repo.ListPage(ctx, recipient.ID, 2, offset)
		if err != nil {
			t.Fatalf("ListPage offset %d failed: %v", offset, err)
		}
		for _, n := range page {
			if seen[n.ID] {
				t.Errorf("notification %d appeared on two pages", n.ID)
			}
			seen[n.ID] = true
		}
	}
	if len(seen) != 5 {
		t.Errorf("paged through %d distinct notifications, want 5", len(seen))
	}
}

func TestNotificationRepositorySeenAndRead(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	recipient := createTestUser(t, db)
	sender := createTestUser(t, db)

	a := seedNotification(t, repo, recipient.ID, sender.ID, models.NotificationTypePostLike, nil)
	seedNotification(t, repo, recipient.ID, sender.ID, models.NotificationTypeCommentReply, nil)

	unseen, err := repo.CountUnseen(ctx, recipient.ID)
	if err != nil {
		t.Fatalf("CountUnseen failed: %v", err)
	}
	if unseen != 2 {
		t.Errorf("CountUnseen = %d, want 2", unseen)
	}

	if err := repo.MarkAllSeen(ctx, recipient.ID); err != nil {
		t.Fatalf("MarkAllSeen failed: %v", err)
	}
	unseen, err = repo.CountUnseen(ctx, recipient.ID)
	if err != nil {
		t.Fatalf("CountUnseen failed: %v", err)
	}
	if unseen != 0 {
		t.Errorf("CountUnseen after MarkAllSeen = %d, want 0", unseen)
	}

	if err := repo.MarkRead(ctx, recipient.ID, a.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.IsRead || !got.IsSeen {
		t.Errorf("notification after MarkRead = seen:%v read:%v", got.IsSeen, got.IsRead)
	}

	// Another user's notification id must not be markable.
	stranger := createTestUser(t, db)
	if err := repo.MarkRead(ctx, stranger.ID, a.ID); err == nil {
		t.Error("MarkRead across recipients should fail")
	}
}

func TestNotificationRepositoryDeleteByEvent(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db)
	liker := createTestUser(t, db)
	community := createTestCommunity(t, db, author)
	post := createTestPost(t, db, author, community)
	otherPost := createTestPost(t, db, author, community)

	seedNotification(t, repo, author.ID, liker.ID, models.NotificationTypePostLike, &post.ID)
	keep := seedNotification(t, repo, author.ID, liker.ID, models.NotificationTypePostLike, &otherPost.ID)

	if err := repo.DeleteByEvent(ctx, author.ID, liker.ID, models.NotificationTypePostLike, "post_id", post.ID); err != nil {
		t.Fatalf("DeleteByEvent failed: %v", err)
	}

	remaining, _, err := repo.ListPage(ctx, author.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != keep.ID {
		t.Errorf("expected only the unrelated notification to survive, got %d rows", len(remaining))
	}
}

func TestNotificationRepositoryPurgeOlderThan(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	recipient := createTestUser(t, db)
	sender := createTestUser(t, db)

	old := seedNotification(t, repo, recipient.ID, sender.ID, models.NotificationTypeSystem, nil)
	fresh := seedNotification(t, repo, recipient.ID, sender.ID, models.NotificationTypeSystem, nil)

	stale := time.Now().Add(-120 * 24 * time.Hour)
	if err := db.Model(&models.Notification{}).Where("id = ?", old.ID).Update("created_at", stale).Error; err != nil {
		t.Fatalf("failed to backdate notification: %v", err)
	}

	removed, err := repo.PurgeOlderThan(ctx, time.Now().Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeOlderThan failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	remaining, _, err := repo.ListPage(ctx, recipient.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != fresh.ID {
		t.Errorf("expected only the fresh notification, got %d rows", len(remaining))
	}
}

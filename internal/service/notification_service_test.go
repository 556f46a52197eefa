package service

import (
	"context"
	"testing"
	"time"

	"wayfarer/internal/models"
)

func TestNotificationsPagePagination(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	recipient := env.createUser(t)

	for i := 0; i < NotificationPageSize+5; i++ {
		if err := env.notifications.NotifySystem(ctx, recipient.ID, "announcement"); err != nil {
			t.Fatalf("NotifySystem failed: %v", err)
		}
	}

	page, err := env.notifications.NotificationsPage(ctx, recipient.ID, 1)
	if err != nil {
		t.Fatalf("NotificationsPage failed: %v", err)
	}
	if len(page.Notifications) != NotificationPageSize {
		t.Errorf("page 1 size = %d, want %d", len(page.Notifications), NotificationPageSize)
	}
	if !page.HasMore {
		t.Error("page 1 should report more pages")
	}
	if page.Total != int64(NotificationPageSize+5) {
		t.Errorf("Total = %d", page.Total)
	}

	page, err = env.notifications.NotificationsPage(ctx, recipient.ID, 2)
	if err != nil {
		t.Fatalf("NotificationsPage failed: %v", err)
	}
	if len(page.Notifications) != 5 {
		t.Errorf("page 2 size = %d, want 5", len(page.Notifications))
	}
	if page.HasMore {
		t.Error("page 2 should be the last page")
	}

	// Out-of-range pages come back empty instead of erroring.
	page, err = env.notifications.NotificationsPage(ctx, recipient.ID, 99)
	if err != nil {
		t.Fatalf("NotificationsPage failed: %v", err)
	}
	if len(page.Notifications) != 0 || page.HasMore {
		t.Errorf("page 99 = %d notifications, HasMore %v", len(page.Notifications), page.HasMore)
	}
}

func TestRecentNotificationsCappedAtDropdownSize(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	recipient := env.createUser(t)

	for i := 0; i < RecentNotificationsLimit+2; i++ {
		if err := env.notifications.NotifySystem(ctx, recipient.ID, "announcement"); err != nil {
			t.Fatalf("NotifySystem failed: %v", err)
		}
	}

	recent, unseen, err := env.notifications.RecentNotifications(ctx, recipient.ID)
	if err != nil {
		t.Fatalf("RecentNotifications failed: %v", err)
	}
	if len(recent) != 10 {
		t.Errorf("recent size = %d, want 10", len(recent))
	}
	// The badge still counts everything, not just the visible window.
	if unseen != int64(RecentNotificationsLimit+2) {
		t.Errorf("unseen = %d, want %d", unseen, RecentNotificationsLimit+2)
	}
}

func TestSelfNotificationsAreDropped(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	author := env.createUser(t)
	community := env.createCommunity(t, author)
	post := env.createPost(t, author, community)

	if err := env.notifications.NotifyPostLiked(ctx, author, post); err != nil {
		t.Fatalf("NotifyPostLiked failed: %v", err)
	}
	if got := env.notificationsFor(t, author.ID); len(got) != 0 {
		t.Errorf("liking your own post must not notify, got %d", len(got))
	}
	if env.publisher.count(author.ID) != 0 {
		t.Error("nothing should be pushed for a dropped notification")
	}
}

func TestNotifySystemRequiresMessage(t *testing.T) {
	env := setupServiceTest(t)

	recipient := env.createUser(t)
	err := env.notifications.NotifySystem(context.Background(), recipient.ID, "")
	assertAppError(t, err, "VALIDATION_ERROR")
}

func TestMarkReadIsRecipientScoped(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	recipient := env.createUser(t)
	stranger := env.createUser(t)

	if err := env.notifications.NotifySystem(ctx, recipient.ID, "hello"); err != nil {
		t.Fatalf("NotifySystem failed: %v", err)
	}
	notifications := env.notificationsFor(t, recipient.ID)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}

	err := env.notifications.MarkRead(ctx, stranger.ID, notifications[0].ID)
	assertAppError(t, err, "NOT_FOUND")

	if err := env.notifications.MarkRead(ctx, recipient.ID, notifications[0].ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	unseen, err := env.notifications.UnseenCount(ctx, recipient.ID)
	if err != nil {
		t.Fatalf("UnseenCount failed: %v", err)
	}
	if unseen != 0 {
		t.Errorf("UnseenCount = %d, want 0", unseen)
	}
}

func TestPurgeExpiredHonorsRetention(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	recipient := env.createUser(t)

	if err := env.notifications.NotifySystem(ctx, recipient.ID, "old"); err != nil {
		t.Fatalf("NotifySystem failed: %v", err)
	}
	if err := env.notifications.NotifySystem(ctx, recipient.ID, "fresh"); err != nil {
		t.Fatalf("NotifySystem failed: %v", err)
	}

	notifications := env.notificationsFor(t, recipient.ID)
	stale := time.Now().UTC().AddDate(0, 0, -120)
	if err := env.db.Model(&models.Notification{}).
		Where("id = ?", notifications[0].ID).
		Update("created_at", stale).Error; err != nil {
		t.Fatalf("failed to backdate notification: %v", err)
	}

	purged, err := env.notifications.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	if got := env.notificationsFor(t, recipient.ID); len(got) != 1 {
		t.Errorf("expected 1 surviving notification, got %d", len(got))
	}
}

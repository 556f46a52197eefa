package server

import (
	"context"
	"fmt"
	"testing"

	"wayfarer/internal/models"

	"github.com/gofiber/fiber/v2"
)

func seedSystemNotification(t *testing.T, s *Server, recipientID uint, message string) *models.Notification {
	t.Helper()
	if err := s.notificationService.NotifySystem(context.Background(), recipientID, message); err != nil {
		t.Fatalf("NotifySystem failed: %v", err)
	}
	var notification models.Notification
	if err := s.db.Where("recipient_id = ?", recipientID).
		Order("id DESC").First(&notification).Error; err != nil {
		t.Fatalf("failed to load seeded notification: %v", err)
	}
	return &notification
}

func TestRecentNotificationsEndpoint(t *testing.T) {
	s := setupHandlerTest(t)
	app := fiber.New()
	s.SetupRoutes(app)

	recipient := createHandlerTestUser(t, s.db, false)
	other := createHandlerTestUser(t, s.db, false)
	token := authToken(t, s, recipient)

	seedSystemNotification(t, s, recipient.ID, "first")
	seedSystemNotification(t, s, recipient.ID, "second")
	seedSystemNotification(t, s, other.ID, "not yours")

	status, body := doJSON(t, app, "GET", "/api/notifications/recent", nil, token)
	if status != fiber.StatusOK {
		t.Fatalf("recent status = %d (body: %v)", status, body)
	}
	list, _ := body["notifications"].([]any)
	if len(list) != 2 {
		t.Errorf("notifications = %d, want 2", len(list))
	}
	if body["unseen_count"] != float64(2) {
		t.Errorf("unseen_count = %v, want 2", body["unseen_count"])
	}

	// Marking seen zeroes the badge but leaves everything unread.
	if status, _ := doJSON(t, app, "POST", "/api/notifications/seen", nil, token); status != fiber.StatusOK {
		t.Fatalf("mark seen status = %d", status)
	}
	status, body = doJSON(t, app, "GET", "/api/notifications/unseen-count", nil, token)
	if status != fiber.StatusOK || body["unseen_count"] != float64(0) {
		t.Errorf("unseen after seen: status %d, body %v", status, body)
	}

	var unread int64
	if err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipient.ID, false).
		Count(&unread).Error; err != nil {
		t.Fatalf("failed to count unread: %v", err)
	}
	if unread != 2 {
		t.Errorf("unread after seen = %d, want 2", unread)
	}
}

func TestMarkNotificationReadEndpoint(t *testing.T) {
	s := setupHandlerTest(t)
	app := fiber.New()
	s.SetupRoutes(app)

	recipient := createHandlerTestUser(t, s.db, false)
	stranger := createHandlerTestUser(t, s.db, false)

	notification := seedSystemNotification(t, s, recipient.ID, "hello")
	readPath := fmt.Sprintf("/api/notifications/%d/read", notification.ID)

	status, _ := doJSON(t, app, "POST", readPath, nil, authToken(t, s, stranger))
	if status != fiber.StatusNotFound {
		t.Errorf("stranger mark read status = %d, want 404", status)
	}

	status, _ = doJSON(t, app, "POST", readPath, nil, authToken(t, s, recipient))
	if status != fiber.StatusOK {
		t.Errorf("recipient mark read status = %d, want 200", status)
	}

	var notification2 models.Notification
	if err := s.db.First(&notification2, notification.ID).Error; err != nil {
		t.Fatalf("failed to reload notification: %v", err)
	}
	if !notification2.IsRead {
		t.Error("notification should be read")
	}
}

func TestNotificationsPageEndpoint(t *testing.T) {
	s := setupHandlerTest(t)
	app := fiber.New()
	s.SetupRoutes(app)

	recipient := createHandlerTestUser(t, s.db, false)
	token := authToken(t, s, recipient)

	for i := 0; i < 3; i++ {
		seedSystemNotification(t, s, recipient.ID, fmt.Sprintf("announcement %d", i))
	}

	status, body := doJSON(t, app, "GET", "/api/notifications?page=1", nil, token)
	if status != fiber.StatusOK {
		t.Fatalf("page status = %d (body: %v)", status, body)
	}
	list, _ := body["notifications"].([]any)
	if len(list) != 3 {
		t.Errorf("page 1 = %d notifications, want 3", len(list))
	}
	if body["total"] != float64(3) {
		t.Errorf("total = %v, want 3", body["total"])
	}

	// A bogus page value falls back to the first page.
	status, body = doJSON(t, app, "GET", "/api/notifications?page=-4", nil, token)
	if status != fiber.StatusOK {
		t.Fatalf("negative page status = %d", status)
	}
	list, _ = body["notifications"].([]any)
	if len(list) != 3 {
		t.Errorf("fallback page = %d notifications, want 3", len(list))
	}
}

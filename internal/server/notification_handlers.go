package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetRecentNotifications returns the newest notifications plus the
// unseen count, for the bell dropdown.
func (s *Server) GetRecentNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	list, unseen, err := s.notificationService.RecentNotifications(c.Context(), userID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"notifications": list,
		"unseen_count":  unseen,
	})
}

// GetNotificationsPage returns one page of the full notification history.
func (s *Server) GetNotificationsPage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	result, err := s.notificationService.NotificationsPage(c.Context(), userID, page)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetUnseenCount returns the badge count without the notification list.
func (s *Server) GetUnseenCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	count, err := s.notificationService.UnseenCount(c.Context(), userID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unseen_count": count})
}

// MarkNotificationsSeen zeroes the badge without marking anything read.
func (s *Server) MarkNotificationsSeen(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.notificationService.MarkAllSeen(c.Context(), userID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notifications marked seen"})
}

// MarkNotificationRead marks one notification as read.
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.MarkRead(c.Context(), userID, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked read"})
}

// MarkAllNotificationsRead marks the user's entire history as read.
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.notificationService.MarkAllRead(c.Context(), userID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked read"})
}

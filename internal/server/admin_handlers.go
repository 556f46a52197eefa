package server

import (
	"encoding/json"
	"strings"
	"time"

	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReviewReportRequest is the body for moving a report through its
// workflow (reviewed, resolved, dismissed).
type ReviewReportRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

// AnnounceRequest is the body for a platform-wide announcement.
type AnnounceRequest struct {
	Message string `json:"message"`
}

// GetFeatureFlags returns the raw flag configuration and each flag's
// parsed state.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	return c.JSON(fiber.Map{
		"raw":   s.featureFlags.Raw(),
		"flags": s.featureFlags.Snapshot(userID),
	})
}

// GetAdminStats returns platform-wide counters for the admin dashboard.
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	ctx := c.Context()

	counts := fiber.Map{}
	for name, model := range map[string]any{
		"users":       &models.User{},
		"communities": &models.Community{},
		"posts":       &models.Post{},
		"reviews":     &models.Review{},
		"comments":    &models.Comment{},
		"itineraries": &models.Itinerary{},
	} {
		var n int64
		if err := s.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		counts[name] = n
	}

	var pendingReports int64
	if err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("status = ?", models.ReportStatusPending).
		Count(&pendingReports).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	counts["pending_reports"] = pendingReports

	online := 0
	if s.hub != nil {
		online = s.hub.OnlineCount()
	}
	counts["online_users"] = online

	return c.JSON(counts)
}

// Announce pushes a system message to every connected client.
func (s *Server) Announce(c *fiber.Ctx) error {
	var req AnnounceRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Message is required"))
	}

	if s.notifier == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(errRealtimeUnavailable))
	}

	payload, err := json.Marshal(fiber.Map{
		"type":       models.NotificationTypeSystem,
		"message":    req.Message,
		"created_at": time.Now(),
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if err := s.notifier.PublishBroadcast(c.Context(), string(payload)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"message": "Announcement sent"})
}

// AdminListUsers lists or searches users for the moderation console,
// optionally only those with open reports.
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	if c.Query("filter") == "reported" {
		users, err := s.userRepo.ListReported(c.Context(), p.Limit, p.Offset)
		if err != nil {
			return s.respondServiceError(c, err)
		}
		return c.JSON(scrubUsers(users))
	}

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		users, err := s.userRepo.Search(c.Context(), query, p.Limit, p.Offset)
		if err != nil {
			return s.respondServiceError(c, err)
		}
		return c.JSON(scrubUsers(users))
	}

	users, err := s.userRepo.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(scrubUsers(users))
}

// BanUser suspends an account and notifies the user.
func (s *Server) BanUser(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.BanUser(c.Context(), adminID, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User banned"})
}

// UnbanUser lifts a suspension.
func (s *Server) UnbanUser(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.UnbanUser(c.Context(), adminID, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unbanned"})
}

// PromoteToAdmin grants platform admin rights.
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.setAdminFlag(c, id, true)
}

// DemoteFromAdmin revokes platform admin rights. Admins cannot demote
// themselves.
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id == adminID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You cannot demote yourself"))
	}
	return s.setAdminFlag(c, id, false)
}

func (s *Server) setAdminFlag(c *fiber.Ctx, userID uint, isAdmin bool) error {
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	user.IsAdmin = isAdmin
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return s.respondServiceError(c, err)
	}
	user.Password = ""
	return c.JSON(user)
}

// AdminDeleteUser removes a user and all of their content.
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.RemoveTarget(c.Context(), adminID, models.ReportTargetUser, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}

// AdminListPosts lists posts, optionally only those with open reports.
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	if c.Query("filter") == "reported" {
		posts, err := s.postRepo.ListReported(c.Context(), p.Limit, p.Offset)
		if err != nil {
			return s.respondServiceError(c, err)
		}
		return c.JSON(posts)
	}

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// AdminDeletePost removes a post and resolves its open reports.
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.RemoveTarget(c.Context(), adminID, models.ReportTargetPost, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post removed"})
}

// AdminListReviews lists reviews, optionally only reported ones.
func (s *Server) AdminListReviews(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	if c.Query("filter") == "reported" {
		reviews, err := s.reviewRepo.ListReported(c.Context(), p.Limit, p.Offset)
		if err != nil {
			return s.respondServiceError(c, err)
		}
		return c.JSON(reviews)
	}

	reviews, err := s.reviewService.ListReviews(c.Context(), nil, p.Limit, p.Offset, 0)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(reviews)
}

// AdminDeleteReview removes a review and resolves its open reports.
func (s *Server) AdminDeleteReview(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.RemoveTarget(c.Context(), adminID, models.ReportTargetReview, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Review removed"})
}

// AdminListComments lists reported comments for the moderation queue.
func (s *Server) AdminListComments(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	comments, err := s.commentRepo.ListReported(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// AdminDeleteComment removes a comment tree and resolves its open reports.
func (s *Server) AdminDeleteComment(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.RemoveTarget(c.Context(), adminID, models.ReportTargetComment, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment removed"})
}

// AdminListCommunities lists communities, optionally only reported ones.
func (s *Server) AdminListCommunities(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	if c.Query("filter") == "reported" {
		communities, err := s.communityRepo.ListReported(c.Context(), p.Limit, p.Offset)
		if err != nil {
			return s.respondServiceError(c, err)
		}
		return c.JSON(communities)
	}

	communities, err := s.communityService.ListCommunities(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(communities)
}

// AdminDeleteCommunity removes a community and resolves its open reports.
func (s *Server) AdminDeleteCommunity(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.RemoveTarget(c.Context(), adminID, models.ReportTargetCommunity, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Community removed"})
}

// AdminListReports lists reports, optionally filtered by status.
func (s *Server) AdminListReports(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	status := models.ReportStatus(strings.TrimSpace(c.Query("status")))

	reports, err := s.moderationService.ListReports(c.Context(), status, p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(reports)
}

// AdminGetReport returns one report with reporter and reviewer loaded.
func (s *Server) AdminGetReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	report, err := s.moderationService.GetReport(c.Context(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(report)
}

// AdminReviewReport moves a report through its workflow.
func (s *Server) AdminReviewReport(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req ReviewReportRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationService.ReviewReport(c.Context(), service.ReviewReportInput{
		AdminID:    adminID,
		ReportID:   id,
		Status:     models.ReportStatus(strings.TrimSpace(req.Status)),
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(report)
}

// AdminRemoveReportTarget deletes the content a report points at and
// closes every open report against it.
func (s *Server) AdminRemoveReportTarget(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	report, err := s.moderationService.GetReport(c.Context(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	if err := s.moderationService.RemoveTarget(c.Context(), adminID, report.TargetType, report.TargetID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Content removed"})
}

func scrubUsers(users []models.User) []models.User {
	for i := range users {
		users[i].Password = ""
	}
	return users
}

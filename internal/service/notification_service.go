// Package service implements the business logic layer of the application.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"wayfarer/internal/models"
	"wayfarer/internal/observability"
	"wayfarer/internal/repository"
)

// NotificationPageSize is the fixed page size for the paginated
// notification listing.
const NotificationPageSize = 20

// RecentNotificationsLimit caps the dropdown-style recent listing.
const RecentNotificationsLimit = 10

// Publisher pushes a serialized notification to a connected recipient.
// The Redis-backed notifier satisfies this; tests substitute a stub.
type Publisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// NotificationService creates notifications for qualifying domain events
// and serves the per-user notification feed.
type NotificationService struct {
	notifRepo     repository.NotificationRepository
	communityRepo repository.CommunityRepository
	publisher     Publisher
	retentionDays int
}

// NotificationPage is one page of the paginated notification listing.
type NotificationPage struct {
	Notifications []*models.Notification `json:"notifications"`
	Page          int                    `json:"page"`
	HasMore       bool                   `json:"has_more"`
	Total         int64                  `json:"total"`
}

// NewNotificationService returns a new NotificationService. publisher may
// be nil, in which case notifications are stored but not pushed.
func NewNotificationService(
	notifRepo repository.NotificationRepository,
	communityRepo repository.CommunityRepository,
	publisher Publisher,
	retentionDays int,
) *NotificationService {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &NotificationService{
		notifRepo:     notifRepo,
		communityRepo: communityRepo,
		publisher:     publisher,
		retentionDays: retentionDays,
	}
}

// RecentNotifications returns the newest notifications plus the unseen count.
func (s *NotificationService) RecentNotifications(ctx context.Context, userID uint) ([]*models.Notification, int64, error) {
	notifications, err := s.notifRepo.ListRecent(ctx, userID, RecentNotificationsLimit)
	if err != nil {
		return nil, 0, err
	}
	unseen, err := s.notifRepo.CountUnseen(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unseen, nil
}

// NotificationsPage returns one fixed-size page, newest first. Pages are
// 1-based; out-of-range pages return an empty list with HasMore false.
func (s *NotificationService) NotificationsPage(ctx context.Context, userID uint, page int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * NotificationPageSize
	notifications, total, err := s.notifRepo.ListPage(ctx, userID, NotificationPageSize, offset)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{
		Notifications: notifications,
		Page:          page,
		HasMore:       int64(offset+len(notifications)) < total,
		Total:         total,
	}, nil
}

// UnseenCount returns the number of unseen notifications for badge display.
func (s *NotificationService) UnseenCount(ctx context.Context, userID uint) (int64, error) {
	return s.notifRepo.CountUnseen(ctx, userID)
}

// MarkAllSeen zeroes the unseen badge without marking anything read.
func (s *NotificationService) MarkAllSeen(ctx context.Context, userID uint) error {
	return s.notifRepo.MarkAllSeen(ctx, userID)
}

// MarkRead marks one notification read (and seen). Only the recipient may
// do this; a foreign id surfaces as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	return s.notifRepo.MarkRead(ctx, userID, notificationID)
}

// MarkAllRead marks every notification for the user read and seen.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}

// PurgeExpired deletes notifications older than the retention window and
// returns the number removed.
func (s *NotificationService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	purged, err := s.notifRepo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		observability.NotificationsPurged.Add(float64(purged))
	}
	return purged, nil
}

// StartRetentionSweeper runs PurgeExpired once at startup and then every
// interval until ctx is cancelled.
func (s *NotificationService) StartRetentionSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			purged, err := s.PurgeExpired(ctx)
			if err != nil {
				logger.Error("notification retention sweep failed", "error", err)
			} else if purged > 0 {
				logger.Info("purged expired notifications", "count", purged, "retention_days", s.retentionDays)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// deliver persists a single notification and pushes it to the recipient.
// Self-notifications are silently dropped.
func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) error {
	if n.SenderID != nil && *n.SenderID == n.RecipientID {
		return nil
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return err
	}
	observability.NotificationFanout.WithLabelValues(string(n.Type)).Inc()
	s.push(ctx, n)
	return nil
}

func (s *NotificationService) push(ctx context.Context, n *models.Notification) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := s.publisher.PublishUser(ctx, n.RecipientID, string(payload)); err != nil {
		slog.WarnContext(ctx, "failed to push notification", "recipient_id", n.RecipientID, "error", err)
	}
}

// NotifyPostLiked notifies a post's author that actor liked it.
func (s *NotificationService) NotifyPostLiked(ctx context.Context, actor *models.User, post *models.Post) error {
	return s.deliver(ctx, &models.Notification{
		RecipientID: post.UserID,
		SenderID:    &actor.ID,
		Type:        models.NotificationTypePostLike,
		Message:     fmt.Sprintf("%s liked your post %q", actor.Username, snippet(post.Title, 60)),
		PostID:      &post.ID,
	})
}

// RetractPostLike removes the like notification when the like is undone.
func (s *NotificationService) RetractPostLike(ctx context.Context, actorID uint, post *models.Post) error {
	return s.notifRepo.DeleteByEvent(ctx, post.UserID, actorID, models.NotificationTypePostLike, "post_id", post.ID)
}

// NotifyReviewLiked notifies a review's author that actor liked it.
func (s *NotificationService) NotifyReviewLiked(ctx context.Context, actor *models.User, review *models.Review) error {
	return s.deliver(ctx, &models.Notification{
		RecipientID: review.UserID,
		SenderID:    &actor.ID,
		Type:        models.NotificationTypeReviewLike,
		Message:     fmt.Sprintf("%s liked your review of %s", actor.Username, review.PlaceName),
		ReviewID:    &review.ID,
	})
}

// RetractReviewLike removes the like notification when the like is undone.
func (s *NotificationService) RetractReviewLike(ctx context.Context, actorID uint, review *models.Review) error {
	return s.notifRepo.DeleteByEvent(ctx, review.UserID, actorID, models.NotificationTypeReviewLike, "review_id", review.ID)
}

// NotifyCommentLiked notifies a comment's author that actor liked it.
func (s *NotificationService) NotifyCommentLiked(ctx context.Context, actor *models.User, comment *models.Comment) error {
	return s.deliver(ctx, &models.Notification{
		RecipientID: comment.UserID,
		SenderID:    &actor.ID,
		Type:        models.NotificationTypeCommentLike,
		Message:     fmt.Sprintf("%s liked your comment %q", actor.Username, snippet(comment.Content, 60)),
		CommentID:   &comment.ID,
	})
}

// RetractCommentLike removes the like notification when the like is undone.
func (s *NotificationService) RetractCommentLike(ctx context.Context, actorID uint, comment *models.Comment) error {
	return s.notifRepo.DeleteByEvent(ctx, comment.UserID, actorID, models.NotificationTypeCommentLike, "comment_id", comment.ID)
}

// NotifyCommentReply notifies the parent comment's author of a reply.
func (s *NotificationService) NotifyCommentReply(ctx context.Context, actor *models.User, parent *models.Comment, reply *models.Comment) error {
	nType := models.NotificationTypeCommentReply
	if parent.ReviewID != nil {
		nType = models.NotificationTypeReviewCommentReply
	}
	return s.deliver(ctx, &models.Notification{
		RecipientID: parent.UserID,
		SenderID:    &actor.ID,
		Type:        nType,
		Message:     fmt.Sprintf("%s replied to your comment: %q", actor.Username, snippet(reply.Content, 60)),
		CommentID:   &reply.ID,
	})
}

// NotifyPostCommented notifies a post's author of a new top-level comment.
func (s *NotificationService) NotifyPostCommented(ctx context.Context, actor *models.User, post *models.Post, comment *models.Comment) error {
	return s.deliver(ctx, &models.Notification{
		RecipientID: post.UserID,
		SenderID:    &actor.ID,
		Type:        models.NotificationTypePostComment,
		Message:     fmt.Sprintf("%s commented on your post %q", actor.Username, snippet(post.Title, 60)),
		PostID:      &post.ID,
		CommentID:   &comment.ID,
	})
}

// NotifyReviewCommented notifies a review's author of a new top-level comment.
func (s *NotificationService) NotifyReviewCommented(ctx context.Context, actor *models.User, review *models.Review, comment *models.Comment) error {
	return s.deliver(ctx, &models.Notification{
		RecipientID: review.UserID,
		SenderID:    &actor.ID,
		Type:        models.NotificationTypeReviewComment,
		Message:     fmt.Sprintf("%s commented on your review of %s", actor.Username, review.PlaceName),
		ReviewID:    &review.ID,
		CommentID:   &comment.ID,
	})
}

// NotifyCommunityPost fans a new-post notification out to every community
// member except the author.
func (s *NotificationService) NotifyCommunityPost(ctx context.Context, actor *models.User, community *models.Community, post *models.Post) error {
	message := fmt.Sprintf("%s posted %q in %s", actor.Username, snippet(post.Title, 60), community.Name)
	return s.fanOutToCommunity(ctx, actor.ID, community.ID, &models.Notification{
		SenderID:    &actor.ID,
		Type:        models.NotificationTypeCommunityPost,
		Message:     message,
		PostID:      &post.ID,
		CommunityID: &community.ID,
	})
}

// NotifyCommunityItinerary fans a shared-itinerary notification out to
// every community member except the author.
func (s *NotificationService) NotifyCommunityItinerary(ctx context.Context, actor *models.User, community *models.Community, itinerary *models.Itinerary) error {
	message := fmt.Sprintf("%s shared an itinerary for %s in %s", actor.Username, itinerary.Destination, community.Name)
	return s.fanOutToCommunity(ctx, actor.ID, community.ID, &models.Notification{
		SenderID:    &actor.ID,
		Type:        models.NotificationTypeCommunityItinerary,
		Message:     message,
		ItineraryID: &itinerary.ID,
		CommunityID: &community.ID,
	})
}

func (s *NotificationService) fanOutToCommunity(ctx context.Context, actorID, communityID uint, template *models.Notification) error {
	memberIDs, err := s.communityRepo.ListMemberIDs(ctx, communityID)
	if err != nil {
		return err
	}

	batch := make([]*models.Notification, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == actorID {
			continue
		}
		n := *template
		n.RecipientID = id
		batch = append(batch, &n)
	}
	if len(batch) == 0 {
		return nil
	}

	if err := s.notifRepo.CreateBatch(ctx, batch); err != nil {
		return err
	}
	observability.NotificationFanout.WithLabelValues(string(template.Type)).Add(float64(len(batch)))
	for _, n := range batch {
		s.push(ctx, n)
	}
	return nil
}

// NotifyWelcome sends the platform welcome notification to a new user.
func (s *NotificationService) NotifyWelcome(ctx context.Context, userID uint) error {
	return s.deliver(ctx, &models.Notification{
		RecipientID: userID,
		Type:        models.NotificationTypeSystem,
		Message:     "Welcome to Wayfarer! Join a community to start planning your next trip.",
	})
}

// NotifySystem sends an arbitrary platform notification, used by admin
// announcements.
func (s *NotificationService) NotifySystem(ctx context.Context, userID uint, message string) error {
	if message == "" {
		return models.NewValidationError("Message is required")
	}
	return s.deliver(ctx, &models.Notification{
		RecipientID: userID,
		Type:        models.NotificationTypeSystem,
		Message:     message,
	})
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

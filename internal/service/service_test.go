package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"wayfarer/internal/database"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv bundles a throwaway database with real repositories and
// services wired the same way the server wires them.
type testEnv struct {
	db *gorm.DB

	userRepo      repository.UserRepository
	postRepo      repository.PostRepository
	reviewRepo    repository.ReviewRepository
	commentRepo   repository.CommentRepository
	communityRepo repository.CommunityRepository
	itineraryRepo repository.ItineraryRepository
	notifRepo     repository.NotificationRepository

	publisher *capturePublisher

	notifications *NotificationService
	deletions     *DeletionService
	posts         *PostService
	reviews       *ReviewService
	comments      *CommentService
	communities   *CommunityService
	itineraries   *ItineraryService
}

// capturePublisher records pushed payloads instead of talking to Redis.
type capturePublisher struct {
	mu       sync.Mutex
	payloads map[uint][]string
}

func (p *capturePublisher) PublishUser(_ context.Context, userID uint, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.payloads == nil {
		p.payloads = make(map[uint][]string)
	}
	p.payloads[userID] = append(p.payloads[userID], payload)
	return nil
}

func (p *capturePublisher) count(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads[userID])
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	env := &testEnv{
		db:            db,
		userRepo:      repository.NewUserRepository(db),
		postRepo:      repository.NewPostRepository(db),
		reviewRepo:    repository.NewReviewRepository(db),
		commentRepo:   repository.NewCommentRepository(db),
		communityRepo: repository.NewCommunityRepository(db),
		itineraryRepo: repository.NewItineraryRepository(db),
		notifRepo:     repository.NewNotificationRepository(db),
		publisher:     &capturePublisher{},
	}

	isAdmin := func(ctx context.Context, userID uint) (bool, error) {
		var admin bool
		err := db.WithContext(ctx).Model(&models.User{}).
			Select("is_admin").Where("id = ?", userID).Scan(&admin).Error
		return admin, err
	}

	env.notifications = NewNotificationService(env.notifRepo, env.communityRepo, env.publisher, 90)
	env.deletions = NewDeletionService(db)
	env.posts = NewPostService(env.postRepo, env.userRepo, env.communityRepo, env.notifications, env.deletions, isAdmin)
	env.reviews = NewReviewService(env.reviewRepo, env.userRepo, env.communityRepo, env.notifications, env.deletions, isAdmin)
	env.comments = NewCommentService(env.commentRepo, env.postRepo, env.reviewRepo, env.userRepo, env.notifications, env.deletions, isAdmin)
	env.communities = NewCommunityService(env.communityRepo, env.deletions, isAdmin)
	env.itineraries = NewItineraryService(env.itineraryRepo, env.communityRepo, env.userRepo, env.notifications, isAdmin)

	return env
}

var fixtureSeq int

func (e *testEnv) createUser(t *testing.T) *models.User {
	t.Helper()
	fixtureSeq++
	user := &models.User{
		Username: fmt.Sprintf("traveler%d", fixtureSeq),
		Email:    fmt.Sprintf("traveler%d@example.com", fixtureSeq),
		Password: "hashed-password",
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func (e *testEnv) createCommunity(t *testing.T, owner *models.User) *models.Community {
	t.Helper()
	fixtureSeq++
	community := &models.Community{
		Name:            fmt.Sprintf("Community %d", fixtureSeq),
		Slug:            fmt.Sprintf("community-%d", fixtureSeq),
		CreatedByUserID: &owner.ID,
	}
	if err := e.db.Create(community).Error; err != nil {
		t.Fatalf("failed to create test community: %v", err)
	}
	if err := e.communityRepo.AddMember(context.Background(), community.ID, owner.ID, models.CommunityMembershipRoleOwner); err != nil {
		t.Fatalf("failed to add owner membership: %v", err)
	}
	return community
}

func (e *testEnv) join(t *testing.T, community *models.Community, user *models.User) {
	t.Helper()
	if err := e.communityRepo.AddMember(context.Background(), community.ID, user.ID, models.CommunityMembershipRoleMember); err != nil {
		t.Fatalf("failed to join community: %v", err)
	}
}

func (e *testEnv) createPost(t *testing.T, author *models.User, community *models.Community) *models.Post {
	t.Helper()
	fixtureSeq++
	post := &models.Post{
		Title:       fmt.Sprintf("Trip report %d", fixtureSeq),
		Content:     "Three weeks across the coast.",
		UserID:      author.ID,
		CommunityID: community.ID,
	}
	if err := e.db.Create(post).Error; err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

func (e *testEnv) createReview(t *testing.T, author *models.User, community *models.Community) *models.Review {
	t.Helper()
	fixtureSeq++
	review := &models.Review{
		Title:       fmt.Sprintf("Review %d", fixtureSeq),
		Content:     "Worth the detour.",
		PlaceName:   "Lisbon, Portugal",
		Rating:      5,
		UserID:      author.ID,
		CommunityID: community.ID,
	}
	if err := e.db.Create(review).Error; err != nil {
		t.Fatalf("failed to create test review: %v", err)
	}
	return review
}

// notificationsFor returns every stored notification for a recipient.
func (e *testEnv) notificationsFor(t *testing.T, recipientID uint) []*models.Notification {
	t.Helper()
	var notifications []*models.Notification
	if err := e.db.Where("recipient_id = ?", recipientID).Find(&notifications).Error; err != nil {
		t.Fatalf("failed to load notifications: %v", err)
	}
	return notifications
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("error code = %s, want %s (message: %s)", appErr.Code, code, appErr.Message)
	}
}

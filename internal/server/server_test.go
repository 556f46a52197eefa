package server

import (
	"fmt"
	"testing"

	"wayfarer/internal/config"
	"wayfarer/internal/database"
	"wayfarer/internal/featureflags"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerTest(t *testing.T) *Server {
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

	cfg := &config.Config{
		JWTSecret:                 "handler-test-secret",
		Port:                      "8460",
		Env:                       "test",
		FeatureFlags:              "realtime_notifications",
		NotificationRetentionDays: 90,
	}

	s := &Server{
		config:        cfg,
		db:            db,
		userRepo:      repository.NewUserRepository(db),
		postRepo:      repository.NewPostRepository(db),
		reviewRepo:    repository.NewReviewRepository(db),
		commentRepo:   repository.NewCommentRepository(db),
		communityRepo: repository.NewCommunityRepository(db),
		itineraryRepo: repository.NewItineraryRepository(db),
		notifRepo:     repository.NewNotificationRepository(db),
		reportRepo:    repository.NewReportRepository(db),
		featureFlags:  featureflags.NewManager(cfg.FeatureFlags),
	}

	s.notificationService = service.NewNotificationService(
		s.notifRepo, s.communityRepo, nil, cfg.NotificationRetentionDays)
	s.deletionService = service.NewDeletionService(db)
	s.postService = service.NewPostService(
		s.postRepo, s.userRepo, s.communityRepo, s.notificationService, s.deletionService, s.isAdminByUserID)
	s.reviewService = service.NewReviewService(
		s.reviewRepo, s.userRepo, s.communityRepo, s.notificationService, s.deletionService, s.isAdminByUserID)
	s.commentService = service.NewCommentService(
		s.commentRepo, s.postRepo, s.reviewRepo, s.userRepo, s.notificationService, s.deletionService, s.isAdminByUserID)
	s.communityService = service.NewCommunityService(
		s.communityRepo, s.deletionService, s.isAdminByUserID)
	s.itineraryService = service.NewItineraryService(
		s.itineraryRepo, s.communityRepo, s.userRepo, s.notificationService, s.isAdminByUserID)
	s.userService = service.NewUserService(s.userRepo, s.deletionService)
	s.moderationService = service.NewModerationService(
		db, s.reportRepo, s.userRepo, s.deletionService, s.notificationService)
	s.avatarService = service.NewAvatarService(cfg)

	return s
}

var handlerFixtureSeq int

func createHandlerTestUser(t *testing.T, db *gorm.DB, isAdmin bool) *models.User {
	t.Helper()
	handlerFixtureSeq++
	hash, err := bcrypt.GenerateFromPassword([]byte("Sunny4Days"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Username: fmt.Sprintf("handler%d", handlerFixtureSeq),
		Email:    fmt.Sprintf("handler%d@example.com", handlerFixtureSeq),
		Password: string(hash),
		IsAdmin:  isAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// newAuthedApp returns a fiber app that injects userID into locals,
// standing in for AuthRequired.
func newAuthedApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	return app
}

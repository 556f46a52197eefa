// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "wayfarer/docs" // swagger docs
	"wayfarer/internal/cache"
	"wayfarer/internal/config"
	"wayfarer/internal/database"
	"wayfarer/internal/featureflags"
	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/notifications"
	"wayfarer/internal/repository"
	"wayfarer/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo      repository.UserRepository
	postRepo      repository.PostRepository
	reviewRepo    repository.ReviewRepository
	commentRepo   repository.CommentRepository
	communityRepo repository.CommunityRepository
	itineraryRepo repository.ItineraryRepository
	notifRepo     repository.NotificationRepository
	reportRepo    repository.ReportRepository

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	notificationService *service.NotificationService
	postService         *service.PostService
	reviewService       *service.ReviewService
	commentService      *service.CommentService
	communityService    *service.CommunityService
	itineraryService    *service.ItineraryService
	userService         *service.UserService
	moderationService   *service.ModerationService
	avatarService       *service.AvatarService
	deletionService     *service.DeletionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("wayfarer-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		reviewRepo:     repository.NewReviewRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		communityRepo:  repository.NewCommunityRepository(db),
		itineraryRepo:  repository.NewItineraryRepository(db),
		notifRepo:      repository.NewNotificationRepository(db),
		reportRepo:     repository.NewReportRepository(db),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub(redisClient)
	}

	var publisher service.Publisher
	if server.notifier != nil {
		publisher = server.notifier
	}

	server.notificationService = service.NewNotificationService(
		server.notifRepo, server.communityRepo, publisher, cfg.NotificationRetentionDays)
	server.deletionService = service.NewDeletionService(db)
	server.postService = service.NewPostService(
		server.postRepo, server.userRepo, server.communityRepo, server.notificationService, server.deletionService, server.isAdminByUserID)
	server.reviewService = service.NewReviewService(
		server.reviewRepo, server.userRepo, server.communityRepo, server.notificationService, server.deletionService, server.isAdminByUserID)
	server.commentService = service.NewCommentService(
		server.commentRepo, server.postRepo, server.reviewRepo, server.userRepo, server.notificationService, server.deletionService, server.isAdminByUserID)
	server.communityService = service.NewCommunityService(
		server.communityRepo, server.deletionService, server.isAdminByUserID)
	server.itineraryService = service.NewItineraryService(
		server.itineraryRepo, server.communityRepo, server.userRepo, server.notificationService, server.isAdminByUserID)
	server.userService = service.NewUserService(server.userRepo, server.deletionService)
	server.moderationService = service.NewModerationService(
		db, server.reportRepo, server.userRepo, server.deletionService, server.notificationService)
	server.avatarService = service.NewAvatarService(cfg)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on
	// error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Wayfarer Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Avatar media
	app.Get("/media/avatars/:hash", s.ServeAvatar)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/check-username", s.CheckUsername)
	auth.Get("/check-email", s.CheckEmail)
	auth.Post("/refresh", s.AuthRequired(), s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)

	// Public browse routes
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchPosts)
	publicPosts.Get("/:id/comments", s.GetPostComments)
	publicPosts.Get("/:id", s.GetPost)

	publicReviews := api.Group("/reviews")
	publicReviews.Get("/", s.GetReviews)
	publicReviews.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchReviews)
	publicReviews.Get("/:id/comments", s.GetReviewComments)
	publicReviews.Get("/:id", s.GetReview)

	publicCommunities := api.Group("/communities")
	publicCommunities.Get("/", s.GetCommunities)
	publicCommunities.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchCommunities)
	publicCommunities.Get("/slug/:slug", s.GetCommunityBySlug)
	publicCommunities.Get("/:id/posts", s.GetCommunityPosts)
	publicCommunities.Get("/:id/reviews", s.GetCommunityReviews)
	publicCommunities.Get("/:id/itineraries", s.GetCommunityItineraries)
	publicCommunities.Get("/:id/members", s.GetCommunityMembers)
	publicCommunities.Get("/:id", s.GetCommunity)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Delete("/me", s.DeleteMyAccount)
	users.Post("/me/avatar", s.UploadMyAvatar)
	users.Get("/me/communities", s.GetMyCommunities)
	users.Get("/me/itineraries", s.GetMyItineraries)
	users.Get("/search", s.SearchUsers)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUserProfile)

	// Community management
	communities := protected.Group("/communities")
	communities.Post("/", middleware.RateLimit(
		s.redis, 2, 10*time.Minute, "create_community"), s.CreateCommunity)
	communities.Post("/:id/join", s.JoinCommunity)
	communities.Delete("/:id/join", s.LeaveCommunity)
	communities.Put("/:id/rules", s.SetCommunityRules)
	communities.Post("/:id/avatar", s.UploadCommunityAvatar)
	communities.Put("/:id/members/:userId/role", s.SetCommunityMemberRole)
	communities.Put("/:id", s.UpdateCommunity)
	communities.Delete("/:id", s.DeleteCommunity)

	// Post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreatePostComment)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Review routes
	reviews := protected.Group("/reviews")
	reviews.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_review"), s.CreateReview)
	reviews.Post("/:id/like", s.LikeReview)
	reviews.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateReviewComment)
	reviews.Put("/:id", s.UpdateReview)
	reviews.Delete("/:id", s.DeleteReview)

	// Comment routes
	comments := protected.Group("/comments")
	comments.Post("/:id/like", s.LikeComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Itinerary routes
	itineraries := protected.Group("/itineraries")
	itineraries.Post("/", s.CreateItinerary)
	itineraries.Put("/:id", s.UpdateItinerary)
	itineraries.Delete("/:id", s.DeleteItinerary)
	itineraries.Get("/:id", s.GetItinerary)

	// Notification routes
	notificationsGroup := protected.Group("/notifications")
	notificationsGroup.Get("/recent", s.GetRecentNotifications)
	notificationsGroup.Get("/unseen-count", s.GetUnseenCount)
	notificationsGroup.Post("/seen", s.MarkNotificationsSeen)
	notificationsGroup.Post("/read-all", s.MarkAllNotificationsRead)
	notificationsGroup.Post("/:id/read", s.MarkNotificationRead)
	notificationsGroup.Get("/", s.GetNotificationsPage)

	// Report routes
	protected.Post("/reports", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "submit_report"), s.SubmitReport)

	// WebSocket ticket issuance and endpoint
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/", s.WebsocketHandler())

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Get("/stats", s.GetAdminStats)
	admin.Post("/announce", s.Announce)

	admin.Get("/users", s.AdminListUsers)
	admin.Post("/users/:id/ban", s.BanUser)
	admin.Post("/users/:id/unban", s.UnbanUser)
	admin.Post("/users/:id/promote-admin", s.PromoteToAdmin)
	admin.Post("/users/:id/demote-admin", s.DemoteFromAdmin)
	admin.Delete("/users/:id", s.AdminDeleteUser)

	admin.Get("/posts", s.AdminListPosts)
	admin.Delete("/posts/:id", s.AdminDeletePost)
	admin.Get("/reviews", s.AdminListReviews)
	admin.Delete("/reviews/:id", s.AdminDeleteReview)
	admin.Get("/comments", s.AdminListComments)
	admin.Delete("/comments/:id", s.AdminDeleteComment)
	admin.Get("/communities", s.AdminListCommunities)
	admin.Delete("/communities/:id", s.AdminDeleteCommunity)

	admin.Get("/reports", s.AdminListReports)
	admin.Get("/reports/:id", s.AdminGetReport)
	admin.Put("/reports/:id", s.AdminReviewReport)
	admin.Post("/reports/:id/remove-target", s.AdminRemoveReportTarget)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is required for full readiness: revocation and real-time
		// delivery depend on it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdmin(c, userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws")

		// 1. Try WebSocket ticket first (short-lived, single-use)
		ticket := c.Query("ticket")
		if ticket != "" && s.redis != nil {
			key := fmt.Sprintf("ws_ticket:%s", ticket)
			userIDStr, err := s.redis.Get(c.Context(), key).Result()
			if err == nil {
				userID, parseErr := strconv.ParseUint(userIDStr, 10, 32)
				if parseErr == nil {
					// Delete ticket immediately (single-use)
					s.redis.Del(c.Context(), key)
					return s.admitUser(c, uint(userID))
				}
			}
			// If ticket was provided but invalid/expired, fail on WS paths
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		// 2. Fall back to JWT (Bearer token)
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Reject token in query param for WS routes (must use ticket)
		if tokenString == "" && !isWSPath {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		// Validate issuer and audience
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != jwtIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != jwtAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
			c.Locals("jti", jti)
		}
		if exp, exists := claims["exp"].(float64); exists {
			c.Locals("tokenExp", int64(exp))
		}

		return s.admitUser(c, uint(userID))
	}
}

// admitUser stores the authenticated user in locals and the request
// context, rejecting suspended accounts.
func (s *Server) admitUser(c *fiber.Ctx, userID uint) error {
	banned, err := s.isBannedByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if banned {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Account suspended"))
	}

	c.Locals("userID", userID)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
	c.SetUserContext(ctx)
	return c.Next()
}

// optionalUserID attempts to extract userID from Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Wayfarer API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the hub to the Redis subscriber if available
	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start notification hub wiring: %v", err)
			}
		}()
	}

	// Retention sweeper for old notifications
	s.notificationService.StartRetentionSweeper(s.shutdownCtx, 6*time.Hour, middleware.Logger)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop background goroutines
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down notification hub: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

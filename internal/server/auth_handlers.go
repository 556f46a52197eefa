package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtIssuer   = "wayfarer-api"
	jwtAudience = "wayfarer-client"
	tokenTTL    = 7 * 24 * time.Hour
	wsTicketTTL = 30 * time.Second
)

// SignupRequest represents the signup request body
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned on successful signup/login/refresh
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup payload"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	ctx := c.Context()

	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err != nil {
		return s.respondServiceError(c, err)
	} else if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("An account with this email already exists"))
	}
	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err != nil {
		return s.respondServiceError(c, err)
	} else if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("This username is already taken"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return s.respondServiceError(c, err)
	}

	if err := s.notificationService.NotifyWelcome(ctx, user.ID); err != nil {
		middleware.Logger.Warn("welcome notification failed",
			"user_id", user.ID, "error", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: token, User: user})
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.Context()

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}
	if user.IsBanned {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Account suspended"))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user.Password = ""
	return c.JSON(AuthResponse{Token: token, User: user})
}

// Refresh issues a new token and revokes the presented one.
func (s *Server) Refresh(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	s.blacklistCurrentToken(c)

	user.Password = ""
	return c.JSON(AuthResponse{Token: token, User: user})
}

// Logout revokes the presented token by blacklisting its JTI until expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.blacklistCurrentToken(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me returns the authenticated user.
func (s *Server) Me(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	user.Password = ""
	return c.JSON(user)
}

// CheckUsername reports whether a username is available.
func (s *Server) CheckUsername(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Query("username"))
	if err := validation.ValidateUsername(username); err != nil {
		return c.JSON(fiber.Map{"available": false, "reason": err.Error()})
	}

	existing, err := s.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"available": existing == nil})
}

// CheckEmail reports whether an email address is available.
func (s *Server) CheckEmail(c *fiber.Ctx) error {
	email := strings.TrimSpace(strings.ToLower(c.Query("email")))
	if err := validation.ValidateEmail(email); err != nil {
		return c.JSON(fiber.Map{"available": false, "reason": err.Error()})
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), email)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"available": existing == nil})
}

// IssueWSTicket creates a short-lived single-use ticket for establishing
// a WebSocket connection. Browsers cannot set an Authorization header on
// the upgrade request, so the client passes the ticket as a query param.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if !s.featureFlags.Enabled("realtime_notifications", userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Realtime notifications are not enabled for this account"))
	}
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(errRealtimeUnavailable))
	}

	ticket := uuid.New().String()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	if err := s.redis.Set(c.Context(), key,
		strconv.FormatUint(uint64(userID), 10), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// blacklistCurrentToken records the request's JTI in Redis until the
// token would have expired anyway. Best-effort: a Redis outage should
// not fail logout.
func (s *Server) blacklistCurrentToken(c *fiber.Ctx) {
	if s.redis == nil {
		return
	}
	jti, ok := c.Locals("jti").(string)
	if !ok || jti == "" {
		return
	}

	ttl := tokenTTL
	if exp, ok := c.Locals("tokenExp").(int64); ok {
		if remaining := time.Until(time.Unix(exp, 0)); remaining > 0 {
			ttl = remaining
		}
	}

	if err := s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl).Err(); err != nil {
		middleware.Logger.Warn("token blacklist write failed", "error", err)
	}
}

// generateToken creates a signed JWT for the user.
func (s *Server) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iss":      jwtIssuer,
		"aud":      jwtAudience,
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique token identifier for revocation tracking.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

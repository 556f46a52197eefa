package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"wayfarer/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that the handler already wrote an error
// response and the caller should just return nil.
var errResponseWritten = errors.New("error response written")

// errRealtimeUnavailable is returned when a realtime feature is hit
// while Redis is not configured.
var errRealtimeUnavailable = errors.New("realtime delivery unavailable")

// Pagination holds limit/offset parsed from the query string.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads limit/offset query params, applying a default
// limit and capping at 100.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// parseID parses a numeric path parameter. On failure it writes a 400
// response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("Invalid %s", humanizeParam(param))))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a camelCase param name to words ("userId" -> "user id").
func humanizeParam(param string) string {
	return strings.ToLower(strings.Join(splitCamel(param), " "))
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// respondServiceError maps service-layer errors to HTTP responses.
// Returns nil so handlers can `return s.respondServiceError(c, err)`.
func (s *Server) respondServiceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errResponseWritten) {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := fiber.StatusInternalServerError
		switch appErr.Code {
		case "VALIDATION_ERROR":
			status = fiber.StatusBadRequest
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		case "CONFLICT":
			status = fiber.StatusConflict
		case "UNAUTHORIZED":
			status = fiber.StatusUnauthorized
		case "FORBIDDEN":
			status = fiber.StatusForbidden
		}
		return models.RespondWithError(c, status, appErr)
	}

	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// isAdmin checks whether the request's user has admin privileges.
func (s *Server) isAdmin(c *fiber.Ctx, userID uint) (bool, error) {
	return s.isAdminByUserID(c.Context(), userID)
}

// isAdminByUserID checks the is_admin flag without loading the full user.
func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	var isAdmin bool
	err := s.db.WithContext(ctx).
		Table("users").
		Select("is_admin").
		Where("id = ?", userID).
		Scan(&isAdmin).Error
	if err != nil {
		return false, err
	}
	return isAdmin, nil
}

// isBannedByUserID checks the is_banned flag without loading the full user.
func (s *Server) isBannedByUserID(ctx context.Context, userID uint) (bool, error) {
	var isBanned bool
	err := s.db.WithContext(ctx).
		Table("users").
		Select("is_banned").
		Where("id = ?", userID).
		Scan(&isBanned).Error
	if err != nil {
		return false, err
	}
	return isBanned, nil
}

package server

import (
	"strings"

	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReviewRequest is the body for review creation.
type CreateReviewRequest struct {
	CommunityID uint   `json:"community_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	PlaceName   string `json:"place_name"`
	Rating      int    `json:"rating"`
}

// UpdateReviewRequest is the body for review edits. A nil rating keeps
// the existing one.
type UpdateReviewRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Rating  *int   `json:"rating"`
}

// CreateReview godoc
// @Summary Create a place review in a community
// @Tags reviews
// @Accept json
// @Produce json
// @Param request body CreateReviewRequest true "Review payload"
// @Success 201 {object} models.Review
// @Failure 403 {object} models.ErrorResponse
// @Router /api/reviews [post]
func (s *Server) CreateReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.CreateReview(c.Context(), service.CreateReviewInput{
		UserID:      userID,
		CommunityID: req.CommunityID,
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		PlaceName:   strings.TrimSpace(req.PlaceName),
		Rating:      req.Rating,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetReviews lists recent reviews across all communities.
func (s *Server) GetReviews(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	reviews, err := s.reviewService.ListReviews(c.Context(), nil, p.Limit, p.Offset, currentUserID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(reviews)
}

// GetReview returns one review with like/comment counts.
func (s *Server) GetReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)
	review, err := s.reviewService.GetReview(c.Context(), id, currentUserID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(review)
}

// SearchReviews finds reviews by title, content or place name.
func (s *Server) SearchReviews(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	reviews, err := s.reviewService.SearchReviews(c.Context(), query, p.Limit, p.Offset, currentUserID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(reviews)
}

// UpdateReview edits a review. Author only.
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.UpdateReview(c.Context(), service.UpdateReviewInput{
		UserID:   userID,
		ReviewID: id,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Rating:   req.Rating,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(review)
}

// DeleteReview removes a review. Author or platform admin.
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reviewService.DeleteReview(c.Context(), userID, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Review deleted"})
}

// LikeReview toggles the user's like on a review.
func (s *Server) LikeReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	review, err := s.reviewService.ToggleLike(c.Context(), userID, id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(review)
}

package server

import (
	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCommentRequest is the body for comment creation. ParentID marks
// the comment as a reply within the same thread.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCommentRequest is the body for comment edits.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CreatePostComment adds a comment (or reply) under a post.
func (s *Server) CreatePostComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:   userID,
		Content:  req.Content,
		PostID:   &postID,
		ParentID: req.ParentID,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// CreateReviewComment adds a comment (or reply) under a review.
func (s *Server) CreateReviewComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	reviewID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:   userID,
		Content:  req.Content,
		ReviewID: &reviewID,
		ParentID: req.ParentID,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetPostComments lists a post's comments, oldest first.
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)
	comments, err := s.commentService.GetPostComments(c.Context(), postID, currentUserID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// GetReviewComments lists a review's comments, oldest first.
func (s *Server) GetReviewComments(c *fiber.Ctx) error {
	reviewID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)
	comments, err := s.commentService.GetReviewComments(c.Context(), reviewID, currentUserID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// UpdateComment edits a comment. Author only.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), userID, id, req.Content)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment removes a comment and its reply tree. Author or admin.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), userID, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// LikeComment toggles the user's like on a comment.
func (s *Server) LikeComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.ToggleLike(c.Context(), userID, id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comment)
}

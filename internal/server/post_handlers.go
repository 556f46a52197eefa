package server

import (
	"strings"

	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the body for post creation.
type CreatePostRequest struct {
	CommunityID uint   `json:"community_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

// UpdatePostRequest is the body for post edits.
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreatePost godoc
// @Summary Create a post in a community
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post payload"
// @Success 201 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /api/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:      userID,
		CommunityID: req.CommunityID,
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts lists recent posts across all communities.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Limit:         p.Limit,
		Offset:        p.Offset,
		CurrentUserID: currentUserID,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost returns one post with like/comment counts.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)
	post, err := s.postService.GetPost(c.Context(), id, currentUserID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

// SearchPosts finds posts by title or content.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	posts, err := s.postService.SearchPosts(c.Context(), query, p.Limit, p.Offset, currentUserID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// UpdatePost edits a post. Author only.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:  userID,
		PostID:  id,
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost removes a post. Author or platform admin.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		UserID: userID,
		PostID: id,
	}); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// LikePost toggles the user's like on a post.
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.ToggleLike(c.Context(), userID, id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

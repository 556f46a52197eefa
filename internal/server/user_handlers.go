package server

import (
	"io"
	"strings"

	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultProfilePostLimit = 10

// UpdateProfileRequest is the body for profile updates. Omitted fields
// are left untouched.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

// GetMyProfile returns the authenticated user with recent posts.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetProfile(c.Context(), userID, defaultProfilePostLimit)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	user.Password = ""
	return c.JSON(user)
}

// GetUserProfile returns a public profile with recent posts.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.Context(), id, defaultProfilePostLimit)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	user.Password = ""
	user.Email = ""
	return c.JSON(user)
}

// UpdateMyProfile updates display name and bio for the authenticated user.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	user.Password = ""
	return c.JSON(user)
}

// DeleteMyAccount permanently removes the user and all their content.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.userService.DeleteAccount(c.Context(), userID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}

// UploadMyAvatar accepts a multipart image upload, processes it and
// stores the resulting URL on the user.
func (s *Server) UploadMyAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	content, filename, contentType, err := readUploadedFile(c, "avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No avatar file uploaded"))
	}

	url, err := s.avatarService.Process(service.UploadAvatarInput{
		UserID:      userID,
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}

	avatar := url
	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID: userID,
		Avatar: &avatar,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	user.Password = ""
	return c.JSON(user)
}

// ServeAvatar streams a stored avatar image from disk.
func (s *Server) ServeAvatar(c *fiber.Ctx) error {
	hash := strings.TrimSuffix(c.Params("hash"), ".webp")

	path, err := s.avatarService.ResolveForServing(hash)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	c.Set("Content-Type", "image/webp")
	c.Set("Cache-Control", "public, max-age=86400, immutable")
	return c.SendFile(path)
}

// SearchUsers finds users by username or email fragment.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	p := parsePagination(c, 20)
	users, err := s.userService.SearchUsers(c.Context(), query, p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	for i := range users {
		users[i].Password = ""
		users[i].Email = ""
	}
	return c.JSON(users)
}

// GetUserPosts returns a user's posts, newest first.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(c.Context(), id, p.Limit, p.Offset, currentUserID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetMyCommunities lists the communities the user belongs to.
func (s *Server) GetMyCommunities(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	communities, err := s.communityService.ListUserCommunities(c.Context(), userID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(communities)
}

// GetMyItineraries lists the user's itineraries ordered by start date.
func (s *Server) GetMyItineraries(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	itineraries, err := s.itineraryService.ListUserItineraries(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(itineraries)
}

// readUploadedFile extracts a multipart file's content and metadata.
func readUploadedFile(c *fiber.Ctx, field string) ([]byte, string, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", "", err
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", "", err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", "", err
	}

	return content, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), nil
}

package server

import (
	"strings"

	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCommunityRequest is the body for community creation.
type CreateCommunityRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// UpdateCommunityRequest is the body for community updates. The slug is
// immutable after creation.
type UpdateCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CommunityRuleRequest is one rule in a rules replacement.
type CommunityRuleRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SetMemberRoleRequest is the body for role changes.
type SetMemberRoleRequest struct {
	Role string `json:"role"`
}

// CreateCommunity godoc
// @Summary Create a travel community
// @Tags communities
// @Accept json
// @Produce json
// @Param request body CreateCommunityRequest true "Community payload"
// @Success 201 {object} models.Community
// @Failure 409 {object} models.ErrorResponse
// @Router /api/communities [post]
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req CreateCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.CreateCommunity(c.Context(), service.CreateCommunityInput{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Slug:        strings.TrimSpace(strings.ToLower(req.Slug)),
		Description: req.Description,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

// GetCommunities lists communities ordered by member count.
func (s *Server) GetCommunities(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	communities, err := s.communityService.ListCommunities(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(communities)
}

// SearchCommunities finds communities by name or description.
func (s *Server) SearchCommunities(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	p := parsePagination(c, 20)
	communities, err := s.communityService.SearchCommunities(c.Context(), query, p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(communities)
}

// GetCommunity returns a community by numeric ID.
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	community, err := s.communityService.GetCommunity(c.Context(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(community)
}

// GetCommunityBySlug returns a community by its URL slug.
func (s *Server) GetCommunityBySlug(c *fiber.Ctx) error {
	slug := strings.TrimSpace(strings.ToLower(c.Params("slug")))

	community, err := s.communityService.GetCommunityBySlug(c.Context(), slug)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(community)
}

// UpdateCommunity updates name/description. Moderators and owners only.
func (s *Server) UpdateCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdateCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.UpdateCommunity(c.Context(), service.UpdateCommunityInput{
		UserID:      userID,
		CommunityID: id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(community)
}

// DeleteCommunity removes a community and all of its content.
func (s *Server) DeleteCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.communityService.DeleteCommunity(c.Context(), userID, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Community deleted"})
}

// JoinCommunity adds the user as a member. Joining twice is a no-op.
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	community, err := s.communityService.Join(c.Context(), userID, id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(community)
}

// LeaveCommunity removes the user's membership. The owner cannot leave.
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.communityService.Leave(c.Context(), userID, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Left community"})
}

// SetCommunityRules replaces the community's rule list.
func (s *Server) SetCommunityRules(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var reqs []CommunityRuleRequest
	if err := c.BodyParser(&reqs); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	rules := make([]models.CommunityRule, 0, len(reqs))
	for _, r := range reqs {
		rules = append(rules, models.CommunityRule{
			Title: strings.TrimSpace(r.Title),
			Body:  r.Body,
		})
	}

	community, err := s.communityService.SetRules(c.Context(), userID, id, rules)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(community)
}

// UploadCommunityAvatar processes an uploaded image and sets it as the
// community avatar. Moderators and owners only.
func (s *Server) UploadCommunityAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	content, filename, contentType, err := readUploadedFile(c, "avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No avatar file uploaded"))
	}

	// Hash under the community's ID so member avatar uploads don't collide.
	url, err := s.avatarService.Process(service.UploadAvatarInput{
		UserID:      id,
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}

	community, err := s.communityService.UpdateCommunity(c.Context(), service.UpdateCommunityInput{
		UserID:      userID,
		CommunityID: id,
		Avatar:      url,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(community)
}

// GetCommunityMembers lists memberships with user details.
func (s *Server) GetCommunityMembers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 50)
	members, err := s.communityService.ListMembers(c.Context(), id, p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(members)
}

// SetCommunityMemberRole promotes or demotes a member. Owner only.
func (s *Server) SetCommunityMemberRole(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(uint)
	communityID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	memberID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req SetMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	role := models.CommunityMembershipRole(strings.TrimSpace(req.Role))
	if err := s.communityService.SetMemberRole(c.Context(), actorID, communityID, memberID, role); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated"})
}

// GetCommunityPosts lists a community's posts, newest first.
func (s *Server) GetCommunityPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Limit:         p.Limit,
		Offset:        p.Offset,
		CurrentUserID: currentUserID,
		CommunityID:   &id,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetCommunityReviews lists a community's reviews, newest first.
func (s *Server) GetCommunityReviews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	reviews, err := s.reviewService.ListReviews(c.Context(), &id, p.Limit, p.Offset, currentUserID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(reviews)
}

// GetCommunityItineraries lists a community's itineraries by start date.
func (s *Server) GetCommunityItineraries(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 20)
	itineraries, err := s.itineraryService.ListCommunityItineraries(c.Context(), id, p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(itineraries)
}

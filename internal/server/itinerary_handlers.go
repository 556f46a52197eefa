package server

import (
	"strings"
	"time"

	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ItineraryActivityRequest is one activity in a create/update payload.
type ItineraryActivityRequest struct {
	Day   int    `json:"day"`
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

// CreateItineraryRequest is the body for itinerary creation.
type CreateItineraryRequest struct {
	CommunityID   uint                       `json:"community_id"`
	Title         string                     `json:"title"`
	Destination   string                     `json:"destination"`
	StartDate     time.Time                  `json:"start_date"`
	EndDate       time.Time                  `json:"end_date"`
	TravelerCount int                        `json:"traveler_count"`
	Activities    []ItineraryActivityRequest `json:"activities"`
}

// UpdateItineraryRequest is the body for itinerary edits. Nil pointer
// fields are left untouched; a non-nil Activities slice replaces the
// whole plan.
type UpdateItineraryRequest struct {
	Title         string                     `json:"title"`
	Destination   string                     `json:"destination"`
	StartDate     *time.Time                 `json:"start_date"`
	EndDate       *time.Time                 `json:"end_date"`
	TravelerCount *int                       `json:"traveler_count"`
	Status        *string                    `json:"status"`
	Activities    []ItineraryActivityRequest `json:"activities"`
}

// CreateItinerary godoc
// @Summary Create a trip itinerary in a community
// @Tags itineraries
// @Accept json
// @Produce json
// @Param request body CreateItineraryRequest true "Itinerary payload"
// @Success 201 {object} models.Itinerary
// @Failure 403 {object} models.ErrorResponse
// @Router /api/itineraries [post]
func (s *Server) CreateItinerary(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req CreateItineraryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	itinerary, err := s.itineraryService.CreateItinerary(c.Context(), service.CreateItineraryInput{
		UserID:        userID,
		CommunityID:   req.CommunityID,
		Title:         strings.TrimSpace(req.Title),
		Destination:   strings.TrimSpace(req.Destination),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TravelerCount: req.TravelerCount,
		Activities:    toActivities(req.Activities),
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(itinerary)
}

// GetItinerary returns one itinerary with its activities.
func (s *Server) GetItinerary(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	itinerary, err := s.itineraryService.GetItinerary(c.Context(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(itinerary)
}

// UpdateItinerary edits an itinerary. Owner only; status can only move
// forward (planning -> upcoming -> completed).
func (s *Server) UpdateItinerary(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdateItineraryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateItineraryInput{
		UserID:        userID,
		ItineraryID:   id,
		Title:         strings.TrimSpace(req.Title),
		Destination:   strings.TrimSpace(req.Destination),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TravelerCount: req.TravelerCount,
	}
	if req.Status != nil {
		status := models.ItineraryStatus(*req.Status)
		in.Status = &status
	}
	if req.Activities != nil {
		in.Activities = toActivities(req.Activities)
	}

	itinerary, err := s.itineraryService.UpdateItinerary(c.Context(), in)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(itinerary)
}

// DeleteItinerary removes an itinerary. Owner or platform admin.
func (s *Server) DeleteItinerary(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.itineraryService.DeleteItinerary(c.Context(), userID, id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Itinerary deleted"})
}

func toActivities(reqs []ItineraryActivityRequest) []models.ItineraryActivity {
	activities := make([]models.ItineraryActivity, 0, len(reqs))
	for i, a := range reqs {
		day := a.Day
		if day < 1 {
			day = 1
		}
		activities = append(activities, models.ItineraryActivity{
			Day:      day,
			Position: i + 1,
			Name:     strings.TrimSpace(a.Name),
			Notes:    a.Notes,
		})
	}
	return activities
}

package service

import (
	"context"
	"time"

	"wayfarer/internal/models"
	"wayfarer/internal/repository"
)

const maxItineraryActivities = 100

// ItineraryService implements shared trip plans inside communities.
type ItineraryService struct {
	itineraryRepo repository.ItineraryRepository
	communityRepo repository.CommunityRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

type CreateItineraryInput struct {
	UserID        uint
	CommunityID   uint
	Title         string
	Destination   string
	StartDate     time.Time
	EndDate       time.Time
	TravelerCount int
	Activities    []models.ItineraryActivity
}

type UpdateItineraryInput struct {
	UserID        uint
	ItineraryID   uint
	Title         string
	Destination   string
	StartDate     *time.Time
	EndDate       *time.Time
	TravelerCount *int
	Status        *models.ItineraryStatus
	Activities    []models.ItineraryActivity
}

func NewItineraryService(
	itineraryRepo repository.ItineraryRepository,
	communityRepo repository.CommunityRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ItineraryService {
	return &ItineraryService{
		itineraryRepo: itineraryRepo,
		communityRepo: communityRepo,
		userRepo:      userRepo,
		notifications: notifications,
		isAdmin:       isAdmin,
	}
}

// CreateItinerary shares a trip plan into a community. The author must be
// a member; members are notified. New itineraries start in planning.
func (s *ItineraryService) CreateItinerary(ctx context.Context, in CreateItineraryInput) (*models.Itinerary, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Destination == "" {
		return nil, models.NewValidationError("Destination is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, models.NewValidationError("start_date and end_date are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, models.NewValidationError("end_date must not be before start_date")
	}
	if in.TravelerCount < 1 {
		in.TravelerCount = 1
	}
	if len(in.Activities) > maxItineraryActivities {
		return nil, models.NewValidationError("Too many activities (max 100)")
	}
	if in.CommunityID == 0 {
		return nil, models.NewValidationError("community_id is required")
	}

	community, err := s.communityRepo.GetByID(ctx, in.CommunityID)
	if err != nil {
		return nil, err
	}
	membership, err := s.communityRepo.GetMembership(ctx, in.CommunityID, in.UserID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, models.NewForbiddenError("You must join the community before sharing an itinerary")
	}

	itinerary := &models.Itinerary{
		Title:         in.Title,
		Destination:   in.Destination,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		TravelerCount: in.TravelerCount,
		Status:        models.ItineraryStatusPlanning,
		UserID:        in.UserID,
		CommunityID:   in.CommunityID,
	}
	if err := s.itineraryRepo.Create(ctx, itinerary); err != nil {
		return nil, err
	}
	if len(in.Activities) > 0 {
		if err := s.itineraryRepo.ReplaceActivities(ctx, itinerary.ID, in.Activities); err != nil {
			return nil, err
		}
	}

	if s.notifications != nil {
		actor, err := s.userRepo.GetByID(ctx, in.UserID)
		if err == nil {
			_ = s.notifications.NotifyCommunityItinerary(ctx, actor, community, itinerary)
		}
	}

	return s.itineraryRepo.GetByID(ctx, itinerary.ID)
}

func (s *ItineraryService) GetItinerary(ctx context.Context, id uint) (*models.Itinerary, error) {
	return s.itineraryRepo.GetByID(ctx, id)
}

func (s *ItineraryService) ListCommunityItineraries(ctx context.Context, communityID uint, limit, offset int) ([]*models.Itinerary, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.itineraryRepo.GetByCommunityID(ctx, communityID, limit, offset)
}

func (s *ItineraryService) ListUserItineraries(ctx context.Context, userID uint, limit, offset int) ([]*models.Itinerary, error) {
	return s.itineraryRepo.GetByUserID(ctx, userID, limit, offset)
}

// UpdateItinerary edits a trip plan. Only the author may edit. Status can
// only advance: planning to upcoming to completed, never backwards.
func (s *ItineraryService) UpdateItinerary(ctx context.Context, in UpdateItineraryInput) (*models.Itinerary, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, in.ItineraryID)
	if err != nil {
		return nil, err
	}
	if itinerary.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own itineraries")
	}

	if in.Title != "" {
		itinerary.Title = in.Title
	}
	if in.Destination != "" {
		itinerary.Destination = in.Destination
	}
	if in.StartDate != nil {
		itinerary.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		itinerary.EndDate = *in.EndDate
	}
	if itinerary.EndDate.Before(itinerary.StartDate) {
		return nil, models.NewValidationError("end_date must not be before start_date")
	}
	if in.TravelerCount != nil {
		if *in.TravelerCount < 1 {
			return nil, models.NewValidationError("traveler_count must be at least 1")
		}
		itinerary.TravelerCount = *in.TravelerCount
	}
	if in.Status != nil {
		switch *in.Status {
		case models.ItineraryStatusPlanning, models.ItineraryStatusUpcoming, models.ItineraryStatusCompleted:
		default:
			return nil, models.NewValidationError("Invalid status")
		}
		if !models.ValidStatusTransition(itinerary.Status, *in.Status) {
			return nil, models.NewValidationError("Itineraries cannot move backwards in status")
		}
		itinerary.Status = *in.Status
	}

	if err := s.itineraryRepo.Update(ctx, itinerary); err != nil {
		return nil, err
	}

	if in.Activities != nil {
		if len(in.Activities) > maxItineraryActivities {
			return nil, models.NewValidationError("Too many activities (max 100)")
		}
		if err := s.itineraryRepo.ReplaceActivities(ctx, itinerary.ID, in.Activities); err != nil {
			return nil, err
		}
	}

	return s.itineraryRepo.GetByID(ctx, itinerary.ID)
}

func (s *ItineraryService) DeleteItinerary(ctx context.Context, userID, itineraryID uint) error {
	itinerary, err := s.itineraryRepo.GetByID(ctx, itineraryID)
	if err != nil {
		return err
	}
	if itinerary.UserID != userID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own itineraries")
		}
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own itineraries")
		}
	}
	return s.itineraryRepo.Delete(ctx, itineraryID)
}

package service

import (
	"context"
	"testing"
	"time"

	"wayfarer/internal/models"
)

func TestCreateItineraryValidation(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	owner := env.createUser(t)
	community := env.createCommunity(t, owner)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	_, err := env.itineraries.CreateItinerary(ctx, CreateItineraryInput{
		UserID:      owner.ID,
		CommunityID: community.ID,
		Title:       "Backwards trip",
		Destination: "Kyoto",
		StartDate:   end,
		EndDate:     start,
	})
	assertAppError(t, err, "VALIDATION_ERROR")

	_, err = env.itineraries.CreateItinerary(ctx, CreateItineraryInput{
		UserID:      owner.ID,
		CommunityID: community.ID,
		Title:       "",
		Destination: "Kyoto",
		StartDate:   start,
		EndDate:     end,
	})
	assertAppError(t, err, "VALIDATION_ERROR")
}

func TestCreateItineraryRequiresMembership(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	owner := env.createUser(t)
	outsider := env.createUser(t)
	community := env.createCommunity(t, owner)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	in := CreateItineraryInput{
		UserID:      outsider.ID,
		CommunityID: community.ID,
		Title:       "Golden week",
		Destination: "Kyoto",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 7),
	}

	_, err := env.itineraries.CreateItinerary(ctx, in)
	assertAppError(t, err, "FORBIDDEN")

	env.join(t, community, outsider)
	itinerary, err := env.itineraries.CreateItinerary(ctx, in)
	if err != nil {
		t.Fatalf("CreateItinerary failed: %v", err)
	}
	if itinerary.Status != models.ItineraryStatusPlanning {
		t.Errorf("new itinerary status = %s, want planning", itinerary.Status)
	}
	if itinerary.TravelerCount != 1 {
		t.Errorf("TravelerCount defaulted to %d, want 1", itinerary.TravelerCount)
	}

	// Members are told about the shared plan.
	got := env.notificationsFor(t, owner.ID)
	if len(got) != 1 || got[0].Type != models.NotificationTypeCommunityItinerary {
		t.Errorf("expected one community_itinerary notification, got %+v", got)
	}
}

func TestUpdateItineraryStatusOnlyAdvances(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	owner := env.createUser(t)
	community := env.createCommunity(t, owner)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	itinerary, err := env.itineraries.CreateItinerary(ctx, CreateItineraryInput{
		UserID:      owner.ID,
		CommunityID: community.ID,
		Title:       "Golden week",
		Destination: "Kyoto",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("CreateItinerary failed: %v", err)
	}

	upcoming := models.ItineraryStatusUpcoming
	got, err := env.itineraries.UpdateItinerary(ctx, UpdateItineraryInput{
		UserID:      owner.ID,
		ItineraryID: itinerary.ID,
		Status:      &upcoming,
	})
	if err != nil {
		t.Fatalf("UpdateItinerary failed: %v", err)
	}
	if got.Status != models.ItineraryStatusUpcoming {
		t.Errorf("status = %s", got.Status)
	}

	planning := models.ItineraryStatusPlanning
	_, err = env.itineraries.UpdateItinerary(ctx, UpdateItineraryInput{
		UserID:      owner.ID,
		ItineraryID: itinerary.ID,
		Status:      &planning,
	})
	assertAppError(t, err, "VALIDATION_ERROR")

	bogus := models.ItineraryStatus("cancelled")
	_, err = env.itineraries.UpdateItinerary(ctx, UpdateItineraryInput{
		UserID:      owner.ID,
		ItineraryID: itinerary.ID,
		Status:      &bogus,
	})
	assertAppError(t, err, "VALIDATION_ERROR")
}

func TestUpdateItineraryReplacesActivities(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	owner := env.createUser(t)
	community := env.createCommunity(t, owner)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	itinerary, err := env.itineraries.CreateItinerary(ctx, CreateItineraryInput{
		UserID:      owner.ID,
		CommunityID: community.ID,
		Title:       "Golden week",
		Destination: "Kyoto",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 7),
		Activities: []models.ItineraryActivity{
			{Day: 1, Position: 1, Name: "Fushimi Inari at dawn"},
			{Day: 1, Position: 2, Name: "Nishiki market"},
		},
	})
	if err != nil {
		t.Fatalf("CreateItinerary failed: %v", err)
	}
	if len(itinerary.Activities) != 2 {
		t.Fatalf("activities = %d, want 2", len(itinerary.Activities))
	}

	got, err := env.itineraries.UpdateItinerary(ctx, UpdateItineraryInput{
		UserID:      owner.ID,
		ItineraryID: itinerary.ID,
		Activities: []models.ItineraryActivity{
			{Day: 2, Position: 1, Name: "Arashiyama bamboo grove"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateItinerary failed: %v", err)
	}
	if len(got.Activities) != 1 || got.Activities[0].Name != "Arashiyama bamboo grove" {
		t.Errorf("activities after update = %+v", got.Activities)
	}
}

func TestUpdateItineraryOwnership(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	owner := env.createUser(t)
	other := env.createUser(t)
	community := env.createCommunity(t, owner)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	itinerary, err := env.itineraries.CreateItinerary(ctx, CreateItineraryInput{
		UserID:      owner.ID,
		CommunityID: community.ID,
		Title:       "Golden week",
		Destination: "Kyoto",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("CreateItinerary failed: %v", err)
	}

	_, err = env.itineraries.UpdateItinerary(ctx, UpdateItineraryInput{
		UserID:      other.ID,
		ItineraryID: itinerary.ID,
		Title:       "hijacked",
	})
	assertAppError(t, err, "FORBIDDEN")
}

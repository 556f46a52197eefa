package server

import (
	"fmt"
	"testing"

	"wayfarer/internal/models"

	"github.com/gofiber/fiber/v2"
)

func authToken(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	token, err := s.generateToken(user)
	if err != nil {
		t.Fatalf("generateToken failed: %v", err)
	}
	return token
}

func TestCreateCommunityEndpoint(t *testing.T) {
	s := setupHandlerTest(t)
	app := fiber.New()
	s.SetupRoutes(app)

	creator := createHandlerTestUser(t, s.db, false)
	token := authToken(t, s, creator)

	status, body := doJSON(t, app, "POST", "/api/communities", CreateCommunityRequest{
		Name:        "Alpine Trails",
		Slug:        " Alpine-Trails ",
		Description: "Hut-to-hut hiking in the Alps",
	}, token)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d (body: %v)", status, body)
	}
	if body["slug"] != "alpine-trails" {
		t.Errorf("slug = %v, want normalized alpine-trails", body["slug"])
	}
	if body["members_count"] != float64(1) {
		t.Errorf("members_count = %v, want 1", body["members_count"])
	}

	status, body = doJSON(t, app, "GET", "/api/communities/slug/alpine-trails", nil, "")
	if status != fiber.StatusOK || body["name"] != "Alpine Trails" {
		t.Errorf("slug lookup: status %d, body %v", status, body)
	}

	status, _ = doJSON(t, app, "POST", "/api/communities", CreateCommunityRequest{
		Name: "Duplicate",
		Slug: "alpine-trails",
	}, token)
	if status != fiber.StatusConflict {
		t.Errorf("duplicate slug status = %d, want 409", status)
	}
}

func TestCommunityEndpointsRequireAuth(t *testing.T) {
	s := setupHandlerTest(t)
	app := fiber.New()
	s.SetupRoutes(app)

	status, _ := doJSON(t, app, "POST", "/api/communities", CreateCommunityRequest{
		Name: "No token", Slug: "no-token",
	}, "")
	if status != fiber.StatusUnauthorized {
		t.Errorf("unauthenticated create status = %d, want 401", status)
	}
}

func TestGetCommunityRejectsBadID(t *testing.T) {
	s := setupHandlerTest(t)
	app := fiber.New()
	s.SetupRoutes(app)

	status, _ := doJSON(t, app, "GET", "/api/communities/abc", nil, "")
	if status != fiber.StatusBadRequest {
		t.Errorf("non-numeric id status = %d, want 400", status)
	}

	status, _ = doJSON(t, app, "GET", "/api/communities/999", nil, "")
	if status != fiber.StatusNotFound {
		t.Errorf("missing community status = %d, want 404", status)
	}
}

func TestJoinAndLeaveCommunityEndpoints(t *testing.T) {
	s := setupHandlerTest(t)
	app := fiber.New()
	s.SetupRoutes(app)

	owner := createHandlerTestUser(t, s.db, false)
	member := createHandlerTestUser(t, s.db, false)
	ownerToken := authToken(t, s, owner)
	memberToken := authToken(t, s, member)

	status, body := doJSON(t, app, "POST", "/api/communities", CreateCommunityRequest{
		Name: "Island Hoppers", Slug: "island-hoppers",
	}, ownerToken)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	communityID := uint(body["id"].(float64))

	joinPath := fmt.Sprintf("/api/communities/%d/join", communityID)
	status, body = doJSON(t, app, "POST", joinPath, nil, memberToken)
	if status != fiber.StatusOK {
		t.Fatalf("join status = %d (body: %v)", status, body)
	}
	if body["members_count"] != float64(2) {
		t.Errorf("members_count after join = %v, want 2", body["members_count"])
	}

	status, _ = doJSON(t, app, "DELETE", joinPath, nil, memberToken)
	if status != fiber.StatusOK {
		t.Errorf("leave status = %d, want 200", status)
	}

	// The owner cannot walk away from their own community.
	status, _ = doJSON(t, app, "DELETE", joinPath, nil, ownerToken)
	if status != fiber.StatusForbidden {
		t.Errorf("owner leave status = %d, want 403", status)
	}
}

func TestSetCommunityRulesEndpoint(t *testing.T) {
	s := setupHandlerTest(t)
	app := fiber.New()
	s.SetupRoutes(app)

	owner := createHandlerTestUser(t, s.db, false)
	member := createHandlerTestUser(t, s.db, false)
	ownerToken := authToken(t, s, owner)
	memberToken := authToken(t, s, member)

	status, body := doJSON(t, app, "POST", "/api/communities", CreateCommunityRequest{
		Name: "Slow Travel", Slug: "slow-travel",
	}, ownerToken)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	communityID := uint(body["id"].(float64))

	rulesPath := fmt.Sprintf("/api/communities/%d/rules", communityID)
	rules := []CommunityRuleRequest{
		{Title: "Be kind", Body: "No gatekeeping destinations."},
		{Title: "No affiliate spam"},
	}

	status, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/communities/%d/join", communityID), nil, memberToken)
	if status != fiber.StatusOK {
		t.Fatalf("join status = %d", status)
	}
	status, _ = doJSON(t, app, "PUT", rulesPath, rules, memberToken)
	if status != fiber.StatusForbidden {
		t.Errorf("member rules status = %d, want 403", status)
	}

	status, body = doJSON(t, app, "PUT", rulesPath, rules, ownerToken)
	if status != fiber.StatusOK {
		t.Fatalf("owner rules status = %d (body: %v)", status, body)
	}
	got, _ := body["rules"].([]any)
	if len(got) != 2 {
		t.Errorf("rules = %v, want 2 entries", body["rules"])
	}
}

func TestUpdateCommunityEndpointIgnoresSlugChanges(t *testing.T) {
	s := setupHandlerTest(t)
	app := fiber.New()
	s.SetupRoutes(app)

	owner := createHandlerTestUser(t, s.db, false)
	token := authToken(t, s, owner)

	status, body := doJSON(t, app, "POST", "/api/communities", CreateCommunityRequest{
		Name: "Rail Nomads", Slug: "rail-nomads",
	}, token)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	communityID := uint(body["id"].(float64))

	status, body = doJSON(t, app, "PUT", fmt.Sprintf("/api/communities/%d", communityID), map[string]string{
		"name": "Rail Nomads Europe",
		"slug": "hijacked-slug",
	}, token)
	if status != fiber.StatusOK {
		t.Fatalf("update status = %d (body: %v)", status, body)
	}
	if body["name"] != "Rail Nomads Europe" {
		t.Errorf("name = %v", body["name"])
	}
	if body["slug"] != "rail-nomads" {
		t.Errorf("slug = %v, must stay rail-nomads", body["slug"])
	}
}

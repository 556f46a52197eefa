package repository

import (
	"context"
	"testing"

	"wayfarer/internal/models"
)

func TestCommunityRepositoryGetBySlug(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	community := createTestCommunity(t, db, owner)

	got, err := repo.GetBySlug(ctx, community.Slug)
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if got == nil || got.ID != community.ID {
		t.Errorf("expected community %d, got %+v", community.ID, got)
	}

	// Missing slug is (nil, nil) so slug availability checks stay cheap.
	got, err = repo.GetBySlug(ctx, "no-such-place")
	if err != nil {
		t.Fatalf("GetBySlug for missing slug errored: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing slug, got %+v", got)
	}
}

func TestCommunityRepositoryCreateWithOwner(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	community := &models.Community{
		Name:            "Slow Travel",
		Slug:            "slow-travel",
		CreatedByUserID: &owner.ID,
	}
	if err := repo.CreateWithOwner(ctx, community, owner.ID); err != nil {
		t.Fatalf("CreateWithOwner failed: %v", err)
	}

	membership, err := repo.GetMembership(ctx, community.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	if membership == nil || membership.Role != models.CommunityMembershipRoleOwner {
		t.Fatalf("owner membership = %+v", membership)
	}

	// A failed create rolls back as one unit: the taken slug aborts the
	// transaction and no stray membership row is left behind.
	var before int64
	if err := db.Model(&models.CommunityMembership{}).Count(&before).Error; err != nil {
		t.Fatalf("membership count failed: %v", err)
	}
	dup := &models.Community{Name: "Slow Travel Again", Slug: "slow-travel", CreatedByUserID: &owner.ID}
	if err := repo.CreateWithOwner(ctx, dup, owner.ID); err == nil {
		t.Fatal("duplicate slug should fail")
	}
	var after int64
	if err := db.Model(&models.CommunityMembership{}).Count(&after).Error; err != nil {
		t.Fatalf("membership count failed: %v", err)
	}
	if after != before {
		t.Errorf("membership count changed from %d to %d on failed create", before, after)
	}
}

func TestCommunityRepositoryMembership(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	member := createTestUser(t, db)
	community := createTestCommunity(t, db, owner)

	if err := repo.AddMember(ctx, community.ID, owner.ID, models.CommunityMembershipRoleOwner); err != nil {
		t.Fatalf("AddMember owner failed: %v", err)
	}
	if err := repo.AddMember(ctx, community.ID, member.ID, models.CommunityMembershipRoleMember); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	// Joining twice is a no-op.
	if err := repo.AddMember(ctx, community.ID, member.ID, models.CommunityMembershipRoleMember); err != nil {
		t.Fatalf("repeat AddMember failed: %v", err)
	}

	count, err := repo.CountMembers(ctx, community.ID)
	if err != nil {
		t.Fatalf("CountMembers failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountMembers = %d, want 2", count)
	}

	membership, err := repo.GetMembership(ctx, community.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	if membership == nil || membership.Role != models.CommunityMembershipRoleOwner {
		t.Errorf("owner membership = %+v", membership)
	}

	ids, err := repo.ListMemberIDs(ctx, community.ID)
	if err != nil {
		t.Fatalf("ListMemberIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ListMemberIDs returned %d ids, want 2", len(ids))
	}

	if err := repo.RemoveMember(ctx, community.ID, member.ID); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	membership, err = repo.GetMembership(ctx, community.ID, member.ID)
	if err != nil {
		t.Fatalf("GetMembership after removal failed: %v", err)
	}
	if membership != nil {
		t.Error("membership should be gone after RemoveMember")
	}
}

func TestCommunityRepositoryReplaceRules(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	community := createTestCommunity(t, db, owner)

	first := []models.CommunityRule{
		{Title: "Be respectful", Position: 99},
		{Title: "No spam", Position: 0},
	}
	if err := repo.ReplaceRules(ctx, community.ID, first); err != nil {
		t.Fatalf("ReplaceRules failed: %v", err)
	}

	got, err := repo.GetByID(ctx, community.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(got.Rules))
	}
	// Positions are normalized to list order regardless of input values.
	if got.Rules[0].Title != "Be respectful" || got.Rules[0].Position != 1 {
		t.Errorf("rule 1 = %+v", got.Rules[0])
	}
	if got.Rules[1].Title != "No spam" || got.Rules[1].Position != 2 {
		t.Errorf("rule 2 = %+v", got.Rules[1])
	}

	// Replacement is total, not additive.
	if err := repo.ReplaceRules(ctx, community.ID, []models.CommunityRule{{Title: "Keep it travel-related"}}); err != nil {
		t.Fatalf("second ReplaceRules failed: %v", err)
	}
	got, err = repo.GetByID(ctx, community.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Rules) != 1 || got.Rules[0].Title != "Keep it travel-related" {
		t.Errorf("rules after replacement = %+v", got.Rules)
	}

	// Empty list clears everything.
	if err := repo.ReplaceRules(ctx, community.ID, nil); err != nil {
		t.Fatalf("clearing rules failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.CommunityRule{}).Where("community_id = ?", community.ID).Count(&count).Error; err != nil {
		t.Fatalf("rule count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rules, found %d", count)
	}
}

func TestCommunityRepositoryListForUser(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	member := createTestUser(t, db)
	joined := createTestCommunity(t, db, owner)
	createTestCommunity(t, db, owner)

	if err := repo.AddMember(ctx, joined.ID, member.ID, models.CommunityMembershipRoleMember); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	communities, err := repo.ListForUser(ctx, member.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(communities) != 1 || communities[0].ID != joined.ID {
		t.Errorf("expected only the joined community, got %d rows", len(communities))
	}
	if communities[0].MembersCount != 1 {
		t.Errorf("MembersCount = %d, want 1", communities[0].MembersCount)
	}
}

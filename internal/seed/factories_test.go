package seed

import (
	"testing"

	"wayfarer/internal/database"
	"wayfarer/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestFactoryDryRunSkipsWrites(t *testing.T) {
	db := setupSeedTestDB(t)
	factory := NewFactory(db, SeedOptions{DryRun: true, SkipBcrypt: true})

	user, err := factory.CreateUser()
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("dry-run user should get a synthetic ID")
	}

	community, err := factory.CreateCommunity(user)
	if err != nil {
		t.Fatalf("CreateCommunity failed: %v", err)
	}
	if community.ID == 0 {
		t.Error("dry-run community should get a synthetic ID")
	}
	if community.ID == user.ID {
		t.Error("synthetic IDs should be distinct")
	}

	post, err := factory.CreatePost(user, community)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.ID == 0 {
		t.Error("dry-run post should get a synthetic ID")
	}

	for _, check := range []struct {
		name  string
		model any
	}{
		{"users", &models.User{}},
		{"communities", &models.Community{}},
		{"posts", &models.Post{}},
	} {
		var n int64
		if err := db.Model(check.model).Count(&n).Error; err != nil {
			t.Fatalf("failed to count %s: %v", check.name, err)
		}
		if n != 0 {
			t.Errorf("dry run wrote %d rows to %s", n, check.name)
		}
	}
}

func TestFactoryCreateUserOverrides(t *testing.T) {
	db := setupSeedTestDB(t)
	factory := NewFactory(db, SeedOptions{SkipBcrypt: true})

	user, err := factory.CreateUser(func(u *models.User) {
		u.Username = "fixedname"
		u.Email = "fixed@example.com"
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Username != "fixedname" || user.Email != "fixed@example.com" {
		t.Errorf("overrides not applied: %s <%s>", user.Username, user.Email)
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.Password != "password123" {
		t.Error("SkipBcrypt should store the plaintext demo password")
	}
}

func TestFactoryCreateCommunityAddsOwnerMembership(t *testing.T) {
	db := setupSeedTestDB(t)
	factory := NewFactory(db, SeedOptions{SkipBcrypt: true})

	owner, err := factory.CreateUser()
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	community, err := factory.CreateCommunity(owner)
	if err != nil {
		t.Fatalf("CreateCommunity failed: %v", err)
	}

	var membership models.CommunityMembership
	if err := db.Where("community_id = ? AND user_id = ?", community.ID, owner.ID).
		First(&membership).Error; err != nil {
		t.Fatalf("owner membership missing: %v", err)
	}
	if membership.Role != models.CommunityMembershipRoleOwner {
		t.Errorf("owner role = %s", membership.Role)
	}

	// Repeating the membership insert is a no-op.
	if err := factory.CreateMembership(owner, community, models.CommunityMembershipRoleMember); err != nil {
		t.Fatalf("duplicate membership errored: %v", err)
	}
	var count int64
	if err := db.Model(&models.CommunityMembership{}).
		Where("community_id = ?", community.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count memberships: %v", err)
	}
	if count != 1 {
		t.Errorf("memberships = %d, want 1", count)
	}
	if err := db.Where("community_id = ? AND user_id = ?", community.ID, owner.ID).
		First(&membership).Error; err != nil {
		t.Fatalf("failed to reload membership: %v", err)
	}
	if membership.Role != models.CommunityMembershipRoleOwner {
		t.Error("duplicate join must not overwrite the owner role")
	}
}

func TestFactoryCreateLikeIsIdempotent(t *testing.T) {
	db := setupSeedTestDB(t)
	factory := NewFactory(db, SeedOptions{SkipBcrypt: true})

	user, err := factory.CreateUser()
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	community, err := factory.CreateCommunity(user)
	if err != nil {
		t.Fatalf("CreateCommunity failed: %v", err)
	}
	post, err := factory.CreatePost(user, community)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := factory.CreateLike(user, models.LikeTargetPost, post.ID); err != nil {
			t.Fatalf("CreateLike failed: %v", err)
		}
	}
	var count int64
	if err := db.Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", models.LikeTargetPost, post.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count likes: %v", err)
	}
	if count != 1 {
		t.Errorf("likes = %d, want 1", count)
	}
}

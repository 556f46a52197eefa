package repository

import (
	"fmt"
	"testing"

	"wayfarer/internal/database"
	"wayfarer/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
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

var fixtureSeq int

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	fixtureSeq++
	user := &models.User{
		Username: fmt.Sprintf("traveler%d", fixtureSeq),
		Email:    fmt.Sprintf("traveler%d@example.com", fixtureSeq),
		Password: "hashed-password",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestCommunity(t *testing.T, db *gorm.DB, owner *models.User) *models.Community {
	t.Helper()
	fixtureSeq++
	community := &models.Community{
		Name:            fmt.Sprintf("Community %d", fixtureSeq),
		Slug:            fmt.Sprintf("community-%d", fixtureSeq),
		Description:     "A place to swap travel notes",
		CreatedByUserID: &owner.ID,
	}
	if err := db.Create(community).Error; err != nil {
		t.Fatalf("failed to create test community: %v", err)
	}
	return community
}

func createTestPost(t *testing.T, db *gorm.DB, user *models.User, community *models.Community) *models.Post {
	t.Helper()
	fixtureSeq++
	post := &models.Post{
		Title:       fmt.Sprintf("Trip report %d", fixtureSeq),
		Content:     "Three weeks across the coast.",
		UserID:      user.ID,
		CommunityID: community.ID,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

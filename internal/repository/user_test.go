package repository

import (
	"context"
	"errors"
	"testing"

	"wayfarer/internal/models"
)

func TestUserRepositoryGetByID(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db)

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Username != user.Username {
		t.Errorf("got username %q, want %q", got.Username, user.Username)
	}

	_, err = repo.GetByID(ctx, 9999)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND error, got %v", err)
	}
}

func TestUserRepositoryGetByEmailMissingIsNil(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db)

	got, err := repo.GetByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Errorf("expected user %d, got %+v", user.ID, got)
	}

	// Absence is (nil, nil), not an error. Signup relies on this.
	got, err = repo.GetByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetByEmail for missing user errored: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing email, got %+v", got)
	}
}

func TestUserRepositorySetBanned(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db)

	if err := repo.SetBanned(ctx, user.ID, true); err != nil {
		t.Fatalf("SetBanned failed: %v", err)
	}

	var banned bool
	if err := db.Model(&models.User{}).Select("is_banned").Where("id = ?", user.ID).Scan(&banned).Error; err != nil {
		t.Fatalf("failed to read is_banned: %v", err)
	}
	if !banned {
		t.Error("user should be banned")
	}

	if err := repo.SetBanned(ctx, 9999, true); err == nil {
		t.Error("expected error banning a missing user")
	}
}

func TestUserRepositoryDeleteIsSoft(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db)

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got, err := repo.GetByEmail(ctx, user.Email); err != nil || got != nil {
		t.Errorf("deleted user still visible: (%+v, %v)", got, err)
	}

	// The row survives for moderation audits.
	var count int64
	if err := db.Unscoped().Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("unscoped count failed: %v", err)
	}
	if count != 1 {
		t.Error("soft delete should keep the row")
	}
}

func TestUserRepositoryList(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		createTestUser(t, db)
	}

	users, err := repo.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	users, err = repo.List(ctx, 10, 2)
	if err != nil {
		t.Fatalf("List with offset failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user after offset, got %d", len(users))
	}
}

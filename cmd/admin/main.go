// Package main provides admin management utilities for Wayfarer.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"wayfarer/internal/config"
	"wayfarer/internal/database"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"
	"wayfarer/internal/service"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go promote <user_id>      - Promote user to admin")
		fmt.Println("  go run ./cmd/admin/main.go demote <user_id>       - Demote user from admin")
		fmt.Println("  go run ./cmd/admin/main.go unban <user_id>        - Lift a suspension")
		fmt.Println("  go run ./cmd/admin/main.go list-admins            - List all admins")
		fmt.Println("  go run ./cmd/admin/main.go purge-notifications    - Delete notifications past retention")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		requireUserArg("promote")
		setAdmin(db, os.Args[2], true)

	case "demote":
		requireUserArg("demote")
		setAdmin(db, os.Args[2], false)

	case "unban":
		requireUserArg("unban")
		unban(db, os.Args[2])

	case "list-admins":
		listAdmins(db)

	case "purge-notifications":
		purgeNotifications(db, cfg)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func requireUserArg(cmd string) {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: go run ./cmd/admin/main.go %s <user_id>\n", cmd)
		os.Exit(1)
	}
}

func loadUser(db *gorm.DB, userID string) models.User {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}
	return user
}

func setAdmin(db *gorm.DB, userID string, isAdmin bool) {
	user := loadUser(db, userID)

	if user.IsAdmin == isAdmin {
		state := "is not"
		if isAdmin {
			state = "is already"
		}
		fmt.Printf("User %s (ID: %d) %s an admin\n", user.Username, user.ID, state)
		return
	}

	user.IsAdmin = isAdmin
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	action := "demoted"
	if isAdmin {
		action = "promoted"
	}
	fmt.Printf("Successfully %s %s (ID: %d)\n", action, user.Username, user.ID)
}

func unban(db *gorm.DB, userID string) {
	user := loadUser(db, userID)

	if !user.IsBanned {
		fmt.Printf("User %s (ID: %d) is not banned\n", user.Username, user.ID)
		return
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_banned", false).Error; err != nil {
		log.Fatalf("Failed to unban user: %v", err)
	}
	fmt.Printf("Successfully unbanned %s (ID: %d)\n", user.Username, user.ID)
}

func purgeNotifications(db *gorm.DB, cfg *config.Config) {
	notifications := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewCommunityRepository(db),
		nil,
		cfg.NotificationRetentionDays,
	)

	purged, err := notifications.PurgeExpired(context.Background())
	if err != nil {
		log.Fatalf("Failed to purge notifications: %v", err)
	}
	fmt.Printf("Purged %d notifications older than %d days\n", purged, cfg.NotificationRetentionDays)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("is_admin = ?", true).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\nCurrent Admins:")
	fmt.Println("---------------------------------------")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
	fmt.Println("---------------------------------------")
}

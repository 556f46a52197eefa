package database

import "wayfarer/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Community{},
		&models.CommunityRule{},
		&models.CommunityMembership{},
		&models.Post{},
		&models.Review{},
		&models.Comment{},
		&models.Like{},
		&models.Itinerary{},
		&models.ItineraryActivity{},
		&models.Notification{},
		&models.Report{},
	}
}

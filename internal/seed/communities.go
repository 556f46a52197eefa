package seed

import (
	"fmt"

	"wayfarer/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInCommunity is a permanent system community.
type BuiltInCommunity struct {
	Name        string
	Slug        string
	Description string
}

// BuiltInCommunities defines the permanent system communities every
// deployment starts with.
var BuiltInCommunities = []BuiltInCommunity{
	{Name: "The Departure Lounge", Slug: "general", Description: "General travel talk and introductions."},
	{Name: "Backpacking Southeast Asia", Slug: "sea-backpacking", Description: "Routes, hostels, and street food across Southeast Asia."},
	{Name: "Europe by Rail", Slug: "eurorail", Description: "Interrail and Eurail itineraries, passes, and tips."},
	{Name: "Japan Travel", Slug: "japan", Description: "From Tokyo neon to Kyoto temples."},
	{Name: "Patagonia Trekkers", Slug: "patagonia", Description: "Trekking the far south of Chile and Argentina."},
	{Name: "Solo Travel", Slug: "solo", Description: "Going it alone, safely and happily."},
	{Name: "Budget Wanderers", Slug: "budget", Description: "Seeing more for less."},
	{Name: "Digital Nomads", Slug: "nomads", Description: "Working from anywhere with decent wifi."},
	{Name: "Family Adventures", Slug: "family", Description: "Traveling with kids without losing your mind."},
	{Name: "Food & Travel", Slug: "foodie", Description: "Eating your way around the world."},
	{Name: "National Parks", Slug: "national-parks", Description: "Hikes, permits, and campsite beta."},
	{Name: "Island Hopping & Diving", Slug: "diving", Description: "Reefs, wrecks, and remote islands."},
}

// defaultRules are applied to built-in communities that have none yet.
var defaultRules = []struct {
	Title string
	Body  string
}{
	{Title: "Be respectful", Body: "Treat fellow travelers the way you'd want to be treated on the road."},
	{Title: "No spam or self-promotion", Body: "Affiliate links and undisclosed promotion are removed."},
	{Title: "Keep it travel-related", Body: "Off-topic posts belong in The Departure Lounge."},
}

// Communities seeds the permanent built-in communities and their
// default rules. Safe to run repeatedly.
func Communities(db *gorm.DB) error {
	for _, item := range BuiltInCommunities {
		err := db.Transaction(func(tx *gorm.DB) error {
			community := models.Community{
				Name:        item.Name,
				Slug:        item.Slug,
				Description: item.Description,
			}

			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
			}).Create(&community).Error; err != nil {
				return err
			}

			if community.ID == 0 {
				if err := tx.Where("slug = ?", item.Slug).First(&community).Error; err != nil {
					return err
				}
			}

			var ruleCount int64
			if err := tx.Model(&models.CommunityRule{}).
				Where("community_id = ?", community.ID).
				Count(&ruleCount).Error; err != nil {
				return err
			}
			if ruleCount > 0 {
				return nil
			}

			for i, rule := range defaultRules {
				if err := tx.Create(&models.CommunityRule{
					CommunityID: community.ID,
					Position:    i + 1,
					Title:       rule.Title,
					Body:        rule.Body,
				}).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed built-in community %s: %w", item.Slug, err)
		}
	}

	return nil
}

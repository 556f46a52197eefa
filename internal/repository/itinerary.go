package repository

import (
	"context"
	"errors"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// ItineraryRepository defines persistence operations for itineraries and
// their activity lists.
type ItineraryRepository interface {
	Create(ctx context.Context, itinerary *models.Itinerary) error
	GetByID(ctx context.Context, id uint) (*models.Itinerary, error)
	GetByCommunityID(ctx context.Context, communityID uint, limit, offset int) ([]*models.Itinerary, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Itinerary, error)
	Update(ctx context.Context, itinerary *models.Itinerary) error
	Delete(ctx context.Context, id uint) error
	ReplaceActivities(ctx context.Context, itineraryID uint, activities []models.ItineraryActivity) error
}

type itineraryRepository struct {
	db *gorm.DB
}

// NewItineraryRepository creates a new itinerary repository
func NewItineraryRepository(db *gorm.DB) ItineraryRepository {
	return &itineraryRepository{db: db}
}

func (r *itineraryRepository) Create(ctx context.Context, itinerary *models.Itinerary) error {
	return r.db.WithContext(ctx).Create(itinerary).Error
}

func (r *itineraryRepository) GetByID(ctx context.Context, id uint) (*models.Itinerary, error) {
	var itinerary models.Itinerary
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("day ASC, position ASC")
		}).
		First(&itinerary, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Itinerary", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &itinerary, nil
}

func (r *itineraryRepository) GetByCommunityID(ctx context.Context, communityID uint, limit, offset int) ([]*models.Itinerary, error) {
	var itineraries []*models.Itinerary
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("community_id = ?", communityID).
		Order("start_date ASC").
		Limit(limit).
		Offset(offset).
		Find(&itineraries).Error
	return itineraries, err
}

func (r *itineraryRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Itinerary, error) {
	var itineraries []*models.Itinerary
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("start_date ASC").
		Limit(limit).
		Offset(offset).
		Find(&itineraries).Error
	return itineraries, err
}

func (r *itineraryRepository) Update(ctx context.Context, itinerary *models.Itinerary) error {
	return r.db.WithContext(ctx).Omit("Activities").Save(itinerary).Error
}

func (r *itineraryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("itinerary_id = ?", id).Delete(&models.ItineraryActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("itinerary_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Itinerary{}, id).Error
	})
}

// ReplaceActivities swaps an itinerary's full activity list in one
// transaction. Positions are normalized per day in the order given.
func (r *itineraryRepository) ReplaceActivities(ctx context.Context, itineraryID uint, activities []models.ItineraryActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("itinerary_id = ?", itineraryID).Delete(&models.ItineraryActivity{}).Error; err != nil {
			return err
		}
		positions := map[int]int{}
		for i := range activities {
			activities[i].ID = 0
			activities[i].ItineraryID = itineraryID
			if activities[i].Day < 1 {
				activities[i].Day = 1
			}
			positions[activities[i].Day]++
			activities[i].Position = positions[activities[i].Day]
		}
		if len(activities) == 0 {
			return nil
		}
		return tx.Create(&activities).Error
	})
}

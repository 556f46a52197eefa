// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"wayfarer/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedOptions tune factory behavior.
type SeedOptions struct {
	// DryRun skips all DB writes and assigns synthetic IDs instead.
	DryRun bool
	// SkipBcrypt stores a plaintext password to speed up large seeds.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for demo data
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:    fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:       gofakeit.Email(),
		DisplayName: gofakeit.Name(),
		Bio:         gofakeit.Sentence(10),
		Avatar:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCommunity constructs and persists a travel community owned by
// the given user, including the owner membership.
func (f *Factory) CreateCommunity(owner *models.User, overrides ...func(*models.Community)) (*models.Community, error) {
	city := gofakeit.City()
	community := &models.Community{
		Name:            fmt.Sprintf("%s Travelers", city),
		Slug:            fmt.Sprintf("%s-%d", gofakeit.Word(), gofakeit.Number(10, 99)),
		Description:     fmt.Sprintf("Trips, tips, and meetups around %s.", city),
		Avatar:          fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		CreatedByUserID: &owner.ID,
	}

	for _, override := range overrides {
		override(community)
	}

	if f.opts.DryRun {
		f.nextID++
		community.ID = f.nextID
		log.Printf("[dry-run] CreateCommunity: %s (%s)", community.Name, community.Slug)
		return community, nil
	}

	if err := f.db.Create(community).Error; err != nil {
		return nil, err
	}
	if err := f.CreateMembership(owner, community, models.CommunityMembershipRoleOwner); err != nil {
		return nil, err
	}
	return community, nil
}

// CreateMembership adds a user to a community with the given role.
// Joining twice is a no-op.
func (f *Factory) CreateMembership(user *models.User, community *models.Community, role models.CommunityMembershipRole) error {
	if f.opts.DryRun {
		return nil
	}
	membership := &models.CommunityMembership{
		CommunityID: community.ID,
		UserID:      user.ID,
		Role:        role,
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(membership).Error
}

// BuildPost constructs a post struct with a realistic created_at spread
// but does not persist it. Useful for batching.
func (f *Factory) BuildPost(user *models.User, community *models.Community, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:       gofakeit.Sentence(6),
		Content:     gofakeit.Paragraph(1, 3, 6, "\n"),
		UserID:      user.ID,
		CommunityID: community.ID,
		CreatedAt:   f.spreadTimestamp(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample post in the community.
func (f *Factory) CreatePost(user *models.User, community *models.Community, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, community, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: user=%d community=%d title=%q", post.UserID, post.CommunityID, post.Title)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.CreateInBatches(&posts, 200).Error
}

// CreateReview constructs and persists a place review in the community.
func (f *Factory) CreateReview(user *models.User, community *models.Community, overrides ...func(*models.Review)) (*models.Review, error) {
	place := fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country())
	review := &models.Review{
		Title:       fmt.Sprintf("My take on %s", place),
		Content:     gofakeit.Paragraph(1, 4, 6, "\n"),
		PlaceName:   place,
		Rating:      gofakeit.Number(1, 5),
		UserID:      user.ID,
		CommunityID: community.ID,
		CreatedAt:   f.spreadTimestamp(),
	}

	for _, override := range overrides {
		override(review)
	}

	if f.opts.DryRun {
		f.nextID++
		review.ID = f.nextID
		return review, nil
	}

	if err := f.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// CreatePostComment persists a comment on a post. Pass a parent to
// create a reply.
func (f *Factory) CreatePostComment(user *models.User, post *models.Post, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  &post.ID,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReviewComment persists a comment on a review.
func (f *Factory) CreateReviewComment(user *models.User, review *models.Review, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:  gofakeit.Sentence(8),
		UserID:   user.ID,
		ReviewID: &review.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from the user on the given target.
// Duplicate likes are ignored.
func (f *Factory) CreateLike(user *models.User, targetType models.LikeTarget, targetID uint) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.Like{
		UserID:     user.ID,
		TargetType: targetType,
		TargetID:   targetID,
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateItinerary persists a trip plan with a few activities.
func (f *Factory) CreateItinerary(user *models.User, community *models.Community, overrides ...func(*models.Itinerary)) (*models.Itinerary, error) {
	destination := fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country())
	start := time.Now().AddDate(0, 0, f.rng.Intn(120)+7)
	days := f.rng.Intn(10) + 2

	itinerary := &models.Itinerary{
		Title:         fmt.Sprintf("%d days in %s", days, destination),
		Destination:   destination,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, days-1),
		TravelerCount: f.rng.Intn(5) + 1,
		Status:        models.ItineraryStatusPlanning,
		UserID:        user.ID,
		CommunityID:   community.ID,
	}

	for day := 1; day <= days && day <= 4; day++ {
		for pos := 1; pos <= f.rng.Intn(3)+1; pos++ {
			itinerary.Activities = append(itinerary.Activities, models.ItineraryActivity{
				Day:      day,
				Position: pos,
				Name:     gofakeit.Sentence(3),
				Notes:    gofakeit.Sentence(6),
			})
		}
	}

	for _, override := range overrides {
		override(itinerary)
	}

	if f.opts.DryRun {
		f.nextID++
		itinerary.ID = f.nextID
		return itinerary, nil
	}

	if err := f.db.Create(itinerary).Error; err != nil {
		return nil, err
	}
	return itinerary, nil
}

// spreadTimestamp returns a created_at up to MaxDays in the past so
// seeded feeds don't all share one timestamp.
func (f *Factory) spreadTimestamp() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

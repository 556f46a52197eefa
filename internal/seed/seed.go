package seed

import (
	"fmt"
	"log"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	SkipBcrypt  bool
}

// Seed populates the database with demo travel data: users spread
// across the built-in communities with posts, reviews, comments, likes
// and a handful of itineraries.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	if err := Communities(db); err != nil {
		return fmt.Errorf("failed to seed built-in communities: %w", err)
	}

	var communities []*models.Community
	if err := db.Order("id ASC").Find(&communities).Error; err != nil {
		return fmt.Errorf("failed to load communities: %w", err)
	}
	log.Printf("%d communities available", len(communities))

	factory := NewFactory(db, SeedOptions{SkipBcrypt: opts.SkipBcrypt})

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d demo users created", len(users))

	if err := joinCommunities(factory, users, communities); err != nil {
		return fmt.Errorf("failed to create memberships: %w", err)
	}

	posts, err := createPosts(factory, users, communities, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	reviews, err := createReviews(factory, users, communities, opts.NumPosts/4)
	if err != nil {
		return fmt.Errorf("failed to create reviews: %w", err)
	}
	log.Printf("%d reviews created", len(reviews))

	if err := createEngagement(factory, users, posts, reviews); err != nil {
		return fmt.Errorf("failed to create comments and likes: %w", err)
	}

	if err := createItineraries(factory, users, communities, len(users)/4+1); err != nil {
		return fmt.Errorf("failed to create itineraries: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE notifications, reports, likes, comments, itinerary_activities,
		itineraries, reviews, posts, community_rules, community_memberships,
		communities, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// A few fixed accounts make manual testing easier.
	if count >= 2 {
		for _, name := range []string{"marco", "amelia"} {
			username := name
			user, err := factory.CreateUser(func(u *models.User) {
				u.Username = username
				u.Email = fmt.Sprintf("%s@example.com", username)
				u.Bio = "Always planning the next trip."
			})
			if err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

func joinCommunities(factory *Factory, users []*models.User, communities []*models.Community) error {
	if len(communities) == 0 {
		return nil
	}
	for _, user := range users {
		// Every user joins 1-4 communities.
		joins := factory.rng.Intn(4) + 1
		for j := 0; j < joins; j++ {
			community := communities[factory.rng.Intn(len(communities))]
			if err := factory.CreateMembership(user, community, models.CommunityMembershipRoleMember); err != nil {
				return err
			}
		}
	}
	return nil
}

func createPosts(factory *Factory, users []*models.User, communities []*models.Community, count int) ([]*models.Post, error) {
	if len(users) == 0 || len(communities) == 0 {
		return nil, nil
	}

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		user := users[factory.rng.Intn(len(users))]
		community := communities[factory.rng.Intn(len(communities))]
		posts = append(posts, factory.BuildPost(user, community))
	}

	if err := factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func createReviews(factory *Factory, users []*models.User, communities []*models.Community, count int) ([]*models.Review, error) {
	if len(users) == 0 || len(communities) == 0 {
		return nil, nil
	}

	reviews := make([]*models.Review, 0, count)
	for i := 0; i < count; i++ {
		user := users[factory.rng.Intn(len(users))]
		community := communities[factory.rng.Intn(len(communities))]
		review, err := factory.CreateReview(user, community)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

func createEngagement(factory *Factory, users []*models.User, posts []*models.Post, reviews []*models.Review) error {
	if len(users) == 0 {
		return nil
	}

	for _, post := range posts {
		// Roughly a third of posts get a comment thread.
		if factory.rng.Intn(3) != 0 {
			continue
		}
		commenter := users[factory.rng.Intn(len(users))]
		comment, err := factory.CreatePostComment(commenter, post, nil)
		if err != nil {
			return err
		}
		if factory.rng.Intn(2) == 0 {
			replier := users[factory.rng.Intn(len(users))]
			if _, err := factory.CreatePostComment(replier, post, comment); err != nil {
				return err
			}
		}

		likes := factory.rng.Intn(5)
		for i := 0; i < likes; i++ {
			liker := users[factory.rng.Intn(len(users))]
			if err := factory.CreateLike(liker, models.LikeTargetPost, post.ID); err != nil {
				return err
			}
		}
	}

	for _, review := range reviews {
		if factory.rng.Intn(2) == 0 {
			commenter := users[factory.rng.Intn(len(users))]
			if _, err := factory.CreateReviewComment(commenter, review); err != nil {
				return err
			}
		}
		likes := factory.rng.Intn(4)
		for i := 0; i < likes; i++ {
			liker := users[factory.rng.Intn(len(users))]
			if err := factory.CreateLike(liker, models.LikeTargetReview, review.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

func createItineraries(factory *Factory, users []*models.User, communities []*models.Community, count int) error {
	if len(users) == 0 || len(communities) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		user := users[factory.rng.Intn(len(users))]
		community := communities[factory.rng.Intn(len(communities))]
		if _, err := factory.CreateItinerary(user, community); err != nil {
			return err
		}
	}
	return nil
}

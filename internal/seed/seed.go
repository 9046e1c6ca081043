package seed

import (
	"context"
	"fmt"
	"log"

	"gitforum/internal/counters"
	"gitforum/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// DryRun logs instead of writing. SkipBcrypt stores plaintext passwords
	// to keep large seeds fast in dev.
	SkipBcrypt bool
	DryRun     bool
	// MaxDays caps how far back generated created_at timestamps spread.
	MaxDays int
	// Accounts pins named logins in place; when empty a small default set
	// (admin/demo/test) is used.
	Accounts []PlanAccount
}

// Seeder populates the database with realistic demo data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		opts:    opts,
		factory: NewFactory(db, opts),
	}
}

// ClearAll truncates all seeded tables.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []interface{}{
		&models.Notification{},
		&models.PostRevision{},
		&models.PostView{},
		&models.Bookmark{},
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
		&models.Post{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	return nil
}

// SeedSocialMesh creates users and a follow graph between them. Each user
// follows roughly a third of the others.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)

	// Fixed accounts so dev logins stay predictable across reseeds
	fixed := s.opts.Accounts
	if len(fixed) == 0 {
		fixed = []PlanAccount{
			{Username: "admin", Admin: true, Bio: "One of the OGs."},
			{Username: "demo", Bio: "One of the OGs."},
			{Username: "test", Bio: "One of the OGs."},
		}
	}
	for _, acct := range fixed {
		if len(users) >= numUsers {
			break
		}
		user, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = acct.Username
			u.Email = acct.Email
			if u.Email == "" {
				u.Email = fmt.Sprintf("%s@example.com", acct.Username)
			}
			u.Bio = acct.Bio
			u.IsAdmin = acct.Admin
		})
		if err != nil {
			return nil, fmt.Errorf("create fixed user %s: %w", acct.Username, err)
		}
		users = append(users, user)
	}

	for i := len(users); i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("skipping user %d: %v", i, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	if !s.opts.DryRun {
		for _, follower := range users {
			for _, following := range users {
				if follower.ID == following.ID {
					continue
				}
				if s.factory.rng.Intn(3) != 0 {
					continue
				}
				if err := s.factory.CreateFollow(follower, following); err != nil {
					return nil, fmt.Errorf("create follow: %w", err)
				}
			}
		}
	}

	log.Printf("Seeded %d users with follow mesh", len(users))
	return users, nil
}

// SeedEngagement creates snippet posts for the given users along with
// comments, likes, bookmarks and views. Denormalized counters are repaired
// afterwards by a reconciliation pass so they match the seeded rows.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to seed posts for")
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}

	if s.opts.DryRun {
		return posts, nil
	}

	for _, post := range posts {
		// Comments, with the occasional reply thread
		numComments := s.factory.rng.Intn(6)
		var lastComment *models.Comment
		for j := 0; j < numComments; j++ {
			commenter := users[s.factory.rng.Intn(len(users))]
			var overrides []func(*models.Comment)
			if lastComment != nil && s.factory.rng.Intn(3) == 0 {
				parentID := lastComment.ID
				overrides = append(overrides, func(c *models.Comment) {
					c.ParentID = &parentID
				})
			}
			comment, err := s.factory.CreateComment(commenter, post, overrides...)
			if err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			lastComment = comment
		}

		// Likes, bookmarks and views from a random subset of users
		for _, user := range users {
			roll := s.factory.rng.Intn(10)
			if roll < 3 {
				if err := s.factory.CreateLike(user, post); err != nil {
					return nil, fmt.Errorf("create like: %w", err)
				}
			}
			if roll < 1 {
				if err := s.factory.CreateBookmark(user, post); err != nil {
					return nil, fmt.Errorf("create bookmark: %w", err)
				}
			}
			if roll < 5 {
				if err := s.factory.CreateView(user, post); err != nil {
					return nil, fmt.Errorf("create view: %w", err)
				}
			}
		}
	}

	// Seeding wrote relationship rows directly, so the denormalized
	// counters start at zero. Reconciliation brings them in line.
	engine := counters.NewEngine(s.db)
	report, err := engine.Reconcile(context.Background())
	if err != nil {
		return nil, fmt.Errorf("reconcile counters after seeding: %w", err)
	}
	log.Printf("Counter reconciliation repaired %d drifted counters", len(report.Corrections))

	log.Printf("Seeded %d posts with engagement", len(posts))
	return posts, nil
}

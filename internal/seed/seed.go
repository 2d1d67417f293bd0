package seed

import (
	"fmt"
	"log"

	"quill/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with demo blog data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded data. Children first so foreign keys hold.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{&models.Comment{}, &models.Post{}, &models.User{}} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", model, err)
		}
	}
	return nil
}

// Seed populates the database with demo users, posts and comments. One
// well-known author (author@example.com / password123) is always created
// so the blog can be exercised immediately after seeding.
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Printf("Warning: could not clear existing data: %v", err)
		}
	}

	author, err := s.factory.CreateUser(func(u *models.User) {
		u.Name = "Avery Quill"
		u.Email = "author@example.com"
	})
	if err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}

	users := []*models.User{author}
	for i := 1; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		// the well-known author writes most posts, like a personal blog
		owner := author
		if s.factory.rnd.Intn(4) == 0 {
			owner = users[s.factory.rnd.Intn(len(users))]
		}
		post, err := s.factory.CreatePost(owner, 180)
		if err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("Created %d posts", len(posts))

	comments := 0
	for _, post := range posts {
		for i := 0; i < s.factory.rnd.Intn(5); i++ {
			commenter := users[s.factory.rnd.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("failed to create comment: %w", err)
			}
			comments++
		}
	}
	log.Printf("Created %d comments", comments)

	return nil
}

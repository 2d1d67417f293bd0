package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"quill/internal/models"
	"quill/internal/repository"
)

// PostService implements post authoring and retrieval.
type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

type CreatePostInput struct {
	AuthorID uint
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

type UpdatePostInput struct {
	AuthorID uint
	PostID   uint
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

// NewPostService creates a new PostService.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		now:      time.Now,
	}
}

const (
	maxTitleLen = 250
	maxBodyLen  = 50000
)

func validatePostFields(title, subtitle, body, imageURL string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("title too long (max 250 characters)")
	}
	if strings.TrimSpace(subtitle) == "" {
		return models.NewValidationError("subtitle is required")
	}
	if strings.TrimSpace(body) == "" {
		return models.NewValidationError("body is required")
	}
	if len(body) > maxBodyLen {
		return models.NewValidationError("body too long (max 50000 characters)")
	}
	if strings.TrimSpace(imageURL) == "" {
		return models.NewValidationError("image URL is required")
	}
	if _, err := url.ParseRequestURI(imageURL); err != nil {
		return models.NewValidationError("image URL must be a valid URL")
	}
	return nil
}

// ListPosts returns every post, most recent first.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

// GetPost returns the post with its author and comments, or CodeNotFound.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// CreatePost writes a new post owned by the calling identity, stamped with
// the current date. A duplicate title fails with CodeDuplicateTitle and
// writes nothing.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthenticatedError("you need to login or register to publish a post")
	}
	if err := validatePostFields(in.Title, in.Subtitle, in.Body, in.ImageURL); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    strings.TrimSpace(in.Title),
		Subtitle: strings.TrimSpace(in.Subtitle),
		Date:     s.now().Format(models.PostDateLayout),
		Body:     in.Body,
		ImageURL: strings.TrimSpace(in.ImageURL),
		UserID:   in.AuthorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// UpdatePost edits an existing post. Only the owning author may edit, and
// the title must stay unique excluding the post itself.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthenticatedError("you need to login or register to edit a post")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.AuthorID {
		return nil, models.NewUnauthenticatedError("you can only edit your own posts")
	}

	if err := validatePostFields(in.Title, in.Subtitle, in.Body, in.ImageURL); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Subtitle = strings.TrimSpace(in.Subtitle)
	post.Body = in.Body
	post.ImageURL = strings.TrimSpace(in.ImageURL)

	// The unique index enforces title uniqueness; saving the post under its
	// own unchanged title never trips it.
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

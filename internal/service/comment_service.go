package service

import (
	"context"
	"strings"
	"time"

	"quill/internal/models"
	"quill/internal/repository"
)

// CommentService implements comment submission and listing.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	now         func() time.Time
}

type AddCommentInput struct {
	AuthorID uint
	PostID   uint
	Text     string
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		now:         time.Now,
	}
}

const maxCommentLen = 10000

// AddComment writes a comment linked to the post and the calling identity,
// stamped with the current date. Anonymous callers fail with
// CodeUnauthenticated and nothing is persisted.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthenticatedError("you need to login or register to comment")
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("comment text is required")
	}
	if len(in.Text) > maxCommentLen {
		return nil, models.NewValidationError("comment too long (max 10000 characters)")
	}

	// The parent post must exist; a NotFound from the lookup propagates.
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:   in.Text,
		Date:   s.now().Format(models.CommentDateLayout),
		UserID: in.AuthorID,
		PostID: in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns the comments of a post, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

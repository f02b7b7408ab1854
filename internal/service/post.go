package service

import (
	"context"
	"fmt"

	"github.com/inkpost/inkpost/internal/core"
	"github.com/inkpost/inkpost/internal/domain/model"
	apperrors "github.com/inkpost/inkpost/internal/errors"
	"github.com/inkpost/inkpost/internal/security"
)

// PostServiceOptions groups dependencies for PostService.
type PostServiceOptions struct {
	Posts     core.PostRepository
	Sanitizer *security.Sanitizer
}

// PostService implements post authoring, browsing, and deletion. Ownership is
// enforced here, not in the repository: only the owner of a post may delete it.
type PostService struct {
	posts     core.PostRepository
	sanitizer *security.Sanitizer
}

// NewPostService constructs a new PostService.
func NewPostService(opts PostServiceOptions) *PostService {
	sanitizer := opts.Sanitizer
	if sanitizer == nil {
		sanitizer = security.NewSanitizer()
	}
	return &PostService{
		posts:     opts.Posts,
		sanitizer: sanitizer,
	}
}

// ComposeInput carries the raw compose form fields. Images and Documents are
// already encoded payloads; LinksRaw is the comma-separated links field.
type ComposeInput struct {
	Title     string
	Content   string
	LinksRaw  string
	Images    []string
	Documents []string
}

// Compose creates a post owned by the given user. The author name and avatar
// are snapshotted from the user's current record. Title and links are reduced
// to plain text; the body keeps allowlisted formatting only.
func (s *PostService) Compose(ctx context.Context, user *model.User, in ComposeInput) (*model.Post, error) {
	if user == nil || user.ID == "" {
		return nil, apperrors.PermissionDenied("sign in to publish a post")
	}

	links := model.SplitLinks(in.LinksRaw)
	for i, l := range links {
		links[i] = s.sanitizer.Plain(l)
	}

	req := &model.CreatePostRequest{
		Title:        s.sanitizer.Plain(in.Title),
		AuthorName:   user.Name,
		AuthorAvatar: user.AvatarURL,
		Images:       in.Images,
		Documents:    in.Documents,
		Content:      s.sanitizer.Content(in.Content),
		Links:        links,
		UserID:       user.ID,
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid post")
	}

	post, err := s.posts.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Get returns a single post by id.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	if id == "" {
		return nil, apperrors.NotFound("post not found")
	}
	return s.posts.GetByID(ctx, id)
}

// ListAll returns every post, newest first. The feed is public to any
// signed-in user.
func (s *PostService) ListAll(ctx context.Context) ([]*model.Post, error) {
	return s.posts.ListAll(ctx)
}

// ListByOwner returns the given user's posts, newest first.
func (s *PostService) ListByOwner(ctx context.Context, userID string) ([]*model.Post, error) {
	if userID == "" {
		return nil, apperrors.PermissionDenied("sign in to view your posts")
	}
	return s.posts.ListByOwner(ctx, userID)
}

// Delete removes a post after the ownership check. A missing post reports
// not found; a post owned by someone else reports permission denied. The
// existence check runs first so a missing post is never reported as a
// permission problem.
func (s *PostService) Delete(ctx context.Context, id, userID string) error {
	if id == "" {
		return apperrors.NotFound("post not found")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !post.OwnedBy(userID) {
		return apperrors.PermissionDenied("you can only delete your own posts")
	}

	deleted, err := s.posts.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if !deleted {
		// Raced with another delete of the same post
		return apperrors.NotFound("post not found")
	}
	return nil
}

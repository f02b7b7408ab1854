package repo

// Package repo contains in-memory repository doubles for unit tests.
// They honor the same validation and error mapping contracts as the
// Postgres-backed implementations.

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkpost/inkpost/internal/core"
	"github.com/inkpost/inkpost/internal/domain/model"
	apperrors "github.com/inkpost/inkpost/internal/errors"
)

// Ensure compile-time conformance to core interfaces.
var (
	_ core.UserRepository = (*MemoryUserRepo)(nil)
	_ core.PostRepository = (*MemoryPostRepo)(nil)
)

// MemoryUserRepo is an in-memory UserRepository double.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by id

	// FindOrCreateErr forces the next FindOrCreate call to fail.
	FindOrCreateErr error

	Now func() time.Time
}

// NewMemoryUserRepo creates an empty in-memory user repository.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: make(map[string]*model.User),
		Now:   time.Now,
	}
}

func (r *MemoryUserRepo) FindOrCreate(_ context.Context, req *model.NewUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid user request")
	}
	if r.FindOrCreateErr != nil {
		err := r.FindOrCreateErr
		r.FindOrCreateErr = nil
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ExternalID == req.ExternalID {
			existing := *u
			return &existing, nil
		}
	}

	user := &model.User{
		ID:         uuid.NewString(),
		ExternalID: req.ExternalID,
		Email:      req.Email,
		Name:       req.Name,
		AvatarURL:  req.AvatarURL,
		CreatedAt:  r.Now().UTC(),
	}
	r.users[user.ID] = user
	userCopy := *user
	return &userCopy, nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	userCopy := *u
	return &userCopy, nil
}

func (r *MemoryUserRepo) GetByExternalID(_ context.Context, externalID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ExternalID == externalID {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

// Seed inserts a user directly, bypassing validation.
func (r *MemoryUserRepo) Seed(u model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = &u
}

// Len reports the number of stored users.
func (r *MemoryUserRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// MemoryPostRepo is an in-memory PostRepository double.
type MemoryPostRepo struct {
	mu    sync.Mutex
	posts map[string]*model.Post

	// CreateErr forces the next Create call to fail.
	CreateErr error

	Now func() time.Time
}

// NewMemoryPostRepo creates an empty in-memory post repository.
func NewMemoryPostRepo() *MemoryPostRepo {
	return &MemoryPostRepo{
		posts: make(map[string]*model.Post),
		Now:   time.Now,
	}
}

func (r *MemoryPostRepo) Create(_ context.Context, req *model.CreatePostRequest) (*model.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid post request")
	}
	if r.CreateErr != nil {
		err := r.CreateErr
		r.CreateErr = nil
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post := &model.Post{
		ID:           uuid.NewString(),
		Title:        req.Title,
		AuthorName:   req.AuthorName,
		AuthorAvatar: req.AuthorAvatar,
		Images:       append([]string(nil), req.Images...),
		Documents:    append([]string(nil), req.Documents...),
		Content:      req.Content,
		Links:        append([]string(nil), req.Links...),
		UserID:       req.UserID,
		CreatedAt:    r.Now().UTC(),
	}
	r.posts[post.ID] = post
	postCopy := *post
	return &postCopy, nil
}

func (r *MemoryPostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	postCopy := *p
	return &postCopy, nil
}

func (r *MemoryPostRepo) ListAll(_ context.Context) ([]*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(*model.Post) bool { return true }), nil
}

func (r *MemoryPostRepo) ListByOwner(_ context.Context, userID string) ([]*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(p *model.Post) bool { return p.UserID == userID }), nil
}

func (r *MemoryPostRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return false, nil
	}
	delete(r.posts, id)
	return true, nil
}

// Seed inserts a post directly, bypassing validation.
func (r *MemoryPostRepo) Seed(p model.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = &p
}

// Len reports the number of stored posts.
func (r *MemoryPostRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

// collect returns matching posts newest first, mirroring the SQL ordering.
// Caller must hold the mutex.
func (r *MemoryPostRepo) collect(match func(*model.Post) bool) []*model.Post {
	out := make([]*model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if match(p) {
			postCopy := *p
			out = append(out, &postCopy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

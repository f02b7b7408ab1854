package core

import (
	"context"

	"github.com/inkpost/inkpost/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// UserRepository defines the interface for the user directory.
type UserRepository interface {
	// FindOrCreate looks up a user by external identity, creating the record on
	// first sight. It must be safe to call concurrently for the same external id.
	FindOrCreate(ctx context.Context, req *model.NewUserRequest) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
}

// PostRepository defines the interface for post data operations.
// The repository performs no ownership checks; callers are expected to have
// passed the authorization guard before mutating.
type PostRepository interface {
	Create(ctx context.Context, req *model.CreatePostRequest) (*model.Post, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListAll(ctx context.Context) ([]*model.Post, error)
	ListByOwner(ctx context.Context, userID string) ([]*model.Post, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

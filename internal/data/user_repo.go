package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/inkpost/inkpost/internal/data/pgxutil"
	"github.com/inkpost/inkpost/internal/domain/model"
	apperrors "github.com/inkpost/inkpost/internal/errors"
)

// UserRepo provides database operations for the user directory.
// User records are write-once: they are created on first login and never
// updated or deleted afterwards.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// FindOrCreate looks up a user by external id, inserting a fresh record when
// absent. The upsert keys on the unique external_id constraint, so concurrent
// first logins for the same identity converge on a single row: the no-op
// DO UPDATE makes the statement return the surviving row either way.
func (r *UserRepo) FindOrCreate(ctx context.Context, req *model.NewUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("new user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid user")
	}

	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (id, external_id, email, name, avatar_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
			RETURNING id, external_id, email, name, avatar_url, created_at
		`,
			uuid.NewString(),
			strings.TrimSpace(req.ExternalID),
			strings.TrimSpace(req.Email),
			strings.TrimSpace(req.Name),
			req.AvatarURL,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a user by internal id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByIDQuery, id)
}

// GetByExternalID retrieves a user by the identity provider's subject.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByExternalIDQuery, externalID)
}

// SQL query constants for static queries.
const (
	userGetByIDQuery = `
		SELECT id, external_id, email, name, avatar_url, created_at
		FROM users
		WHERE id = $1`

	userGetByExternalIDQuery = `
		SELECT id, external_id, email, name, avatar_url, created_at
		FROM users
		WHERE external_id = $1`
)

// getByQuery executes a query expected to return a single user.
func (r *UserRepo) getByQuery(ctx context.Context, q string, args ...any) (*model.User, error) {
	var user model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &user, nil
}

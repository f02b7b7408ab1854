package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/inkpost/inkpost/internal/data/pgxutil"
	"github.com/inkpost/inkpost/internal/domain/model"
	apperrors "github.com/inkpost/inkpost/internal/errors"
)

// PostRepo provides database operations for posts.
// It performs no ownership checks: the authorization guard in the service
// layer decides, the repository executes.
type PostRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPostRepo creates a new PostRepo with real time provider.
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewPostRepoWithTimeProvider creates a new PostRepo with a custom time provider (useful for tests).
func NewPostRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *PostRepo {
	return &PostRepo{DB: db, timeProvider: tp}
}

// Create inserts a new post. Author name and avatar arrive denormalized in
// the request; the posts.user_id foreign key guarantees the owner resolves to
// an existing user at creation time.
func (r *PostRepo) Create(ctx context.Context, req *model.CreatePostRequest) (*model.Post, error) {
	if req == nil {
		return nil, errors.New("create post request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid post")
	}

	var out model.Post
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO posts (
				id, title, author_name, author_avatar, images, documents, content, links, user_id, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
			) RETURNING id, title, author_name, author_avatar, images, documents, content, links, user_id, created_at
		`,
			uuid.NewString(),
			req.Title,
			req.AuthorName,
			req.AuthorAvatar,
			textArray(req.Images),
			textArray(req.Documents),
			req.Content,
			textArray(req.Links),
			req.UserID,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Post])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a post by id.
func (r *PostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, postGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		post, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Post])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &post, nil
}

// ListAll retrieves every post, newest first.
func (r *PostRepo) ListAll(ctx context.Context) ([]*model.Post, error) {
	return r.listByQuery(ctx, postListAllQuery)
}

// ListByOwner retrieves posts whose owning user id equals userID, newest first.
func (r *PostRepo) ListByOwner(ctx context.Context, userID string) ([]*model.Post, error) {
	return r.listByQuery(ctx, postListByOwnerQuery, userID)
}

// DeleteByID removes a post by id. Returns false when no row matched.
func (r *PostRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	var rows int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	}); err != nil {
		return false, apperrors.MapDBError(err)
	}
	return rows > 0, nil
}

// SQL query constants for static queries.
const (
	postGetByIDQuery = `
		SELECT id, title, author_name, author_avatar, images, documents, content, links, user_id, created_at
		FROM posts
		WHERE id = $1`

	postListAllQuery = `
		SELECT id, title, author_name, author_avatar, images, documents, content, links, user_id, created_at
		FROM posts
		ORDER BY created_at DESC`

	postListByOwnerQuery = `
		SELECT id, title, author_name, author_avatar, images, documents, content, links, user_id, created_at
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC`
)

// listByQuery executes a query returning zero or more posts.
func (r *PostRepo) listByQuery(ctx context.Context, q string, args ...any) ([]*model.Post, error) {
	var rowsOut []model.Post
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Post])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	res := make([]*model.Post, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// textArray normalizes nil slices to empty ones so NOT NULL array columns
// always receive '{}' rather than NULL.
func textArray(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

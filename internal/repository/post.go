package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mizanhq/mizan/internal/domain/blog"
)

const (
	postColumns = `id, slug, title_en, title_ar, body_en, body_ar,
		published, published_at, created_at, updated_at`

	createPostSQL = `INSERT INTO posts (id, slug, title_en, title_ar, body_en, body_ar, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	updatePostSQL = `UPDATE posts SET slug = $2, title_en = $3, title_ar = $4, body_en = $5,
		body_ar = $6, published = $7, published_at = $8, updated_at = now()
		WHERE id = $1`

	deletePostSQL = `DELETE FROM posts WHERE id = $1`

	getPostByIDSQL = `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	getPostBySlugSQL = `SELECT ` + postColumns + ` FROM posts WHERE slug = $1`

	listPostsSQL = `SELECT ` + postColumns + ` FROM posts
		WHERE (NOT $1::boolean OR published)
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT $2 OFFSET $3`

	countPostsSQL = `SELECT count(*) FROM posts`
)

var _ blog.Repository = (*PostRepository)(nil)

// PostRepository implements blog.Repository backed by PostgreSQL.
type PostRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository returns a PostRepository that uses the given pool.
func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// Create inserts a new post. A duplicate slug returns blog.ErrSlugTaken.
func (r *PostRepository) Create(ctx context.Context, p *blog.Post) error {
	_, err := r.pool.Exec(ctx, createPostSQL,
		p.ID, p.Slug, p.TitleEN, p.TitleAR, p.BodyEN, p.BodyAR, p.Published, p.PublishedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return blog.ErrSlugTaken
		}
		return fmt.Errorf("creating post %q: %w", p.Slug, err)
	}
	return nil
}

// Update persists all editable post fields.
func (r *PostRepository) Update(ctx context.Context, p *blog.Post) error {
	tag, err := r.pool.Exec(ctx, updatePostSQL,
		p.ID, p.Slug, p.TitleEN, p.TitleAR, p.BodyEN, p.BodyAR, p.Published, p.PublishedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return blog.ErrSlugTaken
		}
		return fmt.Errorf("updating post %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

// Delete removes a post, returning blog.ErrNotFound for unknown ids.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deletePostSQL, id)
	if err != nil {
		return fmt.Errorf("deleting post %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

// GetByID returns the post with the given id, or blog.ErrNotFound.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*blog.Post, error) {
	return r.getOne(ctx, getPostByIDSQL, id)
}

// GetBySlug returns the post with the given slug, or blog.ErrNotFound.
func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	return r.getOne(ctx, getPostBySlugSQL, slug)
}

func (r *PostRepository) getOne(ctx context.Context, sql, arg string) (*blog.Post, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrNotFound
		}
		return nil, fmt.Errorf("getting post: %w", err)
	}
	return &p, nil
}

// List returns posts newest first, optionally restricted to published ones.
func (r *PostRepository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]blog.Post, error) {
	rows, err := r.pool.Query(ctx, listPostsSQL, publishedOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return pgx.CollectRows(rows, scanPost)
}

// Count returns the total number of posts, drafts included.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countPostsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return n, nil
}

func scanPost(row pgx.CollectableRow) (blog.Post, error) {
	var p blog.Post
	err := row.Scan(
		&p.ID, &p.Slug, &p.TitleEN, &p.TitleAR, &p.BodyEN, &p.BodyAR,
		&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

package blog

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/mizanhq/mizan/internal/i18n"
)

// Sentinel errors for blog operations.
var (
	// ErrNotFound is returned when no post matches the lookup.
	ErrNotFound = errors.New("post not found")
	// ErrSlugTaken is returned when a post's slug collides with an
	// existing one.
	ErrSlugTaken = errors.New("slug already in use")
)

// Post is a bilingual blog entry. Both language variants live on one row;
// the public API picks the variant for the negotiated language.
type Post struct {
	ID          string
	Slug        string
	TitleEN     string
	TitleAR     string
	BodyEN      string
	BodyAR      string
	Published   bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Localized returns the title and body for the given language, falling
// back to English when the Arabic variant is empty.
func (p *Post) Localized(lang i18n.Lang) (title, body string) {
	if lang == i18n.LangAR && p.TitleAR != "" {
		return p.TitleAR, p.BodyAR
	}
	return p.TitleEN, p.BodyEN
}

// Repository defines persistence operations for posts.
type Repository interface {
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	// List returns posts newest first. When publishedOnly is set,
	// unpublished posts are excluded.
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]Post, error)
	Count(ctx context.Context) (int64, error)
}

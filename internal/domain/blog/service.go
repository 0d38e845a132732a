package blog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// CreatePostRequest holds the input for creating a post.
type CreatePostRequest struct {
	TitleEN string
	TitleAR string
	BodyEN  string
	BodyAR  string
	Publish bool
}

// UpdatePostRequest holds the editable fields of a post. Nil pointers
// leave the stored value unchanged.
type UpdatePostRequest struct {
	TitleEN *string
	TitleAR *string
	BodyEN  *string
	BodyAR  *string
	Publish *bool
}

// Service encapsulates blog business logic.
type Service struct {
	posts Repository
	now   func() time.Time
}

// NewService creates a blog Service backed by the given repository.
func NewService(posts Repository) *Service {
	return &Service{posts: posts, now: time.Now}
}

// Create stores a new post. The slug is derived from the English title.
func (s *Service) Create(ctx context.Context, req CreatePostRequest) (*Post, error) {
	p := &Post{
		ID:      uuid.New().String(),
		Slug:    slug.Make(req.TitleEN),
		TitleEN: req.TitleEN,
		TitleAR: req.TitleAR,
		BodyEN:  req.BodyEN,
		BodyAR:  req.BodyAR,
	}
	if req.Publish {
		now := s.now()
		p.Published = true
		p.PublishedAt = &now
	}

	if err := s.posts.Create(ctx, p); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return nil, ErrSlugTaken
		}
		return nil, errors.Wrap(err, "create post")
	}
	return p, nil
}

// Update applies the given changes to a post. Changing the English title
// regenerates the slug. Publishing sets the publish timestamp once;
// unpublishing clears it.
func (s *Service) Update(ctx context.Context, id string, req UpdatePostRequest) (*Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TitleEN != nil && *req.TitleEN != p.TitleEN {
		p.TitleEN = *req.TitleEN
		p.Slug = slug.Make(*req.TitleEN)
	}
	if req.TitleAR != nil {
		p.TitleAR = *req.TitleAR
	}
	if req.BodyEN != nil {
		p.BodyEN = *req.BodyEN
	}
	if req.BodyAR != nil {
		p.BodyAR = *req.BodyAR
	}
	if req.Publish != nil && *req.Publish != p.Published {
		p.Published = *req.Publish
		if *req.Publish {
			now := s.now()
			p.PublishedAt = &now
		} else {
			p.PublishedAt = nil
		}
	}

	if err := s.posts.Update(ctx, p); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return nil, ErrSlugTaken
		}
		return nil, errors.Wrap(err, "update post")
	}
	return p, nil
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.posts.Delete(ctx, id)
}

// GetPublished returns a published post by slug. Unpublished posts are
// invisible through this path.
func (s *Service) GetPublished(ctx context.Context, postSlug string) (*Post, error) {
	p, err := s.posts.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, ErrNotFound
	}
	return p, nil
}

// ListPublished returns published posts, newest first.
func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]Post, error) {
	return s.posts.List(ctx, true, limit, offset)
}

// ListAll returns all posts including drafts, newest first. Admin only.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]Post, error) {
	return s.posts.List(ctx, false, limit, offset)
}

// Get returns any post by id, draft or published. Admin only.
func (s *Service) Get(ctx context.Context, id string) (*Post, error) {
	return s.posts.GetByID(ctx, id)
}

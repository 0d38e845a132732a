package blog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizanhq/mizan/internal/i18n"
)

type mockPostRepo struct {
	byID   map[string]*Post
	bySlug map[string]*Post
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{
		byID:   make(map[string]*Post),
		bySlug: make(map[string]*Post),
	}
}

func (m *mockPostRepo) Create(_ context.Context, p *Post) error {
	if _, ok := m.bySlug[p.Slug]; ok {
		return ErrSlugTaken
	}
	cp := *p
	m.byID[p.ID] = &cp
	m.bySlug[p.Slug] = &cp
	return nil
}

func (m *mockPostRepo) Update(_ context.Context, p *Post) error {
	old, ok := m.byID[p.ID]
	if !ok {
		return ErrNotFound
	}
	if other, ok := m.bySlug[p.Slug]; ok && other.ID != p.ID {
		return ErrSlugTaken
	}
	delete(m.bySlug, old.Slug)
	cp := *p
	m.byID[p.ID] = &cp
	m.bySlug[p.Slug] = &cp
	return nil
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	p, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.bySlug, p.Slug)
	delete(m.byID, id)
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*Post, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) GetBySlug(_ context.Context, slug string) (*Post, error) {
	p, ok := m.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) List(_ context.Context, publishedOnly bool, _, _ int) ([]Post, error) {
	var out []Post
	for _, p := range m.byID {
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPostRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

func TestServiceCreateGeneratesSlug(t *testing.T) {
	svc := NewService(newMockPostRepo())

	p, err := svc.Create(context.Background(), CreatePostRequest{
		TitleEN: "Pricing Your Products Right",
		TitleAR: "تسعير منتجاتك بشكل صحيح",
		BodyEN:  "body",
		BodyAR:  "نص",
	})
	require.NoError(t, err)
	assert.Equal(t, "pricing-your-products-right", p.Slug)
	assert.False(t, p.Published)
	assert.Nil(t, p.PublishedAt)
}

func TestServiceCreateDuplicateSlug(t *testing.T) {
	svc := NewService(newMockPostRepo())

	_, err := svc.Create(context.Background(), CreatePostRequest{TitleEN: "Same Title"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreatePostRequest{TitleEN: "Same Title"})
	require.ErrorIs(t, err, ErrSlugTaken)
}

func TestServicePublishLifecycle(t *testing.T) {
	repo := newMockPostRepo()
	svc := NewService(repo)
	fixed := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	p, err := svc.Create(context.Background(), CreatePostRequest{
		TitleEN: "Draft Post",
		Publish: false,
	})
	require.NoError(t, err)

	// Drafts are invisible on the public path.
	_, err = svc.GetPublished(context.Background(), p.Slug)
	require.ErrorIs(t, err, ErrNotFound)

	// Publish stamps the publish time.
	publish := true
	p, err = svc.Update(context.Background(), p.ID, UpdatePostRequest{Publish: &publish})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, fixed, *p.PublishedAt)

	got, err := svc.GetPublished(context.Background(), p.Slug)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	// Unpublish clears it again.
	unpublish := false
	p, err = svc.Update(context.Background(), p.ID, UpdatePostRequest{Publish: &unpublish})
	require.NoError(t, err)
	assert.Nil(t, p.PublishedAt)
}

func TestServiceUpdateTitleRegeneratesSlug(t *testing.T) {
	svc := NewService(newMockPostRepo())

	p, err := svc.Create(context.Background(), CreatePostRequest{TitleEN: "Old Title"})
	require.NoError(t, err)

	newTitle := "Brand New Title"
	p, err = svc.Update(context.Background(), p.ID, UpdatePostRequest{TitleEN: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "brand-new-title", p.Slug)
}

func TestPostLocalized(t *testing.T) {
	p := &Post{TitleEN: "Hello", BodyEN: "world", TitleAR: "مرحبا", BodyAR: "بالعالم"}

	title, body := p.Localized(i18n.LangAR)
	assert.Equal(t, "مرحبا", title)
	assert.Equal(t, "بالعالم", body)

	title, body = p.Localized(i18n.LangEN)
	assert.Equal(t, "Hello", title)
	assert.Equal(t, "world", body)

	// Missing Arabic variant falls back to English.
	p.TitleAR = ""
	title, _ = p.Localized(i18n.LangAR)
	assert.Equal(t, "Hello", title)
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/mizanhq/mizan/internal/domain/blog"
	"github.com/mizanhq/mizan/internal/i18n"
)

// postItem is the localized public shape of a blog post.
type postItem struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Body        string `json:"body,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

func toPostItem(p *blog.Post, lang i18n.Lang, includeBody bool) postItem {
	title, body := p.Localized(lang)
	item := postItem{
		ID:    p.ID,
		Slug:  p.Slug,
		Title: title,
	}
	if includeBody {
		item.Body = body
	}
	if p.PublishedAt != nil {
		item.PublishedAt = p.PublishedAt.UTC().Format(time.RFC3339)
	}
	return item
}

// ListPosts handles GET /api/posts. Only published posts are listed, with
// title and body picked for the request's language.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	lang := i18n.FromRequest(r)
	limit, offset := pageParams(r)

	posts, err := h.posts.ListPublished(r.Context(), limit, offset)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := make([]postItem, len(posts))
	for i := range posts {
		out[i] = toPostItem(&posts[i], lang, false)
	}
	writeJSON(w, r, http.StatusOK, out)
}

// GetPost handles GET /api/posts/{slug}. Drafts are indistinguishable
// from missing posts.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.GetPublished(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "error.not_found")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPostItem(p, i18n.FromRequest(r), true))
}

// Package handler exposes the JSON REST API: calculator tools, blog,
// ad serving, accounts, and the admin surface.
package handler

import (
	"net/http"
	"strconv"

	"github.com/mizanhq/mizan/internal/domain/ad"
	"github.com/mizanhq/mizan/internal/domain/auth"
	"github.com/mizanhq/mizan/internal/domain/blog"
	"github.com/mizanhq/mizan/internal/domain/calculation"
	"github.com/mizanhq/mizan/internal/domain/user"
	"github.com/mizanhq/mizan/internal/migrate"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler holds the domain services behind the HTTP API.
type Handler struct {
	users        *user.Service
	tokens       *auth.TokenManager
	posts        *blog.Service
	ads          *ad.Service
	calculations calculation.Repository
	userRepo     user.Repository
	postRepo     blog.Repository
	campaignRepo ad.Repository
	migrations   *migrate.Runner
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(
	users *user.Service,
	tokens *auth.TokenManager,
	posts *blog.Service,
	ads *ad.Service,
	calculations calculation.Repository,
	userRepo user.Repository,
	postRepo blog.Repository,
	campaignRepo ad.Repository,
	migrations *migrate.Runner,
) *Handler {
	return &Handler{
		users:        users,
		tokens:       tokens,
		posts:        posts,
		ads:          ads,
		calculations: calculations,
		userRepo:     userRepo,
		postRepo:     postRepo,
		campaignRepo: campaignRepo,
		migrations:   migrations,
	}
}

// Routes returns the API routing table wrapped with the token middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Calculators.
	mux.HandleFunc("POST /api/calc/profit-margin", h.CalcProfitMargin)
	mux.HandleFunc("POST /api/calc/ad-break-even", h.CalcAdBreakEven)
	mux.HandleFunc("POST /api/calc/discount-impact", h.CalcDiscountImpact)
	mux.HandleFunc("POST /api/calc/size-convert", h.CalcSizeConvert)
	mux.HandleFunc("POST /api/calc/color-convert", h.CalcColorConvert)
	mux.HandleFunc("POST /api/calc/dedupe", h.CalcDedupe)

	// Accounts.
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/me", requireAuth(h.Me))
	mux.HandleFunc("PATCH /api/me", requireAuth(h.UpdateMe))

	// Saved calculations.
	mux.HandleFunc("GET /api/calculations", requireAuth(h.ListCalculations))
	mux.HandleFunc("DELETE /api/calculations/{id}", requireAuth(h.DeleteCalculation))

	// Blog.
	mux.HandleFunc("GET /api/posts", h.ListPosts)
	mux.HandleFunc("GET /api/posts/{slug}", h.GetPost)

	// Ads.
	mux.HandleFunc("GET /api/ads/serve", h.ServeAd)
	mux.HandleFunc("GET /api/ads/{code}/click", h.ClickAd)
	mux.HandleFunc("POST /api/ads/events", h.AdEvents)

	// Admin.
	mux.HandleFunc("GET /api/admin/stats", requireAdmin(h.AdminStats))
	mux.HandleFunc("GET /api/admin/users", requireAdmin(h.AdminListUsers))
	mux.HandleFunc("GET /api/admin/posts", requireAdmin(h.AdminListPosts))
	mux.HandleFunc("POST /api/admin/posts", requireAdmin(h.AdminCreatePost))
	mux.HandleFunc("PATCH /api/admin/posts/{id}", requireAdmin(h.AdminUpdatePost))
	mux.HandleFunc("DELETE /api/admin/posts/{id}", requireAdmin(h.AdminDeletePost))
	mux.HandleFunc("GET /api/admin/campaigns", requireAdmin(h.AdminListCampaigns))
	mux.HandleFunc("POST /api/admin/campaigns", requireAdmin(h.AdminCreateCampaign))
	mux.HandleFunc("POST /api/admin/campaigns/{id}/status", requireAdmin(h.AdminSetCampaignStatus))
	mux.HandleFunc("GET /api/admin/migrations", requireAdmin(h.AdminMigrationStatus))
	mux.HandleFunc("POST /api/admin/migrations/up", requireAdmin(h.AdminMigrateUp))
	mux.HandleFunc("POST /api/admin/migrations/down", requireAdmin(h.AdminMigrateDown))

	return h.authenticate(mux)
}

// pageParams extracts limit/offset query parameters with bounds applied.
func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, maxPageSize)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

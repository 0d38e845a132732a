package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mizanhq/mizan/internal/domain/ad"
	"github.com/mizanhq/mizan/internal/domain/blog"
	"github.com/mizanhq/mizan/internal/i18n"
	"github.com/mizanhq/mizan/internal/migrate"
	"github.com/mizanhq/mizan/internal/validate"
)

type statsResponse struct {
	Users        int64   `json:"users"`
	Posts        int64   `json:"posts"`
	Campaigns    int64   `json:"campaigns"`
	Calculations int64   `json:"calculations"`
	AdSpend      float64 `json:"adSpend"`
}

// AdminStats handles GET /api/admin/stats.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.userRepo.Count(ctx)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	posts, err := h.postRepo.Count(ctx)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	campaigns, err := h.campaignRepo.Count(ctx)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	calculations, err := h.calculations.Count(ctx)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	spend, err := h.campaignRepo.TotalSpend(ctx)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, statsResponse{
		Users:        users,
		Posts:        posts,
		Campaigns:    campaigns,
		Calculations: calculations,
		AdSpend:      spend.InexactFloat64(),
	})
}

// AdminListUsers handles GET /api/admin/users.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	users, err := h.userRepo.List(r.Context(), limit, offset)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	writeJSON(w, r, http.StatusOK, out)
}

// adminPostItem carries both language variants, unlike the public shape.
type adminPostItem struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	TitleEN     string `json:"titleEn"`
	TitleAR     string `json:"titleAr"`
	BodyEN      string `json:"bodyEn"`
	BodyAR      string `json:"bodyAr"`
	Published   bool   `json:"published"`
	PublishedAt string `json:"publishedAt,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toAdminPostItem(p *blog.Post) adminPostItem {
	item := adminPostItem{
		ID:        p.ID,
		Slug:      p.Slug,
		TitleEN:   p.TitleEN,
		TitleAR:   p.TitleAR,
		BodyEN:    p.BodyEN,
		BodyAR:    p.BodyAR,
		Published: p.Published,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.PublishedAt != nil {
		item.PublishedAt = p.PublishedAt.UTC().Format(time.RFC3339)
	}
	return item
}

// AdminListPosts handles GET /api/admin/posts. Drafts included.
func (h *Handler) AdminListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	posts, err := h.posts.ListAll(r.Context(), limit, offset)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := make([]adminPostItem, len(posts))
	for i := range posts {
		out[i] = toAdminPostItem(&posts[i])
	}
	writeJSON(w, r, http.StatusOK, out)
}

type createPostRequest struct {
	TitleEN string `json:"titleEn" validate:"required,max=300"`
	TitleAR string `json:"titleAr" validate:"omitempty,max=300"`
	BodyEN  string `json:"bodyEn" validate:"required"`
	BodyAR  string `json:"bodyAr"`
	Publish bool   `json:"publish"`
}

// AdminCreatePost handles POST /api/admin/posts.
func (h *Handler) AdminCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	p, err := h.posts.Create(r.Context(), blog.CreatePostRequest{
		TitleEN: req.TitleEN,
		TitleAR: req.TitleAR,
		BodyEN:  req.BodyEN,
		BodyAR:  req.BodyAR,
		Publish: req.Publish,
	})
	if err != nil {
		if errors.Is(err, blog.ErrSlugTaken) {
			writeError(w, r, http.StatusConflict, "error.bad_request")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toAdminPostItem(p))
}

type updatePostRequest struct {
	TitleEN *string `json:"titleEn" validate:"omitempty,max=300"`
	TitleAR *string `json:"titleAr" validate:"omitempty,max=300"`
	BodyEN  *string `json:"bodyEn"`
	BodyAR  *string `json:"bodyAr"`
	Publish *bool   `json:"publish"`
}

// AdminUpdatePost handles PATCH /api/admin/posts/{id}. Absent fields are
// left unchanged.
func (h *Handler) AdminUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	p, err := h.posts.Update(r.Context(), r.PathValue("id"), blog.UpdatePostRequest{
		TitleEN: req.TitleEN,
		TitleAR: req.TitleAR,
		BodyEN:  req.BodyEN,
		BodyAR:  req.BodyAR,
		Publish: req.Publish,
	})
	if err != nil {
		switch {
		case errors.Is(err, blog.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "error.not_found")
		case errors.Is(err, blog.ErrSlugTaken):
			writeError(w, r, http.StatusConflict, "error.bad_request")
		default:
			writeInternalError(w, r, err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, toAdminPostItem(p))
}

// AdminDeletePost handles DELETE /api/admin/posts/{id}.
func (h *Handler) AdminDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "error.not_found")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type campaignItem struct {
	ID                string  `json:"id"`
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	TextEN            string  `json:"textEn"`
	TextAR            string  `json:"textAr"`
	TargetURL         string  `json:"targetUrl"`
	Placement         string  `json:"placement"`
	StartsAt          string  `json:"startsAt"`
	EndsAt            string  `json:"endsAt"`
	TotalBudget       float64 `json:"totalBudget"`
	CostPerImpression float64 `json:"costPerImpression"`
	CostPerClick      float64 `json:"costPerClick"`
	Spend             float64 `json:"spend"`
	Impressions       int64   `json:"impressions"`
	Clicks            int64   `json:"clicks"`
	Status            string  `json:"status"`
}

func toCampaignItem(c *ad.Campaign) campaignItem {
	return campaignItem{
		ID:                c.ID,
		Code:              c.Code,
		Name:              c.Name,
		TextEN:            c.TextEN,
		TextAR:            c.TextAR,
		TargetURL:         c.TargetURL,
		Placement:         c.Placement,
		StartsAt:          c.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:            c.EndsAt.UTC().Format(time.RFC3339),
		TotalBudget:       c.TotalBudget.InexactFloat64(),
		CostPerImpression: c.CostPerImpression.InexactFloat64(),
		CostPerClick:      c.CostPerClick.InexactFloat64(),
		Spend:             c.Spend.InexactFloat64(),
		Impressions:       c.Impressions,
		Clicks:            c.Clicks,
		Status:            string(c.Status),
	}
}

// AdminListCampaigns handles GET /api/admin/campaigns.
func (h *Handler) AdminListCampaigns(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	campaigns, err := h.campaignRepo.List(r.Context(), limit, offset)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := make([]campaignItem, len(campaigns))
	for i := range campaigns {
		out[i] = toCampaignItem(&campaigns[i])
	}
	writeJSON(w, r, http.StatusOK, out)
}

type createCampaignRequest struct {
	Name              string    `json:"name" validate:"required,max=200"`
	TextEN            string    `json:"textEn" validate:"required,max=500"`
	TextAR            string    `json:"textAr" validate:"omitempty,max=500"`
	TargetURL         string    `json:"targetUrl" validate:"required,url"`
	Placement         string    `json:"placement" validate:"required,max=64"`
	StartsAt          time.Time `json:"startsAt" validate:"required"`
	EndsAt            time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
	TotalBudget       float64   `json:"totalBudget" validate:"required,gt=0"`
	CostPerImpression float64   `json:"costPerImpression" validate:"gte=0"`
	CostPerClick      float64   `json:"costPerClick" validate:"gte=0"`
}

// AdminCreateCampaign handles POST /api/admin/campaigns.
func (h *Handler) AdminCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	c, err := h.ads.Create(r.Context(), ad.CreateCampaignRequest{
		Name:              req.Name,
		TextEN:            req.TextEN,
		TextAR:            req.TextAR,
		TargetURL:         req.TargetURL,
		Placement:         req.Placement,
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
		TotalBudget:       decimal.NewFromFloat(req.TotalBudget),
		CostPerImpression: decimal.NewFromFloat(req.CostPerImpression),
		CostPerClick:      decimal.NewFromFloat(req.CostPerClick),
	})
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toCampaignItem(c))
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active paused ended"`
}

// AdminSetCampaignStatus handles POST /api/admin/campaigns/{id}/status.
func (h *Handler) AdminSetCampaignStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	c, err := h.ads.SetStatus(r.Context(), r.PathValue("id"), ad.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ad.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "error.not_found")
		case errors.Is(err, ad.ErrBudgetExhausted):
			writeError(w, r, http.StatusConflict, "error.bad_request")
		default:
			writeInternalError(w, r, err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, toCampaignItem(c))
}

type migrationRecord struct {
	Version   int    `json:"version"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	AppliedAt string `json:"appliedAt,omitempty"`
}

func toMigrationRecords(recs []migrate.Record) []migrationRecord {
	out := make([]migrationRecord, len(recs))
	for i, rec := range recs {
		out[i] = migrationRecord{
			Version: rec.Version,
			Name:    rec.Name,
			Status:  string(rec.Status),
			Error:   rec.Error,
		}
		if rec.AppliedAt != nil {
			out[i].AppliedAt = rec.AppliedAt.UTC().Format(time.RFC3339)
		}
	}
	return out
}

// AdminMigrationStatus handles GET /api/admin/migrations: every known
// migration with its applied/pending/failed state.
func (h *Handler) AdminMigrationStatus(w http.ResponseWriter, r *http.Request) {
	recs, err := h.migrations.Plan(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toMigrationRecords(recs))
}

// AdminMigrateUp handles POST /api/admin/migrations/up. A failing
// migration reports 409 with the refreshed plan so the failure row is
// visible.
func (h *Handler) AdminMigrateUp(w http.ResponseWriter, r *http.Request) {
	applied, upErr := h.migrations.Up(r.Context())

	recs, err := h.migrations.Plan(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	status := http.StatusOK
	if upErr != nil {
		status = http.StatusConflict
	}
	writeJSON(w, r, status, map[string]any{
		"applied":    applied,
		"migrations": toMigrationRecords(recs),
	})
}

// AdminMigrateDown handles POST /api/admin/migrations/down: roll back the
// newest applied migration.
func (h *Handler) AdminMigrateDown(w http.ResponseWriter, r *http.Request) {
	m, err := h.migrations.Down(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, migrate.ErrNothingToRollback), errors.Is(err, migrate.ErrNoDownFile):
			writeError(w, r, http.StatusConflict, "error.bad_request")
		default:
			writeInternalError(w, r, err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"version": m.Version,
		"name":    m.Name,
	})
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/mizanhq/mizan/internal/domain/user"
	"github.com/mizanhq/mizan/internal/i18n"
	"github.com/mizanhq/mizan/internal/validate"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Language  string `json:"language"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Language:  string(u.Language),
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
	Language string `json:"language" validate:"omitempty,oneof=en ar"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	lang := i18n.Lang(req.Language)
	if req.Language == "" {
		lang = i18n.FromRequest(r)
	}

	u, err := h.users.Register(r.Context(), user.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Language: lang,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeError(w, r, http.StatusConflict, "error.email_taken")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, authResponse{Token: token, User: toUserResponse(u)})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			writeError(w, r, http.StatusUnauthorized, "error.invalid_credentials")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, authResponse{Token: token, User: toUserResponse(u)})
}

// Me handles GET /api/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	u, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, r, http.StatusUnauthorized, "error.unauthorized")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserResponse(u))
}

type updateMeRequest struct {
	Name     string `json:"name" validate:"omitempty,max=120"`
	Language string `json:"language" validate:"omitempty,oneof=en ar"`
}

// UpdateMe handles PATCH /api/me. Empty fields are left unchanged.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	claims, _ := ClaimsFromContext(r.Context())
	u, err := h.users.UpdateProfile(r.Context(), claims.UserID, user.UpdateProfileRequest{
		Name:     req.Name,
		Language: i18n.Lang(req.Language),
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, r, http.StatusUnauthorized, "error.unauthorized")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserResponse(u))
}

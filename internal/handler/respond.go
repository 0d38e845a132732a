package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mizanhq/mizan/internal/i18n"
	"github.com/mizanhq/mizan/internal/validate"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    int                   `json:"code"`
	Message string                `json:"message"`
	Fields  []validate.FieldError `json:"fields,omitempty"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Warn("encode response", zap.Error(err))
	}
}

// writeError sends a localized error response. The message id is resolved
// against the catalog for the request's negotiated language.
func writeError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	lang := i18n.FromRequest(r)
	writeJSON(w, r, status, errorBody{
		Code:    status,
		Message: i18n.T(lang, msgID),
	})
}

// writeValidationError sends a 400 with per-field localized messages.
func writeValidationError(w http.ResponseWriter, r *http.Request, errs validate.Errors) {
	lang := i18n.FromRequest(r)
	writeJSON(w, r, http.StatusBadRequest, errorBody{
		Code:    http.StatusBadRequest,
		Message: i18n.T(lang, "error.bad_request"),
		Fields:  errs,
	})
}

// writeInternalError logs the cause and sends an opaque 500.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "error.internal")
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

package handler

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/mizanhq/mizan/internal/domain/ad"
	"github.com/mizanhq/mizan/internal/i18n"
)

// adResponse is the creative payload for one served impression.
type adResponse struct {
	Code      string `json:"code"`
	Text      string `json:"text"`
	ClickURL  string `json:"clickUrl"`
	Placement string `json:"placement"`
}

// ServeAd handles GET /api/ads/serve?placement=. A 204 means nothing is
// eligible right now; clients render the slot empty.
func (h *Handler) ServeAd(w http.ResponseWriter, r *http.Request) {
	placement := r.URL.Query().Get("placement")
	if placement == "" {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}

	c, err := h.ads.Serve(r.Context(), placement, clientSource(r))
	if err != nil {
		if errors.Is(err, ad.ErrNoEligibleCampaign) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeInternalError(w, r, err)
		return
	}

	text := c.TextEN
	if i18n.FromRequest(r) == i18n.LangAR && c.TextAR != "" {
		text = c.TextAR
	}
	writeJSON(w, r, http.StatusOK, adResponse{
		Code:      c.Code,
		Text:      text,
		ClickURL:  "/api/ads/" + c.Code + "/click",
		Placement: c.Placement,
	})
}

// ClickAd handles GET /api/ads/{code}/click: bill the click and redirect
// to the campaign target.
func (h *Handler) ClickAd(w http.ResponseWriter, r *http.Request) {
	target, err := h.ads.Click(r.Context(), r.PathValue("code"))
	if err != nil {
		if errors.Is(err, ad.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "error.not_found")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// AdEvents handles POST /api/ads/events: a JSON array of
// {code, impressions, clicks} objects reported in bulk by edge caches.
// The array is decoded as a stream so large batches never materialize
// in memory at once.
func (h *Handler) AdEvents(w http.ResponseWriter, r *http.Request) {
	var (
		events  []ad.Event
		decoder = jx.Decode(http.MaxBytesReader(nil, r.Body, 8<<20), 4096)
	)
	err := decoder.Arr(func(d *jx.Decoder) error {
		var ev ad.Event
		if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			switch string(key) {
			case "code":
				v, err := d.Str()
				if err != nil {
					return err
				}
				ev.Code = v
			case "impressions":
				v, err := d.Int64()
				if err != nil {
					return err
				}
				ev.Impressions = v
			case "clicks":
				v, err := d.Int64()
				if err != nil {
					return err
				}
				ev.Clicks = v
			default:
				return d.Skip()
			}
			return nil
		}); err != nil {
			return err
		}
		if ev.Code == "" || ev.Impressions < 0 || ev.Clicks < 0 {
			return errors.New("invalid event")
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}

	applied, err := h.ads.ApplyEvents(r.Context(), events)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{
		"received": len(events),
		"applied":  applied,
	})
}

// clientSource extracts the traffic source for blocklist checks: the
// first X-Forwarded-For hop when present, else the remote address.
func clientSource(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

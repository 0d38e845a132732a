package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mizanhq/mizan/internal/calc"
	"github.com/mizanhq/mizan/internal/domain/calculation"
	"github.com/mizanhq/mizan/internal/i18n"
	"github.com/mizanhq/mizan/internal/validate"
)

type marginRequest struct {
	CostPrice    float64 `json:"costPrice" validate:"gte=0"`
	SellingPrice float64 `json:"sellingPrice" validate:"required,gt=0"`
	UnitFees     float64 `json:"unitFees" validate:"gte=0"`
	MonthlyUnits int64   `json:"monthlyUnits" validate:"gte=0"`
}

type marginResponse struct {
	ProfitPerUnit float64 `json:"profitPerUnit"`
	MarginPercent float64 `json:"marginPercent"`
	MarkupPercent float64 `json:"markupPercent"`
	MonthlyProfit float64 `json:"monthlyProfit"`
}

// CalcProfitMargin handles POST /api/calc/profit-margin.
func (h *Handler) CalcProfitMargin(w http.ResponseWriter, r *http.Request) {
	var req marginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	res, err := calc.ProfitMargin(calc.MarginInput{
		CostPrice:    decimal.NewFromFloat(req.CostPrice),
		SellingPrice: decimal.NewFromFloat(req.SellingPrice),
		UnitFees:     decimal.NewFromFloat(req.UnitFees),
		MonthlyUnits: req.MonthlyUnits,
	})
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "error.bad_request")
		return
	}

	resp := marginResponse{
		ProfitPerUnit: res.ProfitPerUnit.InexactFloat64(),
		MarginPercent: res.MarginPercent.InexactFloat64(),
		MarkupPercent: res.MarkupPercent.InexactFloat64(),
		MonthlyProfit: res.MonthlyProfit.InexactFloat64(),
	}
	h.saveRun(r, calculation.ToolMargin, req, resp)
	writeJSON(w, r, http.StatusOK, resp)
}

type breakEvenRequest struct {
	AdSpend           float64 `json:"adSpend" validate:"required,gt=0"`
	CostPerClick      float64 `json:"costPerClick" validate:"required,gt=0"`
	SellingPrice      float64 `json:"sellingPrice" validate:"required,gt=0"`
	UnitCost          float64 `json:"unitCost" validate:"gte=0"`
	ConversionPercent float64 `json:"conversionPercent" validate:"required,gt=0,lte=100"`
}

type breakEvenResponse struct {
	Clicks                     int64   `json:"clicks"`
	ExpectedOrders             int64   `json:"expectedOrders"`
	Revenue                    float64 `json:"revenue"`
	GrossProfit                float64 `json:"grossProfit"`
	NetProfit                  float64 `json:"netProfit"`
	BreakEvenROAS              float64 `json:"breakEvenRoas"`
	BreakEvenConversionPercent float64 `json:"breakEvenConversionPercent"`
}

// CalcAdBreakEven handles POST /api/calc/ad-break-even.
func (h *Handler) CalcAdBreakEven(w http.ResponseWriter, r *http.Request) {
	var req breakEvenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	res, err := calc.AdBreakEven(calc.BreakEvenInput{
		AdSpend:           decimal.NewFromFloat(req.AdSpend),
		CostPerClick:      decimal.NewFromFloat(req.CostPerClick),
		SellingPrice:      decimal.NewFromFloat(req.SellingPrice),
		UnitCost:          decimal.NewFromFloat(req.UnitCost),
		ConversionPercent: decimal.NewFromFloat(req.ConversionPercent),
	})
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "error.bad_request")
		return
	}

	resp := breakEvenResponse{
		Clicks:                     res.Clicks,
		ExpectedOrders:             res.ExpectedOrders,
		Revenue:                    res.Revenue.InexactFloat64(),
		GrossProfit:                res.GrossProfit.InexactFloat64(),
		NetProfit:                  res.NetProfit.InexactFloat64(),
		BreakEvenROAS:              res.BreakEvenROAS.InexactFloat64(),
		BreakEvenConversionPercent: res.BreakEvenConversionPercent.InexactFloat64(),
	}
	h.saveRun(r, calculation.ToolBreakEven, req, resp)
	writeJSON(w, r, http.StatusOK, resp)
}

type discountRequest struct {
	Price           float64 `json:"price" validate:"required,gt=0"`
	UnitCost        float64 `json:"unitCost" validate:"gte=0"`
	DiscountPercent float64 `json:"discountPercent" validate:"required,gt=0,lt=100"`
	MonthlyUnits    int64   `json:"monthlyUnits" validate:"gte=0"`
}

type discountResponse struct {
	DiscountedPrice       float64  `json:"discountedPrice"`
	OldMarginPercent      float64  `json:"oldMarginPercent"`
	NewMarginPercent      float64  `json:"newMarginPercent"`
	OldProfit             float64  `json:"oldProfit"`
	NewProfit             float64  `json:"newProfit"`
	RequiredUnits         *int64   `json:"requiredUnits"`
	RequiredUpliftPercent *float64 `json:"requiredUpliftPercent"`
}

// CalcDiscountImpact handles POST /api/calc/discount-impact.
func (h *Handler) CalcDiscountImpact(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	res, err := calc.DiscountImpact(calc.DiscountImpactInput{
		Price:           decimal.NewFromFloat(req.Price),
		UnitCost:        decimal.NewFromFloat(req.UnitCost),
		DiscountPercent: decimal.NewFromFloat(req.DiscountPercent),
		MonthlyUnits:    req.MonthlyUnits,
	})
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "error.bad_request")
		return
	}

	resp := discountResponse{
		DiscountedPrice:  res.DiscountedPrice.InexactFloat64(),
		OldMarginPercent: res.OldMarginPercent.InexactFloat64(),
		NewMarginPercent: res.NewMarginPercent.InexactFloat64(),
		OldProfit:        res.OldProfit.InexactFloat64(),
		NewProfit:        res.NewProfit.InexactFloat64(),
		RequiredUnits:    res.RequiredUnits,
	}
	if res.RequiredUpliftPercent != nil {
		v := res.RequiredUpliftPercent.InexactFloat64()
		resp.RequiredUpliftPercent = &v
	}
	h.saveRun(r, calculation.ToolDiscount, req, resp)
	writeJSON(w, r, http.StatusOK, resp)
}

type sizeRequest struct {
	Chart string `json:"chart" validate:"required,oneof=clothing shoes"`
	From  string `json:"from" validate:"required,oneof=eu us uk letter"`
	Size  string `json:"size" validate:"required,max=8"`
}

type sizeResponse struct {
	EU     string `json:"eu"`
	US     string `json:"us"`
	UK     string `json:"uk"`
	Letter string `json:"letter,omitempty"`
}

// CalcSizeConvert handles POST /api/calc/size-convert.
func (h *Handler) CalcSizeConvert(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	eq, err := calc.ConvertSize(calc.SizeChart(req.Chart), calc.SizeSystem(req.From), req.Size)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "error.unknown_size")
		return
	}

	resp := sizeResponse{EU: eq.EU, US: eq.US, UK: eq.UK, Letter: eq.Letter}
	h.saveRun(r, calculation.ToolSizes, req, resp)
	writeJSON(w, r, http.StatusOK, resp)
}

type colorRequest struct {
	// Exactly one of Hex or HSL/RGB groups is expected; Hex wins when set.
	Hex string   `json:"hex" validate:"omitempty,max=7"`
	RGB *rgbJSON `json:"rgb"`
	HSL *hslJSON `json:"hsl"`
}

type rgbJSON struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type hslJSON struct {
	H float64 `json:"h" validate:"gte=0,lt=360"`
	S float64 `json:"s" validate:"gte=0,lte=100"`
	L float64 `json:"l" validate:"gte=0,lte=100"`
}

type colorResponse struct {
	Hex string  `json:"hex"`
	RGB rgbJSON `json:"rgb"`
	HSL hslJSON `json:"hsl"`
}

// CalcColorConvert handles POST /api/calc/color-convert: any one
// representation in, all three out.
func (h *Handler) CalcColorConvert(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	var rgb calc.RGB
	switch {
	case req.Hex != "":
		parsed, err := calc.ParseHex(req.Hex)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "error.invalid_color")
			return
		}
		rgb = parsed
	case req.RGB != nil:
		rgb = calc.RGB{R: req.RGB.R, G: req.RGB.G, B: req.RGB.B}
	case req.HSL != nil:
		rgb = calc.HSL{H: req.HSL.H, S: req.HSL.S, L: req.HSL.L}.ToRGB()
	default:
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}

	hsl := rgb.ToHSL()
	resp := colorResponse{
		Hex: rgb.Hex(),
		RGB: rgbJSON{R: rgb.R, G: rgb.G, B: rgb.B},
		HSL: hslJSON{H: hsl.H, S: hsl.S, L: hsl.L},
	}
	h.saveRun(r, calculation.ToolColors, req, resp)
	writeJSON(w, r, http.StatusOK, resp)
}

type dedupeRequest struct {
	Text       string `json:"text" validate:"required,max=1000000"`
	TrimSpace  bool   `json:"trimSpace"`
	IgnoreCase bool   `json:"ignoreCase"`
	SkipEmpty  bool   `json:"skipEmpty"`
}

type dedupeResponse struct {
	Lines   []string `json:"lines"`
	Total   int      `json:"total"`
	Unique  int      `json:"unique"`
	Removed int      `json:"removed"`
}

// CalcDedupe handles POST /api/calc/dedupe.
func (h *Handler) CalcDedupe(w http.ResponseWriter, r *http.Request) {
	var req dedupeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.bad_request")
		return
	}
	if errs := validate.Struct(i18n.FromRequest(r), req); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	res := calc.DedupeLines(req.Text, calc.DedupeOptions{
		TrimSpace:  req.TrimSpace,
		IgnoreCase: req.IgnoreCase,
		SkipEmpty:  req.SkipEmpty,
	})
	if res.Lines == nil {
		res.Lines = []string{}
	}

	// Dedupe inputs can be large; the saved run keeps the counts only.
	h.saveRun(r, calculation.ToolDedupe, dedupeRequest{
		TrimSpace:  req.TrimSpace,
		IgnoreCase: req.IgnoreCase,
		SkipEmpty:  req.SkipEmpty,
	}, dedupeResponse{Total: res.Total, Unique: res.Unique, Removed: res.Removed})

	writeJSON(w, r, http.StatusOK, dedupeResponse{
		Lines:   res.Lines,
		Total:   res.Total,
		Unique:  res.Unique,
		Removed: res.Removed,
	})
}

// saveRun persists a calculator run when the caller is signed in and asked
// for it with ?save=1. Persistence failures are logged, never surfaced:
// the calculation itself succeeded.
func (h *Handler) saveRun(r *http.Request, tool calculation.Tool, input, result any) {
	if r.URL.Query().Get("save") != "1" {
		return
	}
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return
	}
	if !tool.Valid() {
		zctx.From(r.Context()).Warn("save calculation",
			zap.String("tool", string(tool)),
			zap.Error(errors.New("unknown tool")),
		)
		return
	}

	inputJSON, err := json.Marshal(input)
	if err == nil {
		var resultJSON []byte
		resultJSON, err = json.Marshal(result)
		if err == nil {
			err = h.calculations.Create(r.Context(), &calculation.Calculation{
				ID:     uuid.New().String(),
				UserID: claims.UserID,
				Tool:   tool,
				Input:  inputJSON,
				Result: resultJSON,
			})
		}
	}
	if err != nil {
		zctx.From(r.Context()).Warn("save calculation",
			zap.String("tool", string(tool)),
			zap.Error(errors.Wrap(err, "save run")),
		)
	}
}

// ListCalculations handles GET /api/calculations.
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	limit, _ := pageParams(r)

	items, err := h.calculations.ListByUser(r.Context(), claims.UserID, limit)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	type calcItem struct {
		ID        string          `json:"id"`
		Tool      string          `json:"tool"`
		Input     json.RawMessage `json:"input"`
		Result    json.RawMessage `json:"result"`
		CreatedAt string          `json:"createdAt"`
	}
	out := make([]calcItem, len(items))
	for i, c := range items {
		out[i] = calcItem{
			ID:        c.ID,
			Tool:      string(c.Tool),
			Input:     c.Input,
			Result:    c.Result,
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

// DeleteCalculation handles DELETE /api/calculations/{id}.
func (h *Handler) DeleteCalculation(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	err := h.calculations.Delete(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, calculation.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "error.not_found")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Package calculation persists calculator runs for signed-in users.
package calculation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no saved calculation matches the lookup
// for the requesting user. Other users' records are indistinguishable
// from missing ones.
var ErrNotFound = errors.New("calculation not found")

// Tool names a calculator. Values match the public API paths.
type Tool string

const (
	ToolMargin    Tool = "profit-margin"
	ToolBreakEven Tool = "ad-break-even"
	ToolDiscount  Tool = "discount-impact"
	ToolSizes     Tool = "size-convert"
	ToolColors    Tool = "color-convert"
	ToolDedupe    Tool = "dedupe"
)

// Valid reports whether t names a known calculator.
func (t Tool) Valid() bool {
	switch t {
	case ToolMargin, ToolBreakEven, ToolDiscount, ToolSizes, ToolColors, ToolDedupe:
		return true
	}
	return false
}

// Calculation is one saved calculator run. Input and Result are stored
// verbatim as the JSON the calculator consumed and produced.
type Calculation struct {
	ID        string
	UserID    string
	Tool      Tool
	Input     json.RawMessage
	Result    json.RawMessage
	CreatedAt time.Time
}

// Repository defines persistence operations for saved calculations.
type Repository interface {
	Create(ctx context.Context, c *Calculation) error
	// ListByUser returns the user's calculations, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Calculation, error)
	// Delete removes the user's calculation. Records owned by other
	// users return ErrNotFound.
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context) (int64, error)
}

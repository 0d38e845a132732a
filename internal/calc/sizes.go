package calc

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrUnknownSize is returned when a size is not present in the requested chart.
var ErrUnknownSize = errors.New("unknown size")

// SizeSystem identifies a sizing convention.
type SizeSystem string

const (
	SystemEU     SizeSystem = "eu"
	SystemUS     SizeSystem = "us"
	SystemUK     SizeSystem = "uk"
	SystemLetter SizeSystem = "letter"
)

// SizeChart identifies which garment chart to use.
type SizeChart string

const (
	ChartClothing SizeChart = "clothing"
	ChartShoes    SizeChart = "shoes"
)

// sizeRow is one equivalence row across all systems. Empty cells mean the
// system has no equivalent at that row.
type sizeRow struct {
	eu, us, uk, letter string
}

// Women's clothing equivalents. Letter sizes repeat across adjacent EU
// sizes the way most retail charts print them.
var clothingRows = []sizeRow{
	{eu: "32", us: "0", uk: "4", letter: "XXS"},
	{eu: "34", us: "2", uk: "6", letter: "XS"},
	{eu: "36", us: "4", uk: "8", letter: "S"},
	{eu: "38", us: "6", uk: "10", letter: "M"},
	{eu: "40", us: "8", uk: "12", letter: "L"},
	{eu: "42", us: "10", uk: "14", letter: "XL"},
	{eu: "44", us: "12", uk: "16", letter: "XXL"},
	{eu: "46", us: "14", uk: "18", letter: "3XL"},
}

// Women's shoe equivalents.
var shoeRows = []sizeRow{
	{eu: "35", us: "5", uk: "2.5"},
	{eu: "36", us: "5.5", uk: "3.5"},
	{eu: "37", us: "6.5", uk: "4"},
	{eu: "38", us: "7.5", uk: "5"},
	{eu: "39", us: "8.5", uk: "6"},
	{eu: "40", us: "9", uk: "6.5"},
	{eu: "41", us: "9.5", uk: "7.5"},
	{eu: "42", us: "10", uk: "8"},
}

// SizeEquivalent holds one size expressed in every system that defines it.
type SizeEquivalent struct {
	EU     string
	US     string
	UK     string
	Letter string
}

// ConvertSize looks up a size in the given chart and system and returns its
// equivalents in all systems. Matching is case-insensitive.
func ConvertSize(chart SizeChart, from SizeSystem, size string) (*SizeEquivalent, error) {
	var rows []sizeRow
	switch chart {
	case ChartClothing:
		rows = clothingRows
	case ChartShoes:
		rows = shoeRows
	default:
		return nil, errors.Errorf("unknown size chart: %q", chart)
	}

	size = strings.ToUpper(strings.TrimSpace(size))
	for _, row := range rows {
		if row.value(from) == "" {
			// The requested system has no column in this chart (e.g.
			// letter sizes for shoes).
			return nil, ErrUnknownSize
		}
		if strings.EqualFold(row.value(from), size) {
			return &SizeEquivalent{EU: row.eu, US: row.us, UK: row.uk, Letter: row.letter}, nil
		}
	}
	return nil, ErrUnknownSize
}

func (r sizeRow) value(sys SizeSystem) string {
	switch sys {
	case SystemEU:
		return r.eu
	case SystemUS:
		return r.us
	case SystemUK:
		return r.uk
	case SystemLetter:
		return r.letter
	default:
		return ""
	}
}

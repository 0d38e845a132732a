package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSize(t *testing.T) {
	tests := []struct {
		name    string
		chart   SizeChart
		from    SizeSystem
		size    string
		want    SizeEquivalent
		wantErr error
	}{
		{
			name:  "clothing EU to all",
			chart: ChartClothing,
			from:  SystemEU,
			size:  "38",
			want:  SizeEquivalent{EU: "38", US: "6", UK: "10", Letter: "M"},
		},
		{
			name:  "clothing letter lowercase",
			chart: ChartClothing,
			from:  SystemLetter,
			size:  "xl",
			want:  SizeEquivalent{EU: "42", US: "10", UK: "14", Letter: "XL"},
		},
		{
			name:  "clothing US with whitespace",
			chart: ChartClothing,
			from:  SystemUS,
			size:  " 8 ",
			want:  SizeEquivalent{EU: "40", US: "8", UK: "12", Letter: "L"},
		},
		{
			name:  "shoes EU",
			chart: ChartShoes,
			from:  SystemEU,
			size:  "39",
			want:  SizeEquivalent{EU: "39", US: "8.5", UK: "6"},
		},
		{
			name:  "shoes half size UK",
			chart: ChartShoes,
			from:  SystemUK,
			size:  "6.5",
			want:  SizeEquivalent{EU: "40", US: "9", UK: "6.5"},
		},
		{
			name:    "unknown clothing size",
			chart:   ChartClothing,
			from:    SystemEU,
			size:    "99",
			wantErr: ErrUnknownSize,
		},
		{
			name:    "letter sizes do not exist for shoes",
			chart:   ChartShoes,
			from:    SystemLetter,
			size:    "M",
			wantErr: ErrUnknownSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertSize(tt.chart, tt.from, tt.size)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}

	t.Run("unknown chart", func(t *testing.T) {
		_, err := ConvertSize(SizeChart("hats"), SystemEU, "38")
		require.Error(t, err)
	})
}

// Every chart row must round-trip through each populated system.
func TestConvertSizeRoundTrip(t *testing.T) {
	for _, sys := range []SizeSystem{SystemEU, SystemUS, SystemUK, SystemLetter} {
		for _, row := range clothingRows {
			got, err := ConvertSize(ChartClothing, sys, row.value(sys))
			require.NoError(t, err)
			assert.Equal(t, row.eu, got.EU)
		}
	}
	for _, sys := range []SizeSystem{SystemEU, SystemUS, SystemUK} {
		for _, row := range shoeRows {
			got, err := ConvertSize(ChartShoes, sys, row.value(sys))
			require.NoError(t, err)
			assert.Equal(t, row.eu, got.EU)
		}
	}
}

package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name        string
		part, total int
		places      int32
		want        string
	}{
		{name: "half", part: 1, total: 2, places: 1, want: "50"},
		{name: "third", part: 1, total: 3, places: 1, want: "33.3"},
		{name: "two thirds", part: 2, total: 3, places: 1, want: "66.7"},
		{name: "two places", part: 2, total: 3, places: 2, want: "66.67"},
		{name: "half away from zero", part: 1, total: 16, places: 1, want: "6.3"},
		{name: "all", part: 7, total: 7, places: 1, want: "100"},
		{name: "none", part: 0, total: 4, places: 1, want: "0"},
		{name: "empty", part: 0, total: 0, places: 1, want: "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Percentage(tc.part, tc.total, tc.places)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s, want %s", got, tc.want)
		})
	}
}

func TestRemarkFor(t *testing.T) {
	tests := []struct {
		p       string
		minimum int
		want    Remark
	}{
		{p: "95", minimum: 75, want: RemarkExcellent},
		{p: "90.01", minimum: 75, want: RemarkExcellent},
		{p: "90", minimum: 75, want: RemarkNone},
		{p: "80", minimum: 75, want: RemarkNone},
		{p: "75", minimum: 75, want: RemarkWarning},
		{p: "50.01", minimum: 75, want: RemarkWarning},
		{p: "50", minimum: 75, want: RemarkCritical},
		{p: "0", minimum: 75, want: RemarkCritical},
		{p: "92", minimum: 95, want: RemarkWarning},
		{p: "45", minimum: 40, want: RemarkCritical},
		{p: "60", minimum: 40, want: RemarkNone},
	}
	for _, tc := range tests {
		t.Run(tc.p, func(t *testing.T) {
			assert.Equal(t, tc.want, RemarkFor(decimal.RequireFromString(tc.p), tc.minimum))
		})
	}
}

func TestDaily_Total(t *testing.T) {
	assert.Equal(t, 5, Daily{Present: 3, Absent: 2}.Total())
}

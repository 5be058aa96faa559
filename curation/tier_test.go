package curation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{60.0, Tier{}},
		{60.01, Tier{Gold: true}},
		{99, Tier{Gold: true}},
		{59.99, Tier{Silver: true}},
		{56.0, Tier{Silver: true}},
		{55.99, Tier{}},
		{0, Tier{}},
		{-3, Tier{}},
	}

	for _, tt := range tests {
		got := Classify(tt.score)
		assert.Equal(t, tt.want, got, "score %v", tt.score)
		assert.False(t, got.Gold && got.Silver, "tiers must be exclusive for %v", tt.score)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for s := 50.0; s < 65.0; s += 0.25 {
		assert.Equal(t, Classify(s), Classify(s))
	}
}

func TestTier_Labels(t *testing.T) {
	gold, silver := Tier{Gold: true}.Labels()
	assert.Equal(t, "SIM", gold)
	assert.Equal(t, "NÃO", silver)

	gold, silver = Tier{}.Labels()
	assert.Equal(t, "NÃO", gold)
	assert.Equal(t, "NÃO", silver)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"56,25", 56.25, true},
		{"1.234,5", 1234.5, true},
		{"60", 60.0, true},
		{"60.5", 60.5, true},
		{"  57 ", 57, true},
		{"", 0, false},
		{"   ", 0, false},
		{"n/a", 0, false},
		{"sessenta", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseScore(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		if tt.wantOK {
			assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
		}
	}
}

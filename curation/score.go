package curation

import (
	"math"
	"strconv"
	"strings"
)

// ParseScore parses a locale-formatted decimal such as "56,25", "1.234,5" or "60".
//
// When a token holds both '.' and ',' the dots are thousands separators and the
// comma is the decimal point; otherwise a comma is read as the decimal point.
// The second return value is false for blank or non-numeric tokens.
func ParseScore(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ".") && strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

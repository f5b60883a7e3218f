package store

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ParseFloat parses a cell into an optional float. Thousands separators
// are tolerated (some cap sources emit "120,000,000"). Anything
// unparseable, including "", "n/a" and "NaN", is a missing value, never
// an error: a bad cell drops the field, not the table.
func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatFloat renders an optional float; nil becomes the empty cell.
func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Float is a literal helper for optional numerics.
func Float(v float64) *float64 {
	return &v
}

// Median returns the median of vs, or nil when vs is empty.
func Median(vs []float64) *float64 {
	if len(vs) == 0 {
		return nil
	}
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return &sorted[mid]
	}
	m := (sorted[mid-1] + sorted[mid]) / 2
	return &m
}

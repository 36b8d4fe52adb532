// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"math"
	"strconv"
	"strings"
)

// ParseRating parses a rating payload strictly: surrounding whitespace is
// ignored, anything else that is not a finite number is rejected
func ParseRating(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseRatings returns every valid rating in response order
func parseRatings(responses []Response) []float64 {
	var values []float64
	for _, r := range responses {
		if r.TextValue == nil {
			continue
		}
		if v, ok := ParseRating(*r.TextValue); ok {
			values = append(values, v)
		}
	}
	return values
}

// distribution counts unrounded values keyed by their shortest decimal form
func distribution(values []float64) map[string]int {
	d := make(map[string]int)
	for _, v := range values {
		d[formatRating(v)]++
	}
	return d
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// percentage returns round(100*count/total), 0 when total is 0
func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(total)))
}

// mean calculates the arithmetic mean
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// roundTo rounds halves toward +Inf, so -0.125 becomes -0.12
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}

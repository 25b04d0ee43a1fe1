package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SummariseValues renders a weighted categorical value distribution as a
// compact display string. Values above 10% of the total weight appear plain,
// above 5% in parentheses, the rest in square brackets, joined by " / ". A
// trailing "*" marks the presence of records with no normalized value.
func SummariseValues(values []string, weights []float64) string {
	totals := make(map[string]float64)
	order := make([]string, 0, len(values))
	var sum float64
	hasNull := false
	for i, v := range values {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		sum += w
		if v == "" {
			hasNull = true
			continue
		}
		if _, seen := totals[v]; !seen {
			order = append(order, v)
		}
		totals[v] += w
	}
	if sum == 0 {
		if hasNull {
			return "*"
		}
		return ""
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})

	var parts []string
	for _, v := range order {
		share := totals[v] / sum
		switch {
		case share > 0.1:
			parts = append(parts, v)
		case share > 0.05:
			parts = append(parts, fmt.Sprintf("(%s)", v))
		default:
			parts = append(parts, fmt.Sprintf("[%s]", v))
		}
	}
	out := strings.Join(parts, " / ")
	if hasNull {
		out += " *"
	}
	return strings.TrimSpace(out)
}

// SummariseTriplet renders a collection of best/lower/upper triplets as
// "mean (min -- max)", degrading gracefully when parts are missing: a
// missing best drops the leading number, missing bounds drop the
// parenthesis, and a fully empty collection renders as "*".
func SummariseTriplet(best, lower, upper []*float64) string {
	meanBest, okBest := meanOf(best)
	minLower, okLower := minOf(lower)
	maxUpper, okUpper := maxOf(upper)

	switch {
	case !okBest && !okLower && !okUpper:
		return "*"
	case !okBest:
		return fmt.Sprintf("(%s -- %s)", formatBound(minLower, okLower), formatBound(maxUpper, okUpper))
	case !okLower && !okUpper:
		return fmt.Sprintf("%.1f", meanBest)
	default:
		return fmt.Sprintf("%.1f (%s -- %s)", meanBest, formatBound(minLower, okLower), formatBound(maxUpper, okUpper))
	}
}

func formatBound(v float64, ok bool) string {
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%.1f", v)
}

func meanOf(values []*float64) (float64, bool) {
	var sum float64
	n := 0
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func minOf(values []*float64) (float64, bool) {
	out := math.Inf(1)
	ok := false
	for _, v := range values {
		if v != nil && *v < out {
			out = *v
			ok = true
		}
	}
	return out, ok
}

func maxOf(values []*float64) (float64, bool) {
	out := math.Inf(-1)
	ok := false
	for _, v := range values {
		if v != nil && *v > out {
			out = *v
			ok = true
		}
	}
	return out, ok
}

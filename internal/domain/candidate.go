package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Candidate is a restaurant-like point of interest with derived
// distance and walking-time metrics. IDs are provider-scoped: unique
// within one fetch batch, not stable across providers.
type Candidate struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	DistanceMeters float64 `json:"distance"`
	WalkMinutes    int     `json:"time"`
	Rating         float64 `json:"rating"`
}

// FormatRating renders the candidate rating for tables.
func (c Candidate) FormatRating() string {
	if c.Rating <= 0 {
		return "(No rating)"
	}
	return fmt.Sprintf("%.1f / 5.0", c.Rating)
}

// FormatWalk renders the walking estimate.
func (c Candidate) FormatWalk() string {
	if c.WalkMinutes <= 0 {
		return "< 1 min"
	}
	return fmt.Sprintf("%d min", c.WalkMinutes)
}

// FormatCategory renders the category label with a leading capital.
func (c Candidate) FormatCategory() string {
	label := strings.TrimSpace(c.Category)
	if label == "" {
		return "-"
	}
	first, size := utf8.DecodeRuneInString(label)
	return strings.ToUpper(string(first)) + label[size:]
}

// Categories returns the sorted distinct category labels present in candidates.
func Categories(candidates []Candidate) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, c := range candidates {
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		out = append(out, c.Category)
	}
	sort.Strings(out)
	return out
}

// Package deals builds the venue feed served by /api/deals from a raw
// newline-delimited business dataset.
package deals

import "strings"

// DefaultCategories are the category fragments a venue must mention to be listed.
var DefaultCategories = []string{"bar", "club", "restaurant"}

// Admit reports whether categories contains any of targets, ignoring case.
// Matching is by substring, so "bar" admits "Dive Bars" and "Barbeque".
func Admit(categories string, targets []string) bool {
	if categories == "" {
		return false
	}
	lower := strings.ToLower(categories)
	for _, target := range targets {
		if target == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(target)) {
			return true
		}
	}
	return false
}

// ParseCategories splits a comma separated flag value into trimmed, non-empty fragments.
func ParseCategories(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

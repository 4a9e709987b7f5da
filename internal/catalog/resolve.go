package catalog

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// ResolveCategory maps free text to one of labels: exact match first, then
// the first label with the query as prefix, then the closest label by edit
// distance as long as it is within half the query length.
func ResolveCategory(labels []string, query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(labels) == 0 {
		return "", false
	}
	for _, l := range labels {
		if strings.ToLower(l) == q {
			return l, true
		}
	}
	for _, l := range labels {
		if strings.HasPrefix(strings.ToLower(l), q) {
			return l, true
		}
	}

	best, bestDist := "", -1
	for _, l := range labels {
		d := levenshtein.ComputeDistance(q, strings.ToLower(l))
		if bestDist < 0 || d < bestDist {
			best, bestDist = l, d
		}
	}
	limit := len([]rune(q)) / 2
	if limit < 1 {
		limit = 1
	}
	if bestDist > limit {
		return "", false
	}
	return best, true
}

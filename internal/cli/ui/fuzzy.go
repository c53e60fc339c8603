package ui

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

const (
	// DefaultMaxDistance is the default maximum edit distance to consider for fuzzy matching
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions is the default maximum number of suggestions to return
	DefaultMaxSuggestions = 3
)

// ShortName strips the package path from a qualified Go type name:
// "github.com/x/engine.Sprite" becomes "engine.Sprite".
func ShortName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// FindSimilar returns up to DefaultMaxSuggestions candidates whose short
// name, or the part after the package qualifier, is within
// DefaultMaxDistance edits of target. Matching ignores case.
func FindSimilar(target string, candidates []string) []string {
	type match struct {
		name     string
		distance int
	}

	target = strings.ToLower(target)
	var matches []match
	for _, c := range candidates {
		short := strings.ToLower(ShortName(c))
		dist := levenshtein.Distance(target, short, nil)
		if i := strings.LastIndex(short, "."); i >= 0 {
			dist = min(dist, levenshtein.Distance(target, short[i+1:], nil))
		}
		if dist <= DefaultMaxDistance {
			matches = append(matches, match{name: ShortName(c), distance: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].distance < matches[j].distance })

	out := make([]string, 0, DefaultMaxSuggestions)
	for i := 0; i < len(matches) && i < DefaultMaxSuggestions; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

package errors

import (
	"cmp"
	"slices"
	"strings"
)

// MaxSuggestions caps how many names an undefined-name error proposes.
const MaxSuggestions = 3

// Suggestion is a declared name close to a misspelled one.
type Suggestion struct {
	Value    string
	Distance int
}

// threshold is the largest edit distance accepted for a name of n runes.
func threshold(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 5:
		return 2
	default:
		return 3
	}
}

// SuggestSimilar returns the names in scope nearest to name, ignoring case,
// nearest first and ties broken alphabetically.
func SuggestSimilar(name string, inScope []string) []Suggestion {
	if name == "" {
		return nil
	}
	folded := strings.ToLower(name)
	limit := threshold(len([]rune(folded)))
	var out []Suggestion
	for _, candidate := range inScope {
		lower := strings.ToLower(candidate)
		if candidate == "" || lower == folded {
			continue
		}
		if d := editDistance(folded, lower); d <= limit {
			out = append(out, Suggestion{Value: candidate, Distance: d})
		}
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// FormatSuggestions renders suggestions as a hint, or "" when there are none.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "did you mean '" + suggestions[0].Value + "'?"
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s.Value + "'"
	}
	return "did you mean one of: " + strings.Join(quoted, ", ") + "?"
}

// editDistance is the Levenshtein distance between a and b over runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		diag := row[0]
		row[0] = j
		for i := 1; i <= len(ra); i++ {
			above := row[i]
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			row[i] = min(above+1, row[i-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(ra)]
}

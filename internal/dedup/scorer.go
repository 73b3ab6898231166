package dedup

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// TokenOverlap computes the Jaccard similarity between the whitespace
// token sets of two titles, case-insensitively. Returns a value in [0, 1].
// An empty union yields 0.0: two blank titles carry no evidence of
// similarity.
func TokenOverlap(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 0.0
	}

	intersection := 0
	union := len(tokensA)
	for tok := range tokensB {
		if _, ok := tokensA[tok]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// CompanySimilarity scores two company names on a 0-100 edit-distance
// ratio, case-insensitively. Minor punctuation or spacing differences
// ("Stripe Inc" vs "Stripe Inc.") score above the 90 cutoff used by the
// fuzzy stage; distinct names ("Stripe" vs "Strips") fall below it.
func CompanySimilarity(a, b string) int {
	return fuzzy.Ratio(strings.ToLower(a), strings.ToLower(b))
}

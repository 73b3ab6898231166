package dedup

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

// Thresholds for the fuzzy stage. Carried over unchanged from years of
// tuning against multi-source boards; both comparisons are strict.
const (
	companySimilarityThreshold = 90
	tokenOverlapThreshold      = 0.8
)

// ByHash collapses listings that share a content hash (id), keeping the
// one with the newest date_added. Output preserves the insertion order of
// each id's first occurrence.
func ByHash(listings []models.Listing) ([]models.Listing, int) {
	return dedupByKey(listings, func(l models.Listing) string { return l.ID })
}

// ByURL collapses listings that share an apply URL. The key is the exact
// URL string: trailing slashes or query strings are significant, so two
// lexically different URLs never merge here.
func ByURL(listings []models.Listing) ([]models.Listing, int) {
	return dedupByKey(listings, func(l models.Listing) string { return l.ApplyURL })
}

func dedupByKey(listings []models.Listing, key func(models.Listing) string) ([]models.Listing, int) {
	seen := make(map[string]int, len(listings))
	out := make([]models.Listing, 0, len(listings))
	removed := 0

	for _, listing := range listings {
		k := key(listing)
		if idx, ok := seen[k]; ok {
			// Keep the newer one in the slot of the first occurrence.
			if listing.DateAdded.After(out[idx].DateAdded.Time) {
				out[idx] = listing
			}
			removed++
			continue
		}
		seen[k] = len(out)
		out = append(out, listing)
	}

	return out, removed
}

// Fuzzy collapses near-duplicates: pairs whose company names score above
// 90 and whose role titles overlap above 0.8. Listings whose id appears in
// the archived set are reposts and take no part in any comparison, on
// either side of a pair.
//
// The pass is greedy and order-dependent: when the newer listing j wins,
// i is dropped and no longer compared; when i wins, j is dropped and i
// keeps scanning. Clusters larger than two may not fully collapse in one
// pass; that matches the long-standing behavior of the board and a run
// never retries.
func Fuzzy(listings []models.Listing, archived mapset.Set[string]) ([]models.Listing, int) {
	if len(listings) <= 1 {
		return listings, 0
	}

	removed := make([]bool, len(listings))
	removedCount := 0

	for i := 0; i < len(listings); i++ {
		if removed[i] || archived.Contains(listings[i].ID) {
			continue
		}

		for j := i + 1; j < len(listings); j++ {
			if removed[j] || archived.Contains(listings[j].ID) {
				continue
			}

			if CompanySimilarity(listings[i].Company, listings[j].Company) <= companySimilarityThreshold {
				continue
			}

			if TokenOverlap(listings[i].Role, listings[j].Role) <= tokenOverlapThreshold {
				continue
			}

			// Fuzzy duplicate pair: the newer date_added survives. On an
			// exact tie j survives.
			if !listings[j].DateAdded.Before(listings[i].DateAdded.Time) {
				removed[i] = true
				removedCount++
				break
			}
			removed[j] = true
			removedCount++
		}
	}

	out := make([]models.Listing, 0, len(listings)-removedCount)
	for idx, listing := range listings {
		if !removed[idx] {
			out = append(out, listing)
		}
	}
	return out, removedCount
}

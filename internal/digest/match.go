package digest

import "strings"

// Characters stripped from titles before tokenizing. Korean headlines lean
// heavily on brackets and middle dots, which would otherwise split tokens
// inconsistently between the two sources.
var titleStripChars = []string{"[", "]", "(", ")", "…", `"`, "'", "’", "“", "”", "·", "|"}

// NormalizeTitle lowercases, blanks the punctuation set above, collapses
// whitespace and trims.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	for _, ch := range titleStripChars {
		s = strings.ReplaceAll(s, ch, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}

func tokenSet(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(NormalizeTitle(title)) {
		set[tok] = struct{}{}
	}
	return set
}

// TitleSimilarity is the Jaccard index over normalized token sets, 0.0 when
// either set is empty.
func TitleSimilarity(a, b string) float64 {
	sa := tokenSet(a)
	sb := tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	return float64(intersection) / float64(union)
}

// Assignment maps each primary-item index to the search-item index it
// matched, or -1. Each search index appears at most once.
type Assignment struct {
	PrimaryToSearch []int
	Consumed        map[int]bool
	Scores          []float64
}

// Matched returns the search index for primary item i, with ok=false when
// the item found no match.
func (a Assignment) Matched(i int) (int, bool) {
	if i < 0 || i >= len(a.PrimaryToSearch) || a.PrimaryToSearch[i] < 0 {
		return -1, false
	}
	return a.PrimaryToSearch[i], true
}

// Overlap counts primary items that found a match.
func (a Assignment) Overlap() int {
	n := 0
	for _, j := range a.PrimaryToSearch {
		if j >= 0 {
			n++
		}
	}
	return n
}

// Match greedily pairs primary titles with search titles. Primary items are
// walked in input order; each takes the best-scoring not-yet-consumed search
// item, ties going to the lowest index. A pair is kept when its score is
// positive and at least threshold. The walk order makes results
// deterministic for identical inputs.
func Match(primaryTitles, searchTitles []string, threshold float64) Assignment {
	asn := Assignment{
		PrimaryToSearch: make([]int, len(primaryTitles)),
		Consumed:        make(map[int]bool),
		Scores:          make([]float64, len(primaryTitles)),
	}

	for i, pt := range primaryTitles {
		bestJ := -1
		bestScore := 0.0
		for j, st := range searchTitles {
			if asn.Consumed[j] {
				continue
			}
			score := TitleSimilarity(pt, st)
			if score > bestScore {
				bestScore = score
				bestJ = j
			}
		}

		if bestJ >= 0 && bestScore >= threshold {
			asn.PrimaryToSearch[i] = bestJ
			asn.Consumed[bestJ] = true
			asn.Scores[i] = bestScore
		} else {
			asn.PrimaryToSearch[i] = -1
			asn.Scores[i] = bestScore
		}
	}
	return asn
}

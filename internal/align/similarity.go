package align

import (
	"sort"
	"strings"
)

// similarity weights, summing to 1.00 as specified.
const (
	weightTokenSet  = 0.30
	weightTokenSort = 0.25
	weightPartial   = 0.20
	weightSequence  = 0.15
	weightNgram     = 0.10
)

// similarity scores how alike two pieces of text are, combining five
// sub-scores into one number in [0,1]. Returns 0 if either input
// normalizes to the empty string.
func similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return 0
	}

	tokenSet := tokenSetRatio(na, nb)
	tokenSort := tokenSortRatio(na, nb)
	partial := partialRatio(na, nb)
	sequence := sequenceRatio(na, nb)
	ngram := jaccard(ngrams(na, 3), ngrams(nb, 3))

	return weightTokenSet*tokenSet +
		weightTokenSort*tokenSort +
		weightPartial*partial +
		weightSequence*sequence +
		weightNgram*ngram
}

// sequenceRatio is the classic Ratcliff/Obershelp matching-block ratio
// 2M/T, where M is the number of matching characters found by
// recursively taking the longest common contiguous block and recursing
// on the unmatched left and right remainders, and T is the combined
// length of both strings.
func sequenceRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	m := matchingCharacters(a, b)
	return 2 * float64(m) / float64(total)
}

func matchingCharacters(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	b2j := make(map[byte][]int, len(b))
	for i := 0; i < len(b); i++ {
		b2j[b[i]] = append(b2j[b[i]], i)
	}
	return matchRec(a, 0, len(a), b2j, 0, len(b))
}

// matchRec recursively sums the size of matching blocks between
// a[aLo:aHi] and b[bLo:bHi] (b indexed via the precomputed b2j byte ->
// indices map), following the classic Ratcliff/Obershelp
// find-longest-match-then-recurse-on-both-sides algorithm used by
// Python's difflib.SequenceMatcher.
func matchRec(a string, aLo, aHi int, b2j map[byte][]int, bLo, bHi int) int {
	if aLo >= aHi || bLo >= bHi {
		return 0
	}

	besti, bestj, bestsize := aLo, bLo, 0
	j2len := make(map[int]int)

	for i := aLo; i < aHi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < bLo || j >= bHi {
				continue
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	if bestsize == 0 {
		return 0
	}

	total := bestsize
	total += matchRec(a, aLo, besti, b2j, bLo, bestj)
	total += matchRec(a, besti+bestsize, aHi, b2j, bestj+bestsize, bHi)
	return total
}

// partialRatio returns the best substring-alignment ratio of the shorter
// string within the longer one, per fuzzywuzzy's partial_ratio.
func partialRatio(a, b string) float64 {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if shorter == "" {
		if longer == "" {
			return 1.0
		}
		return 0.0
	}
	if len(shorter) >= len(longer) {
		return sequenceRatio(shorter, longer)
	}

	best := 0.0
	windows := len(longer) - len(shorter) + 1
	for start := 0; start < windows; start++ {
		window := longer[start : start+len(shorter)]
		if r := sequenceRatio(shorter, window); r > best {
			best = r
		}
	}
	return best
}

// tokenSortRatio sorts each string's whitespace tokens, rejoins them,
// and compares the results with sequenceRatio.
func tokenSortRatio(a, b string) float64 {
	return sequenceRatio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenSetRatio implements fuzzywuzzy's token-set ratio: split each
// string into a token set, compute the shared intersection and each
// side's leftover tokens, then take the best sequenceRatio among the
// three recombinations of (intersection, intersection+leftover-a,
// intersection+leftover-b).
func tokenSetRatio(a, b string) float64 {
	tokensA := uniqueSortedTokens(a)
	tokensB := uniqueSortedTokens(b)

	setA := toSet(tokensA)
	setB := toSet(tokensB)

	var intersection, onlyA, onlyB []string
	for _, t := range tokensA {
		if _, ok := setB[t]; ok {
			intersection = append(intersection, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range tokensB {
		if _, ok := setA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	sort.Strings(intersection)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	t0 := strings.Join(intersection, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(onlyA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(onlyB, " "))

	best := sequenceRatio(t0, t1)
	if r := sequenceRatio(t0, t2); r > best {
		best = r
	}
	if r := sequenceRatio(t1, t2); r > best {
		best = r
	}
	return best
}

func uniqueSortedTokens(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range strings.Fields(s) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

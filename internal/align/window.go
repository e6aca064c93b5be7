package align

import (
	"math"
	"strings"
)

// findBestMatch searches words[searchStart:searchEnd] for the
// contiguous span whose joined text best matches text, trying several
// window sizes derived from expectedWordCount. It returns nil if no
// candidate window was evaluated.
func findBestMatch(text string, words []Word, searchStart, searchEnd, expectedWordCount int, th Thresholds) *MatchResult {
	if searchEnd > len(words) {
		searchEnd = len(words)
	}
	if searchStart >= searchEnd {
		return nil
	}
	if normalize(text) == "" {
		return nil
	}

	var best *MatchResult
	bestScore := -1.0

	for _, w := range candidateWindowSizes(expectedWordCount) {
		if w <= 0 {
			continue
		}
		lastStart := searchEnd - w
		for i := searchStart; i <= lastStart; i++ {
			windowText := joinWordTexts(words[i : i+w])

			if partialRatio(normalize(text), normalize(windowText)) < th.PartialPrefilterMin {
				continue
			}

			score := similarity(text, windowText)
			if score > bestScore {
				bestScore = score
				best = &MatchResult{
					StartIdx:   i,
					EndIdx:     i + w,
					StartMs:    int(math.Round(words[i].StartSec * 1000)),
					EndMs:      int(math.Round(words[i+w-1].EndSec * 1000)),
					Confidence: score,
				}
			}

			if score >= th.EarlyExitScore {
				return best
			}
		}
	}

	return best
}

// candidateWindowSizes returns the deduplicated, positive entries of
// {expected, expected+1, expected-1, expected+2, expected-2,
// floor(0.7*expected)} in the iteration order the spec pins: window
// sizes in this set order, then ascending start index.
func candidateWindowSizes(expected int) []int {
	raw := []int{
		expected,
		expected + 1,
		expected - 1,
		expected + 2,
		expected - 2,
		int(math.Floor(0.7 * float64(expected))),
	}

	seen := make(map[int]struct{}, len(raw))
	out := make([]int, 0, len(raw))
	for _, w := range raw {
		if w <= 0 {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func joinWordTexts(words []Word) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w.Text)
	}
	return b.String()
}

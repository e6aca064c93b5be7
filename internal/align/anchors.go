package align

// findAnchors implements Level 1: identify high-confidence segment <->
// word-span matches using time-bounded windows. The returned slice is
// strictly increasing in SegmentIndex and non-decreasing in
// WordEndIndex.
func findAnchors(segments []Segment, words []Word, audioDurationMs int, th Thresholds) []Anchor {
	var anchors []Anchor
	lastAnchorWordEnd := 0

	for _, seg := range segments {
		wc := wordCount(seg.Text)
		if wc < th.AnchorMinWords || wc > th.AnchorMaxWords {
			continue
		}

		windowStartMs := clampInt(seg.StartMs-int(th.TimeWindowSeconds*1000), 0, audioDurationMs)
		windowEndMs := clampInt(seg.EndMs+int(th.TimeWindowSeconds*1000), 0, audioDurationMs)

		wordStart := findWordAtTime(words, float64(windowStartMs)/1000)
		wordEnd := findWordAtTime(words, float64(windowEndMs)/1000)

		wordStart = maxInt(wordStart, lastAnchorWordEnd)
		if wordEnd-wordStart < wc+10 {
			wordEnd = minInt(len(words), wordStart+wc+20)
		}

		match := findBestMatch(seg.Text, words, wordStart, wordEnd, wc, th)
		if match == nil || match.Confidence < th.AnchorMinConfidence {
			continue
		}

		anchors = append(anchors, Anchor{
			SegmentIndex:   seg.Index,
			WordStartIndex: match.StartIdx,
			WordEndIndex:   match.EndIdx,
			Confidence:     match.Confidence,
			StartMs:        match.StartMs,
			EndMs:          match.EndMs,
		})
		lastAnchorWordEnd = match.EndIdx
	}

	return anchors
}

// findWordAtTime returns the largest word index whose StartSec <= t
// (equivalently, one less than the first word whose StartSec >= t),
// clamped to [0, len(words)-1].
func findWordAtTime(words []Word, t float64) int {
	if len(words) == 0 {
		return 0
	}

	lo, hi := 0, len(words)
	for lo < hi {
		mid := (lo + hi) / 2
		if words[mid].StartSec <= t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	idx := lo - 1
	return clampInt(idx, 0, len(words)-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package align

import "math"

// alignRegion implements Level 3: match every segment inside a region
// against the word timeline, interpolating proportionally when a match
// fails to reach the minimum confidence.
func alignRegion(region Region, words []Word, th Thresholds) []AlignedSegment {
	out := make([]AlignedSegment, 0, len(region.Segments))

	currentWordIdx := region.WordStartIndex
	totalWords := 0
	for _, s := range region.Segments {
		totalWords += wordCount(s.Text)
	}
	wordsBefore := 0

	for i, seg := range region.Segments {
		expected := wordCount(seg.Text)

		searchStart := maxInt(region.WordStartIndex, currentWordIdx-5)
		searchEnd := minInt(region.WordEndIndex+1, currentWordIdx+3*expected+th.MinSearchBuffer)

		match := findBestMatch(seg.Text, words, searchStart, searchEnd, expected, th)

		if match != nil && match.Confidence >= th.MinSegmentConfidence {
			out = append(out, AlignedSegment{
				SpeakerID:  seg.SpeakerID,
				Text:       seg.Text,
				StartMs:    match.StartMs,
				EndMs:      match.EndMs,
				Confidence: match.Confidence,
				Method:     MethodAligned,
			})
			currentWordIdx = match.EndIdx
		} else {
			startMs, endMs := interpolateSpan(region, totalWords, wordsBefore, expected, i, len(region.Segments))
			confidence := 0.0
			if match != nil {
				confidence = match.Confidence
			}
			out = append(out, AlignedSegment{
				SpeakerID:  seg.SpeakerID,
				Text:       seg.Text,
				StartMs:    startMs,
				EndMs:      endMs,
				Confidence: confidence,
				Method:     MethodInterpolated,
			})
			// current_word_idx intentionally not advanced: no reliable
			// information was gained from an interpolated segment.
		}

		wordsBefore += expected
	}

	return out
}

// interpolateSpan computes the proportional time slice for a segment
// that could not be reliably matched, using word-count ratios when the
// region has any words, and positional ratios otherwise.
func interpolateSpan(region Region, totalWords, wordsBefore, wSelf, i, n int) (int, int) {
	var startRatio, endRatio float64
	if totalWords > 0 {
		startRatio = float64(wordsBefore) / float64(totalWords)
		endRatio = float64(wordsBefore+wSelf) / float64(totalWords)
	} else {
		startRatio = float64(i) / float64(n)
		endRatio = float64(i+1) / float64(n)
	}

	d := region.TimeEndMs - region.TimeStartMs

	interpStart := region.TimeStartMs + int(math.Round(startRatio*float64(d)))
	interpEnd := region.TimeStartMs + int(math.Round(endRatio*float64(d)))
	if interpEnd > region.TimeEndMs {
		interpEnd = region.TimeEndMs
	}
	if interpStart > interpEnd-50 {
		interpStart = interpEnd - 50
	}

	return interpStart, interpEnd
}

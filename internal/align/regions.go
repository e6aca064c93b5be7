package align

// buildRegions implements Level 2: partition the non-anchor segments of
// the transcript into independent regions bounded by anchors (or the
// transcript edges). Regions with no segments are omitted.
func buildRegions(segments []Segment, anchors []Anchor, words []Word, audioDurationMs int) []Region {
	if len(anchors) == 0 {
		if len(segments) == 0 {
			return nil
		}
		return []Region{{
			StartSegmentIndex: segments[0].Index,
			EndSegmentIndex:   segments[len(segments)-1].Index,
			WordStartIndex:    0,
			WordEndIndex:      len(words),
			TimeStartMs:       0,
			TimeEndMs:         audioDurationMs,
			Segments:          segments,
		}}
	}

	var regions []Region

	// Prefix region: segments before the first anchor.
	if r := sliceRegion(segments, 0, anchors[0].SegmentIndex-1, 0, anchors[0].WordStartIndex, 0, anchors[0].StartMs); r != nil {
		regions = append(regions, *r)
	}

	// Gaps between adjacent anchors.
	for i := 0; i+1 < len(anchors); i++ {
		cur, next := anchors[i], anchors[i+1]
		if r := sliceRegion(segments, cur.SegmentIndex+1, next.SegmentIndex-1, cur.WordEndIndex, next.WordStartIndex, cur.EndMs, next.StartMs); r != nil {
			regions = append(regions, *r)
		}
	}

	// Suffix region: segments after the last anchor.
	last := anchors[len(anchors)-1]
	lastSegIdx := len(segments) - 1
	if r := sliceRegion(segments, last.SegmentIndex+1, lastSegIdx, last.WordEndIndex, len(words), last.EndMs, audioDurationMs); r != nil {
		regions = append(regions, *r)
	}

	return regions
}

// sliceRegion builds a Region spanning segment indices
// [startSegIdx, endSegIdx] inclusive, selecting the matching Segment
// values out of the full segment list by their Index field. Returns nil
// if the range contains no segments.
func sliceRegion(segments []Segment, startSegIdx, endSegIdx, wordStart, wordEnd, timeStart, timeEnd int) *Region {
	if startSegIdx > endSegIdx {
		return nil
	}

	var picked []Segment
	for _, s := range segments {
		if s.Index >= startSegIdx && s.Index <= endSegIdx {
			picked = append(picked, s)
		}
	}
	if len(picked) == 0 {
		return nil
	}

	return &Region{
		StartSegmentIndex: startSegIdx,
		EndSegmentIndex:   endSegIdx,
		WordStartIndex:    wordStart,
		WordEndIndex:      wordEnd,
		TimeStartMs:       timeStart,
		TimeEndMs:         timeEnd,
		Segments:          picked,
	}
}

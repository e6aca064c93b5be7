package align

import (
	"errors"
	"math"
)

// ErrNoWords is returned when forced-alignment words are required but
// none were supplied; the caller (not this package) decides whether
// that's fatal.
var ErrNoWords = errors.New("align: zero words supplied by forced aligner")

// ProgressFunc is an optional, synchronous hook the orchestrator calls
// after each level completes. It takes no reference to any I/O
// primitive; callers that want to fan this out to a websocket hub or a
// log do so outside this package.
type ProgressFunc func(level, detail string)

// Align runs HARDY end to end with the default thresholds and no
// progress reporting.
func Align(segments []Segment, words []Word) ([]AlignedSegment, error) {
	return AlignWithOptions(segments, words, DefaultThresholds(), nil)
}

// AlignWithOptions runs HARDY end to end with caller-supplied thresholds
// and an optional progress callback, implementing the orchestrator
// described in the specification:
//
//  1. empty segments or words yields an empty result, not an error
//  2. audio_duration_ms is derived from the last word's end time
//  3. anchors and regions are computed
//  4. an output slot is allocated per segment
//  5. anchors are placed directly into their slots
//  6. each region's aligned segments are written to their slots, never
//     overwriting an anchor
//  7. any slot still unfilled (should not happen) gets a safety-net
//     "original" fallback
//  8. the validator enforces monotonicity, duration sanity, and the
//     audio-duration bound
func AlignWithOptions(segments []Segment, words []Word, th Thresholds, onProgress ProgressFunc) ([]AlignedSegment, error) {
	if len(segments) == 0 || len(words) == 0 {
		return []AlignedSegment{}, nil
	}

	audioDurationMs := int(math.Round(words[len(words)-1].EndSec * 1000))

	anchors := findAnchors(segments, words, audioDurationMs, th)
	report(onProgress, "anchors", "anchor finder complete")

	regions := buildRegions(segments, anchors, words, audioDurationMs)
	report(onProgress, "regions", "region segmenter complete")

	slots := make([]AlignedSegment, len(segments))
	filled := make([]bool, len(segments))

	bySegmentIndex := make(map[int]Segment, len(segments))
	for _, s := range segments {
		bySegmentIndex[s.Index] = s
	}

	for _, a := range anchors {
		seg := bySegmentIndex[a.SegmentIndex]
		slots[a.SegmentIndex] = AlignedSegment{
			SpeakerID:  seg.SpeakerID,
			Text:       seg.Text,
			StartMs:    a.StartMs,
			EndMs:      a.EndMs,
			Confidence: a.Confidence,
			Method:     MethodAnchor,
		}
		filled[a.SegmentIndex] = true
	}

	for _, region := range regions {
		aligned := alignRegion(region, words, th)
		for j, seg := range region.Segments {
			if filled[seg.Index] {
				continue
			}
			slots[seg.Index] = aligned[j]
			filled[seg.Index] = true
		}
	}
	report(onProgress, "regional", "regional aligner complete")

	for _, seg := range segments {
		if filled[seg.Index] {
			continue
		}
		slots[seg.Index] = AlignedSegment{
			SpeakerID:  seg.SpeakerID,
			Text:       seg.Text,
			StartMs:    seg.StartMs,
			EndMs:      seg.EndMs,
			Confidence: 0.0,
			Method:     MethodOriginal,
		}
		filled[seg.Index] = true
	}

	out := validate(slots, audioDurationMs, th)
	report(onProgress, "validate", "validator complete")

	return out, nil
}

func report(fn ProgressFunc, level, detail string) {
	if fn != nil {
		fn(level, detail)
	}
}

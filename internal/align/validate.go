package align

import "math"

// validate implements Level 4: enforce monotonicity, duration sanity,
// and the audio-duration bound over the ordered aligned list, in a
// single forward pass followed by a final scaling pass.
func validate(segments []AlignedSegment, audioDurationMs int, th Thresholds) []AlignedSegment {
	out := make([]AlignedSegment, len(segments))
	copy(out, segments)

	for i := range out {
		if i > 0 {
			out[i] = fixMonotonicity(out[i], out[i-1], th)
		}
		var prev *AlignedSegment
		if i > 0 {
			prev = &out[i-1]
		}
		out[i] = fixDuration(out[i], prev, th)
	}

	if audioDurationMs > 0 && len(out) > 0 {
		out = scaleToAudioBound(out, audioDurationMs)
	}

	return out
}

func fixMonotonicity(seg, prev AlignedSegment, th Thresholds) AlignedSegment {
	if seg.StartMs >= prev.EndMs-th.MaxOverlapMs {
		return seg
	}

	duration := seg.EndMs - seg.StartMs
	seg.StartMs = prev.EndMs
	seg.EndMs = seg.StartMs + duration
	seg.Confidence *= 0.9
	seg.Method = seg.Method.WithFixedSuffix()
	return seg
}

func fixDuration(seg AlignedSegment, prev *AlignedSegment, th Thresholds) AlignedSegment {
	wc := maxInt(wordCount(seg.Text), 1)
	duration := seg.EndMs - seg.StartMs
	msPerWord := float64(duration) / float64(wc)

	if msPerWord >= float64(th.MinMsPerWord) && msPerWord <= float64(th.MaxMsPerWord) {
		return seg
	}

	start := seg.StartMs
	if prev != nil {
		start = prev.EndMs + 50
	}
	seg.StartMs = start
	seg.EndMs = start + 150*wc
	seg.Confidence = 0.3
	seg.Method = MethodDurationFallback
	return seg
}

func scaleToAudioBound(segments []AlignedSegment, audioDurationMs int) []AlignedSegment {
	last := segments[len(segments)-1]
	if last.EndMs <= audioDurationMs || last.EndMs == 0 {
		return segments
	}

	scale := float64(audioDurationMs) / float64(last.EndMs)

	out := make([]AlignedSegment, len(segments))
	for i, seg := range segments {
		seg.StartMs = roundScale(seg.StartMs, scale)
		seg.EndMs = roundScale(seg.EndMs, scale)
		seg.Confidence *= 0.8
		seg.Method = seg.Method.WithScaledSuffix()
		out[i] = seg
	}

	if out[len(out)-1].EndMs > audioDurationMs {
		out[len(out)-1].EndMs = audioDurationMs
	}

	return out
}

func roundScale(ms int, scale float64) int {
	return int(math.Round(float64(ms) * scale))
}

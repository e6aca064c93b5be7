package align

// Stats summarizes an alignment run for callers that want a quick
// quality signal without walking the full segment list themselves.
type Stats struct {
	SegmentCount      int
	AverageConfidence float64
	MethodCounts      map[Method]int
}

// ComputeStats derives summary statistics from an aligned segment list.
func ComputeStats(segments []AlignedSegment) Stats {
	stats := Stats{
		SegmentCount: len(segments),
		MethodCounts: make(map[Method]int),
	}
	if len(segments) == 0 {
		return stats
	}

	total := 0.0
	for _, s := range segments {
		total += s.Confidence
		stats.MethodCounts[s.Method]++
	}
	stats.AverageConfidence = total / float64(len(segments))

	return stats
}

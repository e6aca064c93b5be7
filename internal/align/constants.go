package align

// Thresholds is the full set of tunable constants HARDY runs with. The
// spec pins default values; callers that want different behavior build a
// Thresholds and pass it to AlignWithOptions instead of Align.
type Thresholds struct {
	AnchorMinWords      int
	AnchorMaxWords      int
	AnchorMinConfidence float64
	TimeWindowSeconds   float64

	MinSegmentConfidence float64
	MinSearchBuffer      int

	MaxOverlapMs  int
	MinMsPerWord  int
	MaxMsPerWord  int

	EarlyExitScore     float64
	PartialPrefilterMin float64
}

// DefaultThresholds returns the constants named in the specification.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AnchorMinWords:      2,
		AnchorMaxWords:      20,
		AnchorMinConfidence: 0.75,
		TimeWindowSeconds:   30,

		MinSegmentConfidence: 0.40,
		MinSearchBuffer:      50,

		MaxOverlapMs: 2000,
		MinMsPerWord: 20,
		MaxMsPerWord: 800,

		EarlyExitScore:      0.95,
		PartialPrefilterMin: 0.35,
	}
}

package engine

// Classification is the GOOD/BAD verdict for a single frame.
type Classification string

const (
	ClassificationGood Classification = "GOOD"
	ClassificationBad  Classification = "BAD"
)

// ScoreResult is the per-frame posture assessment derived purely from the
// current frame's features. It carries no memory of past frames.
type ScoreResult struct {
	Score          float64            `json:"score"`
	Classification Classification     `json:"classification"`
	Subscores      map[string]float64 `json:"subscores"`
	Reasons        []string           `json:"reasons"`
}

// Subscore names used as keys in ScoreResult.Subscores.
const (
	SubscoreNeck  = "neck"
	SubscoreTorso = "torso"
	SubscoreRoll  = "roll"
)

// neutralSubscore is assigned when a feature is absent: no evidence either
// way, neither rewarded nor penalised.
const neutralSubscore = 0.5

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rampDown maps a smaller-is-better feature onto [0,1]: full score at zero,
// decaying linearly to zero at the bad threshold.
func rampDown(v, threshold float64) float64 {
	return clamp(1-v/threshold, 0, 1)
}

// rampUp maps a larger-is-better feature onto [0,1]: zero at zero, full score
// at the threshold and beyond.
func rampUp(v, threshold float64) float64 {
	return clamp(v/threshold, 0, 1)
}

// AngleRange scores a side-view joint angle against a good window. Values
// inside [GoodMin, GoodMax] score 1.0; outside, the score decays linearly to
// zero as the distance from the nearest boundary approaches the tolerance for
// that direction. Forward (below the window) and backward (above it) have
// independent tolerances.
type AngleRange struct {
	GoodMin           float64
	GoodMax           float64
	ForwardTolerance  float64
	BackwardTolerance float64
}

// Contains reports whether the angle lies in the good window.
func (r AngleRange) Contains(v float64) bool {
	return v >= r.GoodMin && v <= r.GoodMax
}

func (r AngleRange) subscore(v float64) float64 {
	switch {
	case r.Contains(v):
		return 1.0
	case v < r.GoodMin:
		return clamp(1-(r.GoodMin-v)/r.ForwardTolerance, 0, 1)
	default:
		return clamp(1-(v-r.GoodMax)/r.BackwardTolerance, 0, 1)
	}
}

// FrontWeights are the per-feature weights for the front-view composite.
// They must sum to 1.
type FrontWeights struct {
	Neck  float64
	Torso float64
	Roll  float64
}

// SideWeights are the per-feature weights for the side-view composite.
// They must sum to 1.
type SideWeights struct {
	Neck  float64
	Torso float64
}

// ScorerConfig is the immutable threshold/weight configuration for a Scorer.
type ScorerConfig struct {
	View CameraView

	// GoodScoreBoundary is the composite-score classification boundary:
	// GOOD iff score >= boundary.
	GoodScoreBoundary float64

	// Front-view thresholds. NeckFlexBadDeg and TorsoRollBadDeg are
	// smaller-is-better; TorsoCompressionBad is larger-is-better.
	NeckFlexBadDeg      float64
	TorsoCompressionBad float64
	TorsoRollBadDeg     float64
	FrontWeights        FrontWeights

	// Side-view good-angle windows.
	NeckRange   AngleRange
	TorsoRange  AngleRange
	SideWeights SideWeights
}

// Scorer maps per-frame features to subscores, a weighted composite in
// [0,100], a GOOD/BAD classification, and a list of violated-threshold
// reasons. It is stateless; temporal behaviour lives in the Monitor.
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer returns a Scorer for the given configuration.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score assesses one frame's features.
func (s *Scorer) Score(f Features) ScoreResult {
	if s.cfg.View == ViewSide {
		return s.scoreSide(f)
	}
	return s.scoreFront(f)
}

func optSubscore(v *float64, ramp func(float64) float64) float64 {
	if v == nil {
		return neutralSubscore
	}
	return ramp(*v)
}

func (s *Scorer) classify(score float64) Classification {
	if score >= s.cfg.GoodScoreBoundary {
		return ClassificationGood
	}
	return ClassificationBad
}

func (s *Scorer) scoreFront(f Features) ScoreResult {
	sNeck := optSubscore(f.NeckDeg, func(v float64) float64 { return rampDown(v, s.cfg.NeckFlexBadDeg) })
	sTorso := optSubscore(f.TorsoRatio, func(v float64) float64 { return rampUp(v, s.cfg.TorsoCompressionBad) })
	sRoll := optSubscore(f.RollDeg, func(v float64) float64 { return rampDown(v, s.cfg.TorsoRollBadDeg) })

	w := s.cfg.FrontWeights
	score := 100 * (w.Neck*sNeck + w.Torso*sTorso + w.Roll*sRoll)

	// Reasons are raw-value threshold crossings, independent of the
	// composite classification: they can appear even on a GOOD frame.
	reasons := make([]string, 0, 3)
	if f.NeckDeg != nil && *f.NeckDeg > s.cfg.NeckFlexBadDeg {
		reasons = append(reasons, "Forward Head")
	}
	if f.TorsoRatio != nil && *f.TorsoRatio < s.cfg.TorsoCompressionBad {
		reasons = append(reasons, "Slouching")
	}
	if f.RollDeg != nil && *f.RollDeg > s.cfg.TorsoRollBadDeg {
		reasons = append(reasons, "Lateral Lean")
	}

	return ScoreResult{
		Score:          score,
		Classification: s.classify(score),
		Subscores: map[string]float64{
			SubscoreNeck:  sNeck * 100,
			SubscoreTorso: sTorso * 100,
			SubscoreRoll:  sRoll * 100,
		},
		Reasons: reasons,
	}
}

func (s *Scorer) scoreSide(f Features) ScoreResult {
	sNeck := optSubscore(f.NeckDeg, s.cfg.NeckRange.subscore)
	sTorso := optSubscore(f.TorsoDeg, s.cfg.TorsoRange.subscore)

	w := s.cfg.SideWeights
	score := 100 * (w.Neck*sNeck + w.Torso*sTorso)

	reasons := make([]string, 0, 2)
	if f.NeckDeg != nil && !s.cfg.NeckRange.Contains(*f.NeckDeg) {
		if *f.NeckDeg < s.cfg.NeckRange.GoodMin {
			reasons = append(reasons, "Neck Forward")
		} else {
			reasons = append(reasons, "Neck Back")
		}
	}
	if f.TorsoDeg != nil && !s.cfg.TorsoRange.Contains(*f.TorsoDeg) {
		if *f.TorsoDeg < s.cfg.TorsoRange.GoodMin {
			reasons = append(reasons, "Torso Slouched")
		} else {
			reasons = append(reasons, "Torso Leaning Back")
		}
	}

	return ScoreResult{
		Score:          score,
		Classification: s.classify(score),
		Subscores: map[string]float64{
			SubscoreNeck:  sNeck * 100,
			SubscoreTorso: sTorso * 100,
		},
		Reasons: reasons,
	}
}

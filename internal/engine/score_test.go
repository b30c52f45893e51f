package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func frontScorerConfig() ScorerConfig {
	return ScorerConfig{
		View:                ViewFront,
		GoodScoreBoundary:   60,
		NeckFlexBadDeg:      18,
		TorsoCompressionBad: 1.6,
		TorsoRollBadDeg:     12,
		FrontWeights:        FrontWeights{Neck: 0.4, Torso: 0.4, Roll: 0.2},
	}
}

func sideScorerConfig() ScorerConfig {
	return ScorerConfig{
		View:              ViewSide,
		GoodScoreBoundary: 60,
		NeckRange:         AngleRange{GoodMin: 180, GoodMax: 180, ForwardTolerance: 20, BackwardTolerance: 10},
		TorsoRange:        AngleRange{GoodMin: 90, GoodMax: 90, ForwardTolerance: 10, BackwardTolerance: 15},
		SideWeights:       SideWeights{Neck: 0.5, Torso: 0.5},
	}
}

func TestScoreFrontPerfect(t *testing.T) {
	s := NewScorer(frontScorerConfig())
	r := s.Score(Features{NeckDeg: ptr(0), TorsoRatio: ptr(2.0), RollDeg: ptr(0)})

	if !approxEqual(r.Score, 100, 1e-9) {
		t.Errorf("score: got %v, want 100", r.Score)
	}
	if r.Classification != ClassificationGood {
		t.Errorf("classification: got %s, want GOOD", r.Classification)
	}
	if len(r.Reasons) != 0 {
		t.Errorf("reasons: got %v, want none", r.Reasons)
	}
}

func TestScoreFrontAllMissing(t *testing.T) {
	s := NewScorer(frontScorerConfig())
	r := s.Score(Features{})

	// Every missing feature scores neutral, landing the composite at 50.
	if !approxEqual(r.Score, 50, 1e-9) {
		t.Errorf("score: got %v, want 50", r.Score)
	}
	if r.Classification != ClassificationBad {
		t.Errorf("classification: got %s, want BAD", r.Classification)
	}
	if len(r.Reasons) != 0 {
		t.Errorf("reasons: got %v, want none for missing features", r.Reasons)
	}

	want := map[string]float64{SubscoreNeck: 50, SubscoreTorso: 50, SubscoreRoll: 50}
	if diff := cmp.Diff(want, r.Subscores); diff != "" {
		t.Errorf("subscores mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreFrontWorstCase(t *testing.T) {
	s := NewScorer(frontScorerConfig())
	r := s.Score(Features{NeckDeg: ptr(30), TorsoRatio: ptr(0), RollDeg: ptr(25)})

	if !approxEqual(r.Score, 0, 1e-9) {
		t.Errorf("score: got %v, want 0", r.Score)
	}
	if r.Classification != ClassificationBad {
		t.Errorf("classification: got %s, want BAD", r.Classification)
	}

	want := []string{"Forward Head", "Slouching", "Lateral Lean"}
	if diff := cmp.Diff(want, r.Reasons); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreFrontExactBoundaryIsGood(t *testing.T) {
	s := NewScorer(frontScorerConfig())
	// Neutral neck and roll plus a torso subscore of 0.75 lands exactly on
	// the boundary: 100 * (0.4*0.5 + 0.4*0.75 + 0.2*0.5) = 60.
	r := s.Score(Features{TorsoRatio: ptr(1.2)})

	if !approxEqual(r.Score, 60, 1e-9) {
		t.Fatalf("score: got %v, want 60", r.Score)
	}
	if r.Classification != ClassificationGood {
		t.Errorf("classification at the boundary: got %s, want GOOD", r.Classification)
	}
}

func TestScoreFrontMonotonicInNeck(t *testing.T) {
	s := NewScorer(frontScorerConfig())
	base := Features{TorsoRatio: ptr(2.0), RollDeg: ptr(0)}

	var prev float64 = 101
	for _, neck := range []float64{0, 5, 10, 15, 18} {
		f := base
		f.NeckDeg = ptr(neck)
		score := s.Score(f).Score
		if score >= prev {
			t.Errorf("score did not decrease: neck %v scored %v, previous %v", neck, score, prev)
		}
		prev = score
	}
}

func TestScoreFrontReasonsIndependentOfClassification(t *testing.T) {
	s := NewScorer(frontScorerConfig())
	// Good neck and torso, bad roll: composite stays GOOD but the roll
	// threshold crossing is still reported.
	r := s.Score(Features{NeckDeg: ptr(0), TorsoRatio: ptr(2.0), RollDeg: ptr(13)})

	if r.Classification != ClassificationGood {
		t.Fatalf("classification: got %s, want GOOD", r.Classification)
	}
	if diff := cmp.Diff([]string{"Lateral Lean"}, r.Reasons); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreSideNeutral(t *testing.T) {
	s := NewScorer(sideScorerConfig())
	r := s.Score(Features{NeckDeg: ptr(180), TorsoDeg: ptr(90)})

	if !approxEqual(r.Score, 100, 1e-9) {
		t.Errorf("score: got %v, want 100", r.Score)
	}
	if r.Classification != ClassificationGood {
		t.Errorf("classification: got %s, want GOOD", r.Classification)
	}
	if len(r.Reasons) != 0 {
		t.Errorf("reasons: got %v, want none", r.Reasons)
	}
}

func TestScoreSideForwardNeck(t *testing.T) {
	s := NewScorer(sideScorerConfig())
	// 10 degrees into the 20-degree forward tolerance: neck subscore 0.5.
	r := s.Score(Features{NeckDeg: ptr(170), TorsoDeg: ptr(90)})

	if !approxEqual(r.Score, 75, 1e-9) {
		t.Errorf("score: got %v, want 75", r.Score)
	}
	if diff := cmp.Diff([]string{"Neck Forward"}, r.Reasons); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreSideReasons(t *testing.T) {
	s := NewScorer(sideScorerConfig())
	tests := []struct {
		name  string
		neck  float64
		torso float64
		want  []string
	}{
		{"neck back", 185, 90, []string{"Neck Back"}},
		{"torso slouched", 180, 80, []string{"Torso Slouched"}},
		{"torso leaning back", 180, 110, []string{"Torso Leaning Back"}},
		{"everything off", 150, 120, []string{"Neck Forward", "Torso Leaning Back"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := s.Score(Features{NeckDeg: ptr(tt.neck), TorsoDeg: ptr(tt.torso)})
			if diff := cmp.Diff(tt.want, r.Reasons); diff != "" {
				t.Errorf("reasons mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScoreSideAllMissing(t *testing.T) {
	s := NewScorer(sideScorerConfig())
	r := s.Score(Features{})

	if !approxEqual(r.Score, 50, 1e-9) {
		t.Errorf("score: got %v, want 50", r.Score)
	}
	if r.Classification != ClassificationBad {
		t.Errorf("classification: got %s, want BAD", r.Classification)
	}
}

func TestAngleRange(t *testing.T) {
	r := AngleRange{GoodMin: 180, GoodMax: 180, ForwardTolerance: 20, BackwardTolerance: 10}

	if !r.Contains(180) {
		t.Error("expected 180 inside the good window")
	}
	if r.Contains(179.9) || r.Contains(180.1) {
		t.Error("expected values outside the window to be excluded")
	}

	tests := []struct {
		v    float64
		want float64
	}{
		{180, 1.0},
		{170, 0.5},  // halfway through the forward tolerance
		{160, 0.0},  // at the forward limit
		{100, 0.0},  // clamped beyond the limit
		{185, 0.5},  // halfway through the backward tolerance
		{190, 0.0},  // at the backward limit
		{250, 0.0},  // clamped
	}
	for _, tt := range tests {
		if got := r.subscore(tt.v); !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("subscore(%v): got %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestRamps(t *testing.T) {
	if got := rampDown(0, 18); got != 1 {
		t.Errorf("rampDown(0): got %v, want 1", got)
	}
	if got := rampDown(9, 18); !approxEqual(got, 0.5, 1e-9) {
		t.Errorf("rampDown(9): got %v, want 0.5", got)
	}
	if got := rampDown(30, 18); got != 0 {
		t.Errorf("rampDown(30): got %v, want 0", got)
	}

	if got := rampUp(1.6, 1.6); got != 1 {
		t.Errorf("rampUp(1.6): got %v, want 1", got)
	}
	if got := rampUp(0.8, 1.6); !approxEqual(got, 0.5, 1e-9) {
		t.Errorf("rampUp(0.8): got %v, want 0.5", got)
	}
	if got := rampUp(2.4, 1.6); got != 1 {
		t.Errorf("rampUp(2.4): got %v, want 1 (clamped)", got)
	}
}

package engine

import (
	"testing"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/pose"
)

const testMinConf = 0.4

// uprightFront is a front-view pose sitting square to the camera: nose
// centred over the torso, level shoulders, torso height twice the shoulder
// width.
func uprightFront() pose.Pose {
	p := uprightTorso()
	p[pose.Nose] = pose.Keypoint{Y: 0.2, X: 0.5, Confidence: 0.95}
	return p
}

func TestFrontExtractUpright(t *testing.T) {
	e := NewExtractor(ViewFront, testMinConf)
	f := e.Extract(uprightFront())

	if f.NeckDeg == nil {
		t.Fatal("expected neck angle")
	}
	if !approxEqual(*f.NeckDeg, 0, 1e-9) {
		t.Errorf("neck angle: got %v, want 0", *f.NeckDeg)
	}

	if f.TorsoRatio == nil {
		t.Fatal("expected torso ratio")
	}
	if !approxEqual(*f.TorsoRatio, 2.0, 1e-9) {
		t.Errorf("torso ratio: got %v, want 2.0", *f.TorsoRatio)
	}

	if f.RollDeg == nil {
		t.Fatal("expected roll angle")
	}
	if !approxEqual(*f.RollDeg, 0, 1e-9) {
		t.Errorf("roll angle: got %v, want 0", *f.RollDeg)
	}

	if f.FocusRef == nil || *f.FocusRef != *f.NeckDeg {
		t.Error("expected focus reference to track the neck angle in front view")
	}
}

func TestFrontExtractLateralLean(t *testing.T) {
	p := uprightFront()
	p[pose.LeftShoulder] = pose.Keypoint{Y: 0.35, X: 0.4, Confidence: 0.9}
	p[pose.RightShoulder] = pose.Keypoint{Y: 0.45, X: 0.6, Confidence: 0.9}

	e := NewExtractor(ViewFront, testMinConf)
	f := e.Extract(p)

	if f.RollDeg == nil {
		t.Fatal("expected roll angle")
	}
	if !approxEqual(*f.RollDeg, 26.565, 0.01) {
		t.Errorf("roll angle: got %v, want ~26.565", *f.RollDeg)
	}
}

func TestFrontExtractRollIsLineAngle(t *testing.T) {
	// Mirror-image shoulder order: level shoulders must still read 0, not
	// 180.
	p := uprightFront()
	p[pose.LeftShoulder] = pose.Keypoint{Y: 0.35, X: 0.6, Confidence: 0.9}
	p[pose.RightShoulder] = pose.Keypoint{Y: 0.35, X: 0.4, Confidence: 0.9}

	e := NewExtractor(ViewFront, testMinConf)
	f := e.Extract(p)

	if f.RollDeg == nil {
		t.Fatal("expected roll angle")
	}
	if !approxEqual(*f.RollDeg, 0, 1e-9) {
		t.Errorf("roll angle: got %v, want 0", *f.RollDeg)
	}
}

func TestFrontExtractShouldersOnly(t *testing.T) {
	// Hips below the confidence gate: only the roll survives.
	p := uprightFront()
	p[pose.LeftHip].Confidence = 0.1
	p[pose.RightHip].Confidence = 0.1

	e := NewExtractor(ViewFront, testMinConf)
	f := e.Extract(p)

	if f.RollDeg == nil {
		t.Error("expected roll angle from shoulders alone")
	}
	if f.NeckDeg != nil {
		t.Error("expected no neck angle without hips")
	}
	if f.TorsoRatio != nil {
		t.Error("expected no torso ratio without hips")
	}
	if f.FocusRef != nil {
		t.Error("expected no focus reference without a neck angle")
	}
}

func TestFrontExtractMissingNose(t *testing.T) {
	p := uprightFront()
	p[pose.Nose].Confidence = 0.1

	e := NewExtractor(ViewFront, testMinConf)
	f := e.Extract(p)

	if f.NeckDeg != nil {
		t.Error("expected no neck angle without the nose")
	}
	if f.TorsoRatio == nil || f.RollDeg == nil {
		t.Error("expected torso ratio and roll to survive a missing nose")
	}
}

func TestFrontExtractEmptyPose(t *testing.T) {
	e := NewExtractor(ViewFront, testMinConf)
	f := e.Extract(pose.Pose{})

	if f.NeckDeg != nil || f.TorsoRatio != nil || f.RollDeg != nil || f.FocusRef != nil {
		t.Errorf("expected all features absent for an empty pose, got %+v", f)
	}
}

// profileRight is a side-view pose seen from the subject's right: vertical
// ear-shoulder-hip line, thigh horizontal towards the camera-front (-X).
func profileRight() pose.Pose {
	var p pose.Pose
	p[pose.RightEye] = pose.Keypoint{Y: 0.08, X: 0.48, Confidence: 0.9}
	p[pose.RightEar] = pose.Keypoint{Y: 0.1, X: 0.5, Confidence: 0.9}
	p[pose.RightShoulder] = pose.Keypoint{Y: 0.3, X: 0.5, Confidence: 0.9}
	p[pose.RightHip] = pose.Keypoint{Y: 0.6, X: 0.5, Confidence: 0.9}
	p[pose.RightKnee] = pose.Keypoint{Y: 0.6, X: 0.3, Confidence: 0.9}
	return p
}

func TestSideExtractNeutral(t *testing.T) {
	e := NewExtractor(ViewSide, testMinConf)
	f := e.Extract(profileRight())

	if f.Side != pose.SideRight {
		t.Errorf("side: got %s, want RIGHT", f.Side)
	}

	if f.NeckDeg == nil {
		t.Fatal("expected neck angle")
	}
	if !approxEqual(*f.NeckDeg, 180, 1e-9) {
		t.Errorf("neck angle: got %v, want 180", *f.NeckDeg)
	}

	if f.TorsoDeg == nil {
		t.Fatal("expected torso angle")
	}
	if !approxEqual(*f.TorsoDeg, 90, 1e-9) {
		t.Errorf("torso angle: got %v, want 90", *f.TorsoDeg)
	}

	if f.FocusRef == nil {
		t.Fatal("expected focus reference")
	}
	if !approxEqual(*f.FocusRef, 135, 1e-9) {
		t.Errorf("focus reference: got %v, want 135", *f.FocusRef)
	}
}

func TestSideExtractForwardHead(t *testing.T) {
	p := profileRight()
	// Ear drifts in front of the shoulder.
	p[pose.RightEar].X = 0.45

	e := NewExtractor(ViewSide, testMinConf)
	f := e.Extract(p)

	if f.NeckDeg == nil {
		t.Fatal("expected neck angle")
	}
	if *f.NeckDeg >= 180 {
		t.Errorf("forward head neck angle: got %v, want < 180", *f.NeckDeg)
	}
}

func TestSideExtractMissingKnee(t *testing.T) {
	p := profileRight()
	p[pose.RightKnee].Confidence = 0.1

	e := NewExtractor(ViewSide, testMinConf)
	f := e.Extract(p)

	if f.TorsoDeg != nil {
		t.Error("expected no torso angle without the knee")
	}
	if f.NeckDeg == nil {
		t.Error("expected neck angle to survive a missing knee")
	}
}

func TestSideExtractUsesVisibleSide(t *testing.T) {
	// Copy the profile onto the left joints with higher confidence; the
	// extractor must follow the side selection.
	p := profileRight()
	for _, pair := range [][2]int{
		{pose.LeftEye, pose.RightEye},
		{pose.LeftEar, pose.RightEar},
		{pose.LeftShoulder, pose.RightShoulder},
		{pose.LeftHip, pose.RightHip},
		{pose.LeftKnee, pose.RightKnee},
	} {
		p[pair[0]] = p[pair[1]]
		p[pair[0]].Confidence = 0.95
		p[pair[1]].Confidence = 0.3
	}

	e := NewExtractor(ViewSide, testMinConf)
	f := e.Extract(p)

	if f.Side != pose.SideLeft {
		t.Errorf("side: got %s, want LEFT", f.Side)
	}
	if f.NeckDeg == nil || !approxEqual(*f.NeckDeg, 180, 1e-9) {
		t.Error("expected the left-side joints to produce the neck angle")
	}
}

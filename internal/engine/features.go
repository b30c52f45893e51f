package engine

import (
	"math"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/pose"
)

// CameraView selects the feature-extraction strategy.
type CameraView string

const (
	// ViewFront analyses a front/top-down camera using the torso body frame.
	ViewFront CameraView = "front"
	// ViewSide analyses a profile camera using 3-point joint angles on the
	// visible body side.
	ViewSide CameraView = "side"
)

// Features holds the posture-relevant scalar measurements for one frame.
// Every field is optional: nil means the required keypoints were below the
// confidence threshold, which downstream scoring treats as a neutral signal
// rather than an error. All values are frame-local; no smoothing is applied
// here.
type Features struct {
	// Front view: neck flexion of the nose away from the torso vertical
	// axis, torso height / shoulder width ratio, shoulder-line roll.
	NeckDeg    *float64 `json:"neck_angle_deg"`
	TorsoRatio *float64 `json:"torso_ratio,omitempty"`
	RollDeg    *float64 `json:"roll_deg,omitempty"`

	// Side view: ear-shoulder-hip angle at the shoulder, shoulder-hip-knee
	// angle at the hip, both in [0,360) with ~180 neutral.
	TorsoDeg *float64 `json:"torso_angle_deg,omitempty"`

	// FocusRef is the reference angle tracked by the temporal monitor for
	// head-stillness detection: neck flexion in front view, the
	// eye-ear-shoulder angle in side view.
	FocusRef *float64 `json:"focus_ref_deg"`

	// Side is the body side the measurements were taken from (side view
	// only; empty in front view).
	Side pose.Side `json:"side,omitempty"`
}

// Extractor computes Features from a raw pose. The two variants share
// the same validator and downstream scorer.
type Extractor interface {
	Extract(p pose.Pose) Features
}

// NewExtractor returns the extractor for the configured camera placement.
func NewExtractor(view CameraView, minConfidence float64) Extractor {
	if view == ViewSide {
		return &sideExtractor{minConfidence: minConfidence}
	}
	return &frontExtractor{minConfidence: minConfidence}
}

func ptr(v float64) *float64 { return &v }

// frontExtractor measures posture in the body frame built from shoulder/hip
// geometry, making the features invariant to camera mounting height and tilt.
type frontExtractor struct {
	minConfidence float64
}

func (e *frontExtractor) allValid(p pose.Pose, joints ...int) bool {
	for _, j := range joints {
		if !p[j].Valid(e.minConfidence) {
			return false
		}
	}
	return true
}

func (e *frontExtractor) Extract(p pose.Pose) Features {
	var f Features

	shouldersValid := e.allValid(p, pose.LeftShoulder, pose.RightShoulder)
	hipsValid := e.allValid(p, pose.LeftHip, pose.RightHip)
	lsh := pointOf(p[pose.LeftShoulder])
	rsh := pointOf(p[pose.RightShoulder])

	if shouldersValid && hipsValid {
		// Neck flexion: nose projected into the body frame, angle from
		// the vertical axis. Absolute value; the direction of the tilt
		// is irrelevant.
		if frame := buildBodyFrame(p); frame != nil && e.allValid(p, pose.Nose) {
			lat, vert := frame.Project(pointOf(p[pose.Nose]))
			f.NeckDeg = ptr(math.Abs(math.Atan2(lat, vert) * 180 / math.Pi))
		}

		// Torso compression: slouching visually compresses the torso
		// relative to shoulder width, so the ratio trends lower when
		// posture degrades. Zero shoulder width is degenerate geometry,
		// left absent rather than divided through.
		if w := dist(lsh, rsh); w > 0 {
			h := dist(midpoint(lsh, rsh), midpoint(pointOf(p[pose.LeftHip]), pointOf(p[pose.RightHip])))
			f.TorsoRatio = ptr(h / w)
		}
	}

	// Torso roll: angle of the shoulder-to-shoulder line against
	// horizontal, i.e. lateral lean. Measured as a line, not a vector, so
	// level shoulders read 0 regardless of which shoulder the image places
	// first. Needs only the shoulder pair.
	if shouldersValid {
		roll := math.Abs(math.Atan2(rsh.Y-lsh.Y, rsh.X-lsh.X) * 180 / math.Pi)
		if roll > 90 {
			roll = 180 - roll
		}
		f.RollDeg = ptr(roll)
	}

	f.FocusRef = f.NeckDeg
	return f
}

// sideExtractor measures signed 3-point angles directly at joint vertices on
// the camera-facing side: in profile view the torso line itself is the
// natural reference axis, so no orthonormal frame is needed.
type sideExtractor struct {
	minConfidence float64
}

func (e *sideExtractor) Extract(p pose.Pose) Features {
	side := pose.SelectSide(p)
	j := side.Joints()
	f := Features{Side: side}

	valid := func(idx int) bool { return p[idx].Valid(e.minConfidence) }

	// Neck: ear-shoulder-hip angle at the shoulder vertex.
	if valid(j.Ear) && valid(j.Shoulder) && valid(j.Hip) {
		f.NeckDeg = ptr(vertexAngle(pointOf(p[j.Ear]), pointOf(p[j.Shoulder]), pointOf(p[j.Hip])))
	}

	// Torso: shoulder-hip-knee angle at the hip vertex.
	if valid(j.Shoulder) && valid(j.Hip) && valid(j.Knee) {
		f.TorsoDeg = ptr(vertexAngle(pointOf(p[j.Shoulder]), pointOf(p[j.Hip]), pointOf(p[j.Knee])))
	}

	// Focus proxy: eye-ear-shoulder angle at the ear vertex. Tracked by the
	// monitor for head-stillness, not scored.
	if valid(j.Eye) && valid(j.Ear) && valid(j.Shoulder) {
		f.FocusRef = ptr(vertexAngle(pointOf(p[j.Eye]), pointOf(p[j.Ear]), pointOf(p[j.Shoulder])))
	}

	return f
}

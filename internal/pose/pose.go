// Package pose defines the keypoint data model produced by the external
// pose-estimation model. The model emits one frame per inference: 17 keypoints
// in the fixed COCO joint order, each a (y, x, confidence) triple with
// coordinates normalised to [0,1] relative to image height and width.
package pose

import (
	"encoding/json"
	"fmt"
)

// Keypoint is a single detected body-joint location. Coordinates are
// normalised image coordinates; Confidence is the model's detection score.
type Keypoint struct {
	Y          float64
	X          float64
	Confidence float64
}

// Valid reports whether the keypoint clears the minimum confidence threshold.
// Every downstream feature computation is gated on this check.
func (k Keypoint) Valid(minConfidence float64) bool {
	return k.Confidence > minConfidence
}

// NumKeypoints is the fixed length of a Pose.
const NumKeypoints = 17

// Joint indices in the fixed COCO keypoint order. The index↔joint mapping
// never changes; a Pose is always exactly 17 keypoints in this order.
const (
	Nose = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

// JointNames maps joint index to name, in COCO order.
var JointNames = [NumKeypoints]string{
	"nose", "left_eye", "right_eye", "left_ear", "right_ear",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_hip", "right_hip",
	"left_knee", "right_knee", "left_ankle", "right_ankle",
}

// Pose is the full ordered set of keypoints for one detected person in one
// frame. It is immutable once received from the model.
type Pose [NumKeypoints]Keypoint

// MarshalJSON encodes the pose in the model's wire format: a nested array of
// [y, x, confidence] triples.
func (p Pose) MarshalJSON() ([]byte, error) {
	triples := make([][3]float64, NumKeypoints)
	for i, kp := range p {
		triples[i] = [3]float64{kp.Y, kp.X, kp.Confidence}
	}
	return json.Marshal(triples)
}

// UnmarshalJSON decodes the model's wire format, rejecting frames that do not
// carry exactly 17 keypoints. Malformed frames are a boundary error: they must
// be discarded by the caller, never passed to the engine.
func (p *Pose) UnmarshalJSON(data []byte) error {
	var triples [][3]float64
	if err := json.Unmarshal(data, &triples); err != nil {
		return fmt.Errorf("failed to parse keypoints: %w", err)
	}
	if len(triples) != NumKeypoints {
		return fmt.Errorf("expected %d keypoints, got %d", NumKeypoints, len(triples))
	}
	for i, t := range triples {
		p[i] = Keypoint{Y: t[0], X: t[1], Confidence: t[2]}
	}
	return nil
}

// Parse decodes a single wire-format frame into a Pose.
func Parse(data []byte) (Pose, error) {
	var p Pose
	if err := p.UnmarshalJSON(data); err != nil {
		return Pose{}, err
	}
	return p, nil
}

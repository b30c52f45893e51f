package pose

// Side identifies which side of the body faces a side-mounted camera.
type Side string

const (
	SideLeft  Side = "LEFT"
	SideRight Side = "RIGHT"
)

// SideJoints holds the joint indices used for side-view analysis.
type SideJoints struct {
	Eye      int
	Ear      int
	Shoulder int
	Hip      int
	Knee     int
}

var sideJoints = map[Side]SideJoints{
	SideLeft:  {Eye: LeftEye, Ear: LeftEar, Shoulder: LeftShoulder, Hip: LeftHip, Knee: LeftKnee},
	SideRight: {Eye: RightEye, Ear: RightEar, Shoulder: RightShoulder, Hip: RightHip, Knee: RightKnee},
}

// Joints returns the joint indices for the given side.
func (s Side) Joints() SideJoints {
	return sideJoints[s]
}

func sideConfidence(p Pose, s Side) float64 {
	j := s.Joints()
	return p[j.Eye].Confidence +
		p[j.Ear].Confidence +
		p[j.Shoulder].Confidence +
		p[j.Hip].Confidence +
		p[j.Knee].Confidence
}

// SelectSide picks the body side facing a side-mounted camera. The side with
// the larger aggregate confidence over {eye, ear, shoulder, hip, knee} wins;
// an exact tie resolves to RIGHT. A single side camera occludes the far side,
// so aggregate confidence is a cheap proxy for which side is visible. The
// selection is recomputed every frame with no smoothing.
func SelectSide(p Pose) Side {
	if sideConfidence(p, SideLeft) > sideConfidence(p, SideRight) {
		return SideLeft
	}
	return SideRight
}

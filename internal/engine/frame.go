package engine

import (
	"math"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/pose"
)

// point is a position in normalised image coordinates (y down, x right).
type point struct {
	Y, X float64
}

func pointOf(kp pose.Keypoint) point {
	return point{Y: kp.Y, X: kp.X}
}

func midpoint(a, b point) point {
	return point{Y: (a.Y + b.Y) / 2, X: (a.X + b.X) / 2}
}

func sub(a, b point) point {
	return point{Y: a.Y - b.Y, X: a.X - b.X}
}

func dot(a, b point) float64 {
	return a.Y*b.Y + a.X*b.X
}

func norm(a point) float64 {
	return math.Hypot(a.Y, a.X)
}

func dist(a, b point) float64 {
	return norm(sub(a, b))
}

// BodyFrame is a body-relative 2D coordinate system built from shoulder/hip
// geometry: origin at the hip midpoint, vertical axis towards the shoulder
// midpoint, lateral axis along the shoulder line. Projecting a joint into the
// frame makes angle measurements invariant to camera tilt and placement.
// The frame is rebuilt every frame and never persisted.
type BodyFrame struct {
	Origin   point
	Lateral  point // unit vector, left shoulder -> right shoulder
	Vertical point // unit vector, hip midpoint -> shoulder midpoint
}

// buildBodyFrame derives the torso frame from the four torso keypoints.
// Returns nil when the geometry is degenerate (coincident shoulders or a
// zero-height torso): a fabricated default frame would silently produce a
// plausible-looking but wrong posture reading.
func buildBodyFrame(p pose.Pose) *BodyFrame {
	lsh := pointOf(p[pose.LeftShoulder])
	rsh := pointOf(p[pose.RightShoulder])
	lhip := pointOf(p[pose.LeftHip])
	rhip := pointOf(p[pose.RightHip])

	origin := midpoint(lhip, rhip)
	vertical := sub(midpoint(lsh, rsh), origin)
	lateral := sub(rsh, lsh)

	vn, ln := norm(vertical), norm(lateral)
	if vn == 0 || ln == 0 {
		return nil
	}
	vertical.Y /= vn
	vertical.X /= vn
	lateral.Y /= ln
	lateral.X /= ln

	return &BodyFrame{Origin: origin, Lateral: lateral, Vertical: vertical}
}

// Project expresses pt in body-relative coordinates: the (lateral, vertical)
// components of the vector from the frame origin to pt.
func (f *BodyFrame) Project(pt point) (lateral, vertical float64) {
	v := sub(pt, f.Origin)
	return dot(v, f.Lateral), dot(v, f.Vertical)
}

// vertexAngle computes the angle at p2 formed by the legs p2->p1 and p2->p3,
// normalised to [0,360) degrees. Each leg direction is measured independently
// with atan2 and the difference taken, so the result is a signed full-circle
// angle: values near 180 denote a straight joint, below the neutral window a
// forward lean, above it a backward lean.
func vertexAngle(p1, p2, p3 point) float64 {
	a1 := math.Atan2(p1.X-p2.X, p1.Y-p2.Y)
	a2 := math.Atan2(p3.X-p2.X, p3.Y-p2.Y)
	deg := (a2 - a1) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

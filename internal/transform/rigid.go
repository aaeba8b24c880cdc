// Package transform provides the rigid 3D transform used to place submap
// slices in world space. Rotations are quaternions (gonum num/quat via
// spatial/r3) and translations are r3 vectors.
package transform

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rigid3 is a rigid transform in 3D: a rotation followed by a translation.
type Rigid3 struct {
	Translation r3.Vec
	Rotation    r3.Rotation
}

// Identity returns the identity transform.
func Identity() Rigid3 {
	return Rigid3{Rotation: r3.Rotation(quat.Number{Real: 1})}
}

// FromYaw returns a transform rotating by yaw radians about the Z axis with
// the given translation.
func FromYaw(yaw float64, translation r3.Vec) Rigid3 {
	return Rigid3{
		Translation: translation,
		Rotation:    r3.NewRotation(yaw, r3.Vec{Z: 1}),
	}
}

// Mul composes two transforms: (t.Mul(o)).Apply(p) == t.Apply(o.Apply(p)).
func (t Rigid3) Mul(o Rigid3) Rigid3 {
	return Rigid3{
		Translation: r3.Add(t.Translation, t.Rotation.Rotate(o.Translation)),
		Rotation:    r3.Rotation(quat.Mul(quat.Number(t.Rotation), quat.Number(o.Rotation))),
	}
}

// Apply transforms the point p.
func (t Rigid3) Apply(p r3.Vec) r3.Vec {
	return r3.Add(t.Translation, t.Rotation.Rotate(p))
}

// Yaw extracts the rotation about the Z axis. Submap compositing happens in
// the 2D ground plane, so this is the only Euler angle the node ever needs.
func (t Rigid3) Yaw() float64 {
	q := quat.Number(t.Rotation)
	// Standard quaternion-to-yaw with (x,y,z,w) = (Imag,Jmag,Kmag,Real).
	siny := 2 * (q.Real*q.Kmag + q.Imag*q.Jmag)
	cosy := 1 - 2*(q.Jmag*q.Jmag+q.Kmag*q.Kmag)
	return math.Atan2(siny, cosy)
}

// posePayload is the wire representation of a pose, matching the
// geometry_msgs convention: point plus (x,y,z,w) quaternion.
type posePayload struct {
	Position    pointPayload `json:"position"`
	Orientation quatPayload  `json:"orientation"`
}

type pointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type quatPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// MarshalJSON encodes the transform in the wire pose format.
func (t Rigid3) MarshalJSON() ([]byte, error) {
	q := quat.Number(t.Rotation)
	return json.Marshal(posePayload{
		Position:    pointPayload{X: t.Translation.X, Y: t.Translation.Y, Z: t.Translation.Z},
		Orientation: quatPayload{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real},
	})
}

// UnmarshalJSON decodes the wire pose format. A zero orientation (all four
// components zero) is normalised to identity so that senders omitting the
// quaternion still produce a valid transform.
func (t *Rigid3) UnmarshalJSON(data []byte) error {
	var p posePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	q := quat.Number{Real: p.Orientation.W, Imag: p.Orientation.X, Jmag: p.Orientation.Y, Kmag: p.Orientation.Z}
	if q.Real == 0 && q.Imag == 0 && q.Jmag == 0 && q.Kmag == 0 {
		q = quat.Number{Real: 1}
	}
	t.Translation = r3.Vec{X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z}
	t.Rotation = r3.Rotation(q)
	return nil
}

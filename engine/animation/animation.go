package animation

import "github.com/spaghettifunk/marionette/engine/math"

// Animation holds the position, rotation and scale tracks of a single bone.
// It is immutable once built.
type Animation struct {
	positionKeys PositionKeys
	rotationKeys RotationKeys
	scaleKeys    ScaleKeys
	duration     float32
}

// Evaluate samples every track at time. Position and scale are linearly
// interpolated, rotation is spherically interpolated. Missing tracks yield
// no translation, no rotation and unit scale.
func (a *Animation) Evaluate(time float32) *math.Transform {
	return math.NewTransform(
		sample(a.positionKeys, time, math.NewVec3Zero(), lerpVec3),
		sample(a.rotationKeys, time, math.NewQuatIdentity(), slerpQuat),
		sample(a.scaleKeys, time, math.NewVec3One(), lerpVec3),
	)
}

// GetTransform is Evaluate.
func (a *Animation) GetTransform(time float32) *math.Transform {
	return a.Evaluate(time)
}

// Matrix returns the bone's parent-relative matrix at time.
func (a *Animation) Matrix(time float32) math.Mat4 {
	return a.Evaluate(time).GetLocal()
}

// Duration is the largest key time across all tracks.
func (a *Animation) Duration() float32 {
	return a.duration
}

func (a *Animation) PositionKeys() PositionKeys {
	return a.positionKeys
}

func (a *Animation) RotationKeys() RotationKeys {
	return a.rotationKeys
}

func (a *Animation) ScaleKeys() ScaleKeys {
	return a.scaleKeys
}

// Package animation provides keyframed camera animations for the panorama
// viewer: the Effect interpolator and the built-in preset library.
package animation

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidEffect indicates that an effect's keyframe and stage counts do
// not line up.
var ErrInvalidEffect = errors.New("animation: keyframe count must equal stage count + 1, with at least two keyframes")

// Pose is a single camera sample: where the camera sits, how it is oriented,
// and its field of view. Produced by Effect.Interpolate and consumed by the
// matrix derivation.
type Pose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Fov         float32
}

// Effect is a keyframed camera animation. N keyframes are joined by N-1
// stages, each with its own duration in seconds. Within a stage, position
// and fov interpolate linearly and orientation interpolates by spherical
// linear interpolation.
//
// Effects are constructed whole (see the preset constructors) and read-only
// afterwards; Interpolate carries no hidden state, so the same time always
// yields the same pose.
type Effect struct {
	PositionKeys   []mgl32.Vec3
	RotationKeys   []mgl32.Quat
	FovKeys        []float32
	StageDurations []float32
}

// Validate checks the keyframe/stage length invariant.
//
// Returns:
//   - error: ErrInvalidEffect if the counts do not line up, otherwise nil
func (e *Effect) Validate() error {
	n := len(e.PositionKeys)
	if n < 2 || len(e.RotationKeys) != n || len(e.FovKeys) != n || len(e.StageDurations) != n-1 {
		return ErrInvalidEffect
	}
	return nil
}

// Stages returns the number of stages in the effect.
//
// Returns:
//   - int: the stage count
func (e *Effect) Stages() int {
	return len(e.StageDurations)
}

// TotalDuration returns the sum of all stage durations in seconds.
//
// Returns:
//   - float32: the total animation length
func (e *Effect) TotalDuration() float32 {
	var total float32
	for _, d := range e.StageDurations {
		total += d
	}
	return total
}

// StageProgress returns the normalized progress within the stage containing
// time t. Times before the start report 0 and times past the end report 1.
//
// Parameters:
//   - t: animation time in seconds
//
// Returns:
//   - float32: progress in [0, 1] within the containing stage
func (e *Effect) StageProgress(t float32) float32 {
	var start float32
	for _, dur := range e.StageDurations {
		if t <= start+dur {
			if dur <= 0 {
				return 1
			}
			return mgl32.Clamp((t-start)/dur, 0, 1)
		}
		start += dur
	}
	return 1
}

// Interpolate samples the camera pose at time t. Within a stage, position
// and fov lerp between the bounding keyframes and orientation slerps. Times
// past the total duration hold the final keyframe.
//
// Parameters:
//   - t: animation time in seconds
//
// Returns:
//   - Pose: the interpolated camera pose
func (e *Effect) Interpolate(t float32) Pose {
	var start float32
	for i, dur := range e.StageDurations {
		if t <= start+dur {
			progress := float32(1)
			if dur > 0 {
				progress = mgl32.Clamp((t-start)/dur, 0, 1)
			}
			return Pose{
				Position:    e.PositionKeys[i].Add(e.PositionKeys[i+1].Sub(e.PositionKeys[i]).Mul(progress)),
				Orientation: mgl32.QuatSlerp(e.RotationKeys[i], e.RotationKeys[i+1], progress),
				Fov:         e.FovKeys[i] + (e.FovKeys[i+1]-e.FovKeys[i])*progress,
			}
		}
		start += dur
	}

	last := len(e.PositionKeys) - 1
	return Pose{
		Position:    e.PositionKeys[last],
		Orientation: e.RotationKeys[last],
		Fov:         e.FovKeys[last],
	}
}

package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cuixing158/panoview/viewer/animation"
)

const (
	nearPlane = 0.1
	farPlane  = 100

	// crystalBallDistance is the camera distance from the sphere center in
	// CrystalBall mode, in sphere radii.
	crystalBallDistance = 1.5
)

func (s *viewStateImpl) Matrices(aspect float32) (mgl32.Mat4, mgl32.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proj := mgl32.Perspective(mgl32.DegToRad(s.orient.Fov), aspect, nearPlane, farPlane)
	dir := lookDirection(s.orient.Yaw, s.orient.Pitch)

	var viewMat mgl32.Mat4
	switch s.mode {
	case ModeLittlePlanet:
		s.flipUpOnPoleCrossing()
		viewMat = mgl32.LookAtV(dir, mgl32.Vec3{}, s.orient.Up)
	case ModeCrystalBall:
		s.flipUpOnPoleCrossing()
		viewMat = mgl32.LookAtV(dir.Mul(crystalBallDistance), mgl32.Vec3{}, s.orient.Up)
	default:
		viewMat = mgl32.LookAtV(mgl32.Vec3{}, dir, mgl32.Vec3{0, 1, 0})
	}
	return proj, viewMat
}

// flipUpOnPoleCrossing negates the up vector's Y component once per pole
// passage and records the pitch for the next frame's comparison. Caller
// holds the lock.
func (s *viewStateImpl) flipUpOnPoleCrossing() {
	if HasPoleCrossing(s.orient.PrevPitch, s.orient.Pitch) {
		s.orient.Up[1] = -s.orient.Up[1]
	}
	s.orient.PrevPitch = s.orient.Pitch
}

// lookDirection converts yaw and pitch in degrees to a unit direction on the
// sphere. Yaw 0 looks down +Z; pitch 90 looks straight up.
//
// Parameters:
//   - yaw: horizontal angle in degrees
//   - pitch: vertical angle in degrees
//
// Returns:
//   - mgl32.Vec3: the look direction
func lookDirection(yaw, pitch float32) mgl32.Vec3 {
	yawRad := mgl32.DegToRad(yaw)
	pitchRad := mgl32.DegToRad(pitch)
	cosPitch := float32(math.Cos(float64(pitchRad)))
	return mgl32.Vec3{
		float32(math.Sin(float64(yawRad))) * cosPitch,
		float32(math.Sin(float64(pitchRad))),
		float32(math.Cos(float64(yawRad))) * cosPitch,
	}
}

// AnimationMatrices derives the projection and view matrices for a scripted
// camera pose. The pose orientation rotates the canonical forward (0,0,-1)
// and up (0,1,0) vectors; the camera sits at the pose position.
//
// Parameters:
//   - pose: the interpolated animation pose
//   - aspect: viewport width divided by height
//
// Returns:
//   - mgl32.Mat4: projection matrix
//   - mgl32.Mat4: view matrix
func AnimationMatrices(pose animation.Pose, aspect float32) (mgl32.Mat4, mgl32.Mat4) {
	proj := mgl32.Perspective(mgl32.DegToRad(pose.Fov), aspect, nearPlane, farPlane)
	forward := pose.Orientation.Rotate(mgl32.Vec3{0, 0, -1})
	up := pose.Orientation.Rotate(mgl32.Vec3{0, 1, 0})
	viewMat := mgl32.LookAtV(pose.Position, pose.Position.Add(forward), up)
	return proj, viewMat
}

// wrap360 normalizes an angle in degrees into [0, 360).
func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

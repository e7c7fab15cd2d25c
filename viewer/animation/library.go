package animation

import "github.com/go-gl/mathgl/mgl32"

// Kind identifies which scripted animation is active, if any.
type Kind int

const (
	// KindNone means the live (interactive) camera drives the view.
	KindNone Kind = iota

	// KindRotate is a two-turn horizontal rotation that rises off the floor
	// and pulls back toward a little-planet framing before returning home.
	KindRotate

	// KindSwipe sweeps from the nadir to the zenith in a single pass.
	KindSwipe

	// KindSwipeRotate holds the zenith, then sweeps down through a full
	// rotation to the nadir and returns home.
	KindSwipeRotate
)

// String returns a human-readable kind name for logging.
//
// Returns:
//   - string: the kind name
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindRotate:
		return "Rotate"
	case KindSwipe:
		return "Swipe"
	case KindSwipeRotate:
		return "SwipeRotate"
	default:
		return "Unknown"
	}
}

// keyOrientation builds a keyframe orientation from pitch and yaw in
// degrees: a rotation about +Y (yaw) composed with a rotation about +X
// (pitch). All presets use this one convention so interpolation between any
// two keyframes is well defined.
//
// Parameters:
//   - pitchDeg: rotation about the X axis in degrees
//   - yawDeg: rotation about the Y axis in degrees
//
// Returns:
//   - mgl32.Quat: the composed orientation
func keyOrientation(pitchDeg, yawDeg float32) mgl32.Quat {
	qy := mgl32.QuatRotate(mgl32.DegToRad(yawDeg), mgl32.Vec3{0, 1, 0})
	qx := mgl32.QuatRotate(mgl32.DegToRad(pitchDeg), mgl32.Vec3{1, 0, 0})
	return qy.Mul(qx)
}

// Preset returns the built-in effect for a kind.
//
// Parameters:
//   - k: the animation kind
//
// Returns:
//   - *Effect: the preset effect, or nil for KindNone or unknown kinds
//   - bool: true if the kind has a preset
func Preset(k Kind) (*Effect, bool) {
	switch k {
	case KindRotate:
		return Rotate(), true
	case KindSwipe:
		return Swipe(), true
	case KindSwipeRotate:
		return SwipeRotate(), true
	default:
		return nil, false
	}
}

// Rotate builds the Rotate preset: 6 keyframes over 5 stages, 11 seconds.
//
// Returns:
//   - *Effect: the preset effect
func Rotate() *Effect {
	return &Effect{
		PositionKeys: []mgl32.Vec3{
			{0, 0, 0},
			{0, 0, 0},
			{0, 0, 0},
			{0, 0.5, 0},
			{0, 1, 0},
			{0, 0, 0},
		},
		RotationKeys: []mgl32.Quat{
			keyOrientation(0, 0),
			keyOrientation(0, 180),
			keyOrientation(0, 360),
			keyOrientation(-45, 180),
			keyOrientation(-90, 360),
			keyOrientation(0, 0),
		},
		FovKeys:        []float32{60, 60, 60, 90, 120, 60},
		StageDurations: []float32{4, 4, 1, 1, 1},
	}
}

// Swipe builds the Swipe preset: 4 keyframes over 3 stages, 9 seconds.
//
// Returns:
//   - *Effect: the preset effect
func Swipe() *Effect {
	return &Effect{
		PositionKeys: []mgl32.Vec3{
			{0, 1, 0},
			{0, 0, 0},
			{0, -1, 0},
			{0, 0, 0},
		},
		RotationKeys: []mgl32.Quat{
			keyOrientation(-90, 0),
			keyOrientation(0, 180),
			keyOrientation(90, 360),
			keyOrientation(0, 0),
		},
		FovKeys:        []float32{120, 60, 120, 80},
		StageDurations: []float32{5, 2, 2},
	}
}

// SwipeRotate builds the SwipeRotate preset: 5 keyframes over 4 stages,
// 8.5 seconds.
//
// Returns:
//   - *Effect: the preset effect
func SwipeRotate() *Effect {
	return &Effect{
		PositionKeys: []mgl32.Vec3{
			{0, -1, 0},
			{0, -1, 0},
			{0, 0, 0},
			{0, 1, 0},
			{0, 0, 0},
		},
		RotationKeys: []mgl32.Quat{
			keyOrientation(90, 0),
			keyOrientation(90, 0),
			keyOrientation(0, 180),
			keyOrientation(-90, 360),
			keyOrientation(0, 0),
		},
		FovKeys:        []float32{120, 110, 60, 120, 60},
		StageDurations: []float32{1.5, 3, 2, 2},
	}
}

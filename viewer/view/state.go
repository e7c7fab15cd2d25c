package view

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// OrientationState is the live camera orientation owned by the view state.
// PrevPitch and Up persist across frames solely for pole-crossing handling
// in the orbiting modes.
type OrientationState struct {
	// Yaw is the horizontal look angle in degrees, kept in [0, 360).
	Yaw float32

	// Pitch is the vertical look angle in degrees.
	Pitch float32

	// PrevPitch is the pitch used for the previous matrix derivation.
	PrevPitch float32

	// Fov is the vertical field of view in degrees, kept in [1, 120].
	Fov float32

	// Up is the camera up vector for the orbiting modes. Its Y component is
	// negated each time the pitch crosses a pole.
	Up mgl32.Vec3
}

// State is the view mode and orientation state machine. It owns the current
// Mode, consumes plain input events (drag, scroll, nudge), and derives the
// camera matrices for the live (non-scripted) path.
type State interface {
	// Mode returns the active view mode.
	//
	// Returns:
	//   - Mode: the current mode
	Mode() Mode

	// SetMode switches the view mode and resets pitch, yaw and fov to the
	// mode's defaults. The up vector is reset to +Y.
	//
	// Parameters:
	//   - mode: the mode to activate
	SetMode(mode Mode)

	// Orientation returns a snapshot of the current orientation.
	//
	// Returns:
	//   - OrientationState: copy of the live orientation
	Orientation() OrientationState

	// DragStart begins a mouse drag at the given cursor position.
	//
	// Parameters:
	//   - x: cursor x in pixels
	//   - y: cursor y in pixels
	DragStart(x, y float64)

	// DragMove updates yaw and pitch from cursor movement while a drag is
	// active. Movement is scaled by the drag sensitivity; vertical movement
	// is inverted so dragging up looks up.
	//
	// Parameters:
	//   - x: cursor x in pixels
	//   - y: cursor y in pixels
	DragMove(x, y float64)

	// DragEnd finishes the active drag. A DragMove outside a drag is ignored.
	DragEnd()

	// Dragging reports whether a drag is active.
	//
	// Returns:
	//   - bool: true while the mouse button is held
	Dragging() bool

	// Scroll applies a scroll wheel delta to the field of view. Positive
	// deltas zoom in. The result is clamped to [1, 120] degrees.
	//
	// Parameters:
	//   - delta: scroll offset (one notch is typically 1.0)
	Scroll(delta float32)

	// Nudge applies keyboard look adjustments in degrees.
	//
	// Parameters:
	//   - dYaw: yaw delta in degrees
	//   - dPitch: pitch delta in degrees
	Nudge(dYaw, dPitch float32)

	// SetAnimating marks whether a scripted animation currently drives the
	// camera. While set, the Perspective pitch clamp is suspended so a
	// scripted pass through a pole is not cut short on handoff.
	//
	// Parameters:
	//   - active: true while a scripted animation is active
	SetAnimating(active bool)

	// Animating reports whether a scripted animation is active.
	//
	// Returns:
	//   - bool: true while scripted animation drives the camera
	Animating() bool

	// Matrices derives the projection and view matrices for the live camera
	// path from the current mode and orientation. In the orbiting modes this
	// also performs pole-crossing bookkeeping (up-vector flip, PrevPitch).
	//
	// Parameters:
	//   - aspect: viewport width divided by height
	//
	// Returns:
	//   - mgl32.Mat4: projection matrix
	//   - mgl32.Mat4: view matrix
	Matrices(aspect float32) (mgl32.Mat4, mgl32.Mat4)
}

// viewStateImpl is the implementation of the State interface.
type viewStateImpl struct {
	mu *sync.Mutex

	mode      Mode
	orient    OrientationState
	animating bool

	dragging     bool
	lastX, lastY float64

	// sensitivity scales cursor movement into degrees.
	sensitivity float32

	// zoomSpeed scales one scroll notch into degrees of fov.
	zoomSpeed float32
}

var _ State = &viewStateImpl{}

// NewState creates a view State with the specified options.
// Applies default values first, then each option in order. The initial mode
// is Perspective unless overridden.
//
// Parameters:
//   - options: functional options to configure the state
//
// Returns:
//   - State: the configured view state
func NewState(options ...StateOption) State {
	s := &viewStateImpl{
		mu:          &sync.Mutex{},
		mode:        ModePerspective,
		sensitivity: 0.2,
		zoomSpeed:   4.0,
	}
	for _, opt := range options {
		opt(s)
	}
	s.reset(s.mode)
	return s
}

func (s *viewStateImpl) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *viewStateImpl) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(mode)
}

// reset applies a mode's default orientation. Caller holds the lock.
func (s *viewStateImpl) reset(mode Mode) {
	pitch, yaw, fov := mode.Defaults()
	s.mode = mode
	s.orient = OrientationState{
		Yaw:       yaw,
		Pitch:     pitch,
		PrevPitch: pitch,
		Fov:       fov,
		Up:        mgl32.Vec3{0, 1, 0},
	}
}

func (s *viewStateImpl) Orientation() OrientationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orient
}

func (s *viewStateImpl) DragStart(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = true
	s.lastX = x
	s.lastY = y
}

func (s *viewStateImpl) DragMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dragging {
		return
	}
	dx := float32(x-s.lastX) * s.sensitivity
	dy := float32(y-s.lastY) * s.sensitivity
	s.lastX = x
	s.lastY = y

	s.orient.Yaw += dx
	s.orient.Pitch -= dy
	s.applyLimits()
}

func (s *viewStateImpl) DragEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = false
}

func (s *viewStateImpl) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}

func (s *viewStateImpl) Scroll(delta float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orient.Fov -= delta * s.zoomSpeed
	s.orient.Fov = mgl32.Clamp(s.orient.Fov, minFov, maxFov)
}

func (s *viewStateImpl) Nudge(dYaw, dPitch float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orient.Yaw += dYaw
	s.orient.Pitch += dPitch
	s.applyLimits()
}

func (s *viewStateImpl) SetAnimating(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animating = active
}

func (s *viewStateImpl) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animating
}

// applyLimits normalizes yaw into [0, 360) and clamps pitch when looking
// from the sphere center. The orbiting modes intentionally allow the pitch
// to run past the poles; the pole-crossing detector keeps the image upright.
// Caller holds the lock.
func (s *viewStateImpl) applyLimits() {
	yaw := float32(wrap360(float64(s.orient.Yaw)))
	s.orient.Yaw = yaw

	if s.mode == ModePerspective && !s.animating {
		s.orient.Pitch = mgl32.Clamp(s.orient.Pitch, -maxPerspectivePitch, maxPerspectivePitch)
	}
}

const (
	minFov = 1
	maxFov = 120

	// maxPerspectivePitch stops the first-person camera just short of the
	// poles, where LookAt with a fixed up vector degenerates.
	maxPerspectivePitch = 89
)

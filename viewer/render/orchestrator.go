// Package render multiplexes the live interactive camera and scripted
// animation playback into a single per-frame matrix source.
package render

import (
	"errors"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cuixing158/panoview/viewer/animation"
	"github.com/cuixing158/panoview/viewer/view"
)

// ErrUnknownKind indicates a playback request for a kind with no preset.
var ErrUnknownKind = errors.New("render: no preset for animation kind")

// Orchestrator owns the animation clock and decides, each frame, whether the
// camera matrices come from the live view state or from the active scripted
// effect.
type Orchestrator interface {
	// SetMode switches the view mode. Any active scripted animation is
	// cleared first so the mode's default framing is what appears.
	//
	// Parameters:
	//   - mode: the view mode to activate
	SetMode(mode view.Mode)

	// Play activates the preset effect for a kind and resets the clock.
	//
	// Parameters:
	//   - kind: the preset to play
	//
	// Returns:
	//   - error: ErrUnknownKind if the kind has no preset
	Play(kind animation.Kind) error

	// SetEffect replaces the active effect wholesale and resets the clock.
	//
	// Parameters:
	//   - effect: the effect to play
	//   - kind: the kind label for the effect
	SetEffect(effect *animation.Effect, kind animation.Kind)

	// ClearEffect stops scripted playback and returns to the live camera.
	ClearEffect()

	// Kind returns the active animation kind (KindNone when live).
	//
	// Returns:
	//   - animation.Kind: the active kind
	Kind() animation.Kind

	// Effect returns the active effect, or nil when live.
	//
	// Returns:
	//   - *animation.Effect: the active effect
	Effect() *animation.Effect

	// Advance moves the animation clock forward. A no-op when live.
	//
	// Parameters:
	//   - dt: elapsed frame time in seconds
	Advance(dt float32)

	// Clock returns the current animation time in seconds.
	//
	// Returns:
	//   - float32: seconds since playback started
	Clock() float32

	// Camera derives the projection and view matrices for this frame,
	// scripted when an effect is active and live otherwise.
	//
	// Parameters:
	//   - aspect: viewport width divided by height
	//
	// Returns:
	//   - mgl32.Mat4: projection matrix
	//   - mgl32.Mat4: view matrix
	Camera(aspect float32) (mgl32.Mat4, mgl32.Mat4)
}

// orchestratorImpl is the implementation of the Orchestrator interface.
type orchestratorImpl struct {
	mu *sync.Mutex

	state  view.State
	effect *animation.Effect
	kind   animation.Kind
	clock  float32
}

var _ Orchestrator = &orchestratorImpl{}

// NewOrchestrator creates an Orchestrator driving the given view state.
//
// Parameters:
//   - state: the live view state to multiplex with scripted playback
//
// Returns:
//   - Orchestrator: the orchestrator, starting on the live path
func NewOrchestrator(state view.State) Orchestrator {
	return &orchestratorImpl{
		mu:    &sync.Mutex{},
		state: state,
	}
}

func (o *orchestratorImpl) SetMode(mode view.Mode) {
	o.ClearEffect()
	o.state.SetMode(mode)
}

func (o *orchestratorImpl) Play(kind animation.Kind) error {
	effect, ok := animation.Preset(kind)
	if !ok {
		return ErrUnknownKind
	}
	o.SetEffect(effect, kind)
	return nil
}

func (o *orchestratorImpl) SetEffect(effect *animation.Effect, kind animation.Kind) {
	o.mu.Lock()
	o.effect = effect
	o.kind = kind
	o.clock = 0
	o.mu.Unlock()
	o.state.SetAnimating(true)
}

func (o *orchestratorImpl) ClearEffect() {
	o.mu.Lock()
	o.effect = nil
	o.kind = animation.KindNone
	o.clock = 0
	o.mu.Unlock()
	o.state.SetAnimating(false)
}

func (o *orchestratorImpl) Kind() animation.Kind {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.kind
}

func (o *orchestratorImpl) Effect() *animation.Effect {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.effect
}

func (o *orchestratorImpl) Advance(dt float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.kind == animation.KindNone {
		return
	}
	o.clock += dt
}

func (o *orchestratorImpl) Clock() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.clock
}

func (o *orchestratorImpl) Camera(aspect float32) (mgl32.Mat4, mgl32.Mat4) {
	o.mu.Lock()
	if o.kind != animation.KindNone && o.effect != nil {
		pose := o.effect.Interpolate(o.clock)
		o.mu.Unlock()
		return view.AnimationMatrices(pose, aspect)
	}
	o.mu.Unlock()
	return o.state.Matrices(aspect)
}

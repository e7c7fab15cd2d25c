package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuixing158/panoview/viewer/animation"
	"github.com/cuixing158/panoview/viewer/view"
)

func TestOrchestratorStartsLive(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(view.NewState())
	assert.Equal(t, animation.KindNone, o.Kind())
	assert.Nil(t, o.Effect())
	assert.Equal(t, float32(0), o.Clock())
}

func TestOrchestratorPlay(t *testing.T) {
	t.Parallel()

	s := view.NewState()
	o := NewOrchestrator(s)

	require.NoError(t, o.Play(animation.KindRotate))
	assert.Equal(t, animation.KindRotate, o.Kind())
	assert.NotNil(t, o.Effect())
	assert.True(t, s.Animating())

	o.Advance(1.5)
	assert.InDelta(t, 1.5, o.Clock(), 1e-5)

	// Replacing the effect resets the clock.
	require.NoError(t, o.Play(animation.KindSwipe))
	assert.Equal(t, float32(0), o.Clock())
	assert.Equal(t, animation.KindSwipe, o.Kind())
}

func TestOrchestratorPlayUnknownKind(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(view.NewState())
	assert.ErrorIs(t, o.Play(animation.KindNone), ErrUnknownKind)
	assert.Equal(t, animation.KindNone, o.Kind())
}

func TestOrchestratorAdvanceIsLiveNoop(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(view.NewState())
	o.Advance(2)
	assert.Equal(t, float32(0), o.Clock())
}

func TestOrchestratorClearEffect(t *testing.T) {
	t.Parallel()

	s := view.NewState()
	o := NewOrchestrator(s)
	require.NoError(t, o.Play(animation.KindSwipeRotate))
	o.Advance(1)

	o.ClearEffect()
	assert.Equal(t, animation.KindNone, o.Kind())
	assert.Nil(t, o.Effect())
	assert.Equal(t, float32(0), o.Clock())
	assert.False(t, s.Animating())
}

func TestOrchestratorSetModeClearsAnimation(t *testing.T) {
	t.Parallel()

	s := view.NewState()
	o := NewOrchestrator(s)
	require.NoError(t, o.Play(animation.KindRotate))

	o.SetMode(view.ModeLittlePlanet)
	assert.Equal(t, animation.KindNone, o.Kind())
	assert.Equal(t, view.ModeLittlePlanet, s.Mode())
	assert.False(t, s.Animating())
}

func TestOrchestratorCameraSelectsSource(t *testing.T) {
	t.Parallel()

	s := view.NewState()
	o := NewOrchestrator(s)

	// Live path matches the state's own derivation.
	wantProj, wantView := s.Matrices(1)
	gotProj, gotView := o.Camera(1)
	assert.Equal(t, wantProj, gotProj)
	assert.Equal(t, wantView, gotView)

	// Scripted path matches the interpolated pose's derivation.
	effect := &animation.Effect{
		PositionKeys: []mgl32.Vec3{{0, 0, 0}, {0, 1, 0}},
		RotationKeys: []mgl32.Quat{
			mgl32.QuatIdent(),
			mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}),
		},
		FovKeys:        []float32{60, 120},
		StageDurations: []float32{2},
	}
	o.SetEffect(effect, animation.KindRotate)
	o.Advance(1)

	pose := effect.Interpolate(1)
	wantProj, wantView = view.AnimationMatrices(pose, 1)
	gotProj, gotView = o.Camera(1)
	assert.Equal(t, wantProj, gotProj)
	assert.Equal(t, wantView, gotView)

	// Clearing hands control back to the live camera.
	o.ClearEffect()
	wantProj, wantView = s.Matrices(1)
	gotProj, gotView = o.Camera(1)
	assert.Equal(t, wantProj, gotProj)
	assert.Equal(t, wantView, gotView)
}

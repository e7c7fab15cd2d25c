package animation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampEffect is a minimal two-keyframe effect used to verify interpolation
// arithmetic: position rises, the camera turns a quarter circle, and the fov
// doubles over four seconds.
func rampEffect() *Effect {
	return &Effect{
		PositionKeys: []mgl32.Vec3{{0, 0, 0}, {0, 2, 0}},
		RotationKeys: []mgl32.Quat{
			mgl32.QuatIdent(),
			mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}),
		},
		FovKeys:        []float32{60, 120},
		StageDurations: []float32{4},
	}
}

func TestEffectValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		effect  *Effect
		wantErr error
	}{
		{"ramp effect", rampEffect(), nil},
		{"single keyframe", &Effect{
			PositionKeys: []mgl32.Vec3{{}},
			RotationKeys: []mgl32.Quat{mgl32.QuatIdent()},
			FovKeys:      []float32{60},
		}, ErrInvalidEffect},
		{"stage count mismatch", &Effect{
			PositionKeys:   []mgl32.Vec3{{}, {}},
			RotationKeys:   []mgl32.Quat{mgl32.QuatIdent(), mgl32.QuatIdent()},
			FovKeys:        []float32{60, 90},
			StageDurations: []float32{1, 1},
		}, ErrInvalidEffect},
		{"rotation count mismatch", &Effect{
			PositionKeys:   []mgl32.Vec3{{}, {}},
			RotationKeys:   []mgl32.Quat{mgl32.QuatIdent()},
			FovKeys:        []float32{60, 90},
			StageDurations: []float32{1},
		}, ErrInvalidEffect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.effect.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEffectTotalDuration(t *testing.T) {
	t.Parallel()

	e := &Effect{StageDurations: []float32{1.5, 3, 2, 2}}
	assert.InDelta(t, 8.5, e.TotalDuration(), 1e-5)
	assert.Equal(t, 4, e.Stages())
}

func TestEffectStageProgress(t *testing.T) {
	t.Parallel()

	e := &Effect{
		PositionKeys:   make([]mgl32.Vec3, 3),
		RotationKeys:   []mgl32.Quat{mgl32.QuatIdent(), mgl32.QuatIdent(), mgl32.QuatIdent()},
		FovKeys:        []float32{60, 60, 60},
		StageDurations: []float32{4, 2},
	}

	assert.Equal(t, float32(0), e.StageProgress(0))
	assert.InDelta(t, 0.5, e.StageProgress(2), 1e-5)
	assert.Equal(t, float32(1), e.StageProgress(4))
	assert.InDelta(t, 0.5, e.StageProgress(5), 1e-5)
	assert.Equal(t, float32(1), e.StageProgress(6))
	assert.Equal(t, float32(1), e.StageProgress(100))
	assert.Equal(t, float32(0), e.StageProgress(-1))
}

func TestEffectInterpolateEndpoints(t *testing.T) {
	t.Parallel()

	e := rampEffect()
	require.NoError(t, e.Validate())

	start := e.Interpolate(0)
	assert.Equal(t, e.PositionKeys[0], start.Position)
	assert.Equal(t, e.FovKeys[0], start.Fov)

	end := e.Interpolate(e.TotalDuration())
	assert.Equal(t, e.PositionKeys[1], end.Position)
	assert.Equal(t, e.FovKeys[1], end.Fov)
}

func TestEffectInterpolateMidpoint(t *testing.T) {
	t.Parallel()

	e := rampEffect()
	mid := e.Interpolate(2)

	assert.InDelta(t, 1, mid.Position.Y(), 1e-5)
	assert.InDelta(t, 90, mid.Fov, 1e-5)

	// Halfway between identity and a 90 degree yaw is a 45 degree yaw.
	forward := mid.Orientation.Rotate(mgl32.Vec3{0, 0, -1})
	assert.InDelta(t, -0.70710678, forward.X(), 1e-4)
	assert.InDelta(t, 0, forward.Y(), 1e-4)
	assert.InDelta(t, -0.70710678, forward.Z(), 1e-4)
}

func TestEffectInterpolateClampedHold(t *testing.T) {
	t.Parallel()

	e := rampEffect()
	past := e.Interpolate(e.TotalDuration() + 10)
	assert.Equal(t, e.PositionKeys[1], past.Position)
	assert.Equal(t, e.FovKeys[1], past.Fov)
	assert.Equal(t, e.RotationKeys[1], past.Orientation)
}

func TestEffectInterpolateNegativeTime(t *testing.T) {
	t.Parallel()

	e := rampEffect()
	before := e.Interpolate(-5)
	assert.Equal(t, e.PositionKeys[0], before.Position)
	assert.Equal(t, e.FovKeys[0], before.Fov)
}

func TestEffectInterpolateDeterministic(t *testing.T) {
	t.Parallel()

	e := Rotate()
	a := e.Interpolate(3.7)
	b := e.Interpolate(3.7)
	assert.Equal(t, a, b)
}

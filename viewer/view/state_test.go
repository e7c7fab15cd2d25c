package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateModeDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode      Mode
		wantPitch float32
		wantYaw   float32
		wantFov   float32
	}{
		{ModePerspective, 0, 0, 60},
		{ModeLittlePlanet, 90, 0, 120},
		{ModeCrystalBall, 0, 0, 85},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			t.Parallel()
			s := NewState(WithMode(tt.mode))
			o := s.Orientation()
			assert.Equal(t, tt.mode, s.Mode())
			assert.Equal(t, tt.wantPitch, o.Pitch)
			assert.Equal(t, tt.wantPitch, o.PrevPitch)
			assert.Equal(t, tt.wantYaw, o.Yaw)
			assert.Equal(t, tt.wantFov, o.Fov)
			assert.Equal(t, float32(1), o.Up.Y())
		})
	}
}

func TestStateSetModeResetsOrientation(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Nudge(45, 30)
	s.Scroll(2)

	s.SetMode(ModeLittlePlanet)
	o := s.Orientation()
	assert.Equal(t, float32(90), o.Pitch)
	assert.Equal(t, float32(0), o.Yaw)
	assert.Equal(t, float32(120), o.Fov)
}

func TestStateYawWraparound(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Nudge(370, 0)
	assert.InDelta(t, 10, s.Orientation().Yaw, 1e-4)

	s.Nudge(-40, 0)
	assert.InDelta(t, 330, s.Orientation().Yaw, 1e-4)

	s.Nudge(30, 0)
	assert.InDelta(t, 0, s.Orientation().Yaw, 1e-4)
}

func TestStatePitchClamping(t *testing.T) {
	t.Parallel()

	t.Run("clamped in perspective", func(t *testing.T) {
		t.Parallel()
		s := NewState()
		s.Nudge(0, 200)
		assert.Equal(t, float32(89), s.Orientation().Pitch)
		s.Nudge(0, -400)
		assert.Equal(t, float32(-89), s.Orientation().Pitch)
	})

	t.Run("unclamped in little planet", func(t *testing.T) {
		t.Parallel()
		s := NewState(WithMode(ModeLittlePlanet))
		s.Nudge(0, 100)
		assert.Equal(t, float32(190), s.Orientation().Pitch)
	})

	t.Run("unclamped in crystal ball", func(t *testing.T) {
		t.Parallel()
		s := NewState(WithMode(ModeCrystalBall))
		s.Nudge(0, -200)
		assert.Equal(t, float32(-200), s.Orientation().Pitch)
	})

	t.Run("unclamped while animating", func(t *testing.T) {
		t.Parallel()
		s := NewState()
		s.SetAnimating(true)
		s.Nudge(0, 200)
		assert.Equal(t, float32(200), s.Orientation().Pitch)
	})
}

func TestStateDrag(t *testing.T) {
	t.Parallel()

	s := NewState()
	require.False(t, s.Dragging())

	// Moves outside a drag are ignored.
	s.DragMove(500, 500)
	assert.Equal(t, float32(0), s.Orientation().Yaw)

	s.DragStart(100, 100)
	require.True(t, s.Dragging())

	// Default sensitivity 0.2; dragging up (dy < 0) raises the pitch.
	s.DragMove(110, 90)
	o := s.Orientation()
	assert.InDelta(t, 2, o.Yaw, 1e-4)
	assert.InDelta(t, 2, o.Pitch, 1e-4)

	s.DragEnd()
	require.False(t, s.Dragging())
	s.DragMove(200, 200)
	assert.InDelta(t, 2, s.Orientation().Yaw, 1e-4)
}

func TestStateScrollClampsFov(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Scroll(1)
	assert.Equal(t, float32(56), s.Orientation().Fov)

	s.Scroll(100)
	assert.Equal(t, float32(1), s.Orientation().Fov)

	s.Scroll(-100)
	assert.Equal(t, float32(120), s.Orientation().Fov)
}

func TestStateCustomSensitivity(t *testing.T) {
	t.Parallel()

	s := NewState(WithSensitivity(1), WithZoomSpeed(10))
	s.DragStart(0, 0)
	s.DragMove(5, 0)
	assert.InDelta(t, 5, s.Orientation().Yaw, 1e-4)

	s.Scroll(1)
	assert.Equal(t, float32(50), s.Orientation().Fov)
}

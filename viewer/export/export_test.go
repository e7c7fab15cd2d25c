package export

import (
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuixing158/panoview/viewer/animation"
	"github.com/cuixing158/panoview/viewer/media"
)

// fakeTarget is an in-memory OffscreenRenderer that records calls.
type fakeTarget struct {
	mu            sync.Mutex
	width, height int
	allocated     int
	released      int
	rendered      int
	allocErr      error
	renderErr     error
	projections   []mgl32.Mat4
}

func (f *fakeTarget) Allocate(width, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allocErr != nil {
		return f.allocErr
	}
	f.width = width
	f.height = height
	f.allocated++
	return nil
}

func (f *fakeTarget) RenderFrame(proj, _ mgl32.Mat4) (*image.RGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	f.rendered++
	f.projections = append(f.projections, proj)
	return image.NewRGBA(image.Rect(0, 0, f.width, f.height)), nil
}

func (f *fakeTarget) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
}

// fakeSink is an in-memory Sink that records frame geometry.
type fakeSink struct {
	mu            sync.Mutex
	width, height int
	fps           int
	opened        int
	closed        int
	frames        int
	openErr       error
	writeErr      error
	block         chan struct{} // when set, WriteFrame waits for it to close
}

func (f *fakeSink) Open(width, height, fps int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.width = width
	f.height = height
	f.fps = fps
	f.opened++
	return nil
}

func (f *fakeSink) WriteFrame(frame *image.RGBA) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if frame.Bounds().Dx() != f.width || frame.Bounds().Dy() != f.height {
		return errors.New("frame does not match sink geometry")
	}
	f.frames++
	return nil
}

func (f *fakeSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// twoSecondEffect is a minimal valid effect with a 2 second duration.
func twoSecondEffect() *animation.Effect {
	return &animation.Effect{
		PositionKeys: []mgl32.Vec3{{0, 0, 0}, {0, 1, 0}},
		RotationKeys: []mgl32.Quat{
			mgl32.QuatIdent(),
			mgl32.QuatRotate(mgl32.DegToRad(180), mgl32.Vec3{0, 1, 0}),
		},
		FovKeys:        []float32{60, 120},
		StageDurations: []float32{2},
	}
}

func TestExportFrameCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		durations  []float32
		fps        int
		wantFrames int
	}{
		{"whole second boundary", []float32{2}, 10, 20},
		{"fractional duration rounds up", []float32{1.05}, 10, 11},
		{"single frame", []float32{0.01}, 10, 1},
		{"multi stage", []float32{1.5, 3, 2, 2}, 30, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			effect := twoSecondEffect()
			effect.StageDurations = tt.durations
			for len(effect.PositionKeys) < len(tt.durations)+1 {
				effect.PositionKeys = append(effect.PositionKeys, mgl32.Vec3{})
				effect.RotationKeys = append(effect.RotationKeys, mgl32.QuatIdent())
				effect.FovKeys = append(effect.FovKeys, 60)
			}
			require.NoError(t, effect.Validate())

			target := &fakeTarget{}
			sink := &fakeSink{}
			e := NewExporter(target, WithNativeSize(64, 32))

			err := e.Export(effect, animation.KindRotate, sink, Options{Width: 64, Height: 32, FPS: tt.fps})
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrames, sink.frames)
			assert.Equal(t, tt.wantFrames, target.rendered)
			assert.Equal(t, 1, sink.opened)
			assert.Equal(t, 1, sink.closed)
			assert.Equal(t, 1, target.released)
			assert.Equal(t, StateCompleted, e.State())
		})
	}
}

func TestExportFramesAreTimeOrdered(t *testing.T) {
	t.Parallel()

	// The effect's fov rises monotonically, so each frame's projection must
	// differ from the previous one: frame times strictly increase.
	target := &fakeTarget{}
	e := NewExporter(target, WithNativeSize(32, 32))

	err := e.Export(twoSecondEffect(), animation.KindSwipe, &fakeSink{}, Options{Width: 32, Height: 32, FPS: 5})
	require.NoError(t, err)
	require.Len(t, target.projections, 10)
	for i := 1; i < len(target.projections); i++ {
		assert.NotEqual(t, target.projections[i-1], target.projections[i], "frame %d", i)
	}
}

func TestExportScalesToRequestedSize(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{}
	sink := &fakeSink{}
	e := NewExporter(target, WithNativeSize(64, 32))

	// The sink rejects frames that do not match its geometry, so success
	// means every frame was scaled from 64x32 down to 32x16.
	err := e.Export(twoSecondEffect(), animation.KindRotate, sink, Options{Width: 32, Height: 16, FPS: 10})
	require.NoError(t, err)
	assert.Equal(t, 64, target.width)
	assert.Equal(t, 32, target.height)
	assert.Equal(t, 32, sink.width)
	assert.Equal(t, 16, sink.height)
	assert.Equal(t, 20, sink.frames)
}

func TestExportDefaultsApplied(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{}
	sink := &fakeSink{}
	e := NewExporter(target, WithNativeSize(32, 32), WithDefaultOutput(32, 32, 4))

	err := e.Export(twoSecondEffect(), animation.KindRotate, sink, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, sink.fps)
	assert.Equal(t, 8, sink.frames)
}

func TestExportPreconditions(t *testing.T) {
	t.Parallel()

	t.Run("no animation kind", func(t *testing.T) {
		t.Parallel()
		e := NewExporter(&fakeTarget{})
		err := e.Export(twoSecondEffect(), animation.KindNone, &fakeSink{}, Options{})
		assert.ErrorIs(t, err, ErrNoActiveAnimation)
		assert.Equal(t, StateFailed, e.State())
	})

	t.Run("nil effect", func(t *testing.T) {
		t.Parallel()
		e := NewExporter(&fakeTarget{})
		err := e.Export(nil, animation.KindRotate, &fakeSink{}, Options{})
		assert.ErrorIs(t, err, ErrNoActiveAnimation)
	})

	t.Run("video source", func(t *testing.T) {
		t.Parallel()
		e := NewExporter(&fakeTarget{}, WithSourceKind(media.SourceVideo))
		err := e.Export(twoSecondEffect(), animation.KindRotate, &fakeSink{}, Options{})
		assert.ErrorIs(t, err, ErrNoActiveAnimation)
	})
}

func TestExportSinkOpenFailure(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{}
	sink := &fakeSink{openErr: errors.New("disk full")}
	e := NewExporter(target)

	err := e.Export(twoSecondEffect(), animation.KindRotate, sink, Options{})
	assert.ErrorIs(t, err, ErrSinkOpen)
	assert.Equal(t, 0, sink.frames)
	assert.Equal(t, 0, target.allocated)
	assert.Equal(t, StateFailed, e.State())
}

func TestExportRenderTargetFailure(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{allocErr: errors.New("out of device memory")}
	sink := &fakeSink{}
	e := NewExporter(target)

	err := e.Export(twoSecondEffect(), animation.KindRotate, sink, Options{})
	assert.ErrorIs(t, err, ErrRenderTarget)
	assert.Equal(t, 1, sink.opened)
	assert.Equal(t, 1, sink.closed)
	assert.Equal(t, StateFailed, e.State())
}

func TestExportRenderFailureMidway(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{renderErr: errors.New("device lost")}
	sink := &fakeSink{}
	e := NewExporter(target, WithNativeSize(16, 16))

	err := e.Export(twoSecondEffect(), animation.KindRotate, sink, Options{Width: 16, Height: 16, FPS: 10})
	require.Error(t, err)
	assert.Equal(t, 0, sink.frames)
	assert.Equal(t, 1, sink.closed)
	assert.Equal(t, 1, target.released)
	assert.Equal(t, StateFailed, e.State())
}

func TestExportRunsAgainAfterTerminalState(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{}
	e := NewExporter(target, WithNativeSize(16, 16))
	opts := Options{Width: 16, Height: 16, FPS: 5}

	require.NoError(t, e.Export(twoSecondEffect(), animation.KindRotate, &fakeSink{}, opts))
	require.Equal(t, StateCompleted, e.State())

	require.NoError(t, e.Export(twoSecondEffect(), animation.KindSwipe, &fakeSink{}, opts))
	assert.Equal(t, StateCompleted, e.State())
	assert.Equal(t, 2, target.allocated)
}

func TestStartRejectsConcurrentExport(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{}
	block := make(chan struct{})
	sink := &fakeSink{block: block}
	e := NewExporter(target, WithNativeSize(16, 16))
	opts := Options{Width: 16, Height: 16, FPS: 5}

	handle, err := e.Start(twoSecondEffect(), animation.KindRotate, sink, opts)
	require.NoError(t, err)
	require.Equal(t, StateRunning, e.State())

	// A second request of either flavor bounces while the first runs.
	_, err = e.Start(twoSecondEffect(), animation.KindRotate, &fakeSink{}, opts)
	assert.ErrorIs(t, err, ErrExportInProgress)
	err = e.Export(twoSecondEffect(), animation.KindRotate, &fakeSink{}, opts)
	assert.ErrorIs(t, err, ErrExportInProgress)

	select {
	case <-handle.Done():
		t.Fatal("export finished while the sink was blocked")
	default:
	}
	assert.NoError(t, handle.Err())

	close(block)
	require.NoError(t, handle.Await())
	assert.Equal(t, StateCompleted, e.State())
	assert.Equal(t, 10, sink.frames)
}

func TestStartReportsFailure(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{openErr: errors.New("disk full")}
	e := NewExporter(&fakeTarget{})

	handle, err := e.Start(twoSecondEffect(), animation.KindRotate, sink, Options{})
	require.NoError(t, err)

	select {
	case <-handle.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("background export did not finish")
	}
	assert.ErrorIs(t, handle.Err(), ErrSinkOpen)
	assert.Equal(t, StateFailed, e.State())
}

// Package export renders an active camera animation to an offscreen target
// frame by frame and streams the frames into a sink, typically a video
// encoder. One export runs at a time, either synchronously or on a worker
// pool goroutine.
package export

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/cuixing158/panoview/viewer/animation"
	"github.com/cuixing158/panoview/viewer/media"
	"github.com/cuixing158/panoview/viewer/view"
)

var (
	// ErrNoActiveAnimation indicates an export request without a scripted
	// animation to render, or with a video source (only still panoramas can
	// be exported).
	ErrNoActiveAnimation = errors.New("export: no scripted animation is active")

	// ErrSinkOpen indicates the frame sink could not be opened; nothing was
	// written.
	ErrSinkOpen = errors.New("export: opening the frame sink failed")

	// ErrRenderTarget indicates the offscreen render target could not be
	// allocated; the sink may hold a partial (empty) output.
	ErrRenderTarget = errors.New("export: allocating the offscreen render target failed")

	// ErrExportInProgress indicates a second export was requested while one
	// is running. The in-flight export is unaffected.
	ErrExportInProgress = errors.New("export: an export is already running")
)

// State is the exporter lifecycle state.
type State int32

const (
	// StateIdle means no export has run yet.
	StateIdle State = iota

	// StateRunning means an export is in flight.
	StateRunning

	// StateCompleted means the last export finished successfully.
	StateCompleted

	// StateFailed means the last export returned an error.
	StateFailed
)

// String returns a human-readable state name for logging.
//
// Returns:
//   - string: the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Sink receives the exported frames in order. Open is called exactly once
// before the first frame and Close exactly once after the last write
// attempt, regardless of errors in between.
type Sink interface {
	// Open prepares the sink for frames of the given geometry.
	//
	// Parameters:
	//   - width: frame width in pixels
	//   - height: frame height in pixels
	//   - fps: frame rate of the exported clip
	//
	// Returns:
	//   - error: error if the sink cannot be opened
	Open(width, height, fps int) error

	// WriteFrame appends one frame to the sink.
	//
	// Parameters:
	//   - frame: the RGBA frame to append
	//
	// Returns:
	//   - error: error if the write fails
	WriteFrame(frame *image.RGBA) error

	// Close finalizes the sink.
	//
	// Returns:
	//   - error: error if finalization fails
	Close() error
}

// OffscreenRenderer renders single frames to an offscreen target and reads
// the pixels back. Allocate and Release bracket one export.
type OffscreenRenderer interface {
	// Allocate creates the offscreen target at the given size.
	//
	// Parameters:
	//   - width: target width in pixels
	//   - height: target height in pixels
	//
	// Returns:
	//   - error: error if the target cannot be created
	Allocate(width, height int) error

	// RenderFrame draws one frame with the given camera and returns its
	// pixels.
	//
	// Parameters:
	//   - proj: projection matrix
	//   - viewMat: view matrix
	//
	// Returns:
	//   - *image.RGBA: the rendered frame
	//   - error: error if rendering or readback fails
	RenderFrame(proj, viewMat mgl32.Mat4) (*image.RGBA, error)

	// Release frees the offscreen target.
	Release()
}

// Options selects the exported clip's geometry and frame rate. Zero fields
// fall back to the exporter defaults.
type Options struct {
	Width  int
	Height int
	FPS    int
}

// Handle tracks a background export started with Start.
type Handle interface {
	// Done returns a channel closed when the export finishes.
	//
	// Returns:
	//   - <-chan struct{}: closed on completion
	Done() <-chan struct{}

	// Err returns the export's result once Done is closed, nil before.
	//
	// Returns:
	//   - error: the export error, or nil
	Err() error

	// Await blocks until the export finishes and returns its result.
	//
	// Returns:
	//   - error: the export error, or nil
	Await() error
}

// Exporter renders camera animations to a frame sink. The exporter holds a
// four-state lifecycle (Idle, Running, Completed, Failed); only one export
// runs at a time and there is no cancellation once started.
type Exporter interface {
	// Export runs an export synchronously. The animation is sampled at
	// t = 0, 1/fps, 2/fps, ... strictly below its total duration, so the
	// clip holds exactly ceil(duration*fps) evenly spaced frames.
	//
	// Parameters:
	//   - effect: the animation to render
	//   - kind: the animation kind (KindNone is rejected)
	//   - sink: destination for the rendered frames
	//   - opts: output geometry and frame rate
	//
	// Returns:
	//   - error: ErrExportInProgress, a precondition error, or the first
	//     frame-level failure
	Export(effect *animation.Effect, kind animation.Kind, sink Sink, opts Options) error

	// Start runs Export on the worker pool and returns immediately.
	//
	// Parameters:
	//   - effect: the animation to render
	//   - kind: the animation kind (KindNone is rejected)
	//   - sink: destination for the rendered frames
	//   - opts: output geometry and frame rate
	//
	// Returns:
	//   - Handle: tracker for the background export
	//   - error: ErrExportInProgress if an export is already running
	Start(effect *animation.Effect, kind animation.Kind, sink Sink, opts Options) (Handle, error)

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - State: the exporter state
	State() State
}

// exporterImpl is the implementation of the Exporter interface.
type exporterImpl struct {
	target OffscreenRenderer

	// nativeWidth and nativeHeight are the offscreen render resolution;
	// frames are rendered here and then scaled to the requested output size.
	nativeWidth  int
	nativeHeight int

	sourceKind media.SourceKind

	defaultWidth  int
	defaultHeight int
	defaultFPS    int

	state   atomic.Int32
	taskSeq atomic.Int64
	pool    worker.DynamicWorkerPool
}

var _ Exporter = &exporterImpl{}

// NewExporter creates an Exporter rendering through the given offscreen
// target. Applies default values first, then each option in order.
//
// Parameters:
//   - target: the offscreen renderer used for frame generation
//   - options: functional options to configure the exporter
//
// Returns:
//   - Exporter: the configured exporter in the Idle state
func NewExporter(target OffscreenRenderer, options ...ExporterOption) Exporter {
	e := &exporterImpl{
		target:        target,
		nativeWidth:   1920,
		nativeHeight:  1080,
		sourceKind:    media.SourceImage,
		defaultWidth:  1920,
		defaultHeight: 1080,
		defaultFPS:    30,
	}
	for _, opt := range options {
		opt(e)
	}
	// A single worker serializes background exports with a small queue; the
	// Running guard rejects overlapping requests before they ever queue.
	e.pool = worker.NewDynamicWorkerPool(1, 4, 1*time.Second)
	return e
}

func (e *exporterImpl) State() State {
	return State(e.state.Load())
}

// begin transitions to Running unless an export is already in flight.
func (e *exporterImpl) begin() error {
	for {
		current := e.state.Load()
		if State(current) == StateRunning {
			return ErrExportInProgress
		}
		if e.state.CompareAndSwap(current, int32(StateRunning)) {
			return nil
		}
	}
}

// finish records the terminal state for a completed run.
func (e *exporterImpl) finish(err error) {
	if err != nil {
		e.state.Store(int32(StateFailed))
		return
	}
	e.state.Store(int32(StateCompleted))
}

func (e *exporterImpl) Export(effect *animation.Effect, kind animation.Kind, sink Sink, opts Options) error {
	if err := e.begin(); err != nil {
		return err
	}
	err := e.run(effect, kind, sink, opts)
	e.finish(err)
	return err
}

func (e *exporterImpl) Start(effect *animation.Effect, kind animation.Kind, sink Sink, opts Options) (Handle, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}

	h := &exportHandle{done: make(chan struct{})}
	e.pool.SubmitTask(worker.Task{
		ID: int(e.taskSeq.Add(1)),
		Do: func() (any, error) {
			err := e.run(effect, kind, sink, opts)
			e.finish(err)
			h.complete(err)
			return nil, err
		},
	})
	return h, nil
}

// run performs one export. The caller has already claimed the Running state.
func (e *exporterImpl) run(effect *animation.Effect, kind animation.Kind, sink Sink, opts Options) error {
	if kind == animation.KindNone || effect == nil || e.sourceKind != media.SourceImage {
		return ErrNoActiveAnimation
	}
	if err := effect.Validate(); err != nil {
		return err
	}

	width := opts.Width
	if width <= 0 {
		width = e.defaultWidth
	}
	height := opts.Height
	if height <= 0 {
		height = e.defaultHeight
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = e.defaultFPS
	}

	if err := sink.Open(width, height, fps); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkOpen, err)
	}
	defer sink.Close()

	if err := e.target.Allocate(e.nativeWidth, e.nativeHeight); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderTarget, err)
	}
	defer e.target.Release()

	total := effect.TotalDuration()
	frames := int(math.Ceil(float64(total) * float64(fps)))
	step := float32(1) / float32(fps)
	aspect := float32(e.nativeWidth) / float32(e.nativeHeight)

	for i := 0; i < frames; i++ {
		t := float32(i) * step
		pose := effect.Interpolate(t)
		proj, viewMat := view.AnimationMatrices(pose, aspect)

		rendered, err := e.target.RenderFrame(proj, viewMat)
		if err != nil {
			return fmt.Errorf("export: rendering frame %d failed: %w", i, err)
		}

		frame := rendered
		if rendered.Bounds().Dx() != width || rendered.Bounds().Dy() != height {
			frame = scaleFrame(rendered, width, height)
		}
		if err := sink.WriteFrame(frame); err != nil {
			return fmt.Errorf("export: writing frame %d failed: %w", i, err)
		}
	}
	return nil
}

// exportHandle is the implementation of the Handle interface.
type exportHandle struct {
	done chan struct{}
	mu   sync.Mutex
	err  error
}

var _ Handle = &exportHandle{}

func (h *exportHandle) complete(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

func (h *exportHandle) Done() <-chan struct{} {
	return h.done
}

func (h *exportHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *exportHandle) Await() error {
	<-h.done
	return h.Err()
}

// Package app assembles the window, renderer, view state, animation playback
// and exporter into the interactive panorama viewer.
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/cuixing158/panoview/common"
	"github.com/cuixing158/panoview/config"
	"github.com/cuixing158/panoview/viewer/animation"
	"github.com/cuixing158/panoview/viewer/export"
	"github.com/cuixing158/panoview/viewer/media"
	"github.com/cuixing158/panoview/viewer/profiler"
	"github.com/cuixing158/panoview/viewer/render"
	"github.com/cuixing158/panoview/viewer/renderer"
	"github.com/cuixing158/panoview/viewer/view"
	"github.com/cuixing158/panoview/viewer/window"
)

// App is the top-level panorama viewer. Create one with NewApp and drive it
// with Run, which blocks until the window is closed.
type App interface {
	// Run enters the window message loop and renders until the window closes.
	// Resources are released before Run returns.
	//
	// Returns:
	//   - error: error if shutdown cleanup fails
	Run() error
}

// appImpl is the implementation of the App interface.
type appImpl struct {
	cfg        config.Config
	sourceKind media.SourceKind

	win      window.Window
	renderer renderer.Renderer
	state    view.State
	orch     render.Orchestrator
	exporter export.Exporter
	video    media.FrameSource
	prof     *profiler.Profiler

	ffmpegPath      string
	profileInterval time.Duration

	lastFrame    time.Time
	exportHandle export.Handle
}

var _ App = &appImpl{}

// NewApp creates the viewer for a panorama source. The source is classified
// by extension: still images are decoded up front, videos are streamed frame
// by frame during rendering.
//
// Parameters:
//   - cfg: viewer configuration
//   - sourcePath: path to the equirectangular image or video
//   - options: functional options to configure the app
//
// Returns:
//   - App: the assembled viewer
//   - error: error if the source, window or GPU setup fails
func NewApp(cfg config.Config, sourcePath string, options ...AppOption) (App, error) {
	kind, err := media.Classify(sourcePath)
	if err != nil {
		return nil, err
	}

	a := &appImpl{
		cfg:        cfg,
		sourceKind: kind,
	}
	for _, opt := range options {
		opt(a)
	}

	a.win = window.NewWindow(
		window.WithTitle(cfg.Title),
		window.WithWidth(cfg.Width),
		window.WithHeight(cfg.Height),
	)

	surface := a.win.SurfaceDescriptor()
	if surface == nil {
		return nil, fmt.Errorf("app: window surface is unavailable")
	}
	a.renderer, err = renderer.NewRenderer(surface, a.win.Width(), a.win.Height(),
		renderer.WithVSync(cfg.VSync),
	)
	if err != nil {
		return nil, err
	}

	switch kind {
	case media.SourceImage:
		frame, err := media.LoadImage(sourcePath)
		if err != nil {
			return nil, err
		}
		if err := a.renderer.UploadFrame(frame); err != nil {
			return nil, err
		}
	case media.SourceVideo:
		var videoOpts []media.VideoOption
		if a.ffmpegPath != "" {
			videoOpts = append(videoOpts, media.WithFFmpegPath(a.ffmpegPath))
		}
		a.video, err = media.OpenVideo(sourcePath, videoOpts...)
		if err != nil {
			return nil, err
		}
	}

	a.state = view.NewState(
		view.WithSensitivity(cfg.Sensitivity),
		view.WithZoomSpeed(cfg.ZoomSpeed),
	)
	a.orch = render.NewOrchestrator(a.state)
	a.exporter = export.NewExporter(a.renderer.NewOffscreenTarget(),
		export.WithNativeSize(a.win.Width(), a.win.Height()),
		export.WithSourceKind(kind),
		export.WithDefaultOutput(cfg.Export.Width, cfg.Export.Height, cfg.Export.FPS),
	)

	if cfg.Profile {
		a.prof = profiler.NewProfiler(a.profileInterval)
	}

	a.wireInput()
	return a, nil
}

// wireInput connects window events to the view state and playback controls.
func (a *appImpl) wireInput() {
	a.win.SetMouseDownCallback(a.state.DragStart)
	a.win.SetMouseMoveCallback(a.state.DragMove)
	a.win.SetMouseUpCallback(func(x, y float64) { a.state.DragEnd() })
	a.win.SetScrollCallback(a.state.Scroll)
	a.win.SetResizeCallback(a.renderer.Configure)
	a.win.SetKeyDownCallback(a.onKeyDown)
}

func (a *appImpl) Run() error {
	a.lastFrame = time.Now()
	a.win.SetUpdateCallback(a.frame)
	a.win.ProcessMessages()

	if a.video != nil {
		if err := a.video.Close(); err != nil {
			log.Printf("[App] closing video source: %v", err)
		}
	}
	a.renderer.Release()
	return a.win.Close()
}

// frame renders one frame: advance clocks, stream the next video frame if
// the source is a video, then draw with whichever camera is active.
func (a *appImpl) frame() {
	now := time.Now()
	dt := float32(now.Sub(a.lastFrame).Seconds())
	a.lastFrame = now

	a.pollHeldKeys()
	a.pollExport()

	if a.video != nil {
		frame, err := a.video.NextFrame()
		if err != nil {
			log.Printf("[App] video frame: %v", err)
		} else if err := a.renderer.UploadFrame(frame); err != nil {
			log.Printf("[App] uploading video frame: %v", err)
		}
	}

	a.orch.Advance(dt)

	aspect := float32(a.win.Width()) / float32(a.win.Height())
	proj, viewMat := a.orch.Camera(aspect)
	if err := a.renderer.RenderFrame(proj, viewMat); err != nil {
		log.Printf("[App] rendering frame: %v", err)
	}

	if a.prof != nil {
		a.prof.Tick()
	}
}

// pollHeldKeys applies continuous look nudges for held WASD keys.
func (a *appImpl) pollHeldKeys() {
	step := a.cfg.NudgeStep
	if a.win.KeyPressed(common.KeyW) {
		a.state.Nudge(0, step)
	}
	if a.win.KeyPressed(common.KeyS) {
		a.state.Nudge(0, -step)
	}
	if a.win.KeyPressed(common.KeyA) {
		a.state.Nudge(-step, 0)
	}
	if a.win.KeyPressed(common.KeyD) {
		a.state.Nudge(step, 0)
	}
}

// pollExport reports a finished background export, if any.
func (a *appImpl) pollExport() {
	if a.exportHandle == nil {
		return
	}
	select {
	case <-a.exportHandle.Done():
		if err := a.exportHandle.Err(); err != nil {
			log.Printf("[App] background export failed: %v", err)
		} else {
			log.Printf("[App] background export finished: %s", a.cfg.Export.Output)
		}
		a.exportHandle = nil
	default:
	}
}

func (a *appImpl) onKeyDown(keyCode uint32) {
	switch keyCode {
	case common.Key1:
		a.orch.SetMode(view.ModePerspective)
	case common.Key2:
		a.orch.SetMode(view.ModeLittlePlanet)
	case common.Key3:
		a.orch.SetMode(view.ModeCrystalBall)
	case common.KeyF1:
		a.play(animation.KindRotate)
	case common.KeyF2:
		a.play(animation.KindSwipe)
	case common.KeyF3:
		a.play(animation.KindSwipeRotate)
	case common.KeyP:
		a.exportSync()
	case common.KeyO:
		a.exportBackground()
	}
}

// play starts a preset camera animation. Animations only run over still
// panoramas; a streaming video already moves on its own.
func (a *appImpl) play(kind animation.Kind) {
	if a.sourceKind != media.SourceImage {
		log.Printf("[App] animations are unavailable for video sources")
		return
	}
	if err := a.orch.Play(kind); err != nil {
		log.Printf("[App] playing %s: %v", kind, err)
		return
	}
	log.Printf("[App] playing %s animation", kind)
}

func (a *appImpl) newSink() export.Sink {
	var writerOpts []media.WriterOption
	writerOpts = append(writerOpts, media.WithCodec(a.cfg.Export.Codec))
	if a.ffmpegPath != "" {
		writerOpts = append(writerOpts, media.WithWriterFFmpegPath(a.ffmpegPath))
	}
	return media.NewVideoWriter(a.cfg.Export.Output, writerOpts...)
}

// exportSync renders the active animation to the output file, blocking the
// render loop until it completes.
func (a *appImpl) exportSync() {
	log.Printf("[App] exporting to %s", a.cfg.Export.Output)
	err := a.exporter.Export(a.orch.Effect(), a.orch.Kind(), a.newSink(), export.Options{})
	if err != nil {
		log.Printf("[App] export failed: %v", err)
		return
	}
	log.Printf("[App] export finished: %s", a.cfg.Export.Output)
}

// exportBackground renders the active animation on a worker goroutine while
// the viewer keeps running.
func (a *appImpl) exportBackground() {
	handle, err := a.exporter.Start(a.orch.Effect(), a.orch.Kind(), a.newSink(), export.Options{})
	if err != nil {
		log.Printf("[App] export failed to start: %v", err)
		return
	}
	log.Printf("[App] background export started: %s", a.cfg.Export.Output)
	a.exportHandle = handle
}

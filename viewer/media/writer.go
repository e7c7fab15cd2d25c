package media

import (
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// VideoWriter encodes RGBA frames into a video file through an ffmpeg stdin
// pipe. It satisfies the exporter's frame sink contract: Open once,
// WriteFrame per frame, Close to finalize the container.
type VideoWriter struct {
	mu *sync.Mutex

	path       string
	ffmpegPath string
	codec      string

	width, height int

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr strings.Builder
	eg     *errgroup.Group
}

// NewVideoWriter creates a VideoWriter targeting the given output path.
// The encoder process starts on Open, not here.
//
// Parameters:
//   - path: the output video file path
//   - options: functional options to configure the writer
//
// Returns:
//   - *VideoWriter: the configured writer
func NewVideoWriter(path string, options ...WriterOption) *VideoWriter {
	w := &VideoWriter{
		mu:         &sync.Mutex{},
		path:       path,
		ffmpegPath: "ffmpeg",
		codec:      "libx264",
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// Open starts the encoder process for the given frame geometry.
//
// Parameters:
//   - width: frame width in pixels
//   - height: frame height in pixels
//   - fps: output frame rate
//
// Returns:
//   - error: error if the writer is already open or ffmpeg cannot start
func (w *VideoWriter) Open(width, height, fps int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cmd != nil {
		return fmt.Errorf("media: video writer for %s is already open", w.path)
	}

	cmd := exec.Command(w.ffmpegPath,
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%d", fps),
		"-i", "pipe:0",
		"-c:v", w.codec,
		"-pix_fmt", "yuv420p",
		w.path,
	)
	cmd.Stderr = &w.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open encoder pipe for %s: %w", w.path, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start encoder for %s: %w", w.path, err)
	}

	eg := &errgroup.Group{}
	eg.Go(cmd.Wait)

	w.width = width
	w.height = height
	w.cmd = cmd
	w.stdin = stdin
	w.eg = eg
	return nil
}

// WriteFrame appends one RGBA frame to the stream. The frame must match the
// geometry passed to Open.
//
// Parameters:
//   - frame: the RGBA frame to encode
//
// Returns:
//   - error: error if the writer is closed or the pipe write fails
func (w *VideoWriter) WriteFrame(frame *image.RGBA) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cmd == nil {
		return fmt.Errorf("media: video writer for %s is not open", w.path)
	}

	bounds := frame.Bounds()
	if bounds.Dx() != w.width || bounds.Dy() != w.height {
		return fmt.Errorf("media: frame size %dx%d does not match writer %dx%d",
			bounds.Dx(), bounds.Dy(), w.width, w.height)
	}

	// Fast path: tightly packed pixels can stream out in one write.
	if frame.Stride == w.width*4 {
		if _, err := w.stdin.Write(frame.Pix); err != nil {
			return w.pipeError(err)
		}
		return nil
	}
	for y := 0; y < w.height; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w.width*4]
		if _, err := w.stdin.Write(row); err != nil {
			return w.pipeError(err)
		}
	}
	return nil
}

// Close finishes the stream and waits for the encoder to write the
// container trailer.
//
// Returns:
//   - error: error if the encoder exited with a failure
func (w *VideoWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cmd == nil {
		return nil
	}
	w.stdin.Close()
	err := w.eg.Wait()
	w.cmd = nil
	w.stdin = nil
	w.eg = nil
	if err != nil {
		return fmt.Errorf("encoder for %s failed: %w (ffmpeg: %s)",
			w.path, err, strings.TrimSpace(w.stderr.String()))
	}
	return nil
}

// pipeError decorates a pipe write failure with ffmpeg's stderr. Caller
// holds the lock.
func (w *VideoWriter) pipeError(err error) error {
	return fmt.Errorf("failed to write frame to encoder for %s: %w (ffmpeg: %s)",
		w.path, err, strings.TrimSpace(w.stderr.String()))
}

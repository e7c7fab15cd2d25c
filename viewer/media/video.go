package media

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FrameSource delivers decoded RGBA frames from a video in presentation
// order, looping back to the first frame at the end of the stream.
type FrameSource interface {
	// NextFrame returns the next decoded frame. The returned frame's pixel
	// buffer is reused by the source and is only valid until the next call.
	//
	// Returns:
	//   - *Frame: the decoded RGBA frame
	//   - error: error if decoding fails and the stream cannot be restarted
	NextFrame() (*Frame, error)

	// Size returns the video frame dimensions in pixels.
	//
	// Returns:
	//   - int: frame width
	//   - int: frame height
	Size() (int, int)

	// Close stops the decoder process and releases its pipes.
	//
	// Returns:
	//   - error: error if the decoder did not shut down cleanly
	Close() error
}

// ffmpegSource is the implementation of the FrameSource interface. It runs
// ffmpeg as a child process decoding to raw RGBA on stdout and restarts the
// process when the stream ends, which loops the video.
type ffmpegSource struct {
	mu *sync.Mutex

	path          string
	ffmpegPath    string
	ffprobePath   string
	width, height int

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	eg     *errgroup.Group

	frame Frame
}

var _ FrameSource = &ffmpegSource{}

// OpenVideo probes a video's dimensions and starts a looping RGBA decoder
// for it.
//
// Parameters:
//   - path: the video file path
//   - options: functional options to configure the source
//
// Returns:
//   - FrameSource: the looping frame source
//   - error: error if probing or starting the decoder fails
func OpenVideo(path string, options ...VideoOption) (FrameSource, error) {
	s := &ffmpegSource{
		mu:          &sync.Mutex{},
		path:        path,
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
	}
	for _, opt := range options {
		opt(s)
	}

	width, height, err := s.probe()
	if err != nil {
		return nil, err
	}
	s.width = width
	s.height = height
	s.frame = Frame{
		Pixels: make([]byte, width*height*4),
		Width:  width,
		Height: height,
	}

	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

// probe reads the first video stream's dimensions via ffprobe.
func (s *ffmpegSource) probe() (int, int, error) {
	out, err := exec.Command(s.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		s.path,
	).Output()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to probe video %s: %w", s.path, err)
	}

	var width, height int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%d,%d", &width, &height); err != nil {
		return 0, 0, fmt.Errorf("unexpected ffprobe output %q for %s: %w", out, s.path, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid video dimensions %dx%d for %s", width, height, s.path)
	}
	return width, height, nil
}

// start launches the ffmpeg decoder process. Caller must not hold the lock
// across a concurrent NextFrame; the source is used from the render loop
// only.
func (s *ffmpegSource) start() error {
	cmd := exec.Command(s.ffmpegPath,
		"-v", "error",
		"-i", s.path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-vf", "vflip",
		"pipe:1",
	)
	s.stderr.Reset()
	cmd.Stderr = &s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open decoder pipe for %s: %w", s.path, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start decoder for %s: %w", s.path, err)
	}

	eg := &errgroup.Group{}
	eg.Go(cmd.Wait)

	s.cmd = cmd
	s.stdout = stdout
	s.eg = eg
	return nil
}

// stop tears down the current decoder process, ignoring its exit status.
func (s *ffmpegSource) stop() {
	if s.cmd == nil {
		return
	}
	s.stdout.Close()
	s.cmd.Process.Kill()
	s.eg.Wait()
	s.cmd = nil
	s.stdout = nil
	s.eg = nil
}

func (s *ffmpegSource) NextFrame() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil {
		return nil, fmt.Errorf("media: video source %s is closed", s.path)
	}

	if err := s.readFrame(); err != nil {
		// End of stream: restart the decoder to loop back to frame 0.
		s.stop()
		if startErr := s.start(); startErr != nil {
			return nil, startErr
		}
		if err := s.readFrame(); err != nil {
			s.stop()
			return nil, fmt.Errorf("failed to decode video %s after restart: %w (ffmpeg: %s)",
				s.path, err, strings.TrimSpace(s.stderr.String()))
		}
	}
	return &s.frame, nil
}

// readFrame fills the reusable frame buffer with the next raw RGBA frame.
func (s *ffmpegSource) readFrame() error {
	_, err := io.ReadFull(s.stdout, s.frame.Pixels)
	return err
}

func (s *ffmpegSource) Size() (int, int) {
	return s.width, s.height
}

func (s *ffmpegSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
	return nil
}

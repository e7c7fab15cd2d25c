package app

import "time"

// AppOption is a functional option for configuring an App.
type AppOption func(*appImpl)

// WithFFmpegPath overrides the ffmpeg binary used for video decoding and
// export encoding.
//
// Parameters:
//   - path: path to the ffmpeg executable
//
// Returns:
//   - AppOption: option function to apply
func WithFFmpegPath(path string) AppOption {
	return func(a *appImpl) {
		a.ffmpegPath = path
	}
}

// WithProfileInterval sets how often the profiler logs when profiling is
// enabled.
//
// Parameters:
//   - interval: logging interval
//
// Returns:
//   - AppOption: option function to apply
func WithProfileInterval(interval time.Duration) AppOption {
	return func(a *appImpl) {
		a.profileInterval = interval
	}
}

package media

// VideoOption is a functional option for configuring a video FrameSource.
type VideoOption func(*ffmpegSource)

// WithFFmpegPath sets the ffmpeg binary used for decoding.
//
// Parameters:
//   - path: path to the ffmpeg executable
//
// Returns:
//   - VideoOption: functional option to set the decoder binary
func WithFFmpegPath(path string) VideoOption {
	return func(s *ffmpegSource) {
		s.ffmpegPath = path
	}
}

// WithFFprobePath sets the ffprobe binary used to read video dimensions.
//
// Parameters:
//   - path: path to the ffprobe executable
//
// Returns:
//   - VideoOption: functional option to set the probe binary
func WithFFprobePath(path string) VideoOption {
	return func(s *ffmpegSource) {
		s.ffprobePath = path
	}
}

// WriterOption is a functional option for configuring a VideoWriter.
type WriterOption func(*VideoWriter)

// WithCodec sets the output video codec.
//
// Parameters:
//   - codec: ffmpeg codec name (e.g. "libx264")
//
// Returns:
//   - WriterOption: functional option to set the codec
func WithCodec(codec string) WriterOption {
	return func(w *VideoWriter) {
		w.codec = codec
	}
}

// WithWriterFFmpegPath sets the ffmpeg binary used for encoding.
//
// Parameters:
//   - path: path to the ffmpeg executable
//
// Returns:
//   - WriterOption: functional option to set the encoder binary
func WithWriterFFmpegPath(path string) WriterOption {
	return func(w *VideoWriter) {
		w.ffmpegPath = path
	}
}

package view

// StateOption is a functional option for configuring a view State.
type StateOption func(*viewStateImpl)

// WithMode sets the initial view mode.
//
// Parameters:
//   - mode: the mode to start in
//
// Returns:
//   - StateOption: functional option to set the mode
func WithMode(mode Mode) StateOption {
	return func(s *viewStateImpl) {
		s.mode = mode
	}
}

// WithSensitivity sets the mouse drag sensitivity.
//
// Parameters:
//   - sensitivity: degrees of rotation per pixel of cursor movement
//
// Returns:
//   - StateOption: functional option to set the drag sensitivity
func WithSensitivity(sensitivity float32) StateOption {
	return func(s *viewStateImpl) {
		s.sensitivity = sensitivity
	}
}

// WithZoomSpeed sets the scroll zoom speed.
//
// Parameters:
//   - speed: degrees of fov per scroll notch
//
// Returns:
//   - StateOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) StateOption {
	return func(s *viewStateImpl) {
		s.zoomSpeed = speed
	}
}

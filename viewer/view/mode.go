package view

// Mode selects how the camera is placed relative to the panorama sphere.
type Mode int

const (
	// ModePerspective places the camera at the sphere center looking outward.
	ModePerspective Mode = iota

	// ModeLittlePlanet places the camera on the sphere surface looking back
	// at the center, producing the stereographic "tiny planet" look when the
	// pitch points at a pole.
	ModeLittlePlanet

	// ModeCrystalBall places the camera outside the sphere at 1.5x the
	// radius, looking at the center.
	ModeCrystalBall
)

// String returns a human-readable mode name for logging.
//
// Returns:
//   - string: the mode name
func (m Mode) String() string {
	switch m {
	case ModePerspective:
		return "Perspective"
	case ModeLittlePlanet:
		return "LittlePlanet"
	case ModeCrystalBall:
		return "CrystalBall"
	default:
		return "Unknown"
	}
}

// Defaults returns the orientation a mode starts from when activated.
//
// Returns:
//   - pitch: initial pitch in degrees
//   - yaw: initial yaw in degrees
//   - fov: initial vertical field of view in degrees
func (m Mode) Defaults() (pitch, yaw, fov float32) {
	switch m {
	case ModeLittlePlanet:
		return 90, 0, 120
	case ModeCrystalBall:
		return 0, 0, 85
	default:
		return 0, 0, 60
	}
}

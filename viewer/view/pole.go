package view

import "math"

// pitchEpsilon is the float32 machine epsilon (distance from 1.0 to the next
// representable float32). Used to exclude pitches that merely touch a pole.
var pitchEpsilon = math.Nextafter32(1, 2) - 1

// HasPoleCrossing reports whether a pitch change from prevPitch to pitch
// passed through a pole of the sphere (90 + k*180 degrees for integer k).
// The order of the arguments does not matter, and a pitch that lands exactly
// on a pole does not count as a crossing; only the open interval between the
// two pitches is tested.
//
// The orbiting view modes use this to flip the camera up vector once per
// pole passage so the panorama does not appear mirrored after crossing.
//
// Parameters:
//   - prevPitch: pitch in degrees before the change
//   - pitch: pitch in degrees after the change
//
// Returns:
//   - bool: true if a pole lies strictly between the two pitches
func HasPoleCrossing(prevPitch, pitch float32) bool {
	lower, upper := prevPitch, pitch
	if lower > upper {
		lower, upper = upper, lower
	}

	// Smallest pole candidate at or above the lower bound.
	candidate := 90 + float32(math.Ceil(float64(lower-90)/180))*180

	return candidate > lower+pitchEpsilon && candidate < upper-pitchEpsilon
}

package renderer

import (
	"encoding/binary"
	"math"
)

// vertexStride is the interleaved vertex size in bytes: vec3 position plus
// vec2 texture coordinate.
const vertexStride = 20

// buildSphere tessellates a sphere into interleaved position+uv vertices and
// triangle indices. The panorama wraps once around the equator in u, with
// v=0 at the bottom pole and v=1 at the top, matching frames that arrive
// bottom row first. Yaw 0 (+Z) maps to the left edge of the panorama.
//
// Parameters:
//   - slices: longitudinal subdivisions (around the equator)
//   - stacks: latitudinal subdivisions (pole to pole)
//   - radius: sphere radius
//
// Returns:
//   - []float32: interleaved vertex data (x, y, z, u, v)
//   - []uint32: triangle list indices
func buildSphere(slices, stacks int, radius float32) ([]float32, []uint32) {
	vertices := make([]float32, 0, (stacks+1)*(slices+1)*5)
	for i := 0; i <= stacks; i++ {
		phi := math.Pi * (float64(i)/float64(stacks) - 0.5)
		y := math.Sin(phi)
		ring := math.Cos(phi)
		v := float32(i) / float32(stacks)
		for j := 0; j <= slices; j++ {
			theta := 2 * math.Pi * float64(j) / float64(slices)
			x := ring * math.Sin(theta)
			z := ring * math.Cos(theta)
			u := float32(j) / float32(slices)
			vertices = append(vertices,
				float32(x)*radius, float32(y)*radius, float32(z)*radius, u, v)
		}
	}

	indices := make([]uint32, 0, stacks*slices*6)
	ringStride := uint32(slices + 1)
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			a := uint32(i)*ringStride + uint32(j)
			b := a + ringStride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return vertices, indices
}

// floatBytes serializes float32 values into a little-endian byte buffer
// ready for GPU upload.
func floatBytes(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(v))
	}
	return buf
}

// uint32Bytes serializes uint32 values into a little-endian byte buffer
// ready for GPU upload.
func uint32Bytes(values []uint32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], v)
	}
	return buf
}

package renderer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSphereGeometry(t *testing.T) {
	t.Parallel()

	slices, stacks := 50, 50
	vertices, indices := buildSphere(slices, stacks, 1)

	wantVertices := (slices + 1) * (stacks + 1)
	require.Len(t, vertices, wantVertices*5)
	require.Len(t, indices, slices*stacks*6)

	for i := 0; i < wantVertices; i++ {
		x := float64(vertices[i*5])
		y := float64(vertices[i*5+1])
		z := float64(vertices[i*5+2])
		u := vertices[i*5+3]
		v := vertices[i*5+4]

		// Every vertex sits on the unit sphere.
		assert.InDelta(t, 1, math.Sqrt(x*x+y*y+z*z), 1e-5)
		assert.GreaterOrEqual(t, u, float32(0))
		assert.LessOrEqual(t, u, float32(1))
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}

	// Indices stay in range.
	for _, idx := range indices {
		assert.Less(t, idx, uint32(wantVertices))
	}

	// The first vertex is the bottom pole with v=0; the last is the top
	// pole with v=1.
	assert.InDelta(t, -1, vertices[1], 1e-5)
	assert.Equal(t, float32(0), vertices[4])
	last := (wantVertices - 1) * 5
	assert.InDelta(t, 1, vertices[last+1], 1e-5)
	assert.Equal(t, float32(1), vertices[last+4])
}

func TestBuildSphereRadius(t *testing.T) {
	t.Parallel()

	vertices, _ := buildSphere(8, 8, 2.5)
	for i := 0; i < len(vertices); i += 5 {
		px := float64(vertices[i])
		py := float64(vertices[i+1])
		pz := float64(vertices[i+2])
		assert.InDelta(t, 2.5, math.Sqrt(px*px+py*py+pz*pz), 1e-5)
	}
}

func TestByteSerialization(t *testing.T) {
	t.Parallel()

	fb := floatBytes([]float32{1, 0.5})
	require.Len(t, fb, 8)
	// 1.0 is 0x3f800000 little-endian.
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, fb[:4])

	ib := uint32Bytes([]uint32{1, 258})
	require.Len(t, ib, 8)
	assert.Equal(t, []byte{1, 0, 0, 0}, ib[:4])
	assert.Equal(t, []byte{2, 1, 0, 0}, ib[4:])
}

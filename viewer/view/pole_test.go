package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPoleCrossing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prevPitch float32
		pitch     float32
		want      bool
	}{
		{"crosses north pole", 80, 100, true},
		{"order independent", 100, 80, true},
		{"within front hemisphere", 0, 89, false},
		{"zero width range", 90, 90, false},
		{"starts exactly on pole", 90, 95, false},
		{"ends exactly on pole", 85, 90, false},
		{"between poles", 100, 260, false},
		{"crosses inverted pole", 100, 280, true},
		{"negative pitch crossing", -100, -80, true},
		{"negative without crossing", -80, -10, false},
		{"beyond full turn no pole", 440, 448, false},
		{"beyond full turn crossing", 440, 460, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HasPoleCrossing(tt.prevPitch, tt.pitch))
		})
	}
}

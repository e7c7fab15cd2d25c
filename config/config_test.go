package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "panoview", cfg.Title)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, float32(0.2), cfg.Sensitivity)
	assert.Equal(t, float32(4), cfg.ZoomSpeed)
	assert.Equal(t, float32(0.5), cfg.NudgeStep)
	assert.True(t, cfg.VSync)
	assert.False(t, cfg.Profile)
	assert.Equal(t, "out.mp4", cfg.Export.Output)
	assert.Equal(t, 1920, cfg.Export.Width)
	assert.Equal(t, 1080, cfg.Export.Height)
	assert.Equal(t, 30, cfg.Export.FPS)
	assert.Equal(t, "libx264", cfg.Export.Codec)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "viewer.yaml")
	doc := `
title: backyard tour
sensitivity: 0.35
vsync: false
export:
  fps: 60
  codec: libx265
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "backyard tour", cfg.Title)
	assert.Equal(t, float32(0.35), cfg.Sensitivity)
	assert.False(t, cfg.VSync)
	assert.Equal(t, 60, cfg.Export.FPS)
	assert.Equal(t, "libx265", cfg.Export.Codec)

	// Untouched fields keep their defaults.
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, float32(4), cfg.ZoomSpeed)
	assert.Equal(t, "out.mp4", cfg.Export.Output)
	assert.Equal(t, 1920, cfg.Export.Width)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

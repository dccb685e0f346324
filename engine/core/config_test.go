package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigOverrides(t *testing.T) {
	data := []byte(`
name = "skeleton viewer"

[log]
level = "debug"

[assets]
root = "/srv/assets"
watch = false
preload = ["Props/Crate.model"]

[animation]
model = "Character01/Character01.model"
animation_sets = ["Character01/Walk.animset", "Character01/Run.animset"]
clip = 1
looping = false
speed = 0.5

[loop]
target_fps = 30
max_frames = 120

[renderer]
debug_skeleton = true
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, "skeleton viewer", cfg.Name)
	assert.Equal(t, DebugLevel, ParseLogLevel(cfg.Log.Level))
	assert.Equal(t, "/srv/assets", cfg.Assets.Root)
	// untouched keys keep their defaults
	assert.Equal(t, "models", cfg.Assets.Models)
	assert.False(t, cfg.Assets.Watch)
	assert.Equal(t, []string{"Props/Crate.model"}, cfg.Assets.Preload)
	assert.Equal(t, 4, cfg.Assets.Workers)
	assert.Equal(t, "Character01/Character01.model", cfg.Animation.Model)
	assert.Len(t, cfg.Animation.AnimationSets, 2)
	assert.Equal(t, 1, cfg.Animation.Clip)
	assert.False(t, cfg.Animation.Looping)
	assert.Equal(t, float32(0.5), cfg.Animation.Speed)
	assert.Equal(t, float64(30), cfg.Loop.TargetFPS)
	assert.Equal(t, uint64(120), cfg.Loop.MaxFrames)
	assert.True(t, cfg.Renderer.DebugSkeleton)
	assert.Equal(t, "headless", cfg.Renderer.Backend)
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"fps":   "[loop]\ntarget_fps = 0\n",
		"debug": "[renderer]\ndebug_vertex_count = -1\n",
		"jobs":  "[assets]\nworkers = 0\n",
		"speed": "[animation]\nspeed = -1.0\n",
		"clip":  "[animation]\nclip = -2\n",
		"toml":  "name = \n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"from file\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from file", cfg.Name)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParseLogLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, WarnLevel, ParseLogLevel(" WARN "))
	assert.Equal(t, InfoLevel, ParseLogLevel("chatty"))
}

package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the engine configuration, read from a TOML file.
type Config struct {
	Name      string          `toml:"name"`
	Log       LogConfig       `toml:"log"`
	Assets    AssetsConfig    `toml:"assets"`
	Animation AnimationConfig `toml:"animation"`
	Loop      LoopConfig      `toml:"loop"`
	Renderer  RendererConfig  `toml:"renderer"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type AssetsConfig struct {
	// Root is the asset directory every other path is relative to.
	Root string `toml:"root"`
	// Models is the model directory, relative to Root.
	Models string `toml:"models"`
	// Textures is the texture directory, relative to Root.
	Textures string `toml:"textures"`
	// Watch keeps the asset index current with filesystem notifications.
	Watch bool `toml:"watch"`
	// Preload lists models, relative to Models, loaded on start.
	Preload []string `toml:"preload"`
	// Workers is the size of the background loading pool.
	Workers int `toml:"workers"`
}

type AnimationConfig struct {
	// Model is the model the testbed loads, relative to the model directory.
	Model string `toml:"model"`
	// AnimationSets are extra .animset files attached to Model.
	AnimationSets []string `toml:"animation_sets"`
	// Clip is the clip index played on start.
	Clip    int     `toml:"clip"`
	Looping bool    `toml:"looping"`
	Speed   float32 `toml:"speed"`
}

type LoopConfig struct {
	TargetFPS float64 `toml:"target_fps"`
	// MaxFrames stops the loop after that many frames, 0 runs until cancelled.
	MaxFrames uint64 `toml:"max_frames"`
}

type RendererConfig struct {
	// Backend names the renderer backend, see renderer.ParseRendererType.
	Backend string `toml:"backend"`
	// DebugSkeleton draws the skeleton of animated models as lines.
	DebugSkeleton bool `toml:"debug_skeleton"`
	// DebugVertexCount caps the debug line vertices of one frame.
	DebugVertexCount int `toml:"debug_vertex_count"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Name: "Marionette",
		Log: LogConfig{
			Level: "info",
		},
		Assets: AssetsConfig{
			Root:     "assets",
			Models:   "models",
			Textures: "textures",
			Watch:    true,
			Workers:  4,
		},
		Animation: AnimationConfig{
			Looping: true,
			Speed:   1.0,
		},
		Loop: LoopConfig{
			TargetFPS: 60,
		},
		Renderer: RendererConfig{
			Backend:          "headless",
			DebugVertexCount: 65536,
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML bytes on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Loop.TargetFPS <= 0 {
		return fmt.Errorf("loop.target_fps must be > 0, got %v", c.Loop.TargetFPS)
	}
	if c.Animation.Speed < 0 {
		return fmt.Errorf("animation.speed must be >= 0, got %v", c.Animation.Speed)
	}
	if c.Animation.Clip < 0 {
		return fmt.Errorf("animation.clip must be >= 0, got %d", c.Animation.Clip)
	}
	if c.Assets.Workers < 1 {
		return fmt.Errorf("assets.workers must be >= 1, got %d", c.Assets.Workers)
	}
	if c.Renderer.DebugVertexCount < 0 {
		return fmt.Errorf("renderer.debug_vertex_count must be >= 0, got %d", c.Renderer.DebugVertexCount)
	}
	return nil
}

package engine

import (
	"github.com/spaghettifunk/marionette/engine/core"
)

type ApplicationConfig struct {
	// The application name, handed to the renderer backend.
	Name     string
	LogLevel core.LogLevel
	// Config carries the asset, animation, loop and renderer settings.
	Config *core.Config
}

// NewApplicationConfig derives the application settings from an engine
// configuration.
func NewApplicationConfig(config *core.Config) *ApplicationConfig {
	return &ApplicationConfig{
		Name:     config.Name,
		LogLevel: core.ParseLogLevel(config.Log.Level),
		Config:   config,
	}
}

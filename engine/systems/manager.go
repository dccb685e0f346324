package systems

import (
	"errors"
	"path/filepath"

	"github.com/spaghettifunk/marionette/engine/assets"
	"github.com/spaghettifunk/marionette/engine/core"
)

// SystemManager owns the process wide systems and hands them to whoever
// needs them. There is one per engine.
type SystemManager struct {
	assetManager  *assets.AssetManager
	textureSystem *TextureSystem
	modelSystem   *ModelSystem
	jobSystem     *JobSystem
}

func NewSystemManager(config *core.Config) (*SystemManager, error) {
	am, err := assets.NewAssetManager(assets.AssetManagerConfig{
		Root:  config.Assets.Root,
		Watch: config.Assets.Watch,
	})
	if err != nil {
		return nil, err
	}
	if err := am.Initialize(); err != nil {
		return nil, err
	}

	ts, err := NewTextureSystem(&TextureSystemConfig{
		RootDirectory: filepath.Join(config.Assets.Root, config.Assets.Textures),
	})
	if err != nil {
		return nil, err
	}
	ms, err := NewModelSystem(&ModelSystemConfig{
		RootDirectory: filepath.Join(config.Assets.Root, config.Assets.Models),
	}, am)
	if err != nil {
		return nil, err
	}

	js, err := NewJobSystem(config.Assets.Workers, config.Assets.Workers*4)
	if err != nil {
		return nil, err
	}

	return &SystemManager{
		assetManager:  am,
		textureSystem: ts,
		modelSystem:   ms,
		jobSystem:     js,
	}, nil
}

func (sm *SystemManager) AssetManager() *assets.AssetManager {
	return sm.assetManager
}

func (sm *SystemManager) TextureSystem() *TextureSystem {
	return sm.textureSystem
}

func (sm *SystemManager) ModelSystem() *ModelSystem {
	return sm.modelSystem
}

func (sm *SystemManager) JobSystem() *JobSystem {
	return sm.jobSystem
}

// Shutdown stops the systems in reverse creation order and reports every
// failure.
func (sm *SystemManager) Shutdown() error {
	return errors.Join(
		sm.jobSystem.Shutdown(),
		sm.modelSystem.Shutdown(),
		sm.textureSystem.Shutdown(),
		sm.assetManager.Close(),
	)
}

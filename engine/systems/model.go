package systems

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spaghettifunk/marionette/engine/assets"
	"github.com/spaghettifunk/marionette/engine/assets/loaders"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/resources"
)

type ModelSystemConfig struct {
	/** @brief The directory model paths are resolved against. */
	RootDirectory string
}

/**
 * @brief Loads every model once and hands out its id. Models are cached by
 * the hash of their path and never evicted before Shutdown.
 */
type ModelSystem struct {
	Config *ModelSystemConfig

	// guards the tables, change callbacks arrive on the watcher goroutine
	mutex       sync.RWMutex
	models      map[resources.ModelID]*resources.Model
	sourcePaths map[resources.ModelID]string

	assetManager *assets.AssetManager
	isShutdown   bool
}

func NewModelSystem(config *ModelSystemConfig, am *assets.AssetManager) (*ModelSystem, error) {
	if am == nil {
		return nil, fmt.Errorf("func NewModelSystem - asset manager is required")
	}
	ms := &ModelSystem{
		Config:       config,
		models:       make(map[resources.ModelID]*resources.Model),
		sourcePaths:  make(map[resources.ModelID]string),
		assetManager: am,
	}
	am.OnChange(ms.onAssetChanged)
	return ms, nil
}

// ResolvePath joins path to the root directory. Absolute paths are kept.
func (ms *ModelSystem) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(ms.Config.RootDirectory, path)
}

// GetModelID returns the id the model at path is cached under.
func (ms *ModelSystem) GetModelID(path string) resources.ModelID {
	return resources.ModelID(core.HashString(ms.ResolvePath(path)))
}

/**
 * @brief Loads the model at path, or returns the id of the cached copy.
 * The mesh, material and skeleton files are read, plus an animation set file
 * sharing the base name if there is one. Its clips take the first indices,
 * sets added later with AddAnimation follow them. Missing files leave the matching
 * part of the model empty, malformed ones are logged and skipped.
 */
func (ms *ModelSystem) LoadModel(path string) resources.ModelID {
	id := ms.GetModelID(path)

	ms.mutex.RLock()
	_, exists := ms.models[id]
	ms.mutex.RUnlock()
	if exists {
		return id
	}

	fullPath := ms.ResolvePath(path)
	model := &resources.Model{}
	for _, ext := range []string{
		loaders.ModelExtension,
		loaders.MaterialExtension,
		loaders.SkeletonExtension,
		loaders.AnimationSetExtension,
	} {
		if err := ms.assetManager.Load(loaders.WithExtension(fullPath, ext), model); err != nil {
			core.LogError("failed to load %s: %s", loaders.WithExtension(fullPath, ext), err)
		}
	}
	if len(model.MeshData) == 0 {
		core.LogWarn("model %s has no mesh data", fullPath)
	}

	ms.mutex.Lock()
	ms.models[id] = model
	ms.sourcePaths[id] = fullPath
	ms.mutex.Unlock()

	core.LogInfo("model %s loaded: %d meshes, %d materials, %d clips", fullPath, len(model.MeshData), len(model.MaterialData), len(model.AnimationClips))
	return id
}

/**
 * @brief Loads several models on the job system and waits for all of them.
 * The returned ids follow the order of paths.
 */
func (ms *ModelSystem) LoadModels(paths []string, jobs *JobSystem) []resources.ModelID {
	ids := make([]resources.ModelID, len(paths))
	seen := map[resources.ModelID]bool{}
	var wg sync.WaitGroup
	for i, path := range paths {
		path := path
		ids[i] = ms.GetModelID(path)
		if seen[ids[i]] {
			continue
		}
		seen[ids[i]] = true

		wg.Add(1)
		err := jobs.Submit(JobTask{
			Name: "load " + path,
			OnStart: func() error {
				ms.LoadModel(path)
				return nil
			},
			OnCompletionCallback: wg.Done,
		})
		if err != nil {
			wg.Done()
			core.LogWarn("%s loaded synchronously: %s", path, err)
			ms.LoadModel(path)
		}
	}
	wg.Wait()
	return ids
}

// GetModel returns the cached model, nil when id was never loaded.
func (ms *ModelSystem) GetModel(id resources.ModelID) *resources.Model {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return ms.models[id]
}

// AddAnimation appends the clips of the animation set at path, relative to
// the root directory, to an already loaded model.
func (ms *ModelSystem) AddAnimation(id resources.ModelID, path string) error {
	ms.mutex.RLock()
	model, exists := ms.models[id]
	ms.mutex.RUnlock()
	if !exists {
		return fmt.Errorf("model %d: %w", id, core.ErrModelNotFound)
	}

	fullPath := loaders.WithExtension(ms.ResolvePath(path), loaders.AnimationSetExtension)
	before := len(model.AnimationClips)
	if err := ms.assetManager.Load(fullPath, model); err != nil {
		return err
	}
	core.LogDebug("added %d clips from %s", len(model.AnimationClips)-before, fullPath)
	return nil
}

func (ms *ModelSystem) Count() int {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return len(ms.models)
}

// Shutdown drops every cached model.
func (ms *ModelSystem) Shutdown() error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	if ms.isShutdown {
		return fmt.Errorf("model system: %w", core.ErrAlreadyShutdown)
	}
	ms.isShutdown = true
	clear(ms.models)
	clear(ms.sourcePaths)
	return nil
}

// Models stay immutable once loaded, a change on disk is only reported.
func (ms *ModelSystem) onAssetChanged(event assets.ChangeEvent) {
	if event.Op != assets.ChangeModified {
		return
	}
	base := loaders.WithExtension(event.Path, "")

	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	for _, source := range ms.sourcePaths {
		if loaders.WithExtension(source, "") == base {
			core.LogWarn("%s changed on disk, the cached model is stale until restart", event.Path)
			return
		}
	}
}

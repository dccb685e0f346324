package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/marionette/engine/assets/loaders"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/resources"
)

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

type ChangeOp int

const (
	ChangeCreated ChangeOp = iota
	ChangeModified
	ChangeRemoved
)

func (op ChangeOp) String() string {
	switch op {
	case ChangeCreated:
		return "created"
	case ChangeModified:
		return "modified"
	default:
		return "removed"
	}
}

// ChangeEvent reports a change to an indexed asset on disk.
type ChangeEvent struct {
	Path string
	Type resources.ResourceType
	Op   ChangeOp
}

type AssetManagerConfig struct {
	// Root is the directory indexed at startup.
	Root string
	// Watch keeps the index current with filesystem notifications.
	Watch bool
}

// AssetManager indexes the asset directory by resource type and dispatches
// model file loads to the loader registered for the file extension.
type AssetManager struct {
	config AssetManagerConfig

	assets    map[string]AssetInfo
	loaders   map[resources.ResourceType]Loader
	listeners []func(ChangeEvent)

	mutex sync.RWMutex

	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager(config AssetManagerConfig) (*AssetManager, error) {
	am := &AssetManager{
		config:  config,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[resources.ResourceType]Loader),
		done:    make(chan struct{}),
	}

	am.registerLoader(resources.ResourceTypeModel, loaders.ModelLoader{})
	am.registerLoader(resources.ResourceTypeMaterial, loaders.MaterialLoader{})
	am.registerLoader(resources.ResourceTypeSkeleton, loaders.SkeletonLoader{})
	am.registerLoader(resources.ResourceTypeAnimationSet, loaders.AnimationSetLoader{})

	if config.Watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		am.fsnotify = fsWatch
	}
	return am, nil
}

// Initialize indexes every asset under the root and, when watching, starts
// following changes. A missing root is created.
func (am *AssetManager) Initialize() error {
	if err := os.MkdirAll(am.config.Root, 0o755); err != nil {
		return err
	}
	if err := am.watchRecursive(am.config.Root); err != nil {
		return err
	}
	if am.fsnotify != nil {
		am.wg.Add(1)
		go am.start()
	}
	core.LogDebug("asset manager indexed %d assets under %s", am.Count(), am.config.Root)
	return nil
}

func (am *AssetManager) Root() string {
	return am.config.Root
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// OnChange registers fn to be called for every change to an indexed asset.
// Callbacks run on the watcher goroutine.
func (am *AssetManager) OnChange(fn func(ChangeEvent)) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.listeners = append(am.listeners, fn)
}

// Load reads path into model with the loader registered for its extension.
func (am *AssetManager) Load(path string, model *resources.Model) error {
	loader, err := am.loaderFor(path)
	if err != nil {
		return err
	}
	if err := loader.Load(path, model); err != nil {
		return err
	}

	am.mutex.Lock()
	if asset, exists := am.assets[filepath.Clean(path)]; exists {
		asset.LastLoaded = time.Now()
		am.assets[asset.Path] = asset
	}
	am.mutex.Unlock()
	return nil
}

// Save writes model to path with the loader registered for its extension and
// indexes the file.
func (am *AssetManager) Save(path string, model *resources.Model) error {
	loader, err := am.loaderFor(path)
	if err != nil {
		return err
	}
	if err := loader.Save(path, model); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		am.handleFileEvent(path)
	}
	return nil
}

func (am *AssetManager) loaderFor(path string) (Loader, error) {
	assetType := DetermineAssetType(path)
	loader, exists := am.loaders[assetType]
	if !exists {
		return nil, fmt.Errorf("no loader registered for %s (type %s)", path, assetType)
	}
	return loader, nil
}

// Has reports whether path is in the index.
func (am *AssetManager) Has(path string) bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	_, exists := am.assets[filepath.Clean(path)]
	return exists
}

// List returns the indexed paths of one type, sorted.
func (am *AssetManager) List(assetType resources.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	paths := make([]string, 0)
	for path, asset := range am.assets {
		if asset.Type == assetType {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)
	return paths
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Close stops watching the asset directory.
func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return fmt.Errorf("asset manager: %w", core.ErrAlreadyShutdown)
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.wg.Wait()
	if am.fsnotify != nil {
		return am.fsnotify.Close()
	}
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Op.Has(fsnotify.Create) {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch %s: %s", e.Name, err)
			}
		}
		return
	}

	switch {
	case e.Op.Has(fsnotify.Create):
		if info, ok := am.handleFileEvent(e.Name); ok {
			am.notify(ChangeEvent{Path: info.Path, Type: info.Type, Op: ChangeCreated})
		}
	case e.Op.Has(fsnotify.Write):
		if info, ok := am.handleFileEvent(e.Name); ok {
			am.notify(ChangeEvent{Path: info.Path, Type: info.Type, Op: ChangeModified})
		}
	case e.Op.Has(fsnotify.Remove), e.Op.Has(fsnotify.Rename):
		// Can't stat a deleted path, it may have been a watched directory.
		if info, ok := am.removeAsset(e.Name); ok {
			am.notify(ChangeEvent{Path: info.Path, Type: info.Type, Op: ChangeRemoved})
		}
		_ = am.fsnotify.Remove(e.Name)
	}
}

func (am *AssetManager) notify(event ChangeEvent) {
	am.mutex.RLock()
	listeners := slices.Clone(am.listeners)
	am.mutex.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}

// watchRecursive indexes every file under path and adds its directories to
// the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify != nil {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) (AssetInfo, bool) {
	assetType := DetermineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return AssetInfo{}, false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	info := AssetInfo{
		Path: filepath.Clean(path),
		Type: assetType,
	}
	if previous, exists := am.assets[info.Path]; exists {
		info.LastLoaded = previous.LastLoaded
	}
	am.assets[info.Path] = info
	return info, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) (AssetInfo, bool) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	path = filepath.Clean(path)
	info, exists := am.assets[path]
	delete(am.assets, path)
	return info, exists
}

// DetermineAssetType maps a file extension to the resource it holds.
func DetermineAssetType(path string) resources.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case loaders.ModelExtension:
		return resources.ResourceTypeModel
	case loaders.MaterialExtension:
		return resources.ResourceTypeMaterial
	case loaders.SkeletonExtension:
		return resources.ResourceTypeSkeleton
	case loaders.AnimationSetExtension:
		return resources.ResourceTypeAnimationSet
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return resources.ResourceTypeImage
	default:
		return resources.ResourceTypeNone
	}
}

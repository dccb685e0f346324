package systems

import (
	"path/filepath"

	"github.com/spaghettifunk/marionette/engine/assets/loaders"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/resources"
)

type TextureSystemConfig struct {
	/** @brief The directory texture names are resolved against. */
	RootDirectory string
}

/**
 * @brief Reference counted registry of textures keyed by the hash of their
 * path. A texture is freed when its last holder releases it.
 */
type TextureSystem struct {
	Config *TextureSystemConfig
	// Hashtable for texture lookups.
	RegisteredTextureTable map[resources.TextureID]*resources.Texture

	loader loaders.TextureLoader
}

func NewTextureSystem(config *TextureSystemConfig) (*TextureSystem, error) {
	return &TextureSystem{
		Config:                 config,
		RegisteredTextureTable: make(map[resources.TextureID]*resources.Texture),
	}, nil
}

// ResolvePath returns the file path of a texture name. With useRoot the name
// is relative to the root directory, otherwise it is used as given.
func (ts *TextureSystem) ResolvePath(name string, useRoot bool) string {
	if useRoot && !filepath.IsAbs(name) {
		return filepath.Join(ts.Config.RootDirectory, name)
	}
	return filepath.Clean(name)
}

/**
 * @brief Acquires the texture at path, loading it on first use and taking a
 * reference otherwise. A missing or unreadable image is still registered,
 * with no size, so that the holder can release it like any other.
 *
 * @param path The texture file name.
 * @param useRoot Resolve path against the root directory.
 * @return The texture id, InvalidTextureID for an empty path.
 */
func (ts *TextureSystem) LoadTexture(path string, useRoot bool) resources.TextureID {
	if path == "" {
		return resources.InvalidTextureID
	}

	fullPath := ts.ResolvePath(path, useRoot)
	id := resources.TextureID(core.HashString(fullPath))

	if texture, exists := ts.RegisteredTextureTable[id]; exists {
		texture.ReferenceCount++
		return id
	}

	texture := &resources.Texture{
		ID:             id,
		Name:           path,
		FullPath:       fullPath,
		ReferenceCount: 1,
	}
	info, err := ts.loader.Load(fullPath)
	if err != nil {
		core.LogWarn("failed to load texture %s: %s", fullPath, err)
	} else {
		texture.Width = info.Width
		texture.Height = info.Height
		texture.Format = resources.TextureFormat(info.Format)
	}
	ts.RegisteredTextureTable[id] = texture
	core.LogDebug("texture %s loaded (%dx%d %s)", fullPath, texture.Width, texture.Height, texture.Format)
	return id
}

// GetTexture returns the texture with id, nil when it is not loaded.
func (ts *TextureSystem) GetTexture(id resources.TextureID) *resources.Texture {
	return ts.RegisteredTextureTable[id]
}

// ReleaseTexture drops one reference and frees the texture at zero.
func (ts *TextureSystem) ReleaseTexture(id resources.TextureID) {
	texture, exists := ts.RegisteredTextureTable[id]
	if !exists {
		return
	}
	texture.ReferenceCount--
	if texture.ReferenceCount <= 0 {
		delete(ts.RegisteredTextureTable, id)
		core.LogDebug("texture %s released", texture.FullPath)
	}
}

func (ts *TextureSystem) Count() int {
	return len(ts.RegisteredTextureTable)
}

func (ts *TextureSystem) Shutdown() error {
	if count := len(ts.RegisteredTextureTable); count > 0 {
		core.LogWarn("texture system shutting down with %d textures still referenced", count)
	}
	clear(ts.RegisteredTextureTable)
	return nil
}

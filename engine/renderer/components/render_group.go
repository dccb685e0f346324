package components

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/marionette/engine/animator"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
	"github.com/spaghettifunk/marionette/engine/systems"
)

// Texture slots of a render object, in material file order.
const (
	DiffuseMap = iota
	SpecularMap
	NormalMap
	BumpMap
	TextureSlotCount
)

/**
 * @brief One drawable mesh of a model with its material and the textures
 * acquired for it.
 */
type RenderObject struct {
	MeshIndex int
	Mesh      *resources.Mesh
	Material  resources.Material
	Textures  [TextureSlotCount]resources.TextureID
}

// HasTexture reports whether slot has a texture bound.
func (ro *RenderObject) HasTexture(slot int) bool {
	return ro.Textures[slot] != resources.InvalidTextureID
}

/**
 * @brief The render objects of one model instance. The model is shared with
 * every other group using it, the transform and the animator are not.
 */
type RenderGroup struct {
	ID            string
	ModelID       resources.ModelID
	Transform     *math.Transform
	RenderObjects []RenderObject
	/** @brief Drives skinning when set, nil draws the bind pose. */
	Animator *animator.Animator

	models   *systems.ModelSystem
	textures *systems.TextureSystem
}

func NewRenderGroup(models *systems.ModelSystem, textures *systems.TextureSystem) *RenderGroup {
	return &RenderGroup{
		ID:        core.NewIdentifier(),
		ModelID:   resources.InvalidModelID,
		Transform: math.NewTransformIdentity(),
		models:    models,
		textures:  textures,
	}
}

/**
 * @brief Loads the model at path, relative to the model directory, and
 * creates a render object per mesh. Texture names of the materials are
 * resolved next to the model file.
 */
func (rg *RenderGroup) Initialize(path string) error {
	rg.ModelID = rg.models.LoadModel(path)
	model := rg.models.GetModel(rg.ModelID)
	if model == nil {
		return fmt.Errorf("%s: %w", path, core.ErrModelNotFound)
	}

	modelDirectory := filepath.Dir(rg.models.ResolvePath(path))
	rg.RenderObjects = make([]RenderObject, 0, len(model.MeshData))
	for i := range model.MeshData {
		meshData := &model.MeshData[i]
		ro := RenderObject{
			MeshIndex: i,
			Mesh:      &meshData.Mesh,
			Material:  resources.DefaultMaterial(),
		}
		if meshData.MaterialIndex >= 0 && meshData.MaterialIndex < len(model.MaterialData) {
			materialData := model.MaterialData[meshData.MaterialIndex]
			ro.Material = materialData.Material
			for slot, name := range materialData.TextureNames() {
				if name == "" {
					continue
				}
				if !filepath.IsAbs(name) {
					name = filepath.Join(modelDirectory, name)
				}
				ro.Textures[slot] = rg.textures.LoadTexture(name, false)
			}
		} else {
			core.LogWarn("mesh %d of %s has material index %d of %d, using the default material", i, path, meshData.MaterialIndex, len(model.MaterialData))
		}
		rg.RenderObjects = append(rg.RenderObjects, ro)
	}
	return nil
}

// Model returns the shared model, nil before Initialize.
func (rg *RenderGroup) Model() *resources.Model {
	return rg.models.GetModel(rg.ModelID)
}

// SetAnimator attaches a to the group and binds it to the group's model.
func (rg *RenderGroup) SetAnimator(a *animator.Animator) {
	if a != nil {
		a.Initialize(rg.ModelID)
	}
	rg.Animator = a
}

// Terminate releases every texture the group acquired. The model stays in
// the model system's cache.
func (rg *RenderGroup) Terminate() {
	for i := range rg.RenderObjects {
		for slot, id := range rg.RenderObjects[i].Textures {
			if id != resources.InvalidTextureID {
				rg.textures.ReleaseTexture(id)
				rg.RenderObjects[i].Textures[slot] = resources.InvalidTextureID
			}
		}
	}
	rg.RenderObjects = nil
	rg.Animator = nil
}

package resources

import (
	"github.com/spaghettifunk/marionette/engine/animation"
	"github.com/spaghettifunk/marionette/engine/math"
)

// ModelID identifies a model by the hash of its source path.
type ModelID uint64

// InvalidModelID is never produced by hashing a path the model system accepts.
const InvalidModelID ModelID = 0

/**
 * @brief A named, playable clip spanning a whole skeleton. Each bone has one
 * slot in BoneAnimations; a nil slot means the bone keeps its bind pose.
 */
type AnimationClip struct {
	Name string
	/** @brief The length of the clip in ticks. */
	TickDuration float32
	/** @brief How many ticks elapse per second of playback. */
	TicksPerSecond float32
	BoneAnimations []*animation.Animation
}

// BoneAnimation returns the track set of the bone at index, nil when the bone
// is not animated by this clip.
func (c *AnimationClip) BoneAnimation(index int) *animation.Animation {
	if index < 0 || index >= len(c.BoneAnimations) {
		return nil
	}
	return c.BoneAnimations[index]
}

/** @brief Triangle list geometry of a single sub-mesh. */
type Mesh struct {
	Vertices []math.Vertex
	Indices  []uint32
}

/** @brief Lighting constants of a material. */
type Material struct {
	Emissive  math.Colour
	Ambient   math.Colour
	Diffuse   math.Colour
	Specular  math.Colour
	Shininess float32
}

// DefaultMaterial returns the material used when a file does not override it.
func DefaultMaterial() Material {
	return Material{
		Emissive:  math.ColourBlack,
		Ambient:   math.ColourWhite,
		Diffuse:   math.ColourWhite,
		Specular:  math.ColourWhite,
		Shininess: 10.0,
	}
}

type MeshData struct {
	Mesh          Mesh
	MaterialIndex int
}

/**
 * @brief A material and the names of its four texture maps. An empty name
 * means the slot has no texture.
 */
type MaterialData struct {
	Material        Material
	DiffuseMapName  string
	SpecularMapName string
	NormalMapName   string
	BumpMapName     string
}

// TextureNames returns the four map names in file order: diffuse, specular,
// normal, bump.
func (m *MaterialData) TextureNames() [4]string {
	return [4]string{m.DiffuseMapName, m.SpecularMapName, m.NormalMapName, m.BumpMapName}
}

// SetTextureNames assigns the four map names in file order.
func (m *MaterialData) SetTextureNames(names [4]string) {
	m.DiffuseMapName = names[0]
	m.SpecularMapName = names[1]
	m.NormalMapName = names[2]
	m.BumpMapName = names[3]
}

/**
 * @brief Everything loaded from one set of model files. Only the clip list
 * grows after load.
 */
type Model struct {
	MeshData     []MeshData
	MaterialData []MaterialData
	/** @brief The bone tree, nil when the model is not skinned. */
	Skeleton       *Skeleton
	AnimationClips []AnimationClip
}

// AddAnimationClips appends clips to the model.
func (m *Model) AddAnimationClips(clips ...AnimationClip) {
	m.AnimationClips = append(m.AnimationClips, clips...)
}

// AnimationClip returns the clip at index, nil when out of range.
func (m *Model) AnimationClip(index int) *AnimationClip {
	if index < 0 || index >= len(m.AnimationClips) {
		return nil
	}
	return &m.AnimationClips[index]
}

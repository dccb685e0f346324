package resources

type ResourceType int

/** @brief Resource types known to the asset manager. */
const (
	/** @brief Not an engine asset. */
	ResourceTypeNone ResourceType = iota
	/** @brief Mesh geometry (.model). */
	ResourceTypeModel
	/** @brief Material table (.material). */
	ResourceTypeMaterial
	/** @brief Bone hierarchy (.skeleton). */
	ResourceTypeSkeleton
	/** @brief Animation clips (.animset). */
	ResourceTypeAnimationSet
	/** @brief Texture image. */
	ResourceTypeImage
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeModel:
		return "model"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeSkeleton:
		return "skeleton"
	case ResourceTypeAnimationSet:
		return "animset"
	case ResourceTypeImage:
		return "image"
	default:
		return "none"
	}
}

// TextureID identifies a texture by the hash of its path. 0 is no texture.
type TextureID uint64

const InvalidTextureID TextureID = 0

/**
 * @brief Image format of a texture, taken from the decoder that read it.
 */
type TextureFormat string

/**
 * @brief A texture known to the texture system. Pixel upload is left to the
 * renderer, only the image header is read.
 */
type Texture struct {
	ID       TextureID
	Name     string
	FullPath string
	Width    int
	Height   int
	Format   TextureFormat
	/** @brief Number of holders, the texture is released at 0. */
	ReferenceCount int
}

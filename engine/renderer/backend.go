package renderer

import (
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// MaxBoneCount is the capacity of the bone buffer of one draw.
const MaxBoneCount = 256

// BoneBuffer receives the skinning matrices of one draw, already transposed
// for upload.
type BoneBuffer interface {
	UploadBones(matrices []math.Mat4) error
}

// DrawCall is everything the GPU needs to draw one render object.
type DrawCall struct {
	GroupID  string
	World    math.Mat4
	Mesh     *resources.Mesh
	Material resources.Material
	Textures [4]resources.TextureID
	// BoneCount is the number of matrices uploaded for the draw, 0 when the
	// mesh is drawn unskinned.
	BoneCount int
}

// DrawSubmitter issues draw calls.
type DrawSubmitter interface {
	Draw(call DrawCall) error
}

// Backend is the device side of the renderer. Device, swap chain, pipeline
// and shader management stay behind it.
type Backend interface {
	Initialize(appName string) error
	Shutdown() error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	BoneBuffer
	DrawSubmitter
}

// Package importer converts glTF 2.0 scenes into engine models.
package importer

import (
	"net/url"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

type Options struct {
	// Scale multiplies every position and translation of the scene.
	Scale float32
}

func DefaultOptions() Options {
	return Options{Scale: 1}
}

type importer struct {
	doc     *gltf.Document
	opts    Options
	parents []int
	// skin joint node index to bone index
	nodeToBone map[int]int
	boneNodes  []int
	// ancestors of the root joint that are not joints themselves
	rootParentWorld mgl32.Mat4

	model           *resources.Model
	defaultMaterial int
}

// ImportFile reads a .gltf or .glb file.
func ImportFile(path string, opts Options) (*resources.Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	model, err := Import(doc, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to import %s", path)
	}
	return model, nil
}

/**
 * @brief Converts a decoded document. Triangle primitives become meshes,
 * the first skin becomes the skeleton and every animation becomes a clip
 * measured in seconds.
 */
func Import(doc *gltf.Document, opts Options) (*resources.Model, error) {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	im := &importer{
		doc:             doc,
		opts:            opts,
		nodeToBone:      map[int]int{},
		rootParentWorld: mgl32.Ident4(),
		model:           &resources.Model{},
		defaultMaterial: -1,
	}
	im.parents = make([]int, len(doc.Nodes))
	for i := range im.parents {
		im.parents[i] = -1
	}
	for i, node := range doc.Nodes {
		for _, child := range node.Children {
			if int(child) >= len(doc.Nodes) {
				return nil, errors.Errorf("node %d has out of range child %d", i, child)
			}
			im.parents[child] = i
		}
	}

	if err := im.importSkeleton(); err != nil {
		return nil, errors.Wrap(err, "skeleton")
	}
	im.importMaterials()
	if err := im.importMeshes(); err != nil {
		return nil, errors.Wrap(err, "meshes")
	}
	if err := im.importAnimations(); err != nil {
		return nil, errors.Wrap(err, "animations")
	}

	core.LogInfo("imported %d meshes, %d materials, %d clips", len(im.model.MeshData), len(im.model.MaterialData), len(im.model.AnimationClips))
	return im.model, nil
}

func (im *importer) importMaterials() {
	for _, m := range im.doc.Materials {
		md := resources.MaterialData{Material: resources.DefaultMaterial()}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				c := *pbr.BaseColorFactor
				md.Material.Diffuse = math.Colour{R: c[0], G: c[1], B: c[2], A: c[3]}
			}
			if pbr.BaseColorTexture != nil {
				md.DiffuseMapName = im.textureImage(int(pbr.BaseColorTexture.Index))
			}
		}
		if m.NormalTexture != nil {
			if i, ok := index(m.NormalTexture.Index); ok {
				md.NormalMapName = im.textureImage(i)
			}
		}
		im.model.MaterialData = append(im.model.MaterialData, md)
	}
}

// materialIndex maps a primitive material, adding a default material for
// primitives without one.
func (im *importer) materialIndex(material *uint32) int {
	if material != nil && int(*material) < len(im.model.MaterialData) {
		return int(*material)
	}
	if im.defaultMaterial < 0 {
		im.defaultMaterial = len(im.model.MaterialData)
		im.model.MaterialData = append(im.model.MaterialData, resources.MaterialData{Material: resources.DefaultMaterial()})
	}
	return im.defaultMaterial
}

// textureImage returns the image file of a texture, empty for embedded
// images which have no file to point at.
func (im *importer) textureImage(texture int) string {
	if texture >= len(im.doc.Textures) {
		core.LogWarn("texture %d does not exist", texture)
		return ""
	}
	source, ok := index(im.doc.Textures[texture].Source)
	if !ok || source >= len(im.doc.Images) {
		return ""
	}
	uri := im.doc.Images[source].URI
	if uri == "" || strings.HasPrefix(uri, "data:") {
		core.LogWarn("texture %d uses an embedded image, skipped", texture)
		return ""
	}
	if unescaped, err := url.PathUnescape(uri); err == nil {
		uri = unescaped
	}
	return uri
}

// nodeTRS returns the local transform of a node, decomposing its matrix
// when it has one. The translation is scaled.
func (im *importer) nodeTRS(n *gltf.Node) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	if m := mgl32.Mat4(n.MatrixOrDefault()); m != mgl32.Ident4() {
		m[12] *= im.opts.Scale
		m[13] *= im.opts.Scale
		m[14] *= im.opts.Scale
		return decompose(m)
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return mgl32.Vec3(t).Mul(im.opts.Scale), quat(r), mgl32.Vec3(s)
}

// decompose splits an affine matrix without shear.
func decompose(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := m.Col(3).Vec3()
	s := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	for i := range s {
		if s[i] == 0 {
			return t, mgl32.QuatIdent(), s
		}
	}
	rot := mgl32.Mat4FromCols(
		m.Col(0).Mul(1/s[0]),
		m.Col(1).Mul(1/s[1]),
		m.Col(2).Mul(1/s[2]),
		mgl32.Vec4{0, 0, 0, 1},
	)
	return t, mgl32.Mat4ToQuat(rot).Normalize(), s
}

func (im *importer) localMatrix(node int) mgl32.Mat4 {
	t, r, s := im.nodeTRS(im.doc.Nodes[node])
	return compose(t, r, s)
}

func (im *importer) worldMatrix(node int) mgl32.Mat4 {
	m := im.localMatrix(node)
	// the depth bound stops on cyclic hierarchies
	for p, depth := im.parents[node], 0; p >= 0 && depth < len(im.parents); p, depth = im.parents[p], depth+1 {
		m = im.localMatrix(p).Mul4(m)
	}
	return m
}

func compose(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

func quat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
}

// toMat4 converts a column vector matrix. The storage order of mgl32 is the
// row vector layout of math.Mat4.
func toMat4(m mgl32.Mat4) math.Mat4 {
	return math.Mat4{Data: [16]float32(m)}
}

// index reads an optional glTF index, which the document stores either as
// a plain or as a pointer value depending on the property.
func index[T uint32 | *uint32](v T) (int, bool) {
	switch i := any(v).(type) {
	case uint32:
		return int(i), true
	case *uint32:
		if i == nil {
			return 0, false
		}
		return int(*i), true
	}
	return 0, false
}

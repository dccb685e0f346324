package importer

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

func (im *importer) importMeshes() error {
	for m, mesh := range im.doc.Meshes {
		for p, primitive := range mesh.Primitives {
			if primitive.Mode != gltf.PrimitiveTriangles {
				core.LogWarn("mesh %q primitive %d is not a triangle list, skipped", mesh.Name, p)
				continue
			}
			data, err := im.readPrimitive(primitive)
			if err != nil {
				return errors.Wrapf(err, "mesh %q primitive %d", mesh.Name, p)
			}
			im.model.MeshData = append(im.model.MeshData, resources.MeshData{
				Mesh:          data,
				MaterialIndex: im.materialIndex(primitive.Material),
			})
			core.LogDebug("mesh %d primitive %d: %d vertices, %d indices", m, p, len(data.Vertices), len(data.Indices))
		}
	}
	return nil
}

func (im *importer) accessor(primitive *gltf.Primitive, attribute string) (*gltf.Accessor, bool, error) {
	i, ok := primitive.Attributes[attribute]
	if !ok {
		return nil, false, nil
	}
	if int(i) >= len(im.doc.Accessors) {
		return nil, false, errors.Errorf("%s accessor %d does not exist", attribute, i)
	}
	return im.doc.Accessors[i], true, nil
}

func (im *importer) readPrimitive(primitive *gltf.Primitive) (resources.Mesh, error) {
	mesh := resources.Mesh{}

	acr, ok, err := im.accessor(primitive, gltf.POSITION)
	if err != nil {
		return mesh, err
	}
	if !ok {
		return mesh, errors.New("primitive has no positions")
	}
	positions, err := modeler.ReadPosition(im.doc, acr, nil)
	if err != nil {
		return mesh, errors.Wrap(err, "failed to read positions")
	}
	mesh.Vertices = make([]math.Vertex, len(positions))
	for i, p := range positions {
		mesh.Vertices[i].Position = math.NewVec3(p[0], p[1], p[2]).MulScalar(im.opts.Scale)
	}

	if i, ok := index(primitive.Indices); ok {
		if i >= len(im.doc.Accessors) {
			return mesh, errors.Errorf("indices accessor %d does not exist", i)
		}
		if mesh.Indices, err = modeler.ReadIndices(im.doc, im.doc.Accessors[i], nil); err != nil {
			return mesh, errors.Wrap(err, "failed to read indices")
		}
	} else {
		mesh.Indices = make([]uint32, len(positions))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}
	for _, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Vertices) {
			return mesh, errors.Errorf("index %d out of range of %d vertices", idx, len(mesh.Vertices))
		}
	}

	hasNormals, hasTangents, hasUVs := false, false, false
	if acr, ok, err := im.accessor(primitive, gltf.NORMAL); err != nil {
		return mesh, err
	} else if ok {
		normals, err := modeler.ReadNormal(im.doc, acr, nil)
		if err != nil {
			return mesh, errors.Wrap(err, "failed to read normals")
		}
		for i := 0; i < len(normals) && i < len(mesh.Vertices); i++ {
			mesh.Vertices[i].Normal = math.NewVec3(normals[i][0], normals[i][1], normals[i][2])
		}
		hasNormals = true
	}
	if acr, ok, err := im.accessor(primitive, gltf.TANGENT); err != nil {
		return mesh, err
	} else if ok {
		tangents, err := modeler.ReadTangent(im.doc, acr, nil)
		if err != nil {
			return mesh, errors.Wrap(err, "failed to read tangents")
		}
		for i := 0; i < len(tangents) && i < len(mesh.Vertices); i++ {
			mesh.Vertices[i].Tangent = math.NewVec3(tangents[i][0], tangents[i][1], tangents[i][2])
		}
		hasTangents = true
	}
	if acr, ok, err := im.accessor(primitive, gltf.TEXCOORD_0); err != nil {
		return mesh, err
	} else if ok {
		uvs, err := modeler.ReadTextureCoord(im.doc, acr, nil)
		if err != nil {
			return mesh, errors.Wrap(err, "failed to read texture coordinates")
		}
		for i := 0; i < len(uvs) && i < len(mesh.Vertices); i++ {
			mesh.Vertices[i].Texcoord = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		hasUVs = true
	}
	if err := im.readSkinning(primitive, mesh.Vertices); err != nil {
		return mesh, err
	}

	if !hasNormals {
		math.GenerateNormals(mesh.Vertices, mesh.Indices)
	}
	if !hasTangents && hasUVs {
		math.GenerateTangents(mesh.Vertices, mesh.Indices)
	}
	return mesh, nil
}

// readSkinning fills bone indices and weights. Weights are normalized to a
// sum of one.
func (im *importer) readSkinning(primitive *gltf.Primitive, vertices []math.Vertex) error {
	jointsAcr, hasJoints, err := im.accessor(primitive, gltf.JOINTS_0)
	if err != nil {
		return err
	}
	weightsAcr, hasWeights, err := im.accessor(primitive, gltf.WEIGHTS_0)
	if err != nil {
		return err
	}
	if !hasJoints || !hasWeights {
		return nil
	}
	if im.model.Skeleton == nil {
		core.LogWarn("primitive has skinning attributes but the document has no skin")
		return nil
	}

	joints, err := modeler.ReadJoints(im.doc, jointsAcr, nil)
	if err != nil {
		return errors.Wrap(err, "failed to read joints")
	}
	weights, err := modeler.ReadWeights(im.doc, weightsAcr, nil)
	if err != nil {
		return errors.Wrap(err, "failed to read weights")
	}

	boneCount := im.model.Skeleton.BoneCount()
	for i := 0; i < len(vertices) && i < len(joints) && i < len(weights); i++ {
		var sum float32
		for k := 0; k < math.MaxBoneWeights; k++ {
			if int(joints[i][k]) >= boneCount {
				return errors.Errorf("vertex %d references joint %d of %d", i, joints[i][k], boneCount)
			}
			vertices[i].BoneIndices[k] = int32(joints[i][k])
			vertices[i].BoneWeights[k] = weights[i][k]
			sum += weights[i][k]
		}
		if sum > 0 {
			for k := range vertices[i].BoneWeights {
				vertices[i].BoneWeights[k] /= sum
			}
		}
	}
	return nil
}

package loaders

import (
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// floats per vertex line: position, normal, tangent, uv, bone indices, weights
const vertexFieldCount = 3 + 3 + 3 + 2 + math.MaxBoneWeights + math.MaxBoneWeights

// ModelLoader reads and writes the mesh file of a model.
type ModelLoader struct{}

func (ModelLoader) Load(path string, model *resources.Model) error {
	return LoadModel(path, model)
}

func (ModelLoader) Save(path string, model *resources.Model) error {
	return SaveModel(path, model)
}

// SaveModel writes the meshes of model to path with its extension replaced by
// .model. A model without meshes writes nothing.
func SaveModel(path string, model *resources.Model) error {
	if len(model.MeshData) == 0 {
		return nil
	}

	return writeFile(WithExtension(path, ModelExtension), func(tw *textWriter) {
		tw.printf("MeshCount: %d\n", len(model.MeshData))
		for _, meshData := range model.MeshData {
			tw.printf("MaterialIndex: %d\n", meshData.MaterialIndex)

			mesh := meshData.Mesh
			tw.printf("VertexCount: %d\n", len(mesh.Vertices))
			for _, v := range mesh.Vertices {
				writeVertex(tw, v)
			}

			tw.printf("IndexCount: %d\n", len(mesh.Indices))
			for i := 0; i < len(mesh.Indices); i += 3 {
				end := min(i+3, len(mesh.Indices))
				triple := make([]int, 0, 3)
				for _, index := range mesh.Indices[i:end] {
					triple = append(triple, int(index))
				}
				tw.ints(triple...)
			}
		}
	})
}

// LoadModel replaces the meshes of model with the content of the .model file
// next to path. A missing file leaves the model untouched.
func LoadModel(path string, model *resources.Model) error {
	var meshes []resources.MeshData

	found, err := readFile(WithExtension(path, ModelExtension), func(tr *textReader) error {
		meshCount, err := tr.countField("MeshCount")
		if err != nil {
			return err
		}
		for m := 0; m < meshCount; m++ {
			meshData := resources.MeshData{}
			if meshData.MaterialIndex, err = tr.intField("MaterialIndex"); err != nil {
				return err
			}

			vertexCount, err := tr.countField("VertexCount")
			if err != nil {
				return err
			}
			meshData.Mesh.Vertices = make([]math.Vertex, 0, min(vertexCount, 1<<16))
			for v := 0; v < vertexCount; v++ {
				vertex, err := readVertex(tr)
				if err != nil {
					return err
				}
				meshData.Mesh.Vertices = append(meshData.Mesh.Vertices, vertex)
			}

			indexCount, err := tr.countField("IndexCount")
			if err != nil {
				return err
			}
			meshData.Mesh.Indices = make([]uint32, 0, min(indexCount, 1<<16))
			for len(meshData.Mesh.Indices) < indexCount {
				line, err := tr.next()
				if err != nil {
					return err
				}
				values, err := tr.ints(line)
				if err != nil {
					return err
				}
				if len(values) == 0 || len(meshData.Mesh.Indices)+len(values) > indexCount {
					return tr.errorf("index line does not fit IndexCount %d", indexCount)
				}
				for _, index := range values {
					if index < 0 || index >= vertexCount {
						return tr.errorf("index %d out of range [0, %d)", index, vertexCount)
					}
					meshData.Mesh.Indices = append(meshData.Mesh.Indices, uint32(index))
				}
			}
			meshes = append(meshes, meshData)
		}
		return nil
	})
	if err != nil || !found {
		return err
	}

	model.MeshData = meshes
	return nil
}

func writeVertex(tw *textWriter, v math.Vertex) {
	values := []float32{
		v.Position.X, v.Position.Y, v.Position.Z,
		v.Normal.X, v.Normal.Y, v.Normal.Z,
		v.Tangent.X, v.Tangent.Y, v.Tangent.Z,
		v.Texcoord.X, v.Texcoord.Y,
	}
	parts := make([]interface{}, 0, vertexFieldCount)
	for _, f := range values {
		parts = append(parts, formatFloat(f))
	}
	for _, b := range v.BoneIndices {
		parts = append(parts, b)
	}
	for _, w := range v.BoneWeights {
		parts = append(parts, formatFloat(w))
	}
	tw.line(joinFields(parts))
}

func readVertex(tr *textReader) (math.Vertex, error) {
	v := math.Vertex{}
	values, err := tr.floats(vertexFieldCount)
	if err != nil {
		return v, err
	}
	v.Position = math.NewVec3(values[0], values[1], values[2])
	v.Normal = math.NewVec3(values[3], values[4], values[5])
	v.Tangent = math.NewVec3(values[6], values[7], values[8])
	v.Texcoord = math.NewVec2(values[9], values[10])
	for i := 0; i < math.MaxBoneWeights; i++ {
		index := values[11+i]
		if index != float32(int32(index)) {
			return v, tr.errorf("bone index %v is not an integer", index)
		}
		v.BoneIndices[i] = int32(index)
		v.BoneWeights[i] = values[11+math.MaxBoneWeights+i]
	}
	return v, nil
}

package math

// GenerateNormals writes a face normal into the three vertices of every
// triangle in indices. Shared vertices keep the normal of the last face.
func GenerateNormals(vertices []Vertex, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)
		normal := edge1.Cross(edge2).Normalized()

		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GenerateTangents derives per-face tangents from positions and texture
// coordinates. Triangles with degenerate uvs are skipped.
func GenerateTangents(vertices []Vertex, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := vertices[i1].Texcoord.X - vertices[i0].Texcoord.X
		deltaV1 := vertices[i1].Texcoord.Y - vertices[i0].Texcoord.Y
		deltaU2 := vertices[i2].Texcoord.X - vertices[i0].Texcoord.X
		deltaV2 := vertices[i2].Texcoord.Y - vertices[i0].Texcoord.Y

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if kabs(dividend) < K_FLOAT_EPSILON {
			continue
		}
		fc := 1.0 / dividend

		tangent := Vec3{
			fc * (deltaV2*edge1.X - deltaV1*edge2.X),
			fc * (deltaV2*edge1.Y - deltaV1*edge2.Y),
			fc * (deltaV2*edge1.Z - deltaV1*edge2.Z),
		}.Normalized()

		if deltaV1*deltaU2-deltaV2*deltaU1 < 0.0 {
			tangent = tangent.MulScalar(-1)
		}

		vertices[i0].Tangent = tangent
		vertices[i1].Tangent = tangent
		vertices[i2].Tangent = tangent
	}
}

// DeduplicateVertices merges bit-identical vertices and rewrites indices to
// point at the surviving copies. The first occurrence keeps its position in
// the output order.
func DeduplicateVertices(vertices []Vertex, indices []uint32) ([]Vertex, []uint32) {
	seen := make(map[Vertex]uint32, len(vertices))
	remap := make([]uint32, len(vertices))
	unique := make([]Vertex, 0, len(vertices))

	for i, v := range vertices {
		if at, ok := seen[v]; ok {
			remap[i] = at
			continue
		}
		at := uint32(len(unique))
		seen[v] = at
		remap[i] = at
		unique = append(unique, v)
	}

	out := make([]uint32, len(indices))
	for i, index := range indices {
		out[i] = remap[index]
	}
	return unique, out
}

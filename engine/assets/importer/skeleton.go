package importer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// importSkeleton builds the bone tree of the first skin. Bone indices follow
// the skin joint order, which is what JOINTS_0 refers to.
func (im *importer) importSkeleton() error {
	if len(im.doc.Skins) == 0 {
		return nil
	}
	if len(im.doc.Skins) > 1 {
		core.LogWarn("document has %d skins, only the first is imported", len(im.doc.Skins))
	}
	skin := im.doc.Skins[0]
	if len(skin.Joints) == 0 {
		return errors.New("skin has no joints")
	}

	for i, node := range skin.Joints {
		if int(node) >= len(im.doc.Nodes) {
			return errors.Errorf("joint %d references missing node %d", i, node)
		}
		im.nodeToBone[int(node)] = i
		im.boneNodes = append(im.boneNodes, int(node))
	}

	offsets, err := im.inverseBindMatrices(skin.InverseBindMatrices, len(skin.Joints))
	if err != nil {
		return err
	}

	bones := make([]*resources.Bone, len(skin.Joints))
	rootIndex := -1
	for i, node := range skin.Joints {
		bone := &resources.Bone{
			Name:        im.doc.Nodes[node].Name,
			Index:       i,
			ParentIndex: resources.NoParent,
		}

		// the parent is the closest ancestor that is a joint
		parentNode := im.parents[node]
		for depth := 0; parentNode >= 0 && depth < len(im.parents); depth++ {
			if b, ok := im.nodeToBone[parentNode]; ok {
				bone.ParentIndex = b
				break
			}
			parentNode = im.parents[parentNode]
		}

		local := im.localMatrix(int(node))
		if bone.ParentIndex == resources.NoParent {
			if rootIndex >= 0 {
				return errors.Errorf("joints %q and %q are both roots", bones[rootIndex].Name, bone.Name)
			}
			rootIndex = i
			if p := im.parents[node]; p >= 0 {
				im.rootParentWorld = im.worldMatrix(p)
			}
			local = im.rootParentWorld.Mul4(local)
		}
		bone.ToParentTransform = toMat4(local)
		if offsets != nil {
			bone.OffsetTransform = toMat4(offsets[i])
		} else {
			bone.OffsetTransform = toMat4(im.worldMatrix(int(node)).Inv())
		}
		bones[i] = bone
	}

	for _, bone := range bones {
		if bone.ParentIndex != resources.NoParent {
			parent := bones[bone.ParentIndex]
			parent.ChildrenIndices = append(parent.ChildrenIndices, bone.Index)
		}
	}

	skeleton, err := resources.NewSkeleton(bones, rootIndex)
	if err != nil {
		return err
	}
	im.model.Skeleton = skeleton
	return nil
}

func (im *importer) inverseBindMatrices(accessor *uint32, count int) ([]mgl32.Mat4, error) {
	i, ok := index(accessor)
	if !ok {
		return nil, nil
	}
	if i >= len(im.doc.Accessors) {
		return nil, errors.Errorf("inverse bind matrices accessor %d does not exist", i)
	}
	data, err := modeler.ReadAccessor(im.doc, im.doc.Accessors[i], nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read inverse bind matrices")
	}
	raw, ok := data.([][4][4]float32)
	if !ok {
		return nil, errors.Errorf("inverse bind matrices have unsupported type %T", data)
	}
	if len(raw) < count {
		return nil, errors.Errorf("%d inverse bind matrices for %d joints", len(raw), count)
	}

	matrices := make([]mgl32.Mat4, count)
	for j := range matrices {
		// raw is indexed [row][col]
		m := mgl32.Mat4{}
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				m[c*4+r] = raw[j][r][c]
			}
		}
		m[12] *= im.opts.Scale
		m[13] *= im.opts.Scale
		m[14] *= im.opts.Scale
		matrices[j] = m
	}
	return matrices, nil
}

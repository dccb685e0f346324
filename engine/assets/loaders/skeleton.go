package loaders

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// SkeletonLoader reads and writes the bone hierarchy of a model.
type SkeletonLoader struct{}

func (SkeletonLoader) Load(path string, model *resources.Model) error {
	return LoadSkeleton(path, model)
}

func (SkeletonLoader) Save(path string, model *resources.Model) error {
	return SaveSkeleton(path, model)
}

// SaveSkeleton writes the skeleton of model to path with its extension
// replaced by .skeleton. Matrices are written one row per line.
func SaveSkeleton(path string, model *resources.Model) error {
	skeleton := model.Skeleton
	if skeleton == nil {
		return nil
	}

	return writeFile(WithExtension(path, SkeletonExtension), func(tw *textWriter) {
		tw.printf("BoneCount: %d\n", skeleton.BoneCount())
		tw.printf("RootBone: %d\n", skeleton.RootIndex())
		for _, bone := range skeleton.Bones() {
			tw.printf("Name: %s\n", bone.Name)
			tw.printf("Index: %d\n", bone.Index)
			tw.printf("ParentIndex: %d\n", bone.ParentIndex)
			tw.printf("ChildCount: %d\n", len(bone.ChildrenIndices))
			tw.printf("ChildIndices:")
			for _, child := range bone.ChildrenIndices {
				tw.printf(" %d", child)
			}
			tw.printf("\n")
			tw.line("ToParentTransform:")
			tw.matrix(bone.ToParentTransform)
			tw.line("OffsetTransform:")
			tw.matrix(bone.OffsetTransform)
		}
	})
}

// LoadSkeleton replaces the skeleton of model with the content of the
// .skeleton file next to path. A missing file leaves the model untouched.
func LoadSkeleton(path string, model *resources.Model) error {
	var skeleton *resources.Skeleton

	found, err := readFile(WithExtension(path, SkeletonExtension), func(tr *textReader) error {
		boneCount, err := tr.countField("BoneCount")
		if err != nil {
			return err
		}
		rootIndex, err := tr.intField("RootBone")
		if err != nil {
			return err
		}

		bones := make([]*resources.Bone, 0, min(boneCount, 1024))
		for i := 0; i < boneCount; i++ {
			bone, err := readBone(tr)
			if err != nil {
				return err
			}
			bones = append(bones, bone)
		}

		skeleton, err = resources.NewSkeleton(bones, rootIndex)
		if err != nil {
			return fmt.Errorf("%s: %w: %w", tr.path, core.ErrMalformedAsset, err)
		}
		return nil
	})
	if err != nil || !found {
		return err
	}

	model.Skeleton = skeleton
	return nil
}

func readBone(tr *textReader) (*resources.Bone, error) {
	var err error
	bone := &resources.Bone{}

	if bone.Name, err = tr.nameField("Name"); err != nil {
		return nil, err
	}
	if bone.Index, err = tr.intField("Index"); err != nil {
		return nil, err
	}
	if bone.ParentIndex, err = tr.intField("ParentIndex"); err != nil {
		return nil, err
	}
	childCount, err := tr.countField("ChildCount")
	if err != nil {
		return nil, err
	}
	children, err := tr.field("ChildIndices")
	if err != nil {
		return nil, err
	}
	if bone.ChildrenIndices, err = tr.ints(children); err != nil {
		return nil, err
	}
	if len(bone.ChildrenIndices) != childCount {
		return nil, tr.errorf("bone %q lists %d children, ChildCount is %d", bone.Name, len(bone.ChildrenIndices), childCount)
	}
	if childCount == 0 {
		bone.ChildrenIndices = nil
	}

	if _, err := tr.field("ToParentTransform"); err != nil {
		return nil, err
	}
	if bone.ToParentTransform, err = tr.matrix(); err != nil {
		return nil, err
	}
	if _, err := tr.field("OffsetTransform"); err != nil {
		return nil, err
	}
	if bone.OffsetTransform, err = tr.matrix(); err != nil {
		return nil, err
	}
	return bone, nil
}

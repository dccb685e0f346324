package animator

import (
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// BoneTransforms holds one matrix per bone in bone index order.
type BoneTransforms []math.Mat4

// Poser supplies animated parent-relative bone transforms. ok is false when
// a bone keeps its bind pose.
type Poser interface {
	GetToParentTransform(bone *resources.Bone) (m math.Mat4, ok bool)
}

// SkeletonDrawer receives the debug geometry of a skeleton.
type SkeletonDrawer interface {
	AddLine(from, to math.Vec3, colour math.Colour)
	AddSphere(slices, rings int, radius float32, colour math.Colour, center math.Vec3)
}

const (
	skeletonSphereSlices = 16
	skeletonSphereRings  = 16
	skeletonSphereRadius = 0.02
)

/**
 * @brief Computes the model space transform of every bone. Each bone takes
 * its transform from the poser when it has one, else its bind pose, and is
 * composed with its parent's result. Parents are always written before their
 * children.
 *
 * @param model The model holding the skeleton.
 * @param poser The animation source, may be nil.
 * @return The transforms, nil when the model has no skeleton.
 */
func ComputeBoneTransforms(model *resources.Model, poser Poser) BoneTransforms {
	if model == nil || model.Skeleton == nil {
		return nil
	}
	if a, ok := poser.(*Animator); ok && a == nil {
		poser = nil
	}

	skeleton := model.Skeleton
	transforms := make(BoneTransforms, skeleton.BoneCount())
	skeleton.Walk(func(bone *resources.Bone) {
		local := bone.ToParentTransform
		if poser != nil {
			if animated, ok := poser.GetToParentTransform(bone); ok {
				local = animated
			}
		}
		if bone.ParentIndex == resources.NoParent {
			transforms[bone.Index] = local
			return
		}
		transforms[bone.Index] = local.Mul(transforms[bone.ParentIndex])
	})
	return transforms
}

/**
 * @brief Turns model space bone transforms into skinning matrices by
 * applying each bone's offset transform in place. Running it twice on the
 * same transforms applies the offsets twice.
 */
func ApplyBoneOffsets(model *resources.Model, transforms BoneTransforms) {
	if model == nil || model.Skeleton == nil {
		return
	}
	for _, bone := range model.Skeleton.Bones() {
		if bone.Index >= len(transforms) {
			return
		}
		transforms[bone.Index] = bone.OffsetTransform.Mul(transforms[bone.Index])
	}
}

// DrawSkeleton draws a line from every non-root bone to its parent and a
// marker sphere on the bone, from transforms as computed by
// ComputeBoneTransforms.
func DrawSkeleton(model *resources.Model, transforms BoneTransforms, drawer SkeletonDrawer) {
	if model == nil || model.Skeleton == nil || drawer == nil {
		return
	}
	for _, bone := range model.Skeleton.Bones() {
		if bone.ParentIndex == resources.NoParent || bone.Index >= len(transforms) || bone.ParentIndex >= len(transforms) {
			continue
		}
		position := transforms[bone.Index].GetTranslation()
		parentPosition := transforms[bone.ParentIndex].GetTranslation()
		drawer.AddLine(position, parentPosition, math.ColourFloralWhite)
		drawer.AddSphere(skeletonSphereSlices, skeletonSphereRings, skeletonSphereRadius, math.ColourDarkGray, position)
	}
}

package renderer

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/animator"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer/components"
	"github.com/spaghettifunk/marionette/engine/resources"
)

/**
 * @brief Draws render groups with their skinning matrices. For a group with
 * an animator and a skinned model the bone palette is evaluated once per
 * Render and uploaded before the group's draws.
 */
type SkinningEffect struct {
	bones     BoneBuffer
	submitter DrawSubmitter
	// skeleton debug lines are sent here when set
	drawer animator.SkeletonDrawer
}

func NewSkinningEffect(bones BoneBuffer, submitter DrawSubmitter) *SkinningEffect {
	return &SkinningEffect{
		bones:     bones,
		submitter: submitter,
	}
}

// SetSkeletonDrawer makes Render draw the skeleton of every animated group.
func (se *SkinningEffect) SetSkeletonDrawer(drawer animator.SkeletonDrawer) {
	se.drawer = drawer
}

func (se *SkinningEffect) Render(group *components.RenderGroup) error {
	model := group.Model()
	if model == nil {
		return fmt.Errorf("render group %s: %w", group.ID, core.ErrModelNotFound)
	}
	world := group.Transform.GetWorld()

	boneCount := 0
	if group.Animator != nil && model.Skeleton != nil {
		transforms := animator.ComputeBoneTransforms(model, group.Animator)
		if se.drawer != nil {
			se.drawSkeleton(model, transforms, world)
		}
		animator.ApplyBoneOffsets(model, transforms)

		if len(transforms) > MaxBoneCount {
			return fmt.Errorf("render group %s has %d bones: %w", group.ID, len(transforms), core.ErrTooManyBones)
		}
		upload := make([]math.Mat4, len(transforms))
		for i, m := range transforms {
			upload[i] = math.NewMat4Transposed(m)
		}
		if err := se.bones.UploadBones(upload); err != nil {
			return err
		}
		boneCount = len(upload)
	}

	for i := range group.RenderObjects {
		ro := &group.RenderObjects[i]
		if err := se.submitter.Draw(DrawCall{
			GroupID:   group.ID,
			World:     world,
			Mesh:      ro.Mesh,
			Material:  ro.Material,
			Textures:  ro.Textures,
			BoneCount: boneCount,
		}); err != nil {
			return err
		}
	}
	return nil
}

// the debug skeleton is drawn in world space
func (se *SkinningEffect) drawSkeleton(model *resources.Model, transforms animator.BoneTransforms, world math.Mat4) {
	placed := make(animator.BoneTransforms, len(transforms))
	for i, m := range transforms {
		placed[i] = m.Mul(world)
	}
	animator.DrawSkeleton(model, placed, se.drawer)
}

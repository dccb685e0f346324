package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
)

// hips -> spine -> head, hips -> leg
func testBones() []*Bone {
	return []*Bone{
		{Name: "hips", Index: 0, ParentIndex: NoParent, ChildrenIndices: []int{1, 3}, ToParentTransform: math.NewMat4Identity(), OffsetTransform: math.NewMat4Identity()},
		{Name: "spine", Index: 1, ParentIndex: 0, ChildrenIndices: []int{2}, ToParentTransform: math.NewMat4Identity(), OffsetTransform: math.NewMat4Identity()},
		{Name: "head", Index: 2, ParentIndex: 1, ToParentTransform: math.NewMat4Identity(), OffsetTransform: math.NewMat4Identity()},
		{Name: "leg", Index: 3, ParentIndex: 0, ToParentTransform: math.NewMat4Identity(), OffsetTransform: math.NewMat4Identity()},
	}
}

func TestNewSkeleton(t *testing.T) {
	s, err := NewSkeleton(testBones(), 0)
	require.NoError(t, err)

	assert.Equal(t, 4, s.BoneCount())
	assert.Equal(t, "hips", s.Root().Name)
	assert.Nil(t, s.Parent(s.Root()))
	assert.Equal(t, "spine", s.Parent(s.Bone(2)).Name)
	assert.Nil(t, s.Bone(4))

	var names []string
	for _, c := range s.Children(s.Root()) {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"spine", "leg"}, names)
}

func TestSkeletonWalkIsPreOrder(t *testing.T) {
	s, err := NewSkeleton(testBones(), 0)
	require.NoError(t, err)

	var order []string
	s.Walk(func(b *Bone) { order = append(order, b.Name) })
	assert.Equal(t, []string{"hips", "spine", "head", "leg"}, order)
}

func TestNewSkeletonRejectsInvalidTrees(t *testing.T) {
	cases := map[string]func(bones []*Bone) ([]*Bone, int){
		"empty": func([]*Bone) ([]*Bone, int) { return nil, 0 },
		"root out of range": func(b []*Bone) ([]*Bone, int) {
			return b, 7
		},
		"index mismatch": func(b []*Bone) ([]*Bone, int) {
			b[2].Index = 5
			return b, 0
		},
		"second root": func(b []*Bone) ([]*Bone, int) {
			b[3].ParentIndex = NoParent
			b[0].ChildrenIndices = []int{1}
			return b, 0
		},
		"root with parent": func(b []*Bone) ([]*Bone, int) {
			b[0].ParentIndex = 2
			return b, 0
		},
		"parent out of range": func(b []*Bone) ([]*Bone, int) {
			b[3].ParentIndex = 9
			return b, 0
		},
		"child disagrees with parent": func(b []*Bone) ([]*Bone, int) {
			b[1].ChildrenIndices = []int{2, 3}
			return b, 0
		},
		"unreachable": func(b []*Bone) ([]*Bone, int) {
			b[0].ChildrenIndices = []int{1}
			return b, 0
		},
		"listed twice": func(b []*Bone) ([]*Bone, int) {
			b[0].ChildrenIndices = []int{1, 3, 3}
			return b, 0
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			bones, root := mutate(testBones())
			_, err := NewSkeleton(bones, root)
			assert.ErrorIs(t, err, core.ErrInvalidSkeleton)
		})
	}
}

func TestModelClips(t *testing.T) {
	m := &Model{}
	assert.Nil(t, m.AnimationClip(0))

	m.AddAnimationClips(AnimationClip{Name: "walk"}, AnimationClip{Name: "run"})
	m.AddAnimationClips(AnimationClip{Name: "jump"})
	require.Len(t, m.AnimationClips, 3)
	assert.Equal(t, "jump", m.AnimationClip(2).Name)
	assert.Nil(t, m.AnimationClip(-1))

	assert.Nil(t, m.AnimationClips[0].BoneAnimation(0))
}

func TestMaterialTextureNames(t *testing.T) {
	md := MaterialData{Material: DefaultMaterial()}
	md.SetTextureNames([4]string{"d.png", "", "n.png", "b.png"})
	assert.Equal(t, "d.png", md.DiffuseMapName)
	assert.Equal(t, "", md.SpecularMapName)
	assert.Equal(t, [4]string{"d.png", "", "n.png", "b.png"}, md.TextureNames())
	assert.Equal(t, float32(10), md.Material.Shininess)
}

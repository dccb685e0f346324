package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/marionette/engine/animation"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

func mustAnimation(t *testing.T, b *animation.Builder) *animation.Animation {
	t.Helper()
	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func testModel(t *testing.T) *resources.Model {
	t.Helper()

	rot := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), 0.3, true)
	bones := []*resources.Bone{
		{
			Name: "root", Index: 0, ParentIndex: resources.NoParent, ChildrenIndices: []int{1},
			ToParentTransform: math.NewMat4Translation(math.NewVec3(0, 1.1, 0)),
			OffsetTransform:   math.NewMat4Translation(math.NewVec3(0, -1.1, 0)),
		},
		{
			Name: "upper arm", Index: 1, ParentIndex: 0, ChildrenIndices: []int{2},
			ToParentTransform: rot.ToMat4().Mul(math.NewMat4Translation(math.NewVec3(0.25, 0.5, 1.0/3.0))),
			OffsetTransform:   math.NewMat4Scale(math.NewVec3(0.1, 0.2, 0.3)),
		},
		{
			Name: "forearm", Index: 2, ParentIndex: 1,
			ToParentTransform: math.NewMat4Translation(math.NewVec3(0, 0.7, 0)),
			OffsetTransform:   math.NewMat4Identity().Inverse(),
		},
	}
	skeleton, err := resources.NewSkeleton(bones, 0)
	require.NoError(t, err)

	mesh := resources.Mesh{
		Vertices: []math.Vertex{
			{
				Position: math.NewVec3(0.1, 0.2, 0.3), Normal: math.NewVec3(0, 1, 0), Tangent: math.NewVec3(1, 0, 0),
				Texcoord: math.NewVec2(0.5, 1e-7), BoneIndices: [4]int32{0, 1, 0, 0}, BoneWeights: [4]float32{0.75, 0.25, 0, 0},
			},
			{
				Position: math.NewVec3(-3.4028235e38, 1.0/3.0, 7), Normal: math.NewVec3(0, 0, -1),
				Texcoord: math.NewVec2(1, 0), BoneIndices: [4]int32{2, 0, 0, 0}, BoneWeights: [4]float32{1, 0, 0, 0},
			},
			{Position: math.NewVec3(1, 1, 1), Texcoord: math.NewVec2(0, 1)},
		},
		Indices: []uint32{0, 1, 2, 2, 1, 0},
	}

	walk := resources.AnimationClip{
		Name:           "Walk cycle",
		TickDuration:   24,
		TicksPerSecond: 30,
		BoneAnimations: []*animation.Animation{
			nil,
			mustAnimation(t, animation.NewBuilder().
				AddPositionKey(math.NewVec3(0, 0.1, 0), 0).
				AddPositionKey(math.NewVec3(0.2, 0.1, 0), 12.5).
				AddRotationKey(math.NewQuatIdentity(), 0).
				AddRotationKey(rot, 24).
				AddScaleKey(math.NewVec3One(), 0)),
			nil,
		},
	}
	wave := resources.AnimationClip{
		Name:           "wave",
		TickDuration:   1.5,
		TicksPerSecond: 1,
		BoneAnimations: []*animation.Animation{
			nil, nil,
			mustAnimation(t, animation.NewBuilder().AddRotationKey(rot, 1.5)),
		},
	}

	return &resources.Model{
		MeshData: []resources.MeshData{{Mesh: mesh, MaterialIndex: 0}},
		MaterialData: []resources.MaterialData{{
			Material: resources.Material{
				Emissive:  math.Colour{R: 0, G: 0, B: 0, A: 1},
				Ambient:   math.Colour{R: 0.2, G: 0.2, B: 0.2, A: 1},
				Diffuse:   math.Colour{R: 0.8, G: 0.6, B: 0.4, A: 1},
				Specular:  math.Colour{R: 1, G: 1, B: 1, A: 0.5},
				Shininess: 32.5,
			},
			DiffuseMapName:  "robot_diffuse.png",
			SpecularMapName: "robot_specular.png",
			NormalMapName:   "maps/robot normal.png",
			BumpMapName:     "robot_bump.jpg",
		}},
		Skeleton:       skeleton,
		AnimationClips: []resources.AnimationClip{walk, wave},
	}
}

func saveAll(t *testing.T, path string, model *resources.Model) {
	t.Helper()
	require.NoError(t, SaveModel(path, model))
	require.NoError(t, SaveMaterial(path, model))
	require.NoError(t, SaveSkeleton(path, model))
	require.NoError(t, SaveAnimations(path, model))
}

func loadAll(t *testing.T, path string) *resources.Model {
	t.Helper()
	model := &resources.Model{}
	require.NoError(t, LoadModel(path, model))
	require.NoError(t, LoadMaterial(path, model))
	require.NoError(t, LoadSkeleton(path, model))
	require.NoError(t, LoadAnimations(path, model))
	return model
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.model")
	original := testModel(t)

	saveAll(t, path, original)
	for _, ext := range []string{ModelExtension, MaterialExtension, SkeletonExtension, AnimationSetExtension} {
		assert.FileExists(t, WithExtension(path, ext))
	}

	loaded := loadAll(t, path)

	assert.Equal(t, original.MeshData, loaded.MeshData)
	assert.Equal(t, original.MaterialData, loaded.MaterialData)

	require.NotNil(t, loaded.Skeleton)
	assert.Equal(t, original.Skeleton.RootIndex(), loaded.Skeleton.RootIndex())
	assert.Equal(t, original.Skeleton.Bones(), loaded.Skeleton.Bones())

	require.Len(t, loaded.AnimationClips, 2)
	for i, clip := range original.AnimationClips {
		got := loaded.AnimationClips[i]
		assert.Equal(t, clip.Name, got.Name)
		assert.Equal(t, clip.TickDuration, got.TickDuration)
		assert.Equal(t, clip.TicksPerSecond, got.TicksPerSecond)
		require.Len(t, got.BoneAnimations, len(clip.BoneAnimations))
		for b, anim := range clip.BoneAnimations {
			if anim == nil {
				assert.Nil(t, got.BoneAnimations[b])
				continue
			}
			require.NotNil(t, got.BoneAnimations[b])
			assert.Equal(t, anim.PositionKeys(), got.BoneAnimations[b].PositionKeys())
			assert.Equal(t, anim.RotationKeys(), got.BoneAnimations[b].RotationKeys())
			assert.Equal(t, anim.ScaleKeys(), got.BoneAnimations[b].ScaleKeys())
			assert.Equal(t, anim.Duration(), got.BoneAnimations[b].Duration())
		}
	}
}

func TestRoundTripKeepsPaddedNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "robot.model")
	model := testModel(t)
	model.Skeleton.Bone(0).Name = " Hips "
	model.Skeleton.Bone(2).Name = "\tfore  arm"
	model.AnimationClips[0].Name = "Walk "
	model.AnimationClips[1].Name = ""

	saveAll(t, path, model)
	loaded := loadAll(t, path)

	require.NotNil(t, loaded.Skeleton)
	assert.Equal(t, " Hips ", loaded.Skeleton.Bone(0).Name)
	assert.Equal(t, "upper arm", loaded.Skeleton.Bone(1).Name)
	assert.Equal(t, "\tfore  arm", loaded.Skeleton.Bone(2).Name)
	require.Len(t, loaded.AnimationClips, 2)
	assert.Equal(t, "Walk ", loaded.AnimationClips[0].Name)
	assert.Equal(t, "", loaded.AnimationClips[1].Name)
}

func TestSaveUsesSiblingExtensions(t *testing.T) {
	dir := t.TempDir()
	model := testModel(t)

	// any extension on the input path is replaced
	require.NoError(t, SaveMaterial(filepath.Join(dir, "robot.fbx"), model))
	assert.FileExists(t, filepath.Join(dir, "robot.material"))
	assert.Equal(t, filepath.Join(dir, "a.skeleton"), WithExtension(filepath.Join(dir, "a.model"), SkeletonExtension))
	assert.Equal(t, "noext.animset", WithExtension("noext", AnimationSetExtension))
}

func TestMaterialNoneTextures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.model")
	model := &resources.Model{MaterialData: []resources.MaterialData{{Material: resources.DefaultMaterial()}}}
	require.NoError(t, SaveMaterial(path, model))

	data, err := os.ReadFile(WithExtension(path, MaterialExtension))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<NONE>\n<NONE>\n<NONE>\n<NONE>\n")

	loaded := &resources.Model{}
	require.NoError(t, LoadMaterial(path, loaded))
	assert.Equal(t, model.MaterialData, loaded.MaterialData)
}

func TestMaterialFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.model")
	require.NoError(t, SaveMaterial(path, testModel(t)))

	data, err := os.ReadFile(WithExtension(path, MaterialExtension))
	require.NoError(t, err)
	expected := "MaterialCount: 1\n" +
		"0 0 0 1\n" +
		"0.2 0.2 0.2 1\n" +
		"0.8 0.6 0.4 1\n" +
		"1 1 1 0.5\n" +
		"Shininess: 32.5\n" +
		"robot_diffuse.png\n" +
		"robot_specular.png\n" +
		"maps/robot normal.png\n" +
		"robot_bump.jpg\n"
	assert.Equal(t, expected, string(data))
}

func TestIndicesNotMultipleOfThree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.model")
	model := &resources.Model{MeshData: []resources.MeshData{{
		Mesh: resources.Mesh{
			Vertices: make([]math.Vertex, 4),
			Indices:  []uint32{0, 1, 2, 3},
		},
		MaterialIndex: 2,
	}}}
	require.NoError(t, SaveModel(path, model))

	loaded := &resources.Model{}
	require.NoError(t, LoadModel(path, loaded))
	assert.Equal(t, model.MeshData, loaded.MeshData)
}

func TestLoadMissingFilesIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.model")
	model := testModel(t)
	clips := len(model.AnimationClips)

	assert.NoError(t, LoadModel(path, model))
	assert.NoError(t, LoadMaterial(path, model))
	assert.NoError(t, LoadSkeleton(path, model))
	assert.NoError(t, LoadAnimations(path, model))

	assert.Len(t, model.MeshData, 1)
	assert.Len(t, model.MaterialData, 1)
	assert.NotNil(t, model.Skeleton)
	assert.Len(t, model.AnimationClips, clips)
}

func TestSaveEmptyModelWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.model")
	saveAll(t, path, &resources.Model{})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadAnimationsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.model")
	require.NoError(t, SaveAnimations(path, testModel(t)))

	model := &resources.Model{}
	require.NoError(t, LoadAnimations(path, model))
	require.NoError(t, LoadAnimations(path, model))
	require.Len(t, model.AnimationClips, 4)
	assert.Equal(t, "Walk cycle", model.AnimationClips[2].Name)
}

func TestLoadMalformedLeavesModelUntouched(t *testing.T) {
	cases := map[string]struct {
		ext     string
		content string
		load    func(string, *resources.Model) error
	}{
		"bad mesh count": {ModelExtension, "MeshCount: two\n", LoadModel},
		"truncated vertices": {ModelExtension, "MeshCount: 1\nMaterialIndex: 0\nVertexCount: 2\n" +
			"0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0\n", LoadModel},
		"short vertex":    {ModelExtension, "MeshCount: 1\nMaterialIndex: 0\nVertexCount: 1\n0 0 0\n", LoadModel},
		"index too large": {ModelExtension, "MeshCount: 1\nMaterialIndex: 0\nVertexCount: 1\n0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0\nIndexCount: 3\n0 0 1\n", LoadModel},
		"wrong label":     {MaterialExtension, "Materials: 1\n", LoadMaterial},
		"missing texture": {MaterialExtension, "MaterialCount: 1\n0 0 0 1\n1 1 1 1\n1 1 1 1\n1 1 1 1\nShininess: 2\na.png\n", LoadMaterial},
		"negative count":  {SkeletonExtension, "BoneCount: -1\nRootBone: 0\n", LoadSkeleton},
		"invalid tree": {SkeletonExtension, "BoneCount: 1\nRootBone: 0\nName: a\nIndex: 0\nParentIndex: 0\nChildCount: 0\nChildIndices:\n" +
			"ToParentTransform:\n1 0 0 0\n0 1 0 0\n0 0 1 0\n0 0 0 1\nOffsetTransform:\n1 0 0 0\n0 1 0 0\n0 0 1 0\n0 0 0 1\n", LoadSkeleton},
		"bad tag": {AnimationSetExtension, "AnimClipCount: 1\nName: a\nTickDuration: 1\nTicksPerSecond: 1\nBoneAnimationCount: 1\n<SOMETHING>\n", LoadAnimations},
		"keys out of order": {AnimationSetExtension, "AnimClipCount: 1\nName: a\nTickDuration: 1\nTicksPerSecond: 1\nBoneAnimationCount: 1\n<ANIMATION>\n" +
			"PositionKeyCount: 2\n0 0 0 1\n0 0 0 0\nRotationKeyCount: 0\nScaleKeyCount: 0\n", LoadAnimations},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "broken.model")
			require.NoError(t, os.WriteFile(WithExtension(path, tc.ext), []byte(tc.content), 0o644))

			model := testModel(t)
			before := *model
			err := tc.load(path, model)
			assert.ErrorIs(t, err, core.ErrMalformedAsset)
			assert.Equal(t, before.MeshData, model.MeshData)
			assert.Equal(t, before.MaterialData, model.MaterialData)
			assert.Same(t, before.Skeleton, model.Skeleton)
			assert.Len(t, model.AnimationClips, len(before.AnimationClips))
		})
	}
}

func TestInvalidSkeletonErrorKeepsCause(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.model")
	content := "BoneCount: 1\nRootBone: 3\nName: a\nIndex: 0\nParentIndex: -1\nChildCount: 0\nChildIndices:\n" +
		"ToParentTransform:\n1 0 0 0\n0 1 0 0\n0 0 1 0\n0 0 0 1\nOffsetTransform:\n1 0 0 0\n0 1 0 0\n0 0 1 0\n0 0 0 1\n"
	require.NoError(t, os.WriteFile(WithExtension(path, SkeletonExtension), []byte(content), 0o644))

	err := LoadSkeleton(path, &resources.Model{})
	assert.ErrorIs(t, err, core.ErrMalformedAsset)
	assert.ErrorIs(t, err, core.ErrInvalidSkeleton)
}

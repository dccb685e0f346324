package systems

import (
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/spaghettifunk/marionette/engine/animation"
	"github.com/spaghettifunk/marionette/engine/assets"
	"github.com/spaghettifunk/marionette/engine/assets/loaders"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

func init() {
	core.SetLogOutput(io.Discard)
}

func newModelSystem(t *testing.T) (*ModelSystem, string) {
	t.Helper()
	root := t.TempDir()
	am, err := assets.NewAssetManager(assets.AssetManagerConfig{Root: root})
	require.NoError(t, err)
	require.NoError(t, am.Initialize())
	t.Cleanup(func() { am.Close() })

	ms, err := NewModelSystem(&ModelSystemConfig{RootDirectory: root}, am)
	require.NoError(t, err)
	return ms, root
}

func writeTestModel(t *testing.T, path string) {
	t.Helper()
	bones := []*resources.Bone{
		{Name: "root", Index: 0, ParentIndex: resources.NoParent, ChildrenIndices: []int{1}, ToParentTransform: math.NewMat4Identity(), OffsetTransform: math.NewMat4Identity()},
		{Name: "tip", Index: 1, ParentIndex: 0, ToParentTransform: math.NewMat4Translation(math.NewVec3(0, 1, 0)), OffsetTransform: math.NewMat4Identity()},
	}
	skeleton, err := resources.NewSkeleton(bones, 0)
	require.NoError(t, err)

	model := &resources.Model{
		MeshData: []resources.MeshData{{Mesh: resources.Mesh{
			Vertices: make([]math.Vertex, 3),
			Indices:  []uint32{0, 1, 2},
		}}},
		MaterialData: []resources.MaterialData{{Material: resources.DefaultMaterial(), DiffuseMapName: "skin.png"}},
		Skeleton:     skeleton,
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, loaders.SaveModel(path, model))
	require.NoError(t, loaders.SaveMaterial(path, model))
	require.NoError(t, loaders.SaveSkeleton(path, model))
}

func writeTestAnimations(t *testing.T, path string, names ...string) {
	t.Helper()
	anim, err := animation.NewBuilder().AddPositionKey(math.NewVec3(0, 1, 0), 0).Build()
	require.NoError(t, err)

	model := &resources.Model{}
	for _, name := range names {
		model.AddAnimationClips(resources.AnimationClip{
			Name: name, TickDuration: 10, TicksPerSecond: 1,
			BoneAnimations: []*animation.Animation{nil, anim},
		})
	}
	require.NoError(t, loaders.SaveAnimations(path, model))
}

func TestLoadModelCachesByPath(t *testing.T) {
	ms, root := newModelSystem(t)
	writeTestModel(t, filepath.Join(root, "robot", "robot.model"))

	id := ms.LoadModel("robot/robot.model")
	assert.Equal(t, ms.GetModelID("robot/robot.model"), id)
	model := ms.GetModel(id)
	require.NotNil(t, model)
	assert.Len(t, model.MeshData, 1)
	assert.Len(t, model.MaterialData, 1)
	require.NotNil(t, model.Skeleton)
	assert.Equal(t, 2, model.Skeleton.BoneCount())
	assert.Empty(t, model.AnimationClips)

	// the second load does not touch disk
	require.NoError(t, os.Remove(filepath.Join(root, "robot", "robot.model")))
	again := ms.LoadModel("robot/robot.model")
	assert.Equal(t, id, again)
	assert.Same(t, model, ms.GetModel(again))
	assert.Equal(t, 1, ms.Count())

	// the id hashes the cleaned path
	assert.Equal(t, id, ms.GetModelID("robot/./robot.model"))
	assert.Equal(t, id, ms.GetModelID(filepath.Join(root, "robot", "robot.model")))
	assert.NotEqual(t, id, ms.GetModelID("robot/other.model"))
}

func TestLoadModelPicksUpSiblingAnimationSet(t *testing.T) {
	ms, root := newModelSystem(t)
	path := filepath.Join(root, "robot.model")
	writeTestModel(t, path)
	writeTestAnimations(t, path, "idle")

	model := ms.GetModel(ms.LoadModel("robot.model"))
	require.NotNil(t, model)
	require.Len(t, model.AnimationClips, 1)
	assert.Equal(t, "idle", model.AnimationClips[0].Name)

	// added sets start after the sibling clips
	writeTestAnimations(t, filepath.Join(root, "anims", "walk.animset"), "walk")
	require.NoError(t, ms.AddAnimation(ms.GetModelID("robot.model"), "anims/walk"))
	require.Len(t, model.AnimationClips, 2)
	assert.Equal(t, "idle", model.AnimationClips[0].Name)
	assert.Equal(t, "walk", model.AnimationClips[1].Name)
}

func TestLoadModelMissingFilesGivesEmptyModel(t *testing.T) {
	ms, _ := newModelSystem(t)

	id := ms.LoadModel("nothing/here.model")
	model := ms.GetModel(id)
	require.NotNil(t, model)
	assert.Empty(t, model.MeshData)
	assert.Nil(t, model.Skeleton)
}

func TestLoadModelSkipsMalformedSibling(t *testing.T) {
	ms, root := newModelSystem(t)
	path := filepath.Join(root, "robot.model")
	writeTestModel(t, path)
	require.NoError(t, os.WriteFile(loaders.WithExtension(path, loaders.SkeletonExtension), []byte("BoneCount: x\n"), 0o644))

	model := ms.GetModel(ms.LoadModel("robot.model"))
	require.NotNil(t, model)
	assert.Len(t, model.MeshData, 1)
	assert.Nil(t, model.Skeleton)
}

func TestAddAnimation(t *testing.T) {
	ms, root := newModelSystem(t)
	writeTestModel(t, filepath.Join(root, "robot.model"))
	writeTestAnimations(t, filepath.Join(root, "anims", "walk.animset"), "walk", "run")
	writeTestAnimations(t, filepath.Join(root, "anims", "jump.animset"), "jump")

	id := ms.LoadModel("robot.model")
	require.NoError(t, ms.AddAnimation(id, "anims/walk.animset"))
	require.NoError(t, ms.AddAnimation(id, "anims/jump"))

	model := ms.GetModel(id)
	require.Len(t, model.AnimationClips, 3)
	assert.Equal(t, "jump", model.AnimationClips[2].Name)
	assert.NotNil(t, model.AnimationClips[0].BoneAnimation(1))
	assert.Nil(t, model.AnimationClips[0].BoneAnimation(0))

	err := ms.AddAnimation(resources.ModelID(42), "anims/walk.animset")
	assert.ErrorIs(t, err, core.ErrModelNotFound)
	assert.Nil(t, ms.GetModel(resources.ModelID(42)))
}

func TestModelSystemShutdown(t *testing.T) {
	ms, root := newModelSystem(t)
	writeTestModel(t, filepath.Join(root, "robot.model"))
	id := ms.LoadModel("robot.model")

	require.NoError(t, ms.Shutdown())
	assert.Nil(t, ms.GetModel(id))
	assert.Zero(t, ms.Count())
	assert.ErrorIs(t, ms.Shutdown(), core.ErrAlreadyShutdown)
}

func writeImage(t *testing.T, path string, encode func(io.Writer, image.Image) error, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func TestTextureReferenceCounting(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "skin.png"), png.Encode, 4, 2)
	ts, err := NewTextureSystem(&TextureSystemConfig{RootDirectory: root})
	require.NoError(t, err)

	id := ts.LoadTexture("skin.png", true)
	require.NotEqual(t, resources.InvalidTextureID, id)
	assert.Equal(t, id, ts.LoadTexture("skin.png", true))
	assert.Equal(t, id, ts.LoadTexture(filepath.Join(root, "skin.png"), false))

	texture := ts.GetTexture(id)
	require.NotNil(t, texture)
	assert.Equal(t, 3, texture.ReferenceCount)
	assert.Equal(t, 4, texture.Width)
	assert.Equal(t, 2, texture.Height)
	assert.Equal(t, resources.TextureFormat("png"), texture.Format)

	ts.ReleaseTexture(id)
	ts.ReleaseTexture(id)
	assert.Equal(t, 1, ts.Count())
	ts.ReleaseTexture(id)
	assert.Zero(t, ts.Count())
	assert.Nil(t, ts.GetTexture(id))

	// releasing an unknown texture is harmless
	ts.ReleaseTexture(id)
	assert.Equal(t, resources.InvalidTextureID, ts.LoadTexture("", true))
}

func TestTextureDecodersAndMissingFiles(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "bump.bmp"), bmp.Encode, 8, 8)
	ts, err := NewTextureSystem(&TextureSystemConfig{RootDirectory: root})
	require.NoError(t, err)

	bumpTex := ts.GetTexture(ts.LoadTexture("bump.bmp", true))
	require.NotNil(t, bumpTex)
	assert.Equal(t, resources.TextureFormat("bmp"), bumpTex.Format)
	assert.Equal(t, 8, bumpTex.Width)

	missing := ts.GetTexture(ts.LoadTexture("missing.png", true))
	require.NotNil(t, missing)
	assert.Zero(t, missing.Width)
	assert.Equal(t, 1, missing.ReferenceCount)

	assert.Equal(t, 2, ts.Count())
	require.NoError(t, ts.Shutdown())
	assert.Zero(t, ts.Count())
}

func TestSystemManager(t *testing.T) {
	config := core.DefaultConfig()
	config.Assets.Root = t.TempDir()
	config.Assets.Watch = false

	sm, err := NewSystemManager(config)
	require.NoError(t, err)
	assert.NotNil(t, sm.AssetManager())
	assert.Equal(t, filepath.Join(config.Assets.Root, "models"), sm.ModelSystem().Config.RootDirectory)
	assert.Equal(t, filepath.Join(config.Assets.Root, "textures"), sm.TextureSystem().Config.RootDirectory)
	assert.Equal(t, config.Assets.Workers, sm.JobSystem().Workers())
	require.NoError(t, sm.Shutdown())
}

func TestJobSystem(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)

	js, err := NewJobSystem(3, 2)
	require.NoError(t, err)

	var mutex sync.Mutex
	completed, failed, finished := 0, 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		require.NoError(t, js.Submit(JobTask{
			Name: "job",
			OnStart: func() error {
				if i%2 == 0 {
					return errors.New("even")
				}
				return nil
			},
			OnComplete: func() {
				mutex.Lock()
				completed++
				mutex.Unlock()
			},
			OnFailure: func(err error) {
				mutex.Lock()
				failed++
				mutex.Unlock()
			},
			OnCompletionCallback: func() {
				mutex.Lock()
				finished++
				mutex.Unlock()
				wg.Done()
			},
		}))
	}
	wg.Wait()
	assert.Equal(t, 5, completed)
	assert.Equal(t, 5, failed)
	assert.Equal(t, 10, finished)

	require.NoError(t, js.Shutdown())
	assert.ErrorIs(t, js.Submit(JobTask{Name: "late", OnStart: func() error { return nil }}), core.ErrAlreadyShutdown)
	assert.ErrorIs(t, js.Shutdown(), core.ErrAlreadyShutdown)
}

func TestLoadModelsOnJobSystem(t *testing.T) {
	ms, root := newModelSystem(t)
	writeTestModel(t, filepath.Join(root, "a", "a.model"))
	writeTestModel(t, filepath.Join(root, "b", "b.model"))

	js, err := NewJobSystem(2, 0)
	require.NoError(t, err)
	defer js.Shutdown()

	paths := []string{"a/a.model", "b/b.model", "a/./a.model", "c/missing.model"}
	ids := ms.LoadModels(paths, js)
	require.Len(t, ids, 4)
	assert.Equal(t, ids[0], ids[2])
	assert.Equal(t, 3, ms.Count())
	for i, id := range ids {
		assert.Equal(t, ms.GetModelID(paths[i]), id)
		assert.NotNil(t, ms.GetModel(id))
	}
	assert.NotNil(t, ms.GetModel(ids[1]).Skeleton)

	// a closed pool falls back to loading in place
	require.NoError(t, js.Shutdown())
	writeTestModel(t, filepath.Join(root, "d", "d.model"))
	late := ms.LoadModels([]string{"d/d.model"}, js)
	assert.NotNil(t, ms.GetModel(late[0]))
}

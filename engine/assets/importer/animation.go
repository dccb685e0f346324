package importer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/marionette/engine/animation"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// ticks of imported clips are seconds
const importedTicksPerSecond = 1

type boneTrack struct {
	builder                            *animation.Builder
	hasPosition, hasRotation, hasScale bool
}

func (im *importer) importAnimations() error {
	if len(im.doc.Animations) == 0 {
		return nil
	}
	if im.model.Skeleton == nil {
		core.LogWarn("document has %d animations but no skin, animations skipped", len(im.doc.Animations))
		return nil
	}
	for i, anim := range im.doc.Animations {
		clip, err := im.importAnimation(i, anim)
		if err != nil {
			return errors.Wrapf(err, "animation %d", i)
		}
		im.model.AddAnimationClips(clip)
	}
	return nil
}

func (im *importer) importAnimation(number int, anim *gltf.Animation) (resources.AnimationClip, error) {
	clip := resources.AnimationClip{
		Name:           anim.Name,
		TicksPerSecond: importedTicksPerSecond,
		BoneAnimations: make([]*animation.Animation, im.model.Skeleton.BoneCount()),
	}
	if clip.Name == "" {
		clip.Name = fmt.Sprintf("clip%d", number)
	}

	tracks := map[int]*boneTrack{}
	for c, channel := range anim.Channels {
		node, ok := index(channel.Target.Node)
		if !ok {
			continue
		}
		bone, ok := im.nodeToBone[node]
		if !ok {
			core.LogDebug("animation %q channel %d targets node %d which is not a joint", clip.Name, c, node)
			continue
		}
		samplerIndex, ok := index(channel.Sampler)
		if !ok || samplerIndex >= len(anim.Samplers) {
			return clip, errors.Errorf("channel %d has no sampler", c)
		}
		sampler := anim.Samplers[samplerIndex]

		times, err := im.readTimes(sampler)
		if err != nil {
			return clip, errors.Wrapf(err, "channel %d", c)
		}
		for _, t := range times {
			if t > clip.TickDuration {
				clip.TickDuration = t
			}
		}

		track, ok := tracks[bone]
		if !ok {
			track = &boneTrack{builder: animation.NewBuilder()}
			tracks[bone] = track
		}
		if err := im.addKeys(track, bone, channel.Target.Path, sampler, times); err != nil {
			return clip, errors.Wrapf(err, "channel %d", c)
		}
	}

	for bone, track := range tracks {
		im.fillBindPose(track, bone)
		anim, err := track.builder.Build()
		if err != nil {
			return clip, errors.Wrapf(err, "bone %q", im.model.Skeleton.Bone(bone).Name)
		}
		clip.BoneAnimations[bone] = anim
	}
	return clip, nil
}

func (im *importer) readTimes(sampler *gltf.AnimationSampler) ([]float32, error) {
	input, ok := index(sampler.Input)
	if !ok || input >= len(im.doc.Accessors) {
		return nil, errors.New("sampler has no input accessor")
	}
	data, err := modeler.ReadAccessor(im.doc, im.doc.Accessors[input], nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read key times")
	}
	times, ok := data.([]float32)
	if !ok {
		return nil, errors.Errorf("key times have unsupported type %T", data)
	}
	return times, nil
}

// outputs returns one value per key. Cubic spline samplers store an in
// tangent, the value and an out tangent per key; only the value is kept
// and the curve becomes linear.
func outputs[T any](values []T, keys int, interpolation gltf.Interpolation) ([]T, error) {
	if interpolation == gltf.InterpolationCubicSpline {
		if len(values) < keys*3 {
			return nil, errors.Errorf("%d cubic spline values for %d keys", len(values), keys)
		}
		out := make([]T, keys)
		for i := range out {
			out[i] = values[i*3+1]
		}
		return out, nil
	}
	if len(values) < keys {
		return nil, errors.Errorf("%d values for %d keys", len(values), keys)
	}
	return values[:keys], nil
}

func (im *importer) addKeys(track *boneTrack, bone int, path gltf.TRSProperty, sampler *gltf.AnimationSampler, times []float32) error {
	output, ok := index(sampler.Output)
	if !ok || output >= len(im.doc.Accessors) {
		return errors.New("sampler has no output accessor")
	}
	if sampler.Interpolation == gltf.InterpolationStep {
		core.LogWarn("step interpolation of bone %d is imported as linear", bone)
	}
	data, err := modeler.ReadAccessor(im.doc, im.doc.Accessors[output], nil)
	if err != nil {
		return errors.Wrap(err, "failed to read key values")
	}

	switch path {
	case gltf.TRSTranslation, gltf.TRSScale:
		raw, ok := data.([][3]float32)
		if !ok {
			return errors.Errorf("%v keys have unsupported type %T", path, data)
		}
		values, err := outputs(raw, len(times), sampler.Interpolation)
		if err != nil {
			return err
		}
		for i, v := range values {
			if path == gltf.TRSTranslation {
				t, _, _ := im.rootBaked(bone, mgl32.Vec3(v).Mul(im.opts.Scale), mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
				track.builder.AddPositionKey(vec3(t), times[i])
			} else {
				_, _, s := im.rootBaked(bone, mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3(v))
				track.builder.AddScaleKey(vec3(s), times[i])
			}
		}
		if path == gltf.TRSTranslation {
			track.hasPosition = true
		} else {
			track.hasScale = true
		}
	case gltf.TRSRotation:
		raw, ok := data.([][4]float32)
		if !ok {
			return errors.Errorf("rotation keys have unsupported type %T", data)
		}
		values, err := outputs(raw, len(times), sampler.Interpolation)
		if err != nil {
			return err
		}
		for i, v := range values {
			_, r, _ := im.rootBaked(bone, mgl32.Vec3{}, quat(v), mgl32.Vec3{1, 1, 1})
			track.builder.AddRotationKey(quaternion(r), times[i])
		}
		track.hasRotation = true
	default:
		core.LogDebug("channel path %v of bone %d ignored", path, bone)
	}
	return nil
}

// fillBindPose gives every channel the bone does not animate a single key
// holding the bind pose, so partially animated bones keep their rest
// transform.
func (im *importer) fillBindPose(track *boneTrack, bone int) {
	t, r, s := im.nodeTRS(im.doc.Nodes[im.boneNodes[bone]])
	t, r, s = im.rootBaked(bone, t, r, s)
	if !track.hasPosition {
		track.builder.AddPositionKey(vec3(t), 0)
	}
	if !track.hasRotation {
		track.builder.AddRotationKey(quaternion(r), 0)
	}
	if !track.hasScale {
		track.builder.AddScaleKey(vec3(s), 0)
	}
}

// rootBaked moves the transform of the root joint's non-joint ancestors into
// the root's own keys, matching its bind transform. The ancestors must not
// have non-uniform scale.
func (im *importer) rootBaked(bone int, t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	if bone != im.model.Skeleton.RootIndex() || im.rootParentWorld == mgl32.Ident4() {
		return t, r, s
	}
	pt, pr, ps := decompose(im.rootParentWorld)
	t = pt.Add(pr.Rotate(mgl32.Vec3{t[0] * ps[0], t[1] * ps[1], t[2] * ps[2]}))
	return t, pr.Mul(r).Normalize(), mgl32.Vec3{s[0] * ps[0], s[1] * ps[1], s[2] * ps[2]}
}

func vec3(v mgl32.Vec3) math.Vec3 {
	return math.NewVec3(v[0], v[1], v[2])
}

func quaternion(q mgl32.Quat) math.Quaternion {
	return math.Quaternion{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

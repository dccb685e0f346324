package loaders

import (
	"github.com/spaghettifunk/marionette/engine/animation"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// AnimationSetLoader reads and writes the animation clips of a model.
type AnimationSetLoader struct{}

// Load appends the clips of the file to the model.
func (AnimationSetLoader) Load(path string, model *resources.Model) error {
	return LoadAnimations(path, model)
}

func (AnimationSetLoader) Save(path string, model *resources.Model) error {
	return SaveAnimations(path, model)
}

// SaveAnimations writes every clip of model to path with its extension
// replaced by .animset. Bones a clip does not animate are written as <NONE>.
func SaveAnimations(path string, model *resources.Model) error {
	if len(model.AnimationClips) == 0 {
		return nil
	}

	return writeFile(WithExtension(path, AnimationSetExtension), func(tw *textWriter) {
		tw.printf("AnimClipCount: %d\n", len(model.AnimationClips))
		for _, clip := range model.AnimationClips {
			tw.printf("Name: %s\n", clip.Name)
			tw.printf("TickDuration: %s\n", formatFloat(clip.TickDuration))
			tw.printf("TicksPerSecond: %s\n", formatFloat(clip.TicksPerSecond))
			tw.printf("BoneAnimationCount: %d\n", len(clip.BoneAnimations))
			for _, anim := range clip.BoneAnimations {
				if anim == nil {
					tw.line(noneTag)
					continue
				}
				tw.line(animationTag)
				writeAnimation(tw, anim)
			}
		}
	})
}

func writeAnimation(tw *textWriter, anim *animation.Animation) {
	tw.printf("PositionKeyCount: %d\n", len(anim.PositionKeys()))
	for _, k := range anim.PositionKeys() {
		tw.floats(k.Key.X, k.Key.Y, k.Key.Z, k.Time)
	}
	tw.printf("RotationKeyCount: %d\n", len(anim.RotationKeys()))
	for _, k := range anim.RotationKeys() {
		tw.floats(k.Key.X, k.Key.Y, k.Key.Z, k.Key.W, k.Time)
	}
	tw.printf("ScaleKeyCount: %d\n", len(anim.ScaleKeys()))
	for _, k := range anim.ScaleKeys() {
		tw.floats(k.Key.X, k.Key.Y, k.Key.Z, k.Time)
	}
}

// LoadAnimations appends the clips of the .animset file next to path to
// model. A missing file adds nothing.
func LoadAnimations(path string, model *resources.Model) error {
	var clips []resources.AnimationClip

	found, err := readFile(WithExtension(path, AnimationSetExtension), func(tr *textReader) error {
		clipCount, err := tr.countField("AnimClipCount")
		if err != nil {
			return err
		}
		for c := 0; c < clipCount; c++ {
			clip, err := readClip(tr)
			if err != nil {
				return err
			}
			clips = append(clips, clip)
		}
		return nil
	})
	if err != nil || !found {
		return err
	}

	model.AddAnimationClips(clips...)
	return nil
}

func readClip(tr *textReader) (resources.AnimationClip, error) {
	var err error
	clip := resources.AnimationClip{}

	if clip.Name, err = tr.nameField("Name"); err != nil {
		return clip, err
	}
	if clip.TickDuration, err = tr.floatField("TickDuration"); err != nil {
		return clip, err
	}
	if clip.TicksPerSecond, err = tr.floatField("TicksPerSecond"); err != nil {
		return clip, err
	}
	boneCount, err := tr.countField("BoneAnimationCount")
	if err != nil {
		return clip, err
	}

	clip.BoneAnimations = make([]*animation.Animation, 0, min(boneCount, 1024))
	for b := 0; b < boneCount; b++ {
		tag, err := tr.next()
		if err != nil {
			return clip, err
		}
		switch tag {
		case noneTag:
			clip.BoneAnimations = append(clip.BoneAnimations, nil)
		case animationTag:
			anim, err := readAnimation(tr)
			if err != nil {
				return clip, err
			}
			clip.BoneAnimations = append(clip.BoneAnimations, anim)
		default:
			return clip, tr.errorf("expected %s or %s, got %q", noneTag, animationTag, tag)
		}
	}
	return clip, nil
}

func readAnimation(tr *textReader) (*animation.Animation, error) {
	builder := animation.NewBuilder()

	count, err := tr.countField("PositionKeyCount")
	if err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		v, err := tr.floats(4)
		if err != nil {
			return nil, err
		}
		builder.AddPositionKey(math.NewVec3(v[0], v[1], v[2]), v[3])
	}

	if count, err = tr.countField("RotationKeyCount"); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		v, err := tr.floats(5)
		if err != nil {
			return nil, err
		}
		builder.AddRotationKey(math.Quaternion{X: v[0], Y: v[1], Z: v[2], W: v[3]}, v[4])
	}

	if count, err = tr.countField("ScaleKeyCount"); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		v, err := tr.floats(4)
		if err != nil {
			return nil, err
		}
		builder.AddScaleKey(math.NewVec3(v[0], v[1], v[2]), v[3])
	}

	anim, err := builder.Build()
	if err != nil {
		return nil, tr.errorf("%v", err)
	}
	return anim, nil
}

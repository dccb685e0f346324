package animation

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
)

// Builder assembles an Animation one key at a time. Keys of a channel must
// be added in non-decreasing time order; the first violation is kept and
// reported by Build. A builder can be built once.
type Builder struct {
	animation *Animation
	err       error
}

func NewBuilder() *Builder {
	return &Builder{animation: &Animation{}}
}

func (b *Builder) AddPositionKey(position math.Vec3, time float32) *Builder {
	if b.check("position", lastTime(b.animation.positionKeys), time) {
		b.animation.positionKeys = append(b.animation.positionKeys, Keyframe[math.Vec3]{Key: position, Time: time})
		b.extend(time)
	}
	return b
}

func (b *Builder) AddRotationKey(rotation math.Quaternion, time float32) *Builder {
	if b.check("rotation", lastTime(b.animation.rotationKeys), time) {
		b.animation.rotationKeys = append(b.animation.rotationKeys, Keyframe[math.Quaternion]{Key: rotation, Time: time})
		b.extend(time)
	}
	return b
}

func (b *Builder) AddScaleKey(scale math.Vec3, time float32) *Builder {
	if b.check("scale", lastTime(b.animation.scaleKeys), time) {
		b.animation.scaleKeys = append(b.animation.scaleKeys, Keyframe[math.Vec3]{Key: scale, Time: time})
		b.extend(time)
	}
	return b
}

// Build returns the finished animation. It fails when a key was added out of
// order, when no key was added at all, or when the builder was already built.
func (b *Builder) Build() (*Animation, error) {
	if b.animation == nil {
		return nil, core.ErrBuilderConsumed
	}
	if b.err != nil {
		return nil, b.err
	}
	a := b.animation
	if len(a.positionKeys) == 0 && len(a.rotationKeys) == 0 && len(a.scaleKeys) == 0 {
		return nil, core.ErrEmptyAnimation
	}
	b.animation = nil
	return a, nil
}

func (b *Builder) check(channel string, last *float32, time float32) bool {
	if b.err != nil || b.animation == nil {
		return false
	}
	if last != nil && time < *last {
		b.err = fmt.Errorf("%s key at %v after %v: %w", channel, time, *last, core.ErrKeyframeOrder)
		return false
	}
	return true
}

func (b *Builder) extend(time float32) {
	b.animation.duration = max(b.animation.duration, time)
}

func lastTime[T math.Vec3 | math.Quaternion](keys []Keyframe[T]) *float32 {
	if len(keys) == 0 {
		return nil
	}
	return &keys[len(keys)-1].Time
}

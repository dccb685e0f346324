package animator

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// NoClip is the clip index of an idle animator.
const NoClip = -1

// ModelProvider resolves model ids. The model system implements it.
type ModelProvider interface {
	GetModel(id resources.ModelID) *resources.Model
}

/**
 * @brief Playback state of one clip on one model. Several animators can
 * share a model, each keeps its own tick.
 */
type Animator struct {
	id      string
	models  ModelProvider
	modelID resources.ModelID

	clipIndex int
	tick      float32
	looping   bool
}

func NewAnimator(models ModelProvider) *Animator {
	return &Animator{
		id:        core.NewIdentifier(),
		models:    models,
		clipIndex: NoClip,
	}
}

// Initialize binds the animator to a model and makes it idle.
func (a *Animator) Initialize(id resources.ModelID) {
	a.modelID = id
	a.clipIndex = NoClip
	a.tick = 0
	a.looping = false
}

// PlayAnimation starts clipIndex from tick 0. An index the model does not
// have is rejected and the current state is kept.
func (a *Animator) PlayAnimation(clipIndex int, looping bool) error {
	if count := a.GetAnimationCount(); clipIndex < 0 || clipIndex >= count {
		return fmt.Errorf("clip %d of %d: %w", clipIndex, count, core.ErrInvalidClipIndex)
	}
	a.clipIndex = clipIndex
	a.looping = looping
	a.tick = 0
	return nil
}

// Stop makes the animator idle, bones fall back to their bind pose.
func (a *Animator) Stop() {
	a.clipIndex = NoClip
	a.tick = 0
}

/**
 * @brief Advances playback by deltaTime seconds. A looping clip wraps as
 * many times as needed, any other clip stops at its last tick.
 */
func (a *Animator) Update(deltaTime float32) {
	clip := a.clip()
	if clip == nil {
		return
	}

	a.tick += clip.TicksPerSecond * deltaTime
	if clip.TickDuration <= 0 {
		a.tick = 0
		return
	}
	if a.looping {
		a.tick = wrapTick(a.tick, clip.TickDuration)
		return
	}
	a.tick = math.Clamp(a.tick, 0, clip.TickDuration)
}

// maxWrapSteps bounds the subtraction loop of wrapTick. Past it, or for a
// negative tick, the remainder is computed directly.
const maxWrapSteps = 8

// wrapTick brings tick into [0, duration).
func wrapTick(tick, duration float32) float32 {
	for i := 0; i < maxWrapSteps && tick >= duration; i++ {
		tick -= duration
	}
	if tick >= 0 && tick < duration {
		return tick
	}
	tick = math32.Mod(tick, duration)
	if tick < 0 {
		tick += duration
	}
	if tick < 0 || tick >= duration {
		return 0
	}
	return tick
}

// IsFinished reports whether a non-looping clip reached its end.
func (a *Animator) IsFinished() bool {
	if a.looping {
		return false
	}
	clip := a.clip()
	if clip == nil {
		return false
	}
	return a.tick >= clip.TickDuration
}

// GetAnimationCount returns the number of clips of the bound model.
func (a *Animator) GetAnimationCount() int {
	model := a.model()
	if model == nil {
		return 0
	}
	return len(model.AnimationClips)
}

/**
 * @brief Returns the animated parent-relative transform of bone at the
 * current tick. ok is false when the animator is idle or the clip does not
 * animate that bone.
 */
func (a *Animator) GetToParentTransform(bone *resources.Bone) (math.Mat4, bool) {
	clip := a.clip()
	if clip == nil || bone == nil {
		return math.Mat4{}, false
	}
	anim := clip.BoneAnimation(bone.Index)
	if anim == nil {
		return math.Mat4{}, false
	}
	return anim.Matrix(a.tick), true
}

func (a *Animator) ID() string {
	return a.id
}

func (a *Animator) ModelID() resources.ModelID {
	return a.modelID
}

func (a *Animator) ClipIndex() int {
	return a.clipIndex
}

func (a *Animator) Tick() float32 {
	return a.tick
}

func (a *Animator) IsLooping() bool {
	return a.looping
}

// IsPlaying reports whether a clip is selected.
func (a *Animator) IsPlaying() bool {
	return a.clipIndex != NoClip
}

func (a *Animator) model() *resources.Model {
	if a.models == nil {
		return nil
	}
	return a.models.GetModel(a.modelID)
}

func (a *Animator) clip() *resources.AnimationClip {
	if a.clipIndex == NoClip {
		return nil
	}
	model := a.model()
	if model == nil {
		return nil
	}
	return model.AnimationClip(a.clipIndex)
}

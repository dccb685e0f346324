package testbed

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine"
	"github.com/spaghettifunk/marionette/engine/animator"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/renderer"
	"github.com/spaghettifunk/marionette/engine/renderer/components"
	"github.com/spaghettifunk/marionette/engine/renderer/debug"
)

// TestGame loads the configured model, plays one of its clips and renders
// it every frame.
type TestGame struct {
	*engine.Game
}

type gameState struct {
	group    *components.RenderGroup
	animator *animator.Animator
	skeleton *debug.SimpleDraw
	speed    float32
	// rotation around the y axis, radians per second
	spin float32
}

func NewTestGame(config *core.Config) (*TestGame, error) {
	if config == nil {
		config = core.DefaultConfig()
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: engine.NewApplicationConfig(config),
			State: &gameState{
				speed: config.Animation.Speed,
				spin:  math.K_PI / 8,
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	config := g.ApplicationConfig.Config
	state := g.state()

	if config.Animation.Model == "" {
		return fmt.Errorf("no model configured, set animation.model")
	}

	models := g.SystemManager.ModelSystem()
	if len(config.Assets.Preload) > 0 {
		ids := models.LoadModels(config.Assets.Preload, g.SystemManager.JobSystem())
		core.LogInfo("preloaded %d models", len(ids))
	}
	group := components.NewRenderGroup(models, g.SystemManager.TextureSystem())
	if err := group.Initialize(config.Animation.Model); err != nil {
		return err
	}
	for _, set := range config.Animation.AnimationSets {
		if err := models.AddAnimation(group.ModelID, set); err != nil {
			core.LogWarn("animation set %s not attached: %s", set, err)
		}
	}

	state.group = group
	if model := group.Model(); model.Skeleton != nil {
		state.animator = animator.NewAnimator(models)
		group.SetAnimator(state.animator)

		if err := state.animator.PlayAnimation(config.Animation.Clip, config.Animation.Looping); err != nil {
			core.LogWarn("model has %d clips, clip %d not played: %s", state.animator.GetAnimationCount(), config.Animation.Clip, err)
		} else {
			clip := model.AnimationClip(config.Animation.Clip)
			core.LogInfo("playing clip %q (%.2f ticks at %.2f ticks/s)", clip.Name, clip.TickDuration, clip.TicksPerSecond)
		}
	}

	if config.Renderer.DebugSkeleton {
		state.skeleton = debug.NewSimpleDraw(config.Renderer.DebugVertexCount)
		g.Renderer.SetSkeletonDrawer(state.skeleton)
	}
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	dt := float32(deltaTime)

	if state.animator != nil {
		state.animator.Update(dt * state.speed)
	}
	rotation := math.NewQuatFromAxisAngle(math.NewVec3Up(), state.spin*dt, true)
	state.group.Transform.Rotate(rotation)
	return nil
}

func (g *TestGame) Render(packet *renderer.RenderPacket, deltaTime float64) error {
	state := g.state()
	if state.skeleton != nil {
		if lines := len(state.skeleton.Lines()); lines > 0 {
			core.LogDebug("skeleton: %d debug lines", lines)
		}
		state.skeleton.Clear()
	}
	packet.Groups = append(packet.Groups, state.group)
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	if state.group != nil {
		state.group.Terminate()
	}
	core.LogInfo("testbed shut down")
	return nil
}

// Animator returns the animator of the loaded model, nil when the model has
// no skeleton.
func (g *TestGame) Animator() *animator.Animator {
	return g.state().animator
}

// Group returns the render group of the loaded model.
func (g *TestGame) Group() *components.RenderGroup {
	return g.state().group
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer"
	"github.com/spaghettifunk/marionette/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released every system
	EngineStageShutdown
)

// metrics are logged every that many frames
const metricsLogInterval = 60

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *core.Config
	systemManager *systems.SystemManager
	renderer      *renderer.Renderer
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64
	frameCount    uint64
}

/**
 * @brief Creates the engine for a game. The systems are built from the game's
 * configuration; backend may be nil, in which case the backend named in the
 * configuration is created.
 */
func New(g *Game, backend renderer.Backend) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("game has no application config")
	}
	config := g.ApplicationConfig.Config
	if config == nil {
		config = core.DefaultConfig()
		g.ApplicationConfig.Config = config
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	if backend == nil {
		rt, err := renderer.ParseRendererType(config.Renderer.Backend)
		if err != nil {
			return nil, err
		}
		if backend, err = renderer.NewBackend(rt); err != nil {
			return nil, err
		}
	}

	sm, err := systems.NewSystemManager(config)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}

	r := renderer.New(backend)
	g.SystemManager = sm
	g.Renderer = r

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        config,
		systemManager: sm,
		renderer:      r,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
	}, nil
}

func (e *Engine) Initialize() error {
	core.Assert(e.currentStage == EngineStageUninitialized, "engine initialized twice")
	e.currentStage = EngineStageInitializing

	if err := e.renderer.Initialize(e.gameInstance.ApplicationConfig.Name); err != nil {
		return err
	}
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized")
	return nil
}

/**
 * @brief Runs the frame loop until ctx is cancelled, the frame limit is
 * reached or a game callback fails. Every frame runs the update pass then the
 * render pass, paced by a ticker at the target frame rate.
 */
func (e *Engine) Run(ctx context.Context) error {
	core.Assert(e.currentStage == EngineStageInitialized, "engine must be initialized before Run")
	e.currentStage = EngineStageRunning
	defer func() {
		if e.currentStage == EngineStageRunning {
			e.currentStage = EngineStageInitialized
		}
	}()

	period := time.Duration(float64(time.Second) / e.config.Loop.TargetFPS)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	e.clock.Start()
	e.lastTime = e.clock.Elapsed()

	for {
		select {
		case <-ctx.Done():
			core.LogInfo("engine stopped after %d frames", e.frameCount)
			return nil
		case <-ticker.C:
		}

		if err := e.frame(); err != nil {
			return err
		}
		if limit := e.config.Loop.MaxFrames; limit > 0 && e.frameCount >= limit {
			core.LogInfo("frame limit of %d reached", limit)
			return nil
		}
	}
}

func (e *Engine) frame() error {
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	frameStart := time.Now()

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down.")
			return err
		}
	}

	packet := &renderer.RenderPacket{DeltaTime: delta}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(packet, delta); err != nil {
			core.LogError("Game render failed, shutting down.")
			return err
		}
	}
	if err := e.renderer.DrawFrame(packet); err != nil {
		return err
	}

	e.metrics.Update(time.Since(frameStart).Seconds())
	e.frameCount++
	if e.frameCount%metricsLogInterval == 0 {
		fps, frameTime := e.metrics.Frame()
		core.LogDebug("frame %d: %.0f fps, %.3fms average frame time", e.frameCount, fps, frameTime)
	}

	e.lastTime = currentTime
	return nil
}

// Shutdown releases the game and every system. Calling it twice is a
// programming error.
func (e *Engine) Shutdown() error {
	core.Assert(e.currentStage != EngineStageShuttingDown && e.currentStage != EngineStageShutdown, "engine already shut down")
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	errs = append(errs, e.renderer.Shutdown(), e.systemManager.Shutdown())

	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

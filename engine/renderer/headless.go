package renderer

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/containers"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
)

// frameHistorySize is the number of completed frames kept by History.
const frameHistorySize = 120

// FrameStats counts what a headless frame received.
type FrameStats struct {
	Draws       int
	BoneUploads int
	Bones       int
}

/**
 * @brief A backend without a device. It validates the frame protocol, keeps
 * the last uploaded bone palette and counts the work of every frame. The
 * testbed and the tests render through it.
 */
type HeadlessBackend struct {
	appName string
	inFrame bool
	frames  uint64

	current   FrameStats
	last      FrameStats
	lastBones []math.Mat4
	lastDraws []DrawCall
	history   *containers.RingQueue[FrameStats]
}

func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{
		history: containers.NewRingQueue[FrameStats](frameHistorySize),
	}
}

func (hb *HeadlessBackend) Initialize(appName string) error {
	hb.appName = appName
	core.LogInfo("headless renderer initialized for %s", appName)
	return nil
}

func (hb *HeadlessBackend) Shutdown() error {
	if hb.inFrame {
		return fmt.Errorf("headless renderer shut down inside a frame")
	}
	core.LogInfo("headless renderer shut down after %d frames", hb.frames)
	return nil
}

func (hb *HeadlessBackend) BeginFrame(deltaTime float64) error {
	if hb.inFrame {
		return fmt.Errorf("BeginFrame called twice without EndFrame")
	}
	hb.inFrame = true
	hb.current = FrameStats{}
	hb.lastDraws = hb.lastDraws[:0]
	return nil
}

func (hb *HeadlessBackend) EndFrame(deltaTime float64) error {
	if !hb.inFrame {
		return fmt.Errorf("EndFrame called without BeginFrame")
	}
	hb.inFrame = false
	hb.frames++
	hb.last = hb.current
	hb.history.Push(hb.current)
	core.LogDebug("frame %d: %d draws, %d bone uploads (%.2fms)", hb.frames, hb.last.Draws, hb.last.BoneUploads, deltaTime*1000)
	return nil
}

func (hb *HeadlessBackend) UploadBones(matrices []math.Mat4) error {
	if !hb.inFrame {
		return fmt.Errorf("bone upload outside a frame")
	}
	if len(matrices) > MaxBoneCount {
		return fmt.Errorf("%d bones: %w", len(matrices), core.ErrTooManyBones)
	}
	hb.current.BoneUploads++
	hb.current.Bones += len(matrices)
	hb.lastBones = append(hb.lastBones[:0], matrices...)
	return nil
}

func (hb *HeadlessBackend) Draw(call DrawCall) error {
	if !hb.inFrame {
		return fmt.Errorf("draw outside a frame")
	}
	hb.current.Draws++
	hb.lastDraws = append(hb.lastDraws, call)
	return nil
}

// Frames returns the number of completed frames.
func (hb *HeadlessBackend) Frames() uint64 {
	return hb.frames
}

// LastFrame returns the counters of the last completed frame.
func (hb *HeadlessBackend) LastFrame() FrameStats {
	return hb.last
}

// History returns the counters of the most recent frames, oldest first.
func (hb *HeadlessBackend) History() []FrameStats {
	return hb.history.Items()
}

// LastBones returns the last uploaded bone palette.
func (hb *HeadlessBackend) LastBones() []math.Mat4 {
	return hb.lastBones
}

// LastDraws returns the draw calls of the current or last frame.
func (hb *HeadlessBackend) LastDraws() []DrawCall {
	return hb.lastDraws
}

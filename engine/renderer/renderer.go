package renderer

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/animator"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/components"
)

type RendererType uint8

const (
	Headless RendererType = iota
	Vulkan
	DirectX
	Metal
	OpenGL
)

func (rt RendererType) String() string {
	switch rt {
	case Headless:
		return "headless"
	case Vulkan:
		return "vulkan"
	case DirectX:
		return "directx"
	case Metal:
		return "metal"
	case OpenGL:
		return "opengl"
	}
	return fmt.Sprintf("RendererType(%d)", rt)
}

// ParseRendererType maps a configuration name to a renderer type.
func ParseRendererType(name string) (RendererType, error) {
	for rt := Headless; rt <= OpenGL; rt++ {
		if rt.String() == name {
			return rt, nil
		}
	}
	return Headless, fmt.Errorf("unknown renderer type %q", name)
}

// RenderPacket is the work of one frame.
type RenderPacket struct {
	DeltaTime float64
	Groups    []*components.RenderGroup
}

type Renderer struct {
	backend  Backend
	skinning *SkinningEffect
}

// NewBackend creates the backend for a renderer type. Only the headless
// backend ships with the engine; device backends are provided by the host
// through New.
func NewBackend(rt RendererType) (Backend, error) {
	if rt == Headless {
		return NewHeadlessBackend(), nil
	}
	return nil, fmt.Errorf("renderer backend %s is not available", rt)
}

func New(backend Backend) *Renderer {
	return &Renderer{
		backend:  backend,
		skinning: NewSkinningEffect(backend, backend),
	}
}

func (r *Renderer) Initialize(appName string) error {
	return r.backend.Initialize(appName)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) Backend() Backend {
	return r.backend
}

// SetSkeletonDrawer enables debug drawing of animated skeletons.
func (r *Renderer) SetSkeletonDrawer(drawer animator.SkeletonDrawer) {
	r.skinning.SetSkeletonDrawer(drawer)
}

func (r *Renderer) DrawFrame(packet *RenderPacket) error {
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		core.LogError("%s", err)
		return err
	}
	for _, group := range packet.Groups {
		if err := r.skinning.Render(group); err != nil {
			core.LogError("failed to render group %s: %s", group.ID, err)
			// the frame still has to be closed
			if endErr := r.backend.EndFrame(packet.DeltaTime); endErr != nil {
				core.LogError("%s", endErr)
			}
			return err
		}
	}
	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}
	return nil
}

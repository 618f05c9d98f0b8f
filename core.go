package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Core owns the GPU device and every store built from a validated model. All
// methods must be called from the same goroutine; the type performs no
// locking of its own.
type Core struct {
	log     Logger
	gpu     *gpuState
	vm      *validatedModel
	shaders *ShaderServer

	res       *ResourceStore
	bindings  *BindingStore
	pipelines *PipelineStore
	windows   *WindowBinder
	frames    *FrameExecutor
}

type CoreOption func(*Core)

// WithLogger replaces the default logger.
func WithLogger(log Logger) CoreOption {
	return func(c *Core) { c.log = log }
}

// WithShaderServer supplies a shader server with custom sources already
// registered. Pipeline shaders are resolved through it during NewCore.
func WithShaderServer(s *ShaderServer) CoreOption {
	return func(c *Core) { c.shaders = s }
}

// WithDevice reuses existing wgpu objects instead of requesting new ones.
// The caller keeps ownership; Release leaves them untouched.
func WithDevice(instance *wgpu.Instance, adapter *wgpu.Adapter, device *wgpu.Device) CoreOption {
	return func(c *Core) {
		c.gpu = &gpuState{
			instance:     instance,
			adapter:      adapter,
			device:       device,
			queue:        device.GetQueue(),
			uniformAlign: uint64(device.GetLimits().Limits.MinUniformBufferOffsetAlignment),
			borrowed:     true,
		}
	}
}

// NewCore validates the model, acquires a device and builds all resources,
// bind groups and pipelines up front. The model must not be mutated
// afterwards.
func NewCore(model *Model, opts ...CoreOption) (*Core, error) {
	c := &Core{
		log:     NewDefaultLogger("rendergraph", false),
		shaders: NewShaderServer(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.gpu == nil {
		gpu, err := createGpuState(nil)
		if err != nil {
			return nil, err
		}
		c.gpu = gpu
	}
	gpu := c.gpu

	vm, err := validateModel(model, gpu.uniformAlign)
	if err != nil {
		gpu.release()
		return nil, err
	}
	c.vm = vm

	c.res, err = newResourceStore(gpu, vm, c.log)
	if err != nil {
		gpu.release()
		return nil, err
	}
	c.bindings, err = newBindingStore(gpu, vm, c.res)
	if err != nil {
		c.Release()
		return nil, err
	}
	c.pipelines, err = newPipelineStore(gpu, vm, c.bindings, c.shaders)
	if err != nil {
		c.Release()
		return nil, err
	}
	c.windows = newWindowBinder(gpu, vm, c.res, c.shaders, c.log)
	c.frames = newFrameExecutor(gpu, vm, c.res, c.bindings, c.pipelines, c.windows, c.log)

	c.log.Infof("core ready: %d textures, %d bind groups, %d pipelines, %d passes",
		len(model.Textures), len(model.BindGroups), len(model.Pipelines), len(model.Passes))
	return c, nil
}

// AddWindow attaches a native window to a window-source texture and returns
// the window name.
func (c *Core) AddWindow(source int, info WindowInfo) (string, error) {
	return c.windows.Attach(source, info)
}

// RemoveWindow detaches a window.
func (c *Core) RemoveWindow(name string) error {
	return c.windows.Detach(name)
}

// ResizeWindow reconfigures the window's swapchain. The source texture keeps
// its size; call ResizeAttachments to resize it.
func (c *Core) ResizeWindow(name string, width, height uint32) error {
	return c.windows.Resize(name, width, height)
}

// ResizeAttachments recreates the anchor texture and every texture
// transitively co-attached with it at the new size, then rebuilds the bind
// groups and window blits that reference the recreated textures.
func (c *Core) ResizeAttachments(anchor int, size Extent) error {
	touched, err := c.res.ResizeAttachments(anchor, size)
	if err != nil {
		return err
	}
	if len(touched) == 0 {
		return nil
	}
	if err := c.bindings.Rebuild(touched); err != nil {
		return err
	}
	return c.windows.RebindTouched(touched)
}

// WriteBuffer uploads data into the active buffer of the given role.
func (c *Core) WriteBuffer(role BufferRole, data []byte, offset uint64) error {
	return c.res.WriteBuffer(role, data, offset)
}

// WriteTexture uploads pixel data into a region of a writable texture.
func (c *Core) WriteTexture(texture int, region TextureRegion, mip uint32, layers LayerRange, layout TextureLayout, data []byte) error {
	return c.res.WriteTexture(texture, region, mip, layers, layout, data)
}

// InsertStock registers a labelled shadow resource that SwapStock can later
// flip in.
func (c *Core) InsertStock(ref StockRef, label string, initial []byte) error {
	return c.res.InsertStock(ref, label, initial)
}

// SwapStock flips the labelled stock's active slot and rebuilds whatever
// references the swapped resource.
func (c *Core) SwapStock(label string) error {
	ref, err := c.res.SwapStock(label)
	if err != nil {
		return err
	}
	switch ref.Kind {
	case StockBuffer:
		if ref.Role == BufferUniform {
			return c.bindings.RebuildUniform()
		}
		// Vertex, index and instance buffers are rebound every frame.
		return nil
	case StockTexture:
		touched := []int{ref.Texture}
		if err := c.bindings.Rebuild(touched); err != nil {
			return err
		}
		return c.windows.RebindTouched(touched)
	default:
		return fmt.Errorf("unknown stock kind %d", ref.Kind)
	}
}

// Draw submits one frame built from the given steps.
func (c *Core) Draw(steps []RenderStep) error {
	return c.frames.Execute(steps)
}

// ShaderServer returns the server resolving this core's shader URIs.
func (c *Core) ShaderServer() *ShaderServer {
	return c.shaders
}

// UniformAlignment reports the device's minimum uniform buffer offset
// alignment, useful when packing uniform ranges.
func (c *Core) UniformAlignment() uint64 {
	return c.gpu.uniformAlign
}

// Release frees every GPU object owned by the core. The core must not be
// used afterwards.
func (c *Core) Release() {
	if c.windows != nil {
		c.windows.release()
	}
	if c.pipelines != nil {
		c.pipelines.release()
	}
	if c.bindings != nil {
		c.bindings.release()
	}
	if c.res != nil {
		c.res.release()
	}
	if c.gpu != nil {
		c.gpu.release()
	}
}

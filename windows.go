package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// WindowInfo carries everything the core needs to bind a native window: an
// opaque surface descriptor from the windowing system plus the pixel size.
// Name is optional; a generated one is returned by AddWindow when empty.
type WindowInfo struct {
	Name       string
	Descriptor *wgpu.SurfaceDescriptor
	Width      uint32
	Height     uint32
}

type boundWindow struct {
	name   string
	source int

	surface *wgpu.Surface
	config  wgpu.SurfaceConfiguration

	sampler   *wgpu.Sampler
	bgLayout  *wgpu.BindGroupLayout
	layout    *wgpu.PipelineLayout
	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup

	// Per-frame acquisition state, valid between acquire and present.
	frameTexture *wgpu.Texture
	frameView    *wgpu.TextureView
}

// WindowBinder owns the surface configuration and blit pipeline of every
// attached window.
type WindowBinder struct {
	gpu     *gpuState
	vm      *validatedModel
	res     *ResourceStore
	shaders *ShaderServer
	log     Logger

	windows map[string]*boundWindow
}

func newWindowBinder(gpu *gpuState, vm *validatedModel, res *ResourceStore, shaders *ShaderServer, log Logger) *WindowBinder {
	return &WindowBinder{
		gpu:     gpu,
		vm:      vm,
		res:     res,
		shaders: shaders,
		log:     log,
		windows: map[string]*boundWindow{},
	}
}

// Attach binds a window to a window-source texture and returns the window
// name (generated when info.Name is empty).
func (wb *WindowBinder) Attach(source int, info WindowInfo) (string, error) {
	if source < 0 || source >= len(wb.vm.m.Textures) {
		return "", modelErr(UnknownReference, "window source texture", source)
	}
	if !wb.vm.usage[source].Has(UsageWindowSource) {
		return "", modelErr(NotWindowSource, "window source texture", source)
	}

	name := info.Name
	if name == "" {
		name = uuid.NewString()
	}
	if _, exists := wb.windows[name]; exists {
		return "", fmt.Errorf("window %q already attached", name)
	}

	surface := wb.gpu.instance.CreateSurface(info.Descriptor)
	caps := surface.GetCapabilities(wb.gpu.adapter)

	present := wgpu.PresentModeFifo
	for _, mode := range caps.PresentModes {
		if mode == wgpu.PresentModeMailbox {
			present = wgpu.PresentModeMailbox
			break
		}
	}

	win := &boundWindow{
		name:    name,
		source:  source,
		surface: surface,
		config: wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      caps.Formats[0],
			Width:       info.Width,
			Height:      info.Height,
			PresentMode: present,
			AlphaMode:   caps.AlphaModes[0],
		},
	}
	surface.Configure(wb.gpu.adapter, wb.gpu.device, &win.config)

	if err := wb.buildBlitPipeline(win); err != nil {
		win.release()
		return "", err
	}
	if err := wb.rebindSource(win); err != nil {
		win.release()
		return "", err
	}

	wb.windows[name] = win
	wb.log.Infof("window %q attached to texture %d (%dx%d, %v)", name, source, info.Width, info.Height, present)
	return name, nil
}

// buildBlitPipeline creates the fixed blit pipeline for a window: a
// fullscreen triangle sampling the source texture, with the fragment shader
// and sampler selected by the source's sample type.
func (wb *WindowBinder) buildBlitPipeline(win *boundWindow) error {
	srcDecl := wb.vm.m.Textures[win.source]
	depthSource := srcDecl.Kind == TextureDepth

	shaderURI := "builtin://blit_color"
	if depthSource {
		shaderURI = "builtin://blit_depth"
	}
	asset, err := wb.shaders.Load(shaderURI)
	if err != nil {
		return err
	}
	module, err := wb.gpu.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          asset.URI,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: asset.Source},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit shader: %w", err)
	}
	defer module.Release()

	filterable := !depthSource && !(srcDecl.Kind == TextureColor && srcDecl.Texel == TexelFloat32)
	srcSample := sampleType(&srcDecl, filterable)
	samplerType := wgpu.SamplerBindingTypeFiltering
	samplerDesc := wgpu.SamplerDescriptor{
		Label:         fmt.Sprintf("window %q blit sampler", win.name),
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	}
	if depthSource || srcSample == wgpu.TextureSampleTypeUnfilterableFloat ||
		srcSample == wgpu.TextureSampleTypeUint || srcSample == wgpu.TextureSampleTypeSint {
		samplerType = wgpu.SamplerBindingTypeNonFiltering
		samplerDesc.MagFilter = wgpu.FilterModeNearest
		samplerDesc.MinFilter = wgpu.FilterModeNearest
	}
	win.sampler, err = wb.gpu.device.CreateSampler(&samplerDesc)
	if err != nil {
		return fmt.Errorf("failed to create blit sampler: %w", err)
	}

	win.bgLayout, err = wb.gpu.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: fmt.Sprintf("window %q blit layout", win.name),
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    srcSample,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: samplerType},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit bind group layout: %w", err)
	}

	win.layout, err = wb.gpu.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            fmt.Sprintf("window %q blit pipeline layout", win.name),
		BindGroupLayouts: []*wgpu.BindGroupLayout{win.bgLayout},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit pipeline layout: %w", err)
	}

	win.pipeline, err = wb.gpu.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("window %q blit pipeline", win.name),
		Layout: win.layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    win.config.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit pipeline: %w", err)
	}
	return nil
}

// rebindSource (re)creates the blit bind group from the current source view.
func (wb *WindowBinder) rebindSource(win *boundWindow) error {
	view, err := wb.res.TextureView(win.source, View2D)
	if err != nil {
		return err
	}
	handle, err := wb.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  fmt.Sprintf("window %q blit bind group", win.name),
		Layout: win.bgLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view, Size: wgpu.WholeSize},
			{Binding: 1, Sampler: win.sampler, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit bind group for window %q: %w", win.name, err)
	}
	if win.bindGroup != nil {
		win.bindGroup.Release()
	}
	win.bindGroup = handle
	return nil
}

// Detach removes a window and releases its surface and pipeline.
func (wb *WindowBinder) Detach(name string) error {
	win, ok := wb.windows[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWindow, name)
	}
	delete(wb.windows, name)
	win.release()
	wb.log.Infof("window %q detached", name)
	return nil
}

// Resize reconfigures a window's swapchain at the new pixel size. The source
// texture is not touched; use ResizeAttachments for that.
func (wb *WindowBinder) Resize(name string, width, height uint32) error {
	win, ok := wb.windows[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWindow, name)
	}
	if width == 0 || height == 0 {
		return nil
	}
	win.config.Width = width
	win.config.Height = height
	win.surface.Configure(wb.gpu.adapter, wb.gpu.device, &win.config)
	return nil
}

// RebindTouched rebuilds the blit bind group of every window whose source
// texture was recreated.
func (wb *WindowBinder) RebindTouched(touched []int) error {
	for _, win := range wb.windows {
		for _, t := range touched {
			if win.source == t {
				if err := wb.rebindSource(win); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

// acquire obtains the current swapchain image of every attached window. On
// any failure it releases what it already acquired and reports the frame as
// skippable.
func (wb *WindowBinder) acquire() error {
	for _, win := range wb.windows {
		tex, err := win.surface.GetCurrentTexture()
		if err != nil {
			wb.log.Warnf("window %q: surface acquisition failed, skipping frame: %v", win.name, err)
			wb.releaseFrames()
			return fmt.Errorf("%w: %v", errSurfaceOutdated, err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			wb.releaseFrames()
			return fmt.Errorf("%w: %v", errSurfaceOutdated, err)
		}
		win.frameTexture = tex
		win.frameView = view
	}
	return nil
}

// blitAll records one blit render pass per acquired window.
func (wb *WindowBinder) blitAll(encoder *wgpu.CommandEncoder) error {
	for _, win := range wb.windows {
		if win.frameView == nil {
			continue
		}
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label: fmt.Sprintf("window %q blit", win.name),
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       win.frameView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1},
			}},
		})
		pass.SetPipeline(win.pipeline)
		pass.SetBindGroup(0, win.bindGroup, nil)
		pass.Draw(3, 1, 0, 0)
		if err := pass.End(); err != nil {
			pass.Release()
			return fmt.Errorf("failed to end blit pass for window %q: %w", win.name, err)
		}
		pass.Release()
	}
	return nil
}

// present presents every acquired frame and drops the per-frame state.
func (wb *WindowBinder) present() {
	for _, win := range wb.windows {
		if win.frameView == nil {
			continue
		}
		win.surface.Present()
	}
	wb.releaseFrames()
}

func (wb *WindowBinder) releaseFrames() {
	for _, win := range wb.windows {
		if win.frameView != nil {
			win.frameView.Release()
			win.frameView = nil
		}
		if win.frameTexture != nil {
			win.frameTexture.Release()
			win.frameTexture = nil
		}
	}
}

func (win *boundWindow) release() {
	if win.bindGroup != nil {
		win.bindGroup.Release()
	}
	if win.pipeline != nil {
		win.pipeline.Release()
	}
	if win.layout != nil {
		win.layout.Release()
	}
	if win.bgLayout != nil {
		win.bgLayout.Release()
	}
	if win.sampler != nil {
		win.sampler.Release()
	}
	if win.surface != nil {
		win.surface.Release()
	}
}

func (wb *WindowBinder) release() {
	wb.releaseFrames()
	for name, win := range wb.windows {
		delete(wb.windows, name)
		win.release()
	}
}

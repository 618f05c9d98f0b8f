package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineStore builds one render pipeline object per model pipeline. The
// handles are immutable for the core's lifetime: color target formats and
// sample counts come from the model, which resize never changes.
type PipelineStore struct {
	gpu *gpuState
	vm  *validatedModel

	pipelines []*wgpu.RenderPipeline
	layouts   []*wgpu.PipelineLayout
}

func newPipelineStore(gpu *gpuState, vm *validatedModel, bindings *BindingStore, shaders *ShaderServer) (*PipelineStore, error) {
	ps := &PipelineStore{
		gpu:       gpu,
		vm:        vm,
		pipelines: make([]*wgpu.RenderPipeline, len(vm.m.Pipelines)),
		layouts:   make([]*wgpu.PipelineLayout, len(vm.m.Pipelines)),
	}

	for pi := range vm.m.Pipelines {
		if err := ps.build(pi, bindings, shaders); err != nil {
			ps.release()
			return nil, err
		}
	}
	return ps, nil
}

func (ps *PipelineStore) build(pi int, bindings *BindingStore, shaders *ShaderServer) error {
	decl := &ps.vm.m.Pipelines[pi]
	pass := &ps.vm.m.Passes[ps.vm.owner[pi]]

	asset, err := shaders.Load(decl.ShaderURI)
	if err != nil {
		return err
	}
	module, err := ps.gpu.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          asset.URI,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: asset.Source},
	})
	if err != nil {
		return fmt.Errorf("failed to create shader module %q: %w", decl.ShaderURI, err)
	}
	defer module.Release()

	groupLayouts := make([]*wgpu.BindGroupLayout, len(decl.BindGroups))
	for slot, gi := range decl.BindGroups {
		groupLayouts[slot] = bindings.Layout(gi)
	}
	layout, err := ps.gpu.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            fmt.Sprintf("pipeline layout %d", pi),
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout %d: %w", pi, err)
	}
	ps.layouts[pi] = layout

	var vertexBuffers []wgpu.VertexBufferLayout
	if decl.Input != nil {
		if decl.Input.Vertex != nil {
			vertexBuffers = append(vertexBuffers, inputLayout(decl.Input.Vertex, wgpu.VertexStepModeVertex))
		}
		if decl.Input.Instance != nil {
			vertexBuffers = append(vertexBuffers, inputLayout(decl.Input.Instance, wgpu.VertexStepModeInstance))
		}
	}

	targets := make([]wgpu.ColorTargetState, len(pass.Colors))
	for ci, ca := range pass.Colors {
		tx := ps.vm.m.Textures[ca.Texture]
		targets[ci] = wgpu.ColorTargetState{
			Format:    textureFormat(&tx),
			Blend:     blendState(decl.Blends[ci]),
			WriteMask: wgpu.ColorWriteMaskAll,
		}
	}

	var depth *wgpu.DepthStencilState
	if decl.DepthTest {
		tx := ps.vm.m.Textures[pass.Depth.Texture]
		depth = &wgpu.DepthStencilState{
			Format:            textureFormat(&tx),
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	pipeline, err := ps.gpu.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("pipeline %d", pi),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: decl.VSEntry,
			Buffers:    vertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: decl.FSEntry,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeFront,
		},
		DepthStencil: depth,
		Multisample: wgpu.MultisampleState{
			Count:                  ps.vm.passSamples[ps.vm.owner[pi]],
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline %d: %w", pi, err)
	}
	ps.pipelines[pi] = pipeline
	return nil
}

func inputLayout(l *InputLayout, step wgpu.VertexStepMode) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = wgpu.VertexAttribute{
			Format:         vertexFormat(a.Format),
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: l.Stride,
		StepMode:    step,
		Attributes:  attrs,
	}
}

// Pipeline returns the render pipeline handle at index pi.
func (ps *PipelineStore) Pipeline(pi int) *wgpu.RenderPipeline {
	return ps.pipelines[pi]
}

func (ps *PipelineStore) release() {
	for _, p := range ps.pipelines {
		if p != nil {
			p.Release()
		}
	}
	for _, l := range ps.layouts {
		if l != nil {
			l.Release()
		}
	}
}

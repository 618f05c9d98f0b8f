package rendergraph

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Draw is a single indexed, instanced draw call.
type Draw struct {
	IndexStart    uint32
	IndexCount    uint32
	BaseVertex    int32
	InstanceStart uint32
	InstanceCount uint32
}

// RenderStep requests draws through one pipeline inside one pass. Steps whose
// pipeline is not owned by the named pass are dropped with a warning.
type RenderStep struct {
	Pass     int
	Pipeline int
	Draws    []Draw
}

// passWork is the per-pass slice of steps, ordered as submitted.
type passWork struct {
	pass  int
	steps []RenderStep
}

// planFrame orders the submitted steps by stage and pass. Every pass in every
// stage appears in the plan even with no steps, so clear ops still run.
// Steps naming an out-of-range or foreign pipeline, or a pass no stage runs,
// are returned as dropped.
func planFrame(vm *validatedModel, steps []RenderStep) (plan []passWork, dropped []RenderStep) {
	staged := make([]bool, len(vm.m.Passes))
	for _, stage := range vm.m.Stages {
		for _, pass := range stage {
			staged[pass] = true
		}
	}

	byPass := make(map[int][]RenderStep)
	for _, step := range steps {
		if step.Pass < 0 || step.Pass >= len(vm.m.Passes) || !staged[step.Pass] ||
			step.Pipeline < 0 || step.Pipeline >= len(vm.m.Pipelines) ||
			vm.owner[step.Pipeline] != step.Pass {
			dropped = append(dropped, step)
			continue
		}
		byPass[step.Pass] = append(byPass[step.Pass], step)
	}
	for _, stage := range vm.m.Stages {
		for _, pass := range stage {
			plan = append(plan, passWork{pass: pass, steps: byPass[pass]})
		}
	}
	return plan, dropped
}

// FrameExecutor records and submits one frame: all stages in order, then the
// window blits, then a single submit followed by present.
type FrameExecutor struct {
	gpu       *gpuState
	vm        *validatedModel
	res       *ResourceStore
	bindings  *BindingStore
	pipelines *PipelineStore
	windows   *WindowBinder
	log       Logger
}

func newFrameExecutor(gpu *gpuState, vm *validatedModel, res *ResourceStore,
	bindings *BindingStore, pipelines *PipelineStore, windows *WindowBinder, log Logger) *FrameExecutor {
	return &FrameExecutor{
		gpu:       gpu,
		vm:        vm,
		res:       res,
		bindings:  bindings,
		pipelines: pipelines,
		windows:   windows,
		log:       log,
	}
}

// Execute renders one frame. When any window surface cannot provide an image
// the whole frame is skipped and nil is returned; nothing is submitted.
func (fe *FrameExecutor) Execute(steps []RenderStep) error {
	plan, dropped := planFrame(fe.vm, steps)
	for _, step := range dropped {
		fe.log.Warnf("dropping render step: pipeline %d is not owned by pass %d", step.Pipeline, step.Pass)
	}

	if err := fe.windows.acquire(); err != nil {
		if errors.Is(err, errSurfaceOutdated) {
			return nil
		}
		return err
	}
	defer fe.windows.releaseFrames()

	encoder, err := fe.gpu.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "frame encoder"})
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	for _, work := range plan {
		if err := fe.recordPass(encoder, work); err != nil {
			return err
		}
	}
	if err := fe.windows.blitAll(encoder); err != nil {
		return err
	}

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish frame encoder: %w", err)
	}
	defer commands.Release()

	fe.gpu.queue.Submit(commands)
	fe.windows.present()
	return nil
}

func (fe *FrameExecutor) recordPass(encoder *wgpu.CommandEncoder, work passWork) error {
	decl := &fe.vm.m.Passes[work.pass]

	colors := make([]wgpu.RenderPassColorAttachment, len(decl.Colors))
	for ci, att := range decl.Colors {
		view, err := fe.res.TextureView(att.Texture, View2D)
		if err != nil {
			return err
		}
		colors[ci] = wgpu.RenderPassColorAttachment{
			View:    view,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpDiscard,
		}
		if att.Clear != nil {
			colors[ci].LoadOp = wgpu.LoadOpClear
			colors[ci].ClearValue = wgpu.Color{R: att.Clear.R, G: att.Clear.G, B: att.Clear.B, A: att.Clear.A}
		}
		if att.Store {
			colors[ci].StoreOp = wgpu.StoreOpStore
		}
	}

	var depth *wgpu.RenderPassDepthStencilAttachment
	if decl.Depth != nil {
		view, err := fe.res.TextureView(decl.Depth.Texture, View2D)
		if err != nil {
			return err
		}
		depth = &wgpu.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:                  fmt.Sprintf("pass %d", work.pass),
		ColorAttachments:       colors,
		DepthStencilAttachment: depth,
	})
	defer pass.Release()

	indexBuf := fe.res.Buffer(BufferIndex)
	vertexBuf := fe.res.Buffer(BufferVertex)
	instanceBuf := fe.res.Buffer(BufferInstance)

	for _, step := range work.steps {
		pdecl := &fe.vm.m.Pipelines[step.Pipeline]
		pass.SetPipeline(fe.pipelines.Pipeline(step.Pipeline))
		for slot, gi := range pdecl.BindGroups {
			pass.SetBindGroup(uint32(slot), fe.bindings.Group(gi), nil)
		}
		// Buffer slots follow the pipeline's layout order: vertex first,
		// instance after it when both are present.
		if pdecl.Input != nil {
			vslot := uint32(0)
			if pdecl.Input.Vertex != nil {
				pass.SetVertexBuffer(vslot, vertexBuf, 0, wgpu.WholeSize)
				vslot++
			}
			if pdecl.Input.Instance != nil {
				pass.SetVertexBuffer(vslot, instanceBuf, 0, wgpu.WholeSize)
			}
		}
		pass.SetIndexBuffer(indexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		for _, d := range step.Draws {
			instances := d.InstanceCount
			if instances == 0 {
				instances = 1
			}
			pass.DrawIndexed(d.IndexCount, instances, d.IndexStart, d.BaseVertex, d.InstanceStart)
		}
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("failed to end pass %d: %w", work.pass, err)
	}
	return nil
}

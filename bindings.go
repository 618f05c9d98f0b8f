package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// BindingStore holds the bind-group layouts, derived once from the model,
// and the bind-group handles, which are rebuilt whenever a backing texture
// or the live uniform buffer is replaced.
type BindingStore struct {
	gpu *gpuState
	vm  *validatedModel
	res *ResourceStore

	layouts []*wgpu.BindGroupLayout
	groups  []*wgpu.BindGroup
}

func newBindingStore(gpu *gpuState, vm *validatedModel, res *ResourceStore) (*BindingStore, error) {
	bs := &BindingStore{
		gpu:     gpu,
		vm:      vm,
		res:     res,
		layouts: make([]*wgpu.BindGroupLayout, len(vm.m.BindGroups)),
		groups:  make([]*wgpu.BindGroup, len(vm.m.BindGroups)),
	}

	for gi, group := range vm.m.BindGroups {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(group.Entries))
		for _, b := range group.Entries {
			entry := wgpu.BindGroupLayoutEntry{
				Binding:    b.Binding,
				Visibility: shaderStages(b.Visibility),
			}
			switch b.Kind {
			case BindingUniform:
				entry.Buffer = wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: false,
					MinBindingSize:   0,
				}
			case BindingTexture:
				decl := vm.m.Textures[b.Texture]
				entry.Texture = wgpu.TextureBindingLayout{
					SampleType:    sampleType(&decl, b.Filterable),
					ViewDimension: viewDimension(b.Dim),
					Multisampled:  decl.SampleCount > 1,
				}
			case BindingSampler:
				entry.Sampler = wgpu.SamplerBindingLayout{
					Type: samplerBindingType(vm.m.Samplers[b.Sampler].Variant),
				}
			}
			entries = append(entries, entry)
		}

		layout, err := gpu.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("bind group layout %d", gi),
			Entries: entries,
		})
		if err != nil {
			bs.release()
			return nil, fmt.Errorf("failed to create bind group layout %d: %w", gi, err)
		}
		bs.layouts[gi] = layout
	}

	for gi := range vm.m.BindGroups {
		if err := bs.build(gi); err != nil {
			bs.release()
			return nil, err
		}
	}
	return bs, nil
}

func samplerBindingType(v SamplerVariant) wgpu.SamplerBindingType {
	switch v {
	case SamplerFilter:
		return wgpu.SamplerBindingTypeFiltering
	case SamplerComparison:
		return wgpu.SamplerBindingTypeComparison
	default:
		return wgpu.SamplerBindingTypeNonFiltering
	}
}

// build (re)creates the bind group handle at gi from current resource views.
func (bs *BindingStore) build(gi int) error {
	group := bs.vm.m.BindGroups[gi]
	entries := make([]wgpu.BindGroupEntry, 0, len(group.Entries))
	for _, b := range group.Entries {
		switch b.Kind {
		case BindingUniform:
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: b.Binding,
				Buffer:  bs.res.Buffer(BufferUniform),
				Offset:  b.UniformOffset,
				Size:    b.UniformSize,
			})
		case BindingTexture:
			view, err := bs.res.TextureView(b.Texture, b.Dim)
			if err != nil {
				return err
			}
			entries = append(entries, wgpu.BindGroupEntry{
				Binding:     b.Binding,
				TextureView: view,
				Size:        wgpu.WholeSize,
			})
		case BindingSampler:
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: b.Binding,
				Sampler: bs.res.Sampler(b.Sampler),
				Size:    wgpu.WholeSize,
			})
		}
	}

	handle, err := bs.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   fmt.Sprintf("bind group %d", gi),
		Layout:  bs.layouts[gi],
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group %d: %w", gi, err)
	}
	if bs.groups[gi] != nil {
		bs.groups[gi].Release()
	}
	bs.groups[gi] = handle
	return nil
}

// Layout returns the layout handle for pipeline layout assembly.
func (bs *BindingStore) Layout(gi int) *wgpu.BindGroupLayout {
	return bs.layouts[gi]
}

// Group returns the current bind group handle.
func (bs *BindingStore) Group(gi int) *wgpu.BindGroup {
	return bs.groups[gi]
}

// Rebuild reconstructs every bind group that references one of the touched
// textures.
func (bs *BindingStore) Rebuild(touchedTextures []int) error {
	for _, gi := range bs.vm.bindGroupsReferencing(touchedTextures) {
		if err := bs.build(gi); err != nil {
			return err
		}
	}
	return nil
}

// RebuildUniform reconstructs every bind group with a uniform binding; called
// after a uniform buffer stock swap replaces the live buffer.
func (bs *BindingStore) RebuildUniform() error {
	for gi, group := range bs.vm.m.BindGroups {
		for _, b := range group.Entries {
			if b.Kind == BindingUniform {
				if err := bs.build(gi); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

func (bs *BindingStore) release() {
	for _, g := range bs.groups {
		if g != nil {
			g.Release()
		}
	}
	for _, l := range bs.layouts {
		if l != nil {
			l.Release()
		}
	}
}

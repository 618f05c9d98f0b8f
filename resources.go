package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureRegion is an x/y offset plus size within one mip level.
type TextureRegion struct {
	X, Y          uint32
	Width, Height uint32
}

// LayerRange selects array layers for a texture write.
type LayerRange struct {
	Base  uint32
	Count uint32
}

// TextureLayout describes the host memory layout of texture write data.
type TextureLayout struct {
	BytesPerRow  uint32
	RowsPerLayer uint32
}

type textureSlot struct {
	decl  TextureDecl
	usage TextureUsage

	tex   *wgpu.Texture
	views map[ViewDim]*wgpu.TextureView
}

func (s *textureSlot) view(dim ViewDim) *wgpu.TextureView {
	return s.views[dim]
}

func (s *textureSlot) release() {
	for _, v := range s.views {
		v.Release()
	}
	s.views = nil
	if s.tex != nil {
		s.tex.Release()
		s.tex = nil
	}
}

type StockKind int

const (
	StockBuffer StockKind = iota
	StockTexture
)

// StockRef addresses the resource a stock partner shadows.
type StockRef struct {
	Kind    StockKind
	Role    BufferRole
	Texture int
}

func StockOfBuffer(role BufferRole) StockRef {
	return StockRef{Kind: StockBuffer, Role: role}
}

func StockOfTexture(index int) StockRef {
	return StockRef{Kind: StockTexture, Texture: index}
}

// stockSlot is a two-entry slot: the primary resource lives in the store
// arrays, the shadow here. active selects which one the store hands out.
type stockSlot struct {
	ref    StockRef
	label  string
	active bool // true: shadow is live

	shadowBuf *wgpu.Buffer
	shadowTex *textureSlot
}

// ResourceStore owns the GPU buffers, textures and samplers materialized from
// the model, and routes host writes to them.
type ResourceStore struct {
	gpu *gpuState
	vm  *validatedModel
	log Logger

	buffers  [bufferRoleCount]*wgpu.Buffer
	textures []*textureSlot
	samplers []*wgpu.Sampler

	stocks map[string]*stockSlot
	// liveStock[texture index] / buffer role -> slot with an active shadow.
	textureStock map[int]*stockSlot
	bufferStock  map[BufferRole]*stockSlot
}

func newResourceStore(gpu *gpuState, vm *validatedModel, log Logger) (*ResourceStore, error) {
	rs := &ResourceStore{
		gpu:          gpu,
		vm:           vm,
		log:          log,
		stocks:       map[string]*stockSlot{},
		textureStock: map[int]*stockSlot{},
		bufferStock:  map[BufferRole]*stockSlot{},
	}

	for role := BufferRole(0); role < bufferRoleCount; role++ {
		buf, err := gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s buffer", role),
			Size:  vm.m.Buffers[role].Capacity,
			Usage: bufferUsageFlags(role),
		})
		if err != nil {
			rs.release()
			return nil, fmt.Errorf("failed to create %s buffer: %w", role, err)
		}
		rs.buffers[role] = buf
	}

	rs.textures = make([]*textureSlot, len(vm.m.Textures))
	for i, decl := range vm.m.Textures {
		slot, err := rs.createTexture(decl, vm.usage[i], fmt.Sprintf("texture %d", i))
		if err != nil {
			rs.release()
			return nil, err
		}
		rs.textures[i] = slot
	}

	rs.samplers = make([]*wgpu.Sampler, len(vm.m.Samplers))
	for i, decl := range vm.m.Samplers {
		smp, err := rs.createSampler(&decl, fmt.Sprintf("sampler %d", i))
		if err != nil {
			rs.release()
			return nil, err
		}
		rs.samplers[i] = smp
	}

	return rs, nil
}

func (rs *ResourceStore) createTexture(decl TextureDecl, usage TextureUsage, label string) (*textureSlot, error) {
	tex, err := rs.gpu.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              decl.Size.Width,
			Height:             decl.Size.Height,
			DepthOrArrayLayers: decl.Size.Layers,
		},
		MipLevelCount: decl.MipLevels,
		SampleCount:   decl.SampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        textureFormat(&decl),
		Usage:         textureUsageFlags(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}

	slot := &textureSlot{decl: decl, usage: usage, tex: tex, views: map[ViewDim]*wgpu.TextureView{}}
	view, err := tex.CreateView(nil)
	if err != nil {
		slot.release()
		return nil, fmt.Errorf("failed to create view of %s: %w", label, err)
	}
	slot.views[View2D] = view
	return slot, nil
}

func (rs *ResourceStore) createSampler(decl *SamplerDecl, label string) (*wgpu.Sampler, error) {
	desc := wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
	switch decl.Variant {
	case SamplerFilter:
		desc.MagFilter = wgpu.FilterModeLinear
		desc.MinFilter = wgpu.FilterModeLinear
		desc.MipmapFilter = wgpu.MipmapFilterModeLinear
		if decl.Filter == FilterAnisotropic {
			level := decl.Anisotropy
			if level < 1 {
				level = 1
			}
			desc.MaxAnisotropy = level
		}
	case SamplerComparison:
		desc.MagFilter = wgpu.FilterModeLinear
		desc.MinFilter = wgpu.FilterModeLinear
		desc.Compare = compareFunction(decl.Compare)
	}

	smp, err := rs.gpu.device.CreateSampler(&desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	return smp, nil
}

// Buffer returns the live buffer for a role, honoring any active stock swap.
func (rs *ResourceStore) Buffer(role BufferRole) *wgpu.Buffer {
	if slot, ok := rs.bufferStock[role]; ok && slot.active {
		return slot.shadowBuf
	}
	return rs.buffers[role]
}

func (rs *ResourceStore) textureSlotAt(i int) *textureSlot {
	if slot, ok := rs.textureStock[i]; ok && slot.active {
		return slot.shadowTex
	}
	return rs.textures[i]
}

// TextureView returns the live view of texture i with the given dimension.
// Non-2D views are created lazily and cached on the slot.
func (rs *ResourceStore) TextureView(i int, dim ViewDim) (*wgpu.TextureView, error) {
	slot := rs.textureSlotAt(i)
	if v := slot.view(dim); v != nil {
		return v, nil
	}
	view, err := slot.tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           fmt.Sprintf("texture %d view", i),
		Format:          textureFormat(&slot.decl),
		Dimension:       viewDimension(dim),
		BaseMipLevel:    0,
		MipLevelCount:   slot.decl.MipLevels,
		BaseArrayLayer:  0,
		ArrayLayerCount: slot.decl.Size.Layers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create view of texture %d: %w", i, err)
	}
	slot.views[dim] = view
	return view, nil
}

// Sampler returns the sampler handle at index i.
func (rs *ResourceStore) Sampler(i int) *wgpu.Sampler {
	return rs.samplers[i]
}

// TextureDecl returns the current declaration of texture i, with any resize
// applied.
func (rs *ResourceStore) TextureDecl(i int) TextureDecl {
	return rs.textureSlotAt(i).decl
}

// checkBufferWrite validates a write range against a buffer capacity. The
// comparisons are split so offsets near the uint64 ceiling cannot wrap past
// the check.
func checkBufferWrite(role BufferRole, capacity, offset uint64, n int) error {
	if offset > capacity || uint64(n) > capacity-offset {
		return fmt.Errorf("%w: %s buffer write of %d bytes at %d exceeds %d",
			ErrOutOfCapacity, role, n, offset, capacity)
	}
	return nil
}

// checkTextureWrite validates a texture write against the declaration and
// resolves the layer range and data layout defaults. i is only used for error
// text.
func checkTextureWrite(i int, decl *TextureDecl, region TextureRegion, mip uint32, layers LayerRange, layout TextureLayout) (LayerRange, TextureLayout, error) {
	if !decl.Writable {
		return layers, layout, fmt.Errorf("%w: texture %d", ErrNotWritable, i)
	}
	if mip >= decl.MipLevels {
		return layers, layout, fmt.Errorf("%w: mip %d of texture %d (has %d)", ErrInvalidMip, mip, i, decl.MipLevels)
	}
	extent := decl.mipExtent(mip)
	if region.X > extent.Width || region.Width > extent.Width-region.X ||
		region.Y > extent.Height || region.Height > extent.Height-region.Y {
		return layers, layout, fmt.Errorf("%w: region %+v outside mip %d extent %dx%d of texture %d",
			ErrRegionOutOfBounds, region, mip, extent.Width, extent.Height, i)
	}
	if layers.Count == 0 {
		layers.Count = 1
	}
	if layers.Base > extent.Layers || layers.Count > extent.Layers-layers.Base {
		return layers, layout, fmt.Errorf("%w: layers %d..%d of texture %d (has %d)",
			ErrRegionOutOfBounds, layers.Base, layers.Base+layers.Count, i, extent.Layers)
	}
	if layout.BytesPerRow == 0 {
		layout.BytesPerRow = region.Width * decl.texelSize()
	}
	if layout.RowsPerLayer == 0 {
		layout.RowsPerLayer = region.Height
	}
	return layers, layout, nil
}

// WriteBuffer copies data into the live buffer of a role at the byte offset.
func (rs *ResourceStore) WriteBuffer(role BufferRole, data []byte, offset uint64) error {
	if role < 0 || role >= bufferRoleCount {
		return modelErr(UnknownReference, "buffer role", int(role))
	}
	if err := checkBufferWrite(role, rs.vm.m.Buffers[role].Capacity, offset, len(data)); err != nil {
		return err
	}
	return rs.gpu.queue.WriteBuffer(rs.Buffer(role), offset, data)
}

// WriteTexture copies data into a region of one mip level of the live
// texture, across the given layer range.
func (rs *ResourceStore) WriteTexture(i int, region TextureRegion, mip uint32, layers LayerRange, layout TextureLayout, data []byte) error {
	if i < 0 || i >= len(rs.textures) {
		return modelErr(UnknownReference, "texture", i)
	}
	slot := rs.textureSlotAt(i)
	layers, layout, err := checkTextureWrite(i, &slot.decl, region, mip, layers, layout)
	if err != nil {
		return err
	}

	return rs.gpu.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  slot.tex,
			MipLevel: mip,
			Origin:   wgpu.Origin3D{X: region.X, Y: region.Y, Z: layers.Base},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerLayer,
		},
		&wgpu.Extent3D{
			Width:              region.Width,
			Height:             region.Height,
			DepthOrArrayLayers: layers.Count,
		},
	)
}

// ResizeAttachments recreates the connected attachment set of anchor at the
// new size, preserving format and usage, and returns the recreated indices.
// Textures already at the target size are left alone, so repeating a resize
// is a no-op.
func (rs *ResourceStore) ResizeAttachments(anchor int, size Extent) ([]int, error) {
	if anchor < 0 || anchor >= len(rs.textures) {
		return nil, modelErr(UnknownReference, "texture", anchor)
	}
	if size.Layers == 0 {
		size.Layers = 1
	}
	closure := rs.vm.attachmentClosure(anchor)

	var touched []int
	for _, i := range closure {
		slot := rs.textures[i]
		if slot.decl.Size.Width == size.Width && slot.decl.Size.Height == size.Height {
			continue
		}
		decl := slot.decl
		decl.Size.Width = size.Width
		decl.Size.Height = size.Height
		replacement, err := rs.createTexture(decl, slot.usage, fmt.Sprintf("texture %d", i))
		if err != nil {
			return touched, err
		}
		slot.release()
		rs.textures[i] = replacement

		// A stock shadow must stay shape-compatible with its primary.
		if stock, ok := rs.textureStock[i]; ok {
			shadow, err := rs.createTexture(decl, slot.usage, fmt.Sprintf("texture %d stock %q", i, stock.label))
			if err != nil {
				return touched, err
			}
			stock.shadowTex.release()
			stock.shadowTex = shadow
		}
		touched = append(touched, i)
	}
	return touched, nil
}

// InsertStock creates a shadow partner for the referenced resource under the
// given label. initial optionally seeds a buffer shadow's contents.
func (rs *ResourceStore) InsertStock(ref StockRef, label string, initial []byte) error {
	if _, exists := rs.stocks[label]; exists {
		return fmt.Errorf("stock label %q already in use", label)
	}
	slot := &stockSlot{ref: ref, label: label}

	switch ref.Kind {
	case StockBuffer:
		if ref.Role < 0 || ref.Role >= bufferRoleCount {
			return modelErr(UnknownReference, "buffer role", int(ref.Role))
		}
		buf, err := rs.gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s buffer stock %q", ref.Role, label),
			Size:  rs.vm.m.Buffers[ref.Role].Capacity,
			Usage: bufferUsageFlags(ref.Role),
		})
		if err != nil {
			return fmt.Errorf("failed to create stock buffer %q: %w", label, err)
		}
		if len(initial) > 0 {
			if err := rs.gpu.queue.WriteBuffer(buf, 0, initial); err != nil {
				buf.Release()
				return fmt.Errorf("failed to seed stock buffer %q: %w", label, err)
			}
		}
		slot.shadowBuf = buf
		rs.bufferStock[ref.Role] = slot

	case StockTexture:
		if ref.Texture < 0 || ref.Texture >= len(rs.textures) {
			return modelErr(UnknownReference, "texture", ref.Texture)
		}
		primary := rs.textures[ref.Texture]
		shadow, err := rs.createTexture(primary.decl, primary.usage, fmt.Sprintf("texture %d stock %q", ref.Texture, label))
		if err != nil {
			return err
		}
		slot.shadowTex = shadow
		rs.textureStock[ref.Texture] = slot

	default:
		return modelErr(InvalidFieldValue, "stock kind", int(ref.Kind))
	}

	rs.stocks[label] = slot
	return nil
}

// SwapStock toggles which partner of the labeled slot is live and returns
// the reference so dependents can be rebuilt.
func (rs *ResourceStore) SwapStock(label string) (StockRef, error) {
	slot, ok := rs.stocks[label]
	if !ok {
		return StockRef{}, fmt.Errorf("%w: %q", ErrUnknownStockLabel, label)
	}
	slot.active = !slot.active
	return slot.ref, nil
}

func (rs *ResourceStore) release() {
	for _, slot := range rs.stocks {
		if slot.shadowBuf != nil {
			slot.shadowBuf.Release()
		}
		if slot.shadowTex != nil {
			slot.shadowTex.release()
		}
	}
	for _, smp := range rs.samplers {
		if smp != nil {
			smp.Release()
		}
	}
	for _, slot := range rs.textures {
		if slot != nil {
			slot.release()
		}
	}
	for _, buf := range rs.buffers {
		if buf != nil {
			buf.Release()
		}
	}
}

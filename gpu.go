package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// gpuState owns the device-level wgpu objects shared by every store.
type gpuState struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	uniformAlign uint64
	// borrowed marks externally supplied device objects; release leaves
	// them alone.
	borrowed bool
}

// createGpuState requests an adapter and device. compatible may be nil when
// no window exists yet; surfaces created later still work with the default
// adapter on all current backends.
func createGpuState(compatible *wgpu.Surface) (*gpuState, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: compatible,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "rendergraph device",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}

	s := &gpuState{
		instance:     instance,
		adapter:      adapter,
		device:       device,
		queue:        device.GetQueue(),
		uniformAlign: uint64(device.GetLimits().Limits.MinUniformBufferOffsetAlignment),
	}
	return s, nil
}

func (s *gpuState) release() {
	if s.borrowed {
		return
	}
	if s.device != nil {
		s.device.Release()
	}
	if s.adapter != nil {
		s.adapter.Release()
	}
	if s.instance != nil {
		s.instance.Release()
	}
}

// textureFormat maps a declared texture to its wgpu format.
func textureFormat(t *TextureDecl) wgpu.TextureFormat {
	switch t.Kind {
	case TextureDepth:
		return wgpu.TextureFormatDepth32Float
	case TextureSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	}
	switch t.Channels {
	case ChannelsR:
		switch t.Texel {
		case TexelUnorm8:
			return wgpu.TextureFormatR8Unorm
		case TexelSnorm8:
			return wgpu.TextureFormatR8Snorm
		case TexelUint8:
			return wgpu.TextureFormatR8Uint
		case TexelSint8:
			return wgpu.TextureFormatR8Sint
		case TexelUint16:
			return wgpu.TextureFormatR16Uint
		case TexelSint16:
			return wgpu.TextureFormatR16Sint
		case TexelFloat16:
			return wgpu.TextureFormatR16Float
		case TexelUint32:
			return wgpu.TextureFormatR32Uint
		case TexelSint32:
			return wgpu.TextureFormatR32Sint
		case TexelFloat32:
			return wgpu.TextureFormatR32Float
		}
	case ChannelsRG:
		switch t.Texel {
		case TexelUnorm8:
			return wgpu.TextureFormatRG8Unorm
		case TexelSnorm8:
			return wgpu.TextureFormatRG8Snorm
		case TexelUint8:
			return wgpu.TextureFormatRG8Uint
		case TexelSint8:
			return wgpu.TextureFormatRG8Sint
		case TexelUint16:
			return wgpu.TextureFormatRG16Uint
		case TexelSint16:
			return wgpu.TextureFormatRG16Sint
		case TexelFloat16:
			return wgpu.TextureFormatRG16Float
		case TexelUint32:
			return wgpu.TextureFormatRG32Uint
		case TexelSint32:
			return wgpu.TextureFormatRG32Sint
		case TexelFloat32:
			return wgpu.TextureFormatRG32Float
		}
	case ChannelsRGBA:
		switch t.Texel {
		case TexelUnorm8:
			return wgpu.TextureFormatRGBA8Unorm
		case TexelSnorm8:
			return wgpu.TextureFormatRGBA8Snorm
		case TexelUint8:
			return wgpu.TextureFormatRGBA8Uint
		case TexelSint8:
			return wgpu.TextureFormatRGBA8Sint
		case TexelUint16:
			return wgpu.TextureFormatRGBA16Uint
		case TexelSint16:
			return wgpu.TextureFormatRGBA16Sint
		case TexelFloat16:
			return wgpu.TextureFormatRGBA16Float
		case TexelUint32:
			return wgpu.TextureFormatRGBA32Uint
		case TexelSint32:
			return wgpu.TextureFormatRGBA32Sint
		case TexelFloat32:
			return wgpu.TextureFormatRGBA32Float
		}
	}
	panic(fmt.Sprintf("unsupported texture declaration: kind=%d texel=%d channels=%d", t.Kind, t.Texel, t.Channels))
}

// sampleType derives the binding sample type from the texture kind and the
// binding's filterable flag.
func sampleType(t *TextureDecl, filterable bool) wgpu.TextureSampleType {
	if t.Kind == TextureDepth {
		return wgpu.TextureSampleTypeDepth
	}
	switch t.Texel {
	case TexelUint8, TexelUint16, TexelUint32:
		if t.Kind == TextureColor {
			return wgpu.TextureSampleTypeUint
		}
	case TexelSint8, TexelSint16, TexelSint32:
		if t.Kind == TextureColor {
			return wgpu.TextureSampleTypeSint
		}
	}
	if filterable {
		return wgpu.TextureSampleTypeFloat
	}
	return wgpu.TextureSampleTypeUnfilterableFloat
}

func textureUsageFlags(u TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u.Has(UsageAttachment) || u.Has(UsageWindowSource) {
		out |= wgpu.TextureUsageRenderAttachment
	}
	if u.Has(UsageSampled) || u.Has(UsageWindowSource) {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u.Has(UsageHostWritable) {
		out |= wgpu.TextureUsageCopyDst
	}
	return out
}

func bufferUsageFlags(role BufferRole) wgpu.BufferUsage {
	switch role {
	case BufferIndex:
		return wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	case BufferVertex, BufferInstance:
		return wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	case BufferUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	}
	return 0
}

func viewDimension(d ViewDim) wgpu.TextureViewDimension {
	switch d {
	case View2DArray:
		return wgpu.TextureViewDimension2DArray
	case ViewCube:
		return wgpu.TextureViewDimensionCube
	default:
		return wgpu.TextureViewDimension2D
	}
}

func shaderStages(v Visibility) wgpu.ShaderStage {
	switch v {
	case VisibilityVertex:
		return wgpu.ShaderStageVertex
	case VisibilityFragment:
		return wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	}
}

func vertexFormat(f VertexFormat) wgpu.VertexFormat {
	switch f {
	case VertexFloat32:
		return wgpu.VertexFormatFloat32
	case VertexFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case VertexFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case VertexFloat32x4:
		return wgpu.VertexFormatFloat32x4
	case VertexUint32:
		return wgpu.VertexFormatUint32
	case VertexSint32:
		return wgpu.VertexFormatSint32
	case VertexUint32x4:
		return wgpu.VertexFormatUint32x4
	}
	panic(fmt.Sprintf("unsupported vertex format: %d", f))
}

func compareFunction(op CompareOp) wgpu.CompareFunction {
	switch op {
	case CompareNever:
		return wgpu.CompareFunctionNever
	case CompareLess:
		return wgpu.CompareFunctionLess
	case CompareEqual:
		return wgpu.CompareFunctionEqual
	case CompareLessEqual:
		return wgpu.CompareFunctionLessEqual
	case CompareGreater:
		return wgpu.CompareFunctionGreater
	case CompareNotEqual:
		return wgpu.CompareFunctionNotEqual
	case CompareGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	default:
		return wgpu.CompareFunctionAlways
	}
}

func blendFactor(f BlendFactor) wgpu.BlendFactor {
	switch f {
	case BlendZero:
		return wgpu.BlendFactorZero
	case BlendOne:
		return wgpu.BlendFactorOne
	case BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case BlendDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case BlendOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	}
	return wgpu.BlendFactorOne
}

func blendOperation(op BlendOp) wgpu.BlendOperation {
	switch op {
	case BlendSubtract:
		return wgpu.BlendOperationSubtract
	case BlendReverseSubtract:
		return wgpu.BlendOperationReverseSubtract
	case BlendMin:
		return wgpu.BlendOperationMin
	case BlendMax:
		return wgpu.BlendOperationMax
	default:
		return wgpu.BlendOperationAdd
	}
}

func blendState(b *BlendDecl) *wgpu.BlendState {
	if b == nil {
		return nil
	}
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: blendFactor(b.Color.Src),
			DstFactor: blendFactor(b.Color.Dst),
			Operation: blendOperation(b.Color.Op),
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: blendFactor(b.Alpha.Src),
			DstFactor: blendFactor(b.Alpha.Dst),
			Operation: blendOperation(b.Alpha.Op),
		},
	}
}

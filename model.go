package rendergraph

// The render model is a declarative description of every GPU resource a core
// owns: buffers, textures, samplers, bind groups, render pipelines and the
// passes that consume them, grouped into sequenced stages. All cross references
// are plain indices into the model's ordered collections. A model is validated
// once at core construction and is immutable afterwards.

type BufferRole int

const (
	BufferIndex BufferRole = iota
	BufferVertex
	BufferInstance
	BufferUniform

	bufferRoleCount
)

func (r BufferRole) String() string {
	switch r {
	case BufferIndex:
		return "index"
	case BufferVertex:
		return "vertex"
	case BufferInstance:
		return "instance"
	case BufferUniform:
		return "uniform"
	}
	return "unknown"
}

// BufferDecl declares one of the four role buffers. Capacity is in bytes.
type BufferDecl struct {
	Capacity uint64 `json:"capacity"`
}

type TextureKind int

const (
	// TextureColor is a color target/sampled texture with explicit texel type.
	TextureColor TextureKind = iota
	// TextureDepth is a Depth32Float texture.
	TextureDepth
	// TextureSrgb is an RGBA8 sRGB texture.
	TextureSrgb
)

type TexelType int

const (
	TexelUnorm8 TexelType = iota
	TexelSnorm8
	TexelUint8
	TexelSint8
	TexelUint16
	TexelSint16
	TexelFloat16
	TexelUint32
	TexelSint32
	TexelFloat32
)

type Channels int

const (
	ChannelsR Channels = iota
	ChannelsRG
	ChannelsRGBA
)

// Extent is a texture size in texels. Layers is the array layer count and is
// at least 1.
type Extent struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	Layers uint32 `json:"layers"`
}

type TextureDecl struct {
	Kind     TextureKind `json:"kind"`
	Texel    TexelType   `json:"texel,omitempty"`
	Channels Channels    `json:"channels,omitempty"`
	Size     Extent      `json:"size"`
	// MipLevels >= 1.
	MipLevels uint32 `json:"mip_levels"`
	// SampleCount is 1, 2, 4 or 8.
	SampleCount uint32 `json:"sample_count"`
	// WindowSource marks the texture as eligible for blitting into an
	// attached window's swapchain image.
	WindowSource bool `json:"window_source,omitempty"`
	// Writable accepts host WriteTexture calls.
	Writable bool `json:"writable,omitempty"`
}

type SamplerVariant int

const (
	SamplerNonFilter SamplerVariant = iota
	SamplerFilter
	SamplerComparison
)

type FilterKind int

const (
	FilterLinear FilterKind = iota
	FilterAnisotropic
)

type CompareOp int

const (
	CompareNever CompareOp = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

type SamplerDecl struct {
	Variant SamplerVariant `json:"variant"`
	// Filter mode; only meaningful for SamplerFilter.
	Filter FilterKind `json:"filter,omitempty"`
	// Anisotropy level for FilterAnisotropic, >= 1.
	Anisotropy uint16 `json:"anisotropy,omitempty"`
	// Compare function; only meaningful for SamplerComparison.
	Compare CompareOp `json:"compare,omitempty"`
}

type Visibility int

const (
	VisibilityVertex Visibility = iota
	VisibilityFragment
	VisibilityBoth
)

type BindingKind int

const (
	BindingUniform BindingKind = iota
	BindingTexture
	BindingSampler
)

type ViewDim int

const (
	View2D ViewDim = iota
	View2DArray
	ViewCube
)

// BindingDecl is a tagged-variant binding entry. Exactly one of the variant
// payloads is meaningful, selected by Kind.
type BindingDecl struct {
	Binding    uint32      `json:"binding"`
	Visibility Visibility  `json:"visibility"`
	Kind       BindingKind `json:"kind"`

	// BindingUniform: a range of the uniform role buffer.
	UniformOffset uint64 `json:"uniform_offset,omitempty"`
	UniformSize   uint64 `json:"uniform_size,omitempty"`

	// BindingTexture: texture index, view dimension and whether the shader
	// samples it with a filtering sampler.
	Texture    int     `json:"texture,omitempty"`
	Dim        ViewDim `json:"dim,omitempty"`
	Filterable bool    `json:"filterable,omitempty"`

	// BindingSampler: sampler index.
	Sampler int `json:"sampler,omitempty"`
}

// BindGroupDecl lists zero-or-one uniform binding plus any number of texture
// and sampler bindings. Binding indices are unique within the group.
type BindGroupDecl struct {
	Entries []BindingDecl `json:"entries"`
}

type VertexFormat int

const (
	VertexFloat32 VertexFormat = iota
	VertexFloat32x2
	VertexFloat32x3
	VertexFloat32x4
	VertexUint32
	VertexSint32
	VertexUint32x4
)

type AttributeDecl struct {
	Format   VertexFormat `json:"format"`
	Offset   uint64       `json:"offset"`
	Location uint32       `json:"location"`
}

// InputLayout describes one vertex buffer slot: attribute list plus stride.
type InputLayout struct {
	Stride     uint64          `json:"stride"`
	Attributes []AttributeDecl `json:"attributes"`
}

type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

type BlendOp int

const (
	BlendAdd BlendOp = iota
	BlendSubtract
	BlendReverseSubtract
	BlendMin
	BlendMax
)

type BlendComponentDecl struct {
	Src BlendFactor `json:"src"`
	Dst BlendFactor `json:"dst"`
	Op  BlendOp     `json:"op"`
}

type BlendDecl struct {
	Color BlendComponentDecl `json:"color"`
	Alpha BlendComponentDecl `json:"alpha"`
}

// BlendAlpha is classic src-alpha over blending.
func BlendAlpha() *BlendDecl {
	return &BlendDecl{
		Color: BlendComponentDecl{Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha, Op: BlendAdd},
		Alpha: BlendComponentDecl{Src: BlendOne, Dst: BlendOne, Op: BlendAdd},
	}
}

// BlendAdditive accumulates color, as used by light accumulation passes.
func BlendAdditive() *BlendDecl {
	return &BlendDecl{
		Color: BlendComponentDecl{Src: BlendOne, Dst: BlendOne, Op: BlendAdd},
		Alpha: BlendComponentDecl{Src: BlendOne, Dst: BlendOne, Op: BlendAdd},
	}
}

// PipelineInput declares the optional vertex (slot 0) and instance (slot 1)
// input layouts of a pipeline.
type PipelineInput struct {
	Vertex   *InputLayout `json:"vertex,omitempty"`
	Instance *InputLayout `json:"instance,omitempty"`
}

type PipelineDecl struct {
	Input *PipelineInput `json:"input,omitempty"`
	// BindGroups are bind group indices in bind slot order.
	BindGroups []int `json:"bind_groups"`
	// ShaderURI locates the WGSL source; see ShaderServer.
	ShaderURI string `json:"shader_uri"`
	VSEntry   string `json:"vs_entry"`
	FSEntry   string `json:"fs_entry"`
	// Blends has one entry per color attachment of the owning pass; nil
	// entries disable blending for that target.
	Blends []*BlendDecl `json:"blends"`
	// DepthTest enables depth testing; the owning pass must then declare a
	// depth attachment.
	DepthTest bool `json:"depth_test,omitempty"`
}

// Color is a clear color in unorm [0,1] channel values.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

type ColorAttachmentDecl struct {
	Texture int `json:"texture"`
	// Clear, when set, selects a clear load op with the given color;
	// otherwise the previous contents are loaded.
	Clear *Color `json:"clear,omitempty"`
	// Store keeps the attachment contents after the pass ends.
	Store bool `json:"store"`
}

type DepthAttachmentDecl struct {
	Texture int `json:"texture"`
}

type PassDecl struct {
	// Pipelines owned by this pass, in declaration order.
	Pipelines []int                 `json:"pipelines"`
	Colors    []ColorAttachmentDecl `json:"colors"`
	Depth     *DepthAttachmentDecl  `json:"depth,omitempty"`
}

// Model is the complete render graph description.
type Model struct {
	Buffers    [bufferRoleCount]BufferDecl `json:"buffers"`
	Textures   []TextureDecl               `json:"textures"`
	Samplers   []SamplerDecl               `json:"samplers"`
	BindGroups []BindGroupDecl             `json:"bind_groups"`
	Pipelines  []PipelineDecl              `json:"pipelines"`
	Passes     []PassDecl                  `json:"passes"`
	// Stages group pass indices; stages run in order, passes within a stage
	// run in declaration order.
	Stages [][]int `json:"stages"`
}

// TextureUsage is the inferred usage bitset of a model texture.
type TextureUsage uint32

const (
	UsageAttachment TextureUsage = 1 << iota
	UsageSampled
	UsageHostWritable
	UsageWindowSource
)

func (u TextureUsage) Has(flag TextureUsage) bool { return u&flag != 0 }

// texelSize returns the byte size of one texel of the declared format.
func (t *TextureDecl) texelSize() uint32 {
	if t.Kind == TextureDepth {
		return 4
	}
	if t.Kind == TextureSrgb {
		return 4
	}
	var per uint32
	switch t.Texel {
	case TexelUnorm8, TexelSnorm8, TexelUint8, TexelSint8:
		per = 1
	case TexelUint16, TexelSint16, TexelFloat16:
		per = 2
	case TexelUint32, TexelSint32, TexelFloat32:
		per = 4
	}
	switch t.Channels {
	case ChannelsR:
		return per
	case ChannelsRG:
		return per * 2
	case ChannelsRGBA:
		return per * 4
	}
	return per
}

// mipExtent returns the size of the given mip level, clamped at 1 texel.
func (t *TextureDecl) mipExtent(mip uint32) Extent {
	w := t.Size.Width >> mip
	h := t.Size.Height >> mip
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return Extent{Width: w, Height: h, Layers: t.Size.Layers}
}

// vertexFormatSize returns the byte width of a vertex attribute format.
func vertexFormatSize(f VertexFormat) uint64 {
	switch f {
	case VertexFloat32, VertexUint32, VertexSint32:
		return 4
	case VertexFloat32x2:
		return 8
	case VertexFloat32x3:
		return 12
	case VertexFloat32x4, VertexUint32x4:
		return 16
	}
	return 0
}

package rendergraph

// ModelBuilder assembles a Model incrementally. Each Add method returns the
// index of the added declaration so later declarations can reference it.
type ModelBuilder struct {
	model Model
}

func NewModelBuilder() *ModelBuilder {
	return &ModelBuilder{}
}

// Buffer sets the capacity of the buffer with the given role.
func (b *ModelBuilder) Buffer(role BufferRole, capacity uint64) *ModelBuilder {
	b.model.Buffers[role] = BufferDecl{Capacity: capacity}
	return b
}

func (b *ModelBuilder) AddTexture(decl TextureDecl) int {
	if decl.MipLevels == 0 {
		decl.MipLevels = 1
	}
	if decl.SampleCount == 0 {
		decl.SampleCount = 1
	}
	if decl.Size.Layers == 0 {
		decl.Size.Layers = 1
	}
	b.model.Textures = append(b.model.Textures, decl)
	return len(b.model.Textures) - 1
}

func (b *ModelBuilder) AddSampler(decl SamplerDecl) int {
	b.model.Samplers = append(b.model.Samplers, decl)
	return len(b.model.Samplers) - 1
}

func (b *ModelBuilder) AddBindGroup(entries ...BindingDecl) int {
	b.model.BindGroups = append(b.model.BindGroups, BindGroupDecl{Entries: entries})
	return len(b.model.BindGroups) - 1
}

func (b *ModelBuilder) AddPipeline(decl PipelineDecl) int {
	b.model.Pipelines = append(b.model.Pipelines, decl)
	return len(b.model.Pipelines) - 1
}

func (b *ModelBuilder) AddPass(decl PassDecl) int {
	b.model.Passes = append(b.model.Passes, decl)
	return len(b.model.Passes) - 1
}

// Stage appends a stage running the given passes in order.
func (b *ModelBuilder) Stage(passes ...int) *ModelBuilder {
	b.model.Stages = append(b.model.Stages, passes)
	return b
}

// Build returns the assembled model. The builder must not be reused.
func (b *ModelBuilder) Build() *Model {
	return &b.model
}

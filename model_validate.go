package rendergraph

// Extra validation kinds beyond the cross-reference set; produced by the same
// single ingest pass.
const (
	DuplicateBindingIndex   ModelErrorKind = "duplicate binding index"
	MultipleUniformBindings ModelErrorKind = "multiple uniform bindings"
	InvalidFieldValue       ModelErrorKind = "invalid field value"
	NotWindowSource         ModelErrorKind = "texture is not a window source"
)

// validatedModel is the result of model ingest: the model plus everything
// derived from it in one pass. All later stores consume this, never the raw
// model, so index errors cannot occur at frame time.
type validatedModel struct {
	m *Model

	// usage[i] is the inferred usage bitset of texture i.
	usage []TextureUsage
	// owner[p] is the index of the unique pass that owns pipeline p.
	owner []int
	// passSamples[p] is the max sample count across the attachments of pass p.
	passSamples []uint32
}

// validateModel checks every model invariant and resolves cross references.
// uniformAlign is the device's minimum uniform buffer offset alignment;
// zero selects the WebGPU default of 256.
func validateModel(m *Model, uniformAlign uint64) (*validatedModel, error) {
	if uniformAlign == 0 {
		uniformAlign = 256
	}

	vm := &validatedModel{
		m:           m,
		usage:       make([]TextureUsage, len(m.Textures)),
		owner:       make([]int, len(m.Pipelines)),
		passSamples: make([]uint32, len(m.Passes)),
	}
	for i := range vm.owner {
		vm.owner[i] = -1
	}

	for i, tx := range m.Textures {
		if tx.Kind < TextureColor || tx.Kind > TextureSrgb {
			return nil, modelErr(InvalidFieldValue, "texture kind", i, int(tx.Kind))
		}
		if tx.Kind == TextureColor {
			if tx.Texel < TexelUnorm8 || tx.Texel > TexelFloat32 {
				return nil, modelErr(InvalidFieldValue, "texture texel type", i, int(tx.Texel))
			}
			if tx.Channels < ChannelsR || tx.Channels > ChannelsRGBA {
				return nil, modelErr(InvalidFieldValue, "texture channels", i, int(tx.Channels))
			}
		}
		if tx.Size.Width == 0 || tx.Size.Height == 0 || tx.Size.Layers == 0 {
			return nil, modelErr(InvalidFieldValue, "texture size", i)
		}
		if tx.MipLevels < 1 {
			return nil, modelErr(InvalidFieldValue, "texture mip levels", i, int(tx.MipLevels))
		}
		switch tx.SampleCount {
		case 1, 2, 4, 8:
		default:
			return nil, modelErr(InvalidFieldValue, "texture sample count", i, int(tx.SampleCount))
		}
		if tx.WindowSource {
			vm.usage[i] |= UsageWindowSource
		}
		if tx.Writable {
			vm.usage[i] |= UsageHostWritable
		}
	}

	for i, smp := range m.Samplers {
		switch smp.Variant {
		case SamplerNonFilter, SamplerComparison:
		case SamplerFilter:
			if smp.Filter < FilterLinear || smp.Filter > FilterAnisotropic {
				return nil, modelErr(InvalidFieldValue, "sampler filter", i, int(smp.Filter))
			}
		default:
			return nil, modelErr(InvalidFieldValue, "sampler variant", i, int(smp.Variant))
		}
		if smp.Compare < CompareNever || smp.Compare > CompareAlways {
			return nil, modelErr(InvalidFieldValue, "sampler compare", i, int(smp.Compare))
		}
	}

	// Passes: attachment references, pipeline ownership, sample counts.
	for pi, pass := range m.Passes {
		samples := uint32(1)
		for _, ca := range pass.Colors {
			if ca.Texture < 0 || ca.Texture >= len(m.Textures) {
				return nil, modelErr(UnknownReference, "pass color attachment", pi, ca.Texture)
			}
			vm.usage[ca.Texture] |= UsageAttachment
			if sc := m.Textures[ca.Texture].SampleCount; sc > samples {
				samples = sc
			}
		}
		if pass.Depth != nil {
			di := pass.Depth.Texture
			if di < 0 || di >= len(m.Textures) {
				return nil, modelErr(UnknownReference, "pass depth attachment", pi, di)
			}
			if m.Textures[di].Kind != TextureDepth {
				return nil, modelErr(DepthAttachmentMissing, "pass", pi, di)
			}
			vm.usage[di] |= UsageAttachment
			if sc := m.Textures[di].SampleCount; sc > samples {
				samples = sc
			}
		}
		vm.passSamples[pi] = samples

		for _, pl := range pass.Pipelines {
			if pl < 0 || pl >= len(m.Pipelines) {
				return nil, modelErr(UnknownReference, "pass pipeline", pi, pl)
			}
			if vm.owner[pl] != -1 {
				return nil, modelErr(PipelineMultiplyOwned, "pipeline", pl, vm.owner[pl], pi)
			}
			vm.owner[pl] = pi
		}
	}

	// Stages reference existing passes.
	for si, stage := range m.Stages {
		for _, pi := range stage {
			if pi < 0 || pi >= len(m.Passes) {
				return nil, modelErr(UnknownReference, "stage pass", si, pi)
			}
		}
	}

	// Bind groups: reference checks, binding uniqueness, uniform range.
	for gi, group := range m.BindGroups {
		seen := map[uint32]bool{}
		uniforms := 0
		for _, b := range group.Entries {
			if seen[b.Binding] {
				return nil, modelErr(DuplicateBindingIndex, "bind group", gi, int(b.Binding))
			}
			seen[b.Binding] = true

			if b.Visibility < VisibilityVertex || b.Visibility > VisibilityBoth {
				return nil, modelErr(InvalidFieldValue, "binding visibility", gi, int(b.Binding))
			}
			switch b.Kind {
			case BindingUniform:
				uniforms++
				if uniforms > 1 {
					return nil, modelErr(MultipleUniformBindings, "bind group", gi)
				}
				capacity := m.Buffers[BufferUniform].Capacity
				if b.UniformOffset+b.UniformSize > capacity {
					return nil, modelErr(UniformOutOfRange, "bind group", gi, int(b.Binding))
				}
				if b.UniformOffset%uniformAlign != 0 {
					return nil, modelErr(UniformMisaligned, "bind group", gi, int(b.Binding))
				}
			case BindingTexture:
				if b.Texture < 0 || b.Texture >= len(m.Textures) {
					return nil, modelErr(UnknownReference, "bind group texture", gi, b.Texture)
				}
				if b.Dim < View2D || b.Dim > ViewCube {
					return nil, modelErr(InvalidFieldValue, "binding view dimension", gi, int(b.Binding))
				}
				vm.usage[b.Texture] |= UsageSampled
			case BindingSampler:
				if b.Sampler < 0 || b.Sampler >= len(m.Samplers) {
					return nil, modelErr(UnknownReference, "bind group sampler", gi, b.Sampler)
				}
			default:
				return nil, modelErr(InvalidFieldValue, "binding kind", gi, int(b.Binding))
			}
		}
	}

	// Pipelines: ownership, bind group refs, blends, depth, shader locations.
	for pi, pl := range m.Pipelines {
		owner := vm.owner[pi]
		if owner == -1 {
			return nil, modelErr(PipelineNotOwned, "pipeline", pi)
		}
		for _, gi := range pl.BindGroups {
			if gi < 0 || gi >= len(m.BindGroups) {
				return nil, modelErr(UnknownReference, "pipeline bind group", pi, gi)
			}
		}
		if len(pl.Blends) != len(m.Passes[owner].Colors) {
			return nil, modelErr(BlendCountMismatch, "pipeline", pi, owner)
		}
		if pl.DepthTest {
			if m.Passes[owner].Depth == nil {
				return nil, modelErr(DepthAttachmentMissing, "pipeline", pi, owner)
			}
		}
		if pl.Input != nil {
			locations := map[uint32]bool{}
			for _, layout := range []*InputLayout{pl.Input.Vertex, pl.Input.Instance} {
				if layout == nil {
					continue
				}
				for _, attr := range layout.Attributes {
					if attr.Format < VertexFloat32 || attr.Format > VertexUint32x4 {
						return nil, modelErr(InvalidFieldValue, "attribute format", pi, int(attr.Format))
					}
					if locations[attr.Location] {
						return nil, modelErr(DuplicateShaderLocation, "pipeline", pi, int(attr.Location))
					}
					locations[attr.Location] = true
				}
			}
		}
	}

	return vm, nil
}

// attachmentClosure returns the transitive closure of textures co-used as
// attachments with anchor in any single pass, anchor included. The result is
// sorted ascending.
func (vm *validatedModel) attachmentClosure(anchor int) []int {
	in := make([]bool, len(vm.m.Textures))
	in[anchor] = true

	// Passes act as edges between their attachments; iterate until stable.
	for changed := true; changed; {
		changed = false
		for _, pass := range vm.m.Passes {
			members := passAttachments(&pass)
			hit := false
			for _, t := range members {
				if in[t] {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
			for _, t := range members {
				if !in[t] {
					in[t] = true
					changed = true
				}
			}
		}
	}

	var out []int
	for i, ok := range in {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func passAttachments(pass *PassDecl) []int {
	out := make([]int, 0, len(pass.Colors)+1)
	for _, ca := range pass.Colors {
		out = append(out, ca.Texture)
	}
	if pass.Depth != nil {
		out = append(out, pass.Depth.Texture)
	}
	return out
}

// bindGroupsReferencing returns the bind group indices whose entries touch
// any of the given textures.
func (vm *validatedModel) bindGroupsReferencing(textures []int) []int {
	touched := make(map[int]bool, len(textures))
	for _, t := range textures {
		touched[t] = true
	}
	var out []int
	for gi, group := range vm.m.BindGroups {
		for _, b := range group.Entries {
			if b.Kind == BindingTexture && touched[b.Texture] {
				out = append(out, gi)
				break
			}
		}
	}
	return out
}

package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelBuilder_Triangle(t *testing.T) {
	b := NewModelBuilder()
	b.Buffer(BufferIndex, 1<<10).
		Buffer(BufferVertex, 1<<12).
		Buffer(BufferUniform, 1<<10)

	target := b.AddTexture(TextureDecl{
		Kind:         TextureSrgb,
		Size:         Extent{Width: 640, Height: 480},
		WindowSource: true,
	})
	group := b.AddBindGroup(BindingDecl{
		Binding: 0, Visibility: VisibilityVertex, Kind: BindingUniform, UniformSize: 64,
	})
	pipe := b.AddPipeline(PipelineDecl{
		Input: &PipelineInput{Vertex: &InputLayout{
			Stride:     12,
			Attributes: []AttributeDecl{{Format: VertexFloat32x3, Location: 0}},
		}},
		BindGroups: []int{group},
		ShaderURI:  "builtin://blit_color",
		VSEntry:    "vs_main",
		FSEntry:    "fs_main",
		Blends:     []*BlendDecl{nil},
	})
	pass := b.AddPass(PassDecl{
		Pipelines: []int{pipe},
		Colors:    []ColorAttachmentDecl{{Texture: target, Clear: &Color{A: 1}, Store: true}},
	})
	b.Stage(pass)

	m := b.Build()
	vm, err := validateModel(m, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, vm.owner)
	assert.True(t, vm.usage[target].Has(UsageWindowSource))
}

func TestModelBuilder_TextureDefaults(t *testing.T) {
	b := NewModelBuilder()
	i := b.AddTexture(TextureDecl{Kind: TextureColor, Channels: ChannelsRGBA, Size: Extent{Width: 4, Height: 4}})
	m := b.Build()

	assert.Equal(t, uint32(1), m.Textures[i].MipLevels)
	assert.Equal(t, uint32(1), m.Textures[i].SampleCount)
	assert.Equal(t, uint32(1), m.Textures[i].Size.Layers)
}

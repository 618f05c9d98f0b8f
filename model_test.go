package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMipExtent(t *testing.T) {
	tx := TextureDecl{Size: Extent{Width: 800, Height: 600, Layers: 4}, MipLevels: 4}

	assert.Equal(t, Extent{Width: 800, Height: 600, Layers: 4}, tx.mipExtent(0))
	assert.Equal(t, Extent{Width: 400, Height: 300, Layers: 4}, tx.mipExtent(1))
	assert.Equal(t, Extent{Width: 200, Height: 150, Layers: 4}, tx.mipExtent(2))
}

func TestMipExtent_ClampsToOneTexel(t *testing.T) {
	tx := TextureDecl{Size: Extent{Width: 8, Height: 2, Layers: 1}, MipLevels: 5}
	assert.Equal(t, Extent{Width: 1, Height: 1, Layers: 1}, tx.mipExtent(4))
}

func TestTexelSize(t *testing.T) {
	cases := []struct {
		decl TextureDecl
		want uint32
	}{
		{TextureDecl{Kind: TextureDepth}, 4},
		{TextureDecl{Kind: TextureSrgb}, 4},
		{TextureDecl{Kind: TextureColor, Texel: TexelUnorm8, Channels: ChannelsR}, 1},
		{TextureDecl{Kind: TextureColor, Texel: TexelUnorm8, Channels: ChannelsRGBA}, 4},
		{TextureDecl{Kind: TextureColor, Texel: TexelFloat16, Channels: ChannelsRG}, 4},
		{TextureDecl{Kind: TextureColor, Texel: TexelFloat32, Channels: ChannelsRGBA}, 16},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.decl.texelSize(), "%+v", c.decl)
	}
}

func TestTextureUsageHas(t *testing.T) {
	u := UsageAttachment | UsageSampled
	assert.True(t, u.Has(UsageAttachment))
	assert.True(t, u.Has(UsageSampled))
	assert.False(t, u.Has(UsageHostWritable))
	assert.False(t, u.Has(UsageWindowSource))
}

func TestBufferRoleString(t *testing.T) {
	assert.Equal(t, "index", BufferIndex.String())
	assert.Equal(t, "uniform", BufferUniform.String())
}

func TestStockRefHelpers(t *testing.T) {
	b := StockOfBuffer(BufferVertex)
	assert.Equal(t, StockBuffer, b.Kind)
	assert.Equal(t, BufferVertex, b.Role)

	tx := StockOfTexture(7)
	assert.Equal(t, StockTexture, tx.Kind)
	assert.Equal(t, 7, tx.Texture)
}

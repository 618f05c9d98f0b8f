package rendergraph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBufferWrite(t *testing.T) {
	assert.NoError(t, checkBufferWrite(BufferVertex, 64, 0, 64))
	assert.NoError(t, checkBufferWrite(BufferVertex, 64, 64, 0))

	// One byte past capacity.
	err := checkBufferWrite(BufferVertex, 64, 1, 64)
	assert.ErrorIs(t, err, ErrOutOfCapacity)

	err = checkBufferWrite(BufferVertex, 64, 65, 0)
	assert.ErrorIs(t, err, ErrOutOfCapacity)
}

func TestCheckBufferWrite_OffsetNearCeiling(t *testing.T) {
	// offset+len would wrap around uint64; the check must still fail.
	err := checkBufferWrite(BufferUniform, 1<<16, math.MaxUint64-3, 8)
	assert.ErrorIs(t, err, ErrOutOfCapacity)
}

func writableTexture() TextureDecl {
	return TextureDecl{
		Kind:        TextureColor,
		Texel:       TexelUnorm8,
		Channels:    ChannelsRGBA,
		Size:        Extent{Width: 256, Height: 128, Layers: 4},
		MipLevels:   3,
		SampleCount: 1,
		Writable:    true,
	}
}

func TestCheckTextureWrite_Defaults(t *testing.T) {
	decl := writableTexture()
	region := TextureRegion{X: 0, Y: 0, Width: 256, Height: 128}
	layers, layout, err := checkTextureWrite(0, &decl, region, 0, LayerRange{}, TextureLayout{})
	require.NoError(t, err)

	assert.Equal(t, LayerRange{Base: 0, Count: 1}, layers)
	assert.Equal(t, uint32(256*4), layout.BytesPerRow)
	assert.Equal(t, uint32(128), layout.RowsPerLayer)
}

func TestCheckTextureWrite_NotWritable(t *testing.T) {
	decl := writableTexture()
	decl.Writable = false
	_, _, err := checkTextureWrite(0, &decl, TextureRegion{Width: 1, Height: 1}, 0, LayerRange{}, TextureLayout{})
	assert.ErrorIs(t, err, ErrNotWritable)
}

func TestCheckTextureWrite_InvalidMip(t *testing.T) {
	decl := writableTexture()
	_, _, err := checkTextureWrite(0, &decl, TextureRegion{Width: 1, Height: 1}, 3, LayerRange{}, TextureLayout{})
	assert.ErrorIs(t, err, ErrInvalidMip)
}

func TestCheckTextureWrite_RegionBounds(t *testing.T) {
	decl := writableTexture()

	// One texel past the right edge.
	_, _, err := checkTextureWrite(0, &decl, TextureRegion{X: 1, Width: 256, Height: 1}, 0, LayerRange{}, TextureLayout{})
	assert.ErrorIs(t, err, ErrRegionOutOfBounds)

	// Fits at mip 0, not at mip 1.
	region := TextureRegion{Width: 200, Height: 100}
	_, _, err = checkTextureWrite(0, &decl, region, 0, LayerRange{}, TextureLayout{})
	assert.NoError(t, err)
	_, _, err = checkTextureWrite(0, &decl, region, 1, LayerRange{}, TextureLayout{})
	assert.ErrorIs(t, err, ErrRegionOutOfBounds)
}

func TestCheckTextureWrite_RegionOffsetNearCeiling(t *testing.T) {
	decl := writableTexture()
	region := TextureRegion{X: math.MaxUint32 - 1, Width: 4, Height: 1}
	_, _, err := checkTextureWrite(0, &decl, region, 0, LayerRange{}, TextureLayout{})
	assert.ErrorIs(t, err, ErrRegionOutOfBounds)
}

func TestCheckTextureWrite_LayerBounds(t *testing.T) {
	decl := writableTexture()
	region := TextureRegion{Width: 1, Height: 1}

	_, _, err := checkTextureWrite(0, &decl, region, 0, LayerRange{Base: 2, Count: 2}, TextureLayout{})
	assert.NoError(t, err)

	_, _, err = checkTextureWrite(0, &decl, region, 0, LayerRange{Base: 3, Count: 2}, TextureLayout{})
	assert.ErrorIs(t, err, ErrRegionOutOfBounds)

	_, _, err = checkTextureWrite(0, &decl, region, 0, LayerRange{Base: math.MaxUint32, Count: 2}, TextureLayout{})
	assert.ErrorIs(t, err, ErrRegionOutOfBounds)
}

// The store methods reject unknown indices before touching the device, so a
// bare store over a validated model is enough to exercise them.
func TestResourceStore_UnknownIndices(t *testing.T) {
	vm, err := validateModel(deferredModel(), 0)
	require.NoError(t, err)
	rs := &ResourceStore{vm: vm, textures: make([]*textureSlot, len(vm.m.Textures))}

	err = rs.WriteBuffer(BufferRole(9), nil, 0)
	assert.Equal(t, UnknownReference, kindOf(t, err))

	err = rs.WriteTexture(12, TextureRegion{Width: 1, Height: 1}, 0, LayerRange{}, TextureLayout{}, nil)
	assert.Equal(t, UnknownReference, kindOf(t, err))

	_, err = rs.ResizeAttachments(-1, Extent{Width: 8, Height: 8})
	assert.Equal(t, UnknownReference, kindOf(t, err))

	err = rs.InsertStock(StockOfBuffer(BufferRole(-1)), "bad-role", nil)
	assert.Equal(t, UnknownReference, kindOf(t, err))

	err = rs.InsertStock(StockOfTexture(99), "bad-texture", nil)
	assert.Equal(t, UnknownReference, kindOf(t, err))
}

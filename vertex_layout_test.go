package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutOf(t *testing.T) {
	type vertex struct {
		Pos    [3]float32 `render:"layout" location:"0" format:"float3"`
		Normal [3]float32 `render:"layout" location:"1" format:"float3"`
		UV     [2]float32 `render:"layout" location:"2" format:"float2"`
	}

	layout, err := LayoutOf(vertex{})
	require.NoError(t, err)
	assert.Equal(t, uint64(32), layout.Stride)
	require.Len(t, layout.Attributes, 3)

	assert.Equal(t, AttributeDecl{Format: VertexFloat32x3, Offset: 0, Location: 0}, layout.Attributes[0])
	assert.Equal(t, AttributeDecl{Format: VertexFloat32x3, Offset: 12, Location: 1}, layout.Attributes[1])
	assert.Equal(t, AttributeDecl{Format: VertexFloat32x2, Offset: 24, Location: 2}, layout.Attributes[2])
}

func TestLayoutOf_SkipsUntaggedFields(t *testing.T) {
	type vertex struct {
		Pos     [3]float32 `render:"layout" location:"0" format:"float3"`
		Padding float32
		ID      uint32 `render:"layout" location:"1" format:"uint"`
	}

	layout, err := LayoutOf(&vertex{})
	require.NoError(t, err)
	assert.Equal(t, uint64(20), layout.Stride)
	require.Len(t, layout.Attributes, 2)
	// The padding field still advances the offset.
	assert.Equal(t, uint64(16), layout.Attributes[1].Offset)
}

func TestLayoutOf_BadFormat(t *testing.T) {
	type vertex struct {
		Pos [3]float32 `render:"layout" location:"0" format:"vec3"`
	}
	_, err := LayoutOf(vertex{})
	assert.ErrorContains(t, err, "unsupported vertex format")
}

func TestLayoutOf_BadLocation(t *testing.T) {
	type vertex struct {
		Pos [3]float32 `render:"layout" location:"first" format:"float3"`
	}
	_, err := LayoutOf(vertex{})
	assert.ErrorContains(t, err, "location")
}

func TestLayoutOf_NotAStruct(t *testing.T) {
	_, err := LayoutOf([]float32{1, 2, 3})
	assert.Error(t, err)
}

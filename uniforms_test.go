package rendergraph

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUniform_Struct(t *testing.T) {
	type camera struct {
		View mgl32.Mat4
		Pos  mgl32.Vec3
		Time float32
	}
	u := camera{View: mgl32.Ident4(), Pos: mgl32.Vec3{1, 2, 3}, Time: 0.5}

	data, err := PackUniform(u)
	require.NoError(t, err)
	require.Len(t, data, 16*4+3*4+4)

	// Mat4 is column-major; the first float is 1.0.
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[64:68])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(data[76:80])))
}

func TestPackUniform_SliceAndPointer(t *testing.T) {
	type light struct {
		Color     mgl32.Vec4
		Intensity float32
	}
	lights := []light{
		{Color: mgl32.Vec4{1, 0, 0, 1}, Intensity: 2},
		{Color: mgl32.Vec4{0, 1, 0, 1}, Intensity: 3},
	}

	direct, err := PackUniform(lights)
	require.NoError(t, err)
	viaPtr, err := PackUniform(&lights)
	require.NoError(t, err)
	assert.Equal(t, direct, viaPtr)
	assert.Len(t, direct, 2*(4*4+4))
}

func TestPackUniform_Scalars(t *testing.T) {
	data, err := PackUniform(uint32(0xdeadbeef))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, data)
}

func TestPackUniform_Unsupported(t *testing.T) {
	_, err := PackUniform("not a uniform")
	assert.Error(t, err)

	type bad struct{ Name string }
	_, err = PackUniform(bad{Name: "x"})
	assert.Error(t, err)
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(0), AlignUp(0, 256))
	assert.Equal(t, uint64(256), AlignUp(1, 256))
	assert.Equal(t, uint64(256), AlignUp(256, 256))
	assert.Equal(t, uint64(512), AlignUp(257, 256))
}

package rendergraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderServer_Builtins(t *testing.T) {
	s := NewShaderServer()

	color, err := s.Load("builtin://blit_color")
	require.NoError(t, err)
	assert.Contains(t, color.Source, "vs_main")
	assert.Contains(t, color.Source, "fs_main")

	depth, err := s.Load("builtin://blit_depth")
	require.NoError(t, err)
	assert.Contains(t, depth.Source, "texture_depth_2d")
}

func TestShaderServer_LoadIsCached(t *testing.T) {
	s := NewShaderServer()
	a, err := s.Load("builtin://blit_color")
	require.NoError(t, err)
	b, err := s.Load("builtin://blit_color")
	require.NoError(t, err)
	assert.Equal(t, a.Id, b.Id)
}

func TestShaderServer_Register(t *testing.T) {
	s := NewShaderServer()
	src := "@vertex fn vs_main() {}"
	s.Register("mem://custom", src)

	got, err := s.Load("mem://custom")
	require.NoError(t, err)
	assert.Equal(t, src, got.Source)
	assert.NotEmpty(t, got.Id)
}

func TestShaderServer_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pass.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("fn fs_main() {}"), 0644))

	s := NewShaderServer()
	got, err := s.Load("file://" + path)
	require.NoError(t, err)
	assert.Equal(t, "fn fs_main() {}", got.Source)
}

func TestShaderServer_Missing(t *testing.T) {
	s := NewShaderServer()
	_, err := s.Load(filepath.Join(t.TempDir(), "missing.wgsl"))
	assert.Error(t, err)
}

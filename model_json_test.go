package rendergraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deferred.json")
	require.NoError(t, SaveModel(deferredModel(), path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, deferredModel(), loaded)
}

func TestLoadModel_RejectsInvalid(t *testing.T) {
	m := deferredModel()
	m.Passes[0].Colors[0].Texture = 99
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, SaveModel(m, path))

	_, err := LoadModel(path)
	assert.Error(t, err)
}

func TestLoadModel_RejectsBadFieldValues(t *testing.T) {
	m := deferredModel()
	m.Textures[1].Texel = 99
	path := filepath.Join(t.TempDir(), "bad-texel.json")
	require.NoError(t, SaveModel(m, path))

	_, err := LoadModel(path)
	assert.Equal(t, InvalidFieldValue, kindOf(t, err))
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadModel_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := LoadModel(path)
	assert.ErrorContains(t, err, "failed to parse")
}

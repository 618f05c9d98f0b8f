package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Attach validates the source texture before touching the surface, so the
// rejection paths run without a device.
func TestWindowBinder_AttachRejectsBadSource(t *testing.T) {
	vm, err := validateModel(deferredModel(), 0)
	require.NoError(t, err)
	wb := &WindowBinder{vm: vm, windows: map[string]*boundWindow{}}

	_, err = wb.Attach(99, WindowInfo{Name: "main", Width: 800, Height: 600})
	assert.Equal(t, UnknownReference, kindOf(t, err))

	// Texture 0 is a plain attachment, not a window source.
	_, err = wb.Attach(0, WindowInfo{Name: "main", Width: 800, Height: 600})
	assert.Equal(t, NotWindowSource, kindOf(t, err))
}

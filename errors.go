package rendergraph

import (
	"errors"
	"fmt"
)

// ModelErrorKind names the first violated model invariant.
type ModelErrorKind string

const (
	UnknownReference        ModelErrorKind = "unknown reference"
	DuplicateShaderLocation ModelErrorKind = "duplicate shader location"
	PipelineNotOwned        ModelErrorKind = "pipeline not owned by any pass"
	PipelineMultiplyOwned   ModelErrorKind = "pipeline owned by multiple passes"
	BlendCountMismatch      ModelErrorKind = "blend count mismatch"
	DepthAttachmentMissing  ModelErrorKind = "depth attachment missing"
	UniformOutOfRange       ModelErrorKind = "uniform out of range"
	UniformMisaligned       ModelErrorKind = "uniform misaligned"
)

// ModelError reports a model validation failure with the offending indices.
type ModelError struct {
	Kind ModelErrorKind
	// Where names the collection the indices refer to ("pipeline",
	// "bind group", "pass", ...).
	Where   string
	Indices []int
}

func (e *ModelError) Error() string {
	if len(e.Indices) == 0 {
		return fmt.Sprintf("invalid model: %s (%s)", e.Kind, e.Where)
	}
	return fmt.Sprintf("invalid model: %s (%s %v)", e.Kind, e.Where, e.Indices)
}

func modelErr(kind ModelErrorKind, where string, indices ...int) error {
	return &ModelError{Kind: kind, Where: where, Indices: indices}
}

var (
	// ErrOutOfCapacity reports a buffer write past the declared capacity.
	ErrOutOfCapacity = errors.New("write exceeds buffer capacity")
	// ErrRegionOutOfBounds reports a texture write outside the mip extent.
	ErrRegionOutOfBounds = errors.New("write region out of texture bounds")
	// ErrInvalidMip reports a mip level outside the declared range.
	ErrInvalidMip = errors.New("invalid mip level")
	// ErrUnknownWindow reports an operation on a window name that is not
	// attached.
	ErrUnknownWindow = errors.New("unknown window")
	// ErrUnknownStockLabel reports a SwapStock on a label never inserted.
	ErrUnknownStockLabel = errors.New("unknown stock label")
	// ErrNotWritable reports a host write to a texture without the writable
	// flag.
	ErrNotWritable = errors.New("texture is not host writable")

	// errSurfaceOutdated is internal: the frame is skipped and the caller
	// retries after reconfiguring.
	errSurfaceOutdated = errors.New("surface outdated")
)

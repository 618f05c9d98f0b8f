package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ReadBuffer copies a range of the active buffer of the given role into host
// memory through a staging buffer. It blocks until the copy completes, so it
// is meant for debugging and tests, not the frame loop.
func (c *Core) ReadBuffer(role BufferRole, offset, size uint64) ([]byte, error) {
	if role < 0 || role >= bufferRoleCount {
		return nil, modelErr(UnknownReference, "buffer role", int(role))
	}
	capacity := c.vm.m.Buffers[role].Capacity
	if offset > capacity || size > capacity-offset {
		return nil, fmt.Errorf("%w: read of %d bytes at %d exceeds capacity %d of %s buffer",
			ErrOutOfCapacity, size, offset, capacity, role)
	}

	staging, err := c.gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "readback staging",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := c.gpu.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "readback encoder"})
	if err != nil {
		return nil, fmt.Errorf("failed to create readback encoder: %w", err)
	}
	defer encoder.Release()
	if err := encoder.CopyBufferToBuffer(c.res.Buffer(role), offset, staging, 0, size); err != nil {
		return nil, fmt.Errorf("failed to record readback copy: %w", err)
	}
	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to finish readback encoder: %w", err)
	}
	defer commands.Release()
	c.gpu.queue.Submit(commands)

	var mapStatus wgpu.BufferMapAsyncStatus
	done := false
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		mapStatus = status
		done = true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}
	for !done {
		c.gpu.device.Poll(true, nil)
	}
	if mapStatus != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("staging buffer map failed: status %v", mapStatus)
	}
	defer staging.Unmap()

	mapped := staging.GetMappedRange(0, uint(size))
	out := make([]byte, size)
	copy(out, mapped)
	return out, nil
}

package lumen

import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/core1_0"
)

// BufferConfig is the immutable description of a buffer.
type BufferConfig struct {
	// Label tags the buffer in log output.
	Label string
	// Size is the buffer size in bytes.
	Size int
	// Usage declares every role the buffer will serve.
	Usage BufferUsage
	// HostAccess is the host's access pattern, driving memory-type
	// selection.
	HostAccess MemoryAccess
}

// Buffer is a typed device allocation with its backing memory.
type Buffer struct {
	ctxt   *Context
	memory core1_0.DeviceMemory
	buffer core1_0.Buffer
	cfg    BufferConfig
}

// BufferView is a non-owning byte range of a buffer, used at binding and
// command-recording time.
type BufferView struct {
	Buffer *Buffer
	Offset int
	Size   int
}

// bufferUsageFlags lowers the role bitset to Vulkan usage flags. Every role
// keeps its transfer companions so the staged upload/readback paths work
// without extra declarations.
func bufferUsageFlags(usage BufferUsage) core1_0.BufferUsageFlags {
	var flags core1_0.BufferUsageFlags
	if usage&BufferUsageStaging != 0 {
		flags |= core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst
	}
	if usage&BufferUsageUniform != 0 {
		flags |= core1_0.BufferUsageUniformBuffer | core1_0.BufferUsageTransferDst
	}
	if usage&BufferUsageStorage != 0 {
		flags |= core1_0.BufferUsageStorageBuffer |
			core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst
	}
	if usage&BufferUsageVertex != 0 {
		flags |= core1_0.BufferUsageVertexBuffer | core1_0.BufferUsageTransferDst
	}
	if usage&BufferUsageIndex != 0 {
		flags |= core1_0.BufferUsageIndexBuffer | core1_0.BufferUsageTransferDst
	}
	return flags
}

// NewBuffer creates a buffer and binds it to freshly-allocated device memory
// picked from the context's host-access ranking.
func NewBuffer(ctxt *Context, cfg BufferConfig) (*Buffer, error) {
	if cfg.Size <= 0 {
		return nil, preconditionf("buffer '%s' must have a positive size", cfg.Label)
	}
	if bufferUsageFlags(cfg.Usage) == 0 {
		return nil, preconditionf("buffer '%s' must declare at least one usage", cfg.Label)
	}

	buffer, res, err := ctxt.device.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        cfg.Size,
		Usage:       bufferUsageFlags(cfg.Usage),
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, backendError(res, err, "creating buffer '%s'", cfg.Label)
	}

	requirements := buffer.MemoryRequirements()
	memoryTypeIndex, err := ctxt.memoryTypeFor(cfg.HostAccess, requirements.MemoryTypeBits)
	if err != nil {
		buffer.Destroy(nil)
		return nil, err
	}

	memory, res, err := ctxt.device.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		buffer.Destroy(nil)
		return nil, backendError(res, err, "allocating memory for buffer '%s'", cfg.Label)
	}

	res, err = buffer.BindBufferMemory(memory, 0)
	if err != nil {
		memory.Free(nil)
		buffer.Destroy(nil)
		return nil, backendError(res, err, "binding memory for buffer '%s'", cfg.Label)
	}

	ctxt.logger.Debug("created buffer", "buffer", cfg.Label)
	return &Buffer{ctxt: ctxt, memory: memory, buffer: buffer, cfg: cfg}, nil
}

// Config returns the configuration the buffer was built with.
func (b *Buffer) Config() BufferConfig {
	return b.cfg
}

// View returns a sub-range view of the buffer.
func (b *Buffer) View(offset, size int) BufferView {
	return BufferView{Buffer: b, Offset: offset, Size: size}
}

// FullView returns a view covering the whole buffer.
func (b *Buffer) FullView() BufferView {
	return b.View(0, b.cfg.Size)
}

// Map exposes the viewed window of the underlying device memory. There is no
// bounce buffer; writes land in the allocation directly. The window must be
// unmapped before the next map of the same buffer.
func (v BufferView) Map() (unsafe.Pointer, error) {
	ptr, res, err := v.Buffer.memory.Map(v.Offset, v.Size, 0)
	if err != nil {
		return nil, backendError(res, err, "mapping buffer '%s'", v.Buffer.cfg.Label)
	}
	v.Buffer.ctxt.logger.Debug("mapped buffer",
		"buffer", v.Buffer.cfg.Label, "from", v.Offset, "to", v.Offset+v.Size)
	return ptr, nil
}

// Unmap releases the mapping created by Map.
func (v BufferView) Unmap() {
	v.Buffer.memory.Unmap()
	v.Buffer.ctxt.logger.Debug("unmapped buffer", "buffer", v.Buffer.cfg.Label)
}

// CopyToDevice maps the view and copies data into it. The view must be at
// least len(data) bytes.
func (v BufferView) CopyToDevice(data []byte) error {
	if len(data) == 0 {
		return preconditionf("cannot copy zero bytes into buffer '%s'", v.Buffer.cfg.Label)
	}
	if v.Size < len(data) {
		return preconditionf("buffer view of '%s' is too small for %d bytes", v.Buffer.cfg.Label, len(data))
	}
	ptr, err := v.Map()
	if err != nil {
		return err
	}
	defer v.Unmap()

	copy(unsafe.Slice((*byte)(ptr), len(data)), data)
	return nil
}

// CopyFromDevice maps the view and copies it into out. The view must be at
// least len(out) bytes.
func (v BufferView) CopyFromDevice(out []byte) error {
	if len(out) == 0 {
		return preconditionf("cannot copy zero bytes out of buffer '%s'", v.Buffer.cfg.Label)
	}
	if v.Size < len(out) {
		return preconditionf("buffer view of '%s' is too small for %d bytes", v.Buffer.cfg.Label, len(out))
	}
	ptr, err := v.Map()
	if err != nil {
		return err
	}
	defer v.Unmap()

	copy(out, unsafe.Slice((*byte)(ptr), len(out)))
	return nil
}

// Destroy releases the buffer and its memory. The buffer must not be
// referenced by any in-flight submission.
func (b *Buffer) Destroy() {
	if b.buffer == nil {
		return
	}
	b.buffer.Destroy(nil)
	b.memory.Free(nil)
	b.buffer = nil
	b.ctxt.logger.Debug("destroyed buffer", "buffer", b.cfg.Label)
}

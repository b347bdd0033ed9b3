package lumen

import (
	"github.com/vkngwrapper/core/v2/common"
)

// SubmitType is the capability class a command requires from the queue it is
// recorded against.
type SubmitType int32

const (
	// SubmitTypeAny inherits the submit type of the recording in progress.
	SubmitTypeAny SubmitType = iota
	// SubmitTypeGraphics requires a queue family with graphics capability.
	SubmitTypeGraphics
	// SubmitTypeCompute requires a queue family with compute capability.
	SubmitTypeCompute
)

func (t SubmitType) String() string {
	switch t {
	case SubmitTypeAny:
		return "Any"
	case SubmitTypeGraphics:
		return "Graphics"
	case SubmitTypeCompute:
		return "Compute"
	}
	return "Unknown"
}

// MemoryAccess describes an access pattern against a resource, either from
// the host (driving memory-type ranking) or from the device (driving barrier
// derivation).
type MemoryAccess int32

const (
	MemoryAccessNone MemoryAccess = iota
	MemoryAccessReadOnly
	MemoryAccessWriteOnly
	MemoryAccessReadWrite
)

func (a MemoryAccess) String() string {
	switch a {
	case MemoryAccessNone:
		return "None"
	case MemoryAccessReadOnly:
		return "ReadOnly"
	case MemoryAccessWriteOnly:
		return "WriteOnly"
	case MemoryAccessReadWrite:
		return "ReadWrite"
	}
	return "Unknown"
}

// BufferUsage indicates the roles a buffer can serve in commands and
// bindings.
type BufferUsage int32

var bufferUsageMapping = common.NewFlagStringMapping[BufferUsage]()

func (u BufferUsage) Register(str string) {
	bufferUsageMapping.Register(u, str)
}
func (u BufferUsage) String() string {
	return bufferUsageMapping.FlagsToString(u)
}

const (
	BufferUsageStaging BufferUsage = 1 << iota
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageVertex
	BufferUsageIndex

	BufferUsageNone BufferUsage = 0
)

func init() {
	BufferUsageStaging.Register("Staging")
	BufferUsageUniform.Register("Uniform")
	BufferUsageStorage.Register("Storage")
	BufferUsageVertex.Register("Vertex")
	BufferUsageIndex.Register("Index")
}

// ImageUsage indicates the roles an image can serve in commands and
// bindings.
type ImageUsage int32

var imageUsageMapping = common.NewFlagStringMapping[ImageUsage]()

func (u ImageUsage) Register(str string) {
	imageUsageMapping.Register(u, str)
}
func (u ImageUsage) String() string {
	return imageUsageMapping.FlagsToString(u)
}

const (
	// ImageUsageStaging forces linear tiling and host-orderable initial
	// layout. It cannot be combined with any other usage.
	ImageUsageStaging ImageUsage = 1 << iota
	ImageUsageSampled
	ImageUsageStorage
	ImageUsageAttachment
	// ImageUsagePresent only participates in barrier derivation; the
	// runtime never creates presentable images itself.
	ImageUsagePresent

	ImageUsageNone ImageUsage = 0
)

func init() {
	ImageUsageStaging.Register("Staging")
	ImageUsageSampled.Register("Sampled")
	ImageUsageStorage.Register("Storage")
	ImageUsageAttachment.Register("Attachment")
	ImageUsagePresent.Register("Present")
}

// ResourceType selects the descriptor kind of one binding in a task's
// resource-type list. Binding indices follow list order.
type ResourceType int32

const (
	ResourceTypeUniformBuffer ResourceType = iota
	ResourceTypeStorageBuffer
	ResourceTypeSampledImage
	ResourceTypeStorageImage
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeUniformBuffer:
		return "UniformBuffer"
	case ResourceTypeStorageBuffer:
		return "StorageBuffer"
	case ResourceTypeSampledImage:
		return "SampledImage"
	case ResourceTypeStorageImage:
		return "StorageImage"
	}
	return "Unknown"
}

// Topology selects the primitive topology of a graphics task.
type Topology int32

const (
	TopologyTriangle Topology = iota
	TopologyLine
	TopologyPoint
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangle:
		return "Triangle"
	case TopologyLine:
		return "Line"
	case TopologyPoint:
		return "Point"
	}
	return "Unknown"
}

// VertexInputRate selects per-vertex or per-instance attribute advance.
// Instance rate is reserved and currently rejected at task creation.
type VertexInputRate int32

const (
	VertexInputRateVertex VertexInputRate = iota
	VertexInputRateInstance
)

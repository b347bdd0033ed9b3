package lumen

import (
	"github.com/vkngwrapper/core/v2/core1_0"
)

// The color formats the runtime accepts for images and vertex attributes:
// 1-4 components of unorm/snorm bytes, 16/32-bit integers, or 32-bit floats.
// Everything else is reported as unsupported rather than guessed at.
var formatTexelSizes = map[core1_0.Format]int{
	core1_0.FormatR8UnsignedNormalized:          1,
	core1_0.FormatR8G8UnsignedNormalized:        2,
	core1_0.FormatR8G8B8UnsignedNormalized:      3,
	core1_0.FormatR8G8B8A8UnsignedNormalized:    4,
	core1_0.FormatR8SignedNormalized:            1,
	core1_0.FormatR8G8SignedNormalized:          2,
	core1_0.FormatR8G8B8SignedNormalized:        3,
	core1_0.FormatR8G8B8A8SignedNormalized:      4,
	core1_0.FormatR16UnsignedInt:                2,
	core1_0.FormatR16G16UnsignedInt:             4,
	core1_0.FormatR16G16B16UnsignedInt:          6,
	core1_0.FormatR16G16B16A16UnsignedInt:       8,
	core1_0.FormatR16SignedInt:                  2,
	core1_0.FormatR16G16SignedInt:               4,
	core1_0.FormatR16G16B16SignedInt:            6,
	core1_0.FormatR16G16B16A16SignedInt:         8,
	core1_0.FormatR32UnsignedInt:                4,
	core1_0.FormatR32G32UnsignedInt:             8,
	core1_0.FormatR32G32B32UnsignedInt:          12,
	core1_0.FormatR32G32B32A32UnsignedInt:       16,
	core1_0.FormatR32SignedInt:                  4,
	core1_0.FormatR32G32SignedInt:               8,
	core1_0.FormatR32G32B32SignedInt:            12,
	core1_0.FormatR32G32B32A32SignedInt:         16,
	core1_0.FormatR32SignedFloat:                4,
	core1_0.FormatR32G32SignedFloat:             8,
	core1_0.FormatR32G32B32SignedFloat:          12,
	core1_0.FormatR32G32B32A32SignedFloat:       16,
}

func formatTexelSize(format core1_0.Format) (int, error) {
	size, ok := formatTexelSizes[format]
	if !ok {
		return 0, unsupportedf("unrecognized pixel format %d", format)
	}
	return size, nil
}

// VertexInput declares one vertex attribute of a graphics task, in shader
// location order.
type VertexInput struct {
	Format core1_0.Format
	Rate   VertexInputRate
}

// inferVertexInput lays the configured attributes out as one interleaved
// binding: location = list position, offsets are running sums of texel
// sizes, stride is the total.
func inferVertexInput(inputs []VertexInput) ([]core1_0.VertexInputBindingDescription, []core1_0.VertexInputAttributeDescription, error) {
	if len(inputs) == 0 {
		return nil, nil, nil
	}

	var attributes []core1_0.VertexInputAttributeDescription
	offset := 0
	for i, input := range inputs {
		if input.Rate == VertexInputRateInstance {
			return nil, nil, unsupportedf("instanced draw is currently unsupported")
		}
		if input.Rate != VertexInputRateVertex {
			return nil, nil, preconditionf("unexpected vertex input rate %d", input.Rate)
		}
		size, err := formatTexelSize(input.Format)
		if err != nil {
			return nil, nil, err
		}
		attributes = append(attributes, core1_0.VertexInputAttributeDescription{
			Location: uint32(i),
			Binding:  0,
			Format:   input.Format,
			Offset:   offset,
		})
		offset += size
	}

	bindings := []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    offset,
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
	return bindings, attributes, nil
}

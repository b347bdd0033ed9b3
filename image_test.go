package lumen

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
)

func TestValidateImageConfigStagingIsExclusive(t *testing.T) {
	err := validateImageConfig(ImageConfig{
		Label:  "bad",
		Width:  16,
		Height: 16,
		Usage:  ImageUsageStaging | ImageUsageSampled,
	})
	require.ErrorIs(t, err, ErrPreconditionViolated)

	err = validateImageConfig(ImageConfig{
		Label:  "ok",
		Width:  16,
		Height: 16,
		Usage:  ImageUsageStaging,
	})
	require.NoError(t, err)
}

func TestValidateImageConfigRejects3D(t *testing.T) {
	err := validateImageConfig(ImageConfig{
		Label:  "volumetric",
		Width:  16,
		Height: 16,
		Depth:  4,
		Usage:  ImageUsageStorage,
	})
	require.ErrorIs(t, err, ErrPreconditionViolated)

	// Depth 0 and 1 both mean "2D".
	for _, depth := range []int{0, 1} {
		err = validateImageConfig(ImageConfig{
			Label:  "flat",
			Width:  16,
			Height: 16,
			Depth:  depth,
			Usage:  ImageUsageStorage,
		})
		require.NoError(t, err)
	}
}

func TestImageUsageFlags(t *testing.T) {
	flags := imageUsageFlags(ImageUsageSampled)
	require.Equal(t, core1_0.ImageUsageSampled|core1_0.ImageUsageTransferDst, flags)

	flags = imageUsageFlags(ImageUsageStorage)
	require.Equal(t, core1_0.ImageUsageStorage|core1_0.ImageUsageTransferSrc|core1_0.ImageUsageTransferDst, flags)

	flags = imageUsageFlags(ImageUsageAttachment)
	require.Equal(t, core1_0.ImageUsageTransferSrc|core1_0.ImageUsageTransferDst|
		core1_0.ImageUsageSampled|core1_0.ImageUsageColorAttachment|
		core1_0.ImageUsageInputAttachment, flags)

	flags = imageUsageFlags(ImageUsageStaging)
	require.Equal(t, core1_0.ImageUsageTransferSrc|core1_0.ImageUsageTransferDst, flags)
}

func TestBufferUsageFlags(t *testing.T) {
	flags := bufferUsageFlags(BufferUsageStaging)
	require.Equal(t, core1_0.BufferUsageTransferSrc|core1_0.BufferUsageTransferDst, flags)

	flags = bufferUsageFlags(BufferUsageUniform)
	require.Equal(t, core1_0.BufferUsageUniformBuffer|core1_0.BufferUsageTransferDst, flags)

	flags = bufferUsageFlags(BufferUsageStorage)
	require.Equal(t, core1_0.BufferUsageStorageBuffer|core1_0.BufferUsageTransferSrc|core1_0.BufferUsageTransferDst, flags)

	flags = bufferUsageFlags(BufferUsageVertex | BufferUsageIndex)
	require.Equal(t, core1_0.BufferUsageVertexBuffer|core1_0.BufferUsageIndexBuffer|core1_0.BufferUsageTransferDst, flags)
}

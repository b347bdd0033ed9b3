package lumen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_swapchain"
)

func TestBufferBarrierParamsStorageReadWrite(t *testing.T) {
	wantAccess := core1_0.AccessShaderRead | core1_0.AccessShaderWrite
	wantStage := core1_0.PipelineStageAllGraphics | core1_0.PipelineStageComputeShader

	for _, dst := range []bool{false, true} {
		access, stage, err := bufferBarrierParams(BufferUsageStorage, MemoryAccessReadWrite, dst)
		require.NoError(t, err)
		require.Equal(t, wantAccess, access)
		require.Equal(t, wantStage, stage)
	}
}

func TestBufferBarrierParamsDefaults(t *testing.T) {
	access, stage, err := bufferBarrierParams(BufferUsageStorage, MemoryAccessNone, false)
	require.NoError(t, err)
	require.Equal(t, core1_0.AccessFlags(0), access)
	require.Equal(t, core1_0.PipelineStageBottomOfPipe, stage)

	access, stage, err = bufferBarrierParams(BufferUsageStorage, MemoryAccessNone, true)
	require.NoError(t, err)
	require.Equal(t, core1_0.AccessFlags(0), access)
	require.Equal(t, core1_0.PipelineStageTopOfPipe, stage)
}

func TestBufferBarrierParamsRejectsIllegalPairs(t *testing.T) {
	cases := []struct {
		name   string
		usage  BufferUsage
		access MemoryAccess
	}{
		{"no usage", BufferUsageNone, MemoryAccessReadOnly},
		{"staging read-write", BufferUsageStaging, MemoryAccessReadWrite},
		{"vertex written", BufferUsageVertex, MemoryAccessWriteOnly},
		{"index written", BufferUsageIndex, MemoryAccessReadWrite},
		{"uniform written", BufferUsageUniform, MemoryAccessWriteOnly},
		{"combined usage", BufferUsageStaging | BufferUsageStorage, MemoryAccessReadOnly},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := bufferBarrierParams(tc.usage, tc.access, false)
			require.ErrorIs(t, err, ErrPreconditionViolated)
		})
	}
}

func TestImageBarrierParamsLayouts(t *testing.T) {
	access, stage, layout, err := imageBarrierParams(ImageUsageStaging, MemoryAccessReadOnly, false)
	require.NoError(t, err)
	require.Equal(t, core1_0.AccessTransferRead, access)
	require.Equal(t, core1_0.PipelineStageTransfer, stage)
	require.Equal(t, core1_0.ImageLayoutTransferSrcOptimal, layout)

	_, _, layout, err = imageBarrierParams(ImageUsageStorage, MemoryAccessReadWrite, true)
	require.NoError(t, err)
	require.Equal(t, core1_0.ImageLayoutGeneral, layout)

	_, _, layout, err = imageBarrierParams(ImageUsageSampled, MemoryAccessReadOnly, true)
	require.NoError(t, err)
	require.Equal(t, core1_0.ImageLayoutShaderReadOnlyOptimal, layout)
}

func TestImageBarrierParamsAttachmentSides(t *testing.T) {
	access, stage, layout, err := imageBarrierParams(ImageUsageAttachment, MemoryAccessWriteOnly, false)
	require.NoError(t, err)
	require.Equal(t, core1_0.AccessColorAttachmentWrite, access)
	require.Equal(t, core1_0.PipelineStageColorAttachmentOutput, stage)
	require.Equal(t, core1_0.ImageLayoutColorAttachmentOptimal, layout)

	access, _, _, err = imageBarrierParams(ImageUsageAttachment, MemoryAccessWriteOnly, true)
	require.NoError(t, err)
	require.Equal(t, core1_0.AccessColorAttachmentRead, access)
}

func TestImageBarrierParamsPresent(t *testing.T) {
	access, stage, layout, err := imageBarrierParams(ImageUsagePresent, MemoryAccessReadOnly, false)
	require.NoError(t, err)
	require.Equal(t, core1_0.AccessFlags(0), access)
	require.Equal(t, core1_0.PipelineStageBottomOfPipe, stage)
	require.Equal(t, khr_swapchain.ImageLayoutPresentSrc, layout)

	_, _, _, err = imageBarrierParams(ImageUsagePresent, MemoryAccessWriteOnly, false)
	require.ErrorIs(t, err, ErrPreconditionViolated)
}

func TestImageBarrierParamsNoneUsage(t *testing.T) {
	access, stage, layout, err := imageBarrierParams(ImageUsageNone, MemoryAccessReadWrite, false)
	require.NoError(t, err)
	require.Equal(t, core1_0.AccessFlags(0), access)
	require.Equal(t, core1_0.PipelineStageBottomOfPipe, stage)
	require.Equal(t, core1_0.ImageLayoutUndefined, layout)

	_, stage, layout, err = imageBarrierParams(ImageUsageNone, MemoryAccessReadWrite, true)
	require.NoError(t, err)
	require.Equal(t, core1_0.PipelineStageTopOfPipe, stage)
	require.Equal(t, core1_0.ImageLayoutUndefined, layout)
}

func TestImageBarrierParamsRejectsIllegalPairs(t *testing.T) {
	_, _, _, err := imageBarrierParams(ImageUsageStaging, MemoryAccessReadWrite, true)
	require.ErrorIs(t, err, ErrPreconditionViolated)

	_, _, _, err = imageBarrierParams(ImageUsageSampled, MemoryAccessWriteOnly, false)
	require.ErrorIs(t, err, ErrPreconditionViolated)

	_, _, _, err = imageBarrierParams(ImageUsageSampled|ImageUsageStorage, MemoryAccessReadOnly, false)
	require.ErrorIs(t, err, ErrPreconditionViolated)
}

func TestSecondaryRecordingRejectsInlineTransaction(t *testing.T) {
	transact := &transactionLike{level: core1_0.CommandBufferLevelSecondary}
	cmd := CmdInlineTransaction(&Transaction{label: "inner"})

	err := transact.record(&cmd)
	require.ErrorIs(t, err, ErrPreconditionViolated)
}

func TestAnySubmitTypeNeedsAPriorCommand(t *testing.T) {
	transact := &transactionLike{level: core1_0.CommandBufferLevelPrimary}

	_, err := transact.getCommandBuffer(SubmitTypeAny)
	require.True(t, errors.Is(err, ErrPreconditionViolated))
}

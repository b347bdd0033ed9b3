package lumen

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_swapchain"
)

// transactionSubmitDetail is one sub-submission of a recording: a command
// buffer on the queue family serving one submit type, chained to its
// neighbors by binary semaphores.
type transactionSubmitDetail struct {
	submitType      SubmitType
	cmdPool         core1_0.CommandPool
	cmdBuffer       core1_0.CommandBuffer
	waitSemaphore   core1_0.Semaphore
	signalSemaphore core1_0.Semaphore
}

// transactionLike is a recording in progress, either PRIMARY (direct
// submission through a drain) or SECONDARY (pre-building a reusable
// transaction). Commands always append to the last submit detail.
type transactionLike struct {
	ctxt    *Context
	level   core1_0.CommandBufferLevel
	details []transactionSubmitDetail
}

func (t *transactionLike) beginCommandBuffer(detail *transactionSubmitDetail) error {
	beginInfo := core1_0.CommandBufferBeginInfo{
		InheritanceInfo: &core1_0.CommandBufferInheritanceInfo{},
	}
	if t.level == core1_0.CommandBufferLevelSecondary && detail.submitType == SubmitTypeGraphics {
		// Graphics spans of a transaction replay inside the host pass.
		beginInfo.Flags = core1_0.CommandBufferUsageRenderPassContinue
	}
	res, err := detail.cmdBuffer.Begin(beginInfo)
	return backendError(res, err, "beginning command buffer")
}

func endCommandBuffer(detail *transactionSubmitDetail) error {
	res, err := detail.cmdBuffer.End()
	return backendError(res, err, "ending command buffer")
}

// pushSubmitDetail appends a fresh submit detail for submitType: its own
// resettable command pool, one command buffer at the recording's level, and
// a fresh signal semaphore. The previous detail's signal becomes this one's
// wait.
func (t *transactionLike) pushSubmitDetail(submitType SubmitType) error {
	detail, err := t.ctxt.submitDetail(submitType)
	if err != nil {
		return err
	}

	cmdPool, res, err := t.ctxt.device.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: detail.queueFamilyIndex,
	})
	if err != nil {
		return backendError(res, err, "creating command pool")
	}

	cmdBuffers, res, err := t.ctxt.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        cmdPool,
		Level:              t.level,
		CommandBufferCount: 1,
	})
	if err != nil {
		cmdPool.Destroy(nil)
		return backendError(res, err, "allocating command buffer")
	}

	signal, res, err := t.ctxt.device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		cmdPool.Destroy(nil)
		return backendError(res, err, "creating signal semaphore")
	}

	var wait core1_0.Semaphore
	if len(t.details) > 0 {
		wait = t.details[len(t.details)-1].signalSemaphore
	}

	t.details = append(t.details, transactionSubmitDetail{
		submitType:      submitType,
		cmdPool:         cmdPool,
		cmdBuffer:       cmdBuffers[0],
		waitSemaphore:   wait,
		signalSemaphore: signal,
	})
	return nil
}

// clearSubmitDetails destroys the transient recording state: every signal
// semaphore and command pool (freeing the buffers with the pools).
func clearSubmitDetails(ctxt *Context, details []transactionSubmitDetail) {
	for i := range details {
		details[i].signalSemaphore.Destroy(nil)
		details[i].cmdPool.Destroy(nil)
	}
}

// submitDetailToQueue submits one ended command buffer to its queue,
// waiting on the previous sub-submission's semaphore at TOP_OF_PIPE and
// signaling its own. fence may be nil except for the chain's last link.
func submitDetailToQueue(ctxt *Context, detail *transactionSubmitDetail, fence core1_0.Fence) error {
	ctxtDetail, err := ctxt.submitDetail(detail.submitType)
	if err != nil {
		return err
	}

	info := core1_0.SubmitInfo{
		CommandBuffers:   []core1_0.CommandBuffer{detail.cmdBuffer},
		SignalSemaphores: []core1_0.Semaphore{detail.signalSemaphore},
	}
	if detail.waitSemaphore != nil {
		info.WaitSemaphores = []core1_0.Semaphore{detail.waitSemaphore}
		info.WaitDstStageMask = []core1_0.PipelineStageFlags{core1_0.PipelineStageTopOfPipe}
	}

	res, err := ctxtDetail.queue.Submit(fence, []core1_0.SubmitInfo{info})
	return backendError(res, err, "submitting to %s queue", detail.submitType)
}

// getCommandBuffer returns the command buffer commands for submitType feed
// into, switching sub-submissions when the type changes. A PRIMARY
// recording submits the ended buffer immediately so the device can start
// on it while recording continues.
func (t *transactionLike) getCommandBuffer(submitType SubmitType) (core1_0.CommandBuffer, error) {
	if submitType == SubmitTypeAny {
		if len(t.details) == 0 {
			return nil, preconditionf("cannot infer submit type for submit-type-independent command")
		}
		submitType = t.details[len(t.details)-1].submitType
	}
	if _, err := t.ctxt.submitDetail(submitType); err != nil {
		return nil, err
	}

	if len(t.details) > 0 {
		last := &t.details[len(t.details)-1]
		if submitType == last.submitType {
			return last.cmdBuffer, nil
		}

		err := endCommandBuffer(last)
		if err != nil {
			return nil, err
		}
		if t.level == core1_0.CommandBufferLevelPrimary {
			err = submitDetailToQueue(t.ctxt, last, nil)
			if err != nil {
				return nil, err
			}
		}
	}

	err := t.pushSubmitDetail(submitType)
	if err != nil {
		return nil, err
	}
	last := &t.details[len(t.details)-1]
	err = t.beginCommandBuffer(last)
	if err != nil {
		return nil, err
	}
	return last.cmdBuffer, nil
}

// bufferBarrierParams derives the access mask and pipeline stage of one
// side of a buffer barrier from its (usage, device access) pair. The
// defaults — zero access at BOTTOM_OF_PIPE for sources, TOP_OF_PIPE for
// destinations — apply when the device access is None.
func bufferBarrierParams(usage BufferUsage, devAccess MemoryAccess, dst bool) (core1_0.AccessFlags, core1_0.PipelineStageFlags, error) {
	var access core1_0.AccessFlags
	stage := core1_0.PipelineStageBottomOfPipe
	if dst {
		stage = core1_0.PipelineStageTopOfPipe
	}
	if devAccess == MemoryAccessNone {
		return access, stage, nil
	}

	switch usage {
	case BufferUsageNone:
		return 0, 0, preconditionf("buffer barrier must be specified with a usage")
	case BufferUsageStaging:
		switch devAccess {
		case MemoryAccessReadOnly:
			return core1_0.AccessTransferRead, core1_0.PipelineStageTransfer, nil
		case MemoryAccessWriteOnly:
			return core1_0.AccessTransferWrite, core1_0.PipelineStageTransfer, nil
		}
		return 0, 0, preconditionf("buffer used for staging can't be both read and written")
	case BufferUsageVertex:
		if devAccess == MemoryAccessReadOnly {
			return core1_0.AccessVertexAttributeRead, core1_0.PipelineStageVertexInput, nil
		}
		return 0, 0, preconditionf("buffer used for vertex input cannot be written")
	case BufferUsageIndex:
		if devAccess == MemoryAccessReadOnly {
			return core1_0.AccessIndexRead, core1_0.PipelineStageVertexInput, nil
		}
		return 0, 0, preconditionf("buffer used for index input cannot be written")
	case BufferUsageUniform:
		if devAccess == MemoryAccessReadOnly {
			return core1_0.AccessUniformRead,
				core1_0.PipelineStageVertexShader | core1_0.PipelineStageFragmentShader | core1_0.PipelineStageComputeShader,
				nil
		}
		return 0, 0, preconditionf("buffer used for uniform cannot be written")
	case BufferUsageStorage:
		stage := core1_0.PipelineStageAllGraphics | core1_0.PipelineStageComputeShader
		switch devAccess {
		case MemoryAccessReadOnly:
			return core1_0.AccessShaderRead, stage, nil
		case MemoryAccessWriteOnly:
			return core1_0.AccessShaderWrite, stage, nil
		default:
			return core1_0.AccessShaderRead | core1_0.AccessShaderWrite, stage, nil
		}
	}
	return 0, 0, preconditionf("cannot make buffer barrier with a combined usage %s", usage)
}

// imageBarrierParams derives the access mask, pipeline stage and layout of
// one side of an image barrier from its (usage, device access) pair. dst
// selects the destination-side table, which differs for attachments and in
// its default stage.
func imageBarrierParams(usage ImageUsage, devAccess MemoryAccess, dst bool) (core1_0.AccessFlags, core1_0.PipelineStageFlags, core1_0.ImageLayout, error) {
	var access core1_0.AccessFlags
	stage := core1_0.PipelineStageBottomOfPipe
	if dst {
		stage = core1_0.PipelineStageTopOfPipe
	}
	layout := core1_0.ImageLayoutUndefined
	if devAccess == MemoryAccessNone || usage == ImageUsageNone {
		return access, stage, layout, nil
	}

	switch usage {
	case ImageUsageStaging:
		switch devAccess {
		case MemoryAccessReadOnly:
			return core1_0.AccessTransferRead, core1_0.PipelineStageTransfer,
				core1_0.ImageLayoutTransferSrcOptimal, nil
		case MemoryAccessWriteOnly:
			return core1_0.AccessTransferWrite, core1_0.PipelineStageTransfer,
				core1_0.ImageLayoutTransferDstOptimal, nil
		}
		return 0, 0, layout, preconditionf("image used for staging can't be both read and written")
	case ImageUsageAttachment:
		if devAccess == MemoryAccessReadOnly {
			return core1_0.AccessInputAttachmentRead, core1_0.PipelineStageFragmentShader,
				core1_0.ImageLayoutColorAttachmentOptimal, nil
		}
		// Fragment output. The source side already wrote the attachment;
		// the destination side is about to read it back through blending.
		if dst {
			return core1_0.AccessColorAttachmentRead, core1_0.PipelineStageColorAttachmentOutput,
				core1_0.ImageLayoutColorAttachmentOptimal, nil
		}
		return core1_0.AccessColorAttachmentWrite, core1_0.PipelineStageColorAttachmentOutput,
			core1_0.ImageLayoutColorAttachmentOptimal, nil
	case ImageUsageSampled:
		if devAccess == MemoryAccessReadOnly {
			return core1_0.AccessShaderRead,
				core1_0.PipelineStageFragmentShader | core1_0.PipelineStageComputeShader,
				core1_0.ImageLayoutShaderReadOnlyOptimal, nil
		}
		return 0, 0, layout, preconditionf("image used for sampling cannot be written")
	case ImageUsageStorage:
		stage := core1_0.PipelineStageFragmentShader | core1_0.PipelineStageComputeShader
		switch devAccess {
		case MemoryAccessReadOnly:
			return core1_0.AccessShaderRead, stage, core1_0.ImageLayoutGeneral, nil
		case MemoryAccessWriteOnly:
			return core1_0.AccessShaderWrite, stage, core1_0.ImageLayoutGeneral, nil
		default:
			return core1_0.AccessShaderRead | core1_0.AccessShaderWrite, stage,
				core1_0.ImageLayoutGeneral, nil
		}
	case ImageUsagePresent:
		if devAccess == MemoryAccessReadOnly {
			return 0, core1_0.PipelineStageBottomOfPipe, khr_swapchain.ImageLayoutPresentSrc, nil
		}
		return 0, 0, layout, preconditionf("image used for present cannot be written")
	}
	return 0, 0, layout, preconditionf("cannot make image barrier with a combined usage %s", usage)
}

func (t *transactionLike) recordSetSubmitType(cmd *Command) error {
	_, err := t.getCommandBuffer(cmd.submitType)
	if err != nil {
		return err
	}
	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("command drain submit type is set", "submitType", cmd.submitType.String())
	}
	return nil
}

func (t *transactionLike) recordInlineTransaction(cmd *Command) error {
	if t.level != core1_0.CommandBufferLevelPrimary {
		return preconditionf("nested inline transaction is not allowed")
	}
	sub := cmd.transaction

	for i := range sub.details {
		detail := &sub.details[i]
		cmdBuffer, err := t.getCommandBuffer(detail.submitType)
		if err != nil {
			return err
		}
		cmdBuffer.CmdExecuteCommands([]core1_0.CommandBuffer{detail.cmdBuffer})
	}

	t.ctxt.logger.Debug("scheduled inline transaction", "transaction", sub.label)
	return nil
}

func (t *transactionLike) recordCopyBufferToImage(cmd *Command) error {
	src := cmd.srcBuffer
	dst := cmd.dstImage
	if dst.Width <= 0 || dst.Height <= 0 {
		return preconditionf("zero-sized copy from buffer '%s' to image '%s'",
			src.Buffer.cfg.Label, dst.Image.cfg.Label)
	}
	cmdBuffer, err := t.getCommandBuffer(SubmitTypeAny)
	if err != nil {
		return err
	}

	err = cmdBuffer.CmdCopyBufferToImage(src.Buffer.buffer, dst.Image.image,
		core1_0.ImageLayoutTransferDstOptimal, []core1_0.BufferImageCopy{
			{
				BufferOffset:      src.Offset,
				BufferRowLength:   0,
				BufferImageHeight: dst.Image.cfg.Height,
				ImageSubresource: core1_0.ImageSubresourceLayers{
					AspectMask:     core1_0.ImageAspectColor,
					MipLevel:       0,
					BaseArrayLayer: 0,
					LayerCount:     1,
				},
				ImageOffset: core1_0.Offset3D{X: dst.XOffset, Y: dst.YOffset},
				ImageExtent: core1_0.Extent3D{Width: dst.Width, Height: dst.Height, Depth: 1},
			},
		})
	if err != nil {
		return backendError(core1_0.VKErrorUnknown, err, "copying buffer to image")
	}
	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("scheduled copy from buffer to image",
			"src", src.Buffer.cfg.Label, "dst", dst.Image.cfg.Label)
	}
	return nil
}

func (t *transactionLike) recordCopyImageToBuffer(cmd *Command) error {
	src := cmd.srcImage
	dst := cmd.dstBuffer
	if src.Width <= 0 || src.Height <= 0 {
		return preconditionf("zero-sized copy from image '%s' to buffer '%s'",
			src.Image.cfg.Label, dst.Buffer.cfg.Label)
	}
	cmdBuffer, err := t.getCommandBuffer(SubmitTypeAny)
	if err != nil {
		return err
	}

	err = cmdBuffer.CmdCopyImageToBuffer(src.Image.image,
		core1_0.ImageLayoutTransferSrcOptimal, dst.Buffer.buffer, []core1_0.BufferImageCopy{
			{
				BufferOffset:      dst.Offset,
				BufferRowLength:   0,
				BufferImageHeight: src.Image.cfg.Height,
				ImageSubresource: core1_0.ImageSubresourceLayers{
					AspectMask:     core1_0.ImageAspectColor,
					MipLevel:       0,
					BaseArrayLayer: 0,
					LayerCount:     1,
				},
				ImageOffset: core1_0.Offset3D{X: src.XOffset, Y: src.YOffset},
				ImageExtent: core1_0.Extent3D{Width: src.Width, Height: src.Height, Depth: 1},
			},
		})
	if err != nil {
		return backendError(core1_0.VKErrorUnknown, err, "copying image to buffer")
	}
	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("scheduled copy from image to buffer",
			"src", src.Image.cfg.Label, "dst", dst.Buffer.cfg.Label)
	}
	return nil
}

func (t *transactionLike) recordCopyBuffer(cmd *Command) error {
	src := cmd.srcBuffer
	dst := cmd.dstBuffer
	if src.Size != dst.Size {
		return preconditionf("buffer copy size mismatched: %d != %d", src.Size, dst.Size)
	}
	if dst.Size <= 0 {
		return preconditionf("zero-sized copy from buffer '%s' to buffer '%s'",
			src.Buffer.cfg.Label, dst.Buffer.cfg.Label)
	}
	cmdBuffer, err := t.getCommandBuffer(SubmitTypeAny)
	if err != nil {
		return err
	}

	err = cmdBuffer.CmdCopyBuffer(src.Buffer.buffer, dst.Buffer.buffer, []core1_0.BufferCopy{
		{
			SrcOffset: src.Offset,
			DstOffset: dst.Offset,
			Size:      dst.Size,
		},
	})
	if err != nil {
		return backendError(core1_0.VKErrorUnknown, err, "copying buffer to buffer")
	}
	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("scheduled copy from buffer to buffer",
			"src", src.Buffer.cfg.Label, "dst", dst.Buffer.cfg.Label)
	}
	return nil
}

func (t *transactionLike) recordCopyImage(cmd *Command) error {
	src := cmd.srcImage
	dst := cmd.dstImage
	if src.Width != dst.Width || src.Height != dst.Height {
		return preconditionf("image copy size mismatched")
	}
	if dst.Width <= 0 || dst.Height <= 0 {
		return preconditionf("zero-sized copy from image '%s' to image '%s'",
			src.Image.cfg.Label, dst.Image.cfg.Label)
	}
	cmdBuffer, err := t.getCommandBuffer(SubmitTypeAny)
	if err != nil {
		return err
	}

	subresource := core1_0.ImageSubresourceLayers{
		AspectMask:     core1_0.ImageAspectColor,
		MipLevel:       0,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
	err = cmdBuffer.CmdCopyImage(src.Image.image, core1_0.ImageLayoutTransferSrcOptimal,
		dst.Image.image, core1_0.ImageLayoutTransferDstOptimal, []core1_0.ImageCopy{
			{
				SrcSubresource: subresource,
				SrcOffset:      core1_0.Offset3D{X: src.XOffset, Y: src.YOffset},
				DstSubresource: subresource,
				DstOffset:      core1_0.Offset3D{X: dst.XOffset, Y: dst.YOffset},
				Extent:         core1_0.Extent3D{Width: dst.Width, Height: dst.Height, Depth: 1},
			},
		})
	if err != nil {
		return backendError(core1_0.VKErrorUnknown, err, "copying image to image")
	}
	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("scheduled copy from image to image",
			"src", src.Image.cfg.Label, "dst", dst.Image.cfg.Label)
	}
	return nil
}

func (t *transactionLike) recordDispatch(cmd *Command) error {
	cmdBuffer, err := t.getCommandBuffer(SubmitTypeCompute)
	if err != nil {
		return err
	}

	cmdBuffer.CmdBindPipeline(core1_0.PipelineBindPointCompute, cmd.task.pipeline)
	if cmd.pool.descSet != nil {
		cmdBuffer.CmdBindDescriptorSets(core1_0.PipelineBindPointCompute,
			cmd.task.pipeLayout, 0, []core1_0.DescriptorSet{cmd.pool.descSet}, nil)
	}
	cmdBuffer.CmdDispatch(cmd.workgroups[0], cmd.workgroups[1], cmd.workgroups[2])

	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("scheduled compute task for execution", "task", cmd.task.label)
	}
	return nil
}

func (t *transactionLike) recordDraw(cmd *Command) error {
	cmdBuffer, err := t.getCommandBuffer(SubmitTypeGraphics)
	if err != nil {
		return err
	}

	cmdBuffer.CmdBindPipeline(core1_0.PipelineBindPointGraphics, cmd.task.pipeline)
	if cmd.pool.descSet != nil {
		cmdBuffer.CmdBindDescriptorSets(core1_0.PipelineBindPointGraphics,
			cmd.task.pipeLayout, 0, []core1_0.DescriptorSet{cmd.pool.descSet}, nil)
	}
	cmdBuffer.CmdBindVertexBuffers(0, []core1_0.Buffer{cmd.vertexBuffer.Buffer.buffer},
		[]int{cmd.vertexBuffer.Offset})

	if cmd.kind == commandDrawIndexed {
		cmdBuffer.CmdBindIndexBuffer(cmd.indexBuffer.Buffer.buffer,
			cmd.indexBuffer.Offset, core1_0.IndexTypeUInt16)
		cmdBuffer.CmdDrawIndexed(cmd.indexCount, cmd.instanceCount, 0, 0, 0)
	} else {
		cmdBuffer.CmdDraw(cmd.vertexCount, cmd.instanceCount, 0, 0)
	}

	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("scheduled graphics task for execution", "task", cmd.task.label)
	}
	return nil
}

func (t *transactionLike) recordWriteTimestamp(cmd *Command) error {
	cmdBuffer, err := t.getCommandBuffer(SubmitTypeAny)
	if err != nil {
		return err
	}

	queryPool := cmd.timestamp.queryPool
	cmdBuffer.CmdResetQueryPool(queryPool, 0, 1)
	cmdBuffer.CmdWriteTimestamp(core1_0.PipelineStageAllCommands, queryPool, 0)

	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("scheduled timestamp write")
	}
	return nil
}

func (t *transactionLike) recordBufferBarrier(cmd *Command) error {
	srcAccess, srcStage, err := bufferBarrierParams(BufferUsage(cmd.srcUsageBits), cmd.srcDevAccess, false)
	if err != nil {
		return err
	}
	dstAccess, dstStage, err := bufferBarrierParams(BufferUsage(cmd.dstUsageBits), cmd.dstDevAccess, true)
	if err != nil {
		return err
	}

	cmdBuffer, err := t.getCommandBuffer(SubmitTypeAny)
	if err != nil {
		return err
	}

	err = cmdBuffer.CmdPipelineBarrier(srcStage, dstStage, 0, nil, []core1_0.BufferMemoryBarrier{
		{
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Buffer:              cmd.barrierBuffer.buffer,
			Offset:              0,
			Size:                -1,
		},
	}, nil)
	if err != nil {
		return backendError(core1_0.VKErrorUnknown, err, "recording buffer barrier")
	}
	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("scheduled buffer barrier", "buffer", cmd.barrierBuffer.cfg.Label)
	}
	return nil
}

func (t *transactionLike) recordImageBarrier(cmd *Command) error {
	srcAccess, srcStage, srcLayout, err := imageBarrierParams(ImageUsage(cmd.srcUsageBits), cmd.srcDevAccess, false)
	if err != nil {
		return err
	}
	dstAccess, dstStage, dstLayout, err := imageBarrierParams(ImageUsage(cmd.dstUsageBits), cmd.dstDevAccess, true)
	if err != nil {
		return err
	}

	cmdBuffer, err := t.getCommandBuffer(SubmitTypeAny)
	if err != nil {
		return err
	}

	err = cmdBuffer.CmdPipelineBarrier(srcStage, dstStage, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		{
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			OldLayout:           srcLayout,
			NewLayout:           dstLayout,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Image:               cmd.barrierImage.image,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		},
	})
	if err != nil {
		return backendError(core1_0.VKErrorUnknown, err, "recording image barrier")
	}
	if t.level == core1_0.CommandBufferLevelPrimary {
		t.ctxt.logger.Debug("scheduled image barrier", "image", cmd.barrierImage.cfg.Label)
	}
	return nil
}

func (t *transactionLike) recordBeginRenderPass(cmd *Command) error {
	if t.level != core1_0.CommandBufferLevelPrimary {
		return preconditionf("render pass commands are only legal in a direct submission")
	}
	cmdBuffer, err := t.getCommandBuffer(SubmitTypeGraphics)
	if err != nil {
		return err
	}

	contents := core1_0.SubpassContentsSecondaryCommandBuffers
	if cmd.drawInline {
		contents = core1_0.SubpassContentsInline
	}
	err = cmdBuffer.CmdBeginRenderPass(contents, core1_0.RenderPassBeginInfo{
		RenderPass:  cmd.pass.pass,
		Framebuffer: cmd.pass.framebuffer,
		RenderArea:  cmd.pass.area,
		ClearValues: []core1_0.ClearValue{cmd.pass.clearValue},
	})
	if err != nil {
		return backendError(core1_0.VKErrorUnknown, err, "beginning render pass")
	}

	t.ctxt.logger.Debug("scheduled render pass begin")
	return nil
}

func (t *transactionLike) recordEndRenderPass(cmd *Command) error {
	if t.level != core1_0.CommandBufferLevelPrimary {
		return preconditionf("render pass commands are only legal in a direct submission")
	}
	cmdBuffer, err := t.getCommandBuffer(SubmitTypeGraphics)
	if err != nil {
		return err
	}

	cmdBuffer.CmdEndRenderPass()
	t.ctxt.logger.Debug("scheduled render pass end")
	return nil
}

func (t *transactionLike) record(cmd *Command) error {
	switch cmd.kind {
	case commandSetSubmitType:
		return t.recordSetSubmitType(cmd)
	case commandInlineTransaction:
		return t.recordInlineTransaction(cmd)
	case commandCopyBufferToImage:
		return t.recordCopyBufferToImage(cmd)
	case commandCopyImageToBuffer:
		return t.recordCopyImageToBuffer(cmd)
	case commandCopyBuffer:
		return t.recordCopyBuffer(cmd)
	case commandCopyImage:
		return t.recordCopyImage(cmd)
	case commandDispatch:
		return t.recordDispatch(cmd)
	case commandDraw, commandDrawIndexed:
		return t.recordDraw(cmd)
	case commandWriteTimestamp:
		return t.recordWriteTimestamp(cmd)
	case commandBufferBarrier:
		return t.recordBufferBarrier(cmd)
	case commandImageBarrier:
		return t.recordImageBarrier(cmd)
	case commandBeginRenderPass:
		return t.recordBeginRenderPass(cmd)
	case commandEndRenderPass:
		return t.recordEndRenderPass(cmd)
	}
	return preconditionf("unknown command kind %d", cmd.kind)
}

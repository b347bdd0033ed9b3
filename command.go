package lumen

type commandKind int32

const (
	commandSetSubmitType commandKind = iota
	commandInlineTransaction
	commandCopyBufferToImage
	commandCopyImageToBuffer
	commandCopyBuffer
	commandCopyImage
	commandDispatch
	commandDraw
	commandDrawIndexed
	commandWriteTimestamp
	commandBufferBarrier
	commandImageBarrier
	commandBeginRenderPass
	commandEndRenderPass
)

// Command is one abstract operation in a recording. Build commands with the
// Cmd… constructors and hand the ordered list to a CommandDrain or a
// Transaction; the recorder lowers each to the matching driver calls on the
// right queue.
type Command struct {
	kind commandKind

	submitType SubmitType

	transaction *Transaction

	srcBuffer BufferView
	dstBuffer BufferView
	srcImage  ImageView
	dstImage  ImageView

	task          *Task
	pool          *ResourcePool
	workgroups    [3]int
	vertexBuffer  BufferView
	indexBuffer   BufferView
	vertexCount   int
	indexCount    int
	instanceCount int

	timestamp *Timestamp

	barrierBuffer *Buffer
	barrierImage  *Image
	srcUsageBits  int32
	dstUsageBits  int32
	srcDevAccess  MemoryAccess
	dstDevAccess  MemoryAccess

	pass       *RenderPass
	drawInline bool
}

// CmdSetSubmitType forces the recording onto the queue serving the given
// submit type without emitting any device work.
func CmdSetSubmitType(submitType SubmitType) Command {
	return Command{kind: commandSetSubmitType, submitType: submitType}
}

// CmdInlineTransaction replays a pre-recorded transaction inside the
// current recording. Only legal in a direct submission, not inside another
// transaction.
func CmdInlineTransaction(transaction *Transaction) Command {
	return Command{kind: commandInlineTransaction, transaction: transaction}
}

// CmdCopyBufferToImage copies a buffer range into an image window. The
// image is assumed to be in TRANSFER_DST_OPTIMAL; barrier first.
func CmdCopyBufferToImage(src BufferView, dst ImageView) Command {
	return Command{kind: commandCopyBufferToImage, srcBuffer: src, dstImage: dst}
}

// CmdCopyImageToBuffer copies an image window into a buffer range. The
// image is assumed to be in TRANSFER_SRC_OPTIMAL; barrier first.
func CmdCopyImageToBuffer(src ImageView, dst BufferView) Command {
	return Command{kind: commandCopyImageToBuffer, srcImage: src, dstBuffer: dst}
}

// CmdCopyBuffer copies between buffer ranges of equal size.
func CmdCopyBuffer(src, dst BufferView) Command {
	return Command{kind: commandCopyBuffer, srcBuffer: src, dstBuffer: dst}
}

// CmdCopyImage copies between image windows of equal extent. Source and
// destination are assumed to be in their transfer-optimal layouts.
func CmdCopyImage(src, dst ImageView) Command {
	return Command{kind: commandCopyImage, srcImage: src, dstImage: dst}
}

// CmdDispatch runs a compute task over the given 3D workgroup count. The
// workgroup size was specialized into the task at creation.
func CmdDispatch(task *Task, pool *ResourcePool, x, y, z int) Command {
	return Command{
		kind:       commandDispatch,
		task:       task,
		pool:       pool,
		workgroups: [3]int{x, y, z},
	}
}

// CmdDraw draws vertexCount vertices from the vertex buffer bound at
// binding 0.
func CmdDraw(task *Task, pool *ResourcePool, vertices BufferView, vertexCount, instanceCount int) Command {
	return Command{
		kind:          commandDraw,
		task:          task,
		pool:          pool,
		vertexBuffer:  vertices,
		vertexCount:   vertexCount,
		instanceCount: instanceCount,
	}
}

// CmdDrawIndexed draws indexCount 16-bit indices against the vertex buffer
// bound at binding 0.
func CmdDrawIndexed(task *Task, pool *ResourcePool, vertices, indices BufferView, indexCount, instanceCount int) Command {
	return Command{
		kind:          commandDrawIndexed,
		task:          task,
		pool:          pool,
		vertexBuffer:  vertices,
		indexBuffer:   indices,
		indexCount:    indexCount,
		instanceCount: instanceCount,
	}
}

// CmdWriteTimestamp resets and writes the timestamp's single query slot
// once all prior commands complete.
func CmdWriteTimestamp(timestamp *Timestamp) Command {
	return Command{kind: commandWriteTimestamp, timestamp: timestamp}
}

// CmdBufferBarrier orders accesses to a buffer: everything before the
// barrier under (srcUsage, srcDevAccess) happens before everything after it
// under (dstUsage, dstDevAccess). Access/stage masks are derived from the
// pairs; illegal pairs fail at record time.
func CmdBufferBarrier(buffer *Buffer, srcUsage BufferUsage, srcDevAccess MemoryAccess, dstUsage BufferUsage, dstDevAccess MemoryAccess) Command {
	return Command{
		kind:          commandBufferBarrier,
		barrierBuffer: buffer,
		srcUsageBits:  int32(srcUsage),
		dstUsageBits:  int32(dstUsage),
		srcDevAccess:  srcDevAccess,
		dstDevAccess:  dstDevAccess,
	}
}

// CmdImageBarrier orders accesses to an image and transitions its layout
// between the layouts implied by the (usage, access) pairs.
func CmdImageBarrier(image *Image, srcUsage ImageUsage, srcDevAccess MemoryAccess, dstUsage ImageUsage, dstDevAccess MemoryAccess) Command {
	return Command{
		kind:         commandImageBarrier,
		barrierImage: image,
		srcUsageBits: int32(srcUsage),
		dstUsageBits: int32(dstUsage),
		srcDevAccess: srcDevAccess,
		dstDevAccess: dstDevAccess,
	}
}

// CmdBeginRenderPass begins the pass on its framebuffer with its configured
// clear value. drawInline selects whether draws are recorded directly
// (true) or arrive through CmdInlineTransaction (false). Only legal in a
// direct submission.
func CmdBeginRenderPass(pass *RenderPass, drawInline bool) Command {
	return Command{kind: commandBeginRenderPass, pass: pass, drawInline: drawInline}
}

// CmdEndRenderPass ends the pass begun by CmdBeginRenderPass.
func CmdEndRenderPass() Command {
	return Command{kind: commandEndRenderPass}
}

package lumen

import (
	"time"

	"github.com/vkngwrapper/core/v2/core1_0"
)

// fenceSpinInterval bounds each wait slice so the host notices completion
// quickly without burning a full busy loop.
const fenceSpinInterval = 3 * time.Microsecond

// CommandDrain is a single-slot submission handle: record and submit a
// command list, wait for its fence, then reuse it. The transient recording
// state of the last submission lives on the drain until the wait recycles
// it.
type CommandDrain struct {
	ctxt    *Context
	details []transactionSubmitDetail
	fence   core1_0.Fence
	pending bool
}

// NewCommandDrain creates a drain with its reusable fence.
func NewCommandDrain(ctxt *Context) (*CommandDrain, error) {
	fence, res, err := ctxt.device.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err != nil {
		return nil, backendError(res, err, "creating drain fence")
	}
	ctxt.logger.Debug("created command drain")
	return &CommandDrain{ctxt: ctxt, fence: fence}, nil
}

// Submit records the command list as a primary recording and submits it.
// Intermediate sub-submissions go out as recording proceeds; the last one
// carries the drain's fence. The drain must not have an outstanding
// submission.
func (d *CommandDrain) Submit(cmds []Command) error {
	if len(cmds) == 0 {
		return preconditionf("cannot submit empty command list")
	}
	if d.pending {
		return preconditionf("command drain already has an outstanding submission")
	}

	transact := transactionLike{ctxt: d.ctxt, level: core1_0.CommandBufferLevelPrimary}
	started := time.Now()
	for i := range cmds {
		err := transact.record(&cmds[i])
		if err != nil {
			// Recording state up to the failure still holds live driver
			// objects; park it on the drain so Destroy can reclaim it
			// after the queues settle.
			d.details = transact.details
			return err
		}
	}
	d.details = transact.details

	last := &d.details[len(d.details)-1]
	err := endCommandBuffer(last)
	if err != nil {
		return err
	}
	err = submitDetailToQueue(d.ctxt, last, d.fence)
	if err != nil {
		return err
	}
	d.pending = true

	d.ctxt.logger.Debug("submitted transaction for execution",
		"recording", time.Since(started))
	return nil
}

// Wait blocks until the outstanding submission's fence signals, then resets
// the fence and destroys the submission's transient command pools and
// semaphores. Waiting on an already-drained drain is a no-op.
func (d *CommandDrain) Wait() error {
	if !d.pending {
		return nil
	}

	started := time.Now()
	for {
		res, err := d.ctxt.device.WaitForFences(true, fenceSpinInterval, []core1_0.Fence{d.fence})
		if res == core1_0.VKTimeout {
			continue
		}
		if err != nil {
			return backendError(res, err, "waiting on drain fence")
		}
		break
	}

	clearSubmitDetails(d.ctxt, d.details)
	d.details = nil
	res, err := d.ctxt.device.ResetFences([]core1_0.Fence{d.fence})
	if err != nil {
		return backendError(res, err, "resetting drain fence")
	}
	d.pending = false

	d.ctxt.logger.Debug("command drain returned",
		"wait", time.Since(started), "spinInterval", fenceSpinInterval)
	return nil
}

// Destroy releases the fence and whatever transient state the last
// submission left behind. Callers wait before destroying.
func (d *CommandDrain) Destroy() {
	if d.fence == nil {
		return
	}
	clearSubmitDetails(d.ctxt, d.details)
	d.details = nil
	d.fence.Destroy(nil)
	d.fence = nil
	d.ctxt.logger.Debug("destroyed command drain")
}

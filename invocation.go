package lumen

// BindResource names one resource to bind into an invocation's pool, at the
// binding index matching its position. Exactly one of the fields is set.
type BindResource struct {
	Buffer *BufferView
	Image  *ImageView
}

// ComputeInvocationConfig parameterizes a one-dispatch compute invocation.
type ComputeInvocationConfig struct {
	// Label tags the invocation in log output.
	Label string
	// Task is the compute task to dispatch.
	Task *Task
	// Bindings fill the task's resource list positionally.
	Bindings []BindResource
	// WorkgroupCount is the 3D dispatch size, in workgroups.
	WorkgroupCount [3]int
	// EnableTimestamp brackets the dispatch with timestamp writes so
	// TimeMicros can report device time.
	EnableTimestamp bool
}

// Invocation bundles a command list, the resource pool backing it and a
// drain into one submit/wait handle.
type Invocation struct {
	ctxt  *Context
	label string

	pool    *ResourcePool
	drain   *CommandDrain
	beginTS *Timestamp
	endTS   *Timestamp

	cmds []Command
}

// NewComputeInvocation builds the pool, binds the resources, and assembles
// the command list: pin the recording to the compute queue, optionally
// timestamp, dispatch, optionally timestamp again.
func NewComputeInvocation(ctxt *Context, cfg ComputeInvocationConfig) (*Invocation, error) {
	pool, err := NewResourcePool(cfg.Task)
	if err != nil {
		return nil, err
	}

	inv := &Invocation{ctxt: ctxt, label: cfg.Label, pool: pool}
	cleanup := func() {
		inv.destroyOwned()
	}

	for i, binding := range cfg.Bindings {
		switch {
		case binding.Buffer != nil:
			err = pool.BindBuffer(i, *binding.Buffer)
		case binding.Image != nil:
			err = pool.BindImage(i, *binding.Image)
		default:
			err = preconditionf("invocation '%s' binding %d names no resource", cfg.Label, i)
		}
		if err != nil {
			cleanup()
			return nil, err
		}
	}

	inv.cmds = append(inv.cmds, CmdSetSubmitType(SubmitTypeCompute))
	if cfg.EnableTimestamp {
		inv.beginTS, err = NewTimestamp(ctxt)
		if err != nil {
			cleanup()
			return nil, err
		}
		inv.endTS, err = NewTimestamp(ctxt)
		if err != nil {
			cleanup()
			return nil, err
		}
		inv.cmds = append(inv.cmds, CmdWriteTimestamp(inv.beginTS))
	}
	inv.cmds = append(inv.cmds, CmdDispatch(cfg.Task, pool,
		cfg.WorkgroupCount[0], cfg.WorkgroupCount[1], cfg.WorkgroupCount[2]))
	if cfg.EnableTimestamp {
		inv.cmds = append(inv.cmds, CmdWriteTimestamp(inv.endTS))
	}

	inv.drain, err = NewCommandDrain(ctxt)
	if err != nil {
		cleanup()
		return nil, err
	}

	ctxt.logger.Debug("created invocation", "invocation", cfg.Label)
	return inv, nil
}

// NewCommandInvocation wraps an arbitrary command list in an invocation.
// The list must start with a command whose submit type is not Any.
func NewCommandInvocation(ctxt *Context, label string, cmds []Command) (*Invocation, error) {
	if len(cmds) == 0 {
		return nil, preconditionf("invocation '%s' has no commands", label)
	}

	drain, err := NewCommandDrain(ctxt)
	if err != nil {
		return nil, err
	}
	ctxt.logger.Debug("created invocation", "invocation", label)
	return &Invocation{
		ctxt:  ctxt,
		label: label,
		drain: drain,
		cmds:  append([]Command(nil), cmds...),
	}, nil
}

// Submit sends the invocation's command list down its drain.
func (inv *Invocation) Submit() error {
	return inv.drain.Submit(inv.cmds)
}

// Wait blocks until the submitted work completes.
func (inv *Invocation) Wait() error {
	return inv.drain.Wait()
}

// SubmitAndWait submits and drains in one call.
func (inv *Invocation) SubmitAndWait() error {
	err := inv.Submit()
	if err != nil {
		return err
	}
	return inv.Wait()
}

// TimeMicros reports the device time between the invocation's bracketing
// timestamps, in microseconds. Only available after a drained submission of
// an invocation built with EnableTimestamp.
func (inv *Invocation) TimeMicros() (float64, error) {
	if inv.beginTS == nil || inv.endTS == nil {
		return 0, preconditionf("invocation '%s' was built without timestamps", inv.label)
	}
	begin, err := inv.beginTS.ResultMicros()
	if err != nil {
		return 0, err
	}
	end, err := inv.endTS.ResultMicros()
	if err != nil {
		return 0, err
	}
	return end - begin, nil
}

func (inv *Invocation) destroyOwned() {
	if inv.drain != nil {
		inv.drain.Destroy()
		inv.drain = nil
	}
	if inv.endTS != nil {
		inv.endTS.Destroy()
		inv.endTS = nil
	}
	if inv.beginTS != nil {
		inv.beginTS.Destroy()
		inv.beginTS = nil
	}
	if inv.pool != nil {
		inv.pool.Destroy()
		inv.pool = nil
	}
}

// Destroy releases the drain, timestamps and pool the invocation owns. The
// bound resources and the task belong to the caller.
func (inv *Invocation) Destroy() {
	inv.destroyOwned()
	inv.ctxt.logger.Debug("destroyed invocation", "invocation", inv.label)
}

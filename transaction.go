package lumen

import (
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Transaction is a pre-recorded command sequence held as secondary command
// buffers, one per submit-type span. Inlining it into a drain submission
// replays the identical device work; the host-side recording cost is paid
// once. Its own semaphores only chain its spans during construction and are
// not consulted when it is inlined — the enclosing primary recording does
// its own chaining when it switches submit types.
type Transaction struct {
	label   string
	ctxt    *Context
	details []transactionSubmitDetail
}

// NewTransaction records the command list at secondary level. Render-pass
// begin/end and nested inline transactions are rejected.
func NewTransaction(label string, ctxt *Context, cmds []Command) (*Transaction, error) {
	if len(cmds) == 0 {
		return nil, preconditionf("cannot record empty transaction '%s'", label)
	}
	for i := range cmds {
		if cmds[i].kind == commandInlineTransaction {
			return nil, preconditionf("nested inline transaction is not allowed")
		}
	}

	transact := transactionLike{ctxt: ctxt, level: core1_0.CommandBufferLevelSecondary}
	for i := range cmds {
		err := transact.record(&cmds[i])
		if err != nil {
			clearSubmitDetails(ctxt, transact.details)
			return nil, err
		}
	}
	err := endCommandBuffer(&transact.details[len(transact.details)-1])
	if err != nil {
		clearSubmitDetails(ctxt, transact.details)
		return nil, err
	}

	ctxt.logger.Debug("created transaction", "transaction", label)
	return &Transaction{label: label, ctxt: ctxt, details: transact.details}, nil
}

// Label returns the transaction's debug label.
func (t *Transaction) Label() string {
	return t.label
}

// Destroy releases the recorded command buffers, their pools and the
// construction semaphores. The transaction must not be referenced by any
// in-flight submission.
func (t *Transaction) Destroy() {
	if t.details == nil {
		return
	}
	clearSubmitDetails(t.ctxt, t.details)
	t.details = nil
	t.ctxt.logger.Debug("destroyed transaction", "transaction", t.label)
}

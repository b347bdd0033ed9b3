package lumen

import (
	"encoding/binary"

	"github.com/vkngwrapper/core/v2/core1_0"
)

// Timestamp is a single-slot timestamp query. CmdWriteTimestamp resets and
// writes the slot; ResultMicros fetches the tick count and scales it to
// microseconds using the device's timestamp period.
type Timestamp struct {
	ctxt      *Context
	queryPool core1_0.QueryPool
}

// NewTimestamp creates the one-slot query pool. Fails Unsupported when the
// device cannot timestamp its graphics and compute queues.
func NewTimestamp(ctxt *Context) (*Timestamp, error) {
	if !ctxt.timestampsAllowed {
		return nil, unsupportedf("device does not support timestamps on graphics and compute queues")
	}

	queryPool, res, err := ctxt.device.CreateQueryPool(nil, core1_0.QueryPoolCreateInfo{
		QueryType:  core1_0.QueryTypeTimestamp,
		QueryCount: 1,
	})
	if err != nil {
		return nil, backendError(res, err, "creating timestamp query pool")
	}

	ctxt.logger.Debug("created timestamp")
	return &Timestamp{ctxt: ctxt, queryPool: queryPool}, nil
}

// ResultMicros waits for the query to become available, then returns the
// timestamp scaled to microseconds.
func (t *Timestamp) ResultMicros() (float64, error) {
	results := make([]byte, 8)
	// QueryResultWait resolves not-ready inside the driver instead of
	// surfacing it.
	res, err := t.queryPool.PopulateResults(0, 1, results, 8,
		core1_0.QueryResult64Bit|core1_0.QueryResultWait)
	if err != nil {
		return 0, backendError(res, err, "fetching timestamp result")
	}

	ticks := binary.LittleEndian.Uint64(results)
	nsPerTick := float64(t.ctxt.props.Limits.TimestampPeriod)
	return float64(ticks) * nsPerTick / 1000.0, nil
}

// Destroy releases the query pool. The timestamp must not be referenced by
// any in-flight submission.
func (t *Timestamp) Destroy() {
	if t.queryPool == nil {
		return
	}
	t.queryPool.Destroy(nil)
	t.queryPool = nil
	t.ctxt.logger.Debug("destroyed timestamp")
}

package lumen

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// BuildStatsString streams a diagnostic snapshot of the context — device
// identity, queue-family allocation, and the memory-type ranking per host
// access class — into the writer.
func (c *Context) BuildStatsString(writer *jwriter.Writer) {
	obj := writer.Object()

	obj.Name("Label").String(c.cfg.Label)
	obj.Name("Device").String(DeviceDescription(c.cfg.DeviceIndex))
	obj.Name("TimestampSupport").Bool(c.timestampsAllowed)

	queues := obj.Name("QueueFamilies").Object()
	for _, req := range submitTypeRequirements {
		if detail, ok := c.submitDetails[req.submitType]; ok {
			queues.Name(req.submitType.String()).Int(detail.queueFamilyIndex)
		}
	}
	queues.End()

	ranking := obj.Name("MemoryTypeRanking").Object()
	for access := MemoryAccessNone; access <= MemoryAccessReadWrite; access++ {
		arr := ranking.Name(access.String()).Array()
		for _, idx := range c.memoryRank[access] {
			arr.Int(idx)
		}
		arr.End()
	}
	ranking.End()

	types := obj.Name("MemoryTypes").Array()
	for _, memType := range c.memoryTypes {
		entry := types.Object()
		entry.Name("HeapIndex").Int(memType.HeapIndex)
		entry.Name("PropertyFlags").String(memType.PropertyFlags.String())
		entry.End()
	}
	types.End()

	obj.End()
}

// StatsJSON renders BuildStatsString to a JSON document.
func (c *Context) StatsJSON() ([]byte, error) {
	writer := jwriter.NewWriter()
	c.BuildStatsString(&writer)
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return writer.Bytes(), nil
}

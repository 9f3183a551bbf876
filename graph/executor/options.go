package executor

import "github.com/wbrown/janus-graph/graph/annotations"

// DefaultBatchSize caps the keys of one batched backend read
const DefaultBatchSize = 256

// Options configures execution
type Options struct {
	// BatchSize caps the keys per multi-key read and the vertices per
	// prefetch when the step carries no batch size. 0 uses DefaultBatchSize.
	BatchSize int

	// Collector receives execution events (nil disables them)
	Collector *annotations.Collector
}

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

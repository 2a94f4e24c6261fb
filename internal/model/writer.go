package model

import "context"

// RecordWriter defines a generic interface for persisting the annotated
// records of a completed analysis run to an external store.
type RecordWriter interface {
	// Write persists the fully annotated record set under the given run ID.
	Write(ctx context.Context, runID string, records []TrafficRecord) error

	// Close releases the underlying connection.
	Close() error
}

// Package ledger persists per-filename processing status in the
// processing_queue table. The ledger serves two purposes: it excludes
// in-flight filenames from the next batch's candidate set, and it records the
// terminal outcome of every file a batch touched.
package ledger

import (
	"context"

	"github.com/bevalen/tune-energy-ocr-ui/constants"
)

// Entry is one processing_queue row.
type Entry struct {
	Filename string
	Status   constants.QueueStatus
	Error    string
}

// Ledger is the status table contract the orchestrator depends on.
type Ledger interface {
	// Active returns the filenames whose status is pending or processing.
	// These are excluded from a new batch's candidate set.
	Active(ctx context.Context) (map[string]struct{}, error)

	// Claim atomically takes ownership of a filename by writing status
	// "processing", but only when the row is absent or terminal. Returns false
	// when another run already holds it. Claiming before any download/submit
	// work is what makes duplicate triggers safe.
	Claim(ctx context.Context, filename string) (bool, error)

	// Upsert writes a terminal entry, creating the row if absent and
	// overwriting it otherwise.
	Upsert(ctx context.Context, entry Entry) error
}

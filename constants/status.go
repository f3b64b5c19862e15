package constants

// QueueStatus is the canonical status for rows in processing_queue.
type QueueStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending    QueueStatus = "pending"    // discovered, not yet claimed
	StatusProcessing QueueStatus = "processing" // claimed by a running batch
	StatusCompleted  QueueStatus = "completed"  // terminal success
	StatusFailed     QueueStatus = "failed"     // terminal failure
)

// Terminal reports whether a status will never change again. A filename whose
// row is non-terminal is excluded from the next batch's candidate set.
func (s QueueStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

package ocr

import "fmt"

// SubmissionError reports a failed document submission.
type SubmissionError struct {
	Filename string
	Status   int
	Reason   string
}

func (e *SubmissionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ocr submit %s failed: status %d: %s", e.Filename, e.Status, e.Reason)
	}
	return fmt.Sprintf("ocr submit %s failed: %s", e.Filename, e.Reason)
}

// RetrievalError reports a terminal non-2xx response while fetching text.
type RetrievalError struct {
	Handle string
	Status int
	Body   string
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("ocr retrieve %s failed: HTTP %d: %s", e.Handle, e.Status, e.Body)
}

// RetrievalTimeout reports that all retrieval attempts were exhausted while
// the job was still processing.
type RetrievalTimeout struct {
	Handle   string
	Attempts int
	Waited   string
}

func (e *RetrievalTimeout) Error() string {
	return fmt.Sprintf("ocr job %s timed out after %s (%d attempts)", e.Handle, e.Waited, e.Attempts)
}

package figi

// ChunkResult is the recorded outcome of one dispatched chunk, keyed by its sequence index.
// On success Input and Output are set; on failure Err holds the message and ErrType its
// category, and Output is nil. Plain fields keep it encodable for checkpoints.
type ChunkResult struct {
	Index   int
	Input   []Job
	Output  []JobResult
	Err     string
	ErrType string
}

// Failed reports whether the whole chunk failed
func (c ChunkResult) Failed() bool {
	return c.Err != ""
}

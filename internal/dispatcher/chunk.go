package dispatcher

import "figimapper/internal/figi"

// WorkItem is one chunk of jobs tagged with its position in the submission
type WorkItem struct {
	Index int
	Jobs  []figi.Job
}

// Chunk splits items into consecutive slices of at most limit elements.
// Concatenating the chunks in order reproduces items.
func Chunk[T any](items []T, limit int) [][]T {
	if limit <= 0 {
		limit = 1
	}
	chunks := make([][]T, 0, (len(items)+limit-1)/limit)
	for start := 0; start < len(items); start += limit {
		end := min(start+limit, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// WorkerCount never starts more workers than there are chunks
func WorkerCount(workers, chunks int) int {
	return max(min(workers, chunks), 0)
}

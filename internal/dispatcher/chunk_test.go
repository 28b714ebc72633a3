package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		limit int
		sizes []int
	}{
		{"single", 1, 100, []int{1}},
		{"exact", 200, 100, []int{100, 100}},
		{"remainder", 250, 100, []int{100, 100, 50}},
		{"limit one", 3, 1, []int{1, 1, 1}},
		{"empty", 0, 100, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.n)
			chunks := Chunk(items, tt.limit)

			sizes := make([]int, len(chunks))
			for i, c := range chunks {
				sizes[i] = len(c)
			}
			assert.Equal(t, tt.sizes, sizes)
		})
	}
}

func TestChunk_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		items := rapid.SliceOf(rapid.String()).Draw(rt, "items")
		limit := rapid.IntRange(1, 150).Draw(rt, "limit")

		chunks := Chunk(items, limit)

		// ceil(L/C) chunks
		want := (len(items) + limit - 1) / limit
		if len(chunks) != want {
			rt.Fatalf("got %d chunks, want %d", len(chunks), want)
		}

		// concatenation reproduces the input exactly
		var joined []string
		for i, c := range chunks {
			if len(c) == 0 || len(c) > limit {
				rt.Fatalf("chunk %d has size %d, limit %d", i, len(c), limit)
			}
			joined = append(joined, c...)
		}
		if len(joined) != len(items) {
			rt.Fatalf("joined length %d, want %d", len(joined), len(items))
		}
		for i := range items {
			if joined[i] != items[i] {
				rt.Fatalf("item %d = %q, want %q", i, joined[i], items[i])
			}
		}
	})
}

func TestWorkerCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		workers := rapid.IntRange(1, 64).Draw(rt, "workers")
		chunks := rapid.IntRange(0, 64).Draw(rt, "chunks")

		got := WorkerCount(workers, chunks)
		if got > chunks || got > workers {
			rt.Fatalf("WorkerCount(%d, %d) = %d exceeds an input", workers, chunks, got)
		}
		if got != workers && got != chunks {
			rt.Fatalf("WorkerCount(%d, %d) = %d, want min", workers, chunks, got)
		}
	})
}

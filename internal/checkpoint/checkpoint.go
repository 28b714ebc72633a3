// Package checkpoint persists snapshots of partial dispatch outcomes so an
// interrupted run leaves its completed chunks behind.
package checkpoint

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"figimapper/internal/figi"
)

// ErrNotFound is returned by Load when no snapshot has been saved
var ErrNotFound = errors.New("checkpoint not found")

// Snapshot is a point-in-time copy of chunk outcomes keyed by sequence index
type Snapshot map[int]figi.ChunkResult

// Store saves and loads snapshots. Save overwrites the previous snapshot.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	// Load reads the last snapshot back for manual recovery; runs never resume from it.
	Load(ctx context.Context) (Snapshot, error)
}

// Encode writes snap in the binary checkpoint format
func Encode(w io.Writer, snap Snapshot) error {
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Decode reads a snapshot written by Encode
func Decode(r io.Reader) (Snapshot, error) {
	snap := Snapshot{}
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// Noop discards snapshots
type Noop struct{}

// Save implements Store
func (Noop) Save(context.Context, Snapshot) error { return nil }

// Load implements Store
func (Noop) Load(context.Context) (Snapshot, error) { return nil, ErrNotFound }

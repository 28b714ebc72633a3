// Package resultset flattens per-chunk outcomes into one entry per identifier
// and projects them onto the canonical column layout.
package resultset

import (
	"fmt"
	"sort"

	"figimapper/internal/figi"
)

// MissingResult marks an identifier the service response did not cover
const MissingResult = "missing result in response"

// Entry is the outcome for one identifier: a matched record, or an error message
type Entry struct {
	Record *figi.Record
	Err    string
}

// OK reports whether the identifier was matched
func (e Entry) OK() bool {
	return e.Record != nil
}

// ResultSet maps identifier values to their outcome, remembering submission order
type ResultSet struct {
	keys    []string
	entries map[string]Entry
}

// Flatten walks outcomes in sequence-index order and zips every chunk's input
// identifiers with their results. A failed chunk marks each of its identifiers with
// the chunk error. Repeated identifiers keep their first position and the last outcome.
func Flatten(outcomes map[int]figi.ChunkResult) *ResultSet {
	indices := make([]int, 0, len(outcomes))
	for idx := range outcomes {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	rs := &ResultSet{entries: make(map[string]Entry)}
	for _, idx := range indices {
		chunk := outcomes[idx]
		for i, job := range chunk.Input {
			rs.put(job.IDValue, entryFor(chunk, i))
		}
	}
	return rs
}

func entryFor(chunk figi.ChunkResult, i int) Entry {
	if chunk.Failed() {
		return Entry{Err: chunk.Err}
	}
	if i >= len(chunk.Output) {
		return Entry{Err: MissingResult}
	}
	res := chunk.Output[i]
	if !res.Matched() {
		return Entry{Err: res.Message()}
	}
	rec := res.Data[0]
	return Entry{Record: &rec}
}

func (rs *ResultSet) put(id string, e Entry) {
	if _, seen := rs.entries[id]; !seen {
		rs.keys = append(rs.keys, id)
	}
	rs.entries[id] = e
}

// Keys returns identifier values in submission order
func (rs *ResultSet) Keys() []string {
	out := make([]string, len(rs.keys))
	copy(out, rs.keys)
	return out
}

// Get returns the entry for id
func (rs *ResultSet) Get(id string) (Entry, bool) {
	e, ok := rs.entries[id]
	return e, ok
}

// Len returns the number of distinct identifiers
func (rs *ResultSet) Len() int {
	return len(rs.keys)
}

// Matched counts identifiers with a record
func (rs *ResultSet) Matched() int {
	n := 0
	for _, e := range rs.entries {
		if e.OK() {
			n++
		}
	}
	return n
}

// Errors returns the error message of every unmatched identifier
func (rs *ResultSet) Errors() map[string]string {
	out := make(map[string]string)
	for id, e := range rs.entries {
		if !e.OK() {
			out[id] = e.Err
		}
	}
	return out
}

// String implements fmt.Stringer
func (rs *ResultSet) String() string {
	return fmt.Sprintf("ResultSet{identifiers: %d, matched: %d}", rs.Len(), rs.Matched())
}

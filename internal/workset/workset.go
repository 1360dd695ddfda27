// Package workset accumulates candidate records per entity key: the
// running merged record plus the full provenance history of every raw
// candidate folded in.
package workset

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/mila-iqia/bibmerge/internal/merge"
)

// Candidate is one raw record as received from a source, kept verbatim
// for provenance. Collected candidates are never discarded by this
// package; lifecycle is owned by the caller.
//
// The source's trust weight travels inside Record as per-field
// confidence annotations; the Weight field here is provenance metadata
// only.
type Candidate struct {
	Origin      string
	Weight      float64
	Record      merge.Value
	Fingerprint string
}

// WorkingSet is the per-key accumulator: Current holds the merged record
// so far, Collected every candidate that contributed to it, in fold
// order.
type WorkingSet struct {
	Key       string
	Current   merge.Value
	Collected []Candidate
}

// New creates an empty working set for an entity key.
func New(key string) *WorkingSet {
	return &WorkingSet{Key: key, Current: merge.Absent{}}
}

// Fold merges a candidate record into the working set. Scalar conflicts
// are decided by the confidence annotations the record carries; at the
// container level the accumulated record stays "main", so a candidate
// can enrich existing sub-entities but never introduce new ones once a
// list exists. The candidate is recorded in Collected whether or not any
// of its fields survive the merge.
func (w *WorkingSet) Fold(c Candidate) error {
	merged, err := merge.Merge(w.Current, c.Record, 0, 0)
	if err != nil {
		return err
	}
	w.Current = merged
	w.Collected = append(w.Collected, c)
	return nil
}

// Accumulator tracks working sets across entity keys, preserving the
// order in which keys were first seen.
type Accumulator struct {
	sets  map[string]*WorkingSet
	order []string
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{sets: make(map[string]*WorkingSet)}
}

// Fold routes a candidate to its key's working set, creating the set on
// the first candidate for that key.
func (a *Accumulator) Fold(key string, c Candidate) error {
	ws, ok := a.sets[key]
	if !ok {
		ws = New(key)
		a.sets[key] = ws
		a.order = append(a.order, key)
	}
	return ws.Fold(c)
}

// Get returns the working set for a key, or nil if no candidate has
// arrived for it.
func (a *Accumulator) Get(key string) *WorkingSet {
	return a.sets[key]
}

// Keys returns every entity key in first-seen order.
func (a *Accumulator) Keys() []string {
	keys := make([]string, len(a.order))
	copy(keys, a.order)
	return keys
}

// Fingerprint returns a hex blake2b-256 digest of a candidate's
// serialized form, used as its provenance identity.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Package source defines candidate record producers: anything that can
// emit (entity key, paper, weight) tuples ready to be folded by the
// merge engine. The engine itself never fetches anything.
package source

import (
	"context"

	"github.com/mila-iqia/bibmerge/internal/paper"
)

// Candidate is one record as produced by a source, before any merging.
type Candidate struct {
	Key    string      `json:"key"`
	Origin string      `json:"origin"` // source name, for provenance
	Weight float64     `json:"weight"` // trust weight of this source's data
	Paper  paper.Paper `json:"paper"`
}

// Source produces candidate records for an entity key. Whether the
// sequence is finite, cached, or network-backed is the source's
// business.
type Source interface {
	Candidates(ctx context.Context, key string) ([]Candidate, error)
}

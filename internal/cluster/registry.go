// Package cluster groups identifier tokens that external evidence links
// to the same real-world entity, using a path-compressing union-find.
package cluster

import "sort"

// Registry accumulates equivalence evidence over opaque identifier
// tokens. It is caller-owned mutable state and is not safe for concurrent
// use; a caller wanting parallelism must partition evidence batches or
// serialize calls.
type Registry struct {
	parent map[string]string
	label  map[string]string
	class  map[string]string
}

// Instruction tells the store to consolidate a group of identifiers into
// one entity. Members always has at least two entries.
type Instruction struct {
	OutputClass    string   `json:"output_class"`
	Label          string   `json:"label,omitempty"`
	Representative string   `json:"representative"`
	Members        []string `json:"members"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parent: make(map[string]string),
		label:  make(map[string]string),
		class:  make(map[string]string),
	}
}

// Union links a and b into the same equivalence class. Unioning an id
// with itself is a no-op and does not register the id.
func (r *Registry) Union(a, b string) {
	if a == b {
		return
	}
	r.register(a)
	r.register(b)
	ra, rb := r.find(a), r.find(b)
	if ra == rb {
		return
	}
	r.parent[rb] = ra
}

// register adds id as its own root if it has never been seen. Only ids
// that take part in a real pairwise union enter the parent map.
func (r *Registry) register(id string) {
	if _, ok := r.parent[id]; !ok {
		r.parent[id] = id
	}
}

// UnionAll links every id in the set to the first one and stamps the
// given class and label on each (last write wins per id). Empty and
// singleton sets only record the labeling; they never form a group.
func (r *Registry) UnionAll(ids []string, class, label string) {
	for _, id := range ids {
		r.class[id] = class
		r.label[id] = label
	}
	if len(ids) < 2 {
		return
	}
	for _, id := range ids[1:] {
		r.Union(ids[0], id)
	}
}

// find resolves a registered id to its root, compressing the path on the
// way. Which id ends up as the root is an artifact of union order; Emit
// picks a deterministic representative instead of relying on it.
func (r *Registry) find(id string) string {
	root := id
	for r.parent[root] != root {
		root = r.parent[root]
	}
	for r.parent[id] != root {
		id, r.parent[id] = r.parent[id], root
	}
	return root
}

// Groups buckets every id that took part in a union by its root. Each
// bucket has at least two members by construction.
func (r *Registry) Groups() map[string][]string {
	groups := make(map[string][]string)
	for id := range r.parent {
		root := r.find(id)
		groups[root] = append(groups[root], id)
	}
	return groups
}

// Emit produces one merge instruction per group of size >= 2. The
// representative is the lexicographically smallest member, making the
// output independent of evidence arrival order; members are sorted.
// Calling Emit before any union yields nothing.
func (r *Registry) Emit() []Instruction {
	var out []Instruction
	for _, members := range r.Groups() {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		rep := members[0]
		out = append(out, Instruction{
			OutputClass:    r.class[rep],
			Label:          r.label[rep],
			Representative: rep,
			Members:        members,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Representative < out[j].Representative
	})
	return out
}

// Label returns the last label stamped on an id, if any.
func (r *Registry) Label(id string) string { return r.label[id] }

// Class returns the output class stamped on an id, if any.
func (r *Registry) Class(id string) string { return r.class[id] }

package core

// idregistry.go tracks which identifiers are known-valid after each parent
// table has been cleaned, and filters child tables against them.
//
// The registry is an explicit value owned by one pipeline run and handed to
// every stage through RunContext. Stages run sequentially, so it carries no
// locking. A kind is sealed once its producing stage has finished; from then
// on its membership is frozen for the rest of the run.

import (
	"fmt"
	"sort"
)

// IDRegistry maps entity kinds to their sets of valid identifiers.
type IDRegistry struct {
	sets   map[Kind]map[string]struct{}
	sealed map[Kind]bool
}

// NewIDRegistry returns an empty registry.
func NewIDRegistry() *IDRegistry {
	return &IDRegistry{
		sets:   make(map[Kind]map[string]struct{}),
		sealed: make(map[Kind]bool),
	}
}

// RecordValid adds values to kind's set. Re-adding a value is a no-op and
// empty values are ignored. Fails with ErrKindSealed once kind is sealed.
func (r *IDRegistry) RecordValid(kind Kind, values ...string) error {
	if r.sealed[kind] {
		return fmt.Errorf("%w: %s", ErrKindSealed, kind)
	}

	set, ok := r.sets[kind]
	if !ok {
		set = make(map[string]struct{}, len(values))
		r.sets[kind] = set
	}
	for _, v := range values {
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return nil
}

// Seal freezes kind. Sealing a kind nothing was recorded for registers it
// as an empty set, so every later lookup against it fails.
func (r *IDRegistry) Seal(kind Kind) {
	if _, ok := r.sets[kind]; !ok {
		r.sets[kind] = make(map[string]struct{})
	}
	r.sealed[kind] = true
}

// Sealed reports whether kind has been sealed.
func (r *IDRegistry) Sealed(kind Kind) bool {
	return r.sealed[kind]
}

// IsValid reports whether value is a member of kind's set. Kinds that were
// never populated have no valid values.
func (r *IDRegistry) IsValid(kind Kind, value string) bool {
	_, ok := r.sets[kind][value]
	return ok
}

// Len returns the number of identifiers registered under kind.
func (r *IDRegistry) Len(kind Kind) int {
	return len(r.sets[kind])
}

// Snapshot returns a sorted copy of kind's identifiers.
func (r *IDRegistry) Snapshot(kind Kind) []string {
	set := r.sets[kind]
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Sizes returns the set size of every known kind.
func (r *IDRegistry) Sizes() map[Kind]int {
	out := make(map[Kind]int, len(r.sets))
	for k, set := range r.sets {
		out[k] = len(set)
	}
	return out
}

// RecordKeys registers key(row) for every row under kind.
func RecordKeys[T any](r *IDRegistry, kind Kind, rows []T, key func(T) string) error {
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = key(row)
	}
	return r.RecordValid(kind, values...)
}

// FilterByValid keeps the rows whose key is valid under kind and returns the
// number of rows removed. Row order is preserved.
func FilterByValid[T any](r *IDRegistry, rows []T, kind Kind, key func(T) string) ([]T, int) {
	return FilterByAll(r, rows, Ref[T]{Kind: kind, Key: key})
}

// Ref ties a foreign-key accessor to the kind it must be valid under.
type Ref[T any] struct {
	Kind Kind
	Key  func(T) string
}

// FilterByAll keeps the rows whose every reference is valid and returns the
// number of rows removed. Row order is preserved.
func FilterByAll[T any](r *IDRegistry, rows []T, refs ...Ref[T]) ([]T, int) {
	kept := make([]T, 0, len(rows))
	for _, row := range rows {
		if validAll(r, row, refs) {
			kept = append(kept, row)
		}
	}
	return kept, len(rows) - len(kept)
}

func validAll[T any](r *IDRegistry, row T, refs []Ref[T]) bool {
	for _, ref := range refs {
		if !r.IsValid(ref.Kind, ref.Key(row)) {
			return false
		}
	}
	return true
}

// DedupBy keeps the first row for every distinct key and returns the number
// of later duplicates removed. Row order is preserved.
func DedupBy[T any](rows []T, key func(T) string) ([]T, int) {
	seen := make(map[string]struct{}, len(rows))
	kept := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, row)
	}
	return kept, len(rows) - len(kept)
}

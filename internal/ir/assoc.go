package ir

import "github.com/dolthub/swiss"

// assoc is the keyed association table behind every writers/readers and
// sources/targets table in the IR (buffer.writers, buffer.readers,
// kernel.sources, kernel.targets). Lookup by key is O(1) via a
// swiss-table index, generalized over key and value type and keyed
// directly on the entity pointer (which already carries a stable
// number).
//
// New keys are pushed to the front of key order on first insertion,
// while the slice of values recorded under a single key preserves
// ordinary append (insertion) order: keys are unique, values preserve
// insertion order.
type assoc[K comparable, V any] struct {
	keys   []K // push-to-front: most-recently-inserted key first
	lookup *swiss.Map[K, *[]V]
}

func newAssoc[K comparable, V any]() *assoc[K, V] {
	return &assoc[K, V]{lookup: swiss.NewMap[K, *[]V](4)}
}

// Append records v under key k. If k has no prior entry, k is pushed to
// the front of key order.
func (a *assoc[K, V]) Append(k K, v V) {
	if vals, ok := a.lookup.Get(k); ok {
		*vals = append(*vals, v)
		return
	}
	vals := &[]V{v}
	a.lookup.Put(k, vals)
	keys := make([]K, 0, len(a.keys)+1)
	keys = append(keys, k)
	a.keys = append(keys, a.keys...)
}

// Has reports whether k has at least one recorded value.
func (a *assoc[K, V]) Has(k K) bool {
	_, ok := a.lookup.Get(k)
	return ok
}

// Values returns the values recorded for k, in insertion order, or nil if
// k has none.
func (a *assoc[K, V]) Values(k K) []V {
	if vals, ok := a.lookup.Get(k); ok {
		return *vals
	}
	return nil
}

// Keys returns the keys in table traversal order (push-to-front).
func (a *assoc[K, V]) Keys() []K {
	out := make([]K, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len reports the number of distinct keys currently recorded.
func (a *assoc[K, V]) Len() int { return len(a.keys) }

// Delete drops k and all of its values.
func (a *assoc[K, V]) Delete(k K) {
	if _, ok := a.lookup.Get(k); !ok {
		return
	}
	a.lookup.Delete(k)
	for i, kk := range a.keys {
		if kk == k {
			a.keys = append(a.keys[:i:i], a.keys[i+1:]...)
			break
		}
	}
}

// RemoveValues drops every value under k for which pred returns true. If
// no values remain under k, k itself is dropped (used by delete_kernel to
// remove a kernel from a buffer's writers/readers table).
func (a *assoc[K, V]) RemoveValues(k K, pred func(V) bool) {
	vals, ok := a.lookup.Get(k)
	if !ok {
		return
	}
	kept := (*vals)[:0:0]
	for _, v := range *vals {
		if !pred(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		a.Delete(k)
		return
	}
	*vals = kept
}

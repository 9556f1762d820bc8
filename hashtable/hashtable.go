// Package hashtable implements a chained hash table keyed by string.
//
// Tables have a power of two number of buckets. They grow when the number of
// entries reaches the number of buckets and shrink back when deletes leave
// them oversized, so the bucket count only depends on the number of entries.
// Collisions are chained and every chain is kept in insertion order, so a
// table may hold several entries with the same key and Find returns the most
// recently inserted one. Iteration walks the buckets in index order, which is
// not insertion order, but inserting keys in the order they were iterated
// into a fresh table rebuilds the same order.
package hashtable

import (
	"iter"

	"github.com/cespare/xxhash/v2"
)

const (
	InitialSize = 4
	DefaultSeed = 5381
)

type Entry[V any] struct {
	Key   string
	Value V

	prev *Entry[V]
	next *Entry[V]
	// owner is nil once the entry has been removed from its table.
	owner *Table[V]
}

// Linked reports whether the entry still belongs to a table.
func (e *Entry[V]) Linked() bool {
	return e.owner != nil
}

type Table[V any] struct {
	buckets []*Entry[V]
	mask    uint64
	used    int
	seed    uint64
	// walking counts active iterations; the table does not shrink under them.
	walking int
}

type Option func(*options)

type options struct {
	seed uint64
	size int
}

func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithSize preallocates buckets for roughly n entries.
func WithSize(n int) Option {
	return func(o *options) {
		o.size = n
	}
}

func New[V any](opts ...Option) *Table[V] {
	o := options{seed: DefaultSeed}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Table[V]{seed: o.seed}
	if o.size > 0 {
		t.resize(nextPower(o.size))
	}
	return t
}

func (t *Table[V]) Len() int {
	return t.used
}

// Buckets returns the number of hash slots.
func (t *Table[V]) Buckets() int {
	return len(t.buckets)
}

func (t *Table[V]) Seed() uint64 {
	return t.seed
}

func (t *Table[V]) hash(key string) uint64 {
	h := xxhash.Sum64String(key) ^ t.seed
	// fold the seed through a final avalanche so it moves every bit
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

// Insert links a new entry for key at the tail of its chain. Existing
// entries with the same key are kept.
func (t *Table[V]) Insert(key string, value V) *Entry[V] {
	t.expandIfNeeded()

	e := &Entry[V]{Key: key, Value: value, owner: t}
	t.link(e)
	t.used++
	return e
}

// Find returns the most recently inserted entry for key, or nil.
func (t *Table[V]) Find(key string) *Entry[V] {
	if t.used == 0 {
		return nil
	}
	var found *Entry[V]
	for e := t.buckets[t.hash(key)&t.mask]; e != nil; e = e.next {
		if e.Key == key {
			found = e
		}
	}
	return found
}

// Get is Find returning the value.
func (t *Table[V]) Get(key string) (V, bool) {
	if e := t.Find(key); e != nil {
		return e.Value, true
	}
	var zero V
	return zero, false
}

// Delete unlinks e. Deleting an entry that is not linked to t is a no-op.
func (t *Table[V]) Delete(e *Entry[V]) {
	if e == nil || e.owner != t {
		return
	}
	t.unlink(e)
	t.used--
	t.shrinkIfNeeded()

	var zero V
	e.Value = zero
	e.Key = ""
}

// Take unlinks e and hands its key and value to the caller.
func (t *Table[V]) Take(e *Entry[V]) (string, V) {
	var zero V
	if e == nil || e.owner != t {
		return "", zero
	}
	key, value := e.Key, e.Value
	t.Delete(e)
	return key, value
}

// DeleteKey removes every entry stored under key and returns their values
// newest first.
func (t *Table[V]) DeleteKey(key string) []V {
	var removed []V
	for e := t.Find(key); e != nil; e = t.Find(key) {
		_, v := t.Take(e)
		removed = append(removed, v)
	}
	return removed
}

// All yields every entry in bucket order. The yielded entry may be deleted
// during iteration.
func (t *Table[V]) All() iter.Seq[*Entry[V]] {
	return func(yield func(*Entry[V]) bool) {
		t.shrinkIfNeeded()
		t.walking++
		defer func() {
			t.walking--
			t.shrinkIfNeeded()
		}()

		for i := 0; i < len(t.buckets); i++ {
			e := t.buckets[i]
			for e != nil {
				next := e.next
				if !yield(e) {
					return
				}
				e = next
			}
		}
	}
}

// Drain yields and removes every entry. Stopping early leaves the
// remaining entries in place.
func (t *Table[V]) Drain() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for e := range t.All() {
			key, value := t.Take(e)
			if !yield(key, value) {
				return
			}
		}
	}
}

// Clear drops every entry.
func (t *Table[V]) Clear() {
	for e := range t.All() {
		e.owner = nil
		e.prev, e.next = nil, nil
	}
	t.buckets = nil
	t.mask = 0
	t.used = 0
}

func (t *Table[V]) link(e *Entry[V]) {
	index := t.hash(e.Key) & t.mask
	e.next = nil
	tail := t.buckets[index]
	if tail == nil {
		e.prev = nil
		t.buckets[index] = e
		return
	}
	for tail.next != nil {
		tail = tail.next
	}
	tail.next = e
	e.prev = tail
}

func (t *Table[V]) unlink(e *Entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		t.buckets[t.hash(e.Key)&t.mask] = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	e.prev, e.next = nil, nil
	e.owner = nil
}

func (t *Table[V]) expandIfNeeded() {
	if len(t.buckets) == 0 {
		t.resize(InitialSize)
		return
	}
	if t.used >= len(t.buckets) {
		t.resize(nextPower(t.used * 2))
	}
}

// shrinkIfNeeded resizes the table to the bucket count a table grown from
// empty would have for the current number of entries.
func (t *Table[V]) shrinkIfNeeded() {
	if t.walking > 0 {
		return
	}
	if size := nextPower(t.used); size < len(t.buckets) {
		t.resize(size)
	}
}

// resize rehashes every entry into size buckets. Each old chain is relinked
// front to back so the new chains stay in insertion order.
func (t *Table[V]) resize(size int) {
	old := t.buckets
	t.buckets = make([]*Entry[V], size)
	t.mask = uint64(size - 1)

	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			t.link(e)
			e = next
		}
	}
}

func nextPower(size int) int {
	n := InitialSize
	for n < size {
		n *= 2
	}
	return n
}

// Package sequence provides a typed doubly linked list that keeps insertion
// order.
package sequence

import (
	"container/list"
	"iter"
)

type Node[V any] struct {
	elem *list.Element
}

func (n *Node[V]) Value() V {
	return n.elem.Value.(V)
}

// SetValue replaces the value held by the node.
func (n *Node[V]) SetValue(v V) {
	n.elem.Value = v
}

type List[V any] struct {
	l list.List
}

func New[V any]() *List[V] {
	s := &List[V]{}
	s.l.Init()
	return s
}

func (s *List[V]) Len() int {
	return s.l.Len()
}

// PushBack appends v at the tail.
func (s *List[V]) PushBack(v V) *Node[V] {
	return &Node[V]{elem: s.l.PushBack(v)}
}

func (s *List[V]) Front() (*Node[V], bool) {
	e := s.l.Front()
	if e == nil {
		return nil, false
	}
	return &Node[V]{elem: e}, true
}

func (s *List[V]) Back() (*Node[V], bool) {
	e := s.l.Back()
	if e == nil {
		return nil, false
	}
	return &Node[V]{elem: e}, true
}

// Remove unlinks n and returns its value.
func (s *List[V]) Remove(n *Node[V]) V {
	return s.l.Remove(n.elem).(V)
}

// All yields values head to tail.
func (s *List[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for e := s.l.Front(); e != nil; {
			next := e.Next()
			if !yield(e.Value.(V)) {
				return
			}
			e = next
		}
	}
}

// Backward yields values tail to head.
func (s *List[V]) Backward() iter.Seq[V] {
	return func(yield func(V) bool) {
		for e := s.l.Back(); e != nil; {
			prev := e.Prev()
			if !yield(e.Value.(V)) {
				return
			}
			e = prev
		}
	}
}

// Nodes yields nodes head to tail. The yielded node may be removed.
func (s *List[V]) Nodes() iter.Seq[*Node[V]] {
	return func(yield func(*Node[V]) bool) {
		for e := s.l.Front(); e != nil; {
			next := e.Next()
			if !yield(&Node[V]{elem: e}) {
				return
			}
			e = next
		}
	}
}

func (s *List[V]) Clear() {
	s.l.Init()
}

// Package ring provides a fixed-capacity stack built on a circular buffer.
//
// Once a Stack holds as many items as its capacity, every Push silently
// drops the oldest item. Items are visited newest to oldest.
//
// A Stack is not safe for concurrent use.
package ring

import (
	"fmt"
	"iter"
)

type slot[T any] struct {
	value T
	ok    bool
}

// Stack is a last-write-wins LIFO of at most Cap() items.
type Stack[T any] struct {
	slots  []slot[T]
	cursor int // slot holding the top item
	count  int
}

// Returns a Stack holding at most capacity items. The backing storage is
// allocated once here and never grows. Panics if capacity is less than 1.
func New[T any](capacity int) *Stack[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("ring: invalid capacity %d", capacity))
	}
	return &Stack[T]{
		slots: make([]slot[T], capacity),
	}
}

// Push(item) adds the given item as the most recent item,
// overwriting the oldest item when the stack is full.
func (s *Stack[T]) Push(item T) {
	s.cursor = s.next(s.cursor)
	if s.count < len(s.slots) {
		s.count++
	}
	s.slots[s.cursor] = slot[T]{value: item, ok: true}
}

// Pop removes and returns the top item. The cursor retreats even when the
// top slot is empty, so Pop always undoes the motion of a Push.
func (s *Stack[T]) Pop() (T, bool) {
	top := s.slots[s.cursor]
	s.slots[s.cursor] = slot[T]{}
	s.cursor = s.prev(s.cursor)
	if s.count > 0 {
		s.count--
	}
	return top.value, top.ok
}

// Peek returns the top item without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	top := s.slots[s.cursor]
	return top.value, top.ok
}

// Len returns the number of items currently held.
func (s *Stack[T]) Len() int {
	return s.count
}

// Cap returns the capacity the stack was created with.
func (s *Stack[T]) Cap() int {
	return len(s.slots)
}

// Get returns the item pushed offset pushes before the top, so Get(0) is
// Peek. It reads the raw ring: any offset outside [0, Cap()) or landing on
// an empty slot reports false, regardless of Len().
func (s *Stack[T]) Get(offset int) (T, bool) {
	if offset < 0 || offset >= len(s.slots) {
		var zero T
		return zero, false
	}
	sl := s.slots[s.index(offset)]
	return sl.value, sl.ok
}

// At returns the item at position i, where 0 is the top.
// Panics if i is outside [0, Len()).
func (s *Stack[T]) At(i int) T {
	s.checkIndex(i)
	return s.slots[s.index(i)].value
}

// Set replaces the item at position i, where 0 is the top, without
// changing the order or length. Panics if i is outside [0, Len()).
func (s *Stack[T]) Set(i int, item T) {
	s.checkIndex(i)
	s.slots[s.index(i)].value = item
}

// All yields position and item pairs from newest to oldest.
func (s *Stack[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range s.count {
			sl := &s.slots[s.index(i)]
			if !sl.ok || !yield(i, sl.value) {
				return
			}
		}
	}
}

// Values yields items from newest to oldest.
func (s *Stack[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Pointers is like All but yields pointers into the backing storage, so
// items can be updated in place. The stack must not be pushed or popped
// while the sequence is being consumed.
func (s *Stack[T]) Pointers() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range s.count {
			sl := &s.slots[s.index(i)]
			if !sl.ok || !yield(i, &sl.value) {
				return
			}
		}
	}
}

// Slice returns the items from newest to oldest in a new slice.
func (s *Stack[T]) Slice() []T {
	items := make([]T, 0, s.count)
	for v := range s.Values() {
		items = append(items, v)
	}
	return items
}

func (s *Stack[T]) checkIndex(i int) {
	if i < 0 || i >= s.count {
		panic(fmt.Sprintf("ring: index %d out of range [0:%d]", i, s.count))
	}
}

// index maps a position relative to the top onto a slot.
func (s *Stack[T]) index(offset int) int {
	n := len(s.slots)
	return (s.cursor + n - offset) % n
}

func (s *Stack[T]) next(i int) int {
	if i == len(s.slots)-1 {
		return 0
	}
	return i + 1
}

func (s *Stack[T]) prev(i int) int {
	if i == 0 {
		return len(s.slots) - 1
	}
	return i - 1
}

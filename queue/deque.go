// Package queue provides the generic double ended queue backing each worker of
// the work-stealing pool
package queue

import "sync"

// Deque is a mutex guarded double ended queue.
// The owning worker pushes and pops at the bottom (LIFO) while thieves take
// from the top (FIFO), so the oldest and usually largest tasks get stolen first.
type Deque[E any] struct {
	mu    sync.Mutex
	items []E
	head  int // index of the top element in items
}

// NewDeque creates an empty Deque with room for capacity items
func NewDeque[E any](capacity int) *Deque[E] {
	return &Deque[E]{items: make([]E, 0, capacity)}
}

// Len returns the number of items in the deque
func (d *Deque[E]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items) - d.head
}

// PushBottom adds x at the owner's end
func (d *Deque[E]) PushBottom(x E) {
	d.mu.Lock()
	d.items = append(d.items, x)
	d.mu.Unlock()
}

// PopBottom removes and returns the most recently pushed item
func (d *Deque[E]) PopBottom() (E, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero E
	if len(d.items) == d.head {
		return zero, false
	}
	n := len(d.items) - 1
	x := d.items[n]
	d.items[n] = zero // release reference
	d.items = d.items[:n]
	d.compact()
	return x, true
}

// StealTop removes and returns the oldest item
func (d *Deque[E]) StealTop() (E, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero E
	if len(d.items) == d.head {
		return zero, false
	}
	x := d.items[d.head]
	d.items[d.head] = zero
	d.head++
	d.compact()
	return x, true
}

// compact resets or shifts the backing slice once the stolen prefix dominates.
// Must be called with mu held.
func (d *Deque[E]) compact() {
	if d.head == len(d.items) {
		d.items = d.items[:0]
		d.head = 0
		return
	}
	if d.head > 32 && d.head*2 > len(d.items) {
		n := copy(d.items, d.items[d.head:])
		clear(d.items[n:])
		d.items = d.items[:n]
		d.head = 0
	}
}

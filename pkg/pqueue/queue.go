// Package pqueue is a priority queue of arbitrary values. Values with equal
// priority come out in the order they were pushed.
package pqueue

import "container/heap"

func WithOrderAsc() Option {
	return func(q *Queue) {
		q.items.order = orderAsc
	}
}

func WithOrderDesc() Option {
	return func(q *Queue) {
		q.items.order = orderDesc
	}
}

func WithCap(size uint) Option {
	return func(q *Queue) {
		q.items.list = make([]*item, 0, size)
	}
}

type Option func(*Queue)

type order uint8

const (
	orderAsc order = iota
	orderDesc
)

type item struct {
	value interface{}
	prior float64
	seq   uint64
}

func New(opts ...Option) *Queue {
	q := &Queue{items: &items{order: orderAsc}}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

type Queue struct {
	items *items
	seq   uint64
}

func (q *Queue) Push(val interface{}, priority float64) {
	heap.Push(q.items, &item{value: val, prior: priority, seq: q.seq})
	q.seq++
}

// Head removes and returns the value with the best priority, nil when empty.
func (q *Queue) Head() interface{} {
	v, _ := q.HeadWithPriority()
	return v
}

func (q *Queue) HeadWithPriority() (interface{}, float64) {
	if q.items.Len() == 0 {
		return nil, 0
	}
	x := heap.Pop(q.items).(*item)
	return x.value, x.prior
}

// Peek returns the best value without removing it.
func (q *Queue) Peek() (interface{}, float64) {
	if q.items.Len() == 0 {
		return nil, 0
	}
	x := q.items.list[0]
	return x.value, x.prior
}

// PopAll drains the queue in priority order.
func (q *Queue) PopAll() []interface{} {
	pulled := make([]interface{}, 0, q.items.Len())
	for q.items.Len() > 0 {
		pulled = append(pulled, q.Head())
	}
	return pulled
}

func (q *Queue) Len() int { return q.items.Len() }

type items struct {
	order order
	list  []*item
}

func (h *items) Len() int { return len(h.list) }

func (h *items) Swap(i, j int) { h.list[i], h.list[j] = h.list[j], h.list[i] }

func (h *items) Less(i, j int) bool {
	a, b := h.list[i], h.list[j]
	if a.prior == b.prior {
		return a.seq < b.seq
	}
	if h.order == orderAsc {
		return a.prior < b.prior
	}
	return a.prior > b.prior
}

func (h *items) Push(x interface{}) {
	h.list = append(h.list, x.(*item))
}

func (h *items) Pop() interface{} {
	l := len(h.list) - 1
	x := h.list[l]
	h.list[l] = nil
	h.list = h.list[:l]
	return x
}

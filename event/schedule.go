package event

import (
	"container/heap"
	"sort"
)

// Schedule is a min-heap of events. It holds stale events alongside current
// ones; it is up to the caller to discard them.
type Schedule struct {
	events eventHeap
}

type eventHeap []Event

func (h eventHeap) Len() int           { return len(h) }
func (h eventHeap) Less(i, j int) bool { return Less(&h[i], &h[j]) }
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(Event)) }

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// NewSchedule returns an empty schedule with room for n events.
func NewSchedule(n int) *Schedule {
	return &Schedule{events: make(eventHeap, 0, n)}
}

// Push adds an event.
func (s *Schedule) Push(e Event) { heap.Push(&s.events, e) }

// Pop removes and returns the earliest event. ok is false if the schedule is
// empty.
func (s *Schedule) Pop() (e Event, ok bool) {
	if len(s.events) == 0 {
		return Event{}, false
	}
	return heap.Pop(&s.events).(Event), true
}

// Peek returns the earliest event without removing it.
func (s *Schedule) Peek() (e Event, ok bool) {
	if len(s.events) == 0 {
		return Event{}, false
	}
	return s.events[0], true
}

// Len returns the number of events, stale or not.
func (s *Schedule) Len() int { return len(s.events) }

// Clear removes every event but keeps the underlying storage.
func (s *Schedule) Clear() { s.events = s.events[:0] }

// Events returns a sorted copy of the scheduled events.
func (s *Schedule) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	sort.Slice(out, func(i, j int) bool { return Less(&out[i], &out[j]) })
	return out
}

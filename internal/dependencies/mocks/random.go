package mocks

import (
	"fmt"

	"github.com/mcoot/truthlie/internal/dependencies/random"
)

// queue hands out queued values in order
type queue[T any] struct {
	items []T
	next  int
}

func (q *queue[T]) push(values ...T) {
	q.items = append(q.items, values...)
}

func (q *queue[T]) pop() (T, bool) {
	var zero T
	if q.next >= len(q.items) {
		return zero, false
	}
	v := q.items[q.next]
	q.next++
	return v, true
}

// MockRandom replays queued results. Drained queues yield 0 for Intn, ""
// for String and sequential "uuid-N" ids for UUID.
type MockRandom struct {
	ints    queue[int]
	strings queue[string]
	uuids   queue[string]
	minted  int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with empty queues
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

func (r *MockRandom) Intn(n int) int {
	v, _ := r.ints.pop()
	return v
}

func (r *MockRandom) String(length int, alphabet string) string {
	v, _ := r.strings.pop()
	return v
}

func (r *MockRandom) UUID() string {
	if v, ok := r.uuids.pop(); ok {
		return v
	}
	r.minted++
	return fmt.Sprintf("uuid-%d", r.minted)
}

// QueueIntn queues lie positions (or any other Intn result)
func (r *MockRandom) QueueIntn(values ...int) {
	r.ints.push(values...)
}

// QueueString queues session codes
func (r *MockRandom) QueueString(values ...string) {
	r.strings.push(values...)
}

// QueueUUID queues ids
func (r *MockRandom) QueueUUID(values ...string) {
	r.uuids.push(values...)
}

package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"notify-dispatch/internal/usecase/dispatch"
)

// MemoryQueue keeps jobs in process. Jobs are lost when the process exits;
// the Sweeper picks the affected notifications up again.
type MemoryQueue struct {
	mu      sync.Mutex
	items   jobHeap
	seq     uint64
	pending map[int64]int
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		pending: make(map[int64]int),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		now:     time.Now,
	}
}

func (q *MemoryQueue) Submit(ctx context.Context, job dispatch.Job) error {
	return q.Schedule(ctx, job, q.now())
}

func (q *MemoryQueue) Schedule(_ context.Context, job dispatch.Job, at time.Time) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.seq++
	heap.Push(&q.items, &entry{job: normalize(job), due: at, seq: q.seq})
	q.pending[job.NotificationID]++
	q.mu.Unlock()

	q.signal()
	return nil
}

func (q *MemoryQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *MemoryQueue) Next(ctx context.Context) (dispatch.Job, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return dispatch.Job{}, ErrClosed
		}

		wait := time.Duration(-1)
		if q.items.Len() > 0 {
			top := q.items[0]
			if d := top.due.Sub(q.now()); d > 0 {
				wait = d
			} else {
				heap.Pop(&q.items)
				q.release(top.job.NotificationID)
				more := q.items.Len() > 0
				q.mu.Unlock()
				// Another consumer may be waiting on a later item.
				if more {
					q.signal()
				}
				return top.job, nil
			}
		}
		q.mu.Unlock()

		var (
			t     *time.Timer
			timer <-chan time.Time
		)
		if wait >= 0 {
			t = time.NewTimer(wait)
			timer = t.C
		}

		select {
		case <-ctx.Done():
			stopTimer(t)
			return dispatch.Job{}, ctx.Err()
		case <-q.done:
			stopTimer(t)
			return dispatch.Job{}, ErrClosed
		case <-q.wake:
		case <-timer:
		}
		stopTimer(t)
	}
}

// release must be called with q.mu held.
func (q *MemoryQueue) release(id int64) {
	if q.pending[id] <= 1 {
		delete(q.pending, id)
		return
	}
	q.pending[id]--
}

func (q *MemoryQueue) Pending(_ context.Context, notificationID int64) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending[notificationID] > 0, nil
}

func (q *MemoryQueue) Len(context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len(), nil
}

// Close drops waiting jobs and wakes blocked consumers.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.pending = make(map[int64]int)
	q.mu.Unlock()
	q.once.Do(func() { close(q.done) })
	return nil
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

type entry struct {
	job dispatch.Job
	due time.Time
	seq uint64
}

// jobHeap orders by due time, then by submission order.
type jobHeap []*entry

func (h jobHeap) Len() int { return len(h) }
func (h jobHeap) Less(i, j int) bool {
	if !h[i].due.Equal(h[j].due) {
		return h[i].due.Before(h[j].due)
	}
	return h[i].seq < h[j].seq
}
func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x any)   { *h = append(*h, x.(*entry)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

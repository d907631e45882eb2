package queue

import (
	"context"
	"fmt"
	"sync"

	"media-service/ddd/domain/port"
)

// QueuedJob 入队元素只携带作业标识，作业内容以仓储为准
type QueuedJob struct {
	Kind    port.JobKind
	JobUUID string
}

// TaskQueue 作业派发队列
type TaskQueue interface {
	// Enqueue 非阻塞入队；队列满时立即报错
	Enqueue(ctx context.Context, job QueuedJob) error
	// Dequeue 阻塞出队，直到有作业或上下文取消
	Dequeue(ctx context.Context) (QueuedJob, error)
	Size() int
	Metrics() QueueMetrics
	Close() error
	IsClosed() bool
}

// QueueMetrics 队列累计指标
type QueueMetrics struct {
	Enqueued uint64 `json:"enqueued"`
	Dequeued uint64 `json:"dequeued"`
	Rejected uint64 `json:"rejected"`
	Depth    int    `json:"depth"`
	Capacity int    `json:"capacity"`
}

type memoryTaskQueue struct {
	queue    chan QueuedJob
	capacity int
	closed   bool
	mu       sync.RWMutex

	enqueued uint64
	dequeued uint64
	rejected uint64
}

func NewMemoryTaskQueue(capacity int) TaskQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &memoryTaskQueue{
		queue:    make(chan QueuedJob, capacity),
		capacity: capacity,
	}
}

func (q *memoryTaskQueue) Enqueue(ctx context.Context, job QueuedJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if job.JobUUID == "" {
		return fmt.Errorf("job uuid cannot be empty")
	}
	select {
	case q.queue <- job:
		q.enqueued++
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		q.rejected++
		return fmt.Errorf("queue is full")
	}
}

func (q *memoryTaskQueue) Dequeue(ctx context.Context) (QueuedJob, error) {
	select {
	case job, ok := <-q.queue:
		if !ok {
			return QueuedJob{}, fmt.Errorf("queue is closed")
		}
		q.mu.Lock()
		q.dequeued++
		q.mu.Unlock()
		return job, nil
	case <-ctx.Done():
		return QueuedJob{}, ctx.Err()
	}
}

func (q *memoryTaskQueue) Size() int {
	return len(q.queue)
}

func (q *memoryTaskQueue) Metrics() QueueMetrics {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return QueueMetrics{
		Enqueued: q.enqueued,
		Dequeued: q.dequeued,
		Rejected: q.rejected,
		Depth:    len(q.queue),
		Capacity: q.capacity,
	}
}

func (q *memoryTaskQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

func (q *memoryTaskQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

package queue

import (
	"context"
	"testing"
	"time"

	"media-service/ddd/domain/port"
)

func TestTaskQueueEnqueueDequeue(t *testing.T) {
	q := NewMemoryTaskQueue(4)
	ctx := context.Background()

	in := QueuedJob{Kind: port.JobKindProcessing, JobUUID: "job-1"}
	if err := q.Enqueue(ctx, in); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if q.Size() != 1 {
		t.Errorf("size = %d, want 1", q.Size())
	}

	out, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestTaskQueueRejectsWhenFull(t *testing.T) {
	q := NewMemoryTaskQueue(2)
	ctx := context.Background()

	for i, id := range []string{"a", "b"} {
		if err := q.Enqueue(ctx, QueuedJob{Kind: port.JobKindProcessing, JobUUID: id}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := q.Enqueue(ctx, QueuedJob{Kind: port.JobKindProcessing, JobUUID: "c"}); err == nil {
		t.Fatal("enqueue on full queue succeeded")
	}

	m := q.Metrics()
	if m.Enqueued != 2 || m.Rejected != 1 || m.Depth != 2 || m.Capacity != 2 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestTaskQueueRejectsEmptyJobUUID(t *testing.T) {
	q := NewMemoryTaskQueue(2)
	if err := q.Enqueue(context.Background(), QueuedJob{Kind: port.JobKindProcessing}); err == nil {
		t.Error("empty uuid accepted")
	}
}

func TestTaskQueueDequeueHonorsContext(t *testing.T) {
	q := NewMemoryTaskQueue(2)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Dequeue(ctx); err != context.DeadlineExceeded {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestTaskQueueClose(t *testing.T) {
	q := NewMemoryTaskQueue(2)
	ctx := context.Background()

	if err := q.Enqueue(ctx, QueuedJob{Kind: port.JobKindTranscription, JobUUID: "pending"}); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("IsClosed() = false after close")
	}
	// 重复关闭幂等
	if err := q.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if err := q.Enqueue(ctx, QueuedJob{Kind: port.JobKindProcessing, JobUUID: "late"}); err == nil {
		t.Error("enqueue after close succeeded")
	}

	// 关闭后仍可清空残留作业，之后报错
	if job, err := q.Dequeue(ctx); err != nil || job.JobUUID != "pending" {
		t.Errorf("drain got %+v, %v", job, err)
	}
	if _, err := q.Dequeue(ctx); err == nil {
		t.Error("dequeue on drained closed queue succeeded")
	}
}

func TestTaskQueueDefaultCapacity(t *testing.T) {
	q := NewMemoryTaskQueue(0)
	if got := q.Metrics().Capacity; got != 100 {
		t.Errorf("capacity = %d, want 100", got)
	}
}

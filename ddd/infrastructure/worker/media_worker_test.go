package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"media-service/ddd/domain/port"
	"media-service/ddd/domain/vo"
	"media-service/ddd/infrastructure/queue"
)

type fakeProcessingService struct {
	mu   sync.Mutex
	jobs []string
	err  error
}

func (s *fakeProcessingService) ProcessMediaJob(ctx context.Context, jobUUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, jobUUID)
	return s.err
}

func (s *fakeProcessingService) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.jobs...)
}

type fakeTranscriptionService struct {
	mu   sync.Mutex
	jobs []string
}

func (s *fakeTranscriptionService) RunTranscriptionJob(ctx context.Context, jobUUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, jobUUID)
	return nil
}

func (s *fakeTranscriptionService) TranslateResult(ctx context.Context, result *vo.TranscriptionResult, targetLanguage string) (*vo.TranscriptionResult, error) {
	return result, nil
}

func (s *fakeTranscriptionService) DetectLanguage(ctx context.Context, sourceRef string, sampleDuration float64) ([]vo.LanguageCandidate, error) {
	return nil, nil
}

func (s *fakeTranscriptionService) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.jobs...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerDispatchesByKind(t *testing.T) {
	q := queue.NewMemoryTaskQueue(10)
	proc := &fakeProcessingService{}
	trans := &fakeTranscriptionService{}
	w := NewMediaWorker("w1", q, proc, trans, 2)

	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	ctx := context.Background()
	if err := q.Enqueue(ctx, queue.QueuedJob{Kind: port.JobKindProcessing, JobUUID: "media-1"}); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(ctx, queue.QueuedJob{Kind: port.JobKindTranscription, JobUUID: "trans-1"}); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		return len(proc.seen()) == 1 && len(trans.seen()) == 1
	})
	if proc.seen()[0] != "media-1" || trans.seen()[0] != "trans-1" {
		t.Errorf("dispatched %v / %v", proc.seen(), trans.seen())
	}

	stats := w.GetStats()
	if stats.ProcessedJobs != 2 || stats.ProcessingJobs != 1 || stats.TranscribedJobs != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestWorkerCountsFailedDispatches(t *testing.T) {
	q := queue.NewMemoryTaskQueue(10)
	proc := &fakeProcessingService{err: errors.New("repo unavailable")}
	w := NewMediaWorker("w1", q, proc, &fakeTranscriptionService{}, 1)

	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := q.Enqueue(context.Background(), queue.QueuedJob{Kind: port.JobKindProcessing, JobUUID: "media-1"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		return w.GetStats().FailedDispatches == 1
	})
	if got := w.GetStats().ProcessingJobs; got != 0 {
		t.Errorf("processing jobs = %d, want 0", got)
	}
}

func TestWorkerStartStop(t *testing.T) {
	q := queue.NewMemoryTaskQueue(10)
	w := NewMediaWorker("w1", q, &fakeProcessingService{}, &fakeTranscriptionService{}, 2)

	if w.IsRunning() {
		t.Error("running before start")
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !w.IsRunning() {
		t.Error("not running after start")
	}
	if err := w.Start(context.Background()); err == nil {
		t.Error("double start succeeded")
	}
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}
	if w.IsRunning() {
		t.Error("still running after stop")
	}
	// 重复停止幂等
	if err := w.Stop(); err != nil {
		t.Errorf("second stop: %v", err)
	}
}

func TestWorkerStopsWhenQueueCloses(t *testing.T) {
	q := queue.NewMemoryTaskQueue(10)
	w := NewMediaWorker("w1", q, &fakeProcessingService{}, &fakeTranscriptionService{}, 1)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		_ = w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after queue close")
	}
}

package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"media-service/ddd/application/cqe"
	"media-service/ddd/domain/gateway"
	"media-service/ddd/domain/vo"
	"media-service/ddd/infrastructure/engine"
	"media-service/ddd/infrastructure/persistence"
	"media-service/ddd/infrastructure/progress"
	"media-service/ddd/infrastructure/queue"
	"media-service/pkg/config"
	"media-service/pkg/errno"
)

func newTestMediaApp(queueCapacity int) (MediaApp, queue.TaskQueue) {
	q := queue.NewMemoryTaskQueue(queueCapacity)
	a := NewMediaAppWith(
		persistence.NewMediaJobRepository(),
		q,
		engine.NewDeterministicMediaInspector(),
		nil,
		progress.NewMemoryBroadcaster(),
	)
	return a, q
}

func TestProcessMediaCreatesQueuedJob(t *testing.T) {
	a, q := newTestMediaApp(10)
	ctx := context.Background()

	job, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{
		OwnerUUID:    "owner-1",
		SourceRef:    "uploads/demo.mov",
		TargetFormat: "mp4",
		Settings:     vo.ProcessingSettings{Resolution: "720p"},
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if job.Status != "queued" || job.Progress != 0 {
		t.Errorf("job = %+v", job)
	}
	if job.Metadata.Format != "mov" {
		t.Errorf("metadata format = %s, probe should fill it", job.Metadata.Format)
	}
	if q.Size() != 1 {
		t.Errorf("queue size = %d, want 1", q.Size())
	}

	got, err := a.GetMediaJob(ctx, "owner-1", job.JobUUID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.JobUUID != job.JobUUID {
		t.Errorf("got %s", got.JobUUID)
	}
}

func TestProcessMediaValidationRejected(t *testing.T) {
	a, q := newTestMediaApp(10)
	_, err := a.ProcessMedia(context.Background(), &cqe.ProcessMediaCqe{
		OwnerUUID: "owner-1",
		SourceRef: "uploads/demo.mov",
		Settings:  vo.ProcessingSettings{Rotate: 45},
	})
	if !errno.Is(err, errno.ErrValidation) {
		t.Errorf("err = %v", err)
	}
	if q.Size() != 0 {
		t.Error("rejected submission reached the queue")
	}
}

func TestGetMediaJobAuthorization(t *testing.T) {
	a, _ := newTestMediaApp(10)
	ctx := context.Background()

	job, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/demo.mov"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.GetMediaJob(ctx, "", job.JobUUID); !errno.Is(err, errno.ErrOwnerRequired) {
		t.Errorf("missing owner err = %v", err)
	}
	if _, err := a.GetMediaJob(ctx, "owner-1", ""); !errno.Is(err, errno.ErrMissingParam) {
		t.Errorf("missing job err = %v", err)
	}
	if _, err := a.GetMediaJob(ctx, "owner-1", "no-such-job"); !errno.Is(err, errno.ErrJobNotFound) {
		t.Errorf("missing job err = %v", err)
	}
	if _, err := a.GetMediaJob(ctx, "owner-2", job.JobUUID); !errno.Is(err, errno.ErrJobNotOwned) {
		t.Errorf("foreign owner err = %v", err)
	}
}

func TestListMediaJobsNewestFirst(t *testing.T) {
	a, _ := newTestMediaApp(10)
	ctx := context.Background()

	var uuids []string
	for _, ref := range []string{"uploads/a.mov", "uploads/b.mov", "uploads/c.mov"} {
		job, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: ref})
		if err != nil {
			t.Fatal(err)
		}
		uuids = append(uuids, job.JobUUID)
	}

	jobs, err := a.ListMediaJobs(ctx, "owner-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs", len(jobs))
	}
	if jobs[0].JobUUID != uuids[2] || jobs[2].JobUUID != uuids[0] {
		t.Error("jobs not in newest-first order")
	}
}

func TestCancelMediaJob(t *testing.T) {
	a, _ := newTestMediaApp(10)
	ctx := context.Background()

	job, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/demo.mov"})
	if err != nil {
		t.Fatal(err)
	}

	cancelled, err := a.CancelMediaJob(ctx, "owner-1", job.JobUUID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != "cancelled" {
		t.Errorf("status = %s", cancelled.Status)
	}

	// 终态作业不可再取消
	if _, err := a.CancelMediaJob(ctx, "owner-1", job.JobUUID); !errno.Is(err, errno.ErrJobTerminal) {
		t.Errorf("second cancel err = %v", err)
	}
	// 他人作业不可取消
	if _, err := a.CancelMediaJob(ctx, "owner-2", job.JobUUID); !errno.Is(err, errno.ErrJobNotOwned) {
		t.Errorf("foreign cancel err = %v", err)
	}
}

func TestDeleteMediaJob(t *testing.T) {
	a, _ := newTestMediaApp(10)
	ctx := context.Background()

	job, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/demo.mov"})
	if err != nil {
		t.Fatal(err)
	}

	// 活跃作业不可删除
	if err := a.DeleteMediaJob(ctx, "owner-1", job.JobUUID); !errno.Is(err, errno.ErrJobNotTerminal) {
		t.Errorf("active delete err = %v", err)
	}

	if _, err := a.CancelMediaJob(ctx, "owner-1", job.JobUUID); err != nil {
		t.Fatal(err)
	}
	if err := a.DeleteMediaJob(ctx, "owner-1", job.JobUUID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := a.GetMediaJob(ctx, "owner-1", job.JobUUID); !errno.Is(err, errno.ErrJobNotFound) {
		t.Errorf("deleted job still found: %v", err)
	}
}

func TestProcessBatch(t *testing.T) {
	a, q := newTestMediaApp(100)
	ctx := context.Background()

	result, err := a.ProcessBatch(ctx, &cqe.BatchProcessCqe{
		OwnerUUID: "owner-1",
		Items: []cqe.BatchItem{
			{SourceRef: "uploads/a.mov"},
			{SourceRef: "uploads/b.mov"},
			{SourceRef: "uploads/c.mov"},
		},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if result.BatchUUID == "" || len(result.Jobs) != 3 || result.JobCount != 3 {
		t.Errorf("result = %+v", result)
	}
	if q.Size() != 3 {
		t.Errorf("queue size = %d, want 3", q.Size())
	}
	for _, job := range result.Jobs {
		if job.Status != "queued" {
			t.Errorf("job %s status = %s", job.JobUUID, job.Status)
		}
	}
}

func TestProcessBatchRejectedWholesale(t *testing.T) {
	a, q := newTestMediaApp(100)
	ctx := context.Background()

	items := make([]cqe.BatchItem, cqe.MaxBatchItems+1)
	for i := range items {
		items[i] = cqe.BatchItem{SourceRef: "uploads/a.mov"}
	}
	if _, err := a.ProcessBatch(ctx, &cqe.BatchProcessCqe{OwnerUUID: "owner-1", Items: items}); !errno.Is(err, errno.ErrBatchTooLarge) {
		t.Fatalf("err = %v", err)
	}

	// 超限批次一个作业都不建
	jobs, err := a.ListMediaJobs(ctx, "owner-1", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 || q.Size() != 0 {
		t.Errorf("jobs = %d, queue = %d, want 0 each", len(jobs), q.Size())
	}
}

func TestOwnerActiveJobCap(t *testing.T) {
	a, _ := newTestMediaApp(200)
	ctx := context.Background()

	items := make([]cqe.BatchItem, cqe.MaxBatchItems)
	for i := range items {
		items[i] = cqe.BatchItem{SourceRef: "uploads/a.mov"}
	}
	if _, err := a.ProcessBatch(ctx, &cqe.BatchProcessCqe{OwnerUUID: "owner-1", Items: items}); err != nil {
		t.Fatal(err)
	}

	// 活跃作业已达上限，再提交被拒
	if _, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/z.mov"}); !errno.Is(err, errno.ErrQueueFull) {
		t.Errorf("over-cap submit err = %v", err)
	}

	// 其他owner不受影响
	if _, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-2", SourceRef: "uploads/z.mov"}); err != nil {
		t.Errorf("unrelated owner rejected: %v", err)
	}

	// 取消一个后腾出名额
	jobs, _ := a.ListMediaJobs(ctx, "owner-1", 1)
	if _, err := a.CancelMediaJob(ctx, "owner-1", jobs[0].JobUUID); err != nil {
		t.Fatal(err)
	}
	if _, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/z.mov"}); err != nil {
		t.Errorf("submit after freeing a slot: %v", err)
	}
}

func TestProcessMediaQueueFull(t *testing.T) {
	a, _ := newTestMediaApp(1)
	ctx := context.Background()

	if _, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/a.mov"}); err != nil {
		t.Fatal(err)
	}
	if _, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/b.mov"}); !errno.Is(err, errno.ErrQueueFull) {
		t.Fatalf("err = %v", err)
	}

	// 入队失败的作业落失败态留痕
	jobs, _ := a.ListMediaJobs(ctx, "owner-1", 10)
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d", len(jobs))
	}
	if jobs[0].Status != "failed" {
		t.Errorf("orphaned job status = %s, want failed", jobs[0].Status)
	}
}

func TestAnalyzeMedia(t *testing.T) {
	a, _ := newTestMediaApp(10)
	ctx := context.Background()

	got, err := a.AnalyzeMedia(ctx, &cqe.AnalyzeMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/demo.mov"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.Cached {
		t.Error("first analysis reported as cached")
	}
	if got.Analysis.QualityScore <= 0 || got.Analysis.Metadata.Format != "mov" {
		t.Errorf("analysis = %+v", got.Analysis)
	}

	again, err := a.AnalyzeMedia(ctx, &cqe.AnalyzeMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/demo.mov"})
	if err != nil {
		t.Fatal(err)
	}
	if again.Analysis.QualityScore != got.Analysis.QualityScore {
		t.Error("repeat analysis of the same source differs")
	}
}

// corruptSourceInspector 对指定源提取元数据失败，其余委托真实实现
type corruptSourceInspector struct {
	real    gateway.MediaInspector
	failRef string
}

func (b *corruptSourceInspector) ExtractMetadata(ctx context.Context, sourceRef string) (*vo.MediaMetadata, error) {
	if sourceRef == b.failRef {
		return nil, errors.New("corrupt container")
	}
	return b.real.ExtractMetadata(ctx, sourceRef)
}

func (b *corruptSourceInspector) Analyze(ctx context.Context, sourceRef string) (*vo.MediaAnalysis, error) {
	if sourceRef == b.failRef {
		return nil, errors.New("corrupt container")
	}
	return b.real.Analyze(ctx, sourceRef)
}

func TestProcessBatchDegradesUnreadableSourceItem(t *testing.T) {
	q := queue.NewMemoryTaskQueue(100)
	a := NewMediaAppWith(
		persistence.NewMediaJobRepository(),
		q,
		&corruptSourceInspector{real: engine.NewDeterministicMediaInspector(), failRef: "uploads/b.mov"},
		nil,
		progress.NewMemoryBroadcaster(),
	)
	ctx := context.Background()

	result, err := a.ProcessBatch(ctx, &cqe.BatchProcessCqe{
		OwnerUUID: "owner-1",
		Items: []cqe.BatchItem{
			{SourceRef: "uploads/a.mov"},
			{SourceRef: "uploads/b.mov"},
			{SourceRef: "uploads/c.mov"},
		},
	})
	if err != nil {
		t.Fatalf("batch must not abort on an unreadable item: %v", err)
	}
	if result.JobCount != 3 || len(result.Jobs) != 3 {
		t.Fatalf("result = %+v, want all 3 items accounted for", result)
	}

	if result.Jobs[0].Status != "queued" || result.Jobs[2].Status != "queued" {
		t.Errorf("healthy items = %s/%s, want queued", result.Jobs[0].Status, result.Jobs[2].Status)
	}
	degraded := result.Jobs[1]
	if degraded.Status != "failed" {
		t.Errorf("unreadable item status = %s, want failed", degraded.Status)
	}
	if !strings.Contains(degraded.ErrorMessage, "corrupt container") {
		t.Errorf("error message = %q, want the inspector error", degraded.ErrorMessage)
	}

	// 只有健康条目入队
	if q.Size() != 2 {
		t.Errorf("queue size = %d, want 2", q.Size())
	}

	// 降级条目在列表里可见
	jobs, err := a.ListMediaJobs(ctx, "owner-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 3 {
		t.Errorf("listed jobs = %d, want 3", len(jobs))
	}
	got, err := a.GetMediaJob(ctx, "owner-1", degraded.JobUUID)
	if err != nil {
		t.Fatalf("degraded job not retrievable: %v", err)
	}
	if got.Status != "failed" {
		t.Errorf("stored status = %s, want failed", got.Status)
	}
}

func TestProcessBatchDegradesEnqueueFailedItem(t *testing.T) {
	a, _ := newTestMediaApp(2)
	ctx := context.Background()

	result, err := a.ProcessBatch(ctx, &cqe.BatchProcessCqe{
		OwnerUUID: "owner-1",
		Items: []cqe.BatchItem{
			{SourceRef: "uploads/a.mov"},
			{SourceRef: "uploads/b.mov"},
			{SourceRef: "uploads/c.mov"},
		},
	})
	if err != nil {
		t.Fatalf("batch must not abort when the queue fills: %v", err)
	}
	if result.JobCount != 3 {
		t.Fatalf("job count = %d, want 3", result.JobCount)
	}
	if result.Jobs[0].Status != "queued" || result.Jobs[1].Status != "queued" {
		t.Errorf("first two items = %s/%s, want queued", result.Jobs[0].Status, result.Jobs[1].Status)
	}
	if result.Jobs[2].Status != "failed" {
		t.Errorf("overflow item status = %s, want failed", result.Jobs[2].Status)
	}
}

func TestListMediaJobsCappedAtFifty(t *testing.T) {
	a, _ := newTestMediaApp(200)
	ctx := context.Background()

	items := make([]cqe.BatchItem, cqe.MaxBatchItems)
	for i := range items {
		items[i] = cqe.BatchItem{SourceRef: "uploads/a.mov"}
	}
	result, err := a.ProcessBatch(ctx, &cqe.BatchProcessCqe{OwnerUUID: "owner-1", Items: items})
	if err != nil {
		t.Fatal(err)
	}
	for _, job := range result.Jobs {
		if _, err := a.CancelMediaJob(ctx, "owner-1", job.JobUUID); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 5; i++ {
		if _, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/z.mov"}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, 50},
		{"over cap", 500, 50},
		{"explicit small", 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := a.ListMediaJobs(ctx, "owner-1", tt.limit)
			if err != nil {
				t.Fatal(err)
			}
			if len(jobs) != tt.want {
				t.Errorf("listed %d jobs, want %d", len(jobs), tt.want)
			}
		})
	}
}

func TestOwnerCapFollowsConfiguredLimit(t *testing.T) {
	cfg := &config.Config{}
	cfg.Worker.PerOwnerLimit = cqe.MaxBatchItems + 2
	config.SetGlobalConfig(cfg)
	t.Cleanup(func() { config.SetGlobalConfig(nil) })

	a, _ := newTestMediaApp(200)
	ctx := context.Background()

	items := make([]cqe.BatchItem, cqe.MaxBatchItems)
	for i := range items {
		items[i] = cqe.BatchItem{SourceRef: "uploads/a.mov"}
	}
	if _, err := a.ProcessBatch(ctx, &cqe.BatchProcessCqe{OwnerUUID: "owner-1", Items: items}); err != nil {
		t.Fatal(err)
	}

	// 配置抬高了上限，还能再放两个
	for i := 0; i < 2; i++ {
		if _, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/z.mov"}); err != nil {
			t.Fatalf("submit %d within raised cap: %v", i, err)
		}
	}
	if _, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/z.mov"}); !errno.Is(err, errno.ErrQueueFull) {
		t.Errorf("over raised cap err = %v", err)
	}
}

func TestOwnerCapNeverBelowBatchLimit(t *testing.T) {
	cfg := &config.Config{}
	cfg.Worker.PerOwnerLimit = 1
	config.SetGlobalConfig(cfg)
	t.Cleanup(func() { config.SetGlobalConfig(nil) })

	a, _ := newTestMediaApp(200)
	ctx := context.Background()

	// 配置低于批量上限时不生效，满批仍然可提交
	items := make([]cqe.BatchItem, cqe.MaxBatchItems)
	for i := range items {
		items[i] = cqe.BatchItem{SourceRef: "uploads/a.mov"}
	}
	if _, err := a.ProcessBatch(ctx, &cqe.BatchProcessCqe{OwnerUUID: "owner-1", Items: items}); err != nil {
		t.Fatalf("full batch rejected under low configured cap: %v", err)
	}
	if _, err := a.ProcessMedia(ctx, &cqe.ProcessMediaCqe{OwnerUUID: "owner-1", SourceRef: "uploads/z.mov"}); !errno.Is(err, errno.ErrQueueFull) {
		t.Errorf("over-cap submit err = %v", err)
	}
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"media-service/ddd/domain/port"
	"media-service/ddd/domain/service"
	"media-service/ddd/infrastructure/queue"
	"media-service/pkg/logger"
)

// MediaWorker 媒体作业工作器接口
type MediaWorker interface {
	// Start 启动工作器
	Start(ctx context.Context) error

	// Stop 停止工作器并等待在途作业收尾
	Stop() error

	// IsRunning 检查工作器是否运行中
	IsRunning() bool

	// GetStats 获取工作器统计信息
	GetStats() WorkerStats
}

// WorkerStats 工作器统计信息
type WorkerStats struct {
	ProcessedJobs    uint64
	ProcessingJobs   uint64
	TranscribedJobs  uint64
	FailedDispatches uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

// mediaWorkerImpl 从队列取作业标识并派发给对应领域服务
type mediaWorkerImpl struct {
	id                   string
	taskQueue            queue.TaskQueue
	processingService    service.ProcessingService
	transcriptionService service.TranscriptionService
	workerCount          int
	running              bool
	cancel               context.CancelFunc
	stats                WorkerStats
	mu                   sync.RWMutex
	wg                   sync.WaitGroup
}

// NewMediaWorker 创建媒体作业工作器
func NewMediaWorker(
	id string,
	taskQueue queue.TaskQueue,
	processingService service.ProcessingService,
	transcriptionService service.TranscriptionService,
	workerCount int,
) MediaWorker {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &mediaWorkerImpl{
		id:                   id,
		taskQueue:            taskQueue,
		processingService:    processingService,
		transcriptionService: transcriptionService,
		workerCount:          workerCount,
		stats: WorkerStats{
			StartTime: time.Now(),
		},
	}
}

// Start 启动工作器
func (w *mediaWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("Starting media worker %s with %d goroutines", w.id, w.workerCount)

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}
	return nil
}

// Stop 停止工作器
func (w *mediaWorkerImpl) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	logger.Infof("Stopping media worker %s", w.id)

	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.running = false

	logger.Infof("Media worker %s stopped", w.id)
	return nil
}

// IsRunning 检查工作器是否运行中
func (w *mediaWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats 获取工作器统计信息
func (w *mediaWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// workerLoop 工作器主循环
func (w *mediaWorkerImpl) workerLoop(ctx context.Context, workerID int) {
	defer w.wg.Done()

	logger.Debugf("Worker %s-%d started", w.id, workerID)
	defer logger.Debugf("Worker %s-%d stopped", w.id, workerID)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.taskQueue.Dequeue(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				if w.taskQueue.IsClosed() {
					return
				}
				logger.Warnf("Worker %s-%d failed to dequeue: %v", w.id, workerID, err)
				time.Sleep(time.Second) // 避免忙等待
				continue
			}
			w.runJob(ctx, job, workerID)
		}
	}
}

// runJob 派发单个作业
func (w *mediaWorkerImpl) runJob(ctx context.Context, job queue.QueuedJob, workerID int) {
	logger.Debugf("Worker %s-%d picked job %s kind=%s", w.id, workerID, job.JobUUID, job.Kind)

	w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning++
	})
	defer w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning--
		stats.ProcessedJobs++
		stats.LastJobTime = time.Now()
	})

	var err error
	switch job.Kind {
	case port.JobKindProcessing:
		err = w.processingService.ProcessMediaJob(ctx, job.JobUUID)
		if err == nil {
			w.updateStats(func(stats *WorkerStats) { stats.ProcessingJobs++ })
		}
	case port.JobKindTranscription:
		err = w.transcriptionService.RunTranscriptionJob(ctx, job.JobUUID)
		if err == nil {
			w.updateStats(func(stats *WorkerStats) { stats.TranscribedJobs++ })
		}
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}

	if err != nil {
		w.updateStats(func(stats *WorkerStats) { stats.FailedDispatches++ })
		logger.Error("job dispatch failed", map[string]interface{}{
			"worker":   fmt.Sprintf("%s-%d", w.id, workerID),
			"job_uuid": job.JobUUID,
			"kind":     string(job.Kind),
			"error":    err.Error(),
		})
	}
}

func (w *mediaWorkerImpl) updateStats(fn func(stats *WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.stats)
}

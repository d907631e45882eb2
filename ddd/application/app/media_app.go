package app

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"media-service/ddd/application/cqe"
	"media-service/ddd/application/dto"
	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/gateway"
	"media-service/ddd/domain/port"
	"media-service/ddd/domain/repo"
	"media-service/ddd/domain/vo"
	"media-service/ddd/infrastructure/cache"
	"media-service/ddd/infrastructure/engine"
	"media-service/ddd/infrastructure/persistence"
	"media-service/ddd/infrastructure/progress"
	"media-service/ddd/infrastructure/queue"
	"media-service/internal/resource"
	"media-service/pkg/assert"
	"media-service/pkg/config"
	"media-service/pkg/errno"
	"media-service/pkg/logger"
)

var (
	singleMediaApp MediaApp
	onceMediaApp   sync.Once
)

// maxListLimit 列表接口固定返回最新的最多50条
const maxListLimit = 50

// MediaApp 视频处理应用服务
type MediaApp interface {
	// ProcessMedia 提交单个处理作业
	ProcessMedia(ctx context.Context, req *cqe.ProcessMediaCqe) (*dto.MediaJobDTO, error)
	// ProcessBatch 批量提交处理作业；校验失败则一个作业都不创建
	ProcessBatch(ctx context.Context, req *cqe.BatchProcessCqe) (*dto.BatchResultDTO, error)
	// AnalyzeMedia 对源媒体做质量体检
	AnalyzeMedia(ctx context.Context, req *cqe.AnalyzeMediaCqe) (*dto.AnalysisDTO, error)
	// GetMediaJob 查询单个作业
	GetMediaJob(ctx context.Context, ownerUUID, jobUUID string) (*dto.MediaJobDTO, error)
	// ListMediaJobs 按创建时间倒序列出owner的作业
	ListMediaJobs(ctx context.Context, ownerUUID string, limit int) ([]*dto.MediaJobDTO, error)
	// CancelMediaJob 协作式取消作业
	CancelMediaJob(ctx context.Context, ownerUUID, jobUUID string) (*dto.MediaJobDTO, error)
	// DeleteMediaJob 删除终态作业的记录
	DeleteMediaJob(ctx context.Context, ownerUUID, jobUUID string) error
}

type mediaAppImpl struct {
	jobRepo     repo.MediaJobRepository
	taskQueue   queue.TaskQueue
	inspector   gateway.MediaInspector
	analysisCch *cache.AnalysisCache
	broadcaster port.ProgressBroadcaster
}

// DefaultMediaApp 获取应用服务单例
func DefaultMediaApp() MediaApp {
	assert.NotCircular()
	onceMediaApp.Do(func() {
		singleMediaApp = NewMediaAppWith(
			persistence.DefaultMediaJobRepository(),
			queue.DefaultTaskQueue(),
			engine.NewDeterministicMediaInspector(),
			cache.NewAnalysisCache(resource.DefaultRedisResource()),
			progress.DefaultBroadcaster(),
		)
	})
	assert.NotNil(singleMediaApp)
	return singleMediaApp
}

func NewMediaAppWith(
	jobRepo repo.MediaJobRepository,
	taskQueue queue.TaskQueue,
	inspector gateway.MediaInspector,
	analysisCache *cache.AnalysisCache,
	broadcaster port.ProgressBroadcaster,
) MediaApp {
	return &mediaAppImpl{
		jobRepo:     jobRepo,
		taskQueue:   taskQueue,
		inspector:   inspector,
		analysisCch: analysisCache,
		broadcaster: broadcaster,
	}
}

func (a *mediaAppImpl) ProcessMedia(ctx context.Context, req *cqe.ProcessMediaCqe) (*dto.MediaJobDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.checkOwnerCapacity(ctx, req.OwnerUUID, 1); err != nil {
		return nil, err
	}

	job, err := a.createAndEnqueue(ctx, req.OwnerUUID, req.SourceRef, req.TargetFormat, req.Settings)
	if err != nil {
		return nil, err
	}
	return dto.NewMediaJobDto(job), nil
}

func (a *mediaAppImpl) ProcessBatch(ctx context.Context, req *cqe.BatchProcessCqe) (*dto.BatchResultDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.checkOwnerCapacity(ctx, req.OwnerUUID, len(req.Items)); err != nil {
		return nil, err
	}

	result := &dto.BatchResultDTO{
		BatchUUID: uuid.New().String(),
		Jobs:      make([]*dto.MediaJobDTO, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		result.Jobs = append(result.Jobs, a.submitBatchItem(ctx, req.OwnerUUID, result.BatchUUID, item))
	}
	result.JobCount = len(result.Jobs)
	return result, nil
}

// submitBatchItem 建档并入队单个条目；条目级故障只降级该作业，从不中断整批
func (a *mediaAppImpl) submitBatchItem(ctx context.Context, ownerUUID, batchUUID string, item cqe.BatchItem) *dto.MediaJobDTO {
	job, err := a.createAndEnqueue(ctx, ownerUUID, item.SourceRef, item.TargetFormat, item.Settings)
	if err == nil {
		return dto.NewMediaJobDto(job)
	}
	logger.Warn("batch item degraded to failed", map[string]interface{}{
		"batch_uuid": batchUUID,
		"source_ref": item.SourceRef,
		"error":      err.Error(),
	})
	if job == nil {
		// 探测失败：仍然建档并落失败态，让条目在批量结果和列表里可见
		job = entity.NewMediaJobEntity(ownerUUID, item.SourceRef, item.TargetFormat, item.Settings, vo.MediaMetadata{})
		_ = job.Fail(err.Error())
		if createErr := a.jobRepo.CreateMediaJob(ctx, job); createErr != nil {
			logger.Error("batch item record failed", map[string]interface{}{
				"batch_uuid": batchUUID,
				"source_ref": item.SourceRef,
				"error":      createErr.Error(),
			})
		}
		a.publishSnapshot(job)
		return dto.NewMediaJobDto(job)
	}
	// 入队失败：createAndEnqueue 已把作业落失败态，取最新快照
	if latest, getErr := a.jobRepo.GetMediaJob(ctx, job.JobUUID()); getErr == nil && latest != nil {
		job = latest
	}
	return dto.NewMediaJobDto(job)
}

// createAndEnqueue 建档并入队；入队失败的作业立刻落失败态
func (a *mediaAppImpl) createAndEnqueue(ctx context.Context, ownerUUID, sourceRef, targetFormat string, settings vo.ProcessingSettings) (*entity.MediaJobEntity, error) {
	metadata, err := a.inspector.ExtractMetadata(ctx, sourceRef)
	if err != nil {
		return nil, errno.ErrValidation.WithMessage("source probe failed: %s", err.Error())
	}

	job := entity.NewMediaJobEntity(ownerUUID, sourceRef, targetFormat, settings, *metadata)
	if err := a.jobRepo.CreateMediaJob(ctx, job); err != nil {
		return nil, errno.ErrInternalServer.WithMessage("%s", err.Error())
	}

	a.publishSnapshot(job)

	if err := a.taskQueue.Enqueue(ctx, queue.QueuedJob{Kind: port.JobKindProcessing, JobUUID: job.JobUUID()}); err != nil {
		_ = a.jobRepo.MutateMediaJob(ctx, job.JobUUID(), func(j *entity.MediaJobEntity) error {
			return j.Fail("enqueue failed: " + err.Error())
		})
		return job, errno.ErrQueueFull
	}
	return job, nil
}

func (a *mediaAppImpl) AnalyzeMedia(ctx context.Context, req *cqe.AnalyzeMediaCqe) (*dto.AnalysisDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if a.analysisCch != nil {
		if cached := a.analysisCch.Get(ctx, req.SourceRef); cached != nil {
			return &dto.AnalysisDTO{SourceRef: req.SourceRef, Cached: true, Analysis: *cached}, nil
		}
	}

	analysis, err := a.inspector.Analyze(ctx, req.SourceRef)
	if err != nil {
		return nil, errno.ErrValidation.WithMessage("source probe failed: %s", err.Error())
	}
	if a.analysisCch != nil {
		a.analysisCch.Put(ctx, req.SourceRef, analysis)
	}
	return &dto.AnalysisDTO{SourceRef: req.SourceRef, Analysis: *analysis}, nil
}

func (a *mediaAppImpl) GetMediaJob(ctx context.Context, ownerUUID, jobUUID string) (*dto.MediaJobDTO, error) {
	job, err := a.loadOwnedJob(ctx, ownerUUID, jobUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewMediaJobDto(job), nil
}

func (a *mediaAppImpl) ListMediaJobs(ctx context.Context, ownerUUID string, limit int) ([]*dto.MediaJobDTO, error) {
	if ownerUUID == "" {
		return nil, errno.ErrOwnerRequired
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	jobs, err := a.jobRepo.ListMediaJobsByOwner(ctx, ownerUUID, limit)
	if err != nil {
		return nil, errno.ErrInternalServer.WithMessage("%s", err.Error())
	}
	out := make([]*dto.MediaJobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, dto.NewMediaJobDto(job))
	}
	return out, nil
}

func (a *mediaAppImpl) CancelMediaJob(ctx context.Context, ownerUUID, jobUUID string) (*dto.MediaJobDTO, error) {
	if _, err := a.loadOwnedJob(ctx, ownerUUID, jobUUID); err != nil {
		return nil, err
	}

	mutErr := a.jobRepo.MutateMediaJob(ctx, jobUUID, func(job *entity.MediaJobEntity) error {
		return job.Cancel()
	})
	if mutErr != nil {
		return nil, errno.ErrJobTerminal
	}

	job, err := a.jobRepo.GetMediaJob(ctx, jobUUID)
	if err != nil || job == nil {
		return nil, errno.ErrJobNotFound
	}
	a.publishSnapshot(job)
	return dto.NewMediaJobDto(job), nil
}

func (a *mediaAppImpl) DeleteMediaJob(ctx context.Context, ownerUUID, jobUUID string) error {
	job, err := a.loadOwnedJob(ctx, ownerUUID, jobUUID)
	if err != nil {
		return err
	}
	if !job.IsTerminal() {
		return errno.ErrJobNotTerminal
	}
	if err := a.jobRepo.DeleteMediaJob(ctx, jobUUID); err != nil {
		return errno.ErrInternalServer.WithMessage("%s", err.Error())
	}
	if a.broadcaster != nil {
		a.broadcaster.Forget(jobUUID)
	}
	return nil
}

// loadOwnedJob 鉴权读取：先判存在，再判归属
func (a *mediaAppImpl) loadOwnedJob(ctx context.Context, ownerUUID, jobUUID string) (*entity.MediaJobEntity, error) {
	if ownerUUID == "" {
		return nil, errno.ErrOwnerRequired
	}
	if jobUUID == "" {
		return nil, errno.ErrMissingParam.WithMessage("job uuid is required")
	}
	job, err := a.jobRepo.GetMediaJob(ctx, jobUUID)
	if err != nil {
		return nil, errno.ErrInternalServer.WithMessage("%s", err.Error())
	}
	if job == nil {
		return nil, errno.ErrJobNotFound
	}
	if job.OwnerUUID() != ownerUUID {
		return nil, errno.ErrJobNotOwned
	}
	return job, nil
}

// ownerLimit 单个owner的活跃作业上限；可配置，但不会低于批量上限
func (a *mediaAppImpl) ownerLimit() int {
	limit := cqe.MaxBatchItems
	if cfg := config.GetGlobalConfig(); cfg != nil && cfg.Worker.PerOwnerLimit > limit {
		limit = cfg.Worker.PerOwnerLimit
	}
	return limit
}

// checkOwnerCapacity 活跃作业数不允许超过owner上限
func (a *mediaAppImpl) checkOwnerCapacity(ctx context.Context, ownerUUID string, incoming int) error {
	jobs, err := a.jobRepo.ListMediaJobsByOwner(ctx, ownerUUID, 0)
	if err != nil {
		return errno.ErrInternalServer.WithMessage("%s", err.Error())
	}
	active := 0
	for _, job := range jobs {
		if !job.IsTerminal() {
			active++
		}
	}
	if limit := a.ownerLimit(); active+incoming > limit {
		return errno.ErrQueueFull.WithMessage("owner has %d active jobs, cap is %d", active, limit)
	}
	return nil
}

func (a *mediaAppImpl) publishSnapshot(job *entity.MediaJobEntity) {
	if a.broadcaster == nil || job == nil {
		return
	}
	a.broadcaster.Publish(port.ProgressUpdate{
		JobID:    job.JobUUID(),
		Kind:     port.JobKindProcessing,
		Status:   job.Status(),
		Progress: job.Progress(),
		Output:   job.Output(),
		Error:    job.ErrorMessage(),
	})
}

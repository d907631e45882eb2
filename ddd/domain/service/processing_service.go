package service

import (
	"context"
	"errors"
	"time"

	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/gateway"
	"media-service/ddd/domain/port"
	"media-service/ddd/domain/repo"
	"media-service/pkg/config"
	"media-service/pkg/logger"
)

// ProcessingService 执行单个视频处理作业的领域服务
type ProcessingService interface {
	// ProcessMediaJob 把作业从认领推进到终态；返回错误仅代表基础设施
	// 故障，作业级失败会落入作业自身的failed状态
	ProcessMediaJob(ctx context.Context, jobUUID string) error
}

type processingServiceImpl struct {
	jobRepo     repo.MediaJobRepository
	engine      gateway.TranscodeEngine
	storage     gateway.StorageGateway
	notifier    gateway.EventNotifier
	broadcaster port.ProgressBroadcaster
	cfg         *config.EngineConfig
}

func NewProcessingService(
	jobRepo repo.MediaJobRepository,
	engine gateway.TranscodeEngine,
	storage gateway.StorageGateway,
	notifier gateway.EventNotifier,
	broadcaster port.ProgressBroadcaster,
	cfg *config.EngineConfig,
) ProcessingService {
	if cfg == nil {
		if global := config.GetGlobalConfig(); global != nil {
			cfg = &global.Engine
		} else {
			cfg = &config.EngineConfig{CallTimeout: 10 * time.Minute}
		}
	}
	return &processingServiceImpl{
		jobRepo:     jobRepo,
		engine:      engine,
		storage:     storage,
		notifier:    notifier,
		broadcaster: broadcaster,
		cfg:         cfg,
	}
}

func (s *processingServiceImpl) ProcessMediaJob(ctx context.Context, jobUUID string) error {
	// 认领作业；排队期间被取消的作业直接跳过
	claimErr := s.jobRepo.MutateMediaJob(ctx, jobUUID, func(job *entity.MediaJobEntity) error {
		return job.StartProcessing()
	})
	if claimErr != nil {
		logger.Info("skip media job", map[string]interface{}{
			"job_uuid": jobUUID,
			"reason":   claimErr.Error(),
		})
		return nil
	}
	s.publishSnapshot(ctx, jobUUID)

	job, err := s.jobRepo.GetMediaJob(ctx, jobUUID)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}

	// 拉源媒体，校验其可达
	if s.storage != nil {
		if _, err := s.storage.FetchObject(ctx, job.SourceRef()); err != nil {
			s.failJob(ctx, jobUUID, "source fetch failed: "+err.Error())
			return nil
		}
	}

	directives := BuildDirectives(job.Settings())

	engineCtx, cancelEngine := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancelEngine()

	// 进度回写被拒即作业已离开处理态（被取消）；按配置决定是否中断引擎
	progressCb := func(p int) {
		writeErr := s.jobRepo.MutateMediaJob(ctx, jobUUID, func(job *entity.MediaJobEntity) error {
			return job.SetProgress(p)
		})
		if writeErr != nil {
			if s.cfg.AbortOnCancel {
				cancelEngine()
			}
			return
		}
		s.publishSnapshot(ctx, jobUUID)
	}

	output, engineErr := s.engine.Transcode(engineCtx, job, directives, progressCb)

	if engineErr != nil {
		switch {
		case errors.Is(engineErr, context.DeadlineExceeded):
			s.failJob(ctx, jobUUID, "engine call timed out")
		case errors.Is(engineErr, context.Canceled):
			// 取消已由取消方落库，这里只负责收尾广播
			s.finishJob(ctx, jobUUID)
		default:
			s.failJob(ctx, jobUUID, engineErr.Error())
		}
		return nil
	}

	completeErr := s.jobRepo.MutateMediaJob(ctx, jobUUID, func(job *entity.MediaJobEntity) error {
		return job.Complete(output)
	})
	if completeErr != nil {
		// 引擎收尾期间被取消：产物丢弃，作业保持取消态
		logger.Info("discard output of cancelled media job", map[string]interface{}{
			"job_uuid": jobUUID,
		})
	}
	s.finishJob(ctx, jobUUID)
	return nil
}

// failJob 落失败态；作业已是终态时忽略
func (s *processingServiceImpl) failJob(ctx context.Context, jobUUID, reason string) {
	_ = s.jobRepo.MutateMediaJob(ctx, jobUUID, func(job *entity.MediaJobEntity) error {
		return job.Fail(reason)
	})
	s.finishJob(ctx, jobUUID)
}

// finishJob 广播最终快照并发出终态事件
func (s *processingServiceImpl) finishJob(ctx context.Context, jobUUID string) {
	job := s.publishSnapshot(ctx, jobUUID)
	if job == nil || !job.IsTerminal() || s.notifier == nil {
		return
	}
	event := gateway.JobEvent{
		JobUUID:    job.JobUUID(),
		OwnerUUID:  job.OwnerUUID(),
		Kind:       string(port.JobKindProcessing),
		Status:     job.Status().String(),
		Error:      job.ErrorMessage(),
		OccurredAt: time.Now(),
	}
	if out := job.Output(); out != nil {
		event.OutputRef = out.OutputRef
	}
	_ = s.notifier.NotifyJobEvent(ctx, event)
}

// publishSnapshot 把当前作业状态投进广播器
func (s *processingServiceImpl) publishSnapshot(ctx context.Context, jobUUID string) *entity.MediaJobEntity {
	job, err := s.jobRepo.GetMediaJob(ctx, jobUUID)
	if err != nil || job == nil {
		return nil
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(port.ProgressUpdate{
			JobID:    job.JobUUID(),
			Kind:     port.JobKindProcessing,
			Status:   job.Status(),
			Progress: job.Progress(),
			Output:   job.Output(),
			Error:    job.ErrorMessage(),
		})
	}
	return job
}

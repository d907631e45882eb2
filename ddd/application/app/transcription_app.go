package app

import (
	"context"
	"fmt"
	"sync"

	"media-service/ddd/application/cqe"
	"media-service/ddd/application/dto"
	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/gateway"
	"media-service/ddd/domain/port"
	"media-service/ddd/domain/repo"
	"media-service/ddd/domain/service"
	"media-service/ddd/domain/vo"
	"media-service/ddd/infrastructure/engine"
	"media-service/ddd/infrastructure/notify"
	"media-service/ddd/infrastructure/persistence"
	"media-service/ddd/infrastructure/progress"
	"media-service/ddd/infrastructure/queue"
	"media-service/ddd/infrastructure/storage"
	"media-service/internal/resource"
	"media-service/pkg/assert"
	"media-service/pkg/config"
	"media-service/pkg/errno"
)

var (
	singleTranscriptionApp TranscriptionApp
	onceTranscriptionApp   sync.Once
)

// TranscriptionApp 语音转写应用服务
type TranscriptionApp interface {
	// SubmitTranscription 提交转写作业
	SubmitTranscription(ctx context.Context, req *cqe.TranscribeCqe) (*dto.TranscriptionJobDTO, error)
	// GetTranscriptionJob 查询单个作业
	GetTranscriptionJob(ctx context.Context, ownerUUID, jobUUID string) (*dto.TranscriptionJobDTO, error)
	// ListTranscriptionJobs 按创建时间倒序列出owner的作业
	ListTranscriptionJobs(ctx context.Context, ownerUUID string, limit int) ([]*dto.TranscriptionJobDTO, error)
	// CancelTranscriptionJob 协作式取消作业
	CancelTranscriptionJob(ctx context.Context, ownerUUID, jobUUID string) (*dto.TranscriptionJobDTO, error)
	// DeleteTranscriptionJob 删除终态作业的记录
	DeleteTranscriptionJob(ctx context.Context, ownerUUID, jobUUID string) error
	// TranslateTranscription 把完成作业的结果翻译为目标语言
	TranslateTranscription(ctx context.Context, req *cqe.TranslateTranscriptionCqe) (*dto.TranscriptionJobDTO, error)
	// DetectLanguage 对源媒体采样做语言检测
	DetectLanguage(ctx context.Context, req *cqe.DetectLanguageCqe) (*dto.LanguageDetectionDTO, error)
	// ExportSubtitles 导出字幕，format取srt|vtt|ass|all
	ExportSubtitles(ctx context.Context, ownerUUID, jobUUID, format string) (*dto.SubtitleExportDTO, error)
	// SupportedLanguages 返回语言目录
	SupportedLanguages() []vo.SupportedLanguage
}

type transcriptionAppImpl struct {
	jobRepo     repo.TranscriptionJobRepository
	taskQueue   queue.TaskQueue
	domainSvc   service.TranscriptionService
	broadcaster port.ProgressBroadcaster
}

// DefaultTranscriptionApp 获取应用服务单例
func DefaultTranscriptionApp() TranscriptionApp {
	assert.NotCircular()
	onceTranscriptionApp.Do(func() {
		singleTranscriptionApp = NewTranscriptionAppWith(
			persistence.DefaultTranscriptionJobRepository(),
			queue.DefaultTaskQueue(),
			DefaultTranscriptionService(),
			progress.DefaultBroadcaster(),
		)
	})
	assert.NotNil(singleTranscriptionApp)
	return singleTranscriptionApp
}

var (
	onceTranscriptionSvc   sync.Once
	singleTranscriptionSvc service.TranscriptionService
)

// DefaultTranscriptionService 按配置组装转写领域服务
func DefaultTranscriptionService() service.TranscriptionService {
	onceTranscriptionSvc.Do(func() {
		cfg := config.GetGlobalConfig()
		var primary gateway.SpeechEngine
		var translator gateway.TranslationEngine = engine.NewFallbackTranslationEngine()
		if cfg != nil {
			if cfg.Transcription.ProviderEnabled {
				primary = engine.NewHTTPSpeechEngine(&cfg.Transcription)
			}
			if cfg.Transcription.TranslateURL != "" {
				translator = engine.NewHTTPTranslationEngine(&cfg.Transcription)
			}
		}
		singleTranscriptionSvc = service.NewTranscriptionService(
			persistence.DefaultTranscriptionJobRepository(),
			primary,
			engine.NewFallbackSpeechEngine(),
			translator,
			storage.DefaultStorageGateway(),
			notify.NewKafkaNotifier(resource.DefaultKafkaResource()),
			progress.DefaultBroadcaster(),
			nil,
		)
	})
	return singleTranscriptionSvc
}

func NewTranscriptionAppWith(
	jobRepo repo.TranscriptionJobRepository,
	taskQueue queue.TaskQueue,
	domainSvc service.TranscriptionService,
	broadcaster port.ProgressBroadcaster,
) TranscriptionApp {
	return &transcriptionAppImpl{
		jobRepo:     jobRepo,
		taskQueue:   taskQueue,
		domainSvc:   domainSvc,
		broadcaster: broadcaster,
	}
}

func (a *transcriptionAppImpl) SubmitTranscription(ctx context.Context, req *cqe.TranscribeCqe) (*dto.TranscriptionJobDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Options.Language != "" && !service.IsLanguageSupported(req.Options.Language, false) {
		return nil, errno.ErrValidation.WithMessage("language %q is not supported", req.Options.Language)
	}

	job := entity.NewTranscriptionJobEntity(req.OwnerUUID, req.SourceRef, req.Options)
	if err := a.jobRepo.CreateTranscriptionJob(ctx, job); err != nil {
		return nil, errno.ErrInternalServer.WithMessage("%s", err.Error())
	}
	a.publishSnapshot(job)

	if err := a.taskQueue.Enqueue(ctx, queue.QueuedJob{Kind: port.JobKindTranscription, JobUUID: job.JobUUID()}); err != nil {
		_ = a.jobRepo.MutateTranscriptionJob(ctx, job.JobUUID(), func(j *entity.TranscriptionJobEntity) error {
			return j.Fail("enqueue failed: " + err.Error())
		})
		return nil, errno.ErrQueueFull
	}
	return dto.NewTranscriptionJobDto(job), nil
}

func (a *transcriptionAppImpl) GetTranscriptionJob(ctx context.Context, ownerUUID, jobUUID string) (*dto.TranscriptionJobDTO, error) {
	job, err := a.loadOwnedJob(ctx, ownerUUID, jobUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewTranscriptionJobDto(job), nil
}

func (a *transcriptionAppImpl) ListTranscriptionJobs(ctx context.Context, ownerUUID string, limit int) ([]*dto.TranscriptionJobDTO, error) {
	if ownerUUID == "" {
		return nil, errno.ErrOwnerRequired
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	jobs, err := a.jobRepo.ListTranscriptionJobsByOwner(ctx, ownerUUID, limit)
	if err != nil {
		return nil, errno.ErrInternalServer.WithMessage("%s", err.Error())
	}
	out := make([]*dto.TranscriptionJobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, dto.NewTranscriptionJobDto(job))
	}
	return out, nil
}

func (a *transcriptionAppImpl) CancelTranscriptionJob(ctx context.Context, ownerUUID, jobUUID string) (*dto.TranscriptionJobDTO, error) {
	if _, err := a.loadOwnedJob(ctx, ownerUUID, jobUUID); err != nil {
		return nil, err
	}
	mutErr := a.jobRepo.MutateTranscriptionJob(ctx, jobUUID, func(job *entity.TranscriptionJobEntity) error {
		return job.Cancel()
	})
	if mutErr != nil {
		return nil, errno.ErrJobTerminal
	}
	job, err := a.jobRepo.GetTranscriptionJob(ctx, jobUUID)
	if err != nil || job == nil {
		return nil, errno.ErrJobNotFound
	}
	a.publishSnapshot(job)
	return dto.NewTranscriptionJobDto(job), nil
}

func (a *transcriptionAppImpl) DeleteTranscriptionJob(ctx context.Context, ownerUUID, jobUUID string) error {
	job, err := a.loadOwnedJob(ctx, ownerUUID, jobUUID)
	if err != nil {
		return err
	}
	if !job.IsTerminal() {
		return errno.ErrJobNotTerminal
	}
	if err := a.jobRepo.DeleteTranscriptionJob(ctx, jobUUID); err != nil {
		return errno.ErrInternalServer.WithMessage("%s", err.Error())
	}
	if a.broadcaster != nil {
		a.broadcaster.Forget(jobUUID)
	}
	return nil
}

func (a *transcriptionAppImpl) TranslateTranscription(ctx context.Context, req *cqe.TranslateTranscriptionCqe) (*dto.TranscriptionJobDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !service.IsLanguageSupported(req.TargetLanguage, true) {
		return nil, errno.ErrValidation.WithMessage("target language %q is not supported", req.TargetLanguage)
	}

	job, err := a.loadOwnedJob(ctx, req.OwnerUUID, req.JobUUID)
	if err != nil {
		return nil, err
	}
	if job.Status() != vo.JobStatusCompleted {
		return nil, errno.ErrJobNotCompleted
	}
	if job.Result() == nil {
		return nil, errno.ErrNoTranscript
	}

	translated, err := a.domainSvc.TranslateResult(ctx, job.Result(), req.TargetLanguage)
	if err != nil {
		return nil, errno.ErrEngine.WithMessage("translation failed: %s", err.Error())
	}

	mutErr := a.jobRepo.MutateTranscriptionJob(ctx, req.JobUUID, func(j *entity.TranscriptionJobEntity) error {
		return j.ReplaceResult(translated)
	})
	if mutErr != nil {
		return nil, errno.ErrJobNotCompleted
	}

	fresh, err := a.jobRepo.GetTranscriptionJob(ctx, req.JobUUID)
	if err != nil || fresh == nil {
		return nil, errno.ErrJobNotFound
	}
	return dto.NewTranscriptionJobDto(fresh), nil
}

func (a *transcriptionAppImpl) DetectLanguage(ctx context.Context, req *cqe.DetectLanguageCqe) (*dto.LanguageDetectionDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sample := req.SampleDuration
	if sample == 0 {
		sample = 30
	}
	candidates, err := a.domainSvc.DetectLanguage(ctx, req.SourceRef, sample)
	if err != nil {
		return nil, errno.ErrEngine.WithMessage("language detection failed: %s", err.Error())
	}
	return &dto.LanguageDetectionDTO{SourceRef: req.SourceRef, Candidates: candidates}, nil
}

func (a *transcriptionAppImpl) ExportSubtitles(ctx context.Context, ownerUUID, jobUUID, format string) (*dto.SubtitleExportDTO, error) {
	job, err := a.loadOwnedJob(ctx, ownerUUID, jobUUID)
	if err != nil {
		return nil, err
	}
	if job.Status() != vo.JobStatusCompleted {
		return nil, errno.ErrJobNotCompleted
	}
	result := job.Result()
	if result == nil {
		return nil, errno.ErrNoTranscript
	}

	export := &dto.SubtitleExportDTO{JobUUID: jobUUID, Format: format}
	switch format {
	case "srt":
		export.Content = result.Subtitles.SRT
		export.Filename = fmt.Sprintf("%s.srt", jobUUID)
		export.ContentType = "application/x-subrip"
	case "vtt":
		export.Content = result.Subtitles.VTT
		export.Filename = fmt.Sprintf("%s.vtt", jobUUID)
		export.ContentType = "text/vtt"
	case "ass":
		export.Content = result.Subtitles.ASS
		export.Filename = fmt.Sprintf("%s.ass", jobUUID)
		export.ContentType = "text/plain; charset=utf-8"
	case "all":
		subtitles := result.Subtitles
		export.Subtitles = &subtitles
		export.Filename = fmt.Sprintf("%s.json", jobUUID)
		export.ContentType = "application/json"
	default:
		return nil, errno.ErrInvalidFormat.WithMessage("unsupported subtitle format %q", format)
	}
	return export, nil
}

func (a *transcriptionAppImpl) SupportedLanguages() []vo.SupportedLanguage {
	return service.SupportedLanguages()
}

func (a *transcriptionAppImpl) loadOwnedJob(ctx context.Context, ownerUUID, jobUUID string) (*entity.TranscriptionJobEntity, error) {
	if ownerUUID == "" {
		return nil, errno.ErrOwnerRequired
	}
	if jobUUID == "" {
		return nil, errno.ErrMissingParam.WithMessage("job uuid is required")
	}
	job, err := a.jobRepo.GetTranscriptionJob(ctx, jobUUID)
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

func (a *transcriptionAppImpl) publishSnapshot(job *entity.TranscriptionJobEntity) {
	if a.broadcaster == nil || job == nil {
		return
	}
	a.broadcaster.Publish(port.ProgressUpdate{
		JobID:    job.JobUUID(),
		Kind:     port.JobKindTranscription,
		Status:   job.Status(),
		Progress: job.Progress(),
		Error:    job.ErrorMessage(),
	})
}

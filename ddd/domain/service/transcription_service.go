package service

import (
	"context"
	"errors"
	"time"

	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/gateway"
	"media-service/ddd/domain/port"
	"media-service/ddd/domain/repo"
	"media-service/ddd/domain/vo"
	"media-service/pkg/config"
	"media-service/pkg/logger"
)

// TranscriptionService 执行单个语音转写作业的领域服务
type TranscriptionService interface {
	// RunTranscriptionJob 把作业从认领推进到终态
	RunTranscriptionJob(ctx context.Context, jobUUID string) error

	// TranslateResult 把完成作业的转写结果翻译为目标语言并重建字幕
	TranslateResult(ctx context.Context, result *vo.TranscriptionResult, targetLanguage string) (*vo.TranscriptionResult, error)

	// DetectLanguage 对源媒体的采样片段做语言检测
	DetectLanguage(ctx context.Context, sourceRef string, sampleDuration float64) ([]vo.LanguageCandidate, error)
}

type transcriptionServiceImpl struct {
	jobRepo     repo.TranscriptionJobRepository
	primary     gateway.SpeechEngine
	fallback    gateway.SpeechEngine
	translator  gateway.TranslationEngine
	storage     gateway.StorageGateway
	notifier    gateway.EventNotifier
	broadcaster port.ProgressBroadcaster
	cfg         *config.TranscriptionConfig
}

func NewTranscriptionService(
	jobRepo repo.TranscriptionJobRepository,
	primary gateway.SpeechEngine,
	fallback gateway.SpeechEngine,
	translator gateway.TranslationEngine,
	storage gateway.StorageGateway,
	notifier gateway.EventNotifier,
	broadcaster port.ProgressBroadcaster,
	cfg *config.TranscriptionConfig,
) TranscriptionService {
	if cfg == nil {
		if global := config.GetGlobalConfig(); global != nil {
			cfg = &global.Transcription
		} else {
			cfg = &config.TranscriptionConfig{CallTimeout: 2 * time.Minute}
		}
	}
	return &transcriptionServiceImpl{
		jobRepo:     jobRepo,
		primary:     primary,
		fallback:    fallback,
		translator:  translator,
		storage:     storage,
		notifier:    notifier,
		broadcaster: broadcaster,
		cfg:         cfg,
	}
}

func (s *transcriptionServiceImpl) RunTranscriptionJob(ctx context.Context, jobUUID string) error {
	claimErr := s.jobRepo.MutateTranscriptionJob(ctx, jobUUID, func(job *entity.TranscriptionJobEntity) error {
		return job.StartProcessing()
	})
	if claimErr != nil {
		logger.Info("skip transcription job", map[string]interface{}{
			"job_uuid": jobUUID,
			"reason":   claimErr.Error(),
		})
		return nil
	}
	s.setProgress(ctx, jobUUID, 5)

	job, err := s.jobRepo.GetTranscriptionJob(ctx, jobUUID)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}

	audio, err := s.storage.FetchObject(ctx, job.SourceRef())
	if err != nil {
		s.failJob(ctx, jobUUID, "source fetch failed: "+err.Error())
		return nil
	}
	if !s.setProgress(ctx, jobUUID, 25) {
		// 作业已被取消，停止推进
		s.finishJob(ctx, jobUUID)
		return nil
	}

	engineCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	result, engineErr := s.transcribe(engineCtx, audio, job.Options())
	if engineErr != nil {
		if errors.Is(engineErr, context.DeadlineExceeded) {
			s.failJob(ctx, jobUUID, "engine call timed out")
		} else {
			s.failJob(ctx, jobUUID, engineErr.Error())
		}
		return nil
	}
	if !s.setProgress(ctx, jobUUID, 85) {
		s.finishJob(ctx, jobUUID)
		return nil
	}

	// 字幕三种格式一次性生成
	result.Subtitles = RenderSubtitles(result.Segments)

	completeErr := s.jobRepo.MutateTranscriptionJob(ctx, jobUUID, func(job *entity.TranscriptionJobEntity) error {
		return job.Complete(result)
	})
	if completeErr != nil {
		logger.Info("discard result of cancelled transcription job", map[string]interface{}{
			"job_uuid": jobUUID,
		})
	}
	s.finishJob(ctx, jobUUID)
	return nil
}

// transcribe 先走外部识别服务，失败降级到本地确定性引擎
func (s *transcriptionServiceImpl) transcribe(ctx context.Context, audio []byte, opts vo.TranscriptionOptions) (*vo.TranscriptionResult, error) {
	if s.cfg.ProviderEnabled && s.primary != nil {
		result, err := s.primary.Transcribe(ctx, audio, opts)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("speech provider failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if s.fallback == nil {
		return nil, errors.New("no speech engine available")
	}
	return s.fallback.Transcribe(ctx, audio, opts)
}

// DetectLanguage 语言检测走同样的主备次序
func (s *transcriptionServiceImpl) DetectLanguage(ctx context.Context, sourceRef string, sampleDuration float64) ([]vo.LanguageCandidate, error) {
	audio, err := s.storage.FetchObject(ctx, sourceRef)
	if err != nil {
		return nil, err
	}
	if s.cfg.ProviderEnabled && s.primary != nil {
		candidates, err := s.primary.DetectLanguage(ctx, audio, sampleDuration)
		if err == nil {
			return candidates, nil
		}
		logger.Warn("speech provider language detection failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if s.fallback == nil {
		return nil, errors.New("no speech engine available")
	}
	return s.fallback.DetectLanguage(ctx, audio, sampleDuration)
}

func (s *transcriptionServiceImpl) TranslateResult(ctx context.Context, result *vo.TranscriptionResult, targetLanguage string) (*vo.TranscriptionResult, error) {
	if result == nil {
		return nil, errors.New("nil result")
	}
	texts := make([]string, len(result.Segments))
	for i, seg := range result.Segments {
		texts[i] = seg.Text
	}

	translated, err := s.translator.TranslateTexts(ctx, texts, targetLanguage)
	if err != nil {
		return nil, err
	}

	// 时间轴与说话人结构原样保留，只替换文本
	out := result.Clone()
	joined := make([]byte, 0, len(out.Text))
	for i := range out.Segments {
		out.Segments[i].Text = translated[i]
		out.Segments[i].Words = nil
		if i > 0 {
			joined = append(joined, ' ')
		}
		joined = append(joined, translated[i]...)
	}
	out.Text = string(joined)
	out.Language = targetLanguage
	out.Words = nil
	out.WordCount = countWords(out.Text)
	out.Subtitles = RenderSubtitles(out.Segments)
	return out, nil
}

// setProgress 推进进度；作业不再处于处理态时返回false
func (s *transcriptionServiceImpl) setProgress(ctx context.Context, jobUUID string, progress int) bool {
	err := s.jobRepo.MutateTranscriptionJob(ctx, jobUUID, func(job *entity.TranscriptionJobEntity) error {
		return job.SetProgress(progress)
	})
	if err != nil {
		return false
	}
	s.publishSnapshot(ctx, jobUUID)
	return true
}

func (s *transcriptionServiceImpl) failJob(ctx context.Context, jobUUID, reason string) {
	_ = s.jobRepo.MutateTranscriptionJob(ctx, jobUUID, func(job *entity.TranscriptionJobEntity) error {
		return job.Fail(reason)
	})
	s.finishJob(ctx, jobUUID)
}

func (s *transcriptionServiceImpl) finishJob(ctx context.Context, jobUUID string) {
	job := s.publishSnapshot(ctx, jobUUID)
	if job == nil || !job.IsTerminal() || s.notifier == nil {
		return
	}
	_ = s.notifier.NotifyJobEvent(ctx, gateway.JobEvent{
		JobUUID:    job.JobUUID(),
		OwnerUUID:  job.OwnerUUID(),
		Kind:       string(port.JobKindTranscription),
		Status:     job.Status().String(),
		Error:      job.ErrorMessage(),
		OccurredAt: time.Now(),
	})
}

func (s *transcriptionServiceImpl) publishSnapshot(ctx context.Context, jobUUID string) *entity.TranscriptionJobEntity {
	job, err := s.jobRepo.GetTranscriptionJob(ctx, jobUUID)
	if err != nil || job == nil {
		return nil
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(port.ProgressUpdate{
			JobID:    job.JobUUID(),
			Kind:     port.JobKindTranscription,
			Status:   job.Status(),
			Progress: job.Progress(),
			Error:    job.ErrorMessage(),
		})
	}
	return job
}

func countWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

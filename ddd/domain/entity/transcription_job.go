package entity

import (
	"time"

	"github.com/google/uuid"

	"media-service/ddd/domain/vo"
)

// TranscriptionJobEntity 语音转写作业实体
type TranscriptionJobEntity struct {
	jobUUID      string
	ownerUUID    string
	sourceRef    string
	status       vo.JobStatus
	progress     int
	language     string
	options      vo.TranscriptionOptions
	result       *vo.TranscriptionResult
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
	startedAt    *time.Time
	completedAt  *time.Time
}

// NewTranscriptionJobEntity 创建排队中的转写作业
func NewTranscriptionJobEntity(ownerUUID, sourceRef string, options vo.TranscriptionOptions) *TranscriptionJobEntity {
	now := time.Now()
	return &TranscriptionJobEntity{
		jobUUID:   uuid.New().String(),
		ownerUUID: ownerUUID,
		sourceRef: sourceRef,
		status:    vo.JobStatusQueued,
		language:  options.Language,
		options:   options,
		createdAt: now,
		updatedAt: now,
	}
}

// Getters
func (j *TranscriptionJobEntity) JobUUID() string                  { return j.jobUUID }
func (j *TranscriptionJobEntity) OwnerUUID() string                { return j.ownerUUID }
func (j *TranscriptionJobEntity) SourceRef() string                { return j.sourceRef }
func (j *TranscriptionJobEntity) Status() vo.JobStatus             { return j.status }
func (j *TranscriptionJobEntity) Progress() int                    { return j.progress }
func (j *TranscriptionJobEntity) Language() string                 { return j.language }
func (j *TranscriptionJobEntity) Options() vo.TranscriptionOptions { return j.options }
func (j *TranscriptionJobEntity) Result() *vo.TranscriptionResult  { return j.result }
func (j *TranscriptionJobEntity) ErrorMessage() string             { return j.errorMessage }
func (j *TranscriptionJobEntity) CreatedAt() time.Time             { return j.createdAt }
func (j *TranscriptionJobEntity) UpdatedAt() time.Time             { return j.updatedAt }
func (j *TranscriptionJobEntity) StartedAt() *time.Time            { return j.startedAt }
func (j *TranscriptionJobEntity) CompletedAt() *time.Time          { return j.completedAt }

// IsTerminal 作业是否已到达最终状态
func (j *TranscriptionJobEntity) IsTerminal() bool {
	return j.status.IsTerminal()
}

// StartProcessing 由Worker认领作业时调用
func (j *TranscriptionJobEntity) StartProcessing() error {
	if !j.status.CanTransitionTo(vo.JobStatusProcessing) {
		return NewDomainError("cannot start processing job in status " + j.status.String())
	}
	now := time.Now()
	j.status = vo.JobStatusProcessing
	j.startedAt = &now
	j.updatedAt = now
	return nil
}

// SetProgress 更新进度；进度只增不减
func (j *TranscriptionJobEntity) SetProgress(progress int) error {
	if j.status != vo.JobStatusProcessing {
		return NewDomainError("can only update progress of a processing job")
	}
	if progress < 0 || progress > 100 {
		return NewDomainError("progress must be between 0 and 100")
	}
	if progress < j.progress {
		return nil
	}
	j.progress = progress
	j.updatedAt = time.Now()
	return nil
}

// Complete 挂接转写结果并完成作业
func (j *TranscriptionJobEntity) Complete(result *vo.TranscriptionResult) error {
	if !j.status.CanTransitionTo(vo.JobStatusCompleted) {
		return NewDomainError("cannot complete job in status " + j.status.String())
	}
	now := time.Now()
	j.status = vo.JobStatusCompleted
	j.progress = 100
	j.result = result
	if result != nil && result.Language != "" {
		j.language = result.Language
	}
	j.errorMessage = ""
	j.completedAt = &now
	j.updatedAt = now
	return nil
}

// ReplaceResult 翻译后刷新结果；只允许在完成态调用
func (j *TranscriptionJobEntity) ReplaceResult(result *vo.TranscriptionResult) error {
	if j.status != vo.JobStatusCompleted {
		return NewDomainError("can only replace the result of a completed job")
	}
	j.result = result
	if result != nil && result.Language != "" {
		j.language = result.Language
	}
	j.updatedAt = time.Now()
	return nil
}

// Fail 记录失败原因
func (j *TranscriptionJobEntity) Fail(errorMessage string) error {
	if !j.status.CanTransitionTo(vo.JobStatusFailed) {
		return NewDomainError("cannot fail job in status " + j.status.String())
	}
	now := time.Now()
	j.status = vo.JobStatusFailed
	j.errorMessage = errorMessage
	j.completedAt = &now
	j.updatedAt = now
	return nil
}

// Cancel 协作式取消
func (j *TranscriptionJobEntity) Cancel() error {
	if j.status.IsTerminal() {
		return NewDomainError("cannot cancel job in terminal status " + j.status.String())
	}
	now := time.Now()
	j.status = vo.JobStatusCancelled
	j.completedAt = &now
	j.updatedAt = now
	return nil
}

// Clone 返回深拷贝，供并发读取方使用
func (j *TranscriptionJobEntity) Clone() *TranscriptionJobEntity {
	cp := *j
	cp.result = j.result.Clone()
	if j.startedAt != nil {
		t := *j.startedAt
		cp.startedAt = &t
	}
	if j.completedAt != nil {
		t := *j.completedAt
		cp.completedAt = &t
	}
	return &cp
}

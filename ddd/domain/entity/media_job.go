package entity

import (
	"time"

	"github.com/google/uuid"

	"media-service/ddd/domain/vo"
)

// MediaJobEntity 视频处理作业实体
type MediaJobEntity struct {
	jobUUID      string
	ownerUUID    string
	sourceRef    string
	sourceFormat string
	targetFormat string
	status       vo.JobStatus
	progress     int
	settings     vo.ProcessingSettings
	metadata     vo.MediaMetadata
	output       *vo.ProcessingOutput
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
	startedAt    *time.Time
	completedAt  *time.Time
}

// NewMediaJobEntity 创建排队中的视频处理作业
func NewMediaJobEntity(ownerUUID, sourceRef, targetFormat string, settings vo.ProcessingSettings, metadata vo.MediaMetadata) *MediaJobEntity {
	now := time.Now()
	return &MediaJobEntity{
		jobUUID:      uuid.New().String(),
		ownerUUID:    ownerUUID,
		sourceRef:    sourceRef,
		sourceFormat: metadata.Format,
		targetFormat: targetFormat,
		status:       vo.JobStatusQueued,
		progress:     0,
		settings:     settings,
		metadata:     metadata,
		createdAt:    now,
		updatedAt:    now,
	}
}

// Getters
func (j *MediaJobEntity) JobUUID() string                 { return j.jobUUID }
func (j *MediaJobEntity) OwnerUUID() string               { return j.ownerUUID }
func (j *MediaJobEntity) SourceRef() string               { return j.sourceRef }
func (j *MediaJobEntity) SourceFormat() string            { return j.sourceFormat }
func (j *MediaJobEntity) TargetFormat() string            { return j.targetFormat }
func (j *MediaJobEntity) Status() vo.JobStatus            { return j.status }
func (j *MediaJobEntity) Progress() int                   { return j.progress }
func (j *MediaJobEntity) Settings() vo.ProcessingSettings { return j.settings }
func (j *MediaJobEntity) Metadata() vo.MediaMetadata      { return j.metadata }
func (j *MediaJobEntity) Output() *vo.ProcessingOutput    { return j.output }
func (j *MediaJobEntity) ErrorMessage() string            { return j.errorMessage }
func (j *MediaJobEntity) CreatedAt() time.Time            { return j.createdAt }
func (j *MediaJobEntity) UpdatedAt() time.Time            { return j.updatedAt }
func (j *MediaJobEntity) StartedAt() *time.Time           { return j.startedAt }
func (j *MediaJobEntity) CompletedAt() *time.Time         { return j.completedAt }

// IsTerminal 作业是否已到达最终状态
func (j *MediaJobEntity) IsTerminal() bool {
	return j.status.IsTerminal()
}

// StartProcessing 由Worker认领作业时调用
func (j *MediaJobEntity) StartProcessing() error {
	if !j.status.CanTransitionTo(vo.JobStatusProcessing) {
		return NewDomainError("cannot start processing job in status " + j.status.String())
	}
	now := time.Now()
	j.status = vo.JobStatusProcessing
	j.startedAt = &now
	j.updatedAt = now
	return nil
}

// SetProgress 更新进度；进度只增不减，终态后不可变
func (j *MediaJobEntity) SetProgress(progress int) error {
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

// Complete 挂接产物并完成作业
func (j *MediaJobEntity) Complete(output *vo.ProcessingOutput) error {
	if !j.status.CanTransitionTo(vo.JobStatusCompleted) {
		return NewDomainError("cannot complete job in status " + j.status.String())
	}
	now := time.Now()
	j.status = vo.JobStatusCompleted
	j.progress = 100
	j.output = output
	j.errorMessage = ""
	j.completedAt = &now
	j.updatedAt = now
	return nil
}

// Fail 记录失败原因；取消后的作业不再转为失败
func (j *MediaJobEntity) Fail(errorMessage string) error {
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

// Cancel 协作式取消；终态作业不可取消
func (j *MediaJobEntity) Cancel() error {
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
func (j *MediaJobEntity) Clone() *MediaJobEntity {
	cp := *j
	cp.output = j.output.Clone()
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

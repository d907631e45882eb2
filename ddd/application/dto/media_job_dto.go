package dto

import (
	"time"

	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/vo"
)

// MediaJobDTO 视频处理作业视图
type MediaJobDTO struct {
	JobUUID      string                `json:"job_uuid"`
	OwnerUUID    string                `json:"owner_uuid"`
	SourceRef    string                `json:"source_ref"`
	SourceFormat string                `json:"source_format,omitempty"`
	TargetFormat string                `json:"target_format,omitempty"`
	Status       string                `json:"status"`
	Progress     int                   `json:"progress"`
	Settings     vo.ProcessingSettings `json:"settings"`
	Metadata     vo.MediaMetadata      `json:"metadata"`
	Output       *vo.ProcessingOutput  `json:"output,omitempty"`
	ErrorMessage string                `json:"error_message,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	StartedAt    *time.Time            `json:"started_at,omitempty"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
}

// NewMediaJobDto 由实体构造视图
func NewMediaJobDto(job *entity.MediaJobEntity) *MediaJobDTO {
	if job == nil {
		return nil
	}
	return &MediaJobDTO{
		JobUUID:      job.JobUUID(),
		OwnerUUID:    job.OwnerUUID(),
		SourceRef:    job.SourceRef(),
		SourceFormat: job.SourceFormat(),
		TargetFormat: job.TargetFormat(),
		Status:       job.Status().String(),
		Progress:     job.Progress(),
		Settings:     job.Settings(),
		Metadata:     job.Metadata(),
		Output:       job.Output(),
		ErrorMessage: job.ErrorMessage(),
		CreatedAt:    job.CreatedAt(),
		UpdatedAt:    job.UpdatedAt(),
		StartedAt:    job.StartedAt(),
		CompletedAt:  job.CompletedAt(),
	}
}

// BatchResultDTO 批量提交结果
type BatchResultDTO struct {
	BatchUUID string         `json:"batch_uuid"`
	JobCount  int            `json:"job_count"`
	Jobs      []*MediaJobDTO `json:"jobs"`
}

// AnalysisDTO 媒体体检视图
type AnalysisDTO struct {
	SourceRef string           `json:"source_ref"`
	Cached    bool             `json:"cached"`
	Analysis  vo.MediaAnalysis `json:"analysis"`
}

package dto

import (
	"time"

	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/vo"
)

// TranscriptionJobDTO 转写作业视图
type TranscriptionJobDTO struct {
	JobUUID      string                  `json:"job_uuid"`
	OwnerUUID    string                  `json:"owner_uuid"`
	SourceRef    string                  `json:"source_ref"`
	Status       string                  `json:"status"`
	Progress     int                     `json:"progress"`
	Language     string                  `json:"language,omitempty"`
	Options      vo.TranscriptionOptions `json:"options"`
	Result       *vo.TranscriptionResult `json:"result,omitempty"`
	ErrorMessage string                  `json:"error_message,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	StartedAt    *time.Time              `json:"started_at,omitempty"`
	CompletedAt  *time.Time              `json:"completed_at,omitempty"`
}

// NewTranscriptionJobDto 由实体构造视图
func NewTranscriptionJobDto(job *entity.TranscriptionJobEntity) *TranscriptionJobDTO {
	if job == nil {
		return nil
	}
	return &TranscriptionJobDTO{
		JobUUID:      job.JobUUID(),
		OwnerUUID:    job.OwnerUUID(),
		SourceRef:    job.SourceRef(),
		Status:       job.Status().String(),
		Progress:     job.Progress(),
		Language:     job.Language(),
		Options:      job.Options(),
		Result:       job.Result(),
		ErrorMessage: job.ErrorMessage(),
		CreatedAt:    job.CreatedAt(),
		UpdatedAt:    job.UpdatedAt(),
		StartedAt:    job.StartedAt(),
		CompletedAt:  job.CompletedAt(),
	}
}

// SubtitleExportDTO 字幕导出内容
type SubtitleExportDTO struct {
	JobUUID     string `json:"job_uuid"`
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content,omitempty"`

	// all格式时一次带回三种
	Subtitles *vo.SubtitleSet `json:"subtitles,omitempty"`
}

// LanguageDetectionDTO 语言检测结果
type LanguageDetectionDTO struct {
	SourceRef  string                 `json:"source_ref"`
	Candidates []vo.LanguageCandidate `json:"candidates"`
}

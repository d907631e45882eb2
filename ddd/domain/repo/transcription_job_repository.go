package repo

import (
	"context"

	"media-service/ddd/domain/entity"
)

// TranscriptionJobRepository 转写作业仓储；并发语义同 MediaJobRepository。
type TranscriptionJobRepository interface {
	// CreateTranscriptionJob 保存新作业
	CreateTranscriptionJob(ctx context.Context, job *entity.TranscriptionJobEntity) error

	// GetTranscriptionJob 按ID取作业快照；不存在时返回 nil, nil
	GetTranscriptionJob(ctx context.Context, jobUUID string) (*entity.TranscriptionJobEntity, error)

	// ListTranscriptionJobsByOwner 按创建时间倒序返回某owner最近的作业
	ListTranscriptionJobsByOwner(ctx context.Context, ownerUUID string, limit int) ([]*entity.TranscriptionJobEntity, error)

	// MutateTranscriptionJob 在锁内对作业应用变更
	MutateTranscriptionJob(ctx context.Context, jobUUID string, mutate func(job *entity.TranscriptionJobEntity) error) error

	// DeleteTranscriptionJob 删除作业记录
	DeleteTranscriptionJob(ctx context.Context, jobUUID string) error
}

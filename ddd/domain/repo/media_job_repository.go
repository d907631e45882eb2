package repo

import (
	"context"

	"media-service/ddd/domain/entity"
)

// MediaJobRepository 视频处理作业仓储。实现必须保证单个作业的修改是
// 原子的：Mutate 在仓储锁内应用变更函数，读取方拿到的永远是快照拷贝。
type MediaJobRepository interface {
	// CreateMediaJob 保存新作业
	CreateMediaJob(ctx context.Context, job *entity.MediaJobEntity) error

	// GetMediaJob 按ID取作业快照；不存在时返回 nil, nil
	GetMediaJob(ctx context.Context, jobUUID string) (*entity.MediaJobEntity, error)

	// ListMediaJobsByOwner 按创建时间倒序返回某owner最近的作业
	ListMediaJobsByOwner(ctx context.Context, ownerUUID string, limit int) ([]*entity.MediaJobEntity, error)

	// MutateMediaJob 在锁内对作业应用变更；作业不存在时返回错误
	MutateMediaJob(ctx context.Context, jobUUID string, mutate func(job *entity.MediaJobEntity) error) error

	// DeleteMediaJob 删除作业记录
	DeleteMediaJob(ctx context.Context, jobUUID string) error
}

package persistence

import (
	"context"
	"fmt"
	"sync"

	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/repo"
)

// mediaJobRepositoryImpl 进程内存仓储。进程退出即丢失，不做任何落盘。
// 写路径全部走仓储锁，保证状态机转换的原子性。
type mediaJobRepositoryImpl struct {
	mu    sync.RWMutex
	jobs  map[string]*entity.MediaJobEntity
	order []string // 创建顺序，新作业追加在尾部
}

func NewMediaJobRepository() repo.MediaJobRepository {
	return &mediaJobRepositoryImpl{
		jobs: make(map[string]*entity.MediaJobEntity),
	}
}

func (r *mediaJobRepositoryImpl) CreateMediaJob(ctx context.Context, job *entity.MediaJobEntity) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.JobUUID()]; exists {
		return fmt.Errorf("job %s already exists", job.JobUUID())
	}
	r.jobs[job.JobUUID()] = job.Clone()
	r.order = append(r.order, job.JobUUID())
	return nil
}

func (r *mediaJobRepositoryImpl) GetMediaJob(ctx context.Context, jobUUID string) (*entity.MediaJobEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobUUID]
	if !ok {
		return nil, nil
	}
	return job.Clone(), nil
}

func (r *mediaJobRepositoryImpl) ListMediaJobsByOwner(ctx context.Context, ownerUUID string, limit int) ([]*entity.MediaJobEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*entity.MediaJobEntity, 0, limit)
	// 倒序扫描创建序，即按创建时间从新到旧
	for i := len(r.order) - 1; i >= 0; i-- {
		job, ok := r.jobs[r.order[i]]
		if !ok || job.OwnerUUID() != ownerUUID {
			continue
		}
		result = append(result, job.Clone())
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *mediaJobRepositoryImpl) MutateMediaJob(ctx context.Context, jobUUID string, mutate func(job *entity.MediaJobEntity) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobUUID]
	if !ok {
		return fmt.Errorf("job %s not found", jobUUID)
	}
	return mutate(job)
}

func (r *mediaJobRepositoryImpl) DeleteMediaJob(ctx context.Context, jobUUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jobUUID]; !ok {
		return fmt.Errorf("job %s not found", jobUUID)
	}
	delete(r.jobs, jobUUID)
	for i, id := range r.order {
		if id == jobUUID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

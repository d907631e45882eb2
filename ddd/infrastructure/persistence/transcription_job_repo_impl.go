package persistence

import (
	"context"
	"fmt"
	"sync"

	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/repo"
)

// transcriptionJobRepositoryImpl 进程内存仓储；并发语义同媒体作业仓储。
type transcriptionJobRepositoryImpl struct {
	mu    sync.RWMutex
	jobs  map[string]*entity.TranscriptionJobEntity
	order []string
}

func NewTranscriptionJobRepository() repo.TranscriptionJobRepository {
	return &transcriptionJobRepositoryImpl{
		jobs: make(map[string]*entity.TranscriptionJobEntity),
	}
}

func (r *transcriptionJobRepositoryImpl) CreateTranscriptionJob(ctx context.Context, job *entity.TranscriptionJobEntity) error {
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

func (r *transcriptionJobRepositoryImpl) GetTranscriptionJob(ctx context.Context, jobUUID string) (*entity.TranscriptionJobEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobUUID]
	if !ok {
		return nil, nil
	}
	return job.Clone(), nil
}

func (r *transcriptionJobRepositoryImpl) ListTranscriptionJobsByOwner(ctx context.Context, ownerUUID string, limit int) ([]*entity.TranscriptionJobEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*entity.TranscriptionJobEntity, 0, limit)
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

func (r *transcriptionJobRepositoryImpl) MutateTranscriptionJob(ctx context.Context, jobUUID string, mutate func(job *entity.TranscriptionJobEntity) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobUUID]
	if !ok {
		return fmt.Errorf("job %s not found", jobUUID)
	}
	return mutate(job)
}

func (r *transcriptionJobRepositoryImpl) DeleteTranscriptionJob(ctx context.Context, jobUUID string) error {
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

package persistence

import (
	"sync"

	"media-service/ddd/domain/repo"
)

var (
	mediaRepoOnce        sync.Once
	defaultMediaRepo     repo.MediaJobRepository
	transcriptRepoOnce   sync.Once
	defaultTranscriptRep repo.TranscriptionJobRepository
)

// DefaultMediaJobRepository 获取默认媒体作业仓储
func DefaultMediaJobRepository() repo.MediaJobRepository {
	mediaRepoOnce.Do(func() {
		defaultMediaRepo = NewMediaJobRepository()
	})
	return defaultMediaRepo
}

// DefaultTranscriptionJobRepository 获取默认转写作业仓储
func DefaultTranscriptionJobRepository() repo.TranscriptionJobRepository {
	transcriptRepoOnce.Do(func() {
		defaultTranscriptRep = NewTranscriptionJobRepository()
	})
	return defaultTranscriptRep
}

package port

import (
	"media-service/ddd/domain/vo"
)

// JobKind 区分两类作业的进度来源
type JobKind string

const (
	JobKindProcessing    JobKind = "processing"
	JobKindTranscription JobKind = "transcription"
)

// ProgressCallback is invoked by engines to report percentage progress (0-100).
type ProgressCallback func(progress int)

// ProgressUpdate 单条进度快照；终态快照携带产物或错误。
type ProgressUpdate struct {
	JobID    string               `json:"job_id"`
	Kind     JobKind              `json:"kind"`
	Status   vo.JobStatus         `json:"status"`
	Progress int                  `json:"progress"`
	Output   *vo.ProcessingOutput `json:"output,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Terminal reports whether this is the final update for the job.
func (u ProgressUpdate) Terminal() bool {
	return u.Status.IsTerminal()
}

// ProgressListener consumes updates for one job in production order.
type ProgressListener func(update ProgressUpdate)

// ProgressBroadcaster 按作业维度的发布订阅。Subscribe 先重放最近一次
// 快照，随后按产生顺序投递；作业到达终态后投递最终快照并清空订阅。
type ProgressBroadcaster interface {
	Publish(update ProgressUpdate)
	Subscribe(jobUUID string, listener ProgressListener) (unsubscribe func())
	// Forget 作业删除后丢弃其快照与订阅
	Forget(jobUUID string)
}

package vo

// JobStatus 媒体作业状态
type JobStatus string

const (
	// JobStatusQueued 排队中
	JobStatusQueued JobStatus = "queued"
	// JobStatusProcessing 处理中
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted 已完成
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed 失败
	JobStatusFailed JobStatus = "failed"
	// JobStatusCancelled 已取消
	JobStatusCancelled JobStatus = "cancelled"
)

// IsValid 检查状态是否有效
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// String 返回状态字符串
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal 检查是否为最终状态
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// CanTransitionTo 检查是否可以转换到目标状态；状态机只允许向前推进
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusQueued:
		return target == JobStatusProcessing || target == JobStatusFailed || target == JobStatusCancelled
	case JobStatusProcessing:
		return target == JobStatusCompleted || target == JobStatusFailed || target == JobStatusCancelled
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return false // 最终状态不能转换
	default:
		return false
	}
}

package gateway

import (
	"context"
	"time"
)

// JobEvent 作业终态事件，发给业务侧消费
type JobEvent struct {
	JobUUID    string    `json:"job_uuid"`
	OwnerUUID  string    `json:"owner_uuid"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	OutputRef  string    `json:"output_ref,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventNotifier publishes terminal job events to downstream consumers.
// Implementations must be best-effort: a notification failure never affects
// the job itself.
type EventNotifier interface {
	NotifyJobEvent(ctx context.Context, event JobEvent) error
}

package gateway

import (
	"context"

	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/port"
	"media-service/ddd/domain/vo"
)

// TranscodeEngine executes one processing job against an ordered directive
// chain and returns the produced output. Implementations report progress via
// the callback; the worker owns persistence and state transitions.
type TranscodeEngine interface {
	Transcode(ctx context.Context, job *entity.MediaJobEntity, directives []vo.Directive, progress port.ProgressCallback) (*vo.ProcessingOutput, error)
}

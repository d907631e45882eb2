package gateway

import (
	"context"

	"media-service/ddd/domain/vo"
)

// MediaInspector 源媒体探测器（元数据提取与体检），由外部协作方实现。
type MediaInspector interface {
	// ExtractMetadata probes the source and returns its container metadata.
	ExtractMetadata(ctx context.Context, sourceRef string) (*vo.MediaMetadata, error)

	// Analyze runs the full quality inspection on the source.
	Analyze(ctx context.Context, sourceRef string) (*vo.MediaAnalysis, error)
}

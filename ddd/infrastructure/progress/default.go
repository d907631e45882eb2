package progress

import (
	"sync"

	"media-service/ddd/domain/port"
)

var (
	broadcasterOnce    sync.Once
	defaultBroadcaster port.ProgressBroadcaster
)

// DefaultBroadcaster 获取默认进度广播器
func DefaultBroadcaster() port.ProgressBroadcaster {
	broadcasterOnce.Do(func() {
		defaultBroadcaster = NewMemoryBroadcaster()
	})
	return defaultBroadcaster
}

package progress

import (
	"sync"

	"media-service/ddd/domain/port"
	"media-service/pkg/logger"
)

// memoryBroadcaster 进程内按作业维度的进度广播。
//
// 投递语义：
//   - Publish 在作业锁内顺序投递，监听方按产生顺序收到快照；
//   - Subscribe 先同步重放最近一次快照（若有），再开始接收后续快照；
//   - 终态快照投递完成后清空该作业的监听者，快照本身保留，
//     迟到的订阅者依然能拿到最终状态。
type memoryBroadcaster struct {
	mu   sync.Mutex
	jobs map[string]*jobChannel
}

type jobChannel struct {
	mu        sync.Mutex
	latest    *port.ProgressUpdate
	listeners map[int]port.ProgressListener
	nextID    int
}

func NewMemoryBroadcaster() port.ProgressBroadcaster {
	return &memoryBroadcaster{jobs: make(map[string]*jobChannel)}
}

func (b *memoryBroadcaster) channel(jobUUID string) *jobChannel {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.jobs[jobUUID]
	if !ok {
		ch = &jobChannel{listeners: make(map[int]port.ProgressListener)}
		b.jobs[jobUUID] = ch
	}
	return ch
}

func (b *memoryBroadcaster) Publish(update port.ProgressUpdate) {
	if update.JobID == "" {
		return
	}
	ch := b.channel(update.JobID)

	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.latest = &update
	for _, listener := range ch.listeners {
		deliver(listener, update)
	}
	if update.Terminal() {
		ch.listeners = make(map[int]port.ProgressListener)
	}
}

func (b *memoryBroadcaster) Subscribe(jobUUID string, listener port.ProgressListener) func() {
	ch := b.channel(jobUUID)

	ch.mu.Lock()
	defer ch.mu.Unlock()

	// 先重放最近一次快照
	if ch.latest != nil {
		deliver(listener, *ch.latest)
		// 作业已终结，订阅即刻完成，无需登记
		if ch.latest.Terminal() {
			return func() {}
		}
	}

	id := ch.nextID
	ch.nextID++
	ch.listeners[id] = listener
	return func() {
		ch.mu.Lock()
		delete(ch.listeners, id)
		ch.mu.Unlock()
	}
}

func (b *memoryBroadcaster) Forget(jobUUID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.jobs, jobUUID)
}

// deliver 单个监听者的panic不影响其它监听者
func deliver(listener port.ProgressListener, update port.ProgressUpdate) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("progress listener panicked", map[string]interface{}{
				"job_uuid": update.JobID,
				"panic":    r,
			})
		}
	}()
	listener(update)
}

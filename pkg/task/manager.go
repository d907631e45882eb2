package task

import (
	"context"
	"sync"

	"media-service/pkg/logger"
)

// BackgroundTask represents a long-running background process (worker pool,
// registry keepalive, consumer).
type BackgroundTask interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

type manager struct {
	tasks  []BackgroundTask
	mu     sync.Mutex
	cancel context.CancelFunc
}

var defaultManager = &manager{}

// Register adds a background task; must be called during assembly before StartAll.
func Register(t BackgroundTask) {
	if t == nil {
		return
	}
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.tasks = append(defaultManager.tasks, t)
}

// StartAll starts all registered tasks once, in registration order.
func StartAll(ctx context.Context) error {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		return nil
	}
	taskCtx, cancel := context.WithCancel(ctx)
	defaultManager.cancel = cancel
	for _, t := range defaultManager.tasks {
		if err := t.Start(taskCtx); err != nil {
			return err
		}
		logger.Infof("background task started name=%s", t.Name())
	}
	return nil
}

// StopAll stops all running tasks in reverse registration order.
func StopAll() {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		defaultManager.cancel()
	}
	for i := len(defaultManager.tasks) - 1; i >= 0; i-- {
		t := defaultManager.tasks[i]
		if err := t.Stop(); err != nil {
			logger.Warnf("background task stop failed name=%s error=%v", t.Name(), err)
		}
	}
	defaultManager.cancel = nil
}

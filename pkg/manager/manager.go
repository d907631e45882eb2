package manager

import "media-service/pkg/logger"

// Resource is an external connection with an explicit lifecycle (MinIO,
// Redis, Kafka). MustOpen panics on unrecoverable startup failure.
type Resource interface {
	MustOpen()
	Close()
}

// ResourcePlugin deferred-constructs a resource so registration can happen
// in package init before configuration is loaded.
type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

var (
	resourcePlugins []ResourcePlugin
	openResources   []Resource
)

// RegisterResourcePlugin 注册资源插件，应在init阶段调用
func RegisterResourcePlugin(p ResourcePlugin) {
	if p == nil {
		return
	}
	resourcePlugins = append(resourcePlugins, p)
}

// MustInitResources opens every registered resource; panics on failure.
func MustInitResources() {
	for _, p := range resourcePlugins {
		r := p.MustCreateResource()
		r.MustOpen()
		openResources = append(openResources, r)
		logger.Infof("resource opened name=%s", p.Name())
	}
}

// CloseResources closes resources in reverse open order.
func CloseResources() {
	for i := len(openResources) - 1; i >= 0; i-- {
		openResources[i].Close()
	}
	openResources = nil
}

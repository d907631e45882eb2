package storage

import (
	"sync"

	"media-service/ddd/domain/gateway"
	"media-service/internal/resource"
	"media-service/pkg/config"
)

var (
	storageOnce    sync.Once
	defaultStorage gateway.StorageGateway
)

// DefaultStorageGateway 依配置选择MinIO或内存替身
func DefaultStorageGateway() gateway.StorageGateway {
	storageOnce.Do(func() {
		cfg := config.GetGlobalConfig()
		if cfg != nil && cfg.Minio.Enabled {
			defaultStorage = NewMinioStorage(resource.DefaultMinioResource())
			return
		}
		defaultStorage = NewMemoryStorage()
	})
	return defaultStorage
}

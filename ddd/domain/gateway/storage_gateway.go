package gateway

import "context"

// StorageGateway 存储网关：拉取源媒体字节、写出生成的产物
type StorageGateway interface {
	// FetchObject 读取对象内容
	FetchObject(ctx context.Context, objectKey string) ([]byte, error)

	// UploadObject 上传对象并返回可访问的对象路径
	UploadObject(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
}

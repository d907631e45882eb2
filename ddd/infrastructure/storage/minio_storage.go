package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	"media-service/ddd/domain/gateway"
	"media-service/internal/resource"
	"media-service/pkg/logger"
)

// MinioStorage MinIO存储实现
type MinioStorage struct {
	minioResource *resource.MinioResource
}

// NewMinioStorage 创建MinIO存储实例
func NewMinioStorage(minioResource *resource.MinioResource) gateway.StorageGateway {
	return &MinioStorage{
		minioResource: minioResource,
	}
}

// FetchObject 读取对象全部内容
func (s *MinioStorage) FetchObject(ctx context.Context, objectKey string) ([]byte, error) {
	client := s.minioResource.GetClient()
	if client == nil {
		return nil, fmt.Errorf("minio client not initialized")
	}
	bucketName := s.minioResource.GetBucketName()

	obj, err := client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		logger.Error("Failed to fetch object from MinIO", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("fetch object from minio failed: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object body failed: %w", err)
	}
	return data, nil
}

// UploadObject 上传对象并返回对象路径
func (s *MinioStorage) UploadObject(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	client := s.minioResource.GetClient()
	if client == nil {
		return "", fmt.Errorf("minio client not initialized")
	}
	bucketName := s.minioResource.GetBucketName()

	if contentType == "" {
		contentType = getContentTypeFromExtension(objectKey)
	}

	_, err := client.PutObject(ctx, bucketName, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("Failed to upload object to MinIO", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("upload object to minio failed: %w", err)
	}

	logger.Info("Object uploaded successfully", map[string]interface{}{
		"object_key": objectKey,
		"size":       len(data),
	})
	return objectKey, nil
}

// getContentTypeFromExtension 根据扩展名推断内容类型
func getContentTypeFromExtension(objectKey string) string {
	switch strings.ToLower(path.Ext(objectKey)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".mpd":
		return "application/dash+xml"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".srt", ".vtt", ".ass":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"media-service/ddd/domain/vo"
	"media-service/internal/resource"
	"media-service/pkg/config"
	"media-service/pkg/logger"
)

// AnalysisCache 媒体体检结果的读穿缓存。Redis未启用时全部走直查。
type AnalysisCache struct {
	redisResource *resource.RedisResource
	ttl           time.Duration
}

func NewAnalysisCache(redisResource *resource.RedisResource) *AnalysisCache {
	ttl := time.Hour
	if cfg := config.GetGlobalConfig(); cfg != nil && cfg.Redis.AnalysisTTL > 0 {
		ttl = cfg.Redis.AnalysisTTL
	}
	return &AnalysisCache{
		redisResource: redisResource,
		ttl:           ttl,
	}
}

func analysisKey(sourceRef string) string {
	return "media:analysis:" + sourceRef
}

// Get 命中返回缓存的体检报告，未命中或Redis不可用返回nil
func (c *AnalysisCache) Get(ctx context.Context, sourceRef string) *vo.MediaAnalysis {
	client := c.redisResource.Client()
	if client == nil {
		return nil
	}
	raw, err := client.Get(ctx, analysisKey(sourceRef)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("analysis cache read failed", map[string]interface{}{
				"source_ref": sourceRef,
				"error":      err.Error(),
			})
		}
		return nil
	}
	var analysis vo.MediaAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		logger.Warn("analysis cache entry corrupted", map[string]interface{}{
			"source_ref": sourceRef,
			"error":      err.Error(),
		})
		return nil
	}
	return &analysis
}

// Put 写入体检报告；失败只记日志
func (c *AnalysisCache) Put(ctx context.Context, sourceRef string, analysis *vo.MediaAnalysis) {
	client := c.redisResource.Client()
	if client == nil || analysis == nil {
		return
	}
	raw, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if err := client.Set(ctx, analysisKey(sourceRef), raw, c.ttl).Err(); err != nil {
		logger.Warn("analysis cache write failed", map[string]interface{}{
			"source_ref": sourceRef,
			"error":      err.Error(),
		})
	}
}

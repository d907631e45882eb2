package http

import (
	"github.com/gin-gonic/gin"

	"media-service/ddd/application/app"
	"media-service/ddd/domain/port"
	"media-service/ddd/infrastructure/queue"
	"media-service/ddd/infrastructure/worker"
	"media-service/pkg/config"
	"media-service/pkg/middleware"
)

// Router 路由配置
type Router struct {
	mediaApp         app.MediaApp
	transcriptionApp app.TranscriptionApp
	broadcaster      port.ProgressBroadcaster
	taskQueue        queue.TaskQueue
	mediaWorker      worker.MediaWorker
}

// NewRouter 创建路由配置
func NewRouter(
	mediaApp app.MediaApp,
	transcriptionApp app.TranscriptionApp,
	broadcaster port.ProgressBroadcaster,
	taskQueue queue.TaskQueue,
	mediaWorker worker.MediaWorker,
) *Router {
	return &Router{
		mediaApp:         mediaApp,
		transcriptionApp: transcriptionApp,
		broadcaster:      broadcaster,
		taskQueue:        taskQueue,
		mediaWorker:      mediaWorker,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes(engine *gin.Engine) {
	mediaController := NewMediaController(r.mediaApp)
	transcriptionController := NewTranscriptionController(r.transcriptionApp)
	streamController := NewStreamController(r.mediaApp, r.transcriptionApp, r.broadcaster)

	var jwtCfg config.JWTConfig
	if cfg := config.GetGlobalConfig(); cfg != nil {
		jwtCfg = cfg.JWT
	}

	v1 := engine.Group("/api/v1")
	v1.Use(middleware.RequestContextMiddleware(jwtCfg))
	{
		media := v1.Group("/media")
		{
			media.POST("/process", mediaController.ProcessMedia)       // 提交处理作业
			media.POST("/process/batch", mediaController.ProcessBatch) // 批量提交
			media.POST("/analyze", mediaController.AnalyzeMedia)       // 媒体体检
		}

		jobs := v1.Group("/jobs")
		{
			jobs.GET("", mediaController.ListJobs)                       // 作业列表
			jobs.GET("/:job_id", mediaController.GetJob)                 // 作业详情
			jobs.GET("/:job_id/stream", streamController.StreamMediaJob) // SSE进度
			jobs.POST("/:job_id/cancel", mediaController.CancelJob)      // 取消作业
			jobs.DELETE("/:job_id", mediaController.DeleteJob)           // 删除终态作业
		}

		transcriptions := v1.Group("/transcriptions")
		{
			transcriptions.POST("", transcriptionController.SubmitTranscription)              // 提交转写
			transcriptions.GET("", transcriptionController.ListJobs)                          // 作业列表
			transcriptions.GET("/languages", transcriptionController.Languages)               // 语言目录
			transcriptions.POST("/detect-language", transcriptionController.DetectLanguage)   // 语言检测
			transcriptions.GET("/:job_id", transcriptionController.GetJob)                    // 作业详情
			transcriptions.GET("/:job_id/stream", streamController.StreamTranscriptionJob)    // SSE进度
			transcriptions.POST("/:job_id/cancel", transcriptionController.CancelJob)         // 取消作业
			transcriptions.DELETE("/:job_id", transcriptionController.DeleteJob)              // 删除终态作业
			transcriptions.POST("/:job_id/translate", transcriptionController.Translate)      // 翻译结果
			transcriptions.GET("/:job_id/subtitles", transcriptionController.ExportSubtitles) // 导出字幕
		}
	}

	// 健康检查路由
	engine.GET("/health", func(c *gin.Context) {
		payload := gin.H{
			"status":  "ok",
			"service": "media-service",
			"version": "1.0.0",
		}
		if r.taskQueue != nil {
			payload["queue"] = r.taskQueue.Metrics()
		}
		if r.mediaWorker != nil {
			payload["worker_running"] = r.mediaWorker.IsRunning()
			payload["worker_stats"] = r.mediaWorker.GetStats()
		}
		c.JSON(200, payload)
	})

	engine.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Media Service API",
			"version": "1.0.0",
		})
	})
}

// SetupMiddleware 设置中间件
func (r *Router) SetupMiddleware(engine *gin.Engine) {
	engine.Use(gin.Recovery())

	// CORS中间件
	engine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-User-UUID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
}

package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"media-service/ddd/application/app"
	"media-service/ddd/application/cqe"
	"media-service/pkg/middleware"
	"media-service/pkg/restapi"
)

// TranscriptionController 语音转写接口
type TranscriptionController struct {
	transcriptionApp app.TranscriptionApp
}

func NewTranscriptionController(transcriptionApp app.TranscriptionApp) *TranscriptionController {
	return &TranscriptionController{transcriptionApp: transcriptionApp}
}

// SubmitTranscription 提交转写作业
func (c *TranscriptionController) SubmitTranscription(ctx *gin.Context) {
	var req cqe.TranscribeCqe
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.OwnerUUID = middleware.RequesterID(ctx)

	job, err := c.transcriptionApp.SubmitTranscription(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// GetJob 作业详情
func (c *TranscriptionController) GetJob(ctx *gin.Context) {
	job, err := c.transcriptionApp.GetTranscriptionJob(ctx.Request.Context(), middleware.RequesterID(ctx), ctx.Param("job_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// ListJobs 作业列表
func (c *TranscriptionController) ListJobs(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	jobs, err := c.transcriptionApp.ListTranscriptionJobs(ctx.Request.Context(), middleware.RequesterID(ctx), limit)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, jobs)
}

// CancelJob 取消作业
func (c *TranscriptionController) CancelJob(ctx *gin.Context) {
	job, err := c.transcriptionApp.CancelTranscriptionJob(ctx.Request.Context(), middleware.RequesterID(ctx), ctx.Param("job_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// DeleteJob 删除终态作业
func (c *TranscriptionController) DeleteJob(ctx *gin.Context) {
	err := c.transcriptionApp.DeleteTranscriptionJob(ctx.Request.Context(), middleware.RequesterID(ctx), ctx.Param("job_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, nil)
}

// Translate 翻译转写结果
func (c *TranscriptionController) Translate(ctx *gin.Context) {
	var req cqe.TranslateTranscriptionCqe
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.OwnerUUID = middleware.RequesterID(ctx)
	req.JobUUID = ctx.Param("job_id")

	job, err := c.transcriptionApp.TranslateTranscription(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// DetectLanguage 语言检测
func (c *TranscriptionController) DetectLanguage(ctx *gin.Context) {
	var req cqe.DetectLanguageCqe
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.OwnerUUID = middleware.RequesterID(ctx)

	detection, err := c.transcriptionApp.DetectLanguage(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, detection)
}

// ExportSubtitles 导出字幕；format=all时返回JSON包裹
func (c *TranscriptionController) ExportSubtitles(ctx *gin.Context) {
	format := ctx.DefaultQuery("format", "srt")
	export, err := c.transcriptionApp.ExportSubtitles(ctx.Request.Context(), middleware.RequesterID(ctx), ctx.Param("job_id"), format)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	if format == "all" {
		restapi.Success(ctx, export)
		return
	}
	ctx.Header("Content-Disposition", "attachment; filename="+export.Filename)
	ctx.Data(http.StatusOK, export.ContentType, []byte(export.Content))
}

// Languages 语言目录
func (c *TranscriptionController) Languages(ctx *gin.Context) {
	restapi.Success(ctx, c.transcriptionApp.SupportedLanguages())
}

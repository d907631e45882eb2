package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"media-service/ddd/application/app"
	"media-service/ddd/application/cqe"
	"media-service/pkg/middleware"
	"media-service/pkg/restapi"
)

// MediaController 视频处理接口
type MediaController struct {
	mediaApp app.MediaApp
}

func NewMediaController(mediaApp app.MediaApp) *MediaController {
	return &MediaController{mediaApp: mediaApp}
}

// ProcessMedia 提交处理作业
func (c *MediaController) ProcessMedia(ctx *gin.Context) {
	var req cqe.ProcessMediaCqe
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.OwnerUUID = middleware.RequesterID(ctx)

	job, err := c.mediaApp.ProcessMedia(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// ProcessBatch 批量提交处理作业
func (c *MediaController) ProcessBatch(ctx *gin.Context) {
	var req cqe.BatchProcessCqe
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.OwnerUUID = middleware.RequesterID(ctx)

	result, err := c.mediaApp.ProcessBatch(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, result)
}

// AnalyzeMedia 媒体体检
func (c *MediaController) AnalyzeMedia(ctx *gin.Context) {
	var req cqe.AnalyzeMediaCqe
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.OwnerUUID = middleware.RequesterID(ctx)

	analysis, err := c.mediaApp.AnalyzeMedia(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, analysis)
}

// GetJob 作业详情
func (c *MediaController) GetJob(ctx *gin.Context) {
	job, err := c.mediaApp.GetMediaJob(ctx.Request.Context(), middleware.RequesterID(ctx), ctx.Param("job_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// ListJobs 作业列表
func (c *MediaController) ListJobs(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	jobs, err := c.mediaApp.ListMediaJobs(ctx.Request.Context(), middleware.RequesterID(ctx), limit)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, jobs)
}

// CancelJob 取消作业
func (c *MediaController) CancelJob(ctx *gin.Context) {
	job, err := c.mediaApp.CancelMediaJob(ctx.Request.Context(), middleware.RequesterID(ctx), ctx.Param("job_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// DeleteJob 删除终态作业
func (c *MediaController) DeleteJob(ctx *gin.Context) {
	err := c.mediaApp.DeleteMediaJob(ctx.Request.Context(), middleware.RequesterID(ctx), ctx.Param("job_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, nil)
}

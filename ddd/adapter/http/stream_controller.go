package http

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"media-service/ddd/application/app"
	"media-service/ddd/domain/port"
	"media-service/pkg/errno"
	"media-service/pkg/middleware"
	"media-service/pkg/restapi"
)

// StreamController 作业进度的SSE推送
type StreamController struct {
	mediaApp         app.MediaApp
	transcriptionApp app.TranscriptionApp
	broadcaster      port.ProgressBroadcaster
}

func NewStreamController(mediaApp app.MediaApp, transcriptionApp app.TranscriptionApp, broadcaster port.ProgressBroadcaster) *StreamController {
	return &StreamController{
		mediaApp:         mediaApp,
		transcriptionApp: transcriptionApp,
		broadcaster:      broadcaster,
	}
}

// StreamMediaJob 推送视频处理作业进度
func (c *StreamController) StreamMediaJob(ctx *gin.Context) {
	jobUUID := ctx.Param("job_id")
	if _, err := c.mediaApp.GetMediaJob(ctx.Request.Context(), middleware.RequesterID(ctx), jobUUID); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	c.stream(ctx, jobUUID)
}

// StreamTranscriptionJob 推送转写作业进度
func (c *StreamController) StreamTranscriptionJob(ctx *gin.Context) {
	jobUUID := ctx.Param("job_id")
	if _, err := c.transcriptionApp.GetTranscriptionJob(ctx.Request.Context(), middleware.RequesterID(ctx), jobUUID); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	c.stream(ctx, jobUUID)
}

// stream 订阅广播器并以SSE逐条推送，终态快照推送完即关闭
func (c *StreamController) stream(ctx *gin.Context, jobUUID string) {
	if c.broadcaster == nil {
		restapi.Failed(ctx, errno.ErrInternalServer)
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	feed := newStreamFeed()
	unsubscribe := c.broadcaster.Subscribe(jobUUID, feed.accept)
	defer unsubscribe()

	clientGone := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case update := <-feed.updates:
			return writeProgressEvent(ctx, update)
		case update := <-feed.terminal:
			writeProgressEvent(ctx, update)
			return false
		}
	})
}

// streamFeed 汇聚订阅回调推来的进度帧。中间帧在消费方跟不上时可以丢弃，
// 终态帧走单独的保底通道：广播器只投递一次终态，丢了流就永远收不到结束。
type streamFeed struct {
	updates  chan port.ProgressUpdate
	terminal chan port.ProgressUpdate
}

func newStreamFeed() *streamFeed {
	return &streamFeed{
		// 缓冲要能装下重放快照加突发更新
		updates:  make(chan port.ProgressUpdate, 32),
		terminal: make(chan port.ProgressUpdate, 1),
	}
}

func (f *streamFeed) accept(update port.ProgressUpdate) {
	if update.Terminal() {
		select {
		case f.terminal <- update:
		default:
		}
		return
	}
	select {
	case f.updates <- update:
	default:
		// 消费方跟不上就丢中间帧
	}
}

func writeProgressEvent(ctx *gin.Context, update port.ProgressUpdate) bool {
	data, err := json.Marshal(update)
	if err != nil {
		return false
	}
	ctx.SSEvent("progress", string(data))
	return true
}

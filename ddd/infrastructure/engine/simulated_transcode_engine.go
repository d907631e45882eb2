package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/gateway"
	"media-service/ddd/domain/port"
	"media-service/ddd/domain/vo"
	"media-service/pkg/config"
	"media-service/pkg/logger"
)

// 自适应码流档位对应的码率
var renditionBitrates = map[string]string{
	"4k":    "14000k",
	"1080p": "5000k",
	"720p":  "2800k",
	"480p":  "1400k",
	"360p":  "800k",
}

// SimulatedTranscodeEngine 逐条执行指令链的确定性引擎。每条指令推进一段
// 进度并停顿固定时长，阶段之间检查上下文取消，产物内容由作业标识决定。
type SimulatedTranscodeEngine struct {
	cfg *config.EngineConfig
}

func NewSimulatedTranscodeEngine(cfg *config.EngineConfig) gateway.TranscodeEngine {
	if cfg == nil {
		if global := config.GetGlobalConfig(); global != nil {
			cfg = &global.Engine
		} else {
			cfg = &config.EngineConfig{StepDelay: 200 * time.Millisecond, ThumbnailCount: 3}
		}
	}
	return &SimulatedTranscodeEngine{cfg: cfg}
}

func (e *SimulatedTranscodeEngine) Transcode(ctx context.Context, job *entity.MediaJobEntity, directives []vo.Directive, progressCb port.ProgressCallback) (*vo.ProcessingOutput, error) {
	if job == nil {
		return nil, fmt.Errorf("nil job")
	}

	// 阶段数 = 解封装 + 指令数 + 封装；无指令时退化为一次转封装
	stages := len(directives) + 2
	report := func(stage int) {
		if progressCb == nil {
			return
		}
		// 引擎最多上报到99，100由完成转换统一落定
		progressCb(stage * 99 / stages)
	}

	logger.Debug("engine start", map[string]interface{}{
		"job_uuid":   job.JobUUID(),
		"directives": len(directives),
	})

	if err := e.step(ctx); err != nil {
		return nil, err
	}
	report(1)

	for i, d := range directives {
		if err := e.step(ctx); err != nil {
			logger.Info("engine aborted", map[string]interface{}{
				"job_uuid":  job.JobUUID(),
				"directive": d.String(),
			})
			return nil, err
		}
		report(i + 2)
	}

	if err := e.step(ctx); err != nil {
		return nil, err
	}

	return e.buildOutput(job, directives), nil
}

// step 停顿一个阶段时长，期间响应取消
func (e *SimulatedTranscodeEngine) step(ctx context.Context) error {
	delay := e.cfg.StepDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildOutput 依据作业与指令链推导产物；同一作业恒得到相同产物
func (e *SimulatedTranscodeEngine) buildOutput(job *entity.MediaJobEntity, directives []vo.Directive) *vo.ProcessingOutput {
	meta := job.Metadata()
	settings := job.Settings()

	format := job.TargetFormat()
	if format == "" {
		format = meta.Format
	}
	if format == "" {
		format = "mp4"
	}

	output := &vo.ProcessingOutput{
		OutputRef:  fmt.Sprintf("processed/%s/output.%s", job.JobUUID(), format),
		Format:     format,
		Duration:   deriveDuration(meta.Duration, directives),
		Resolution: deriveResolution(meta, directives),
		SizeBytes:  deriveSize(job.JobUUID(), meta.SizeBytes),
	}

	count := e.cfg.ThumbnailCount
	if settings.Thumbnails != nil && settings.Thumbnails.Count > 0 {
		count = settings.Thumbnails.Count
	}
	for i := 1; i <= count; i++ {
		output.Thumbnails = append(output.Thumbnails,
			fmt.Sprintf("thumbnails/%s/thumb_%02d.jpg", job.JobUUID(), i))
	}

	if as := settings.AdaptiveStreaming; as != nil && as.Enabled {
		manifest := "master.m3u8"
		if as.Protocol == "dash" {
			manifest = "manifest.mpd"
		}
		output.ManifestRef = fmt.Sprintf("streams/%s/%s", job.JobUUID(), manifest)
		renditions := as.Renditions
		if len(renditions) == 0 {
			renditions = []string{"1080p", "720p", "480p"}
		}
		for _, r := range renditions {
			bitrate, ok := renditionBitrates[r]
			if !ok {
				continue
			}
			output.Variants = append(output.Variants, vo.StreamVariant{
				Resolution: r,
				Bitrate:    bitrate,
			})
		}
	}

	return output
}

// deriveDuration 应用剪辑与变速后的产物时长
func deriveDuration(source float64, directives []vo.Directive) float64 {
	duration := source
	factor := 1.0
	for _, d := range directives {
		switch d.Op {
		case "trim_duration":
			if v, err := strconv.ParseFloat(d.Arg("seconds"), 64); err == nil && v > 0 {
				duration = v
			}
		case "setpts":
			if v, err := strconv.ParseFloat(d.Arg("factor"), 64); err == nil && v > 0 {
				factor = v
			}
		}
	}
	return duration * factor
}

// deriveResolution 取指令链中最后一次缩放，否则沿用源分辨率
func deriveResolution(meta vo.MediaMetadata, directives []vo.Directive) string {
	width, height := meta.Width, meta.Height
	for _, d := range directives {
		if d.Op != "scale" {
			continue
		}
		if w, err := strconv.Atoi(d.Arg("width")); err == nil {
			if h, err := strconv.Atoi(d.Arg("height")); err == nil {
				width, height = w, h
			}
		}
	}
	if width <= 0 || height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", width, height)
}

// deriveSize 由作业标识散列出稳定的产物大小
func deriveSize(jobUUID string, sourceSize int64) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(jobUUID))
	if sourceSize > 0 {
		// 源大小的60%-100%之间浮动
		return sourceSize*6/10 + int64(h.Sum64()%uint64(sourceSize*4/10+1))
	}
	return int64(h.Sum64()%(900<<20)) + (100 << 20)
}

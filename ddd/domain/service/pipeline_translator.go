package service

import (
	"strconv"

	"media-service/ddd/domain/vo"
)

// 分辨率预设表
var resolutionPresets = map[string][2]int{
	"4k":    {3840, 2160},
	"1080p": {1920, 1080},
	"720p":  {1280, 720},
	"480p":  {854, 480},
	"360p":  {640, 360},
}

// 宽高比表
var aspectRatios = map[string]string{
	"16:9": "16/9",
	"4:3":  "4/3",
	"1:1":  "1/1",
	"9:16": "9/16",
	"21:9": "21/9",
}

// 视频编码器表
var videoCodecs = map[string]string{
	"h264": "libx264",
	"h265": "libx265",
	"vp9":  "libvpx-vp9",
	"av1":  "libaom-av1",
}

// 音频编码器表
var audioCodecs = map[string]string{
	"aac":  "aac",
	"mp3":  "libmp3lame",
	"opus": "libopus",
	"flac": "flac",
}

// 质量档位表；lossless 不携带数值因子
var qualityTiers = map[string]struct {
	preset string
	crf    int
}{
	"low":      {preset: "fast", crf: 28},
	"medium":   {preset: "medium", crf: 23},
	"high":     {preset: "slow", crf: 18},
	"lossless": {preset: "veryslow", crf: -1},
}

// BuildDirectives 将处理设置翻译为有序指令链。纯函数：相同输入恒产出
// 相同输出；缺省字段绝不产出对应指令。步骤顺序即指令优先级，不可调整。
func BuildDirectives(s vo.ProcessingSettings) []vo.Directive {
	directives := make([]vo.Directive, 0, 16)

	// 1. 起始剪辑
	if s.Trim != nil && s.Trim.Start > 0 {
		directives = append(directives, vo.NewDirective("trim_start", "seconds", formatFloat(s.Trim.Start)))
	}

	// 2. 分辨率：预设查表，custom 用显式宽高，original 不产出
	switch s.Resolution {
	case "", "original":
	case "custom":
		if s.CustomWidth > 0 && s.CustomHeight > 0 {
			directives = append(directives, scaleDirective(s.CustomWidth, s.CustomHeight))
		}
	default:
		if dims, ok := resolutionPresets[s.Resolution]; ok {
			directives = append(directives, scaleDirective(dims[0], dims[1]))
		}
	}

	// 3. 宽高比
	if s.AspectRatio != "" && s.AspectRatio != "original" {
		if ratio, ok := aspectRatios[s.AspectRatio]; ok {
			directives = append(directives, vo.NewDirective("setdar", "ratio", ratio))
		}
	}

	// 4. 旋转：90 顺时针一次，180 两次，270 逆时针一次
	switch s.Rotate {
	case 90:
		directives = append(directives, vo.NewDirective("transpose", "dir", "1"))
	case 180:
		directives = append(directives,
			vo.NewDirective("transpose", "dir", "1"),
			vo.NewDirective("transpose", "dir", "1"))
	case 270:
		directives = append(directives, vo.NewDirective("transpose", "dir", "2"))
	}

	// 5. 翻转：先水平后垂直
	if s.FlipHorizontal {
		directives = append(directives, vo.NewDirective("hflip"))
	}
	if s.FlipVertical {
		directives = append(directives, vo.NewDirective("vflip"))
	}

	// 6. 变速：时间戳缩放因子为 1/speed
	if s.Speed > 0 && s.Speed != 1 {
		directives = append(directives, vo.NewDirective("setpts", "factor", formatFloat(1/s.Speed)))
	}

	// 7. 裁剪、防抖、降噪、去隔行，按固定顺序
	if s.Crop != nil {
		directives = append(directives, vo.NewDirective("crop",
			"width", strconv.Itoa(s.Crop.Width),
			"height", strconv.Itoa(s.Crop.Height),
			"x", strconv.Itoa(s.Crop.X),
			"y", strconv.Itoa(s.Crop.Y)))
	}
	if s.Stabilize {
		directives = append(directives, vo.NewDirective("deshake"))
	}
	if s.Denoise {
		directives = append(directives, vo.NewDirective("hqdn3d"))
	}
	if s.Deinterlace {
		directives = append(directives, vo.NewDirective("yadif"))
	}

	// 8. 颜色校正：亮度/对比度/饱和度/伽马收敛为一条 eq；色相单独一条
	if s.Color != nil {
		if eq := equalizationDirective(s.Color); eq != nil {
			directives = append(directives, *eq)
		}
		if s.Color.Hue != 0 {
			directives = append(directives, vo.NewDirective("hue", "degrees", formatFloat(s.Color.Hue)))
		}
	}

	// 9. 编码器/质量/码率/帧率，各自查表
	if codec, ok := videoCodecs[s.VideoCodec]; ok {
		directives = append(directives, vo.NewDirective("video_codec", "codec", codec))
	}
	if tier, ok := qualityTiers[s.Quality]; ok {
		if tier.crf < 0 {
			directives = append(directives, vo.NewDirective("quality", "preset", tier.preset))
		} else {
			directives = append(directives, vo.NewDirective("quality",
				"preset", tier.preset,
				"crf", strconv.Itoa(tier.crf)))
		}
	}
	if s.VideoBitrate != "" {
		directives = append(directives, vo.NewDirective("video_bitrate", "bitrate", s.VideoBitrate))
	}
	if s.FPS > 0 {
		directives = append(directives, vo.NewDirective("fps", "fps", strconv.Itoa(s.FPS)))
	}

	// 10. 音频：none 静音并跳过其余音频指令，其余各项彼此独立
	if s.AudioCodec == "none" {
		directives = append(directives, vo.NewDirective("mute"))
	} else {
		if codec, ok := audioCodecs[s.AudioCodec]; ok {
			directives = append(directives, vo.NewDirective("audio_codec", "codec", codec))
		}
		if s.AudioBitrate != "" {
			directives = append(directives, vo.NewDirective("audio_bitrate", "bitrate", s.AudioBitrate))
		}
		if s.AudioChannels > 0 {
			directives = append(directives, vo.NewDirective("audio_channels", "channels", strconv.Itoa(s.AudioChannels)))
		}
		if s.AudioSampleRate > 0 {
			directives = append(directives, vo.NewDirective("audio_sample_rate", "hz", strconv.Itoa(s.AudioSampleRate)))
		}
		if s.NormalizeAudio {
			directives = append(directives, vo.NewDirective("loudnorm"))
		}
		if s.Speed > 0 && s.Speed != 1 {
			directives = append(directives, vo.NewDirective("atempo", "factor", formatFloat(s.Speed)))
		}
	}

	// 11. 终点剪辑：时长为 end-start，恒在队尾
	if s.Trim != nil && s.Trim.End > s.Trim.Start {
		directives = append(directives, vo.NewDirective("trim_duration", "seconds", formatFloat(s.Trim.End-s.Trim.Start)))
	}

	return directives
}

func scaleDirective(width, height int) vo.Directive {
	return vo.NewDirective("scale",
		"width", strconv.Itoa(width),
		"height", strconv.Itoa(height))
}

// equalizationDirective 只携带被设置的分量；全部缺省时返回 nil
func equalizationDirective(c *vo.ColorSettings) *vo.Directive {
	kv := make([]string, 0, 8)
	if c.Brightness != 0 {
		kv = append(kv, "brightness", formatFloat(c.Brightness))
	}
	if c.Contrast != 0 {
		kv = append(kv, "contrast", formatFloat(c.Contrast))
	}
	if c.Saturation != 0 {
		kv = append(kv, "saturation", formatFloat(c.Saturation))
	}
	if c.Gamma != 0 {
		kv = append(kv, "gamma", formatFloat(c.Gamma))
	}
	if len(kv) == 0 {
		return nil
	}
	d := vo.NewDirective("eq", kv...)
	return &d
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package vo

// ProcessingSettings 视频处理设置快照；零值/缺省字段表示不做对应处理。
type ProcessingSettings struct {
	// 画面
	Resolution   string `json:"resolution,omitempty"` // original|4k|1080p|720p|480p|360p|custom
	CustomWidth  int    `json:"custom_width,omitempty"`
	CustomHeight int    `json:"custom_height,omitempty"`
	AspectRatio  string `json:"aspect_ratio,omitempty"` // original|16:9|4:3|1:1|9:16|21:9
	FPS          int    `json:"fps,omitempty"`
	VideoCodec   string `json:"video_codec,omitempty"` // h264|h265|vp9|av1
	Quality      string `json:"quality,omitempty"`     // low|medium|high|lossless
	VideoBitrate string `json:"video_bitrate,omitempty"`

	// 音频
	AudioCodec      string `json:"audio_codec,omitempty"` // aac|mp3|opus|none
	AudioBitrate    string `json:"audio_bitrate,omitempty"`
	AudioChannels   int    `json:"audio_channels,omitempty"`
	AudioSampleRate int    `json:"audio_sample_rate,omitempty"`
	NormalizeAudio  bool   `json:"normalize_audio,omitempty"`

	// 剪辑与几何变换
	Trim           *TrimSettings `json:"trim,omitempty"`
	Crop           *CropSettings `json:"crop,omitempty"`
	Rotate         int           `json:"rotate,omitempty"` // 0|90|180|270
	FlipHorizontal bool          `json:"flip_horizontal,omitempty"`
	FlipVertical   bool          `json:"flip_vertical,omitempty"`
	Speed          float64       `json:"speed,omitempty"`

	// 画质修复
	Stabilize   bool `json:"stabilize,omitempty"`
	Denoise     bool `json:"denoise,omitempty"`
	Deinterlace bool `json:"deinterlace,omitempty"`

	Color             *ColorSettings             `json:"color,omitempty"`
	Watermark         *WatermarkSettings         `json:"watermark,omitempty"`
	AdaptiveStreaming *AdaptiveStreamingSettings `json:"adaptive_streaming,omitempty"`
	Thumbnails        *ThumbnailSettings         `json:"thumbnails,omitempty"`
}

// TrimSettings 剪辑区间，单位秒
type TrimSettings struct {
	Start float64 `json:"start"`
	End   float64 `json:"end,omitempty"`
}

// CropSettings 裁剪区域
type CropSettings struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// ColorSettings 颜色校正；零值字段不生效
type ColorSettings struct {
	Brightness float64 `json:"brightness,omitempty"`
	Contrast   float64 `json:"contrast,omitempty"`
	Saturation float64 `json:"saturation,omitempty"`
	Gamma      float64 `json:"gamma,omitempty"`
	Hue        float64 `json:"hue,omitempty"`
}

// WatermarkSettings 水印描述；由引擎在合成阶段处理
type WatermarkSettings struct {
	ImageRef string  `json:"image_ref"`
	Position string  `json:"position,omitempty"` // top-left|top-right|bottom-left|bottom-right|center
	Opacity  float64 `json:"opacity,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// AdaptiveStreamingSettings 自适应码流描述
type AdaptiveStreamingSettings struct {
	Enabled         bool     `json:"enabled"`
	Protocol        string   `json:"protocol,omitempty"` // hls|dash
	Renditions      []string `json:"renditions,omitempty"`
	SegmentDuration int      `json:"segment_duration,omitempty"`
}

// ThumbnailSettings 缩略图描述
type ThumbnailSettings struct {
	Count  int    `json:"count"`
	Width  int    `json:"width,omitempty"`
	Format string `json:"format,omitempty"`
}

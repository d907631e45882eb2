package vo

// MediaMetadata 源媒体元数据快照，由外部探测器提取
type MediaMetadata struct {
	Format      string  `json:"format"`
	Duration    float64 `json:"duration"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FrameRate   float64 `json:"frame_rate"`
	VideoCodec  string  `json:"video_codec"`
	AudioCodec  string  `json:"audio_codec"`
	BitrateKbps int64   `json:"bitrate_kbps"`
	SizeBytes   int64   `json:"size_bytes"`
	HasAudio    bool    `json:"has_audio"`
}

// MediaAnalysis 媒体体检报告
type MediaAnalysis struct {
	Metadata        MediaMetadata  `json:"metadata"`
	QualityScore    float64        `json:"quality_score"`
	Issues          []string       `json:"issues,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Scenes          []SceneMarker  `json:"scenes,omitempty"`
	AudioAnalysis   AudioAnalysis  `json:"audio_analysis"`
	VisualAnalysis  VisualAnalysis `json:"visual_analysis"`
}

// SceneMarker 场景切换点
type SceneMarker struct {
	Time  float64 `json:"time"`
	Label string  `json:"label,omitempty"`
}

// AudioAnalysis 音频体检结果
type AudioAnalysis struct {
	LoudnessLUFS float64 `json:"loudness_lufs"`
	PeakDB       float64 `json:"peak_db"`
	Clipping     bool    `json:"clipping"`
	NoiseFloor   float64 `json:"noise_floor_db"`
}

// VisualAnalysis 画面体检结果
type VisualAnalysis struct {
	AverageBrightness float64 `json:"average_brightness"`
	Sharpness         float64 `json:"sharpness"`
	Interlaced        bool    `json:"interlaced"`
	BlackBars         bool    `json:"black_bars"`
}

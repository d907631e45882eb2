package cqe

import (
	"media-service/ddd/domain/vo"
	"media-service/pkg/errno"
)

// 批量提交的条目上限，同时也是单个owner的活跃作业上限
const MaxBatchItems = 50

var validResolutions = map[string]bool{
	"": true, "original": true, "4k": true, "1080p": true,
	"720p": true, "480p": true, "360p": true, "custom": true,
}

var validRotations = map[int]bool{0: true, 90: true, 180: true, 270: true}

// ProcessMediaCqe 提交视频处理作业的命令
type ProcessMediaCqe struct {
	OwnerUUID    string                `json:"-"`
	SourceRef    string                `json:"source_ref"`
	TargetFormat string                `json:"target_format"`
	Settings     vo.ProcessingSettings `json:"settings"`
}

// Validate 校验命令参数
func (c *ProcessMediaCqe) Validate() error {
	if c.OwnerUUID == "" {
		return errno.ErrOwnerRequired
	}
	if c.SourceRef == "" {
		return errno.ErrSourceRefRequired
	}
	return validateSettings(&c.Settings)
}

func validateSettings(s *vo.ProcessingSettings) error {
	if !validResolutions[s.Resolution] {
		return errno.ErrValidation.WithMessage("unknown resolution %q", s.Resolution)
	}
	if s.Resolution == "custom" && (s.CustomWidth <= 0 || s.CustomHeight <= 0) {
		return errno.ErrValidation.WithMessage("custom resolution requires positive width and height")
	}
	if !validRotations[s.Rotate] {
		return errno.ErrValidation.WithMessage("rotation must be one of 0, 90, 180, 270")
	}
	if s.Speed < 0 {
		return errno.ErrValidation.WithMessage("speed must be positive")
	}
	if s.Speed != 0 && (s.Speed < 0.25 || s.Speed > 4) {
		return errno.ErrValidation.WithMessage("speed must be between 0.25 and 4")
	}
	if s.FPS < 0 || s.FPS > 240 {
		return errno.ErrValidation.WithMessage("fps must be between 0 and 240")
	}
	if t := s.Trim; t != nil {
		if t.Start < 0 || t.End < 0 {
			return errno.ErrValidation.WithMessage("trim times must not be negative")
		}
		if t.End != 0 && t.End <= t.Start {
			return errno.ErrValidation.WithMessage("trim end must be after trim start")
		}
	}
	if c := s.Crop; c != nil {
		if c.Width <= 0 || c.Height <= 0 || c.X < 0 || c.Y < 0 {
			return errno.ErrValidation.WithMessage("crop region is invalid")
		}
	}
	if s.AudioChannels < 0 || s.AudioChannels > 8 {
		return errno.ErrValidation.WithMessage("audio channels must be between 0 and 8")
	}
	return nil
}

// BatchItem 批量提交的单个条目
type BatchItem struct {
	SourceRef    string                `json:"source_ref"`
	TargetFormat string                `json:"target_format"`
	Settings     vo.ProcessingSettings `json:"settings"`
}

// BatchProcessCqe 批量提交命令；整体校验，任一条目不合法则全部拒绝
type BatchProcessCqe struct {
	OwnerUUID string      `json:"-"`
	Items     []BatchItem `json:"items"`
}

// Validate 校验批量命令
func (c *BatchProcessCqe) Validate() error {
	if c.OwnerUUID == "" {
		return errno.ErrOwnerRequired
	}
	if len(c.Items) == 0 {
		return errno.ErrBatchEmpty
	}
	if len(c.Items) > MaxBatchItems {
		return errno.ErrBatchTooLarge.WithMessage("batch has %d items, maximum is %d", len(c.Items), MaxBatchItems)
	}
	for i := range c.Items {
		item := &c.Items[i]
		if item.SourceRef == "" {
			return errno.ErrValidation.WithMessage("item %d: source_ref is required", i)
		}
		if err := validateSettings(&item.Settings); err != nil {
			if en, ok := err.(*errno.Errno); ok {
				return en.WithMessage("item %d: %s", i, en.Message)
			}
			return err
		}
	}
	return nil
}

// AnalyzeMediaCqe 媒体体检查询
type AnalyzeMediaCqe struct {
	OwnerUUID string `json:"-"`
	SourceRef string `json:"source_ref"`
}

func (c *AnalyzeMediaCqe) Validate() error {
	if c.OwnerUUID == "" {
		return errno.ErrOwnerRequired
	}
	if c.SourceRef == "" {
		return errno.ErrSourceRefRequired
	}
	return nil
}

package cqe

import (
	"media-service/ddd/domain/vo"
	"media-service/pkg/errno"
)

// TranscribeCqe 提交转写作业的命令
type TranscribeCqe struct {
	OwnerUUID string                  `json:"-"`
	SourceRef string                  `json:"source_ref"`
	Options   vo.TranscriptionOptions `json:"options"`
}

// Validate 校验命令参数
func (c *TranscribeCqe) Validate() error {
	if c.OwnerUUID == "" {
		return errno.ErrOwnerRequired
	}
	if c.SourceRef == "" {
		return errno.ErrSourceRefRequired
	}
	if c.Options.MaxSpeakers < 0 || c.Options.MaxSpeakers > 10 {
		return errno.ErrValidation.WithMessage("max speakers must be between 0 and 10")
	}
	switch c.Options.Quality {
	case "", "standard", "enhanced":
	default:
		return errno.ErrValidation.WithMessage("unknown quality %q", c.Options.Quality)
	}
	return nil
}

// TranslateTranscriptionCqe 翻译完成作业的转写结果
type TranslateTranscriptionCqe struct {
	OwnerUUID      string `json:"-"`
	JobUUID        string `json:"-"`
	TargetLanguage string `json:"target_language"`
}

func (c *TranslateTranscriptionCqe) Validate() error {
	if c.OwnerUUID == "" {
		return errno.ErrOwnerRequired
	}
	if c.JobUUID == "" {
		return errno.ErrMissingParam.WithMessage("job uuid is required")
	}
	if c.TargetLanguage == "" {
		return errno.ErrTargetLangRequired
	}
	return nil
}

// DetectLanguageCqe 语言检测查询
type DetectLanguageCqe struct {
	OwnerUUID      string  `json:"-"`
	SourceRef      string  `json:"source_ref"`
	SampleDuration float64 `json:"sample_duration"`
}

func (c *DetectLanguageCqe) Validate() error {
	if c.OwnerUUID == "" {
		return errno.ErrOwnerRequired
	}
	if c.SourceRef == "" {
		return errno.ErrSourceRefRequired
	}
	if c.SampleDuration < 0 {
		return errno.ErrValidation.WithMessage("sample duration must not be negative")
	}
	return nil
}

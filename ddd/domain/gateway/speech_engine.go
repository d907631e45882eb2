package gateway

import (
	"context"

	"media-service/ddd/domain/vo"
)

// SpeechEngine 语音识别提供方。实现可为外部HTTP服务或本地确定性兜底。
type SpeechEngine interface {
	// Transcribe converts audio bytes into a transcription result. The
	// returned result has ordered segments but no subtitles attached yet.
	Transcribe(ctx context.Context, audio []byte, opts vo.TranscriptionOptions) (*vo.TranscriptionResult, error)

	// DetectLanguage returns ranked language candidates for a sample of the
	// audio, highest confidence first, confidences summing to at most 1.
	DetectLanguage(ctx context.Context, audio []byte, sampleDuration float64) ([]vo.LanguageCandidate, error)
}

// TranslationEngine rewrites transcript texts into a target language.
type TranslationEngine interface {
	TranslateTexts(ctx context.Context, texts []string, targetLanguage string) ([]string, error)
}

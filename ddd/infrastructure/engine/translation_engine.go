package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"media-service/ddd/domain/gateway"
	"media-service/pkg/config"
)

// HTTPTranslationEngine 调用外部翻译服务的实现
type HTTPTranslationEngine struct {
	cfg    *config.TranscriptionConfig
	client *http.Client
}

func NewHTTPTranslationEngine(cfg *config.TranscriptionConfig) gateway.TranslationEngine {
	if cfg == nil {
		if global := config.GetGlobalConfig(); global != nil {
			cfg = &global.Transcription
		} else {
			cfg = &config.TranscriptionConfig{CallTimeout: 2 * time.Minute}
		}
	}
	return &HTTPTranslationEngine{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.CallTimeout},
	}
}

type translateRequest struct {
	Texts          []string `json:"texts"`
	TargetLanguage string   `json:"target_language"`
}

type translateResponse struct {
	Translations []string `json:"translations"`
}

func (e *HTTPTranslationEngine) TranslateTexts(ctx context.Context, texts []string, targetLanguage string) ([]string, error) {
	body, err := json.Marshal(translateRequest{Texts: texts, TargetLanguage: targetLanguage})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.TranslateURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.ProviderAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.ProviderAPIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call translator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("translator status %d", resp.StatusCode)
	}
	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Translations) != len(texts) {
		return nil, fmt.Errorf("translator returned %d texts, want %d", len(out.Translations), len(texts))
	}
	return out.Translations, nil
}

// FallbackTranslationEngine 本地确定性翻译：给文本打上目标语言标记。
// 翻译服务不可用时保证接口语义完整，文本与时间轴结构不变。
type FallbackTranslationEngine struct{}

func NewFallbackTranslationEngine() gateway.TranslationEngine {
	return &FallbackTranslationEngine{}
}

func (e *FallbackTranslationEngine) TranslateTexts(ctx context.Context, texts []string, targetLanguage string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = fmt.Sprintf("[%s] %s", targetLanguage, t)
	}
	return out, nil
}

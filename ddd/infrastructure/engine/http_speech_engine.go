package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"media-service/ddd/domain/gateway"
	"media-service/ddd/domain/vo"
	"media-service/pkg/config"
	"media-service/pkg/logger"
)

// HTTPSpeechEngine 调用外部识别服务（whisper兼容接口）的引擎实现。
type HTTPSpeechEngine struct {
	cfg    *config.TranscriptionConfig
	client *http.Client
}

func NewHTTPSpeechEngine(cfg *config.TranscriptionConfig) gateway.SpeechEngine {
	if cfg == nil {
		if global := config.GetGlobalConfig(); global != nil {
			cfg = &global.Transcription
		} else {
			cfg = &config.TranscriptionConfig{CallTimeout: 2 * time.Minute}
		}
	}
	return &HTTPSpeechEngine{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.CallTimeout},
	}
}

// transcribeRequest 提供方的请求体
type transcribeRequest struct {
	Audio          string   `json:"audio"` // base64编码的音频字节
	Model          string   `json:"model"`
	Language       string   `json:"language,omitempty"`
	WordTimestamps bool     `json:"word_timestamps,omitempty"`
	Vocabulary     []string `json:"vocabulary,omitempty"`
	ResponseFormat string   `json:"response_format"`
}

// transcribeResponse whisper风格的verbose_json响应
type transcribeResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		ID         int     `json:"id"`
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		AvgLogprob float64 `json:"avg_logprob"`
		Words      []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"words,omitempty"`
	} `json:"segments"`
}

func (e *HTTPSpeechEngine) Transcribe(ctx context.Context, audio []byte, opts vo.TranscriptionOptions) (*vo.TranscriptionResult, error) {
	payload := transcribeRequest{
		Audio:          base64.StdEncoding.EncodeToString(audio),
		Model:          e.cfg.ProviderModel,
		WordTimestamps: opts.WordTimestamps,
		Vocabulary:     opts.CustomVocabulary,
		ResponseFormat: "verbose_json",
	}
	if opts.Language != "" && !opts.DetectLanguage {
		payload.Language = opts.Language
	}

	var resp transcribeResponse
	if err := e.post(ctx, "/v1/audio/transcriptions", payload, &resp); err != nil {
		return nil, err
	}

	result := &vo.TranscriptionResult{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Duration: resp.Duration,
	}
	if result.Language == "" {
		result.Language = opts.Language
	}

	for i, seg := range resp.Segments {
		out := vo.Segment{
			ID:         i,
			Start:      seg.Start,
			End:        seg.End,
			Text:       strings.TrimSpace(seg.Text),
			Confidence: logprobConfidence(seg.AvgLogprob),
		}
		if opts.Diarization {
			speakers := 2
			if opts.MaxSpeakers == 1 {
				speakers = 1
			}
			out.Speaker = fmt.Sprintf("Speaker %d", i%speakers+1)
		}
		for _, w := range seg.Words {
			out.Words = append(out.Words, vo.Word{
				Word:       w.Word,
				Start:      w.Start,
				End:        w.End,
				Confidence: out.Confidence,
				Speaker:    out.Speaker,
			})
		}
		result.Segments = append(result.Segments, out)
		result.Words = append(result.Words, out.Words...)
		result.LanguageConfidence += out.Confidence
	}
	if n := len(result.Segments); n > 0 {
		result.LanguageConfidence /= float64(n)
	}
	result.WordCount = len(strings.Fields(result.Text))
	if opts.Diarization {
		result.Speakers = buildSpeakerStats(result.Segments)
	}
	return result, nil
}

// detectResponse 语言检测响应
type detectResponse struct {
	Candidates []vo.LanguageCandidate `json:"candidates"`
}

func (e *HTTPSpeechEngine) DetectLanguage(ctx context.Context, audio []byte, sampleDuration float64) ([]vo.LanguageCandidate, error) {
	payload := map[string]interface{}{
		"audio":           base64.StdEncoding.EncodeToString(audio),
		"model":           e.cfg.ProviderModel,
		"sample_duration": sampleDuration,
	}
	var resp detectResponse
	if err := e.post(ctx, "/v1/audio/detect-language", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Candidates, nil
}

func (e *HTTPSpeechEngine) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(e.cfg.ProviderEndpoint, "/")+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.ProviderAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.ProviderAPIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn("speech provider returned non-200", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(data),
		})
		return fmt.Errorf("provider status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// logprobConfidence 把whisper的平均对数概率折算为0-1置信度
func logprobConfidence(avgLogprob float64) float64 {
	if avgLogprob == 0 {
		return 0.9
	}
	c := math.Exp(avgLogprob)
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return c
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"media-service/ddd/domain/entity"
	"media-service/ddd/domain/gateway"
	"media-service/ddd/domain/repo"
	"media-service/ddd/domain/vo"
	"media-service/ddd/infrastructure/engine"
	"media-service/ddd/infrastructure/persistence"
	"media-service/ddd/infrastructure/progress"
	"media-service/pkg/config"
)

type failingSpeechEngine struct{}

func (failingSpeechEngine) Transcribe(ctx context.Context, audio []byte, opts vo.TranscriptionOptions) (*vo.TranscriptionResult, error) {
	return nil, errors.New("provider unavailable")
}

func (failingSpeechEngine) DetectLanguage(ctx context.Context, audio []byte, sampleDuration float64) ([]vo.LanguageCandidate, error) {
	return nil, errors.New("provider unavailable")
}

func transcriptionFixture(t *testing.T, cfg *config.TranscriptionConfig, primary gateway.SpeechEngine) (TranscriptionService, repo.TranscriptionJobRepository, *entity.TranscriptionJobEntity) {
	t.Helper()
	if cfg == nil {
		cfg = &config.TranscriptionConfig{CallTimeout: time.Minute}
	}
	jobRepo := persistence.NewTranscriptionJobRepository()
	svc := NewTranscriptionService(jobRepo, primary, engine.NewFallbackSpeechEngine(),
		engine.NewFallbackTranslationEngine(), &stubStorage{}, &recordingNotifier{},
		progress.NewMemoryBroadcaster(), cfg)

	job := entity.NewTranscriptionJobEntity("owner-1", "uploads/talk.wav",
		vo.TranscriptionOptions{Language: "auto", Diarization: true})
	if err := jobRepo.CreateTranscriptionJob(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	return svc, jobRepo, job
}

func TestRunTranscriptionJobCompletes(t *testing.T) {
	svc, jobRepo, job := transcriptionFixture(t, nil, nil)

	if err := svc.RunTranscriptionJob(context.Background(), job.JobUUID()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, _ := jobRepo.GetTranscriptionJob(context.Background(), job.JobUUID())
	if got.Status() != vo.JobStatusCompleted || got.Progress() != 100 {
		t.Fatalf("status = %s progress = %d", got.Status(), got.Progress())
	}
	result := got.Result()
	if result == nil || len(result.Segments) == 0 {
		t.Fatal("completed job without segments")
	}
	if result.Subtitles.SRT == "" || !strings.HasPrefix(result.Subtitles.VTT, "WEBVTT") || result.Subtitles.ASS == "" {
		t.Error("subtitles not rendered in all three formats")
	}
	if got.Language() != result.Language {
		t.Errorf("entity language %s != result language %s", got.Language(), result.Language)
	}
	if len(result.Speakers) == 0 {
		t.Error("diarization produced no speaker stats")
	}
}

func TestRunTranscriptionJobFallsBackWhenProviderFails(t *testing.T) {
	cfg := &config.TranscriptionConfig{CallTimeout: time.Minute, ProviderEnabled: true}
	svc, jobRepo, job := transcriptionFixture(t, cfg, failingSpeechEngine{})

	if err := svc.RunTranscriptionJob(context.Background(), job.JobUUID()); err != nil {
		t.Fatal(err)
	}
	got, _ := jobRepo.GetTranscriptionJob(context.Background(), job.JobUUID())
	if got.Status() != vo.JobStatusCompleted {
		t.Errorf("status = %s, want completed via fallback", got.Status())
	}
}

func TestRunTranscriptionJobSkipsCancelled(t *testing.T) {
	svc, jobRepo, job := transcriptionFixture(t, nil, nil)
	if err := jobRepo.MutateTranscriptionJob(context.Background(), job.JobUUID(), func(j *entity.TranscriptionJobEntity) error {
		return j.Cancel()
	}); err != nil {
		t.Fatal(err)
	}

	if err := svc.RunTranscriptionJob(context.Background(), job.JobUUID()); err != nil {
		t.Fatal(err)
	}
	got, _ := jobRepo.GetTranscriptionJob(context.Background(), job.JobUUID())
	if got.Status() != vo.JobStatusCancelled || got.Result() != nil {
		t.Errorf("status = %s result = %v", got.Status(), got.Result())
	}
}

func TestRunTranscriptionJobSourceFetchFailure(t *testing.T) {
	jobRepo := persistence.NewTranscriptionJobRepository()
	svc := NewTranscriptionService(jobRepo, nil, engine.NewFallbackSpeechEngine(), nil,
		&stubStorage{fetchErr: errors.New("object not found")}, nil, nil,
		&config.TranscriptionConfig{CallTimeout: time.Minute})

	job := entity.NewTranscriptionJobEntity("owner-1", "uploads/missing.wav", vo.TranscriptionOptions{})
	if err := jobRepo.CreateTranscriptionJob(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	if err := svc.RunTranscriptionJob(context.Background(), job.JobUUID()); err != nil {
		t.Fatal(err)
	}
	got, _ := jobRepo.GetTranscriptionJob(context.Background(), job.JobUUID())
	if got.Status() != vo.JobStatusFailed || got.ErrorMessage() == "" {
		t.Errorf("status = %s, error = %q", got.Status(), got.ErrorMessage())
	}
}

func TestTranslateResultReplacesTextKeepsTimeline(t *testing.T) {
	svc, _, _ := transcriptionFixture(t, nil, nil)

	original := &vo.TranscriptionResult{
		Text:      "first line second line",
		Language:  "en",
		WordCount: 4,
		Segments: []vo.Segment{
			{ID: 0, Start: 0, End: 5.2, Text: "first line", Speaker: "Speaker 1", Words: []vo.Word{{Word: "first"}}},
			{ID: 1, Start: 5.2, End: 10.4, Text: "second line", Speaker: "Speaker 2"},
		},
		Words: []vo.Word{{Word: "first"}},
	}
	original.Subtitles = RenderSubtitles(original.Segments)

	translated, err := svc.TranslateResult(context.Background(), original, "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}

	if translated.Language != "es" {
		t.Errorf("language = %s", translated.Language)
	}
	for i, seg := range translated.Segments {
		if !strings.HasPrefix(seg.Text, "[es] ") {
			t.Errorf("segment %d text = %q, not translated", i, seg.Text)
		}
		if seg.Start != original.Segments[i].Start || seg.End != original.Segments[i].End {
			t.Errorf("segment %d timeline changed", i)
		}
		if seg.Speaker != original.Segments[i].Speaker {
			t.Errorf("segment %d speaker changed", i)
		}
		if seg.Words != nil {
			t.Errorf("segment %d kept stale word timings", i)
		}
	}
	if translated.Words != nil {
		t.Error("translated result kept stale word list")
	}
	if !strings.Contains(translated.Subtitles.SRT, "[es] first line") {
		t.Error("subtitles not rebuilt from translated text")
	}
	if translated.WordCount != len(strings.Fields(translated.Text)) {
		t.Errorf("word count = %d", translated.WordCount)
	}

	// 原结果不受影响
	if original.Segments[0].Text != "first line" || original.Language != "en" {
		t.Error("translation mutated the original result")
	}
}

func TestTranslateResultNil(t *testing.T) {
	svc, _, _ := transcriptionFixture(t, nil, nil)
	if _, err := svc.TranslateResult(context.Background(), nil, "es"); err == nil {
		t.Error("nil result accepted")
	}
}

func TestDetectLanguageFallback(t *testing.T) {
	svc, _, _ := transcriptionFixture(t, nil, nil)
	candidates, err := svc.DetectLanguage(context.Background(), "uploads/talk.wav", 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) == 0 || candidates[0].Confidence <= 0 {
		t.Errorf("candidates = %v", candidates)
	}
}

func TestDetectLanguagePrimaryFailureFallsBack(t *testing.T) {
	cfg := &config.TranscriptionConfig{CallTimeout: time.Minute, ProviderEnabled: true}
	svc, _, _ := transcriptionFixture(t, cfg, failingSpeechEngine{})
	candidates, err := svc.DetectLanguage(context.Background(), "uploads/talk.wav", 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) == 0 {
		t.Error("no candidates from fallback")
	}
}

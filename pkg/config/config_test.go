package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  host: 127.0.0.1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8084 {
		t.Errorf("server port = %d, want 8084", cfg.Server.Port)
	}
	if cfg.Worker.WorkerCount != 4 {
		t.Errorf("worker count = %d, want 4", cfg.Worker.WorkerCount)
	}
	if cfg.Worker.QueueCapacity != 100 {
		t.Errorf("queue capacity = %d, want 100", cfg.Worker.QueueCapacity)
	}
	if cfg.Worker.PerOwnerLimit != 50 {
		t.Errorf("per owner limit = %d, want 50", cfg.Worker.PerOwnerLimit)
	}
	if cfg.Engine.StepDelay != 200*time.Millisecond {
		t.Errorf("step delay = %v", cfg.Engine.StepDelay)
	}
	if cfg.Engine.ThumbnailCount != 3 {
		t.Errorf("thumbnail count = %d", cfg.Engine.ThumbnailCount)
	}
	if cfg.Transcription.ProviderModel != "whisper-1" {
		t.Errorf("provider model = %q", cfg.Transcription.ProviderModel)
	}
	if cfg.Kafka.Topics.JobEvents != "media.job.events" {
		t.Errorf("job events topic = %q", cfg.Kafka.Topics.JobEvents)
	}
}

func TestLoadHonorsExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
worker:
  worker_count: 2
  queue_capacity: 8
engine:
  step_delay: 50ms
  abort_on_cancel: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Worker.WorkerCount != 2 || cfg.Worker.QueueCapacity != 8 {
		t.Errorf("worker = %+v", cfg.Worker)
	}
	if cfg.Engine.StepDelay != 50*time.Millisecond {
		t.Errorf("step delay = %v", cfg.Engine.StepDelay)
	}
	if !cfg.Engine.AbortOnCancel {
		t.Error("abort_on_cancel not honored")
	}
}

func TestNormalizeMinioKeyAliases(t *testing.T) {
	cfg := &Config{}
	cfg.Minio.AccessKey = "ak"
	cfg.Minio.SecretKey = "sk"
	cfg.normalize()

	if cfg.Minio.AccessKeyID != "ak" || cfg.Minio.SecretAccessKey != "sk" {
		t.Errorf("minio = %+v", cfg.Minio)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestGlobalConfigRoundTrip(t *testing.T) {
	cfg := &Config{}
	SetGlobalConfig(cfg)
	if GetGlobalConfig() != cfg {
		t.Error("global config mismatch")
	}
}

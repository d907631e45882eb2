package cqe

import (
	"strings"
	"testing"

	"media-service/ddd/domain/vo"
	"media-service/pkg/errno"
)

func TestProcessMediaCqeValidate(t *testing.T) {
	tests := []struct {
		name string
		cqe  ProcessMediaCqe
		want *errno.Errno
	}{
		{
			name: "valid",
			cqe:  ProcessMediaCqe{OwnerUUID: "o", SourceRef: "uploads/a.mp4"},
		},
		{
			name: "missing owner",
			cqe:  ProcessMediaCqe{SourceRef: "uploads/a.mp4"},
			want: errno.ErrOwnerRequired,
		},
		{
			name: "missing source",
			cqe:  ProcessMediaCqe{OwnerUUID: "o"},
			want: errno.ErrSourceRefRequired,
		},
		{
			name: "unknown resolution",
			cqe:  ProcessMediaCqe{OwnerUUID: "o", SourceRef: "s", Settings: vo.ProcessingSettings{Resolution: "8k"}},
			want: errno.ErrValidation,
		},
		{
			name: "custom without dimensions",
			cqe:  ProcessMediaCqe{OwnerUUID: "o", SourceRef: "s", Settings: vo.ProcessingSettings{Resolution: "custom"}},
			want: errno.ErrValidation,
		},
		{
			name: "bad rotation",
			cqe:  ProcessMediaCqe{OwnerUUID: "o", SourceRef: "s", Settings: vo.ProcessingSettings{Rotate: 45}},
			want: errno.ErrValidation,
		},
		{
			name: "speed too high",
			cqe:  ProcessMediaCqe{OwnerUUID: "o", SourceRef: "s", Settings: vo.ProcessingSettings{Speed: 8}},
			want: errno.ErrValidation,
		},
		{
			name: "speed lower bound",
			cqe:  ProcessMediaCqe{OwnerUUID: "o", SourceRef: "s", Settings: vo.ProcessingSettings{Speed: 0.25}},
		},
		{
			name: "trim end before start",
			cqe: ProcessMediaCqe{OwnerUUID: "o", SourceRef: "s", Settings: vo.ProcessingSettings{
				Trim: &vo.TrimSettings{Start: 30, End: 10},
			}},
			want: errno.ErrValidation,
		},
		{
			name: "crop zero size",
			cqe: ProcessMediaCqe{OwnerUUID: "o", SourceRef: "s", Settings: vo.ProcessingSettings{
				Crop: &vo.CropSettings{Width: 0, Height: 100},
			}},
			want: errno.ErrValidation,
		},
		{
			name: "too many audio channels",
			cqe:  ProcessMediaCqe{OwnerUUID: "o", SourceRef: "s", Settings: vo.ProcessingSettings{AudioChannels: 9}},
			want: errno.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cqe.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errno.Is(err, tt.want) {
				t.Errorf("err = %v, want code %d", err, tt.want.Code)
			}
		})
	}
}

func TestBatchProcessCqeValidate(t *testing.T) {
	item := BatchItem{SourceRef: "uploads/a.mp4"}

	empty := BatchProcessCqe{OwnerUUID: "o"}
	if err := empty.Validate(); !errno.Is(err, errno.ErrBatchEmpty) {
		t.Errorf("empty batch err = %v", err)
	}

	over := BatchProcessCqe{OwnerUUID: "o", Items: make([]BatchItem, MaxBatchItems+1)}
	for i := range over.Items {
		over.Items[i] = item
	}
	if err := over.Validate(); !errno.Is(err, errno.ErrBatchTooLarge) {
		t.Errorf("oversized batch err = %v", err)
	}

	atCap := BatchProcessCqe{OwnerUUID: "o", Items: make([]BatchItem, MaxBatchItems)}
	for i := range atCap.Items {
		atCap.Items[i] = item
	}
	if err := atCap.Validate(); err != nil {
		t.Errorf("batch of %d rejected: %v", MaxBatchItems, err)
	}

	// 任一条目不合法则整批拒绝，报错带条目下标
	mixed := BatchProcessCqe{OwnerUUID: "o", Items: []BatchItem{
		item,
		{SourceRef: "uploads/b.mp4", Settings: vo.ProcessingSettings{Rotate: 33}},
	}}
	err := mixed.Validate()
	if !errno.Is(err, errno.ErrValidation) {
		t.Fatalf("mixed batch err = %v", err)
	}
	if en, ok := err.(*errno.Errno); !ok || !strings.Contains(en.Message, "item 1") {
		t.Errorf("error message %q lacks item index", err.Error())
	}
}

func TestTranscribeCqeValidate(t *testing.T) {
	valid := TranscribeCqe{OwnerUUID: "o", SourceRef: "uploads/a.wav"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid command rejected: %v", err)
	}

	badSpeakers := TranscribeCqe{OwnerUUID: "o", SourceRef: "s",
		Options: vo.TranscriptionOptions{MaxSpeakers: 11}}
	if err := badSpeakers.Validate(); !errno.Is(err, errno.ErrValidation) {
		t.Errorf("err = %v", err)
	}

	badQuality := TranscribeCqe{OwnerUUID: "o", SourceRef: "s",
		Options: vo.TranscriptionOptions{Quality: "ultra"}}
	if err := badQuality.Validate(); !errno.Is(err, errno.ErrValidation) {
		t.Errorf("err = %v", err)
	}
}

func TestTranslateTranscriptionCqeValidate(t *testing.T) {
	missing := TranslateTranscriptionCqe{OwnerUUID: "o", JobUUID: "j"}
	if err := missing.Validate(); !errno.Is(err, errno.ErrTargetLangRequired) {
		t.Errorf("err = %v", err)
	}
	valid := TranslateTranscriptionCqe{OwnerUUID: "o", JobUUID: "j", TargetLanguage: "es"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid command rejected: %v", err)
	}
}

func TestDetectLanguageCqeValidate(t *testing.T) {
	negative := DetectLanguageCqe{OwnerUUID: "o", SourceRef: "s", SampleDuration: -1}
	if err := negative.Validate(); !errno.Is(err, errno.ErrValidation) {
		t.Errorf("err = %v", err)
	}
	valid := DetectLanguageCqe{OwnerUUID: "o", SourceRef: "s", SampleDuration: 30}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid command rejected: %v", err)
	}
}

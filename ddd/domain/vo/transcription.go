package vo

// TranscriptionOptions 语音识别选项
type TranscriptionOptions struct {
	Language         string   `json:"language,omitempty"`
	DetectLanguage   bool     `json:"detect_language,omitempty"`
	Diarization      bool     `json:"diarization,omitempty"`
	MaxSpeakers      int      `json:"max_speakers,omitempty"`
	WordTimestamps   bool     `json:"word_timestamps,omitempty"`
	Punctuation      bool     `json:"punctuation,omitempty"`
	Formatting       bool     `json:"formatting,omitempty"`
	CustomVocabulary []string `json:"custom_vocabulary,omitempty"`
	ProfanityFilter  bool     `json:"profanity_filter,omitempty"`
	Quality          string   `json:"quality,omitempty"` // standard|enhanced
	OutputFormat     string   `json:"output_format,omitempty"`
}

// Word 带时间戳的单词
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

// Segment 一段按时间对齐的转写文本
type Segment struct {
	ID         int     `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Speaker    string  `json:"speaker,omitempty"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words,omitempty"`
}

// Speaker 说话人归属统计
type Speaker struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	TotalTime  float64 `json:"total_time"`
	SegmentIDs []int   `json:"segment_ids"`
}

// SubtitleSet 三种格式的字幕文本
type SubtitleSet struct {
	SRT string `json:"srt,omitempty"`
	VTT string `json:"vtt,omitempty"`
	ASS string `json:"ass,omitempty"`
}

// TranscriptionResult 转写结果
type TranscriptionResult struct {
	Text               string      `json:"text"`
	Language           string      `json:"language"`
	LanguageConfidence float64     `json:"language_confidence"`
	Duration           float64     `json:"duration"`
	WordCount          int         `json:"word_count"`
	Segments           []Segment   `json:"segments"`
	Speakers           []Speaker   `json:"speakers,omitempty"`
	Words              []Word      `json:"words,omitempty"`
	Subtitles          SubtitleSet `json:"subtitles"`
}

// LanguageCandidate 语言检测候选
type LanguageCandidate struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// SupportedLanguage 支持的语言条目
type SupportedLanguage struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	NativeName    string `json:"native_name"`
	Transcription bool   `json:"transcription"`
	Translation   bool   `json:"translation"`
}

// Clone returns a deep copy of the result.
func (r *TranscriptionResult) Clone() *TranscriptionResult {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Segments = cloneSegments(r.Segments)
	if r.Speakers != nil {
		cp.Speakers = make([]Speaker, len(r.Speakers))
		for i, sp := range r.Speakers {
			cp.Speakers[i] = sp
			cp.Speakers[i].SegmentIDs = append([]int(nil), sp.SegmentIDs...)
		}
	}
	if r.Words != nil {
		cp.Words = append([]Word(nil), r.Words...)
	}
	return &cp
}

func cloneSegments(segments []Segment) []Segment {
	if segments == nil {
		return nil
	}
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		if seg.Words != nil {
			out[i].Words = append([]Word(nil), seg.Words...)
		}
	}
	return out
}

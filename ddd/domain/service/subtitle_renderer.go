package service

import (
	"fmt"
	"strings"

	"media-service/ddd/domain/vo"
)

// ASS 样式头固定不变，播放器依赖 Format 行的字段顺序
const assHeader = `[Script Info]
Title: Generated Transcription
ScriptType: v4.00+
Collisions: Normal
PlayDepth: 0

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H64000000,0,0,0,0,100,100,0,0,1,2,1,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// RenderSubtitles 一次遍历产出三种字幕格式，cue 数量与文本逐条一致。
func RenderSubtitles(segments []vo.Segment) vo.SubtitleSet {
	return vo.SubtitleSet{
		SRT: RenderSRT(segments),
		VTT: RenderVTT(segments),
		ASS: RenderASS(segments),
	}
}

// RenderSRT 序号从 1 起，时间行用逗号毫秒，cue 之间空行分隔。
func RenderSRT(segments []vo.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", srtTimecode(seg.Start), srtTimecode(seg.End))
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderVTT 以 WEBVTT 头开始，毫秒用点号，发言人渲染为 voice 标签。
func RenderVTT(segments []vo.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", vttTimecode(seg.Start), vttTimecode(seg.End))
		if seg.Speaker != "" {
			fmt.Fprintf(&b, "<v %s>", seg.Speaker)
		}
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderASS 时间精度为厘秒，发言人写入 Dialogue 的 Name 字段。
func RenderASS(segments []vo.Segment) string {
	var b strings.Builder
	b.WriteString(assHeader)
	for _, seg := range segments {
		text := strings.ReplaceAll(seg.Text, "\n", `\N`)
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,%s,0,0,0,,%s\n",
			assTimecode(seg.Start), assTimecode(seg.End), seg.Speaker, text)
	}
	return b.String()
}

// srtTimecode 格式为 HH:MM:SS,mmm
func srtTimecode(seconds float64) string {
	h, m, s, ms := splitTimecode(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// vttTimecode 格式为 HH:MM:SS.mmm
func vttTimecode(seconds float64) string {
	h, m, s, ms := splitTimecode(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// assTimecode 格式为 H:MM:SS.cc，小时不补零
func assTimecode(seconds float64) string {
	h, m, s, ms := splitTimecode(seconds)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}

func splitTimecode(seconds float64) (h, m, s, ms int) {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds*1000 + 0.5)
	h = total / 3600000
	m = total % 3600000 / 60000
	s = total % 60000 / 1000
	ms = total % 1000
	return
}

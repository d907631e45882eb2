package service

import "media-service/ddd/domain/vo"

// 静态语言目录，转写与翻译共用
var supportedLanguages = []vo.SupportedLanguage{
	{Code: "en", Name: "English", NativeName: "English", Transcription: true, Translation: true},
	{Code: "zh", Name: "Chinese", NativeName: "中文", Transcription: true, Translation: true},
	{Code: "es", Name: "Spanish", NativeName: "Español", Transcription: true, Translation: true},
	{Code: "fr", Name: "French", NativeName: "Français", Transcription: true, Translation: true},
	{Code: "de", Name: "German", NativeName: "Deutsch", Transcription: true, Translation: true},
	{Code: "ja", Name: "Japanese", NativeName: "日本語", Transcription: true, Translation: true},
	{Code: "ko", Name: "Korean", NativeName: "한국어", Transcription: true, Translation: true},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Transcription: true, Translation: true},
	{Code: "ru", Name: "Russian", NativeName: "Русский", Transcription: true, Translation: true},
	{Code: "it", Name: "Italian", NativeName: "Italiano", Transcription: true, Translation: true},
	{Code: "ar", Name: "Arabic", NativeName: "العربية", Transcription: true, Translation: true},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", Transcription: true, Translation: true},
	{Code: "nl", Name: "Dutch", NativeName: "Nederlands", Transcription: true, Translation: false},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe", Transcription: true, Translation: false},
	{Code: "pl", Name: "Polish", NativeName: "Polski", Transcription: true, Translation: false},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt", Transcription: true, Translation: false},
}

// SupportedLanguages 返回目录副本，调用方可自由修改
func SupportedLanguages() []vo.SupportedLanguage {
	out := make([]vo.SupportedLanguage, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// IsLanguageSupported 检查语言码是否可用于指定能力
func IsLanguageSupported(code string, translation bool) bool {
	for _, l := range supportedLanguages {
		if l.Code == code {
			if translation {
				return l.Translation
			}
			return l.Transcription
		}
	}
	return false
}

package model

import "strings"

// Language selects the category vocabulary and prompt language.
type Language string

const (
	LanguageAuto Language = "auto"
	LanguageZh   Language = "zh"
	LanguageEn   Language = "en"
)

// ResolveLanguage turns a configured language into a concrete one.
// "auto" (or anything unknown) is decided from a locale string such as $LANG.
func ResolveLanguage(setting Language, locale string) Language {
	switch setting {
	case LanguageZh, LanguageEn:
		return setting
	}
	if strings.HasPrefix(strings.ToLower(locale), "zh") {
		return LanguageZh
	}
	return LanguageEn
}

// OtherCategory returns the catch-all category name for lang. This is the
// only place the literal names live.
func OtherCategory(lang Language) string {
	if lang == LanguageZh {
		return "其他"
	}
	return "Others"
}

// DisplayName returns the language name used inside prompts.
func (l Language) DisplayName() string {
	if l == LanguageZh {
		return "Chinese"
	}
	return "English"
}

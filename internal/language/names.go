package language

import "strings"

const defaultFallbackName = "English"

var englishNames = map[string]string{
	"cs": "Czech",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"ja": "Japanese",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"sk": "Slovak",
	"uk": "Ukrainian",
	"zh": "Chinese",
}

// Name maps a language code to the English name used in model prompts.
// Unknown codes are returned unchanged so they still reach the model.
func Name(code string) string {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return ""
	}
	if name, ok := englishNames[normalized]; ok {
		return name
	}
	return normalized
}

func IsAuto(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "auto")
}

// NewResolver returns the function that names the answer language for a
// question. A fixed configured code always wins. With "auto" the question is
// passed to detect, and fallback is used when detect returns "".
func NewResolver(configured, fallback string, detect func(string) string) func(question string) string {
	fallbackName := Name(fallback)
	if fallbackName == "" {
		fallbackName = defaultFallbackName
	}

	if !IsAuto(configured) {
		fixed := Name(configured)
		if fixed == "" {
			fixed = fallbackName
		}
		return func(string) string { return fixed }
	}

	return func(question string) string {
		if detect == nil {
			return fallbackName
		}
		if name := Name(detect(question)); name != "" {
			return name
		}
		return fallbackName
	}
}

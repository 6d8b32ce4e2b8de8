package utils

import (
	"strings"

	"golang.org/x/text/language"
)

// SupportedLocales are the locales the builder ships UI strings for.
var SupportedLocales = []string{"en", "ar"}

// DetermineLocale resolves a locale to use based on explicit query param, Accept-Language header,
// supported locales, and a default fallback. Supported values should be base languages like "en", "ar".
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	if len(supported) == 0 {
		return "en"
	}
	bases := make([]language.Base, 0, len(supported))
	for _, s := range supported {
		b, _ := language.Make(strings.ToLower(s)).Base()
		bases = append(bases, b)
	}
	match := func(tag language.Tag) (string, bool) {
		if tag == language.Und {
			return "", false
		}
		base, conf := tag.Base()
		if conf == language.No {
			return "", false
		}
		for i, b := range bases {
			if b == base {
				return strings.ToLower(supported[i]), true
			}
		}
		return "", false
	}
	pick := func(lang string) (string, bool) {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			return "", false
		}
		tag, err := language.Parse(lang)
		if err != nil {
			return "", false
		}
		return match(tag)
	}

	if v, ok := pick(queryLang); ok {
		return v
	}
	// ParseAcceptLanguage sorts by q-value, highest first, and drops q=0 entries.
	if tags, _, err := language.ParseAcceptLanguage(acceptLang); err == nil {
		for _, tag := range tags {
			if v, ok := match(tag); ok {
				return v
			}
		}
	}
	if v, ok := pick(def); ok {
		return v
	}
	return strings.ToLower(supported[0])
}

// Direction returns the text direction ("rtl" or "ltr") for a locale.
func Direction(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return "ltr"
	}
	script, _ := tag.Script()
	switch script.String() {
	case "Arab", "Hebr", "Syrc", "Thaa":
		return "rtl"
	}
	return "ltr"
}

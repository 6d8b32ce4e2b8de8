package builder

import (
	"encoding/json"
	"strings"
)

const (
	LocaleEnglish = "en"
	LocaleArabic  = "ar"
)

// LocalizedText is a bilingual string. Text is the English side and Localized the Arabic side;
// either may be empty.
type LocalizedText struct {
	Text      string
	Localized string
}

// L builds a LocalizedText.
func L(text, localized string) LocalizedText {
	return LocalizedText{Text: text, Localized: localized}
}

// Display returns the localized text when present, otherwise the English text.
func (l LocalizedText) Display() string {
	if strings.TrimSpace(l.Localized) != "" {
		return l.Localized
	}
	return l.Text
}

// In returns the side matching locale, falling back to the other side when blank.
func (l LocalizedText) In(locale string) string {
	primary, secondary := l.Text, l.Localized
	if locale == LocaleArabic {
		primary, secondary = l.Localized, l.Text
	}
	if strings.TrimSpace(primary) != "" {
		return primary
	}
	return secondary
}

// IsEmpty reports whether both sides are blank.
func (l LocalizedText) IsEmpty() bool {
	return strings.TrimSpace(l.Text) == "" && strings.TrimSpace(l.Localized) == ""
}

// MarshalJSON keeps the persisted shape of localized pairs.
func (l LocalizedText) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text      string `json:"text"`
		Localized string `json:"text_localized"`
	}{l.Text, l.Localized})
}

func (l *LocalizedText) UnmarshalJSON(b []byte) error {
	var raw struct {
		Text      string `json:"text"`
		Localized string `json:"text_localized"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	l.Text, l.Localized = raw.Text, raw.Localized
	return nil
}

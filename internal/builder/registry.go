package builder

import (
	"fmt"

	"golang.org/x/net/html"
)

// Kind is the per-type capability set of the registry: defaults, the disabled preview used by
// both the canvas and the survey preview, the options sub-form of the property editor, and
// the write-through for option edits.
type Kind interface {
	Type() QuestionType
	Label() LocalizedText
	DefaultText() LocalizedText
	DefaultOptions() Options
	RenderPreview(q *Question, locale string) *html.Node
	RenderEditor(q *Question, locale string) *html.Node
	ApplyEdit(q *Question, e Edit) error
}

var palette = []Kind{
	textKind{t: TypeShortText, label: L("Short answer", "إجابة قصيرة"), prompt: L("Short answer question", "سؤال بإجابة قصيرة"), input: "text"},
	textKind{t: TypeLongText, label: L("Paragraph", "فقرة"), prompt: L("Tell us more", "أخبرنا المزيد"), multiline: true},
	choiceKind{t: TypeSingleChoice, label: L("Single choice", "اختيار واحد"), prompt: L("Choose one option", "اختر خياراً واحداً"), control: "radio"},
	choiceKind{t: TypeMultiChoice, label: L("Multiple choice", "اختيار متعدد"), prompt: L("Select all that apply", "اختر كل ما ينطبق"), control: "checkbox"},
	choiceKind{t: TypeDropdown, label: L("Dropdown", "قائمة منسدلة"), prompt: L("Pick from the list", "اختر من القائمة"), control: "select"},
	ratingKind{},
	rangeKind{t: TypeSlider, label: L("Slider", "شريط تمرير"), prompt: L("How satisfied are you?", "ما مدى رضاك؟")},
	rangeKind{t: TypeNPS, label: L("Net Promoter Score", "مؤشر صافي الترويج"), prompt: L("How likely are you to recommend us to a friend?", "ما مدى احتمال أن توصي بنا لصديق؟"), fixed: true},
	textKind{t: TypeDate, label: L("Date", "تاريخ"), prompt: L("Select a date", "اختر تاريخاً"), input: "date"},
	textKind{t: TypeEmail, label: L("Email", "البريد الإلكتروني"), prompt: L("Your email address", "بريدك الإلكتروني"), input: "email"},
	textKind{t: TypePhone, label: L("Phone", "رقم الهاتف"), prompt: L("Your phone number", "رقم هاتفك"), input: "tel"},
}

var kinds = func() map[QuestionType]Kind {
	m := make(map[QuestionType]Kind, len(palette))
	for _, k := range palette {
		m[k.Type()] = k
	}
	return m
}()

// LookupKind returns the registry entry for t.
func LookupKind(t QuestionType) (Kind, error) {
	k, ok := kinds[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
	return k, nil
}

// Kinds lists every registered kind in palette order.
func Kinds() []Kind {
	return append([]Kind(nil), palette...)
}

func newQuestion(t QuestionType, id int) (*Question, error) {
	k, err := LookupKind(t)
	if err != nil {
		return nil, err
	}
	return &Question{
		ID:      id,
		Type:    t,
		Text:    k.DefaultText(),
		Options: k.DefaultOptions(),
	}, nil
}

func unsupported(t QuestionType, e Edit) error {
	return fmt.Errorf("%w: %s on %s", ErrUnsupportedEdit, e.Field, t)
}

func staleIndex(e Edit) error {
	return fmt.Errorf("%w: %s index %d", ErrStaleReference, e.Field, e.Index)
}

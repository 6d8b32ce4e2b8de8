package builder

import (
	"encoding/json"
	"sort"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/soaringjerry/Raay/internal/utils"
)

var errTitle = L("The survey needs a title.", "يحتاج الاستبيان إلى عنوان.")

// EnvelopeQuestion is the persistence-facing view of a question: no session id, no selection.
type EnvelopeQuestion struct {
	Type            QuestionType
	Text            LocalizedText
	Description     LocalizedText
	Required        bool
	OrderIndex      int
	Options         Options
	ValidationRules map[string]any
}

type envelopeQuestionJSON struct {
	Type                 QuestionType    `json:"type"`
	Text                 string          `json:"text"`
	TextLocalized        string          `json:"text_localized"`
	Description          string          `json:"description,omitempty"`
	DescriptionLocalized string          `json:"description_localized,omitempty"`
	IsRequired           bool            `json:"is_required"`
	OrderIndex           int             `json:"order_index"`
	Options              json.RawMessage `json:"options"`
	ValidationRules      map[string]any  `json:"validation_rules,omitempty"`
}

func (q EnvelopeQuestion) MarshalJSON() ([]byte, error) {
	var opts Options = &EmptyOptions{}
	if q.Options != nil {
		opts = q.Options
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeQuestionJSON{
		Type:                 q.Type,
		Text:                 q.Text.Text,
		TextLocalized:        q.Text.Localized,
		Description:          q.Description.Text,
		DescriptionLocalized: q.Description.Localized,
		IsRequired:           q.Required,
		OrderIndex:           q.OrderIndex,
		Options:              raw,
		ValidationRules:      q.ValidationRules,
	})
}

func (q *EnvelopeQuestion) UnmarshalJSON(b []byte) error {
	var raw envelopeQuestionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	opts, err := DecodeOptions(raw.Type, raw.Options)
	if err != nil {
		return err
	}
	*q = EnvelopeQuestion{
		Type:            raw.Type,
		Text:            L(raw.Text, raw.TextLocalized),
		Description:     L(raw.Description, raw.DescriptionLocalized),
		Required:        raw.IsRequired,
		OrderIndex:      raw.OrderIndex,
		Options:         opts,
		ValidationRules: raw.ValidationRules,
	}
	return nil
}

// Question rebuilds a model question carrying id.
func (q EnvelopeQuestion) Question(id int) *Question {
	out := &Question{
		ID:              id,
		Type:            q.Type,
		Text:            q.Text,
		Description:     q.Description,
		Required:        q.Required,
		OrderIndex:      q.OrderIndex,
		ValidationRules: cloneRules(q.ValidationRules),
	}
	if q.Options != nil {
		out.Options = q.Options.Clone()
	} else if k, err := LookupKind(q.Type); err == nil {
		out.Options = k.DefaultOptions()
	}
	return out
}

// Envelope is the survey payload handed to persistence and preview.
type Envelope struct {
	Title       LocalizedText
	Description LocalizedText
	Questions   []EnvelopeQuestion
}

type envelopeJSON struct {
	Title                string             `json:"title"`
	TitleLocalized       string             `json:"title_localized"`
	Description          string             `json:"description,omitempty"`
	DescriptionLocalized string             `json:"description_localized,omitempty"`
	Questions            []EnvelopeQuestion `json:"questions"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	qs := e.Questions
	if qs == nil {
		qs = []EnvelopeQuestion{}
	}
	return json.Marshal(envelopeJSON{
		Title:                e.Title.Text,
		TitleLocalized:       e.Title.Localized,
		Description:          e.Description.Text,
		DescriptionLocalized: e.Description.Localized,
		Questions:            qs,
	})
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Envelope{
		Title:       L(raw.Title, raw.TitleLocalized),
		Description: L(raw.Description, raw.DescriptionLocalized),
		Questions:   raw.Questions,
	}
	e.normalize()
	return nil
}

// BuildEnvelope flattens questions sorted by order_index.
func BuildEnvelope(title, description LocalizedText, qs []*Question) Envelope {
	sorted := append([]*Question(nil), qs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrderIndex < sorted[j].OrderIndex })
	env := Envelope{Title: title, Description: description, Questions: make([]EnvelopeQuestion, 0, len(sorted))}
	for _, q := range sorted {
		eq := EnvelopeQuestion{
			Type:            q.Type,
			Text:            q.Text,
			Description:     q.Description,
			Required:        q.Required,
			OrderIndex:      q.OrderIndex,
			ValidationRules: cloneRules(q.ValidationRules),
		}
		if q.Options != nil {
			eq.Options = q.Options.Clone()
		}
		env.Questions = append(env.Questions, eq)
	}
	return env
}

// Validate rejects an envelope that cannot be saved.
func (e Envelope) Validate() error {
	if e.Title.IsEmpty() {
		return newValidationError(CodeTitleRequired, errTitle)
	}
	return nil
}

// normalize sorts by order_index and makes the indexes dense.
func (e *Envelope) normalize() {
	sort.SliceStable(e.Questions, func(i, j int) bool { return e.Questions[i].OrderIndex < e.Questions[j].OrderIndex })
	for i := range e.Questions {
		e.Questions[i].OrderIndex = i
	}
}

// RenderPreview renders the read-only survey view using the same per-type previews as the canvas.
func RenderPreview(env Envelope, locale string) *html.Node {
	title := env.Title.In(locale)
	if title == "" {
		title = utils.T(locale, "preview.untitled_survey")
	}
	root := el(atom.Div, at("class", "survey-preview", "dir", utils.Direction(locale), "lang", locale),
		el(atom.H2, at("class", "survey-title"), text(title)))
	if !env.Description.IsEmpty() {
		root.AppendChild(el(atom.P, at("class", "survey-description"), text(env.Description.In(locale))))
	}
	list := el(atom.Ol, at("class", "preview-questions"))
	for i, eq := range env.Questions {
		q := eq.Question(i + 1)
		head := el(atom.Div, at("class", "question-text"), text(q.Text.In(locale)))
		if q.Required {
			head.AppendChild(el(atom.Span, at("class", "required-marker", "title", utils.T(locale, "builder.required")), text("*")))
		}
		item := el(atom.Li, at("class", "preview-question", "data-type", string(q.Type)), head)
		if !q.Description.IsEmpty() {
			item.AppendChild(el(atom.Div, at("class", "question-description"), text(q.Description.In(locale))))
		}
		item.AppendChild(el(atom.Div, at("class", "question-preview"), previewOf(q, locale)))
		list.AppendChild(item)
	}
	root.AppendChild(list)
	return root
}

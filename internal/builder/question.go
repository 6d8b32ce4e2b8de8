package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// QuestionType is the closed set of question type tags.
type QuestionType string

const (
	TypeShortText    QuestionType = "short-text"
	TypeLongText     QuestionType = "long-text"
	TypeSingleChoice QuestionType = "single-choice"
	TypeMultiChoice  QuestionType = "multi-choice"
	TypeDropdown     QuestionType = "dropdown"
	TypeRating       QuestionType = "rating"
	TypeSlider       QuestionType = "slider"
	TypeNPS          QuestionType = "nps"
	TypeDate         QuestionType = "date"
	TypeEmail        QuestionType = "email"
	TypePhone        QuestionType = "phone"
)

const (
	// MinChoices is the smallest choice list the editor accepts.
	MinChoices = 2
	// DefaultMaxRating is the max_rating of a fresh rating question.
	DefaultMaxRating = 5
	npsMin           = 0
	npsMax           = 10
)

// AllowedMaxRatings lists the max_rating values the editor offers.
var AllowedMaxRatings = []int{3, 5, 7, 10}

// Question is one survey item. Type never changes after creation.
type Question struct {
	ID              int
	Type            QuestionType
	Text            LocalizedText
	Description     LocalizedText
	Required        bool
	OrderIndex      int
	Options         Options
	ValidationRules map[string]any
}

// Clone returns a deep copy of q.
func (q *Question) Clone() *Question {
	if q == nil {
		return nil
	}
	out := *q
	if q.Options != nil {
		out.Options = q.Options.Clone()
	}
	out.ValidationRules = cloneRules(q.ValidationRules)
	return &out
}

// DisplayText is the label shown on the canvas, falling back to fallback when both sides are blank.
func (q *Question) DisplayText(fallback string) string {
	if q.Text.IsEmpty() {
		return fallback
	}
	return q.Text.Display()
}

// Options is the type-dependent payload of a question.
type Options interface {
	Clone() Options
}

// Choice is one entry of a choice-bearing question.
type Choice struct {
	Text          string `json:"text"`
	TextLocalized string `json:"text_localized"`
	Value         string `json:"value"`
}

// Label returns the bilingual label of the choice.
func (c Choice) Label() LocalizedText { return L(c.Text, c.TextLocalized) }

// ChoiceOptions backs single-choice, multi-choice and dropdown questions.
type ChoiceOptions struct {
	Choices []Choice `json:"choices"`
}

func (o *ChoiceOptions) Clone() Options {
	return &ChoiceOptions{Choices: append([]Choice(nil), o.Choices...)}
}

// RatingOptions backs rating questions. Labels are indexed by achieved score minus one.
type RatingOptions struct {
	MaxRating       int      `json:"max_rating"`
	Labels          []string `json:"labels,omitempty"`
	LabelsLocalized []string `json:"labels_localized,omitempty"`
}

func (o *RatingOptions) Clone() Options {
	return &RatingOptions{
		MaxRating:       o.MaxRating,
		Labels:          append([]string(nil), o.Labels...),
		LabelsLocalized: append([]string(nil), o.LabelsLocalized...),
	}
}

// ScoreLabel returns the bilingual label for score (1-based).
func (o *RatingOptions) ScoreLabel(score int) LocalizedText {
	var out LocalizedText
	if i := score - 1; i >= 0 {
		if i < len(o.Labels) {
			out.Text = o.Labels[i]
		}
		if i < len(o.LabelsLocalized) {
			out.Localized = o.LabelsLocalized[i]
		}
	}
	return out
}

// EndpointLabels are the captions under the two ends of a scale.
type EndpointLabels struct {
	Min LocalizedText `json:"min"`
	Max LocalizedText `json:"max"`
}

// RangeOptions backs slider and nps questions. Step is unused for nps.
type RangeOptions struct {
	MinValue int            `json:"min_value"`
	MaxValue int            `json:"max_value"`
	Step     int            `json:"step,omitempty"`
	Labels   EndpointLabels `json:"labels"`
}

func (o *RangeOptions) Clone() Options {
	c := *o
	return &c
}

// EmptyOptions is the payload of types without options.
type EmptyOptions struct{}

func (o *EmptyOptions) Clone() Options { return &EmptyOptions{} }

// DecodeOptions decodes an options payload for a known question type.
func DecodeOptions(t QuestionType, raw json.RawMessage) (Options, error) {
	if _, err := LookupKind(t); err != nil {
		return nil, err
	}
	var opts Options
	switch t {
	case TypeSingleChoice, TypeMultiChoice, TypeDropdown:
		opts = &ChoiceOptions{}
	case TypeRating:
		opts = &RatingOptions{}
	case TypeSlider, TypeNPS:
		opts = &RangeOptions{}
	default:
		opts = &EmptyOptions{}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return opts, nil
	}
	if err := json.Unmarshal(trimmed, opts); err != nil {
		return nil, fmt.Errorf("decode %s options: %w", t, err)
	}
	return opts, nil
}

func cloneRules(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneRules(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

package builder

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/soaringjerry/Raay/internal/utils"
)

var errMinChoices = L("A choice question needs at least 2 options.", "يجب أن يحتوي سؤال الاختيار على خيارين على الأقل.")

// choiceKind covers the choice-bearing types. control is "radio", "checkbox" or "select".
type choiceKind struct {
	t       QuestionType
	label   LocalizedText
	prompt  LocalizedText
	control string
}

func (k choiceKind) Type() QuestionType         { return k.t }
func (k choiceKind) Label() LocalizedText       { return k.label }
func (k choiceKind) DefaultText() LocalizedText { return k.prompt }

func (k choiceKind) DefaultOptions() Options {
	return &ChoiceOptions{Choices: []Choice{newChoice(1), newChoice(2)}}
}

func newChoice(n int) Choice {
	return Choice{Text: "Option " + itoa(n), TextLocalized: "الخيار " + itoa(n), Value: "option_" + itoa(n)}
}

func choicesOf(q *Question) *ChoiceOptions {
	if opts, ok := q.Options.(*ChoiceOptions); ok {
		return opts
	}
	return &ChoiceOptions{}
}

func (k choiceKind) RenderPreview(q *Question, locale string) *html.Node {
	opts := choicesOf(q)
	name := "q-" + itoa(q.ID)
	if k.control == "select" {
		sel := el(atom.Select, at("name", name, "disabled", ""),
			el(atom.Option, at("value", ""), text(utils.T(locale, "preview.select"))))
		for _, c := range opts.Choices {
			sel.AppendChild(el(atom.Option, at("value", c.Value), text(c.Label().In(locale))))
		}
		return el(atom.Div, at("class", "preview-input"), sel)
	}
	list := el(atom.Div, at("class", "choice-list"))
	for _, c := range opts.Choices {
		list.AppendChild(el(atom.Label, at("class", "choice"),
			disabledInput(k.control, "name", name, "value", c.Value),
			el(atom.Span, nil, text(c.Label().In(locale)))))
	}
	return list
}

func (k choiceKind) RenderEditor(q *Question, locale string) *html.Node {
	opts := choicesOf(q)
	box := el(atom.Div, at("class", "choice-editor"),
		el(atom.H4, nil, text(utils.T(locale, "editor.choices"))))
	for i, c := range opts.Choices {
		box.AppendChild(el(atom.Div, at("class", "choice-row", "data-index", itoa(i)),
			field(EditChoiceText, i, utils.T(locale, "editor.lang_en"), c.Text, "ltr"),
			field(EditChoiceTextLocalized, i, utils.T(locale, "editor.lang_ar"), c.TextLocalized, "rtl"),
			field(EditChoiceValue, i, utils.T(locale, "editor.choice_value"), c.Value, "ltr"),
			el(atom.Button, at("type", "button", "class", "btn-remove-choice", "data-action", EditChoiceRemove, "data-index", itoa(i)),
				text(utils.T(locale, "editor.remove_choice")))))
	}
	box.AppendChild(el(atom.Button, at("type", "button", "class", "btn-add-choice", "data-action", EditChoiceAdd),
		text(utils.T(locale, "editor.add_choice"))))
	return box
}

func (k choiceKind) ApplyEdit(q *Question, e Edit) error {
	opts, ok := q.Options.(*ChoiceOptions)
	if !ok {
		return unsupported(k.t, e)
	}
	switch e.Field {
	case EditChoiceAdd:
		opts.Choices = append(opts.Choices, nextChoice(opts.Choices))
		return nil
	case EditChoiceRemove:
		if e.Index < 0 || e.Index >= len(opts.Choices) {
			return staleIndex(e)
		}
		if len(opts.Choices) <= MinChoices {
			return newValidationError(CodeMinChoices, errMinChoices)
		}
		opts.Choices = append(opts.Choices[:e.Index:e.Index], opts.Choices[e.Index+1:]...)
		return nil
	case EditChoiceText, EditChoiceTextLocalized, EditChoiceValue:
		if e.Index < 0 || e.Index >= len(opts.Choices) {
			return staleIndex(e)
		}
		c := &opts.Choices[e.Index]
		switch e.Field {
		case EditChoiceText:
			c.Text = e.Value
		case EditChoiceTextLocalized:
			c.TextLocalized = e.Value
		default:
			c.Value = e.Value
		}
		return nil
	}
	return unsupported(k.t, e)
}

// nextChoice numbers a new choice after the list and keeps its value unique.
func nextChoice(existing []Choice) Choice {
	taken := make(map[string]bool, len(existing))
	for _, c := range existing {
		taken[c.Value] = true
	}
	n := len(existing) + 1
	c := newChoice(n)
	for taken[c.Value] {
		n++
		c.Value = "option_" + itoa(n)
	}
	return c
}

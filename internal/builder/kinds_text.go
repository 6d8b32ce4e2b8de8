package builder

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/soaringjerry/Raay/internal/utils"
)

// textKind covers free-entry types; they differ only in the input control.
type textKind struct {
	t         QuestionType
	label     LocalizedText
	prompt    LocalizedText
	input     string
	multiline bool
}

func (k textKind) Type() QuestionType         { return k.t }
func (k textKind) Label() LocalizedText       { return k.label }
func (k textKind) DefaultText() LocalizedText { return k.prompt }
func (k textKind) DefaultOptions() Options    { return &EmptyOptions{} }

func (k textKind) RenderPreview(q *Question, locale string) *html.Node {
	if k.multiline {
		return el(atom.Div, at("class", "preview-input"),
			el(atom.Textarea, at("rows", "3", "disabled", "", "name", "q-"+itoa(q.ID))))
	}
	return el(atom.Div, at("class", "preview-input"),
		disabledInput(k.input, "name", "q-"+itoa(q.ID), "dir", utils.Direction(locale)))
}

func (k textKind) RenderEditor(q *Question, locale string) *html.Node {
	return el(atom.P, at("class", "editor-note"), text(utils.T(locale, "editor.no_options")))
}

func (k textKind) ApplyEdit(q *Question, e Edit) error {
	return unsupported(k.t, e)
}

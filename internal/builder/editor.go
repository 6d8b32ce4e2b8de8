package builder

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/soaringjerry/Raay/internal/utils"
)

// Edit fields. Each maps to one input (or button) of the property form.
const (
	EditText                 = "text"
	EditTextLocalized        = "text_localized"
	EditDescription          = "description"
	EditDescriptionLocalized = "description_localized"
	EditRequired             = "is_required"

	EditChoiceAdd           = "choice.add"
	EditChoiceRemove        = "choice.remove"
	EditChoiceText          = "choice.text"
	EditChoiceTextLocalized = "choice.text_localized"
	EditChoiceValue         = "choice.value"

	EditMaxRating            = "max_rating"
	EditRatingLabel          = "rating.label"
	EditRatingLabelLocalized = "rating.label_localized"

	EditMinValue          = "min_value"
	EditMaxValue          = "max_value"
	EditStep              = "step"
	EditMinLabel          = "min_label"
	EditMinLabelLocalized = "min_label_localized"
	EditMaxLabel          = "max_label"
	EditMaxLabelLocalized = "max_label_localized"
)

// Edit is one input change event from the property form.
type Edit struct {
	Field string `json:"field"`
	Index int    `json:"index"`
	Value string `json:"value"`
}

// PropertyEditor renders the form for the selected question and writes edits through to it.
type PropertyEditor struct {
	locale string
	root   *html.Node
}

func NewPropertyEditor(locale string) *PropertyEditor {
	return &PropertyEditor{
		locale: locale,
		root: el(atom.Form, at("id", "property-editor", "class", "property-editor",
			"dir", utils.Direction(locale), "lang", locale)),
	}
}

func (e *PropertyEditor) Root() *html.Node { return e.root }

// Render replaces the whole form with one for q; nil shows the empty state.
func (e *PropertyEditor) Render(q *Question) {
	clearChildren(e.root)
	if q == nil {
		removeAttr(e.root, attrQuestionID)
		e.root.AppendChild(el(atom.P, at("class", "empty-state"), text(utils.T(e.locale, "editor.empty"))))
		return
	}
	setAttr(e.root, attrQuestionID, itoa(q.ID))
	required := el(atom.Input, at("type", "checkbox", "id", EditRequired, "name", EditRequired, "value", "true"))
	if q.Required {
		setAttr(required, "checked", "")
	}
	e.root.AppendChild(el(atom.Fieldset, at("class", "common-fields"),
		field(EditText, -1, utils.T(e.locale, "editor.text"), q.Text.Text, "ltr"),
		field(EditTextLocalized, -1, utils.T(e.locale, "editor.text_localized"), q.Text.Localized, "rtl"),
		field(EditDescription, -1, utils.T(e.locale, "editor.description"), q.Description.Text, "ltr"),
		field(EditDescriptionLocalized, -1, utils.T(e.locale, "editor.description_local"), q.Description.Localized, "rtl"),
		el(atom.Div, at("class", "form-check"), required, labelled(EditRequired, utils.T(e.locale, "editor.required")))))
	if k, err := LookupKind(q.Type); err == nil {
		e.root.AppendChild(el(atom.Fieldset, at("class", "type-fields", "data-type", string(q.Type)), k.RenderEditor(q, e.locale)))
	}
}

// HTML serializes the form.
func (e *PropertyEditor) HTML() (string, error) { return RenderHTML(e.root) }

// Apply writes ed through to q. On error q is unchanged.
func (e *PropertyEditor) Apply(q *Question, ed Edit) error {
	switch ed.Field {
	case EditText:
		q.Text.Text = ed.Value
	case EditTextLocalized:
		q.Text.Localized = ed.Value
	case EditDescription:
		q.Description.Text = ed.Value
	case EditDescriptionLocalized:
		q.Description.Localized = ed.Value
	case EditRequired:
		q.Required = parseFlag(ed.Value)
	default:
		k, err := LookupKind(q.Type)
		if err != nil {
			return err
		}
		return k.ApplyEdit(q, ed)
	}
	return nil
}

// restructures reports whether applying ed changes the shape of the form, so the form must
// be rebuilt instead of leaving the inputs as typed.
func restructures(ed Edit) bool {
	switch ed.Field {
	case EditChoiceAdd, EditChoiceRemove, EditMaxRating:
		return true
	}
	return false
}

func parseFlag(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "on" || v == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

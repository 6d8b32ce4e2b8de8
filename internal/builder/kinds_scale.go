package builder

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/soaringjerry/Raay/internal/utils"
)

var (
	errMaxRating = L("Maximum rating must be one of 3, 5, 7 or 10.", "يجب أن يكون أعلى تقييم 3 أو 5 أو 7 أو 10.")
	errRange     = L("Minimum must be below maximum and the step must fit the range.", "يجب أن يكون الحد الأدنى أقل من الحد الأقصى وأن تناسب الخطوة النطاق.")
	errNumber    = L("Please enter a whole number.", "يرجى إدخال رقم صحيح.")
)

var (
	defaultRatingLabels          = []string{"Very poor", "Poor", "Average", "Good", "Excellent"}
	defaultRatingLabelsLocalized = []string{"سيئ جداً", "سيئ", "متوسط", "جيد", "ممتاز"}
)

func parseWhole(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, newValidationError(CodeInvalidNumber, errNumber)
	}
	return n, nil
}

func resize(labels []string, n int) []string {
	out := make([]string, n)
	copy(out, labels)
	return out
}

type ratingKind struct{}

func (ratingKind) Type() QuestionType   { return TypeRating }
func (ratingKind) Label() LocalizedText { return L("Rating", "تقييم") }
func (ratingKind) DefaultText() LocalizedText {
	return L("How would you rate your experience?", "كيف تقيم تجربتك؟")
}

func (ratingKind) DefaultOptions() Options {
	return &RatingOptions{
		MaxRating:       DefaultMaxRating,
		Labels:          append([]string(nil), defaultRatingLabels...),
		LabelsLocalized: append([]string(nil), defaultRatingLabelsLocalized...),
	}
}

func ratingOf(q *Question) *RatingOptions {
	if opts, ok := q.Options.(*RatingOptions); ok {
		return opts
	}
	return &RatingOptions{MaxRating: DefaultMaxRating}
}

func (ratingKind) RenderPreview(q *Question, locale string) *html.Node {
	opts := ratingOf(q)
	box := el(atom.Div, at("class", "rating-preview"))
	for s := 1; s <= opts.MaxRating; s++ {
		star := el(atom.Span, at("class", "rating-star", "data-score", itoa(s)), text("★"))
		if label := opts.ScoreLabel(s).In(locale); label != "" {
			setAttr(star, "title", label)
		}
		box.AppendChild(star)
	}
	return box
}

func (ratingKind) RenderEditor(q *Question, locale string) *html.Node {
	opts := ratingOf(q)
	sel := el(atom.Select, at("id", EditMaxRating, "name", EditMaxRating))
	for _, n := range AllowedMaxRatings {
		opt := el(atom.Option, at("value", itoa(n)), text(itoa(n)))
		if n == opts.MaxRating {
			setAttr(opt, "selected", "")
		}
		sel.AppendChild(opt)
	}
	box := el(atom.Div, at("class", "rating-editor"),
		el(atom.Div, at("class", "form-group"), labelled(EditMaxRating, utils.T(locale, "editor.max_rating")), sel),
		el(atom.H4, nil, text(utils.T(locale, "editor.score_labels"))))
	for s := 1; s <= opts.MaxRating; s++ {
		label := opts.ScoreLabel(s)
		box.AppendChild(el(atom.Div, at("class", "score-label-row", "data-index", itoa(s-1)),
			field(EditRatingLabel, s-1, itoa(s)+" · "+utils.T(locale, "editor.lang_en"), label.Text, "ltr"),
			field(EditRatingLabelLocalized, s-1, itoa(s)+" · "+utils.T(locale, "editor.lang_ar"), label.Localized, "rtl")))
	}
	return box
}

func (ratingKind) ApplyEdit(q *Question, e Edit) error {
	opts, ok := q.Options.(*RatingOptions)
	if !ok {
		return unsupported(TypeRating, e)
	}
	switch e.Field {
	case EditMaxRating:
		n, err := parseWhole(e.Value)
		if err != nil {
			return err
		}
		if !slices.Contains(AllowedMaxRatings, n) {
			return newValidationError(CodeInvalidMaxRating, errMaxRating)
		}
		opts.MaxRating = n
		opts.Labels = resize(opts.Labels, n)
		opts.LabelsLocalized = resize(opts.LabelsLocalized, n)
		return nil
	case EditRatingLabel, EditRatingLabelLocalized:
		if e.Index < 0 || e.Index >= opts.MaxRating {
			return staleIndex(e)
		}
		if e.Field == EditRatingLabel {
			opts.Labels = resize(opts.Labels, opts.MaxRating)
			opts.Labels[e.Index] = e.Value
		} else {
			opts.LabelsLocalized = resize(opts.LabelsLocalized, opts.MaxRating)
			opts.LabelsLocalized[e.Index] = e.Value
		}
		return nil
	}
	return unsupported(TypeRating, e)
}

// rangeKind covers slider and nps. fixed kinds keep their 0..10 bounds and have no step.
type rangeKind struct {
	t      QuestionType
	label  LocalizedText
	prompt LocalizedText
	fixed  bool
}

func (k rangeKind) Type() QuestionType         { return k.t }
func (k rangeKind) Label() LocalizedText       { return k.label }
func (k rangeKind) DefaultText() LocalizedText { return k.prompt }

func (k rangeKind) DefaultOptions() Options {
	if k.fixed {
		return &RangeOptions{MinValue: npsMin, MaxValue: npsMax, Labels: EndpointLabels{
			Min: L("Not at all likely", "غير محتمل على الإطلاق"),
			Max: L("Extremely likely", "محتمل جداً"),
		}}
	}
	return &RangeOptions{MinValue: 0, MaxValue: 100, Step: 1, Labels: EndpointLabels{
		Min: L("Low", "منخفض"),
		Max: L("High", "مرتفع"),
	}}
}

func (k rangeKind) rangeOf(q *Question) *RangeOptions {
	if opts, ok := q.Options.(*RangeOptions); ok {
		return opts
	}
	return k.DefaultOptions().(*RangeOptions)
}

func (k rangeKind) RenderPreview(q *Question, locale string) *html.Node {
	opts := k.rangeOf(q)
	minLabel := el(atom.Span, at("class", "range-label range-label-min"), text(opts.Labels.Min.In(locale)))
	maxLabel := el(atom.Span, at("class", "range-label range-label-max"), text(opts.Labels.Max.In(locale)))
	if k.fixed {
		scale := el(atom.Div, at("class", "nps-scale"))
		for v := opts.MinValue; v <= opts.MaxValue; v++ {
			scale.AppendChild(el(atom.Span, at("class", "nps-score", "data-score", itoa(v)), text(itoa(v))))
		}
		return el(atom.Div, at("class", "nps-preview"), scale,
			el(atom.Div, at("class", "range-labels"), minLabel, maxLabel))
	}
	slider := disabledInput("range",
		"min", itoa(opts.MinValue), "max", itoa(opts.MaxValue), "step", itoa(opts.Step), "value", itoa(opts.MinValue))
	return el(atom.Div, at("class", "slider-preview"), minLabel, slider, maxLabel)
}

func (k rangeKind) RenderEditor(q *Question, locale string) *html.Node {
	opts := k.rangeOf(q)
	box := el(atom.Div, at("class", "range-editor"))
	if !k.fixed {
		box.AppendChild(numberField(EditMinValue, utils.T(locale, "editor.min_value"), opts.MinValue))
		box.AppendChild(numberField(EditMaxValue, utils.T(locale, "editor.max_value"), opts.MaxValue))
		box.AppendChild(numberField(EditStep, utils.T(locale, "editor.step"), opts.Step))
	}
	box.AppendChild(field(EditMinLabel, -1, utils.T(locale, "editor.min_label")+" · "+utils.T(locale, "editor.lang_en"), opts.Labels.Min.Text, "ltr"))
	box.AppendChild(field(EditMinLabelLocalized, -1, utils.T(locale, "editor.min_label")+" · "+utils.T(locale, "editor.lang_ar"), opts.Labels.Min.Localized, "rtl"))
	box.AppendChild(field(EditMaxLabel, -1, utils.T(locale, "editor.max_label")+" · "+utils.T(locale, "editor.lang_en"), opts.Labels.Max.Text, "ltr"))
	box.AppendChild(field(EditMaxLabelLocalized, -1, utils.T(locale, "editor.max_label")+" · "+utils.T(locale, "editor.lang_ar"), opts.Labels.Max.Localized, "rtl"))
	return box
}

func (k rangeKind) ApplyEdit(q *Question, e Edit) error {
	opts, ok := q.Options.(*RangeOptions)
	if !ok {
		return unsupported(k.t, e)
	}
	switch e.Field {
	case EditMinValue, EditMaxValue, EditStep:
		if k.fixed {
			return unsupported(k.t, e)
		}
		n, err := parseWhole(e.Value)
		if err != nil {
			return err
		}
		next := *opts
		switch e.Field {
		case EditMinValue:
			next.MinValue = n
		case EditMaxValue:
			next.MaxValue = n
		default:
			next.Step = n
		}
		if next.MinValue >= next.MaxValue || next.Step < 1 || next.Step > next.MaxValue-next.MinValue {
			return newValidationError(CodeInvalidRange, errRange)
		}
		*opts = next
		return nil
	case EditMinLabel:
		opts.Labels.Min.Text = e.Value
	case EditMinLabelLocalized:
		opts.Labels.Min.Localized = e.Value
	case EditMaxLabel:
		opts.Labels.Max.Text = e.Value
	case EditMaxLabelLocalized:
		opts.Labels.Max.Localized = e.Value
	default:
		return unsupported(k.t, e)
	}
	return nil
}

package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/soaringjerry/Raay/internal/builder"
)

// utf8BOM lets spreadsheet apps detect UTF-8, without it Arabic columns come out garbled.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders a saved survey as a codebook. format is "csv" (default) or "json".
func (s *SurveyService) Export(ctx context.Context, tenantID, id, format string) (*ExportResult, error) {
	sv, err := s.Load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	switch format {
	case "", "csv":
		b, err := ExportQuestionsCSV(sv.Envelope)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: sv.ID + ".csv", ContentType: "text/csv; charset=utf-8", Data: append(append([]byte(nil), utf8BOM...), b...)}, nil
	case "json":
		b, err := json.MarshalIndent(sv.Envelope, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: sv.ID + ".json", ContentType: "application/json", Data: b}, nil
	default:
		return nil, NewInvalidError("unsupported format")
	}
}

// ExportQuestionsCSV renders one row per question in survey order, both languages side by side.
func ExportQuestionsCSV(env builder.Envelope) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{
		"position", "type", "required", "text_en", "text_ar", "description_en", "description_ar",
		"options_en", "options_ar", "option_values", "min", "max", "step",
	})
	join := func(ss []string) string { return strings.Join(ss, " | ") }
	for _, q := range env.Questions {
		var optsEn, optsAr, values []string
		var min, max, step string
		switch o := q.Options.(type) {
		case *builder.ChoiceOptions:
			for _, c := range o.Choices {
				optsEn = append(optsEn, c.Text)
				optsAr = append(optsAr, c.TextLocalized)
				values = append(values, c.Value)
			}
		case *builder.RatingOptions:
			min, max = "1", strconv.Itoa(o.MaxRating)
			optsEn, optsAr = o.Labels, o.LabelsLocalized
		case *builder.RangeOptions:
			min, max = strconv.Itoa(o.MinValue), strconv.Itoa(o.MaxValue)
			if o.Step > 0 {
				step = strconv.Itoa(o.Step)
			}
			optsEn = []string{o.Labels.Min.Text, o.Labels.Max.Text}
			optsAr = []string{o.Labels.Min.Localized, o.Labels.Max.Localized}
		}
		rec := []string{
			strconv.Itoa(q.OrderIndex + 1),
			string(q.Type),
			strconv.FormatBool(q.Required),
			q.Text.Text, q.Text.Localized,
			q.Description.Text, q.Description.Localized,
			join(optsEn), join(optsAr), join(values),
			min, max, step,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

package utils

// Server-side UI strings for the builder chrome. Question content is authored by users and
// never goes through this table.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":                "ok",
		"builder.drag":             "Drag to reorder",
		"builder.duplicate":        "Duplicate",
		"builder.delete":           "Delete",
		"builder.required":         "Required",
		"builder.empty":            "Add a question from the palette to get started.",
		"builder.untitled":         "Untitled question",
		"editor.empty":             "Select a question to edit its properties.",
		"editor.text":              "Question text (English)",
		"editor.text_localized":    "Question text (Arabic)",
		"editor.description":       "Help text (English)",
		"editor.description_local": "Help text (Arabic)",
		"editor.required":          "Required question",
		"editor.no_options":        "This question type has no additional settings.",
		"editor.lang_en":           "English",
		"editor.lang_ar":           "Arabic",
		"editor.choices":           "Choices",
		"editor.choice_value":      "Value",
		"editor.add_choice":        "Add choice",
		"editor.remove_choice":     "Remove",
		"editor.max_rating":        "Maximum rating",
		"editor.score_labels":      "Score labels",
		"editor.min_value":         "Minimum",
		"editor.max_value":         "Maximum",
		"editor.step":              "Step",
		"editor.min_label":         "Minimum label",
		"editor.max_label":         "Maximum label",
		"preview.select":           "Select an option",
		"preview.untitled_survey":  "Untitled survey",
		"save.retry":               "Saving failed. Your changes are kept; please try again.",
		"error.bad_request":        "The request could not be understood.",
		"error.unknown_type":       "Unknown question type.",
		"error.session_gone":       "This editing session has expired.",
		"error.not_found":          "Not found.",
		"error.forbidden":          "You do not have access to this survey.",
	},
	"ar": {
		"health.ok":                "تمام",
		"builder.drag":             "اسحب لإعادة الترتيب",
		"builder.duplicate":        "تكرار",
		"builder.delete":           "حذف",
		"builder.required":         "إلزامي",
		"builder.empty":            "أضف سؤالاً من القائمة للبدء.",
		"builder.untitled":         "سؤال بدون عنوان",
		"editor.empty":             "اختر سؤالاً لتعديل خصائصه.",
		"editor.text":              "نص السؤال (الإنجليزية)",
		"editor.text_localized":    "نص السؤال (العربية)",
		"editor.description":       "نص المساعدة (الإنجليزية)",
		"editor.description_local": "نص المساعدة (العربية)",
		"editor.required":          "سؤال إلزامي",
		"editor.no_options":        "لا توجد إعدادات إضافية لهذا النوع من الأسئلة.",
		"editor.lang_en":           "الإنجليزية",
		"editor.lang_ar":           "العربية",
		"editor.choices":           "الخيارات",
		"editor.choice_value":      "القيمة",
		"editor.add_choice":        "إضافة خيار",
		"editor.remove_choice":     "إزالة",
		"editor.max_rating":        "أعلى تقييم",
		"editor.score_labels":      "تسميات الدرجات",
		"editor.min_value":         "الحد الأدنى",
		"editor.max_value":         "الحد الأقصى",
		"editor.step":              "الخطوة",
		"editor.min_label":         "تسمية الحد الأدنى",
		"editor.max_label":         "تسمية الحد الأقصى",
		"preview.select":           "اختر خياراً",
		"preview.untitled_survey":  "استبيان بدون عنوان",
		"save.retry":               "فشل الحفظ. تم الاحتفاظ بتغييراتك، يرجى المحاولة مرة أخرى.",
		"error.bad_request":        "تعذر فهم الطلب.",
		"error.unknown_type":       "نوع سؤال غير معروف.",
		"error.session_gone":       "انتهت صلاحية جلسة التحرير هذه.",
		"error.not_found":          "غير موجود.",
		"error.forbidden":          "ليس لديك صلاحية الوصول إلى هذا الاستبيان.",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

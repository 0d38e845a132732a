// Package validate wraps go-playground/validator with Arabic/English
// error messages keyed by validation tag.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mizanhq/mizan/internal/i18n"
)

var v = newValidator()

// newValidator builds the shared validator instance. Field names in
// error messages come from the json tag so they match the wire format.
func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// tagMessages maps language -> validation tag -> message format.
// The first verb is the field name; the second, when present, the tag param.
var tagMessages = map[i18n.Lang]map[string]string{
	i18n.LangEN: {
		"required": "field %s is required",
		"email":    "field %s must be a valid email address",
		"min":      "field %s must be at least %s characters",
		"max":      "field %s must be at most %s characters",
		"gte":      "field %s must be at least %s",
		"lte":      "field %s must be at most %s",
		"gt":       "field %s must be greater than %s",
		"lt":       "field %s must be less than %s",
		"gtfield":  "field %s must be greater than field %s",
		"oneof":    "field %s must be one of: %s",
		"url":      "field %s must be a valid URL",
	},
	i18n.LangAR: {
		"required": "الحقل %s مطلوب",
		"email":    "يجب أن يكون الحقل %s بريدًا إلكترونيًا صالحًا",
		"min":      "يجب ألا يقل الحقل %s عن %s أحرف",
		"max":      "يجب ألا يزيد الحقل %s عن %s أحرف",
		"gte":      "يجب ألا يقل الحقل %s عن %s",
		"lte":      "يجب ألا يزيد الحقل %s عن %s",
		"gt":       "يجب أن يكون الحقل %s أكبر من %s",
		"lt":       "يجب أن يكون الحقل %s أقل من %s",
		"gtfield":  "يجب أن يكون الحقل %s أكبر من الحقل %s",
		"oneof":    "يجب أن يكون الحقل %s واحدًا من: %s",
		"url":      "يجب أن يكون الحقل %s رابطًا صالحًا",
	},
}

// FieldError is a single localized validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the set of validation failures for one request.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Message
	}
	return strings.Join(parts, "; ")
}

// Struct validates s against its `validate` tags and returns localized
// field errors, or nil when the struct is valid.
func Struct(lang i18n.Lang, s any) Errors {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{{Field: "", Message: err.Error()}}
	}

	msgs := tagMessages[lang]
	if msgs == nil {
		msgs = tagMessages[i18n.LangEN]
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		format, ok := msgs[fe.Tag()]
		if !ok {
			format, ok = tagMessages[i18n.LangEN][fe.Tag()]
			if !ok {
				format = "field %s is invalid"
			}
		}

		var msg string
		if strings.Count(format, "%s") == 2 {
			msg = fmt.Sprintf(format, field, fe.Param())
		} else {
			msg = fmt.Sprintf(format, field)
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}

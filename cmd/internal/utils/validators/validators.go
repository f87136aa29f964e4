package validators

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator reporting json field names and carrying the
// custom tags used by the request contracts.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	_ = validate.RegisterValidation("notblank", NotBlank)
	return validate
}

// NotBlank rejects strings that are empty once surrounding whitespace is
// trimmed. The value itself is left untouched.
func NotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

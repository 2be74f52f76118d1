package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator plugs go-playground/validator into echo. Validation errors report
// the wire name of the offending field (json, param, query or header tag)
// instead of the Go field name.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()

	wireTags := []string{"json", "param", "query", "header"}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range wireTags {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})

	return &Validator{validate: validate}
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

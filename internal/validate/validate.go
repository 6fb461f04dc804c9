// Package validate adapts go-playground/validator to echo's Validator
// interface. Failures report every violated rule, not just the first.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zorlakov/devconnect/internal/httperr"
)

type Validator struct {
	v *validator.Validate
}

// Errors carries the field-level messages for a failed request body.
type Errors struct {
	Fields []httperr.FieldError
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Msg)
	}
	return strings.Join(msgs, "; ")
}

func New() *Validator {
	v := validator.New()
	// Report fields by their json name so error payloads match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (val *Validator) Validate(i interface{}) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &Errors{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, httperr.FieldError{
			Field: fe.Field(),
			Msg:   message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", title(fe.Field()))
	case "email":
		return "Please include a valid email"
	case "min":
		if fe.Field() == "password" {
			return "Please enter a password with 6 or more characters"
		}
		return fmt.Sprintf("%s must be at least %s characters", title(fe.Field()), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", title(fe.Field()))
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// ошибки по полям называются так же, как поля в JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func validateStruct(v any) FieldErrors {
	fe := FieldErrors{}
	err := validate.Struct(v)
	if err == nil {
		return fe
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		fe.Add("_", err.Error())
		return fe
	}
	for _, e := range ve {
		fe.Add(e.Field(), describe(e))
	}
	return fe
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	default:
		return "invalid value"
	}
}

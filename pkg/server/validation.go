package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingErrorMessage renders a gin JSON-binding error in the shape
// spec.md §8 scenario S4 expects: "missing field `x`" for a required
// field, or the validator's own message otherwise.
func bindingErrorMessage(reqType interface{}, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	t := reflect.TypeOf(reqType)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var messages []string
	for _, fe := range verrs {
		jsonName := jsonFieldName(t, fe.StructField())
		if fe.Tag() == "required" {
			messages = append(messages, fmt.Sprintf("missing field `%s`", jsonName))
		} else {
			messages = append(messages, fmt.Sprintf("field `%s` failed validation `%s`", jsonName, fe.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}

func jsonFieldName(t reflect.Type, fieldName string) string {
	field, ok := t.FieldByName(fieldName)
	if !ok {
		return strings.ToLower(fieldName)
	}
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return strings.ToLower(fieldName)
	}
	return strings.Split(tag, ",")[0]
}

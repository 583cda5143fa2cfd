package handlers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
)

// fieldMessages overrides the message for a (json field, validation tag) pair.
type fieldMessages map[string]map[string]string

// defaultTagMessages are used when no field specific message exists.
var defaultTagMessages = map[string]string{
	"required": constants.MsgRequiredField,
	"email":    constants.MsgEmailInvalid,
	"max":      constants.MsgMaxLength,
}

// bindJSON binds the request body into req and writes a 400 envelope on
// failure. It reports whether the handler should continue.
func bindJSON(c *gin.Context, req any, messages fieldMessages) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrs):
		fields := apierrors.FieldErrors{}
		for _, fe := range validationErrs {
			name := jsonFieldName(req, fe.StructField())
			fields.Add(name, messageFor(messages, name, fe.Tag()))
		}
		apierrors.ValidationFailed(c, fields)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		apierrors.ValidationFailed(c, apierrors.NewFieldError(typeErr.Field, constants.MsgInvalidField))
	default:
		apierrors.BadRequest(c, "Invalid request body")
	}
	return false
}

func messageFor(messages fieldMessages, field, tag string) string {
	if msg, ok := messages[field][tag]; ok {
		return msg
	}
	if msg, ok := defaultTagMessages[tag]; ok {
		return msg
	}
	return constants.MsgInvalidField
}

// jsonFieldName maps a struct field of req to its json key.
func jsonFieldName(req any, structField string) string {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	field, ok := t.FieldByName(structField)
	if !ok {
		return strings.ToLower(structField)
	}

	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(structField)
	}
	return name
}

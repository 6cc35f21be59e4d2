package httpapi

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dew-13/solestyle/internal/apperr"
)

var jsonNamesOnce sync.Once

// useJSONFieldNames makes validation errors name fields by their json tag.
func useJSONFieldNames() {
	jsonNamesOnce.Do(registerJSONNames)
}

func registerJSONNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// bindErr turns a bind or validation failure into a field level Invalid error.
func bindErr(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.InvalidErr("request body is not valid JSON for this endpoint", nil)
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		fields[key] = messageForTag(fe.Tag(), fe.Param())
	}
	return apperr.InvalidErr("please correct the highlighted fields", fields)
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + param
	default:
		return "invalid value"
	}
}

package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// FieldError describes one failed struct tag
type FieldError struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// report json names so errors match what clients sent
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// ValidateStruct runs struct tag validation and lists every failure
func ValidateStruct(data any) []*FieldError {
	var out []*FieldError
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*FieldError{{FailedField: "", Tag: "invalid", Value: err.Error()}}
	}
	for _, fe := range verrs {
		out = append(out, &FieldError{
			FailedField: fe.Field(),
			Tag:         fe.Tag(),
			Value:       fe.Param(),
		})
	}
	return out
}

// Check validates data and reports the first failure as a ValidationError
func Check(data any) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	reason := fmt.Sprintf("failed on tag '%s'", first.Tag)
	if first.Value != "" {
		reason = fmt.Sprintf("failed on tag '%s=%s'", first.Tag, first.Value)
	}
	return entities.NewValidationError(first.FailedField, "%s", reason)
}

// Package validator adapts go-playground/validator to echo and to the API's
// historical per-field error messages.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	domainerrors "sprout/internal/domain/errors"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates the request validator. Field names in error messages come from
// the `label` struct tag so messages keep their exact historical wording
// ("FCM TOKEN parameter is required", "lightIntensity parameter is required").
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &CustomValidator{validate: v}
}

// Validate reports the first failing field as a 400 validation error.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return domainerrors.NewValidationError(
			fmt.Sprintf("%s parameter is required", fieldErrors[0].Field()),
		)
	}

	return errors.Wrap(err, "validate request")
}

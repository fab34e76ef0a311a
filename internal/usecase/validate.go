// Package usecase holds the orchestration logic: one business operation per
// type, one unit-of-work lifecycle per Execute call. Notification intents
// are dispatched only after a successful commit; authorization is checked
// before any unit of work is opened.
package usecase

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	errs "workshop-booking/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateInput runs struct validation and converts failures into a single
// validation-kind error listing the offending fields.
func validateInput(op string, in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs.NewValidation(op, "invalid input", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return errs.NewValidation(op, "invalid input: "+strings.Join(parts, ", "), nil)
}

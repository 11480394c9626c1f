package services

import (
	"dm-lab/errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

// validateCommand checks the struct tags of a command and reports every failing field at once.
func validateCommand(cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		fields := lo.Map(fieldErrors, func(fe validator.FieldError, _ int) string {
			return fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag())
		})
		return fmt.Errorf("%w: invalid %s", errors.ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", errors.ErrValidation, err)
}

// requireText rejects texts made only of whitespace, which the "required" tag lets through.
func requireText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text must not be empty", errors.ErrValidation)
	}
	return nil
}

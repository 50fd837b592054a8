package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs the `validate` struct tags on s and flattens failures into one error.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		if e.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s failed %s=%s", e.Namespace(), e.Tag(), e.Param()))
		} else {
			messages = append(messages, fmt.Sprintf("%s failed %s", e.Namespace(), e.Tag()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

func errUnlockedWithoutTime(id string) error {
	return fmt.Errorf("achievement %s is unlocked without unlockedAt", id)
}

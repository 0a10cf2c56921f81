package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the account-specific rules.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator with the "phone" rule registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone", isPhone)
	return &Validator{validate: v}
}

// Struct validates s and flattens field errors into one readable error.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Var validates a single value against tag.
func (v *Validator) Var(field string, value interface{}, tag string) error {
	if err := v.validate.Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%s %s", field, ruleText(fieldErrs[0].Tag(), fieldErrs[0].Param()))
		}
		return err
	}
	return nil
}

func describe(fe validator.FieldError) string {
	return fmt.Sprintf("%s %s", lowerFirst(fe.Field()), ruleText(fe.Tag(), fe.Param()))
}

func ruleText(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be 10 to 15 characters of digits, optionally prefixed with +"
	case "min":
		return fmt.Sprintf("must be at least %s characters", param)
	case "max":
		return fmt.Sprintf("must be at most %s characters", param)
	default:
		return fmt.Sprintf("failed %s validation", tag)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// isPhone counts the optional leading + towards the 10..15 length, matching
// the width of the phone_number column.
func isPhone(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if len(raw) < 10 || len(raw) > 15 {
		return false
	}
	for _, r := range strings.TrimPrefix(raw, "+") {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

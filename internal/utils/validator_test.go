package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	FullName    string `validate:"required,max=255"`
	Email       string `validate:"required,email"`
	PhoneNumber string `validate:"required,phone"`
	Password    string `validate:"required,min=6,max=72"`
}

func TestValidatorAcceptsValidInput(t *testing.T) {
	v := NewValidator()

	err := v.Struct(signup{FullName: "Ann", Email: "a@x.com", PhoneNumber: "+998901234567", Password: "secret1"})
	assert.NoError(t, err)
}

func TestValidatorReportsEveryField(t *testing.T) {
	v := NewValidator()

	err := v.Struct(signup{FullName: "Ann", Email: "nope", PhoneNumber: "12ab", Password: "123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "phoneNumber must be 10 to 15 characters")
	assert.Contains(t, err.Error(), "password must be at least 6 characters")
}

func TestValidatorPhoneRule(t *testing.T) {
	v := NewValidator()

	cases := map[string]bool{
		"0123456789":       true,
		"+0123456789":      true,
		"123456789012345":  true,
		"123456789":        false,
		"+12345678901234":  true,
		"1234567890123456": false,
		"+123456789012345": false,
		"+":                false,
		"++12345678901":    false,
		"01234-56789":      false,
		"":                 false,
	}
	for phone, ok := range cases {
		err := v.Var("phoneNumber", phone, "phone")
		if ok {
			assert.NoError(t, err, phone)
		} else {
			assert.Error(t, err, phone)
		}
	}
}

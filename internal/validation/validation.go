// Package validation holds the input format checks shared by the client forms
// and the API request binding.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{11}$`)
)

// Email is a loose shape check, not RFC 5322.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// Phone accepts exactly 11 digits with no separators.
func Phone(s string) bool {
	return phoneRe.MatchString(s)
}

const (
	MinPasswordLength = 8
	PasswordSymbols   = "@$!%*?&"
)

type PasswordPolicy string

const (
	PolicyBasic  PasswordPolicy = "basic"
	PolicyStrict PasswordPolicy = "strict"
)

// ParsePolicy maps a config value to a policy; empty means basic.
func ParsePolicy(s string) (PasswordPolicy, error) {
	switch PasswordPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyBasic:
		return PolicyBasic, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown password policy %q", s)
}

// Check reports whether password satisfies the policy.
func (p PasswordPolicy) Check(password string) bool {
	if len([]rune(password)) < MinPasswordLength {
		return false
	}
	if p != PolicyStrict {
		return true
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// Describe is a human readable rule, used in error messages.
func (p PasswordPolicy) Describe() string {
	if p == PolicyStrict {
		return fmt.Sprintf("at least %d characters with upper and lower case letters, a digit and one of %s", MinPasswordLength, PasswordSymbols)
	}
	return fmt.Sprintf("at least %d characters", MinPasswordLength)
}

// Register installs the looseemail, phone11 and password tags on v.
func Register(v *validator.Validate, policy PasswordPolicy) error {
	if err := v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return Email(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("phone11", func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return policy.Check(fl.Field().String())
	})
}

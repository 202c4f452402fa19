// Package identity classifies login identifiers by shape.
//
// Classification is a client-side pre-validation aid only. The server never
// uses it to pick a lookup column: login always matches the stored
// emailOrPhone exactly, so a username only logs in when it is also the
// registered identifier.
package identity

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Kind is the shape of a login identifier.
type Kind int

const (
	KindUnknown Kind = iota
	KindPhone
	KindEmail
	KindUsername
)

func (k Kind) String() string {
	switch k {
	case KindPhone:
		return "phone"
	case KindEmail:
		return "email"
	case KindUsername:
		return "username"
	default:
		return "unknown"
	}
}

var (
	phonePattern    = regexp.MustCompile(`^\d{10}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,20}$`)
)

// IsPhone reports whether s is exactly ten digits.
func IsPhone(s string) bool { return phonePattern.MatchString(s) }

// IsEmail reports whether s has local@domain.tld shape with a TLD of at least two letters.
func IsEmail(s string) bool { return emailPattern.MatchString(s) }

// IsUsername reports whether s is 3 to 20 letters, digits, dots, underscores or hyphens.
func IsUsername(s string) bool { return usernamePattern.MatchString(s) }

// Classify returns the first matching shape, tried phone, email, username.
// A ten digit string is also a valid username; phone wins.
func Classify(s string) Kind {
	switch {
	case IsPhone(s):
		return KindPhone
	case IsEmail(s):
		return KindEmail
	case IsUsername(s):
		return KindUsername
	default:
		return KindUnknown
	}
}

// IsContactIdentifier reports whether s can be registered as an account's emailOrPhone.
func IsContactIdentifier(s string) bool {
	k := Classify(s)
	return k == KindPhone || k == KindEmail
}

// RegisterValidations adds the identifier tags to v: login_identifier (phone,
// email or username) and contact_identifier (phone or email).
func RegisterValidations(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		"login_identifier":   func(s string) bool { return Classify(s) != KindUnknown },
		"contact_identifier": IsContactIdentifier,
	}
	for tag, fn := range rules {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

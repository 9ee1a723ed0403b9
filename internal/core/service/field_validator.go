package service

import (
	"fmt"
	"strings"

	"github.com/soteria/accounts-system/internal/core/domain"
)

const (
	usernameMinLength = 1
	passwordMinLength = 8
	// bcrypt silently truncates input beyond 72 bytes. Rejecting longer
	// passwords up front surfaces the limit to the caller instead of
	// weakening the stored credential.
	passwordMaxLength = 72
)

// requiredFields is the declared field order; rules report the first offender
// in this order.
var requiredFields = []string{"username", "password", "role"}

// credentialFields are subject to the surrounding-whitespace rule. A user who
// types "foobar " wants that exact password, so we reject it loudly rather
// than trim it silently and lock them out later. role is not a credential
// and is exempt.
var credentialFields = []string{"username", "password"}

// rule inspects the raw request body and returns the first violation it
// finds, or nil. Rules never mutate the body.
type rule func(body map[string]any) *domain.ValidationError

// registrationRules is the fail-fast pipeline in precedence order. A rule may
// assume everything earlier rules established (the whitespace and size rules
// read fields as strings without re-checking presence or type).
var registrationRules = []rule{
	checkPresence,
	checkStringType,
	checkSurroundingWhitespace,
	checkTooShort,
	checkTooLong,
}

// ValidateRegistration classifies a raw registration body as received from
// the transport layer, before any schema coercion. It returns the first
// violated rule, or nil when the request is well-formed. Keys beyond the
// required three are ignored. The function is pure: same body, same verdict.
func ValidateRegistration(body map[string]any) *domain.ValidationError {
	for _, r := range registrationRules {
		if v := r(body); v != nil {
			return v
		}
	}
	return nil
}

func checkPresence(body map[string]any) *domain.ValidationError {
	for _, field := range requiredFields {
		if _, ok := body[field]; !ok {
			return &domain.ValidationError{
				Kind:    domain.MissingField,
				Field:   field,
				Message: "Missing field",
			}
		}
	}
	return nil
}

func checkStringType(body map[string]any) *domain.ValidationError {
	for _, field := range requiredFields {
		if _, ok := body[field].(string); !ok {
			return &domain.ValidationError{
				Kind:    domain.TypeMismatch,
				Field:   field,
				Message: "Incorrect field type: expected string",
			}
		}
	}
	return nil
}

func checkSurroundingWhitespace(body map[string]any) *domain.ValidationError {
	for _, field := range credentialFields {
		value := body[field].(string)
		if strings.TrimSpace(value) != value {
			return &domain.ValidationError{
				Kind:    domain.UntrimmedField,
				Field:   field,
				Message: "Cannot start or end with whitespace",
			}
		}
	}
	return nil
}

// Sizes are measured on the trimmed value. For username and password the
// whitespace rule already guarantees trimmed == raw; trimming here keeps the
// measurement rule self-contained.

func checkTooShort(body map[string]any) *domain.ValidationError {
	minimums := []struct {
		field string
		min   int
	}{
		{"username", usernameMinLength},
		{"password", passwordMinLength},
	}
	for _, m := range minimums {
		value := strings.TrimSpace(body[m.field].(string))
		if len(value) < m.min {
			return &domain.ValidationError{
				Kind:    domain.TooShort,
				Field:   m.field,
				Message: fmt.Sprintf("Must be at least %d characters long", m.min),
			}
		}
	}
	return nil
}

func checkTooLong(body map[string]any) *domain.ValidationError {
	value := strings.TrimSpace(body["password"].(string))
	if len(value) > passwordMaxLength {
		return &domain.ValidationError{
			Kind:    domain.TooLong,
			Field:   "password",
			Message: fmt.Sprintf("Must be at most %d characters long", passwordMaxLength),
		}
	}
	return nil
}

package validation

import (
	"fmt"
	"net/mail"
	"unicode/utf8"
)

// Errors collects field-level validation failures, keyed by field name.
// It marshals directly into the `details` member of error envelopes.
type Errors map[string][]string

// Add records a failure message for the named field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Empty reports whether no failures were recorded.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Required records a failure when the value is empty.
func (e Errors) Required(field, value string) {
	if value == "" {
		e.Add(field, "is required")
	}
}

// Email records a failure when the value is not a parseable address.
func (e Errors) Email(field, value string) {
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		e.Add(field, "must be a valid email address")
	}
}

// MinLen records a failure when the value is shorter than min runes.
func (e Errors) MinLen(field, value string, min int) {
	if value == "" {
		return
	}
	if utf8.RuneCountInString(value) < min {
		e.Add(field, fmt.Sprintf("must be at least %d characters", min))
	}
}

// MaxLen records a failure when the value exceeds max runes.
func (e Errors) MaxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		e.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// Positive records a failure when the value is not a positive identifier.
func (e Errors) Positive(field string, value int64) {
	if value <= 0 {
		e.Add(field, "must be a positive integer")
	}
}

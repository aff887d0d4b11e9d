package validator

import (
	"errors"
	"strings"
)

// ErrValidation matches every ValidationErrors value.
var ErrValidation = errors.New("validation error")

// ValidationError describes one failed rule on one field.
// TranslationKey and TranslationValues let callers localize the message.
type ValidationError struct {
	Field             string         `json:"field"`
	Message           string         `json:"message"`
	TranslationKey    string         `json:"translation_key,omitempty"`
	TranslationValues map[string]any `json:"translation_values,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every failed rule of a struct.
type ValidationErrors []ValidationError

// Add appends err.
func (v *ValidationErrors) Add(err ValidationError) {
	*v = append(*v, err)
}

// IsEmpty reports whether no rule failed.
func (v ValidationErrors) IsEmpty() bool {
	return len(v) == 0
}

// Has reports whether field has at least one failure.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Is reports whether target is ErrValidation.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Rule pairs a deferred check with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// passRule is returned for rules that do not apply to a value's kind.
func passRule() Rule {
	return Rule{Check: func() bool { return true }}
}

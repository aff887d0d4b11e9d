package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Required checks that a string is not blank.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MinLenString checks that value has at least min characters.
func MinLenString(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= min },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %d characters long", min),
			TranslationKey:    "validation.min_length",
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

// MaxLenString checks that value has at most max characters.
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// ValidEmail checks that value is a bare email address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			return err == nil && addr.Address == value
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid email address",
			TranslationKey:    "validation.email",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// ValidUUID checks that value parses as a UUID of any version.
func ValidUUID(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return uuid.Validate(value) == nil
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid UUID",
			TranslationKey:    "validation.uuid",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// ValidUUIDVersion checks that value is a UUID of the given version.
func ValidUUIDVersion(field, value string, version int) Rule {
	return Rule{
		Check: func() bool {
			id, err := uuid.Parse(value)
			return err == nil && int(id.Version()) == version
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be a valid UUID v%d", version),
			TranslationKey:    "validation.uuid_version",
			TranslationValues: map[string]any{"field": field, "version": version},
		},
	}
}

// ValidAlphanumeric checks that value holds only letters and digits.
func ValidAlphanumeric(field, value string) Rule {
	return Rule{
		Check: func() bool {
			for _, r := range value {
				if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must contain only letters and numbers",
			TranslationKey:    "validation.alphanum",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// InList checks that value is one of allowed.
func InList(field, value string, allowed []string) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{
			Field:             field,
			Message:           "must be one of: " + strings.Join(allowed, ", "),
			TranslationKey:    "validation.in",
			TranslationValues: map[string]any{"field": field, "values": allowed},
		},
	}
}

// NotInList checks that value is none of forbidden.
func NotInList(field, value string, forbidden []string) Rule {
	return Rule{
		Check: func() bool { return !slices.Contains(forbidden, value) },
		Error: ValidationError{
			Field:             field,
			Message:           "must not be one of: " + strings.Join(forbidden, ", "),
			TranslationKey:    "validation.not_in",
			TranslationValues: map[string]any{"field": field, "values": forbidden},
		},
	}
}

var regexCache sync.Map

// MatchesRegex checks value against pattern. Compiled patterns are cached.
// An invalid pattern never matches.
func MatchesRegex(field, value, pattern, description string) Rule {
	return Rule{
		Check: func() bool {
			re, err := compile(pattern)
			return err == nil && re.MatchString(value)
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must match " + description,
			TranslationKey:    "validation.regex",
			TranslationValues: map[string]any{"field": field, "pattern": description},
		},
	}
}

func compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// ValidatorFunc builds the Rule for one tag on one field.
type ValidatorFunc func(field string, value reflect.Value, params []string) Rule

var (
	registryMu sync.RWMutex
	registry   = map[string]ValidatorFunc{
		"required": requiredValidator,
		"min":      minValidator,
		"max":      maxValidator,
		"len":      lenValidator,
		"between":  betweenValidator,
		"email":    emailValidator,
		"uuid":     uuidValidator,
		"alphanum": alphanumValidator,
		"in":       inValidator,
		"not_in":   notInValidator,
		"prefix":   prefixValidator,
		"regex":    regexValidator,
		"positive": positiveValidator,
		"nonzero":  nonZeroValidator,
	}
)

// RegisterValidator adds a custom validator function to the registry.
//
// Example:
//
//	validator.RegisterValidator("sku", func(field string, v reflect.Value, _ []string) validator.Rule {
//	    return validator.MatchesRegex(field, v.String(), `^[A-Z]{3}-\d{4}$`, "SKU format")
//	})
func RegisterValidator(name string, fn ValidatorFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// ValidateStruct validates a struct based on its `validate` field tags.
// Rules are separated by semicolons, parameters follow a colon and are
// comma-separated: `validate:"required;between:1,99"`.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return fmt.Errorf("validator: must pass a pointer to struct")
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("validator: must pass a pointer to struct")
	}

	var errors ValidationErrors
	validateStructRecursive(rv, "", &errors)

	if errors.IsEmpty() {
		return nil
	}
	return errors
}

func validateStructRecursive(rv reflect.Value, prefix string, errors *ValidationErrors) {
	rt := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}

		structField := rt.Field(i)
		tag := structField.Tag.Get("validate")
		if tag == "-" {
			continue
		}

		fieldPath := structField.Name
		if prefix != "" {
			fieldPath = prefix + "." + structField.Name
		}

		// Nested structs without a tag are always walked.
		if field.Kind() == reflect.Struct && tag == "" {
			validateStructRecursive(field, fieldPath, errors)
			continue
		}

		if field.Kind() == reflect.Pointer {
			switch {
			case field.IsNil():
				if tag != "" {
					validateField(fieldPath, field, tag, errors)
				}
			case field.Elem().Kind() == reflect.Struct && tag == "":
				validateStructRecursive(field.Elem(), fieldPath, errors)
			case tag != "":
				validateField(fieldPath, field.Elem(), tag, errors)
			}
			continue
		}

		if tag == "" {
			continue
		}
		validateField(fieldPath, field, tag, errors)
	}
}

func validateField(fieldPath string, field reflect.Value, tag string, errors *ValidationErrors) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for ruleStr := range strings.SplitSeq(tag, ";") {
		ruleStr = strings.TrimSpace(ruleStr)
		if ruleStr == "" {
			continue
		}

		name, paramStr, _ := strings.Cut(ruleStr, ":")
		name = strings.TrimSpace(name)

		var params []string
		if paramStr = strings.TrimSpace(paramStr); paramStr != "" {
			params = strings.Split(paramStr, ",")
			for i := range params {
				params[i] = strings.TrimSpace(params[i])
			}
		}

		if validatorFn, ok := registry[name]; ok {
			rule := validatorFn(fieldPath, field, params)
			if !rule.Check() {
				errors.Add(rule.Error)
			}
		}
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// number reads any numeric kind as float64 for range checks.
func number(v reflect.Value) float64 {
	switch k := v.Kind(); {
	case isInt(k):
		return float64(v.Int())
	case isUint(k):
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

func requiredValidator(field string, value reflect.Value, params []string) Rule {
	return Rule{
		Check: func() bool {
			switch value.Kind() {
			case reflect.String:
				return strings.TrimSpace(value.String()) != ""
			case reflect.Slice, reflect.Map, reflect.Array:
				return value.Len() > 0
			case reflect.Pointer, reflect.Interface:
				return !value.IsNil()
			default:
				return !value.IsZero()
			}
		},
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

func minValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}

	switch k := value.Kind(); {
	case k == reflect.String:
		min, _ := strconv.Atoi(params[0])
		return MinLenString(field, value.String(), min)
	case k == reflect.Slice || k == reflect.Array:
		min, _ := strconv.Atoi(params[0])
		return Rule{
			Check: func() bool { return value.Len() >= min },
			Error: ValidationError{
				Field:             field,
				Message:           fmt.Sprintf("must have at least %d items", min),
				TranslationKey:    "validation.min_items",
				TranslationValues: map[string]any{"field": field, "min": min},
			},
		}
	case isNumber(k):
		min, _ := strconv.ParseFloat(params[0], 64)
		return Rule{
			Check: func() bool { return number(value) >= min },
			Error: ValidationError{
				Field:             field,
				Message:           "must be at least " + params[0],
				TranslationKey:    "validation.min",
				TranslationValues: map[string]any{"field": field, "min": min},
			},
		}
	default:
		return passRule()
	}
}

func maxValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}

	switch k := value.Kind(); {
	case k == reflect.String:
		max, _ := strconv.Atoi(params[0])
		return MaxLenString(field, value.String(), max)
	case k == reflect.Slice || k == reflect.Array:
		max, _ := strconv.Atoi(params[0])
		return Rule{
			Check: func() bool { return value.Len() <= max },
			Error: ValidationError{
				Field:             field,
				Message:           fmt.Sprintf("must have at most %d items", max),
				TranslationKey:    "validation.max_items",
				TranslationValues: map[string]any{"field": field, "max": max},
			},
		}
	case isNumber(k):
		max, _ := strconv.ParseFloat(params[0], 64)
		return Rule{
			Check: func() bool { return number(value) <= max },
			Error: ValidationError{
				Field:             field,
				Message:           "must be at most " + params[0],
				TranslationKey:    "validation.max",
				TranslationValues: map[string]any{"field": field, "max": max},
			},
		}
	default:
		return passRule()
	}
}

func lenValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}

	expected, _ := strconv.Atoi(params[0])

	switch value.Kind() {
	case reflect.String:
		return Rule{
			Check: func() bool { return len(value.String()) == expected },
			Error: ValidationError{
				Field:             field,
				Message:           fmt.Sprintf("must be exactly %d characters long", expected),
				TranslationKey:    "validation.exact_length",
				TranslationValues: map[string]any{"field": field, "len": expected},
			},
		}
	case reflect.Slice, reflect.Array:
		return Rule{
			Check: func() bool { return value.Len() == expected },
			Error: ValidationError{
				Field:             field,
				Message:           fmt.Sprintf("must have exactly %d items", expected),
				TranslationKey:    "validation.exact_items",
				TranslationValues: map[string]any{"field": field, "len": expected},
			},
		}
	default:
		return passRule()
	}
}

func betweenValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 2 {
		return passRule()
	}

	switch k := value.Kind(); {
	case k == reflect.String:
		min, _ := strconv.Atoi(params[0])
		max, _ := strconv.Atoi(params[1])
		return Rule{
			Check: func() bool {
				l := len(value.String())
				return l >= min && l <= max
			},
			Error: ValidationError{
				Field:             field,
				Message:           fmt.Sprintf("must be between %d and %d characters long", min, max),
				TranslationKey:    "validation.between_length",
				TranslationValues: map[string]any{"field": field, "min": min, "max": max},
			},
		}
	case isNumber(k):
		min, _ := strconv.ParseFloat(params[0], 64)
		max, _ := strconv.ParseFloat(params[1], 64)
		return Rule{
			Check: func() bool {
				n := number(value)
				return n >= min && n <= max
			},
			Error: ValidationError{
				Field:             field,
				Message:           "must be between " + params[0] + " and " + params[1],
				TranslationKey:    "validation.between",
				TranslationValues: map[string]any{"field": field, "min": min, "max": max},
			},
		}
	default:
		return passRule()
	}
}

func emailValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return passRule()
	}
	return ValidEmail(field, value.String())
}

func uuidValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return passRule()
	}

	version := 0
	if len(params) > 0 {
		version, _ = strconv.Atoi(params[0])
	}
	if version > 0 {
		return ValidUUIDVersion(field, value.String(), version)
	}
	return ValidUUID(field, value.String())
}

func alphanumValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return passRule()
	}
	return ValidAlphanumeric(field, value.String())
}

func inValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return passRule()
	}
	return InList(field, value.String(), params)
}

func notInValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return passRule()
	}
	return NotInList(field, value.String(), params)
}

func prefixValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String || len(params) < 1 {
		return passRule()
	}
	prefix := params[0]
	return Rule{
		Check: func() bool { return strings.HasPrefix(value.String(), prefix) },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must start with '%s'", prefix),
			TranslationKey:    "validation.prefix",
			TranslationValues: map[string]any{"field": field, "prefix": prefix},
		},
	}
}

func regexValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String || len(params) < 1 {
		return passRule()
	}
	description := "pattern"
	if len(params) > 1 {
		description = params[1]
	}
	return MatchesRegex(field, value.String(), params[0], description)
}

func positiveValidator(field string, value reflect.Value, params []string) Rule {
	if !isNumber(value.Kind()) {
		return passRule()
	}
	return Rule{
		Check: func() bool { return number(value) > 0 },
		Error: ValidationError{
			Field:             field,
			Message:           "must be positive",
			TranslationKey:    "validation.positive",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

func nonZeroValidator(field string, value reflect.Value, params []string) Rule {
	return Rule{
		Check: func() bool { return !value.IsZero() },
		Error: ValidationError{
			Field:             field,
			Message:           "must not be zero",
			TranslationKey:    "validation.nonzero",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

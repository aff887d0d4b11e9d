package validator

import (
	"context"
	"errors"
	"reflect"

	"github.com/retailhub/foundation/core/pipeline"
)

// Tags returns a pipeline.Validator that checks `validate` struct tags on
// every struct request. Requests that are not structs pass untouched.
//
// Example:
//
//	type CreateSale struct {
//	    StoreID string   `validate:"required;uuid"`
//	    Items   []string `validate:"min:1"`
//	}
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(
//	    pipeline.Validation(validator.Tags()),
//	))
func Tags() pipeline.Validator {
	return pipeline.ValidatorFunc(func(ctx context.Context, req any) ([]pipeline.ValidationFailure, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		target, ok := addressable(req)
		if !ok {
			return nil, nil
		}

		err := ValidateStruct(target)
		if err == nil {
			return nil, nil
		}

		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		return Failures(verrs), nil
	})
}

// Failures converts tag validation errors into pipeline failures.
func Failures(errs ValidationErrors) []pipeline.ValidationFailure {
	if len(errs) == 0 {
		return nil
	}
	out := make([]pipeline.ValidationFailure, len(errs))
	for i, e := range errs {
		out[i] = pipeline.ValidationFailure{Field: e.Field, Message: e.Message}
	}
	return out
}

// addressable returns a pointer to a struct holding req's value.
// Value requests are copied so their fields can be inspected through reflection.
func addressable(req any) (any, bool) {
	rv := reflect.ValueOf(req)
	if !rv.IsValid() {
		return nil, false
	}

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return nil, false
		}
		return req, true
	}

	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	return ptr.Interface(), true
}

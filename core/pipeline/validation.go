package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Validator inspects a request and reports its failures.
// A validator that does not apply to the request returns no failures.
// A non-nil error aborts validation (e.g. the context was canceled).
type Validator interface {
	Validate(ctx context.Context, req any) ([]ValidationFailure, error)
}

// ValidatorFunc adapts an ordinary function to the Validator interface.
type ValidatorFunc func(ctx context.Context, req any) ([]ValidationFailure, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, req any) ([]ValidationFailure, error) {
	return f(ctx, req)
}

// ValidatorFor adapts a typed rule set to a Validator that ignores other request types.
//
// Example:
//
//	saleRules := pipeline.ValidatorFor(func(ctx context.Context, cmd CreateSale) []pipeline.ValidationFailure {
//	    if len(cmd.Items) == 0 {
//	        return []pipeline.ValidationFailure{{Field: "Items", Message: "at least one item is required"}}
//	    }
//	    return nil
//	})
func ValidatorFor[Req any](fn func(ctx context.Context, req Req) []ValidationFailure) Validator {
	return ValidatorFunc(func(ctx context.Context, req any) ([]ValidationFailure, error) {
		typed, ok := req.(Req)
		if !ok {
			return nil, nil
		}
		return fn(ctx, typed), nil
	})
}

type validationBehavior struct {
	validators []Validator
}

// Validation runs every validator against the request concurrently and
// fails with a single *ValidationError carrying all failures, in validator
// order, before anything downstream runs. A panicking validator fails the
// request with ErrValidatorPanic.
func Validation(validators ...Validator) Behavior {
	return &validationBehavior{validators: validators}
}

func (b *validationBehavior) Handle(ctx context.Context, call *Call, next Next) (any, error) {
	if len(b.validators) == 0 {
		return next(ctx)
	}

	results := make([][]ValidationFailure, len(b.validators))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range b.validators {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: validator %d for %s: %v", ErrValidatorPanic, i, call.Name, r)
				}
			}()

			failures, err := v.Validate(gctx, call.Request)
			if err != nil {
				return err
			}
			results[i] = failures
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var failures []ValidationFailure
	for _, r := range results {
		failures = append(failures, r...)
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Request: call.Name, Failures: failures}
	}

	return next(ctx)
}

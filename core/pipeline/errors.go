package pipeline

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
)

var (
	// ErrNoHandler is returned when a request has no registered handler.
	ErrNoHandler = errors.New("no handler registered for request")

	// ErrHandlerAlreadyRegistered is used when registering a second handler for a request type.
	ErrHandlerAlreadyRegistered = errors.New("handler already registered for request")

	// ErrNilRequest is returned when dispatching a nil request.
	ErrNilRequest = errors.New("request cannot be nil")

	// ErrRequestType is returned when a handler receives a request of an unexpected type.
	ErrRequestType = errors.New("unexpected request type")

	// ErrResponseType is returned when the caller expects a response type
	// different from the one produced by the registered handler.
	ErrResponseType = errors.New("response type mismatch")

	// ErrHandlerPanic wraps a panic recovered from a terminal handler.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrValidatorPanic wraps a panic recovered from a validator.
	ErrValidatorPanic = errors.New("validator panicked")

	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrRetryExhausted matches every *RetryExhaustedError.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// Kind classifies a failure for the retry and transaction behaviors.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindTimeout
	KindTransientNetwork
	KindCanceled
	KindPersistent
	KindTransaction
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindValidation:       "validation",
	KindTimeout:          "timeout",
	KindTransientNetwork: "transient_network",
	KindCanceled:         "canceled",
	KindPersistent:       "persistent",
	KindTransaction:      "transaction",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error carries an explicit classification for a failure.
// The classification survives wrapping with fmt.Errorf("%w").
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError classifies err as kind. Returns nil for a nil err.
func NewError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Transient marks err as a transient network failure.
func Transient(err error) error { return NewError(KindTransientNetwork, "", err) }

// Timeout marks err as a timeout.
func Timeout(err error) error { return NewError(KindTimeout, "", err) }

// Canceled marks err as a cancellation that is not a genuine timeout,
// e.g. a downstream client aborting its own call.
func Canceled(err error) error { return NewError(KindCanceled, "", err) }

// Persistent marks err as never retryable.
func Persistent(err error) error { return NewError(KindPersistent, "", err) }

// Classify returns the failure kind of err.
// An explicit *Error classification wins; otherwise well-known timeout,
// network and cancellation errors are recognised. Anything else is persistent.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var pe *Error
	if errors.As(err, &pe) && pe.Kind != KindUnknown {
		return pe.Kind
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}

	if isTransientNetwork(err) {
		return KindTransientNetwork
	}

	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	return KindPersistent
}

func isTransientNetwork(err error) bool {
	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	return false
}

// ValidationFailure describes one invalid field.
type ValidationFailure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every failure produced for one request.
type ValidationError struct {
	Request  string
	Failures []ValidationFailure
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Request != "" {
		b.WriteString(" for ")
		b.WriteString(e.Request)
	}
	for i, f := range e.Failures {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		if f.Field != "" {
			b.WriteString(f.Field)
			b.WriteString(": ")
		}
		b.WriteString(f.Message)
	}
	return b.String()
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RetryExhaustedError is returned when every allowed attempt failed.
// It unwraps to the last failure, so Classify and errors.Is still see it.
type RetryExhaustedError struct {
	Request  string
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return "request " + e.Request + " failed after " + strconv.Itoa(e.Attempts) + " attempts: " + e.Err.Error()
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRetryExhausted.
func (e *RetryExhaustedError) Is(target error) bool {
	return target == ErrRetryExhausted
}

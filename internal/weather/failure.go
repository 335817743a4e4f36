package weather

import (
	"errors"
	"fmt"
)

// Reason tags why a gateway operation fell back to its default value.
type Reason string

const (
	ReasonBadInput       Reason = "bad_input"
	ReasonConfig         Reason = "config"
	ReasonNetwork        Reason = "network"
	ReasonUpstreamStatus Reason = "upstream_status"
	ReasonEmptyResponse  Reason = "empty_response"
	ReasonParse          Reason = "parse"
	ReasonNotFound       Reason = "not_found"
)

// Failure is the tagged error carried by a Result.
type Failure struct {
	Reason Reason
	Op     string
	Err    error
}

// NewFailure tags err with reason. Providers use it to classify transport
// and status errors before the gateway sees them.
func NewFailure(reason Reason, err error) *Failure {
	return &Failure{Reason: reason, Err: err}
}

func (f *Failure) Error() string {
	msg := string(f.Reason)
	if f.Err != nil {
		msg = fmt.Sprintf("%s: %v", f.Reason, f.Err)
	}
	if f.Op != "" {
		return f.Op + ": " + msg
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ReasonOf extracts the failure reason from err. Untagged errors are treated
// as network failures.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return ReasonNetwork
}

// Result is the outcome of one gateway operation. Value always holds
// something renderable: the mapped view on success, the operation's
// fail-safe default when Err is set.
type Result[T any] struct {
	Value T
	Err   *Failure
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Reason returns the failure reason, or "" on success.
func (r Result[T]) Reason() Reason {
	if r.Err == nil {
		return ""
	}
	return r.Err.Reason
}

func succeed[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// fail returns def tagged with err. A *Failure coming from a provider keeps its
// reason; anything else is tagged with fallback.
func fail[T any](op string, def T, fallback Reason, err error) Result[T] {
	var f *Failure
	if errors.As(err, &f) {
		return Result[T]{Value: def, Err: &Failure{Reason: f.Reason, Op: op, Err: f.Err}}
	}
	return Result[T]{Value: def, Err: &Failure{Reason: fallback, Op: op, Err: err}}
}

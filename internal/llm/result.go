package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why a generation did not produce usable output.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindStatus      ErrorKind = "status"
	KindEmpty       ErrorKind = "empty"
	KindMalformed   ErrorKind = "malformed"
	KindTooShort    ErrorKind = "too_short"
)

// Error is the failure variant of a Result.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("generation %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("generation %s", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result holds either a generated value or the reason generation failed.
// Callers switch on OK and fall back instead of propagating Err.
type Result[T any] struct {
	Value T
	Err   *Error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

func Success[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Failure[T any](kind ErrorKind, err error) Result[T] {
	return Result[T]{Err: &Error{Kind: kind, Err: err}}
}

// AtLeast turns a text result shorter than min characters into a too_short failure.
func AtLeast(r Result[string], min int) Result[string] {
	if !r.OK() {
		return r
	}
	if n := len(strings.TrimSpace(r.Value)); n < min {
		return Failure[string](KindTooShort, fmt.Errorf("got %d characters, need %d", n, min))
	}
	return r
}

// DecodeJSON parses the JSON object embedded in a text result. Models often
// wrap JSON in code fences or prose, so only the outermost object is read.
func DecodeJSON[T any](r Result[string]) Result[T] {
	if !r.OK() {
		return Result[T]{Err: r.Err}
	}

	raw := extractObject(r.Value)
	if raw == "" {
		return Failure[T](KindMalformed, errors.New("no JSON object in response"))
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Failure[T](KindMalformed, err)
	}
	return Success(v)
}

func extractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

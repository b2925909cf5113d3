package api

import "encoding/json"

// Result is the envelope every gateway operation returns: either
// {success: true, data} or {success: false, message}.
type Result[T any] struct {
	Success bool
	Data    T
	Message string

	err *Error
}

// OK wraps data in a success envelope.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail builds a failure envelope carrying message.
func Fail[T any](message string) Result[T] {
	if message == "" {
		message = defaultFallback
	}
	return Result[T]{Message: message, err: &Error{Kind: KindInvalid, Message: message}}
}

func failWith[T any](err *Error) Result[T] {
	return Result[T]{Message: err.Message, err: err}
}

// Err returns the failure as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return &Error{Kind: KindInvalid, Message: r.Message}
}

// Failure returns the structured failure, or nil on success.
func (r Result[T]) Failure() *Error {
	if r.Success {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return &Error{Kind: KindInvalid, Message: r.Message}
}

type successEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type failureEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MarshalJSON emits exactly one of data or message.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(successEnvelope[T]{Success: true, Data: r.Data})
	}
	return json.Marshal(failureEnvelope{Success: false, Message: r.Message})
}

// Map converts a successful payload, passing failures through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.Success {
		return Result[U]{Message: r.Message, err: r.err}
	}
	return OK(fn(r.Data))
}

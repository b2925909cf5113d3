package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultFallback = "Something went wrong. Please try again."

// Kind classifies gateway failures. Callers only ever see the message; the
// kind exists for logging and tests.
type Kind int

const (
	// KindNetwork is a transport failure: DNS, connection, timeout, cancellation.
	KindNetwork Kind = iota + 1
	// KindServer is a non-2xx response or an explicit success=false body.
	KindServer
	// KindAuth is a 401/403 response.
	KindAuth
	// KindDecode is a 2xx response whose payload could not be decoded.
	KindDecode
	// KindInvalid is a request rejected locally before any network I/O.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindAuth:
		return "auth"
	case KindDecode:
		return "decode"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the typed failure behind a failure envelope.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// messagePaths are probed in order when a response body carries an error.
var messagePaths = []string{
	"message",
	"error.message",
	"error",
	"errors.0.msg",
	"errors.0.message",
	"msg",
}

// serverMessage extracts the server-provided message from body, if any.
func serverMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range messagePaths {
		v := gjson.GetBytes(body, path)
		if v.Type == gjson.String {
			if msg := strings.TrimSpace(v.Str); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// pickMessage applies the extraction order: server message, then the
// transport message, then the per-operation fallback.
func pickMessage(body []byte, transport, fallback string) string {
	if msg := serverMessage(body); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(transport); msg != "" {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return defaultFallback
}

func statusError(op string, status int, body []byte, fallback string) *Error {
	kind := KindServer
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindAuth
	}
	transport := fmt.Sprintf("request failed with status code %d", status)
	return &Error{
		Kind:    kind,
		Op:      op,
		Status:  status,
		Message: pickMessage(body, transport, fallback),
	}
}

func networkError(op string, err error, fallback string) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Kind:    KindNetwork,
		Op:      op,
		Message: pickMessage(nil, msg, fallback),
		Err:     err,
	}
}

func decodeError(op string, status int, err error, fallback string) *Error {
	msg := ""
	if err != nil {
		msg = "invalid response: " + err.Error()
	}
	return &Error{
		Kind:    KindDecode,
		Op:      op,
		Status:  status,
		Message: pickMessage(nil, msg, fallback),
		Err:     err,
	}
}

func invalidError(op string, err error, fallback string) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Kind:    KindInvalid,
		Op:      op,
		Message: pickMessage(nil, msg, fallback),
		Err:     err,
	}
}

// Package state holds the client-side view of server data: paginated
// collections, search results and single-request slots, all mutated only
// through actions dispatched to a Store.
package state

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle of one asynchronous fetch.
type Status int32

const (
	// StatusIdle indicates nothing has been requested yet.
	StatusIdle Status = iota

	// StatusLoading indicates a request is in flight.
	StatusLoading

	// StatusSucceeded indicates the latest request completed successfully.
	StatusSucceeded

	// StatusFailed indicates the latest request failed; Error holds the message.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = ParseStatus(str)
	return nil
}

// ParseStatus converts a string to Status.
func ParseStatus(s string) Status {
	switch s {
	case "idle":
		return StatusIdle
	case "loading", "pending": // action phase alias
		return StatusLoading
	case "succeeded", "fulfilled":
		return StatusSucceeded
	case "failed", "rejected":
		return StatusFailed
	default:
		return StatusIdle
	}
}

// IsTerminal returns true once a request has settled.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

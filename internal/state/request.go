package state

import (
	"slices"

	"github.com/R3E-Network/courseclient/internal/api"
)

// Request is a slot holding the outcome of one kind of single round trip.
// Data is replaced wholesale on success and kept on failure.
type Request[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`

	gen uint64
}

// Loading reports whether a request is in flight.
func (r Request[T]) Loading() bool {
	return r.Status == StatusLoading
}

func (r *Request[T]) begin(gen uint64) {
	r.gen = gen
	r.Status = StatusLoading
	r.Error = ""
}

func (r *Request[T]) fulfill(gen uint64, data T) bool {
	if gen != r.gen {
		return false
	}
	r.Data = data
	r.Status = StatusSucceeded
	r.Error = ""
	return true
}

func (r *Request[T]) reject(gen uint64, msg string) bool {
	if gen != r.gen {
		return false
	}
	r.Status = StatusFailed
	r.Error = msg
	return true
}

// SearchState holds the results of the latest course search.
type SearchState struct {
	Query   string       `json:"query"`
	Results []api.Course `json:"results"`
	Status  Status       `json:"status"`
	Error   string       `json:"error,omitempty"`

	gen uint64
}

func (s *SearchState) begin(gen uint64, query string) {
	s.gen = gen
	s.Query = query
	s.Status = StatusLoading
	s.Error = ""
}

func (s *SearchState) clear(gen uint64) {
	*s = SearchState{Results: []api.Course{}, gen: gen}
}

func (s *SearchState) fulfill(gen uint64, results []api.Course) bool {
	if gen != s.gen {
		return false
	}
	s.Results = append(make([]api.Course, 0, len(results)), results...)
	s.Status = StatusSucceeded
	s.Error = ""
	return true
}

func (s *SearchState) reject(gen uint64, msg string) bool {
	if gen != s.gen {
		return false
	}
	s.Results = []api.Course{}
	s.Status = StatusFailed
	s.Error = msg
	return true
}

func (s SearchState) clone() SearchState {
	s.Results = slices.Clone(s.Results)
	return s
}

func cloneRequest[T any](r Request[[]T]) Request[[]T] {
	r.Data = slices.Clone(r.Data)
	return r
}

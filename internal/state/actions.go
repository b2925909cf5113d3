package state

import (
	"context"

	"github.com/R3E-Network/courseclient/internal/api"
)

// Action is a state transition applied by Store.Dispatch. apply receives the
// dispatch sequence number and reports whether the action changed state;
// results from superseded requests report false.
type Action interface {
	Type() string
	apply(st *RootState, seq uint64) bool
}

type phase int

const (
	phasePending phase = iota
	phaseFulfilled
	phaseRejected
)

func (p phase) String() string {
	switch p {
	case phasePending:
		return "pending"
	case phaseFulfilled:
		return "fulfilled"
	default:
		return "rejected"
	}
}

// pageResource binds a paginated collection to its fetch call.
type pageResource[T Entity] struct {
	name   string
	policy MergePolicy
	pick   func(*RootState) *Collection[T]
	fetch  func(context.Context, Backend, api.PageQuery) api.Result[[]T]
}

type pageAction[T Entity] struct {
	res      *pageResource[T]
	phase    phase
	gen      uint64
	loadMore bool
	batch    []T
	limit    int
	err      string
}

func (a pageAction[T]) Type() string {
	return a.res.name + "/fetch/" + a.phase.String()
}

func (a pageAction[T]) apply(st *RootState, seq uint64) bool {
	c := a.res.pick(st)
	switch a.phase {
	case phasePending:
		c.begin(seq)
		return true
	case phaseFulfilled:
		return c.fulfill(a.gen, a.loadMore, a.batch, a.limit, a.res.policy)
	default:
		return c.reject(a.gen, a.err)
	}
}

// slot names a Request field of RootState.
type slot[T any] struct {
	name string
	pick func(*RootState) *Request[T]
}

type requestAction[T any] struct {
	slot  slot[T]
	phase phase
	gen   uint64
	data  T
	err   string
	// then runs after a fulfilled action is applied.
	then func(*RootState, T)
}

func (a requestAction[T]) Type() string {
	return a.slot.name + "/" + a.phase.String()
}

func (a requestAction[T]) apply(st *RootState, seq uint64) bool {
	r := a.slot.pick(st)
	switch a.phase {
	case phasePending:
		r.begin(seq)
		return true
	case phaseFulfilled:
		if !r.fulfill(a.gen, a.data) {
			return false
		}
		if a.then != nil {
			a.then(st, a.data)
		}
		return true
	default:
		return r.reject(a.gen, a.err)
	}
}

type searchAction struct {
	phase   phase
	gen     uint64
	query   string
	clear   bool
	results []api.Course
	err     string
}

func (a searchAction) Type() string {
	if a.clear {
		return "courses/search/cleared"
	}
	return "courses/search/" + a.phase.String()
}

func (a searchAction) apply(st *RootState, seq uint64) bool {
	s := &st.Courses.Search
	switch {
	case a.clear:
		s.clear(seq)
		return true
	case a.phase == phasePending:
		s.begin(seq, a.query)
		return true
	case a.phase == phaseFulfilled:
		return s.fulfill(a.gen, a.results)
	default:
		return s.reject(a.gen, a.err)
	}
}

// sessionReset drops everything scoped to the signed-in user. Zeroed
// generations also invalidate requests still in flight.
type sessionReset struct{}

func (sessionReset) Type() string { return "session/reset" }

func (sessionReset) apply(st *RootState, _ uint64) bool {
	resetSession(st)
	return true
}

func resetSession(st *RootState) {
	st.Orders = OrdersState{}
	st.Payment = PaymentState{}
	st.User = UserState{}
	st.Reviews.Mine = Request[[]api.Review]{}
	st.Reviews.Submit = Request[api.Review]{}
	st.Reviews.Deletion = Request[api.Ack]{}
	st.Learning = LearningState{}
}

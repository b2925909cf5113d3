package state

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/courseclient/internal/api"
	"github.com/R3E-Network/courseclient/internal/logging"
	"github.com/R3E-Network/courseclient/internal/metrics"
)

// DefaultPageSize is the page limit used when none is configured.
const DefaultPageSize = 10

// Backend is the subset of the gateway the store drives.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) api.Result[api.AuthResponse]
	Register(ctx context.Context, reg api.Registration) api.Result[api.AuthResponse]
	ForgotPassword(ctx context.Context, email string) api.Result[api.Ack]
	VerifyOTP(ctx context.Context, email, otp string) api.Result[api.Ack]
	ResetPassword(ctx context.Context, reset api.PasswordReset) api.Result[api.Ack]
	VerifyAuthToken(ctx context.Context) api.Result[bool]
	Logout(ctx context.Context) api.Result[api.Ack]

	Profile(ctx context.Context) api.Result[api.User]
	UpdateProfile(ctx context.Context, upd api.ProfileUpdate) api.Result[api.User]
	DeleteAccount(ctx context.Context) api.Result[api.Ack]
	ChangePassword(ctx context.Context, change api.PasswordChange) api.Result[api.Ack]

	Courses(ctx context.Context, q api.PageQuery) api.Result[[]api.Course]
	Course(ctx context.Context, id string) api.Result[api.Course]
	SearchCourses(ctx context.Context, query string) api.Result[[]api.Course]
	FeaturedReels(ctx context.Context, q api.PageQuery) api.Result[[]api.Reel]
	Ads(ctx context.Context, q api.PageQuery) api.Result[[]api.Ad]

	CreateOrder(ctx context.Context, o api.OrderRequest) api.Result[api.Order]
	MyOrders(ctx context.Context) api.Result[[]api.Order]
	CreatePaymentIntent(ctx context.Context, amount float64, currency string) api.Result[api.PaymentIntent]

	StripeConfig(ctx context.Context) api.Result[api.StripeConfig]
	Policy(ctx context.Context, policyType string) api.Result[api.Policy]

	CreateReview(ctx context.Context, r api.ReviewRequest) api.Result[api.Review]
	Reviews(ctx context.Context, targetType, targetID string) api.Result[[]api.Review]
	UpdateReview(ctx context.Context, id string, r api.ReviewRequest) api.Result[api.Review]
	DeleteReview(ctx context.Context, id string) api.Result[api.Ack]
	MyReviews(ctx context.Context) api.Result[[]api.Review]

	Enroll(ctx context.Context, courseID string) api.Result[api.Enrollment]
	MyEnrollments(ctx context.Context) api.Result[[]api.Enrollment]
	Enrollment(ctx context.Context, id string) api.Result[api.Enrollment]
	Unenroll(ctx context.Context, id string) api.Result[api.Ack]
	UpdateProgress(ctx context.Context, id string, progress float64) api.Result[api.Enrollment]
}

var _ Backend = (*api.Gateway)(nil)

// CoursesState is the catalog slice.
type CoursesState struct {
	Courses       Collection[api.Course] `json:"courses"`
	FeaturedReels Collection[api.Reel]   `json:"featuredReels"`
	Ads           Collection[api.Ad]     `json:"ads"`
	Search        SearchState            `json:"search"`
	Detail        Request[api.Course]    `json:"detail"`
}

// OrdersState is the orders slice.
type OrdersState struct {
	Created Request[api.Order]   `json:"created"`
	Mine    Request[[]api.Order] `json:"mine"`
}

// PaymentState is the payment slice.
type PaymentState struct {
	Intent Request[api.PaymentIntent] `json:"intent"`
}

// ConfigState holds server-provided configuration and documents.
type ConfigState struct {
	Stripe Request[api.StripeConfig] `json:"stripe"`
	Policy Request[api.Policy]       `json:"policy"`
}

// UserState is the signed-in account.
type UserState struct {
	Authenticated bool                     `json:"authenticated"`
	Session       Request[api.AuthResponse] `json:"session"`
	Profile       Request[api.User]         `json:"profile"`
	Password      Request[api.Ack]          `json:"password"`
	Recovery      Request[api.Ack]          `json:"recovery"`
	Deletion      Request[api.Ack]          `json:"deletion"`
}

// ReviewsState holds reviews for the viewed target and the user's own.
type ReviewsState struct {
	Target   Request[[]api.Review] `json:"target"`
	Mine     Request[[]api.Review] `json:"mine"`
	Submit   Request[api.Review]   `json:"submit"`
	Deletion Request[api.Ack]      `json:"deletion"`
}

// LearningState holds the user's enrollments.
type LearningState struct {
	Enrollments Request[[]api.Enrollment] `json:"enrollments"`
	Current     Request[api.Enrollment]   `json:"current"`
	Unenroll    Request[api.Ack]          `json:"unenroll"`
}

// RootState is everything the store holds.
type RootState struct {
	Courses  CoursesState  `json:"courses"`
	Orders   OrdersState   `json:"orders"`
	Payment  PaymentState  `json:"payment"`
	Config   ConfigState   `json:"config"`
	User     UserState     `json:"user"`
	Reviews  ReviewsState  `json:"reviews"`
	Learning LearningState `json:"learning"`
}

// InitialState returns the state of a fresh store.
func InitialState() RootState {
	return RootState{
		Courses: CoursesState{
			Courses:       NewCollection[api.Course](),
			FeaturedReels: NewCollection[api.Reel](),
			Ads:           NewCollection[api.Ad](),
			Search:        SearchState{Results: []api.Course{}},
		},
	}
}

func (st RootState) clone() RootState {
	st.Courses.Courses = st.Courses.Courses.clone()
	st.Courses.FeaturedReels = st.Courses.FeaturedReels.clone()
	st.Courses.Ads = st.Courses.Ads.clone()
	st.Courses.Search = st.Courses.Search.clone()
	st.Orders.Mine = cloneRequest(st.Orders.Mine)
	st.Reviews.Target = cloneRequest(st.Reviews.Target)
	st.Reviews.Mine = cloneRequest(st.Reviews.Mine)
	st.Learning.Enrollments = cloneRequest(st.Learning.Enrollments)
	return st
}

// Options configures a Store.
type Options struct {
	PageSize int
	Logger   *logging.Logger
}

// Store applies actions to RootState one at a time and runs the fetches
// that produce them.
type Store struct {
	backend  Backend
	pageSize int
	logger   *logging.Logger

	mu    sync.Mutex
	seq   uint64
	state RootState

	// notifyMu keeps subscriber callbacks in dispatch order.
	notifyMu sync.Mutex
	subsMu   sync.RWMutex
	subs     map[int]func(RootState)
	nextSub  int
}

// NewStore creates a store backed by backend.
func NewStore(backend Backend, opts Options) *Store {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Store{
		backend:  backend,
		pageSize: opts.PageSize,
		logger:   opts.Logger,
		state:    InitialState(),
		subs:     make(map[int]func(RootState)),
	}
}

// PageSize returns the limit requested for each page.
func (s *Store) PageSize() int {
	return s.pageSize
}

// State returns a copy of the current state. List slices are cloned so the
// caller may modify them freely.
func (s *Store) State() RootState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every applied action.
// fn runs synchronously and must not call back into the store.
func (s *Store) Subscribe(fn func(RootState)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// Dispatch applies a and returns its sequence number.
func (s *Store) Dispatch(a Action) uint64 {
	seq, _ := s.dispatch(a, nil)
	return seq
}

// dispatch applies a if admit (evaluated under the lock) allows it.
func (s *Store) dispatch(a Action, admit func(*RootState) bool) (uint64, bool) {
	s.mu.Lock()
	if admit != nil && !admit(&s.state) {
		s.mu.Unlock()
		return 0, false
	}
	s.seq++
	seq := s.seq
	applied := a.apply(&s.state, seq)
	var snapshot RootState
	if applied {
		snapshot = s.state.clone()
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	typ := a.Type()
	metrics.RecordAction(typ)
	s.logger.WithFields(logrus.Fields{
		"action":  typ,
		"seq":     seq,
		"applied": applied,
	}).Debug("dispatch")

	if !applied {
		metrics.RecordStale(resourceOf(typ))
		return seq, true
	}

	s.subsMu.RLock()
	subs := make([]func(RootState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.RUnlock()
	for _, fn := range subs {
		fn(snapshot)
	}
	return seq, true
}

func resourceOf(actionType string) string {
	if i := strings.IndexByte(actionType, '/'); i > 0 {
		return actionType[:i]
	}
	return actionType
}

// fetchPage runs one page fetch for res. A load-more is skipped, returning an
// empty success, while a fetch is in flight or the collection is exhausted.
func fetchPage[T Entity](ctx context.Context, s *Store, res *pageResource[T], loadMore bool) api.Result[[]T] {
	page := 1
	gen, ok := s.dispatch(pageAction[T]{res: res, phase: phasePending, loadMore: loadMore}, func(st *RootState) bool {
		c := res.pick(st)
		if loadMore {
			if !c.CanLoadMore() {
				return false
			}
			page = c.Page
		}
		return true
	})
	if !ok {
		return api.OK([]T{})
	}

	limit := s.pageSize
	result := res.fetch(ctx, s.backend, api.PageQuery{Page: page, Limit: limit})
	if result.Success {
		s.Dispatch(pageAction[T]{res: res, phase: phaseFulfilled, gen: gen, loadMore: loadMore, batch: result.Data, limit: limit})
	} else {
		s.Dispatch(pageAction[T]{res: res, phase: phaseRejected, gen: gen, loadMore: loadMore, err: result.Message})
	}
	return result
}

// run performs one single-request round trip against slot sl. then, when
// set, is applied together with a successful result.
func run[T any](ctx context.Context, s *Store, sl slot[T], call func(context.Context) api.Result[T], then func(*RootState, T)) api.Result[T] {
	gen := s.Dispatch(requestAction[T]{slot: sl, phase: phasePending})
	result := call(ctx)
	if result.Success {
		s.Dispatch(requestAction[T]{slot: sl, phase: phaseFulfilled, gen: gen, data: result.Data, then: then})
	} else {
		s.Dispatch(requestAction[T]{slot: sl, phase: phaseRejected, gen: gen, err: result.Message})
	}
	return result
}

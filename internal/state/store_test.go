package state

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/courseclient/internal/api"
	"github.com/R3E-Network/courseclient/internal/apitest"
	"github.com/R3E-Network/courseclient/internal/tokenstore"
)

func newTestStore(t *testing.T, pageSize int) (*Store, *apitest.Server, tokenstore.Store) {
	t.Helper()
	srv := apitest.NewServer(t)
	tokens := tokenstore.NewMemoryStore()
	g, err := api.New(api.Config{BaseURL: srv.URL, Tokens: tokens})
	require.NoError(t, err)
	return NewStore(g, Options{PageSize: pageSize}), srv, tokens
}

func courses(ids ...string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, map[string]any{"_id": id, "title": "Course " + id})
	}
	return out
}

func courseIDs(items []api.Course) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}

// servePages answers GET path with pages[page-1], or an empty list past the end.
func servePages(srv *apitest.Server, path string, pages ...[]any) {
	srv.Handle(http.MethodGet, path, func(w http.ResponseWriter, r *http.Request) {
		var page int
		_, _ = fmt.Sscan(r.URL.Query().Get("page"), &page)
		if page < 1 || page > len(pages) {
			apitest.WriteJSON(w, http.StatusOK, apitest.Envelope([]any{}))
			return
		}
		apitest.WriteJSON(w, http.StatusOK, apitest.Envelope(pages[page-1]))
	})
}

func TestStore_RefreshThenLoadMoreCourses(t *testing.T) {
	store, srv, _ := newTestStore(t, 3)
	servePages(srv, "/courses", courses("1", "2", "3"), courses("3", "4", "5"), courses("6"))
	ctx := context.Background()

	res := store.RefreshCourses(ctx)
	require.True(t, res.Success, res.Message)
	c := store.State().Courses.Courses
	assert.Equal(t, []string{"1", "2", "3"}, courseIDs(c.Items))
	assert.Equal(t, 2, c.Page)
	assert.True(t, c.HasMore)

	store.LoadMoreCourses(ctx)
	c = store.State().Courses.Courses
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, courseIDs(c.Items))
	assert.Equal(t, 3, c.Page)
	assert.True(t, c.HasMore)

	last, _ := srv.Last()
	assert.Equal(t, "limit=3&page=2", last.RawQuery)

	store.LoadMoreCourses(ctx)
	c = store.State().Courses.Courses
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, courseIDs(c.Items))
	assert.False(t, c.HasMore)
	assert.Equal(t, StatusSucceeded, c.Status)
}

func TestStore_LoadMoreGuard(t *testing.T) {
	store, srv, _ := newTestStore(t, 10)
	servePages(srv, "/courses", courses("1", "2"))
	ctx := context.Background()

	store.RefreshCourses(ctx)
	require.False(t, store.State().Courses.Courses.HasMore)
	calls := srv.Count()

	res := store.LoadMoreCourses(ctx)
	assert.True(t, res.Success)
	assert.Empty(t, res.Data)
	assert.Equal(t, calls, srv.Count())
	assert.Equal(t, []string{"1", "2"}, courseIDs(store.State().Courses.Courses.Items))
}

func TestStore_RefreshWithEmptyBatchClearsItems(t *testing.T) {
	store, srv, _ := newTestStore(t, 2)
	var round atomic.Int32
	srv.Handle(http.MethodGet, "/courses", func(w http.ResponseWriter, _ *http.Request) {
		if round.Add(1) == 1 {
			apitest.WriteJSON(w, http.StatusOK, apitest.Envelope(courses("1", "2")))
			return
		}
		apitest.WriteJSON(w, http.StatusOK, apitest.Envelope([]any{}))
	})
	ctx := context.Background()

	store.RefreshCourses(ctx)
	require.Len(t, store.State().Courses.Courses.Items, 2)

	store.RefreshCourses(ctx)
	c := store.State().Courses.Courses
	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
	assert.False(t, c.HasMore)
	assert.Equal(t, 2, c.Page)
}

func TestStore_RefreshIsIdempotent(t *testing.T) {
	store, srv, _ := newTestStore(t, 2)
	servePages(srv, "/courses", courses("1", "2"))
	ctx := context.Background()

	store.RefreshCourses(ctx)
	first := store.State().Courses.Courses
	store.RefreshCourses(ctx)
	second := store.State().Courses.Courses

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Page, second.Page)
	assert.Equal(t, first.HasMore, second.HasMore)
}

func TestStore_FailureKeepsItemsAndStopsPaging(t *testing.T) {
	store, srv, _ := newTestStore(t, 2)
	var fail atomic.Bool
	srv.Handle(http.MethodGet, "/courses", func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			apitest.WriteJSON(w, http.StatusInternalServerError, map[string]any{"message": "catalog offline"})
			return
		}
		apitest.WriteJSON(w, http.StatusOK, apitest.Envelope(courses("1", "2")))
	})
	ctx := context.Background()

	store.RefreshCourses(ctx)
	fail.Store(true)

	res := store.LoadMoreCourses(ctx)
	assert.False(t, res.Success)
	c := store.State().Courses.Courses
	assert.Equal(t, []string{"1", "2"}, courseIDs(c.Items))
	assert.Equal(t, "catalog offline", c.Error)
	assert.Equal(t, StatusFailed, c.Status)
	assert.False(t, c.HasMore)
	assert.False(t, c.Loading)
}

func TestStore_StaleRefreshIsDiscarded(t *testing.T) {
	store, srv, _ := newTestStore(t, 10)
	release := make(chan struct{})
	var round atomic.Int32
	srv.Handle(http.MethodGet, "/courses", func(w http.ResponseWriter, _ *http.Request) {
		if round.Add(1) == 1 {
			<-release
			apitest.WriteJSON(w, http.StatusOK, apitest.Envelope(courses("old")))
			return
		}
		apitest.WriteJSON(w, http.StatusOK, apitest.Envelope(courses("new")))
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	var slow api.Result[[]api.Course]
	go func() {
		defer wg.Done()
		slow = store.RefreshCourses(ctx)
	}()
	require.Eventually(t, func() bool { return srv.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	store.RefreshCourses(ctx)
	close(release)
	wg.Wait()

	assert.True(t, slow.Success)
	c := store.State().Courses.Courses
	assert.Equal(t, []string{"new"}, courseIDs(c.Items))
	assert.False(t, c.Loading)
}

func TestStore_ReelsAppendWithoutDedupe(t *testing.T) {
	store, srv, _ := newTestStore(t, 1)
	reel := func(id string) []any { return []any{map[string]any{"_id": id, "title": id, "videoUrl": "v"}} }
	servePages(srv, "/courses/featuredreels", reel("r1"), reel("r1"))
	servePages(srv, "/ads", []any{map[string]any{"_id": "a1", "title": "ad", "image": "i"}})
	ctx := context.Background()

	store.RefreshReels(ctx)
	store.LoadMoreReels(ctx)
	reels := store.State().Courses.FeaturedReels
	require.Len(t, reels.Items, 2)
	assert.Equal(t, "r1", reels.Items[1].ID)

	store.RefreshAds(ctx)
	store.LoadMoreAds(ctx)
	ads := store.State().Courses.Ads
	assert.Len(t, ads.Items, 1)
	assert.False(t, ads.HasMore)
}

func TestStore_Search(t *testing.T) {
	store, srv, _ := newTestStore(t, 10)
	srv.Handle(http.MethodGet, "/courses/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "broken" {
			apitest.WriteJSON(w, http.StatusBadRequest, map[string]any{"message": "bad query"})
			return
		}
		apitest.WriteJSON(w, http.StatusOK, apitest.Envelope(courses("s1", "s2")))
	})
	ctx := context.Background()

	store.Search(ctx, "go")
	search := store.State().Courses.Search
	assert.Equal(t, "go", search.Query)
	assert.Equal(t, []string{"s1", "s2"}, courseIDs(search.Results))

	store.Search(ctx, "broken")
	search = store.State().Courses.Search
	assert.Empty(t, search.Results)
	assert.Equal(t, "bad query", search.Error)
	assert.Equal(t, StatusFailed, search.Status)

	calls := srv.Count()
	res := store.Search(ctx, "   ")
	assert.True(t, res.Success)
	assert.Equal(t, calls, srv.Count())
	search = store.State().Courses.Search
	assert.Empty(t, search.Query)
	assert.Empty(t, search.Results)
	assert.Empty(t, search.Error)
	assert.Equal(t, StatusIdle, search.Status)
}

func TestStore_StaleSearchIsDiscarded(t *testing.T) {
	store, srv, _ := newTestStore(t, 10)
	release := make(chan struct{})
	srv.Handle(http.MethodGet, "/courses/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "g" {
			<-release
			apitest.WriteJSON(w, http.StatusOK, apitest.Envelope(courses("g1")))
			return
		}
		apitest.WriteJSON(w, http.StatusOK, apitest.Envelope(courses("go1")))
	})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Search(ctx, "g")
	}()
	require.Eventually(t, func() bool { return srv.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	store.Search(ctx, "go")
	close(release)
	<-done

	search := store.State().Courses.Search
	assert.Equal(t, "go", search.Query)
	assert.Equal(t, []string{"go1"}, courseIDs(search.Results))
}

func TestStore_ClearingSearchInvalidatesInFlight(t *testing.T) {
	store, srv, _ := newTestStore(t, 10)
	release := make(chan struct{})
	srv.Handle(http.MethodGet, "/courses/search", func(w http.ResponseWriter, _ *http.Request) {
		<-release
		apitest.WriteJSON(w, http.StatusOK, apitest.Envelope(courses("late")))
	})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Search(ctx, "go")
	}()
	require.Eventually(t, func() bool { return srv.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	store.Search(ctx, "")
	close(release)
	<-done

	assert.Empty(t, store.State().Courses.Search.Results)
}

func TestStore_LoginAndLogout(t *testing.T) {
	store, srv, tokens := newTestStore(t, 10)
	srv.Reply(http.MethodPost, "/auth/login", http.StatusOK, map[string]any{
		"token": "abc",
		"user":  map[string]any{"_id": "u1", "name": "Ada"},
	})
	srv.Reply(http.MethodGet, "/orders/myorders", http.StatusOK, apitest.Envelope([]any{map[string]any{"_id": "o1"}}))
	servePages(srv, "/courses", courses("1"))
	ctx := context.Background()

	res := store.Login(ctx, api.Credentials{Email: "ada@example.com", Password: "pw"})
	require.True(t, res.Success, res.Message)
	st := store.State()
	assert.True(t, st.User.Authenticated)
	assert.Equal(t, "u1", st.User.Profile.Data.ID)

	store.FetchMyOrders(ctx)
	store.RefreshCourses(ctx)
	require.Len(t, store.State().Orders.Mine.Data, 1)

	store.Logout(ctx)
	st = store.State()
	assert.False(t, st.User.Authenticated)
	assert.Empty(t, st.Orders.Mine.Data)
	assert.Equal(t, StatusIdle, st.Orders.Mine.Status)
	assert.Len(t, st.Courses.Courses.Items, 1)

	_, ok := tokens.Get(ctx)
	assert.False(t, ok)
}

func TestStore_VerifySession(t *testing.T) {
	store, srv, tokens := newTestStore(t, 10)
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv.Handle(http.MethodGet, "/auth/verify-token", func(w http.ResponseWriter, _ *http.Request) {
		code := int(status.Load())
		if code != http.StatusOK {
			apitest.WriteJSON(w, code, map[string]any{"message": "unavailable"})
			return
		}
		apitest.WriteJSON(w, code, apitest.Envelope(map[string]any{"_id": "u1"}))
	})
	srv.Reply(http.MethodGet, "/orders/myorders", http.StatusOK, apitest.Envelope([]any{map[string]any{"_id": "o1"}}))
	ctx := context.Background()
	require.NoError(t, tokens.Set(ctx, "abc"))

	res := store.VerifySession(ctx)
	require.True(t, res.Success)
	assert.True(t, res.Data)
	store.FetchMyOrders(ctx)
	require.True(t, store.State().User.Authenticated)

	status.Store(http.StatusServiceUnavailable)
	res = store.VerifySession(ctx)
	assert.False(t, res.Success)
	st := store.State()
	assert.True(t, st.User.Authenticated)
	assert.Len(t, st.Orders.Mine.Data, 1)

	status.Store(http.StatusUnauthorized)
	res = store.VerifySession(ctx)
	require.True(t, res.Success)
	assert.False(t, res.Data)
	st = store.State()
	assert.False(t, st.User.Authenticated)
	assert.Empty(t, st.Orders.Mine.Data)
	_, ok := tokens.Get(ctx)
	assert.False(t, ok)
}

func TestStore_RequestFailureKeepsPreviousData(t *testing.T) {
	store, srv, _ := newTestStore(t, 10)
	var fail atomic.Bool
	srv.Handle(http.MethodGet, "/enrollments", func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			apitest.WriteJSON(w, http.StatusUnauthorized, map[string]any{"message": "Not authorized"})
			return
		}
		apitest.WriteJSON(w, http.StatusOK, apitest.Envelope([]any{map[string]any{"_id": "e1", "courseId": "c1"}}))
	})
	ctx := context.Background()

	store.FetchEnrollments(ctx)
	fail.Store(true)
	res := store.FetchEnrollments(ctx)
	assert.False(t, res.Success)

	enrollments := store.State().Learning.Enrollments
	require.Len(t, enrollments.Data, 1)
	assert.Equal(t, "e1", enrollments.Data[0].ID)
	assert.Equal(t, "Not authorized", enrollments.Error)
	assert.Equal(t, StatusFailed, enrollments.Status)
}

func TestStore_DeleteAccountResetsSession(t *testing.T) {
	store, srv, tokens := newTestStore(t, 10)
	srv.Reply(http.MethodPost, "/auth/login", http.StatusOK, map[string]any{"token": "abc"})
	srv.Reply(http.MethodDelete, "/users/me", http.StatusOK, map[string]any{"success": true, "message": "deleted"})
	ctx := context.Background()

	store.Login(ctx, api.Credentials{Email: "a", Password: "b"})
	res := store.DeleteAccount(ctx)
	require.True(t, res.Success, res.Message)

	st := store.State()
	assert.False(t, st.User.Authenticated)
	assert.Equal(t, StatusSucceeded, st.User.Deletion.Status)
	assert.Equal(t, "deleted", st.User.Deletion.Data.Message)
	_, ok := tokens.Get(ctx)
	assert.False(t, ok)
}

func TestStore_PaymentAndConfig(t *testing.T) {
	store, srv, _ := newTestStore(t, 10)
	srv.Reply(http.MethodPost, "/orders/create-payment-intent", http.StatusOK, map[string]any{"clientSecret": "pi_secret"})
	srv.Reply(http.MethodGet, "/config/stripe", http.StatusOK, apitest.Envelope(map[string]any{"publishableKey": "pk"}))
	srv.Reply(http.MethodGet, "/policies/{type}", http.StatusNotFound, map[string]any{"message": "Policy not found"})
	ctx := context.Background()

	store.CreatePaymentIntent(ctx, 19.99, "usd")
	store.FetchStripeConfig(ctx)
	store.FetchPolicy(ctx, "refund")

	st := store.State()
	assert.Equal(t, int64(1999), st.Payment.Intent.Data.Amount)
	assert.Equal(t, "pi_secret", st.Payment.Intent.Data.ClientSecret)
	assert.Equal(t, "pk", st.Config.Stripe.Data.PublishableKey)
	assert.Equal(t, "Policy not found", st.Config.Policy.Error)
}

func TestStore_SubscribeAndSnapshotIsolation(t *testing.T) {
	store, srv, _ := newTestStore(t, 10)
	servePages(srv, "/courses", courses("1", "2"))
	ctx := context.Background()

	var seen []Status
	unsubscribe := store.Subscribe(func(st RootState) {
		seen = append(seen, st.Courses.Courses.Status)
	})
	store.RefreshCourses(ctx)
	unsubscribe()
	unsubscribe()
	store.RefreshCourses(ctx)

	assert.Equal(t, []Status{StatusLoading, StatusSucceeded}, seen)

	snapshot := store.State()
	snapshot.Courses.Courses.Items[0].Title = "mutated"
	assert.Equal(t, "Course 1", store.State().Courses.Courses.Items[0].Title)
}

func TestStore_DefaultPageSize(t *testing.T) {
	store := NewStore(nil, Options{})
	assert.Equal(t, DefaultPageSize, store.PageSize())
	st := store.State()
	assert.True(t, st.Courses.Courses.HasMore)
	assert.Equal(t, 1, st.Courses.Courses.Page)
}

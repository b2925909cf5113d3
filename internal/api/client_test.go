package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/courseclient/internal/apitest"
	"github.com/R3E-Network/courseclient/internal/logging"
	"github.com/R3E-Network/courseclient/internal/tokenstore"
)

func newTestGateway(t *testing.T, srv *apitest.Server) (*Gateway, *tokenstore.MemoryStore) {
	t.Helper()
	tokens := tokenstore.NewMemoryStore()
	g, err := New(Config{BaseURL: srv.URL + "/api/", Tokens: tokens, UserAgent: "courseclient-test"})
	require.NoError(t, err)
	return g, tokens
}

func TestNew_Validation(t *testing.T) {
	tokens := tokenstore.NewMemoryStore()
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{BaseURL: "https://api.example.com/api", Tokens: tokens}, false},
		{"empty base url", Config{Tokens: tokens}, true},
		{"relative base url", Config{BaseURL: "/api", Tokens: tokens}, true},
		{"missing token store", Config{BaseURL: "https://api.example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://api.example.com/api", g.BaseURL())
		})
	}
}

func TestGateway_FailureEnvelopeOnHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		want    string
		wantKnd Kind
	}{
		{"top-level message", http.StatusBadRequest, map[string]any{"message": "Course not found"}, "Course not found", KindServer},
		{"nested error message", http.StatusInternalServerError, map[string]any{"error": map[string]any{"message": "db down"}}, "db down", KindServer},
		{"error string", http.StatusConflict, map[string]any{"error": "duplicate"}, "duplicate", KindServer},
		{"validation list", http.StatusUnprocessableEntity, map[string]any{"errors": []any{map[string]any{"msg": "title required"}}}, "title required", KindServer},
		{"no message", http.StatusServiceUnavailable, map[string]any{}, "request failed with status code 503", KindServer},
		{"unauthorized", http.StatusUnauthorized, map[string]any{"message": "Not authorized"}, "Not authorized", KindAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			srv.Reply(http.MethodGet, "/api/courses/{id}", tt.status, tt.body)
			g, _ := newTestGateway(t, srv)

			res := g.Course(context.Background(), "c1")
			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Message)
			require.NotNil(t, res.Failure())
			assert.Equal(t, tt.wantKnd, res.Failure().Kind)
			assert.Equal(t, tt.status, res.Failure().Status)
			assert.Error(t, res.Err())
		})
	}
}

func TestGateway_FailureEnvelopeOnNetworkError(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	baseURL := dead.URL
	dead.Close()

	g, err := New(Config{BaseURL: baseURL, Tokens: tokenstore.NewMemoryStore()})
	require.NoError(t, err)

	res := g.MyOrders(context.Background())
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
	require.NotNil(t, res.Failure())
	assert.Equal(t, KindNetwork, res.Failure().Kind)
}

func TestGateway_SuccessFalseOn2xxIsFailure(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Reply(http.MethodGet, "/api/orders/myorders", http.StatusOK, map[string]any{"success": false, "message": "Account suspended"})
	g, _ := newTestGateway(t, srv)

	res := g.MyOrders(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "Account suspended", res.Message)
}

func TestGateway_MalformedBodyIsDecodeFailure(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Handle(http.MethodGet, "/api/courses/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})
	g, _ := newTestGateway(t, srv)

	res := g.Course(context.Background(), "c1")
	assert.False(t, res.Success)
	assert.Equal(t, "invalid response: response is not valid JSON", res.Message)
	assert.Equal(t, KindDecode, res.Failure().Kind)
}

func TestGateway_PayloadShapes(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"envelope", apitest.Envelope(map[string]any{"_id": "c1", "title": "Go"})},
		{"envelope with plucked key", apitest.Envelope(map[string]any{"course": map[string]any{"_id": "c1", "title": "Go"}})},
		{"bare object", map[string]any{"_id": "c1", "title": "Go"}},
		{"bare plucked", map[string]any{"course": map[string]any{"id": "c1", "title": "Go"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			srv.Reply(http.MethodGet, "/api/courses/{id}", http.StatusOK, tt.body)
			g, _ := newTestGateway(t, srv)

			res := g.Course(context.Background(), "c1")
			require.True(t, res.Success, res.Message)
			assert.Equal(t, "c1", res.Data.ID)
			assert.Equal(t, "Go", res.Data.Title)
		})
	}
}

func TestGateway_RemapsUnderscoreIDAtEveryDepth(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Reply(http.MethodGet, "/api/enrollments", http.StatusOK, apitest.Envelope([]any{
		map[string]any{"_id": 7, "courseId": "c1", "course": map[string]any{"_id": "c1", "title": "Go"}},
	}))
	g, _ := newTestGateway(t, srv)

	res := g.MyEnrollments(context.Background())
	require.True(t, res.Success, res.Message)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "7", res.Data[0].ID)
	require.NotNil(t, res.Data[0].Course)
	assert.Equal(t, "c1", res.Data[0].Course.ID)
}

func TestGateway_EmptyBodyDecodesZeroValue(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Handle(http.MethodDelete, "/api/reviews/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	g, _ := newTestGateway(t, srv)

	res := g.DeleteReview(context.Background(), "r1")
	assert.True(t, res.Success)
	assert.Equal(t, Ack{}, res.Data)
}

func TestGateway_RequestHeaders(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Reply(http.MethodPost, "/api/orders", http.StatusCreated, apitest.Envelope(map[string]any{"_id": "o1"}))
	g, tokens := newTestGateway(t, srv)
	require.NoError(t, tokens.Set(context.Background(), "tok"))

	ctx := logging.WithTraceID(context.Background(), "trace-123")
	res := g.CreateOrder(ctx, OrderRequest{Items: []OrderItem{{ItemID: "c1", Quantity: 1, Price: 10}}, TotalPrice: 10})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "o1", res.Data.ID)

	req, ok := srv.Last()
	require.True(t, ok)
	assert.Equal(t, "/api/orders", req.Path)
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "trace-123", req.Header.Get(RequestIDHeader))
	assert.Equal(t, "courseclient-test", req.Header.Get("User-Agent"))

	var sent map[string]any
	require.NoError(t, req.JSON(&sent))
	assert.Equal(t, 10.0, sent["totalPrice"])
}

func TestGateway_GeneratesRequestID(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Reply(http.MethodGet, "/api/config/stripe", http.StatusOK, map[string]any{"publishableKey": "pk_test"})
	g, _ := newTestGateway(t, srv)

	res := g.StripeConfig(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, "pk_test", res.Data.PublishableKey)

	req, _ := srv.Last()
	assert.NotEmpty(t, req.Header.Get(RequestIDHeader))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestGateway_MissingTokenStillCallsServer(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Reply(http.MethodGet, "/api/reviews/my", http.StatusUnauthorized, map[string]any{"message": "Not authorized, no token"})
	g, _ := newTestGateway(t, srv)

	res := g.MyReviews(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "Not authorized, no token", res.Message)
	assert.Equal(t, 1, srv.Count())
}

func TestResult_MarshalJSON(t *testing.T) {
	ok, err := json.Marshal(OK(Ack{Message: "done"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"message":"done"}}`, string(ok))

	fail, err := json.Marshal(Fail[Ack]("nope"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"nope"}`, string(fail))

	empty := Fail[Ack]("")
	assert.Equal(t, defaultFallback, empty.Message)
}

func TestMap(t *testing.T) {
	n := Map(OK(2), func(v int) string { return "n" + string(rune('0'+v)) })
	assert.True(t, n.Success)
	assert.Equal(t, "n2", n.Data)

	f := Map(Fail[int]("bad"), func(v int) string { return "unused" })
	assert.False(t, f.Success)
	assert.Equal(t, "bad", f.Message)
}

func TestPickMessage(t *testing.T) {
	assert.Equal(t, "server", pickMessage([]byte(`{"msg":"server"}`), "transport", "fallback"))
	assert.Equal(t, "transport", pickMessage([]byte(`not json`), "transport", "fallback"))
	assert.Equal(t, "fallback", pickMessage(nil, " ", "fallback"))
	assert.Equal(t, defaultFallback, pickMessage(nil, "", ""))
}

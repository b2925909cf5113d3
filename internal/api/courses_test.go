package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/courseclient/internal/apitest"
)

func TestSearchCourses_BlankQueryMakesNoCall(t *testing.T) {
	srv := apitest.NewServer(t)
	g, _ := newTestGateway(t, srv)

	for _, q := range []string{"", "   ", "\t\n"} {
		res := g.SearchCourses(context.Background(), q)
		assert.True(t, res.Success)
		assert.NotNil(t, res.Data)
		assert.Empty(t, res.Data)
	}
	assert.Equal(t, 0, srv.Count())
}

func TestSearchCourses_SendsTrimmedQuery(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Reply(http.MethodGet, "/api/courses/search", http.StatusOK, apitest.Envelope([]any{
		map[string]any{"_id": "c1", "title": "Go basics"},
	}))
	g, _ := newTestGateway(t, srv)

	res := g.SearchCourses(context.Background(), "  go lang ")
	require.True(t, res.Success, res.Message)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "c1", res.Data[0].ID)

	req, _ := srv.Last()
	values, err := url.ParseQuery(req.RawQuery)
	require.NoError(t, err)
	assert.Equal(t, "go lang", values.Get("query"))
}

func TestCourses_PaginationQuery(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Reply(http.MethodGet, "/api/courses", http.StatusOK, apitest.Envelope(map[string]any{
		"courses": []any{
			map[string]any{"_id": "c1", "title": "One"},
			map[string]any{"_id": "c2", "title": "Two"},
		},
		"total": 12,
	}))
	g, _ := newTestGateway(t, srv)

	res := g.Courses(context.Background(), PageQuery{Page: 2, Limit: 10})
	require.True(t, res.Success, res.Message)
	require.Len(t, res.Data, 2)
	assert.Equal(t, []string{"c1", "c2"}, []string{res.Data[0].ID, res.Data[1].ID})

	req, _ := srv.Last()
	assert.Equal(t, "limit=10&page=2", req.RawQuery)
}

func TestCourses_OmitsNonPositivePaging(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Reply(http.MethodGet, "/api/courses", http.StatusOK, apitest.Envelope([]any{}))
	g, _ := newTestGateway(t, srv)

	res := g.Courses(context.Background(), PageQuery{})
	require.True(t, res.Success)
	req, _ := srv.Last()
	assert.Empty(t, req.RawQuery)
}

func TestFeaturedReelsAndAds(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Reply(http.MethodGet, "/api/courses/featuredreels", http.StatusOK, apitest.Envelope([]any{
		map[string]any{"_id": "r1", "title": "Reel", "videoUrl": "https://cdn/r1.mp4"},
	}))
	srv.Reply(http.MethodGet, "/api/ads", http.StatusOK, map[string]any{"ads": []any{
		map[string]any{"_id": "a1", "title": "Sale", "image": "https://cdn/a1.png"},
	}})
	g, _ := newTestGateway(t, srv)
	ctx := context.Background()

	reels := g.FeaturedReels(ctx, PageQuery{Page: 1, Limit: 5})
	require.True(t, reels.Success, reels.Message)
	assert.Equal(t, "r1", reels.Data[0].ID)
	assert.Equal(t, "https://cdn/r1.mp4", reels.Data[0].VideoURL)

	ads := g.Ads(ctx, PageQuery{Page: 1, Limit: 5})
	require.True(t, ads.Success, ads.Message)
	assert.Equal(t, "a1", ads.Data[0].ID)
	assert.Equal(t, "https://cdn/a1.png", ads.Data[0].ImageURL)
}

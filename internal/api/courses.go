package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Courses lists one page of the course catalog.
func (g *Gateway) Courses(ctx context.Context, q PageQuery) Result[[]Course] {
	return invoke[[]Course](ctx, g, request{
		op:       "courses",
		method:   http.MethodGet,
		path:     "/courses",
		query:    pageQuery(q),
		auth:     true,
		pluck:    []string{"courses", "items"},
		fallback: "Could not load courses.",
	})
}

// Course fetches one course.
func (g *Gateway) Course(ctx context.Context, id string) Result[Course] {
	return invoke[Course](ctx, g, request{
		op:       "course",
		method:   http.MethodGet,
		path:     "/courses/" + escape(id),
		auth:     true,
		pluck:    []string{"course"},
		fallback: "Could not load the course.",
	})
}

// SearchCourses runs a free-text search. A blank query returns an empty
// result without a network call.
func (g *Gateway) SearchCourses(ctx context.Context, query string) Result[[]Course] {
	query = strings.TrimSpace(query)
	if query == "" {
		return OK([]Course{})
	}
	return invoke[[]Course](ctx, g, request{
		op:       "search_courses",
		method:   http.MethodGet,
		path:     "/courses/search",
		query:    url.Values{"query": {query}},
		auth:     true,
		pluck:    []string{"courses", "results"},
		fallback: "Search failed.",
	})
}

// FeaturedReels lists one page of featured reels.
func (g *Gateway) FeaturedReels(ctx context.Context, q PageQuery) Result[[]Reel] {
	return invoke[[]Reel](ctx, g, request{
		op:       "featured_reels",
		method:   http.MethodGet,
		path:     "/courses/featuredreels",
		query:    pageQuery(q),
		auth:     true,
		pluck:    []string{"reels", "courses"},
		fallback: "Could not load reels.",
	})
}

// Ads lists one page of promotional banners.
func (g *Gateway) Ads(ctx context.Context, q PageQuery) Result[[]Ad] {
	return invoke[[]Ad](ctx, g, request{
		op:       "ads",
		method:   http.MethodGet,
		path:     "/ads",
		query:    pageQuery(q),
		pluck:    []string{"ads"},
		fallback: "Could not load ads.",
	})
}

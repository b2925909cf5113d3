package state

import (
	"context"
	"strings"

	"github.com/R3E-Network/courseclient/internal/api"
)

// The course list drops ids it already holds. Reels and ads are appended as
// served.
var (
	coursesResource = &pageResource[api.Course]{
		name:   "courses",
		policy: MergeDedupe,
		pick:   func(st *RootState) *Collection[api.Course] { return &st.Courses.Courses },
		fetch: func(ctx context.Context, b Backend, q api.PageQuery) api.Result[[]api.Course] {
			return b.Courses(ctx, q)
		},
	}
	reelsResource = &pageResource[api.Reel]{
		name:   "featuredReels",
		policy: MergeAppend,
		pick:   func(st *RootState) *Collection[api.Reel] { return &st.Courses.FeaturedReels },
		fetch: func(ctx context.Context, b Backend, q api.PageQuery) api.Result[[]api.Reel] {
			return b.FeaturedReels(ctx, q)
		},
	}
	adsResource = &pageResource[api.Ad]{
		name:   "ads",
		policy: MergeAppend,
		pick:   func(st *RootState) *Collection[api.Ad] { return &st.Courses.Ads },
		fetch: func(ctx context.Context, b Backend, q api.PageQuery) api.Result[[]api.Ad] {
			return b.Ads(ctx, q)
		},
	}

	courseDetailSlot = slot[api.Course]{
		name: "courses/detail",
		pick: func(st *RootState) *Request[api.Course] { return &st.Courses.Detail },
	}
)

// RefreshCourses fetches the first page and replaces the course list.
func (s *Store) RefreshCourses(ctx context.Context) api.Result[[]api.Course] {
	return fetchPage(ctx, s, coursesResource, false)
}

// LoadMoreCourses appends the next page of courses.
func (s *Store) LoadMoreCourses(ctx context.Context) api.Result[[]api.Course] {
	return fetchPage(ctx, s, coursesResource, true)
}

// RefreshReels fetches the first page of featured reels.
func (s *Store) RefreshReels(ctx context.Context) api.Result[[]api.Reel] {
	return fetchPage(ctx, s, reelsResource, false)
}

// LoadMoreReels appends the next page of featured reels.
func (s *Store) LoadMoreReels(ctx context.Context) api.Result[[]api.Reel] {
	return fetchPage(ctx, s, reelsResource, true)
}

// RefreshAds fetches the first page of ads.
func (s *Store) RefreshAds(ctx context.Context) api.Result[[]api.Ad] {
	return fetchPage(ctx, s, adsResource, false)
}

// LoadMoreAds appends the next page of ads.
func (s *Store) LoadMoreAds(ctx context.Context) api.Result[[]api.Ad] {
	return fetchPage(ctx, s, adsResource, true)
}

// FetchCourse loads one course into the detail slot.
func (s *Store) FetchCourse(ctx context.Context, id string) api.Result[api.Course] {
	return run(ctx, s, courseDetailSlot, func(ctx context.Context) api.Result[api.Course] {
		return s.backend.Course(ctx, id)
	}, nil)
}

// Search replaces the search results with the courses matching query. A
// blank query clears the results without calling the server. Results of a
// search superseded by a newer one are discarded.
func (s *Store) Search(ctx context.Context, query string) api.Result[[]api.Course] {
	query = strings.TrimSpace(query)
	if query == "" {
		s.Dispatch(searchAction{clear: true})
		return api.OK([]api.Course{})
	}

	gen := s.Dispatch(searchAction{phase: phasePending, query: query})
	result := s.backend.SearchCourses(ctx, query)
	if result.Success {
		s.Dispatch(searchAction{phase: phaseFulfilled, gen: gen, results: result.Data})
	} else {
		s.Dispatch(searchAction{phase: phaseRejected, gen: gen, err: result.Message})
	}
	return result
}

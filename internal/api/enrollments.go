package api

import (
	"context"
	"math"
	"net/http"
)

// Enroll enrolls the signed-in user in a course.
func (g *Gateway) Enroll(ctx context.Context, courseID string) Result[Enrollment] {
	return invoke[Enrollment](ctx, g, request{
		op:       "enroll",
		method:   http.MethodPost,
		path:     "/enrollments",
		body:     map[string]string{"courseId": courseID},
		auth:     true,
		pluck:    []string{"enrollment"},
		fallback: "Enrollment failed.",
	})
}

// MyEnrollments lists the signed-in user's enrollments.
func (g *Gateway) MyEnrollments(ctx context.Context) Result[[]Enrollment] {
	return invoke[[]Enrollment](ctx, g, request{
		op:       "my_enrollments",
		method:   http.MethodGet,
		path:     "/enrollments",
		auth:     true,
		pluck:    []string{"enrollments"},
		fallback: "Could not load your courses.",
	})
}

// Enrollment fetches one enrollment.
func (g *Gateway) Enrollment(ctx context.Context, id string) Result[Enrollment] {
	return invoke[Enrollment](ctx, g, request{
		op:       "enrollment",
		method:   http.MethodGet,
		path:     "/enrollments/" + escape(id),
		auth:     true,
		pluck:    []string{"enrollment"},
		fallback: "Could not load the enrollment.",
	})
}

// Unenroll removes an enrollment.
func (g *Gateway) Unenroll(ctx context.Context, id string) Result[Ack] {
	return invoke[Ack](ctx, g, request{
		op:       "unenroll",
		method:   http.MethodDelete,
		path:     "/enrollments/" + escape(id),
		auth:     true,
		fallback: "Could not leave the course.",
	})
}

// UpdateProgress records course progress as a percentage clamped to [0, 100].
func (g *Gateway) UpdateProgress(ctx context.Context, id string, progress float64) Result[Enrollment] {
	progress = math.Max(0, math.Min(100, progress))
	return invoke[Enrollment](ctx, g, request{
		op:       "update_progress",
		method:   http.MethodPatch,
		path:     "/enrollments/" + escape(id) + "/progress",
		body:     map[string]float64{"progress": progress},
		auth:     true,
		pluck:    []string{"enrollment"},
		fallback: "Could not save your progress.",
	})
}

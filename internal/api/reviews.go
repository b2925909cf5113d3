package api

import (
	"context"
	"net/http"
)

// CreateReview posts a review.
func (g *Gateway) CreateReview(ctx context.Context, r ReviewRequest) Result[Review] {
	return invoke[Review](ctx, g, request{
		op:       "create_review",
		method:   http.MethodPost,
		path:     "/reviews",
		body:     r,
		auth:     true,
		pluck:    []string{"review"},
		fallback: "Could not post the review.",
	})
}

// Reviews lists reviews for a course or product.
func (g *Gateway) Reviews(ctx context.Context, targetType, targetID string) Result[[]Review] {
	return invoke[[]Review](ctx, g, request{
		op:       "reviews",
		method:   http.MethodGet,
		path:     "/reviews/" + escape(targetType) + "/" + escape(targetID),
		pluck:    []string{"reviews"},
		fallback: "Could not load reviews.",
	})
}

// UpdateReview edits a review owned by the signed-in user.
func (g *Gateway) UpdateReview(ctx context.Context, id string, r ReviewRequest) Result[Review] {
	return invoke[Review](ctx, g, request{
		op:       "update_review",
		method:   http.MethodPut,
		path:     "/reviews/" + escape(id),
		body:     r,
		auth:     true,
		pluck:    []string{"review"},
		fallback: "Could not update the review.",
	})
}

// DeleteReview removes a review owned by the signed-in user.
func (g *Gateway) DeleteReview(ctx context.Context, id string) Result[Ack] {
	return invoke[Ack](ctx, g, request{
		op:       "delete_review",
		method:   http.MethodDelete,
		path:     "/reviews/" + escape(id),
		auth:     true,
		fallback: "Could not delete the review.",
	})
}

// MyReviews lists reviews written by the signed-in user.
func (g *Gateway) MyReviews(ctx context.Context) Result[[]Review] {
	return invoke[[]Review](ctx, g, request{
		op:       "my_reviews",
		method:   http.MethodGet,
		path:     "/reviews/my",
		auth:     true,
		pluck:    []string{"reviews"},
		fallback: "Could not load your reviews.",
	})
}

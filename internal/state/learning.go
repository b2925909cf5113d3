package state

import (
	"context"

	"github.com/R3E-Network/courseclient/internal/api"
)

var (
	enrollmentsSlot = slot[[]api.Enrollment]{
		name: "learning/enrollments",
		pick: func(st *RootState) *Request[[]api.Enrollment] { return &st.Learning.Enrollments },
	}
	enrollmentSlot = slot[api.Enrollment]{
		name: "learning/current",
		pick: func(st *RootState) *Request[api.Enrollment] { return &st.Learning.Current },
	}
	unenrollSlot = slot[api.Ack]{
		name: "learning/unenroll",
		pick: func(st *RootState) *Request[api.Ack] { return &st.Learning.Unenroll },
	}
	targetReviewsSlot = slot[[]api.Review]{
		name: "reviews/target",
		pick: func(st *RootState) *Request[[]api.Review] { return &st.Reviews.Target },
	}
	myReviewsSlot = slot[[]api.Review]{
		name: "reviews/mine",
		pick: func(st *RootState) *Request[[]api.Review] { return &st.Reviews.Mine },
	}
	submitReviewSlot = slot[api.Review]{
		name: "reviews/submit",
		pick: func(st *RootState) *Request[api.Review] { return &st.Reviews.Submit },
	}
	deleteReviewSlot = slot[api.Ack]{
		name: "reviews/delete",
		pick: func(st *RootState) *Request[api.Ack] { return &st.Reviews.Deletion },
	}
)

// Enroll enrolls the signed-in user in a course.
func (s *Store) Enroll(ctx context.Context, courseID string) api.Result[api.Enrollment] {
	return run(ctx, s, enrollmentSlot, func(ctx context.Context) api.Result[api.Enrollment] {
		return s.backend.Enroll(ctx, courseID)
	}, nil)
}

// FetchEnrollments loads the user's enrollments.
func (s *Store) FetchEnrollments(ctx context.Context) api.Result[[]api.Enrollment] {
	return run(ctx, s, enrollmentsSlot, s.backend.MyEnrollments, nil)
}

// FetchEnrollment loads one enrollment.
func (s *Store) FetchEnrollment(ctx context.Context, id string) api.Result[api.Enrollment] {
	return run(ctx, s, enrollmentSlot, func(ctx context.Context) api.Result[api.Enrollment] {
		return s.backend.Enrollment(ctx, id)
	}, nil)
}

// UpdateProgress records progress on an enrollment.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress float64) api.Result[api.Enrollment] {
	return run(ctx, s, enrollmentSlot, func(ctx context.Context) api.Result[api.Enrollment] {
		return s.backend.UpdateProgress(ctx, id, progress)
	}, nil)
}

// Unenroll leaves a course.
func (s *Store) Unenroll(ctx context.Context, id string) api.Result[api.Ack] {
	return run(ctx, s, unenrollSlot, func(ctx context.Context) api.Result[api.Ack] {
		return s.backend.Unenroll(ctx, id)
	}, nil)
}

// FetchReviews loads reviews for a course or product.
func (s *Store) FetchReviews(ctx context.Context, targetType, targetID string) api.Result[[]api.Review] {
	return run(ctx, s, targetReviewsSlot, func(ctx context.Context) api.Result[[]api.Review] {
		return s.backend.Reviews(ctx, targetType, targetID)
	}, nil)
}

// FetchMyReviews loads reviews written by the signed-in user.
func (s *Store) FetchMyReviews(ctx context.Context) api.Result[[]api.Review] {
	return run(ctx, s, myReviewsSlot, s.backend.MyReviews, nil)
}

// CreateReview posts a review.
func (s *Store) CreateReview(ctx context.Context, r api.ReviewRequest) api.Result[api.Review] {
	return run(ctx, s, submitReviewSlot, func(ctx context.Context) api.Result[api.Review] {
		return s.backend.CreateReview(ctx, r)
	}, nil)
}

// UpdateReview edits a review.
func (s *Store) UpdateReview(ctx context.Context, id string, r api.ReviewRequest) api.Result[api.Review] {
	return run(ctx, s, submitReviewSlot, func(ctx context.Context) api.Result[api.Review] {
		return s.backend.UpdateReview(ctx, id, r)
	}, nil)
}

// DeleteReview deletes a review.
func (s *Store) DeleteReview(ctx context.Context, id string) api.Result[api.Ack] {
	return run(ctx, s, deleteReviewSlot, func(ctx context.Context) api.Result[api.Ack] {
		return s.backend.DeleteReview(ctx, id)
	}, nil)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/R3E-Network/courseclient/internal/api"
	"github.com/R3E-Network/courseclient/internal/cli"
	"github.com/R3E-Network/courseclient/internal/session"
	"github.com/R3E-Network/courseclient/internal/state"
)

type command struct {
	summary string
	// run returns the value to print and whether the call succeeded. A
	// non-nil error means the command line itself was wrong.
	run func(ctx context.Context, e *env, args []string) (any, bool, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":          {"Sign in (-email, -password)", cmdLogin},
		"register":       {"Create an account (-name, -email, -password, -phone)", cmdRegister},
		"logout":         {"Forget the stored token", cmdLogout},
		"verify":         {"Check whether the stored token is still valid", cmdVerify},
		"forgot":         {"Send a password reset code (-email)", cmdForgot},
		"verify-otp":     {"Check a reset code (-email, -otp)", cmdVerifyOTP},
		"reset-password": {"Set a new password (-email, -otp, -password)", cmdResetPassword},
		"me":             {"Show the signed-in profile", cmdMe},
		"profile":        {"Update the profile (-name, -email, -phone, -bio, -avatar, -cover)", cmdProfile},
		"password":       {"Change the password (-current, -new)", cmdPassword},
		"delete-account": {"Delete the signed-in account", cmdDeleteAccount},
		"courses":        {"List courses (-more N loads N further pages)", cmdCourses},
		"course":         {"Show one course: course <id>", cmdCourse},
		"search":         {"Search courses: search <query>", cmdSearch},
		"reels":          {"List featured reels (-more N)", cmdReels},
		"ads":            {"List ads (-more N)", cmdAds},
		"products":       {"List products (-page, -limit, -category, -keyword)", cmdProducts},
		"product":        {"Show one product: product <id>", cmdProduct},
		"top-products":   {"List top-rated products", cmdTopProducts},
		"enroll":         {"Enroll in a course: enroll <courseId>", cmdEnroll},
		"enrollments":    {"List your enrollments", cmdEnrollments},
		"enrollment":     {"Show one enrollment: enrollment <id>", cmdEnrollment},
		"unenroll":       {"Leave a course: unenroll <enrollmentId>", cmdUnenroll},
		"progress":       {"Record progress: progress <enrollmentId> <percent>", cmdProgress},
		"orders":         {"List your orders", cmdOrders},
		"order":          {"Place an order (-course, -amount, -payment-id)", cmdOrder},
		"pay":            {"Create a payment intent (-amount, -currency)", cmdPay},
		"policy":         {"Show a policy document: policy <type>", cmdPolicy},
		"stripe":         {"Show the publishable payment key", cmdStripe},
		"reviews":        {"List reviews: reviews <course|product> <id>", cmdReviews},
		"my-reviews":     {"List your reviews", cmdMyReviews},
		"review":         {"Post a review (-type, -id, -rating, -comment)", cmdReview},
		"delete-review":  {"Delete a review: delete-review <id>", cmdDeleteReview},
		"watch":          {"Re-verify the session on the configured schedule until interrupted", cmdWatch},
	}
}

func newFlags(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(program+" "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func envelope[T any](r api.Result[T]) (any, bool, error) {
	return r, r.Success, nil
}

// call runs fn behind a spinner.
func call[T any](e *env, label string, fn func() api.Result[T]) api.Result[T] {
	sp := cli.NewSpinner(e.stderr, label, e.spin)
	sp.Start()
	r := fn()
	if r.Success {
		sp.Stop(true, label)
	} else {
		sp.Stop(false, r.Message)
	}
	return r
}

func exactArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func cmdLogin(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "login")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return envelope(call(e, "Signing in", func() api.Result[api.AuthResponse] {
		return e.store.Login(ctx, api.Credentials{Email: strings.TrimSpace(*email), Password: *password})
	}))
}

func cmdRegister(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "register")
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	phone := fs.String("phone", "", "Phone number")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return envelope(call(e, "Creating account", func() api.Result[api.AuthResponse] {
		return e.store.Register(ctx, api.Registration{Name: *name, Email: strings.TrimSpace(*email), Password: *password, Phone: *phone})
	}))
}

func cmdLogout(ctx context.Context, e *env, _ []string) (any, bool, error) {
	return envelope(e.store.Logout(ctx))
}

func cmdVerify(ctx context.Context, e *env, _ []string) (any, bool, error) {
	r := e.store.VerifySession(ctx)
	return api.Map(r, func(valid bool) map[string]bool {
		return map[string]bool{"valid": valid}
	}), r.Success && r.Data, nil
}

func cmdForgot(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "forgot")
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return envelope(e.store.ForgotPassword(ctx, *email))
}

func cmdVerifyOTP(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "verify-otp")
	email := fs.String("email", "", "Account email")
	otp := fs.String("otp", "", "One-time code")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return envelope(e.store.VerifyOTP(ctx, *email, *otp))
}

func cmdResetPassword(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "reset-password")
	email := fs.String("email", "", "Account email")
	otp := fs.String("otp", "", "Verified one-time code")
	password := fs.String("password", "", "New password")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return envelope(e.store.ResetPassword(ctx, api.PasswordReset{Email: strings.TrimSpace(*email), OTP: *otp, NewPassword: *password}))
}

func cmdMe(ctx context.Context, e *env, _ []string) (any, bool, error) {
	return envelope(e.store.FetchProfile(ctx))
}

func cmdProfile(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "profile")
	upd := api.ProfileUpdate{}
	fs.StringVar(&upd.Name, "name", "", "Display name")
	fs.StringVar(&upd.Email, "email", "", "Email")
	fs.StringVar(&upd.Phone, "phone", "", "Phone number")
	fs.StringVar(&upd.Bio, "bio", "", "Short bio")
	fs.StringVar(&upd.ProfileImage, "avatar", "", "Profile image: local path or existing URL")
	fs.StringVar(&upd.CoverImage, "cover", "", "Cover image: local path or existing URL")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return envelope(call(e, "Uploading profile", func() api.Result[api.User] {
		return e.store.UpdateProfile(ctx, upd)
	}))
}

func cmdPassword(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "password")
	current := fs.String("current", "", "Current password")
	next := fs.String("new", "", "New password")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return envelope(e.store.ChangePassword(ctx, api.PasswordChange{CurrentPassword: *current, NewPassword: *next}))
}

func cmdDeleteAccount(ctx context.Context, e *env, _ []string) (any, bool, error) {
	return envelope(e.store.DeleteAccount(ctx))
}

// pageFlags parses -more for the paginated listings.
func pageFlags(e *env, name string, args []string) (int, error) {
	fs := newFlags(e, name)
	more := fs.Int("more", 0, "Additional pages to load after the first")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if *more < 0 {
		return 0, fmt.Errorf("-more must not be negative")
	}
	return *more, nil
}

func cmdCourses(ctx context.Context, e *env, args []string) (any, bool, error) {
	more, err := pageFlags(e, "courses", args)
	if err != nil {
		return nil, false, err
	}
	r := call(e, "Loading courses", func() api.Result[[]api.Course] { return e.store.RefreshCourses(ctx) })
	for i := 0; i < more && r.Success && e.store.State().Courses.Courses.CanLoadMore(); i++ {
		r = e.store.LoadMoreCourses(ctx)
	}
	c := e.store.State().Courses.Courses
	return c, c.Status != state.StatusFailed, nil
}

func cmdReels(ctx context.Context, e *env, args []string) (any, bool, error) {
	more, err := pageFlags(e, "reels", args)
	if err != nil {
		return nil, false, err
	}
	r := call(e, "Loading reels", func() api.Result[[]api.Reel] { return e.store.RefreshReels(ctx) })
	for i := 0; i < more && r.Success && e.store.State().Courses.FeaturedReels.CanLoadMore(); i++ {
		r = e.store.LoadMoreReels(ctx)
	}
	c := e.store.State().Courses.FeaturedReels
	return c, c.Status != state.StatusFailed, nil
}

func cmdAds(ctx context.Context, e *env, args []string) (any, bool, error) {
	more, err := pageFlags(e, "ads", args)
	if err != nil {
		return nil, false, err
	}
	r := call(e, "Loading ads", func() api.Result[[]api.Ad] { return e.store.RefreshAds(ctx) })
	for i := 0; i < more && r.Success && e.store.State().Courses.Ads.CanLoadMore(); i++ {
		r = e.store.LoadMoreAds(ctx)
	}
	c := e.store.State().Courses.Ads
	return c, c.Status != state.StatusFailed, nil
}

func cmdCourse(ctx context.Context, e *env, args []string) (any, bool, error) {
	if err := exactArgs(args, 1, "course <id>"); err != nil {
		return nil, false, err
	}
	return envelope(e.store.FetchCourse(ctx, args[0]))
}

func cmdSearch(ctx context.Context, e *env, args []string) (any, bool, error) {
	return envelope(call(e, "Searching", func() api.Result[[]api.Course] {
		return e.store.Search(ctx, strings.Join(args, " "))
	}))
}

func cmdProducts(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "products")
	q := api.ProductQuery{}
	fs.IntVar(&q.Page, "page", 1, "Page number")
	fs.IntVar(&q.Limit, "limit", e.store.PageSize(), "Page size")
	fs.StringVar(&q.Category, "category", "", "Category filter")
	fs.StringVar(&q.Keyword, "keyword", "", "Keyword filter")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return envelope(e.gateway.Products(ctx, q))
}

func cmdProduct(ctx context.Context, e *env, args []string) (any, bool, error) {
	if err := exactArgs(args, 1, "product <id>"); err != nil {
		return nil, false, err
	}
	return envelope(e.gateway.Product(ctx, args[0]))
}

func cmdTopProducts(ctx context.Context, e *env, _ []string) (any, bool, error) {
	return envelope(e.gateway.TopProducts(ctx))
}

func cmdEnroll(ctx context.Context, e *env, args []string) (any, bool, error) {
	if err := exactArgs(args, 1, "enroll <courseId>"); err != nil {
		return nil, false, err
	}
	return envelope(e.store.Enroll(ctx, args[0]))
}

func cmdEnrollments(ctx context.Context, e *env, _ []string) (any, bool, error) {
	return envelope(e.store.FetchEnrollments(ctx))
}

func cmdEnrollment(ctx context.Context, e *env, args []string) (any, bool, error) {
	if err := exactArgs(args, 1, "enrollment <id>"); err != nil {
		return nil, false, err
	}
	return envelope(e.store.FetchEnrollment(ctx, args[0]))
}

func cmdUnenroll(ctx context.Context, e *env, args []string) (any, bool, error) {
	if err := exactArgs(args, 1, "unenroll <enrollmentId>"); err != nil {
		return nil, false, err
	}
	return envelope(e.store.Unenroll(ctx, args[0]))
}

func cmdProgress(ctx context.Context, e *env, args []string) (any, bool, error) {
	if err := exactArgs(args, 2, "progress <enrollmentId> <percent>"); err != nil {
		return nil, false, err
	}
	pct, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return nil, false, fmt.Errorf("invalid percent %q", args[1])
	}
	return envelope(e.store.UpdateProgress(ctx, args[0], pct))
}

func cmdOrders(ctx context.Context, e *env, _ []string) (any, bool, error) {
	return envelope(e.store.FetchMyOrders(ctx))
}

func cmdOrder(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "order")
	courseID := fs.String("course", "", "Course id to buy")
	amount := fs.Float64("amount", 0, "Total price")
	paymentID := fs.String("payment-id", "", "Payment intent id, when already paid")
	method := fs.String("method", "card", "Payment method")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if *courseID == "" {
		return nil, false, fmt.Errorf("-course is required")
	}
	return envelope(e.store.CreateOrder(ctx, api.OrderRequest{
		Items:         []api.OrderItem{{ItemID: *courseID, ItemType: "course", Quantity: 1, Price: *amount}},
		TotalPrice:    *amount,
		PaymentMethod: *method,
		PaymentID:     *paymentID,
	}))
}

func cmdPay(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "pay")
	amount := fs.Float64("amount", 0, "Amount in currency units, e.g. 19.99")
	currency := fs.String("currency", "usd", "ISO currency code")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	return envelope(call(e, "Creating payment", func() api.Result[api.PaymentIntent] {
		return e.store.CreatePaymentIntent(ctx, *amount, *currency)
	}))
}

func cmdPolicy(ctx context.Context, e *env, args []string) (any, bool, error) {
	if err := exactArgs(args, 1, "policy <type>"); err != nil {
		return nil, false, err
	}
	return envelope(e.store.FetchPolicy(ctx, args[0]))
}

func cmdStripe(ctx context.Context, e *env, _ []string) (any, bool, error) {
	return envelope(e.store.FetchStripeConfig(ctx))
}

func cmdReviews(ctx context.Context, e *env, args []string) (any, bool, error) {
	if err := exactArgs(args, 2, "reviews <course|product> <id>"); err != nil {
		return nil, false, err
	}
	return envelope(e.store.FetchReviews(ctx, args[0], args[1]))
}

func cmdMyReviews(ctx context.Context, e *env, _ []string) (any, bool, error) {
	return envelope(e.store.FetchMyReviews(ctx))
}

func cmdReview(ctx context.Context, e *env, args []string) (any, bool, error) {
	fs := newFlags(e, "review")
	req := api.ReviewRequest{}
	fs.StringVar(&req.TargetType, "type", "course", "Review target: course|product")
	fs.StringVar(&req.TargetID, "id", "", "Target id")
	fs.IntVar(&req.Rating, "rating", 5, "Rating from 1 to 5")
	fs.StringVar(&req.Comment, "comment", "", "Review text")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if req.TargetID == "" {
		return nil, false, fmt.Errorf("-id is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, false, fmt.Errorf("-rating must be between 1 and 5")
	}
	return envelope(e.store.CreateReview(ctx, req))
}

func cmdDeleteReview(ctx context.Context, e *env, args []string) (any, bool, error) {
	if err := exactArgs(args, 1, "delete-review <id>"); err != nil {
		return nil, false, err
	}
	return envelope(e.store.DeleteReview(ctx, args[0]))
}

func cmdWatch(ctx context.Context, e *env, _ []string) (any, bool, error) {
	expired := make(chan struct{}, 1)
	w, err := session.New(session.Config{
		Schedule: e.cfg.Session.VerifySchedule,
		Verify:   e.store.VerifySession,
		Tokens:   e.tokens,
		OnExpired: func() {
			select {
			case expired <- struct{}{}:
			default:
			}
		},
		Logger: e.logger,
	})
	if err != nil {
		return nil, false, err
	}

	valid, err := w.Check(ctx)
	if err != nil {
		return api.Fail[any](err.Error()), false, nil
	}
	if !valid {
		return api.Fail[any]("Session expired. Please sign in again."), false, nil
	}
	if err := w.Start(ctx); err != nil {
		return nil, false, err
	}
	defer w.Stop()

	select {
	case <-ctx.Done():
		return api.OK(map[string]bool{"valid": true}), true, nil
	case <-expired:
		return api.Fail[any]("Session expired. Please sign in again."), false, nil
	}
}

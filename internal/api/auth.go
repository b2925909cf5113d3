package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Credentials are the login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the sign-up inputs.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// PasswordReset completes the forgot-password flow.
type PasswordReset struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// Login authenticates and persists the returned token.
func (g *Gateway) Login(ctx context.Context, creds Credentials) Result[AuthResponse] {
	res := invoke[AuthResponse](ctx, g, request{
		op:       "login",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     creds,
		fallback: "Login failed. Please check your credentials.",
	})
	return g.persistToken(ctx, res)
}

// Register creates an account and persists the returned token.
func (g *Gateway) Register(ctx context.Context, reg Registration) Result[AuthResponse] {
	res := invoke[AuthResponse](ctx, g, request{
		op:       "register",
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     reg,
		fallback: "Registration failed. Please try again.",
	})
	return g.persistToken(ctx, res)
}

func (g *Gateway) persistToken(ctx context.Context, res Result[AuthResponse]) Result[AuthResponse] {
	if !res.Success || res.Data.Token == "" {
		return res
	}
	if err := g.tokens.Set(ctx, res.Data.Token); err != nil {
		g.logger.WithContext(ctx).WithError(err).Error("persist auth token")
		return failWith[AuthResponse](invalidError("persist_token", err, "Could not save your session."))
	}
	return res
}

// ForgotPassword asks the server to send a one-time code to email.
func (g *Gateway) ForgotPassword(ctx context.Context, email string) Result[Ack] {
	return invoke[Ack](ctx, g, request{
		op:       "forgot_password",
		method:   http.MethodPost,
		path:     "/auth/forgotpassword",
		body:     map[string]string{"email": strings.TrimSpace(email)},
		fallback: "Could not send the reset code.",
	})
}

// VerifyOTP checks a one-time code.
func (g *Gateway) VerifyOTP(ctx context.Context, email, otp string) Result[Ack] {
	return invoke[Ack](ctx, g, request{
		op:       "verify_otp",
		method:   http.MethodPost,
		path:     "/auth/verify-otp",
		body:     map[string]string{"email": strings.TrimSpace(email), "otp": strings.TrimSpace(otp)},
		fallback: "Invalid or expired code.",
	})
}

// ResetPassword sets a new password using a verified code.
func (g *Gateway) ResetPassword(ctx context.Context, reset PasswordReset) Result[Ack] {
	return invoke[Ack](ctx, g, request{
		op:       "reset_password",
		method:   http.MethodPost,
		path:     "/auth/reset-password",
		body:     reset,
		fallback: "Could not reset the password.",
	})
}

// VerifyAuthToken asks the server whether the stored token is still valid.
// A successful result carries the verdict: false when no token is stored (no
// call is made), on a 401 (which clears the stored token) or when the server
// reports the token invalid. Any other failure leaves validity unknown and is
// returned as a failure envelope.
func (g *Gateway) VerifyAuthToken(ctx context.Context) Result[bool] {
	if _, ok := g.tokens.Get(ctx); !ok {
		return OK(false)
	}
	res := invoke[json.RawMessage](ctx, g, request{
		op:       "verify_token",
		method:   http.MethodGet,
		path:     "/auth/verify-token",
		auth:     true,
		fallback: "Could not verify your session.",
	})
	if !res.Success {
		if f := res.Failure(); f.Status != http.StatusUnauthorized {
			return failWith[bool](f)
		}
		if err := g.tokens.Clear(ctx); err != nil {
			g.logger.WithContext(ctx).WithError(err).Warn("clear rejected token")
		}
		return OK(false)
	}

	// The payload may be a bare boolean, an object with "valid", or anything
	// else (typically the user), which counts as valid.
	payload := gjson.ParseBytes(res.Data)
	switch {
	case payload.Type == gjson.True:
		return OK(true)
	case payload.Type == gjson.False:
		return OK(false)
	case payload.IsObject() && payload.Get("valid").Exists():
		return OK(payload.Get("valid").Bool())
	default:
		return OK(true)
	}
}

// Logout forgets the stored token. The server keeps no session state to
// invalidate, so no call is made.
func (g *Gateway) Logout(ctx context.Context) Result[Ack] {
	if err := g.tokens.Clear(ctx); err != nil {
		g.logger.WithContext(ctx).WithError(err).Error("clear auth token")
		return failWith[Ack](invalidError("logout", err, "Could not sign out."))
	}
	return OK(Ack{})
}

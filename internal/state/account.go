package state

import (
	"context"

	"github.com/R3E-Network/courseclient/internal/api"
)

var (
	sessionSlot = slot[api.AuthResponse]{
		name: "user/session",
		pick: func(st *RootState) *Request[api.AuthResponse] { return &st.User.Session },
	}
	profileSlot = slot[api.User]{
		name: "user/profile",
		pick: func(st *RootState) *Request[api.User] { return &st.User.Profile },
	}
	passwordSlot = slot[api.Ack]{
		name: "user/password",
		pick: func(st *RootState) *Request[api.Ack] { return &st.User.Password },
	}
	recoverySlot = slot[api.Ack]{
		name: "user/recovery",
		pick: func(st *RootState) *Request[api.Ack] { return &st.User.Recovery },
	}
	deletionSlot = slot[api.Ack]{
		name: "user/deletion",
		pick: func(st *RootState) *Request[api.Ack] { return &st.User.Deletion },
	}
)

func signedIn(st *RootState, auth api.AuthResponse) {
	st.User.Authenticated = true
	if auth.User != nil {
		st.User.Profile.Data = *auth.User
		st.User.Profile.Status = StatusSucceeded
	}
}

// Login signs in. The gateway persists the token before this returns.
func (s *Store) Login(ctx context.Context, creds api.Credentials) api.Result[api.AuthResponse] {
	return run(ctx, s, sessionSlot, func(ctx context.Context) api.Result[api.AuthResponse] {
		return s.backend.Login(ctx, creds)
	}, signedIn)
}

// Register creates an account and signs in.
func (s *Store) Register(ctx context.Context, reg api.Registration) api.Result[api.AuthResponse] {
	return run(ctx, s, sessionSlot, func(ctx context.Context) api.Result[api.AuthResponse] {
		return s.backend.Register(ctx, reg)
	}, signedIn)
}

// Logout forgets the token and resets every user-scoped slice.
func (s *Store) Logout(ctx context.Context) api.Result[api.Ack] {
	result := s.backend.Logout(ctx)
	s.Dispatch(sessionReset{})
	return result
}

// VerifySession asks the server whether the stored token is valid and
// records the answer. A rejected session resets user-scoped slices; an
// inconclusive check leaves state untouched.
func (s *Store) VerifySession(ctx context.Context) api.Result[bool] {
	res := s.backend.VerifyAuthToken(ctx)
	switch {
	case !res.Success:
		s.logger.WithContext(ctx).WithField("error", res.Message).Warn("session check inconclusive")
	case res.Data:
		s.Dispatch(authenticated(true))
	default:
		s.Dispatch(sessionReset{})
	}
	return res
}

type authenticated bool

func (authenticated) Type() string { return "user/authenticated" }

func (a authenticated) apply(st *RootState, _ uint64) bool {
	st.User.Authenticated = bool(a)
	return true
}

// FetchProfile loads the signed-in user.
func (s *Store) FetchProfile(ctx context.Context) api.Result[api.User] {
	return run(ctx, s, profileSlot, s.backend.Profile, nil)
}

// UpdateProfile uploads profile changes.
func (s *Store) UpdateProfile(ctx context.Context, upd api.ProfileUpdate) api.Result[api.User] {
	return run(ctx, s, profileSlot, func(ctx context.Context) api.Result[api.User] {
		return s.backend.UpdateProfile(ctx, upd)
	}, nil)
}

// ChangePassword changes the signed-in user's password.
func (s *Store) ChangePassword(ctx context.Context, change api.PasswordChange) api.Result[api.Ack] {
	return run(ctx, s, passwordSlot, func(ctx context.Context) api.Result[api.Ack] {
		return s.backend.ChangePassword(ctx, change)
	}, nil)
}

// ForgotPassword starts password recovery for email.
func (s *Store) ForgotPassword(ctx context.Context, email string) api.Result[api.Ack] {
	return run(ctx, s, recoverySlot, func(ctx context.Context) api.Result[api.Ack] {
		return s.backend.ForgotPassword(ctx, email)
	}, nil)
}

// VerifyOTP checks the recovery code.
func (s *Store) VerifyOTP(ctx context.Context, email, otp string) api.Result[api.Ack] {
	return run(ctx, s, recoverySlot, func(ctx context.Context) api.Result[api.Ack] {
		return s.backend.VerifyOTP(ctx, email, otp)
	}, nil)
}

// ResetPassword completes password recovery.
func (s *Store) ResetPassword(ctx context.Context, reset api.PasswordReset) api.Result[api.Ack] {
	return run(ctx, s, recoverySlot, func(ctx context.Context) api.Result[api.Ack] {
		return s.backend.ResetPassword(ctx, reset)
	}, nil)
}

// DeleteAccount deletes the account; on success user-scoped slices are reset.
func (s *Store) DeleteAccount(ctx context.Context) api.Result[api.Ack] {
	return run(ctx, s, deletionSlot, s.backend.DeleteAccount, func(st *RootState, _ api.Ack) {
		deletion := st.User.Deletion
		resetSession(st)
		st.User.Deletion = deletion
	})
}

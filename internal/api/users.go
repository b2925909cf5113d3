package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ProfileUpdate is the input to UpdateProfile. ProfileImage and CoverImage
// hold either a remote URL (left untouched server-side) or a local file
// reference, which is uploaded.
type ProfileUpdate struct {
	Name         string
	Email        string
	Phone        string
	Bio          string
	ProfileImage string
	CoverImage   string
}

// PasswordChange is the input to ChangePassword.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Profile fetches the signed-in user.
func (g *Gateway) Profile(ctx context.Context) Result[User] {
	return invoke[User](ctx, g, request{
		op:       "profile",
		method:   http.MethodGet,
		path:     "/users/me",
		auth:     true,
		pluck:    []string{"user"},
		fallback: "Could not load your profile.",
	})
}

// UpdateProfile sends a multipart update. Text fields are always sent; image
// parts only when the image is a local file.
func (g *Gateway) UpdateProfile(ctx context.Context, upd ProfileUpdate) Result[User] {
	const op = "update_profile"
	const fallback = "Could not update your profile."

	body, contentType, err := buildProfileForm(upd)
	if err != nil {
		return failWith[User](invalidError(op, err, fallback))
	}
	return invoke[User](ctx, g, request{
		op:       op,
		method:   http.MethodPut,
		path:     "/users/me",
		raw:      body,
		rawType:  contentType,
		auth:     true,
		pluck:    []string{"user"},
		fallback: fallback,
	})
}

// DeleteAccount removes the account and, on success, the stored token.
func (g *Gateway) DeleteAccount(ctx context.Context) Result[Ack] {
	res := invoke[Ack](ctx, g, request{
		op:       "delete_account",
		method:   http.MethodDelete,
		path:     "/users/me",
		auth:     true,
		fallback: "Could not delete your account.",
	})
	if res.Success {
		if err := g.tokens.Clear(ctx); err != nil {
			g.logger.WithContext(ctx).WithError(err).Warn("clear token after account deletion")
		}
	}
	return res
}

// ChangePassword updates the password of the signed-in user.
func (g *Gateway) ChangePassword(ctx context.Context, change PasswordChange) Result[Ack] {
	return invoke[Ack](ctx, g, request{
		op:       "change_password",
		method:   http.MethodPost,
		path:     "/users/changepassword",
		body:     change,
		auth:     true,
		fallback: "Could not change the password.",
	})
}

// IsLocalFile reports whether ref points at a device file rather than a
// remote URL. Empty refs are neither.
func IsLocalFile(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	lower := strings.ToLower(ref)
	return !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://")
}

func buildProfileForm(upd ProfileUpdate) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", upd.Name},
		{"email", upd.Email},
		{"phone", upd.Phone},
		{"bio", upd.Bio},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	images := []struct{ field, ref string }{
		{"profileImage", upd.ProfileImage},
		{"coverImage", upd.CoverImage},
	}
	for _, img := range images {
		if !IsLocalFile(img.ref) {
			continue
		}
		if err := attachFile(w, img.field, img.ref); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func attachFile(w *multipart.Writer, field, ref string) error {
	path := strings.TrimPrefix(strings.TrimSpace(ref), "file://")
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	return nil
}

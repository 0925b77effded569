package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

const authTimeout = 10 * time.Second

type AuthRepo interface {
	SignUp(ctx context.Context, email, password string, data map[string]interface{}) (*types.User, error)
	SignIn(ctx context.Context, email, password string) (*types.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*types.Session, error)
	SendPasswordReset(ctx context.Context, email, redirectTo string) error
	GetAuthUser(ctx context.Context, accessToken string) (*types.User, error)
	ListUsersPage(ctx context.Context, page, perPage int) ([]types.User, error)
}

// queryTransport appends fixed query parameters to every auth request. The
// auth client has no knobs for pagination or redirect targets, but the
// server reads both from the query string.
type queryTransport struct {
	params url.Values
	base   http.RoundTripper
}

func (t *queryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	q := r.URL.Query()
	for k, vs := range t.params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	r.URL.RawQuery = q.Encode()
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

func withQuery(params url.Values) http.Client {
	return http.Client{Timeout: authTimeout, Transport: &queryTransport{params: params}}
}

func (su *SupabaseRepo) SignUp(ctx context.Context, email, password string, data map[string]interface{}) (*types.User, error) {
	res, err := su.auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     data,
	})
	if err != nil {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "already registered"), strings.Contains(msg, "already been registered"):
			return nil, fmt.Errorf("email already in use: %w", apperror.ErrConflict)
		case strings.Contains(msg, "password"):
			return nil, apperror.New(http.StatusBadRequest, "Password does not meet the requirements.", apperror.ErrInvalidInput)
		case strings.Contains(msg, "invalid") && strings.Contains(msg, "email"):
			return nil, apperror.New(http.StatusBadRequest, "Invalid email address.", apperror.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}

	// With autoconfirm on the user arrives inside the session.
	user := res.User
	if user.ID == uuid.Nil {
		user = res.Session.User
	}
	return &user, nil
}

func (su *SupabaseRepo) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	res, err := su.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "invalid login credentials"), strings.Contains(msg, "invalid_credentials"):
			return nil, fmt.Errorf("sign in: %w", apperror.ErrUnauthorized)
		case strings.Contains(msg, "email not confirmed"), strings.Contains(msg, "email_not_confirmed"):
			return nil, apperror.New(http.StatusBadRequest, "Please confirm your email before logging in.", apperror.ErrInvalidInput)
		case strings.Contains(msg, "response status code 4"):
			return nil, apperror.New(http.StatusBadRequest, "Could not sign in. Please try again.", apperror.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return &res.Session, nil
}

func (su *SupabaseRepo) RefreshSession(ctx context.Context, refreshToken string) (*types.Session, error) {
	res, err := su.auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return &res.Session, nil
}

func (su *SupabaseRepo) SendPasswordReset(ctx context.Context, email, redirectTo string) error {
	client := su.auth
	if redirectTo != "" {
		client = client.WithClient(withQuery(url.Values{"redirect_to": {redirectTo}}))
	}
	if err := client.Recover(types.RecoverRequest{Email: email}); err != nil {
		return fmt.Errorf("failed to send password reset: %w", err)
	}
	return nil
}

func (su *SupabaseRepo) GetAuthUser(ctx context.Context, accessToken string) (*types.User, error) {
	res, err := su.auth.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, fmt.Errorf("get auth user: %w: %v", apperror.ErrUnauthorized, err)
	}
	return &res.User, nil
}

func (su *SupabaseRepo) ListUsersPage(ctx context.Context, page, perPage int) ([]types.User, error) {
	client := su.admin.WithClient(withQuery(url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}))
	res, err := client.AdminListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users page %d: %w", page, err)
	}
	return res.Users, nil
}

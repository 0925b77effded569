package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	ProviderGoogle = "google"
	ProviderEmail  = "email"

	usersPerPage = 1000
	maxUserPages = 100
)

type ProviderCheck struct {
	Exists   bool   `json:"exists"`
	Provider string `json:"provider,omitempty"`
}

type ProviderService struct {
	auth    models.AuthRepo
	perPage int
}

func NewProviderService(auth models.AuthRepo) *ProviderService {
	return &ProviderService{auth: auth, perPage: usersPerPage}
}

// ClassifyProviders reports google only for accounts whose every sign-in
// method is Google. Password accounts, mixed accounts and accounts with no
// recorded provider are email.
func ClassifyProviders(providers []string) string {
	if len(providers) == 0 {
		return ProviderEmail
	}
	for _, p := range providers {
		if !strings.EqualFold(p, ProviderGoogle) {
			return ProviderEmail
		}
	}
	return ProviderGoogle
}

// FindUserByEmail walks the admin user listing until the email turns up or
// the listing runs out. A nil user means no such account.
func (ps *ProviderService) FindUserByEmail(ctx context.Context, email string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var lastFirst uuid.UUID

	for page := 1; page <= maxUserPages; page++ {
		users, err := ps.auth.ListUsersPage(ctx, page, ps.perPage)
		if err != nil {
			return nil, fmt.Errorf("list users page %d: %w", page, err)
		}
		if len(users) == 0 {
			return nil, nil
		}
		// Servers that ignore the page parameter keep returning page one.
		if page > 1 && users[0].ID == lastFirst {
			return nil, nil
		}
		lastFirst = users[0].ID

		for i := range users {
			if strings.ToLower(users[i].Email) == email {
				return &users[i], nil
			}
		}
		if len(users) < ps.perPage {
			return nil, nil
		}
	}
	return nil, nil
}

func (ps *ProviderService) CheckProvider(ctx context.Context, email string) (*ProviderCheck, error) {
	user, err := ps.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &ProviderCheck{Exists: false}, nil
	}
	return &ProviderCheck{
		Exists:   true,
		Provider: ClassifyProviders(helpers.ProvidersOf(*user)),
	}, nil
}

// IsGoogleOnly backs the login form hint. Unknown emails are not Google.
func (ps *ProviderService) IsGoogleOnly(ctx context.Context, email string) (bool, error) {
	check, err := ps.CheckProvider(ctx, email)
	if err != nil {
		return false, err
	}
	return check.Exists && check.Provider == ProviderGoogle, nil
}

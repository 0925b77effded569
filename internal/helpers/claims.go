package helpers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

// ContextUserKey is where the authenticated SessionUser lives on a gin context.
const ContextUserKey = "user"

type SessionClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// SessionUser is the caller identity resolved from an access token.
type SessionUser struct {
	ID          uuid.UUID              `json:"id"`
	Email       string                 `json:"email"`
	Role        string                 `json:"role"`
	Providers   []string               `json:"providers,omitempty"`
	Metadata    map[string]interface{} `json:"user_metadata,omitempty"`
	AccessToken string                 `json:"-"`
}

func SessionUserFromClaims(claims *SessionClaims, token string) (*SessionUser, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject %q: %w", claims.Subject, err)
	}
	providers := claims.AppMetadata.Providers
	if len(providers) == 0 && claims.AppMetadata.Provider != "" {
		providers = []string{claims.AppMetadata.Provider}
	}
	return &SessionUser{
		ID:          id,
		Email:       claims.Email,
		Role:        claims.Role,
		Providers:   providers,
		Metadata:    claims.UserMetadata,
		AccessToken: token,
	}, nil
}

func SessionUserFromAuthUser(u types.User, token string) *SessionUser {
	return &SessionUser{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Providers:   ProvidersOf(u),
		Metadata:    u.UserMetadata,
		AccessToken: token,
	}
}

// FullName prefers the full_name metadata key and falls back to name, which
// is what Google sign-ins populate.
func (su *SessionUser) FullName() string {
	for _, key := range []string{"full_name", "name"} {
		if v, ok := su.Metadata[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (su *SessionUser) IsOwner(id uuid.UUID) bool {
	return su.ID == id
}

// ProvidersOf lists the sign-in providers attached to an auth user, reading
// app_metadata.providers, then app_metadata.provider, then the identities.
func ProvidersOf(u types.User) []string {
	var providers []string
	switch raw := u.AppMetadata["providers"].(type) {
	case []interface{}:
		for _, p := range raw {
			if s, ok := p.(string); ok && s != "" {
				providers = append(providers, s)
			}
		}
	case []string:
		providers = append(providers, raw...)
	}
	if len(providers) > 0 {
		return providers
	}
	if p, ok := u.AppMetadata["provider"].(string); ok && p != "" {
		return []string{p}
	}
	for _, identity := range u.Identities {
		if identity.Provider != "" {
			providers = append(providers, identity.Provider)
		}
	}
	return providers
}

// CurrentUser returns the SessionUser stored by the auth middlewares.
func CurrentUser(c *gin.Context) (*SessionUser, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*SessionUser)
	return user, ok && user != nil
}

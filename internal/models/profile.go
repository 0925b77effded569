package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/google/uuid"
)

const (
	ProfileTable        = "profiles"
	UpsertProfileSelfFn = "upsert_profile_self"

	profileColumns = "id,email,full_name,university_id,course,user_role,phone_number,updated_at,universities(id,name,city,state,is_active)"
)

type Profile struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	FullName     string         `json:"full_name"`
	UniversityID string         `json:"university_id,omitempty"`
	Course       string         `json:"course,omitempty"`
	UserRole     string         `json:"user_role,omitempty"`
	PhoneNumber  string         `json:"phone_number,omitempty"`
	UpdatedAt    *time.Time     `json:"updated_at,omitempty"`
	University   *UniversityRef `json:"universities,omitempty"`
}

// IsComplete reports whether the onboarding fields are filled in.
func (p *Profile) IsComplete() bool {
	return p.UniversityID != "" && p.Course != ""
}

// NewProfile is the minimal row written the first time a user signs in.
type NewProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Course    *string   `json:"course"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpsertProfileParams struct {
	UniversityID string  `json:"p_university_id"`
	Course       string  `json:"p_course"`
	Phone        *string `json:"p_phone"`
	FullName     *string `json:"p_full_name"`
}

type ProfileRepo interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	CreateProfile(ctx context.Context, p *NewProfile) error
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Profile, error)
	UpsertProfileSelf(ctx context.Context, accessToken string, params UpsertProfileParams) error
}

func (su *SupabaseRepo) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID: %w", apperror.ErrInvalidInput)
	}
	raw, _, err := su.db.From(ProfileTable).
		Select(profileColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, pgError("get profile", err)
	}

	// Supabase returns an array even for single results
	var profiles []Profile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile rows: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile %s: %w", id, apperror.ErrNotFound)
	}
	return &profiles[0], nil
}

func (su *SupabaseRepo) CreateProfile(ctx context.Context, p *NewProfile) error {
	_, _, err := su.db.From(ProfileTable).
		Insert(p, false, "", "minimal", "").
		Execute()
	if err != nil {
		return pgError("create profile", err)
	}
	return nil
}

func (su *SupabaseRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID: %w", apperror.ErrInvalidInput)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", apperror.ErrInvalidInput)
	}

	raw, _, err := su.db.From(ProfileTable).
		Update(fields, "representation", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, pgError("update profile", err)
	}

	var profiles []Profile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile %s: %w", id, apperror.ErrNotFound)
	}
	return &profiles[0], nil
}

// UpsertProfileSelf runs the self-service profile RPC as the signed-in user;
// the function keys the row on auth.uid().
func (su *SupabaseRepo) UpsertProfileSelf(ctx context.Context, accessToken string, params UpsertProfileParams) error {
	client := su.restAs(accessToken)
	body := client.Rpc(UpsertProfileSelfFn, "", params)
	if client.ClientError != nil {
		return fmt.Errorf("rpc %s: %w", UpsertProfileSelfFn, client.ClientError)
	}

	var rpcErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(body), &rpcErr) == nil && rpcErr.Code != "" && rpcErr.Message != "" {
		return pgError("rpc "+UpsertProfileSelfFn, fmt.Errorf("(%s) %s", rpcErr.Code, rpcErr.Message))
	}
	return nil
}

package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/google/uuid"
)

const BusinessesTable = "businesses"

type Business struct {
	ID                uuid.UUID `json:"id"`
	BusinessName      string    `json:"business_name"`
	BusinessType      string    `json:"business_type"`
	ContactPersonName string    `json:"contact_person_name,omitempty"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	PasswordHash      string    `json:"password_hash"`
	IsVerified        bool      `json:"is_verified"`
	VerificationToken *string   `json:"verification_token"`
}

type BusinessRepo interface {
	CreateBusiness(ctx context.Context, b *Business) error
	VerifyBusiness(ctx context.Context, token string) error
	GetBusiness(ctx context.Context, id uuid.UUID) (*Business, error)
}

func (su *SupabaseRepo) CreateBusiness(ctx context.Context, b *Business) error {
	_, _, err := su.db.From(BusinessesTable).
		Insert(b, false, "", "minimal", "").
		Execute()
	if err != nil {
		return pgError("create business", err)
	}
	return nil
}

// VerifyBusiness marks the business owning token as verified and burns the
// token.
func (su *SupabaseRepo) VerifyBusiness(ctx context.Context, token string) error {
	raw, _, err := su.db.From(BusinessesTable).
		Update(map[string]interface{}{
			"is_verified":        true,
			"verification_token": nil,
		}, "representation", "").
		Eq("verification_token", token).
		Execute()
	if err != nil {
		return pgError("verify business", err)
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal verified business: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("verification token: %w", apperror.ErrNotFound)
	}
	return nil
}

func (su *SupabaseRepo) GetBusiness(ctx context.Context, id uuid.UUID) (*Business, error) {
	raw, _, err := su.db.From(BusinessesTable).
		Select("id,business_name,business_type,contact_person_name,email,phone,is_verified", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, pgError("get business", err)
	}
	var rows []Business
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal business: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("business %s: %w", id, apperror.ErrNotFound)
	}
	return &rows[0], nil
}

package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/supabase-community/postgrest-go"
)

const (
	AccommodationsTable = "accommodations"

	accommodationCardColumns = "id,title,rent,photos,city,property_type,gender_type"
)

type Accommodation struct {
	ID           string     `json:"id"`
	Code         string     `json:"code,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Rent         *float64   `json:"rent"`
	Photos       []string   `json:"photos"`
	City         string     `json:"city"`
	Address      string     `json:"address,omitempty"`
	PropertyType string     `json:"property_type"`
	GenderType   string     `json:"gender_type"`
	Amenities    []string   `json:"amenities,omitempty"`
	IsActive     bool       `json:"is_active,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type AccommodationRepo interface {
	ListActiveAccommodations(ctx context.Context) ([]Accommodation, error)
	GetActiveAccommodation(ctx context.Context, id string) (*Accommodation, error)
}

func (su *SupabaseRepo) ListActiveAccommodations(ctx context.Context) ([]Accommodation, error) {
	raw, _, err := su.db.From(AccommodationsTable).
		Select(accommodationCardColumns, "", false).
		Eq("is_active", "true").
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, pgError("list accommodations", err)
	}
	list := []Accommodation{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accommodations: %w", err)
	}
	return list, nil
}

func (su *SupabaseRepo) GetActiveAccommodation(ctx context.Context, id string) (*Accommodation, error) {
	raw, _, err := su.db.From(AccommodationsTable).
		Select("*", "", false).
		Eq("id", id).
		Eq("is_active", "true").
		Execute()
	if err != nil {
		return nil, pgError("get accommodation", err)
	}
	var list []Accommodation
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accommodation: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("accommodation %s: %w", id, apperror.ErrNotFound)
	}
	return &list[0], nil
}

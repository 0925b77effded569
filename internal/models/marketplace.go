package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

const (
	MarketplaceItemsTable = "marketplace_items"
	ReportsTable          = "reports"

	StatusAvailable = "Available"

	listingColumns = "*,profiles(full_name,phone_number),universities(name,city)"
)

type MarketplaceItem struct {
	ID           string         `json:"id,omitempty"`
	Type         string         `json:"type" validate:"required,oneof=buy sell"`
	Title        string         `json:"title" validate:"required,max=200"`
	Description  string         `json:"description,omitempty" validate:"max=5000"`
	Category     string         `json:"category" validate:"required"`
	Location     string         `json:"location,omitempty"`
	Price        *float64       `json:"price,omitempty" validate:"omitempty,gte=0"`
	Budget       *float64       `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Negotiable   *bool          `json:"negotiable,omitempty"`
	Condition    string         `json:"condition,omitempty"`
	Status       string         `json:"status,omitempty"`
	Images       []string       `json:"images,omitempty"`
	UserID       uuid.UUID      `json:"user_id"`
	UniversityID string         `json:"university_id,omitempty"`
	CreatedAt    *time.Time     `json:"created_at,omitempty"`
	Seller       *SellerRef     `json:"profiles,omitempty"`
	University   *UniversityRef `json:"universities,omitempty"`
}

type Seller struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type SellerRef struct {
	Seller
}

func (s *SellerRef) UnmarshalJSON(b []byte) error {
	return unmarshalOneOrFirst(b, &s.Seller)
}

// ListingFilter narrows the city-scoped marketplace listing.
type ListingFilter struct {
	Category  string
	Condition string
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	Ascending bool
}

type Report struct {
	ItemID     string    `json:"item_id"`
	ReporterID uuid.UUID `json:"reporter_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	Reason     string    `json:"reason"`
	Message    *string   `json:"message"`
}

type MarketplaceRepo interface {
	CreateItem(ctx context.Context, item *MarketplaceItem) (*MarketplaceItem, error)
	ListItems(ctx context.Context, universityIDs []string, filter ListingFilter) ([]MarketplaceItem, error)
	ListItemsByUser(ctx context.Context, userID uuid.UUID) ([]MarketplaceItem, error)
	UpdateItem(ctx context.Context, itemID string, userID uuid.UUID, fields map[string]interface{}) (*MarketplaceItem, error)
	DeleteItem(ctx context.Context, itemID string, userID uuid.UUID) error
	GetItemSeller(ctx context.Context, itemID string) (uuid.UUID, error)
	CreateReport(ctx context.Context, report *Report) error
}

func (su *SupabaseRepo) CreateItem(ctx context.Context, item *MarketplaceItem) (*MarketplaceItem, error) {
	raw, _, err := su.db.From(MarketplaceItemsTable).
		Insert(item, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, pgError("create listing", err)
	}
	return firstItem(raw, "created listing")
}

func (su *SupabaseRepo) ListItems(ctx context.Context, universityIDs []string, f ListingFilter) ([]MarketplaceItem, error) {
	if len(universityIDs) == 0 {
		return []MarketplaceItem{}, nil
	}

	q := su.db.From(MarketplaceItemsTable).
		Select(listingColumns, "", false).
		Eq("status", StatusAvailable).
		In("university_id", universityIDs)

	if f.Category != "" {
		q = q.Eq("category", f.Category)
	}
	if f.Condition != "" {
		q = q.Eq("condition", f.Condition)
	}
	// Both bounds go into one and=() clause; separate Gte/Lte calls would
	// overwrite each other on the same column.
	var bounds []string
	if f.MinPrice != nil {
		bounds = append(bounds, "price.gte."+formatFloat(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		bounds = append(bounds, "price.lte."+formatFloat(*f.MaxPrice))
	}
	if len(bounds) > 0 {
		q = q.And(strings.Join(bounds, ","), "")
	}
	if f.Search != "" {
		q = q.Ilike("title", "%"+f.Search+"%")
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	raw, _, err := q.Order(sortBy, &postgrest.OrderOpts{Ascending: f.Ascending}).Execute()
	if err != nil {
		return nil, pgError("list listings", err)
	}
	return decodeItems(raw)
}

func (su *SupabaseRepo) ListItemsByUser(ctx context.Context, userID uuid.UUID) ([]MarketplaceItem, error) {
	raw, _, err := su.db.From(MarketplaceItemsTable).
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, pgError("list my listings", err)
	}
	return decodeItems(raw)
}

func (su *SupabaseRepo) UpdateItem(ctx context.Context, itemID string, userID uuid.UUID, fields map[string]interface{}) (*MarketplaceItem, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", apperror.ErrInvalidInput)
	}
	raw, _, err := su.db.From(MarketplaceItemsTable).
		Update(fields, "representation", "").
		Eq("id", itemID).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		return nil, pgError("update listing", err)
	}
	return firstItem(raw, "listing "+itemID)
}

func (su *SupabaseRepo) DeleteItem(ctx context.Context, itemID string, userID uuid.UUID) error {
	raw, _, err := su.db.From(MarketplaceItemsTable).
		Delete("representation", "").
		Eq("id", itemID).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		return pgError("delete listing", err)
	}
	_, err = firstItem(raw, "listing "+itemID)
	return err
}

func (su *SupabaseRepo) GetItemSeller(ctx context.Context, itemID string) (uuid.UUID, error) {
	raw, _, err := su.db.From(MarketplaceItemsTable).
		Select("user_id", "", false).
		Eq("id", itemID).
		Execute()
	if err != nil {
		return uuid.Nil, pgError("get listing seller", err)
	}
	item, err := firstItem(raw, "listing "+itemID)
	if err != nil {
		return uuid.Nil, err
	}
	return item.UserID, nil
}

func (su *SupabaseRepo) CreateReport(ctx context.Context, report *Report) error {
	_, _, err := su.db.From(ReportsTable).
		Insert(report, false, "", "minimal", "").
		Execute()
	if err != nil {
		return pgError("create report", err)
	}
	return nil
}

func decodeItems(raw []byte) ([]MarketplaceItem, error) {
	items := []MarketplaceItem{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listings: %w", err)
	}
	return items, nil
}

func firstItem(raw []byte, what string) (*MarketplaceItem, error) {
	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
	}
	return &items[0], nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

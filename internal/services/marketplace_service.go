package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const reportAction = "report"

var sortableColumns = map[string]bool{
	"created_at": true,
	"price":      true,
	"title":      true,
	"updated_at": true,
}

// updatableFields is everything an owner may change on a listing.
var updatableFields = map[string]bool{
	"title":       true,
	"description": true,
	"category":    true,
	"location":    true,
	"price":       true,
	"budget":      true,
	"negotiable":  true,
	"condition":   true,
	"status":      true,
	"images":      true,
}

type ReportRequest struct {
	Reason  string `json:"reason" validate:"required"`
	Message string `json:"message"`
}

type MarketplaceService struct {
	repo         models.MarketplaceRepo
	profiles     models.ProfileRepo
	universities models.UniversityRepo
	uploader     helpers.ImageUploader
	throttle     ReportThrottle
	policy       *bluemonday.Policy
	logger       *slog.Logger
}

func NewMarketplaceService(
	repo models.MarketplaceRepo,
	profiles models.ProfileRepo,
	universities models.UniversityRepo,
	uploader helpers.ImageUploader,
	throttle ReportThrottle,
	logger *slog.Logger,
) *MarketplaceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketplaceService{
		repo:         repo,
		profiles:     profiles,
		universities: universities,
		uploader:     uploader,
		throttle:     throttle,
		policy:       bluemonday.StrictPolicy(),
		logger:       logger,
	}
}

// ParseListingQuery reads the listing filters from a query string.
func ParseListingQuery(q url.Values) (models.ListingFilter, error) {
	f := models.ListingFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		Condition: strings.TrimSpace(q.Get("condition")),
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		Ascending: q.Get("sortOrder") == "asc",
	}

	var err error
	if f.MinPrice, err = parsePrice(q.Get("minPrice"), "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q.Get("maxPrice"), "maxPrice"); err != nil {
		return f, err
	}
	if f.SortBy == "" {
		f.SortBy = "created_at"
	}
	if !sortableColumns[f.SortBy] {
		return f, invalidInput(fmt.Sprintf("cannot sort by %q", f.SortBy))
	}
	return f, nil
}

func parsePrice(raw, field string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, invalidInput(fmt.Sprintf("%s must be a non-negative number", field))
	}
	return &v, nil
}

func (ms *MarketplaceService) sanitize(s string) string {
	return strings.TrimSpace(ms.policy.Sanitize(s))
}

func (ms *MarketplaceService) CreateListing(ctx context.Context, userID uuid.UUID, item *models.MarketplaceItem) (*models.MarketplaceItem, error) {
	item.Title = ms.sanitize(item.Title)
	item.Description = ms.sanitize(item.Description)
	if err := models.Validate.Struct(item); err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Type, title, and category are required fields.", apperror.ErrInvalidInput)
	}

	profile, err := ms.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seller profile: %w", err)
	}
	if profile.UniversityID == "" {
		return nil, apperror.New(http.StatusBadRequest, "Complete your profile before creating a listing.", apperror.ErrInvalidInput)
	}

	item.ID = ""
	item.UserID = userID
	item.UniversityID = profile.UniversityID
	item.Status = models.StatusAvailable
	item.CreatedAt = nil
	item.Seller = nil
	item.University = nil

	if len(item.Images) > 0 && ms.uploader != nil {
		urls, err := ms.uploader.UploadImages(ctx, item.Images, helpers.MarketplaceFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload listing images: %w", err)
		}
		item.Images = urls
	}

	return ms.repo.CreateItem(ctx, item)
}

// ListListings returns available items from every university in the
// requester's city.
func (ms *MarketplaceService) ListListings(ctx context.Context, userID uuid.UUID, filter models.ListingFilter) ([]models.MarketplaceItem, error) {
	profile, err := ms.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester profile: %w", err)
	}
	if profile.University == nil || profile.University.City == "" {
		return nil, apperror.New(http.StatusBadRequest, "Your profile has no university city.", apperror.ErrInvalidInput)
	}

	ids, err := ms.universities.UniversityIDsInCity(ctx, profile.University.City)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.MarketplaceItem{}, nil
	}
	return ms.repo.ListItems(ctx, ids, filter)
}

func (ms *MarketplaceService) MyListings(ctx context.Context, userID uuid.UUID) ([]models.MarketplaceItem, error) {
	return ms.repo.ListItemsByUser(ctx, userID)
}

func (ms *MarketplaceService) UpdateListing(ctx context.Context, userID uuid.UUID, itemID string, changes map[string]interface{}) (*models.MarketplaceItem, error) {
	fields := make(map[string]interface{}, len(changes))
	for k, v := range changes {
		if !updatableFields[k] {
			continue
		}
		if s, ok := v.(string); ok && (k == "title" || k == "description") {
			v = ms.sanitize(s)
		}
		if k == "price" || k == "budget" {
			if err := checkAmount(k, v); err != nil {
				return nil, err
			}
		}
		fields[k] = v
	}
	if len(fields) == 0 {
		return nil, invalidInput("no updatable fields provided")
	}
	if t, ok := fields["title"].(string); ok && t == "" {
		return nil, invalidInput("title cannot be empty")
	}
	return ms.repo.UpdateItem(ctx, itemID, userID, fields)
}

// checkAmount holds updates to the same rule as creation: amounts are
// numbers no smaller than zero. Null clears the column.
func checkAmount(field string, v interface{}) error {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		if n < 0 {
			return invalidInput(field + " must be zero or greater")
		}
		return nil
	case int:
		if n < 0 {
			return invalidInput(field + " must be zero or greater")
		}
		return nil
	}
	return invalidInput(field + " must be a number")
}

func (ms *MarketplaceService) DeleteListing(ctx context.Context, userID uuid.UUID, itemID string) error {
	return ms.repo.DeleteItem(ctx, itemID, userID)
}

func (ms *MarketplaceService) ReportListing(ctx context.Context, reporterID uuid.UUID, itemID string, req *ReportRequest) (*models.Report, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, apperror.New(http.StatusBadRequest, "A reason for the report is required.", apperror.ErrInvalidInput)
	}

	sellerID, err := ms.repo.GetItemSeller(ctx, itemID)
	if err != nil {
		return nil, err
	}

	allowed, err := ms.throttle.Allow(ctx, reportAction, itemID, reporterID.String())
	if err != nil {
		// A broken throttle store should not block reports.
		ms.logger.Warn("report throttle unavailable", "item_id", itemID, "error", err)
		allowed = true
	}
	if !allowed {
		return nil, apperror.New(http.StatusTooManyRequests, "You have already reported this listing.", apperror.ErrRateLimitExceeded)
	}

	report := &models.Report{
		ItemID:     itemID,
		ReporterID: reporterID,
		SellerID:   sellerID,
		Reason:     strings.TrimSpace(req.Reason),
	}
	if msg := strings.TrimSpace(req.Message); msg != "" {
		report.Message = &msg
	}
	if err := ms.repo.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

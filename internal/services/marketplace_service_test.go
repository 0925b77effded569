package services

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	folder string
	got    []string
}

func (f *fakeUploader) UploadImages(_ context.Context, images []string, folder string) ([]string, error) {
	f.folder, f.got = folder, images
	out := make([]string, len(images))
	for i := range images {
		out[i] = "https://res.cloudinary.com/demo/image/upload/" + string(rune('a'+i)) + ".jpg"
	}
	return out, nil
}

func newMarketplaceFixture() (*MarketplaceService, *fakeMarketplace, *fakeProfiles, uuid.UUID, *fakeUploader) {
	userID := uuid.New()
	profiles := &fakeProfiles{profiles: map[uuid.UUID]*models.Profile{
		userID: {
			ID:           userID,
			UniversityID: "u-1",
			Course:       "BTech",
			University:   &models.UniversityRef{University: models.University{ID: "u-1", City: "Varanasi"}},
		},
	}}
	unis := &fakeUniversities{byCity: map[string][]string{"Varanasi": {"u-1", "u-2"}}}
	repo := &fakeMarketplace{sellers: map[string]uuid.UUID{"item-1": uuid.New()}}
	up := &fakeUploader{}
	return NewMarketplaceService(repo, profiles, unis, up, &memThrottle{}, nil), repo, profiles, userID, up
}

func TestParseListingQuery(t *testing.T) {
	f, err := ParseListingQuery(url.Values{
		"category":  {"Books"},
		"minPrice":  {"100"},
		"maxPrice":  {"500.5"},
		"sortBy":    {"price"},
		"sortOrder": {"asc"},
		"search":    {" calc "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Books", f.Category)
	assert.Equal(t, 100.0, *f.MinPrice)
	assert.Equal(t, 500.5, *f.MaxPrice)
	assert.Equal(t, "price", f.SortBy)
	assert.True(t, f.Ascending)
	assert.Equal(t, "calc", f.Search)

	f, err = ParseListingQuery(url.Values{"sortOrder": {"up"}})
	require.NoError(t, err)
	assert.Equal(t, "created_at", f.SortBy)
	assert.False(t, f.Ascending)
	assert.Nil(t, f.MinPrice)

	_, err = ParseListingQuery(url.Values{"sortBy": {"user_id;drop"}})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))

	_, err = ParseListingQuery(url.Values{"minPrice": {"cheap"}})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestListListingsScopesToCity(t *testing.T) {
	svc, repo, _, userID, _ := newMarketplaceFixture()

	items, err := svc.ListListings(context.Background(), userID, models.ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, []string{"u-1", "u-2"}, repo.listIDs)
}

func TestListListingsEmptyCitySkipsQuery(t *testing.T) {
	svc, repo, profiles, userID, _ := newMarketplaceFixture()
	profiles.profiles[userID].University.City = "Nowhere"

	items, err := svc.ListListings(context.Background(), userID, models.ListingFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, repo.listCalled)
}

func TestListListingsWithoutCity(t *testing.T) {
	svc, _, profiles, userID, _ := newMarketplaceFixture()
	profiles.profiles[userID].University = nil

	_, err := svc.ListListings(context.Background(), userID, models.ListingFilter{})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))

	_, err = svc.ListListings(context.Background(), uuid.New(), models.ListingFilter{})
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestCreateListing(t *testing.T) {
	svc, repo, _, userID, up := newMarketplaceFixture()
	price := 450.0

	item, err := svc.CreateListing(context.Background(), userID, &models.MarketplaceItem{
		ID:          "client-chosen",
		Type:        "sell",
		Title:       `<b>Engineering</b> Maths<script>alert(1)</script>`,
		Description: `<a href="x">Good</a> condition`,
		Category:    "Books",
		Price:       &price,
		Status:      "Sold",
		Images:      []string{"data:image/png;base64,AAAA"},
	})
	require.NoError(t, err)
	assert.Same(t, repo.created, item)
	assert.Equal(t, "Engineering Maths", item.Title)
	assert.Equal(t, "Good condition", item.Description)
	assert.Equal(t, userID, item.UserID)
	assert.Equal(t, "u-1", item.UniversityID)
	assert.Equal(t, models.StatusAvailable, item.Status)
	assert.Empty(t, item.ID)
	assert.Equal(t, "campsum/marketplace", up.folder)
	assert.Len(t, item.Images, 1)
}

func TestCreateListingRequiresFields(t *testing.T) {
	svc, repo, _, userID, _ := newMarketplaceFixture()

	_, err := svc.CreateListing(context.Background(), userID, &models.MarketplaceItem{Type: "sell", Title: "<p></p>", Category: "Books"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
	assert.Nil(t, repo.created)
}

func TestUpdateListingKeepsOnlyEditableFields(t *testing.T) {
	svc, repo, _, userID, _ := newMarketplaceFixture()

	_, err := svc.UpdateListing(context.Background(), userID, "item-1", map[string]interface{}{
		"title":   "<i>New</i> title",
		"user_id": uuid.New().String(),
		"price":   10.0,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "New title", "price": 10.0}, repo.updated)

	_, err = svc.UpdateListing(context.Background(), userID, "item-1", map[string]interface{}{"user_id": "x"})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestUpdateListingRejectsNegativeAmounts(t *testing.T) {
	svc, repo, _, userID, _ := newMarketplaceFixture()
	ctx := context.Background()

	for _, changes := range []map[string]interface{}{
		{"price": -5.0},
		{"budget": -0.5, "title": "Cheap desk"},
		{"price": "free"},
	} {
		_, err := svc.UpdateListing(ctx, userID, "item-1", changes)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
		assert.Nil(t, repo.updated)
	}

	_, err := svc.UpdateListing(ctx, userID, "item-1", map[string]interface{}{"price": 0.0, "budget": nil})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"price": 0.0, "budget": nil}, repo.updated)
}

func TestReportListing(t *testing.T) {
	svc, repo, _, userID, _ := newMarketplaceFixture()
	ctx := context.Background()

	report, err := svc.ReportListing(ctx, userID, "item-1", &ReportRequest{Reason: "scam", Message: " fake photos "})
	require.NoError(t, err)
	assert.Equal(t, repo.sellers["item-1"], report.SellerID)
	require.NotNil(t, report.Message)
	assert.Equal(t, "fake photos", *report.Message)

	_, err = svc.ReportListing(ctx, userID, "item-1", &ReportRequest{Reason: "scam"})
	assert.Equal(t, http.StatusTooManyRequests, apperror.MapErrorToStatus(err))
	assert.Len(t, repo.reports, 1)

	_, err = svc.ReportListing(ctx, userID, "missing", &ReportRequest{Reason: "scam"})
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	_, err = svc.ReportListing(ctx, userID, "item-1", &ReportRequest{})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestRedisThrottleWithoutClientAllows(t *testing.T) {
	var rt *RedisThrottle
	ok, err := rt.Allow(context.Background(), "report", "item", "user")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewRedisThrottle(nil, 0).Allow(context.Background(), "report", "item", "user")
	require.NoError(t, err)
	assert.True(t, ok)
}

package services

import (
	"context"
	"sync"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

type insertedRow struct {
	table string
	row   map[string]interface{}
}

type fakeSubmissions struct {
	rows []insertedRow
	err  error
}

func (f *fakeSubmissions) InsertSubmission(_ context.Context, table string, row interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, insertedRow{table: table, row: row.(map[string]interface{})})
	return nil
}

type fakeHandoffLog struct {
	mu      sync.Mutex
	entries []*models.Handoff
	err     error
}

func (f *fakeHandoffLog) EnsureIndexes(context.Context) error { return nil }

func (f *fakeHandoffLog) RecordHandoff(_ context.Context, h *models.Handoff) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, h)
	return f.err
}

type fakeAuth struct {
	pages      [][]types.User
	pageCalls  []int
	listErr    error
	session    *types.Session
	signInErr  error
	signedUp   *types.User
	signUpData map[string]interface{}
	resetEmail string
	resetTo    string
}

func (f *fakeAuth) SignUp(_ context.Context, email, _ string, data map[string]interface{}) (*types.User, error) {
	f.signUpData = data
	if f.signedUp != nil {
		return f.signedUp, nil
	}
	return &types.User{ID: uuid.New(), Email: email}, nil
}

func (f *fakeAuth) SignIn(context.Context, string, string) (*types.Session, error) {
	return f.session, f.signInErr
}

func (f *fakeAuth) RefreshSession(context.Context, string) (*types.Session, error) {
	return f.session, nil
}

func (f *fakeAuth) SendPasswordReset(_ context.Context, email, redirectTo string) error {
	f.resetEmail, f.resetTo = email, redirectTo
	return nil
}

func (f *fakeAuth) GetAuthUser(context.Context, string) (*types.User, error) {
	if f.session == nil {
		return nil, apperror.ErrUnauthorized
	}
	return &f.session.User, nil
}

func (f *fakeAuth) ListUsersPage(_ context.Context, page, _ int) ([]types.User, error) {
	f.pageCalls = append(f.pageCalls, page)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if page-1 < len(f.pages) {
		return f.pages[page-1], nil
	}
	return nil, nil
}

type fakeProfiles struct {
	profiles map[uuid.UUID]*models.Profile
	created  []*models.NewProfile
	updated  map[string]interface{}
	upserted *models.UpsertProfileParams
	token    string
}

func (f *fakeProfiles) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeProfiles) CreateProfile(_ context.Context, p *models.NewProfile) error {
	f.created = append(f.created, p)
	return nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Profile, error) {
	f.updated = fields
	return &models.Profile{ID: id}, nil
}

func (f *fakeProfiles) UpsertProfileSelf(_ context.Context, token string, params models.UpsertProfileParams) error {
	f.token = token
	f.upserted = &params
	return nil
}

type fakeUniversities struct {
	byCity map[string][]string
	list   []models.University
	calls  int
}

func (f *fakeUniversities) ListActiveUniversities(context.Context) ([]models.University, error) {
	f.calls++
	return f.list, nil
}

func (f *fakeUniversities) UniversityIDsInCity(_ context.Context, city string) ([]string, error) {
	return f.byCity[city], nil
}

type fakeMarketplace struct {
	created    *models.MarketplaceItem
	listIDs    []string
	listCalled bool
	updated    map[string]interface{}
	sellers    map[string]uuid.UUID
	reports    []*models.Report
}

func (f *fakeMarketplace) CreateItem(_ context.Context, item *models.MarketplaceItem) (*models.MarketplaceItem, error) {
	f.created = item
	return item, nil
}

func (f *fakeMarketplace) ListItems(_ context.Context, ids []string, _ models.ListingFilter) ([]models.MarketplaceItem, error) {
	f.listCalled = true
	f.listIDs = ids
	return []models.MarketplaceItem{{ID: "1"}}, nil
}

func (f *fakeMarketplace) ListItemsByUser(context.Context, uuid.UUID) ([]models.MarketplaceItem, error) {
	return []models.MarketplaceItem{}, nil
}

func (f *fakeMarketplace) UpdateItem(_ context.Context, itemID string, _ uuid.UUID, fields map[string]interface{}) (*models.MarketplaceItem, error) {
	f.updated = fields
	return &models.MarketplaceItem{ID: itemID}, nil
}

func (f *fakeMarketplace) DeleteItem(context.Context, string, uuid.UUID) error { return nil }

func (f *fakeMarketplace) GetItemSeller(_ context.Context, itemID string) (uuid.UUID, error) {
	if id, ok := f.sellers[itemID]; ok {
		return id, nil
	}
	return uuid.Nil, apperror.ErrNotFound
}

func (f *fakeMarketplace) CreateReport(_ context.Context, r *models.Report) error {
	f.reports = append(f.reports, r)
	return nil
}

// memThrottle allows each key once.
type memThrottle struct {
	seen map[string]bool
}

func (m *memThrottle) Allow(_ context.Context, action, target, userID string) (bool, error) {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	key := action + target + userID
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

type fakeAccommodations struct {
	items map[string]*models.Accommodation
}

func (f *fakeAccommodations) ListActiveAccommodations(context.Context) ([]models.Accommodation, error) {
	var out []models.Accommodation
	for _, a := range f.items {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAccommodations) GetActiveAccommodation(_ context.Context, id string) (*models.Accommodation, error) {
	if a, ok := f.items[id]; ok {
		return a, nil
	}
	return nil, apperror.ErrNotFound
}

type fakeBusinesses struct {
	created    *models.Business
	businesses map[uuid.UUID]*models.Business
	tokens     map[string]bool
}

func (f *fakeBusinesses) CreateBusiness(_ context.Context, b *models.Business) error {
	f.created = b
	return nil
}

func (f *fakeBusinesses) VerifyBusiness(_ context.Context, token string) error {
	if f.tokens[token] {
		return nil
	}
	return apperror.ErrNotFound
}

func (f *fakeBusinesses) GetBusiness(_ context.Context, id uuid.UUID) (*models.Business, error) {
	if b, ok := f.businesses[id]; ok {
		return b, nil
	}
	return nil, apperror.ErrNotFound
}

type fakeMailer struct {
	enabled bool
	to      string
	link    string
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) SendVerification(_ context.Context, to, link string) error {
	f.to, f.link = to, link
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/campsum/campsum-api/internal/catalog"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFormService(t *testing.T) (*FormService, *fakeSubmissions, *fakeHandoffLog) {
	t.Helper()
	c, err := catalog.Load()
	require.NoError(t, err)
	repo := &fakeSubmissions{}
	log := &fakeHandoffLog{}
	return NewFormService(repo, c, NewMessenger("+91 76078-44279", log, nil)), repo, log
}

func decodeForm(t *testing.T, kind, body string) Submission {
	t.Helper()
	sub, ok := NewSubmission(kind)
	require.True(t, ok, kind)
	require.NoError(t, json.Unmarshal([]byte(body), sub))
	return sub
}

func messageFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/917607844279", u.Path)
	return u.Query().Get("text")
}

func TestSubmitWritesOneRowAndLinksEveryField(t *testing.T) {
	tests := []struct {
		kind   string
		body   string
		table  string
		values []string
	}{
		{
			kind:   KindRoomRequest,
			body:   `{"name":"Asha","mobile_number":"9876543210","budget":"6000","gender":"Female","location":["Lanka","other"],"customLocation":"Assi Ghat","room_type":"PG","comments":"near BHU","needed_from":"2024-07-01"}`,
			table:  models.RoomLocationFormsTable,
			values: []string{"Asha", "9876543210", "₹6000", "Female", "Lanka , Assi Ghat", "PG", "near BHU", "2024-07-01"},
		},
		{
			kind:   KindMealSubscription,
			body:   `{"userName":"Ravi","mealPlan":"7_day_Plan__₹60","packingOption":"bring_your_own_tiffin","location":"Lanka"}`,
			table:  models.MealSubscriptionsTable,
			values: []string{"Ravi", "7_day_Plan__₹60", "bring_your_own_tiffin", "Lanka"},
		},
		{
			kind:   KindMarketplaceListing,
			body:   `{"type":"sell","description":"Cycle","category":"Vehicles","location":"Hostel 4","price":2500,"negotiable":true,"condition":"Used"}`,
			table:  models.MarketplaceListingsTable,
			values: []string{"Sell Listing", "Cycle", "Vehicles", "Hostel 4", "Used", "2500", "Negotiable: Yes"},
		},
		{
			kind:   KindRoommate,
			body:   `{"listing_type":"looking","gender_pref":"Male","roommates_count":"2","moving_date":"2024-08-01","description":"Quiet person"}`,
			table:  models.RoommateListingsTable,
			values: []string{"Looking for a Roommate", "Male", "2", "2024-08-01", "Quiet person"},
		},
		{
			kind:   KindLostFound,
			body:   `{"post_type":"found","description":"Blue wallet","location":"Library","contact_info":"9000000000"}`,
			table:  models.LostFoundPostsTable,
			values: []string{"FOUND", "Blue wallet", "Library", "9000000000", "Please find attached"},
		},
		{
			kind:   KindBloodDonor,
			body:   `{"fullName":"Meera","age":"22","gender":"Female","bloodGroup":"O+","phone":"9111111111","email":"m@example.com","city":"Varanasi","lastDonated":"2024-01-10"}`,
			table:  models.BloodDonorsTable,
			values: []string{"Meera", "22", "Female", "O+", "9111111111", "m@example.com", "Varanasi", "2024-01-10"},
		},
		{
			kind:   KindMentalWellness,
			body:   `{"name":"Kabir","roll":"21BCS001","course":"BTech 2nd","time":"9 AM - 12 PM","sessionType":"Other","otherSession":"Exam stress","concern":"sleep"}`,
			table:  models.MentalWellnessRequestsTable,
			values: []string{"Kabir", "21BCS001", "BTech 2nd", "9 AM - 12 PM", "Other: Exam stress", "sleep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			svc, repo, log := newTestFormService(t)
			res, err := svc.Submit(context.Background(), decodeForm(t, tt.kind, tt.body), HandoffMeta{IP: "127.0.0.1"})
			require.NoError(t, err)

			require.Len(t, repo.rows, 1)
			assert.Equal(t, tt.table, repo.rows[0].table)

			text := messageFromLink(t, res.RedirectURL)
			assert.Equal(t, res.Message, text)
			for _, v := range tt.values {
				assert.Contains(t, text, v)
			}

			require.Len(t, log.entries, 1)
			assert.Equal(t, tt.kind, log.entries[0].Kind)
		})
	}
}

func TestSubmitMissingFieldWritesNothing(t *testing.T) {
	tests := []struct {
		kind string
		body string
	}{
		{KindRoomRequest, `{"name":"Asha","budget":"6000","gender":"Female","location":["Lanka"],"room_type":"PG","needed_from":"2024-07-01"}`},
		{KindRoomRequest, `{"name":"Asha","mobile_number":"1","budget":"6000","gender":"Female","location":["other"],"room_type":"PG","needed_from":"2024-07-01"}`},
		{KindMealSubscription, `{"userName":"Ravi","mealPlan":"7_day_Plan__₹60","packingOption":"bring_your_own_tiffin","location":"other"}`},
		{KindMarketplaceListing, `{"type":"buy","description":"Books","category":"Books","location":"Lanka"}`},
		{KindRoommate, `{"listing_type":"have_room"}`},
		{KindLostFound, `{"post_type":"lost","description":"Keys","location":"Gate"}`},
		{KindBloodDonor, `{"fullName":"Meera","age":"22","gender":"Female","phone":"9","city":"Varanasi"}`},
		{KindMentalWellness, `{"name":"Kabir","roll":"1","course":"BTech","sessionType":"Other"}`},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			svc, repo, log := newTestFormService(t)
			res, err := svc.Submit(context.Background(), decodeForm(t, tt.kind, tt.body), HandoffMeta{})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
			assert.Empty(t, repo.rows)
			assert.Empty(t, log.entries)
		})
	}
}

func TestSubmitInsertFailureReturnsNoLink(t *testing.T) {
	svc, repo, _ := newTestFormService(t)
	repo.err = errors.New("connection refused")

	sub := decodeForm(t, KindLostFound, `{"post_type":"lost","description":"Keys","location":"Gate","contact_info":"x"}`)
	res, err := svc.Submit(context.Background(), sub, HandoffMeta{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, http.StatusInternalServerError, apperror.MapErrorToStatus(err))
}

func TestSubmitRejectsUnknownOption(t *testing.T) {
	svc, repo, _ := newTestFormService(t)
	sub := decodeForm(t, KindBloodDonor, `{"fullName":"A","age":30,"gender":"Male","bloodGroup":"Z+","phone":"1","city":"X"}`)
	_, err := svc.Submit(context.Background(), sub, HandoffMeta{})
	require.Error(t, err)
	assert.Empty(t, repo.rows)
}

func TestSubmitHandoffLogFailureIsIgnored(t *testing.T) {
	svc, repo, log := newTestFormService(t)
	log.err = errors.New("mongo down")

	sub := decodeForm(t, KindRoommate, `{"listing_type":"have_room","description":"Room near BHU"}`)
	res, err := svc.Submit(context.Background(), sub, HandoffMeta{})
	require.NoError(t, err)
	require.Len(t, repo.rows, 1)
	assert.Contains(t, res.Message, "Have a Room to Share")
	assert.Contains(t, res.Message, "Gender Preference: Any")
	assert.Nil(t, repo.rows[0].row["roommates_count"])
	assert.Nil(t, repo.rows[0].row["moving_date"])
}

func TestMealSubscriptionUsesCustomAddress(t *testing.T) {
	svc, repo, _ := newTestFormService(t)
	sub := decodeForm(t, KindMealSubscription, `{"userName":"Ravi","mealPlan":"30_day_Plan__₹57","packingOption":"bring_your_own_tiffin","location":"other","customAddress":"Room 12, Durga Kund"}`)

	res, err := svc.Submit(context.Background(), sub, HandoffMeta{})
	require.NoError(t, err)
	assert.Equal(t, "Room 12, Durga Kund", repo.rows[0].row["location"])
	assert.True(t, strings.HasSuffix(res.Message, "Location: Room 12, Durga Kund"))
}

func TestMarketplaceListingRowNullsUnusedFields(t *testing.T) {
	svc, repo, _ := newTestFormService(t)
	sub := decodeForm(t, KindMarketplaceListing, `{"type":"buy","description":"Books","category":"Books","location":"Lanka","budget":"300"}`)

	res, err := svc.Submit(context.Background(), sub, HandoffMeta{})
	require.NoError(t, err)
	row := repo.rows[0].row
	assert.Equal(t, float64(300), row["budget"])
	assert.Nil(t, row["price"])
	assert.Nil(t, row["condition"])
	assert.Nil(t, row["negotiable"])
	assert.Equal(t, "Buy Request:\nDescription: Books\nCategory: Books\nLocation: Lanka\nBudget: 300", res.Message)
}

func TestContactHandoffWritesNothing(t *testing.T) {
	svc, repo, log := newTestFormService(t)

	res, err := svc.Contact(context.Background(), &ContactRequest{Name: "Ana", Email: "ana@example.com", Message: "I would like to partner with you."}, HandoffMeta{})
	require.NoError(t, err)
	assert.Empty(t, repo.rows)
	assert.Contains(t, messageFromLink(t, res.RedirectURL), "Email: ana@example.com")
	require.Len(t, log.entries, 1)
	assert.Equal(t, KindContact, log.entries[0].Kind)

	_, err = svc.Contact(context.Background(), &ContactRequest{Name: "Ana", Email: "ana@example.com", Message: "short"}, HandoffMeta{})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":" 12 ","b":7.5,"c":null}`), &v))
	assert.Equal(t, FlexString("12"), v.A)
	assert.Equal(t, FlexString("7.5"), v.B)
	assert.Equal(t, FlexString(""), v.C)
	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestNewSubmissionUnknownKind(t *testing.T) {
	_, ok := NewSubmission("events")
	assert.False(t, ok)
}

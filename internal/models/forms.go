package models

import (
	"context"
)

const (
	RoomLocationFormsTable      = "room_location_forms"
	MealSubscriptionsTable      = "meal_subscriptions"
	MarketplaceListingsTable    = "marketplace_listings"
	RoommateListingsTable       = "roommate_listings"
	LostFoundPostsTable         = "lost_found_posts"
	BloodDonorsTable            = "blood_donors"
	MentalWellnessRequestsTable = "mental_wellness_requests"
)

// SubmissionRepo writes one form submission row. Submissions have no
// update or delete path.
type SubmissionRepo interface {
	InsertSubmission(ctx context.Context, table string, row interface{}) error
}

func (su *SupabaseRepo) InsertSubmission(ctx context.Context, table string, row interface{}) error {
	_, _, err := su.db.From(table).
		Insert(row, false, "", "minimal", "").
		Execute()
	if err != nil {
		return pgError("insert into "+table, err)
	}
	return nil
}

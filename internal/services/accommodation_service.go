package services

import (
	"context"
	"fmt"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
)

type AccommodationService struct {
	repo      models.AccommodationRepo
	profiles  models.ProfileRepo
	messenger *Messenger
}

func NewAccommodationService(repo models.AccommodationRepo, profiles models.ProfileRepo, messenger *Messenger) *AccommodationService {
	return &AccommodationService{
		repo:      repo,
		profiles:  profiles,
		messenger: messenger,
	}
}

func (as *AccommodationService) List(ctx context.Context) ([]models.Accommodation, error) {
	return as.repo.ListActiveAccommodations(ctx)
}

func (as *AccommodationService) Get(ctx context.Context, id string) (*models.Accommodation, error) {
	return as.repo.GetActiveAccommodation(ctx, id)
}

// Interest hands off an enquiry about one property, filled in from the
// requester's profile. Nothing is stored.
func (as *AccommodationService) Interest(ctx context.Context, user *helpers.SessionUser, id string, meta HandoffMeta) (*HandoffResult, error) {
	property, err := as.repo.GetActiveAccommodation(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := as.profiles.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester profile: %w", err)
	}
	return as.messenger.Handoff(ctx, KindPropertyInterest, InterestMessage(property, profile, user.Email), meta), nil
}

func InterestMessage(p *models.Accommodation, profile *models.Profile, email string) string {
	rent := ""
	if p.Rent != nil {
		rent = formatAmount(*p.Rent)
	}
	var uni models.University
	if profile.University != nil {
		uni = profile.University.University
	}
	name := profile.FullName
	if email == "" {
		email = profile.Email
	}

	return fmt.Sprintf(`👋 Hello CampSum,
I am interested in this property:

Property Code: %s 
Property: %s
Rent: ₹%s
Location: %s
Property Address: %s

My Details:
Name: %s 
Email: %s 
Phone: %s
Course: %s
University: %s
University Location: %s, %s

Please get in touch with me.
Thank you!`,
		helpers.OrDefault(p.Code, "N/A"),
		helpers.CleanText(p.Title),
		helpers.OrDefault(rent, "N/A"),
		helpers.OrDefault(p.City, "N/A"),
		helpers.CleanText(p.Address),
		helpers.CleanText(name),
		helpers.OrDefault(email, "N/A"),
		helpers.OrDefault(profile.PhoneNumber, "N/A"),
		helpers.OrDefault(profile.Course, "N/A"),
		helpers.OrDefault(uni.Name, "N/A"),
		helpers.OrDefault(uni.City, "N/A"),
		helpers.OrDefault(uni.State, "N/A"),
	)
}

func formatAmount(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}

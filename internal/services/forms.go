package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/campsum/campsum-api/internal/catalog"
	"github.com/campsum/campsum-api/internal/models"
)

const (
	KindRoomRequest        = "room-request"
	KindMealSubscription   = "meal-subscription"
	KindMarketplaceListing = "marketplace-listing"
	KindRoommate           = "roommate"
	KindLostFound          = "lost-found"
	KindBloodDonor         = "blood-donor"
	KindMentalWellness     = "mental-wellness"
	KindContact            = "contact"
	KindPropertyInterest   = "property-interest"
)

// Submission is a form that is stored as one row and then handed off as a
// chat message built from the same values.
type Submission interface {
	Kind() string
	Table() string
	// Normalize folds "other" selections and defaults into the final values.
	Normalize()
	// Check runs validation that struct tags cannot express.
	Check(c *catalog.Catalog) error
	Row() map[string]interface{}
	Message() string
}

// NewSubmission returns an empty form for kind, ready to be decoded into.
func NewSubmission(kind string) (Submission, bool) {
	switch kind {
	case KindRoomRequest:
		return &RoomRequest{}, true
	case KindMealSubscription:
		return &MealSubscription{}, true
	case KindMarketplaceListing:
		return &MarketplaceListingForm{}, true
	case KindRoommate:
		return &RoommateListing{}, true
	case KindLostFound:
		return &LostFoundPost{}, true
	case KindBloodDonor:
		return &BloodDonor{}, true
	case KindMentalWellness:
		return &MentalWellnessRequest{}, true
	}
	return nil, false
}

// FlexString accepts a JSON string or number. HTML forms post numbers as
// text, API clients usually do not.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

func (f FlexString) number(field string) (float64, error) {
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0, invalidInput(fmt.Sprintf("%s must be a number", field))
	}
	return v, nil
}

// optionalNumber is nil for a blank value, otherwise the parsed number.
func (f FlexString) optionalNumber(field string) (interface{}, error) {
	if f == "" {
		return nil, nil
	}
	return f.number(field)
}

func nullIfEmpty(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func invalidInput(msg string) error {
	return apperror.New(http.StatusBadRequest, msg, apperror.ErrInvalidInput)
}

func oneOf(c *catalog.Catalog, list, field, value string) error {
	if c != nil && !c.Allowed(list, value) {
		return invalidInput(fmt.Sprintf("%s has an unsupported value", field))
	}
	return nil
}

type RoomRequest struct {
	Name           string     `json:"name" validate:"required"`
	MobileNumber   string     `json:"mobile_number" validate:"required"`
	Budget         FlexString `json:"budget" validate:"required"`
	Gender         string     `json:"gender" validate:"required"`
	Locations      []string   `json:"location"`
	CustomLocation string     `json:"customLocation"`
	RoomType       string     `json:"room_type" validate:"required"`
	Comments       string     `json:"comments"`
	NeededFrom     string     `json:"needed_from" validate:"required"`

	budget int
}

func (r *RoomRequest) Kind() string  { return KindRoomRequest }
func (r *RoomRequest) Table() string { return models.RoomLocationFormsTable }

func (r *RoomRequest) Normalize() {
	var locs []string
	for _, l := range r.Locations {
		l = strings.TrimSpace(l)
		if l != "" && l != "other" {
			locs = append(locs, l)
		}
	}
	if c := strings.TrimSpace(r.CustomLocation); c != "" {
		locs = append(locs, c)
	}
	r.Locations = locs
}

func (r *RoomRequest) Check(c *catalog.Catalog) error {
	if len(r.Locations) == 0 {
		return invalidInput("location is required")
	}
	b, err := r.Budget.number("budget")
	if err != nil {
		return err
	}
	r.budget = int(b)
	if err := oneOf(c, "room_types", "room_type", r.RoomType); err != nil {
		return err
	}
	return oneOf(c, "genders", "gender", r.Gender)
}

func (r *RoomRequest) Row() map[string]interface{} {
	return map[string]interface{}{
		"name":          r.Name,
		"mobile_number": r.MobileNumber,
		"budget":        r.budget,
		"gender":        r.Gender,
		"location":      r.Locations,
		"room_type":     r.RoomType,
		"comments":      r.Comments,
		"needed_from":   r.NeededFrom,
	}
}

func (r *RoomRequest) Message() string {
	return fmt.Sprintf(`🏠 Room Request:
  Name: %s
  Mobile: %s
  Budget: ₹%s
  Gender: %s
  Location: %s
  Room Type: %s
  Comments: %s
  Needed From: %s`,
		r.Name, r.MobileNumber, r.Budget, r.Gender, strings.Join(r.Locations, " , "),
		r.RoomType, r.Comments, r.NeededFrom)
}

type MealSubscription struct {
	UserName      string `json:"userName" validate:"required"`
	MealPlan      string `json:"mealPlan" validate:"required"`
	PackingOption string `json:"packingOption" validate:"required"`
	Location      string `json:"location" validate:"required_without=CustomAddress"`
	CustomAddress string `json:"customAddress"`
}

func (m *MealSubscription) Kind() string  { return KindMealSubscription }
func (m *MealSubscription) Table() string { return models.MealSubscriptionsTable }

func (m *MealSubscription) Normalize() {
	if m.Location == "other" || m.Location == "" {
		m.Location = strings.TrimSpace(m.CustomAddress)
	}
}

func (m *MealSubscription) Check(c *catalog.Catalog) error {
	if m.Location == "" {
		return invalidInput("customAddress is required")
	}
	if err := oneOf(c, "meal_plans", "mealPlan", m.MealPlan); err != nil {
		return err
	}
	return oneOf(c, "packing", "packingOption", m.PackingOption)
}

func (m *MealSubscription) Row() map[string]interface{} {
	return map[string]interface{}{
		"user_name": m.UserName,
		"meal_plan": m.MealPlan,
		"packing":   m.PackingOption,
		"location":  m.Location,
	}
}

func (m *MealSubscription) Message() string {
	return fmt.Sprintf("New Meal Subscription:\nName: %s\nMeal Plan: %s\nPacking: %s\nLocation: %s",
		m.UserName, m.MealPlan, m.PackingOption, m.Location)
}

type MarketplaceListingForm struct {
	Type        string     `json:"type" validate:"required,oneof=buy sell"`
	Description string     `json:"description" validate:"required"`
	Category    string     `json:"category" validate:"required"`
	Location    string     `json:"location" validate:"required"`
	Budget      FlexString `json:"budget" validate:"required_if=Type buy"`
	Price       FlexString `json:"price" validate:"required_if=Type sell"`
	Negotiable  bool       `json:"negotiable"`
	Condition   string     `json:"condition" validate:"required_if=Type sell"`

	amount float64
}

func (m *MarketplaceListingForm) Kind() string  { return KindMarketplaceListing }
func (m *MarketplaceListingForm) Table() string { return models.MarketplaceListingsTable }
func (m *MarketplaceListingForm) Normalize()    {}

func (m *MarketplaceListingForm) Check(_ *catalog.Catalog) error {
	var err error
	if m.Type == "buy" {
		m.amount, err = m.Budget.number("budget")
	} else {
		m.amount, err = m.Price.number("price")
	}
	return err
}

func (m *MarketplaceListingForm) Row() map[string]interface{} {
	row := map[string]interface{}{
		"type":        m.Type,
		"description": m.Description,
		"category":    m.Category,
		"location":    m.Location,
		"budget":      nil,
		"price":       nil,
		"negotiable":  nil,
		"condition":   nil,
	}
	if m.Type == "buy" {
		row["budget"] = m.amount
	} else {
		row["price"] = m.amount
		row["negotiable"] = m.Negotiable
		row["condition"] = m.Condition
	}
	return row
}

func (m *MarketplaceListingForm) Message() string {
	if m.Type == "buy" {
		return fmt.Sprintf("Buy Request:\nDescription: %s\nCategory: %s\nLocation: %s\nBudget: %s",
			m.Description, m.Category, m.Location, m.Budget)
	}
	negotiable := "No"
	if m.Negotiable {
		negotiable = "Yes"
	}
	return fmt.Sprintf("Sell Listing:\nDescription: %s\nCategory: %s\nLocation: %s\nCondition: %s\nPrice: %s\nNegotiable: %s",
		m.Description, m.Category, m.Location, m.Condition, m.Price, negotiable)
}

type RoommateListing struct {
	ListingType    string     `json:"listing_type" validate:"required,oneof=looking have_room"`
	GenderPref     string     `json:"gender_pref"`
	RoommatesCount FlexString `json:"roommates_count"`
	MovingDate     string     `json:"moving_date"`
	Description    string     `json:"description" validate:"required"`

	count interface{}
}

func (r *RoommateListing) Kind() string  { return KindRoommate }
func (r *RoommateListing) Table() string { return models.RoommateListingsTable }
func (r *RoommateListing) Normalize()    {}

func (r *RoommateListing) Check(_ *catalog.Catalog) error {
	n, err := r.RoommatesCount.optionalNumber("roommates_count")
	if err != nil {
		return err
	}
	if f, ok := n.(float64); ok {
		r.count = int(f)
	}
	return nil
}

func (r *RoommateListing) Row() map[string]interface{} {
	return map[string]interface{}{
		"listing_type":    r.ListingType,
		"gender_pref":     nullIfEmpty(r.GenderPref),
		"roommates_count": r.count,
		"moving_date":     nullIfEmpty(r.MovingDate),
		"description":     r.Description,
	}
}

func (r *RoommateListing) Message() string {
	kind := "Have a Room to Share"
	if r.ListingType == "looking" {
		kind = "Looking for a Roommate"
	}
	count := r.RoommatesCount.String()
	if count == "" {
		count = "Not specified"
	}
	moving := r.MovingDate
	if moving == "" {
		moving = "Not specified"
	}
	gender := r.GenderPref
	if gender == "" {
		gender = "Any"
	}
	return fmt.Sprintf("New Roommate Listing:\nType: %s\nGender Preference: %s\nRoommates Count: %s\nMoving Date: %s\nDescription: %s",
		kind, gender, count, moving, r.Description)
}

type LostFoundPost struct {
	PostType    string `json:"post_type" validate:"required,oneof=lost found"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location" validate:"required"`
	ContactInfo string `json:"contact_info" validate:"required"`
}

func (l *LostFoundPost) Kind() string  { return KindLostFound }
func (l *LostFoundPost) Table() string { return models.LostFoundPostsTable }

func (l *LostFoundPost) Normalize() {
	if l.PostType == "" {
		l.PostType = "lost"
	}
}

func (l *LostFoundPost) Check(_ *catalog.Catalog) error { return nil }

func (l *LostFoundPost) Row() map[string]interface{} {
	return map[string]interface{}{
		"post_type":    l.PostType,
		"description":  l.Description,
		"location":     l.Location,
		"contact_info": l.ContactInfo,
	}
}

func (l *LostFoundPost) Message() string {
	note := "If you have an image, please attach it here."
	if l.PostType == "found" {
		note = "📸 Please find attached the image of the found item."
	}
	return fmt.Sprintf("Hi, I want to report a %s item.\n\nDescription: %s\nLocation: %s\nContact Info: %s\n\n%s",
		strings.ToUpper(l.PostType), l.Description, l.Location, l.ContactInfo, note)
}

type BloodDonor struct {
	FullName    string     `json:"fullName" validate:"required"`
	Age         FlexString `json:"age" validate:"required"`
	Gender      string     `json:"gender" validate:"required"`
	BloodGroup  string     `json:"bloodGroup" validate:"required"`
	Phone       string     `json:"phone" validate:"required"`
	Email       string     `json:"email" validate:"omitempty,email"`
	City        string     `json:"city" validate:"required"`
	LastDonated string     `json:"lastDonated"`

	age int
}

func (b *BloodDonor) Kind() string  { return KindBloodDonor }
func (b *BloodDonor) Table() string { return models.BloodDonorsTable }
func (b *BloodDonor) Normalize()    {}

func (b *BloodDonor) Check(c *catalog.Catalog) error {
	age, err := b.Age.number("age")
	if err != nil {
		return err
	}
	if age <= 0 {
		return invalidInput("age must be positive")
	}
	b.age = int(age)
	if err := oneOf(c, "blood_groups", "bloodGroup", b.BloodGroup); err != nil {
		return err
	}
	return oneOf(c, "genders", "gender", b.Gender)
}

func (b *BloodDonor) Row() map[string]interface{} {
	return map[string]interface{}{
		"full_name":    b.FullName,
		"age":          b.age,
		"gender":       b.Gender,
		"blood_group":  b.BloodGroup,
		"phone":        b.Phone,
		"email":        nullIfEmpty(b.Email),
		"city":         b.City,
		"last_donated": nullIfEmpty(b.LastDonated),
	}
}

func (b *BloodDonor) Message() string {
	email := b.Email
	if email == "" {
		email = "N/A"
	}
	last := b.LastDonated
	if last == "" {
		last = "N/A"
	}
	return fmt.Sprintf("🩸 *Blood Donor Registration* 🩸\nName: %s\nAge: %s\nGender: %s\nBlood Group: %s\nPhone: %s\nEmail: %s\nCity: %s\nLast Donated: %s",
		b.FullName, b.Age, b.Gender, b.BloodGroup, b.Phone, email, b.City, last)
}

type MentalWellnessRequest struct {
	FullName      string `json:"name" validate:"required"`
	StudentID     string `json:"roll" validate:"required"`
	Course        string `json:"course" validate:"required"`
	PreferredTime string `json:"time" validate:"required"`
	SessionType   string `json:"sessionType" validate:"required"`
	OtherSession  string `json:"otherSession"`
	Concern       string `json:"concern"`
}

func (m *MentalWellnessRequest) Kind() string  { return KindMentalWellness }
func (m *MentalWellnessRequest) Table() string { return models.MentalWellnessRequestsTable }

func (m *MentalWellnessRequest) Normalize() {
	if m.SessionType == "Other" && strings.TrimSpace(m.OtherSession) != "" {
		m.SessionType = "Other: " + strings.TrimSpace(m.OtherSession)
	}
}

func (m *MentalWellnessRequest) Check(c *catalog.Catalog) error {
	if err := oneOf(c, "time_slots", "time", m.PreferredTime); err != nil {
		return err
	}
	if strings.HasPrefix(m.SessionType, "Other: ") {
		return nil
	}
	return oneOf(c, "session_types", "sessionType", m.SessionType)
}

func (m *MentalWellnessRequest) Row() map[string]interface{} {
	return map[string]interface{}{
		"full_name":      m.FullName,
		"student_id":     m.StudentID,
		"course":         m.Course,
		"preferred_time": m.PreferredTime,
		"session_type":   m.SessionType,
		"concern":        nullIfEmpty(m.Concern),
	}
}

func (m *MentalWellnessRequest) Message() string {
	return fmt.Sprintf(`Hi CampSum team, I need help with mental health services. Please assist me.

My details are:
Full Name: %s
Student ID: %s
Course & Year: %s
Preferred Time Slot: %s
Type of Counselling Session: %s
Concern: %s

(Note: Please share ID proof separately if required.)`,
		m.FullName, m.StudentID, m.Course, m.PreferredTime, m.SessionType, m.Concern)
}

// ContactRequest is handed off without being stored.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required,min=10,max=2000"`
}

func (c *ContactRequest) Text() string {
	return fmt.Sprintf("Hi CampSum team, I would like to get in touch. Please assist me.\n\nName: %s\nEmail: %s\nSubject: %s\nMessage: %s",
		c.Name, c.Email, c.Subject, c.Message)
}

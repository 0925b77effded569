package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	NextStepCompleteProfile = "complete-profile"
	NextStepHome            = "home"

	studentRole = "student"
)

type StudentSignup struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	FullName     string `json:"fullName" validate:"required"`
	UniversityID string `json:"university_id" validate:"required"`
	Course       string `json:"course" validate:"required"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginUser struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	IsUniversityActive bool      `json:"isUniversityActive"`
}

type LoginResult struct {
	Session *types.Session `json:"session"`
	User    LoginUser      `json:"user"`
}

type ProfileUpdate struct {
	UniversityID string `json:"university_id" validate:"required"`
	Course       string `json:"course" validate:"required"`
}

type CompleteProfileRequest struct {
	UniversityID string `json:"university_id" validate:"required"`
	Course       string `json:"course" validate:"required"`
	Phone        string `json:"phone"`
}

type AuthService struct {
	auth        models.AuthRepo
	profiles    models.ProfileRepo
	supabaseURL string
	frontendURL string
}

func NewAuthService(auth models.AuthRepo, profiles models.ProfileRepo, supabaseURL, frontendURL string) *AuthService {
	return &AuthService{
		auth:        auth,
		profiles:    profiles,
		supabaseURL: strings.TrimRight(supabaseURL, "/"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (as *AuthService) SignupStudent(ctx context.Context, req *StudentSignup) (*types.User, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, apperror.New(http.StatusBadRequest, "All fields are required.", apperror.ErrInvalidInput)
	}
	return as.auth.SignUp(ctx, req.Email, req.Password, map[string]interface{}{
		"full_name":     req.FullName,
		"university_id": req.UniversityID,
		"course":        req.Course,
		"user_role":     studentRole,
	})
}

// LoginStudent signs in and reports the role and whether the student's
// university is live yet.
func (as *AuthService) LoginStudent(ctx context.Context, creds *Credentials) (*LoginResult, error) {
	if err := models.Validate.Struct(creds); err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Email and password are required.", apperror.ErrInvalidInput)
	}

	session, err := as.auth.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			return nil, apperror.New(http.StatusUnauthorized, "Invalid email or password.", err)
		}
		return nil, err
	}

	profile, err := as.profiles.GetProfile(ctx, session.User.ID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user profile: %w", err)
	}

	active := false
	if profile.University != nil {
		active = profile.University.IsActive
	}
	return &LoginResult{
		Session: session,
		User: LoginUser{
			ID:                 session.User.ID,
			Email:              session.User.Email,
			Role:               profile.UserRole,
			IsUniversityActive: active,
		},
	}, nil
}

func (as *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if err := models.Validate.Var(email, "required"); err != nil {
		return apperror.New(http.StatusBadRequest, "Email is required.", apperror.ErrInvalidInput)
	}
	return as.auth.SendPasswordReset(ctx, email, as.frontendURL+"/update-password")
}

func (as *AuthService) RefreshSession(ctx context.Context, refreshToken string) (*types.Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required: %w", apperror.ErrUnauthorized)
	}
	return as.auth.RefreshSession(ctx, refreshToken)
}

// Introspect asks the auth server who owns an access token.
func (as *AuthService) Introspect(token string) (*types.User, error) {
	return as.auth.GetAuthUser(context.Background(), token)
}

func (as *AuthService) GoogleAuthURL() string {
	q := url.Values{}
	q.Set("provider", "google")
	q.Set("redirect_to", as.CallbackURL())
	return as.supabaseURL + "/auth/v1/authorize?" + q.Encode()
}

// CallbackURL is the frontend page that finishes an OAuth sign-in.
func (as *AuthService) CallbackURL() string {
	return as.frontendURL + "/auth/callback"
}

func (as *AuthService) LoginURL() string {
	return as.frontendURL + "/login"
}

func (as *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return as.profiles.GetProfile(ctx, userID)
}

// EnsureProfile creates the minimal profile row on first sign-in and tells
// the caller where to send the user next.
func (as *AuthService) EnsureProfile(ctx context.Context, user *helpers.SessionUser) (string, error) {
	profile, err := as.profiles.GetProfile(ctx, user.ID)
	switch {
	case err == nil:
		if profile.IsComplete() {
			return NextStepHome, nil
		}
		return NextStepCompleteProfile, nil
	case !errors.Is(err, apperror.ErrNotFound):
		return "", err
	}

	np := &models.NewProfile{
		ID:        user.ID,
		Email:     user.Email,
		UpdatedAt: time.Now().UTC(),
	}
	if name := user.FullName(); name != "" {
		np.FullName = &name
	}
	if err := as.profiles.CreateProfile(ctx, np); err != nil {
		return "", fmt.Errorf("failed to create profile: %w", err)
	}
	return NextStepCompleteProfile, nil
}

func (as *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *ProfileUpdate) (*models.Profile, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, apperror.New(http.StatusBadRequest, "University and course are required.", apperror.ErrInvalidInput)
	}
	return as.profiles.UpdateProfile(ctx, userID, map[string]interface{}{
		"university_id": req.UniversityID,
		"course":        req.Course,
	})
}

func (as *AuthService) CompleteProfile(ctx context.Context, user *helpers.SessionUser, req *CompleteProfileRequest) error {
	if err := models.Validate.Struct(req); err != nil {
		return apperror.New(http.StatusBadRequest, "University and course are required.", apperror.ErrInvalidInput)
	}

	params := models.UpsertProfileParams{
		UniversityID: req.UniversityID,
		Course:       strings.TrimSpace(req.Course),
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		params.Phone = &phone
	}
	if name := user.FullName(); name != "" {
		params.FullName = &name
	}
	return as.profiles.UpsertProfileSelf(ctx, user.AccessToken, params)
}

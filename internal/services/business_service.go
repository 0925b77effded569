package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

// VerificationSender delivers the business verification link.
type VerificationSender interface {
	Enabled() bool
	SendVerification(ctx context.Context, to, link string) error
}

type BusinessSignup struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required"`
	BusinessName      string `json:"business_name" validate:"required"`
	BusinessType      string `json:"business_type" validate:"required"`
	ContactPersonName string `json:"contact_person_name"`
	Phone             string `json:"phone"`
}

type BusinessService struct {
	auth        models.AuthRepo
	repo        models.BusinessRepo
	mailer      VerificationSender
	frontendURL string
	logger      *slog.Logger
}

func NewBusinessService(auth models.AuthRepo, repo models.BusinessRepo, mailer VerificationSender, frontendURL string, logger *slog.Logger) *BusinessService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BusinessService{
		auth:        auth,
		repo:        repo,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

func newVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (bs *BusinessService) VerificationLink(token string) string {
	return bs.frontendURL + "/verify/" + token
}

// Signup creates the auth user and an unverified business row, then mails
// the verification link. A failed mail is logged; the account stays.
func (bs *BusinessService) Signup(ctx context.Context, req *BusinessSignup) error {
	if err := models.Validate.Struct(req); err != nil {
		return apperror.New(http.StatusBadRequest, "Missing required fields", apperror.ErrInvalidInput)
	}

	user, err := bs.auth.SignUp(ctx, req.Email, req.Password, nil)
	if err != nil {
		return err
	}

	token, err := newVerificationToken()
	if err != nil {
		return err
	}
	if err := bs.repo.CreateBusiness(ctx, &models.Business{
		ID:                user.ID,
		BusinessName:      req.BusinessName,
		BusinessType:      req.BusinessType,
		ContactPersonName: req.ContactPersonName,
		Email:             req.Email,
		Phone:             req.Phone,
		IsVerified:        false,
		VerificationToken: &token,
	}); err != nil {
		return err
	}

	if bs.mailer == nil || !bs.mailer.Enabled() {
		bs.logger.Warn("smtp not configured, verification email skipped", "business_id", user.ID)
		return nil
	}
	if err := bs.mailer.SendVerification(ctx, req.Email, bs.VerificationLink(token)); err != nil {
		bs.logger.Error("failed to send verification email", "business_id", user.ID, "error", err)
	}
	return nil
}

func (bs *BusinessService) Verify(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperror.New(http.StatusBadRequest, "Invalid or expired verification token", apperror.ErrInvalidInput)
	}
	if err := bs.repo.VerifyBusiness(ctx, token); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.New(http.StatusBadRequest, "Invalid or expired verification token", err)
		}
		return err
	}
	return nil
}

func (bs *BusinessService) Login(ctx context.Context, creds *Credentials) (*types.Session, error) {
	if err := models.Validate.Struct(creds); err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Email and password are required", apperror.ErrInvalidInput)
	}

	session, err := bs.auth.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			return nil, apperror.New(http.StatusUnauthorized, "Invalid email or password.", err)
		}
		return nil, err
	}

	business, err := bs.repo.GetBusiness(ctx, session.User.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.New(http.StatusForbidden, "No business account is registered for this email.", apperror.ErrForbidden)
		}
		return nil, err
	}
	if !business.IsVerified {
		return nil, apperror.New(http.StatusForbidden, "Please verify your email before logging in.", apperror.ErrNotVerified)
	}
	return session, nil
}

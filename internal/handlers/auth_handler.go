package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/services"
	"github.com/gin-gonic/gin"
)

func StudentSignup(a *services.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.StudentSignup
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required."})
			return
		}

		user, err := a.SignupStudent(c.Request.Context(), &req)
		if err != nil {
			helpers.RespondError(c, logger, err, "Signup failed.")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Signup successful! Please check your email for verification.",
			"user":    user,
		})
	}
}

func StudentLogin(a *services.AuthService, secure bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds services.Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
			return
		}

		res, err := a.LoginStudent(c.Request.Context(), &creds)
		if err != nil {
			helpers.RespondError(c, logger, err, "Login failed.")
			return
		}

		helpers.SetSessionCookies(c, res.Session.AccessToken, res.Session.RefreshToken, res.Session.ExpiresIn, secure)
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful!",
			"session": res.Session,
			"user":    res.User,
		})
	}
}

// ForgotPassword answers the same way whether or not the account exists.
func ForgotPassword(a *services.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email"`
		}
		_ = c.ShouldBindJSON(&req)
		if strings.TrimSpace(req.Email) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required."})
			return
		}

		if err := a.ForgotPassword(c.Request.Context(), req.Email); err != nil {
			logger.Warn("password reset request failed", "error", err)
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "If an account with this email exists, a password reset link has been sent.",
		})
	}
}

func CheckProvider(p *services.ProviderService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email"`
		}
		_ = c.ShouldBindJSON(&req)
		if strings.TrimSpace(req.Email) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email required"})
			return
		}

		res, err := p.CheckProvider(c.Request.Context(), req.Email)
		if err != nil {
			logger.Error("provider check failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// ProviderHint backs the login form's "sign in with Google instead" hint.
// A failed lookup shows no hint rather than an error.
func ProviderHint(p *services.ProviderService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.Query("email"))
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email required"})
			return
		}

		google, err := p.IsGoogleOnly(c.Request.Context(), email)
		if err != nil {
			logger.Warn("provider hint lookup failed", "error", err)
		}
		c.JSON(http.StatusOK, gin.H{"google": google})
	}
}

// GoogleAuth initiates Google OAuth flow via Supabase
func GoogleAuth(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, a.GoogleAuthURL())
	}
}

// GoogleAuthCallback passes OAuth errors back to the login page. Tokens come
// back in the URL fragment, so the frontend callback page finishes sign-in.
func GoogleAuthCallback(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if oauthErr := c.Query("error"); oauthErr != "" {
			q := url.Values{}
			q.Set("error", oauthErr)
			q.Set("error_description", c.Query("error_description"))
			c.Redirect(http.StatusTemporaryRedirect, a.LoginURL()+"?"+q.Encode())
			return
		}

		target := a.CallbackURL()
		if raw := c.Request.URL.RawQuery; raw != "" {
			target += "?" + raw
		}
		c.Redirect(http.StatusTemporaryRedirect, target)
	}
}

func Logout(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		helpers.ClearSessionCookies(c, secure)
		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out successfully",
		})
	}
}

// Session makes sure a signed-in user has a profile row and reports whether
// onboarding still has to collect university and course.
func Session(a *services.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			return
		}

		next, err := a.EnsureProfile(c.Request.Context(), user)
		if err != nil {
			helpers.RespondError(c, logger, err, "Could not load your profile.")
			return
		}
		redirect := "/"
		if next == services.NextStepCompleteProfile {
			redirect = "/complete-profile"
		}
		c.JSON(http.StatusOK, gin.H{"next": next, "redirect": redirect})
	}
}

func UpdateProfile(a *services.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: User not found in token."})
			return
		}

		var req services.ProfileUpdate
		_ = c.ShouldBindJSON(&req)
		profile, err := a.UpdateProfile(c.Request.Context(), user.ID, &req)
		if err != nil {
			helpers.RespondError(c, logger, err, "Could not update profile.")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Profile updated successfully!",
			"profile": profile,
		})
	}
}

func CompleteProfile(a *services.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			return
		}

		var req services.CompleteProfileRequest
		_ = c.ShouldBindJSON(&req)
		if err := a.CompleteProfile(c.Request.Context(), user, &req); err != nil {
			helpers.RespondError(c, logger, err, "Could not save profile.")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Profile completed successfully!",
			"next":    services.NextStepHome,
		})
	}
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

// TokenVerifier resolves an access token to the user that owns it.
type TokenVerifier interface {
	Verify(token string) (*helpers.SessionUser, error)
}

// SessionRefresher trades a refresh token for a new session.
type SessionRefresher interface {
	RefreshSession(ctx context.Context, refreshToken string) (*types.Session, error)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if user, ok := helpers.CurrentUser(c); ok {
			attrs = append(attrs, "user_id", user.ID)
		}
		logger.Info("HTTP Request", attrs...)
	}
}

// ErrorHandler logs errors attached with c.Error and answers with a generic
// 500 when the handler has not written a response yet.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get("request_id")

		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// resolveUser finds the caller from the access token cookie, then the
// bearer header; the first token that verifies wins. When neither is usable
// and a refresh token cookie is present, the session is refreshed once and
// both cookies are rewritten.
func resolveUser(c *gin.Context, verifier TokenVerifier, refresher SessionRefresher, secure bool, logger *slog.Logger) *helpers.SessionUser {
	cookieToken, _ := c.Cookie(helpers.AccessTokenCookie)
	for _, token := range []string{cookieToken, helpers.BearerToken(c)} {
		if token == "" {
			continue
		}
		if user, err := verifier.Verify(token); err == nil && user != nil {
			return user
		}
	}

	refreshToken, err := c.Cookie(helpers.RefreshTokenCookie)
	if err != nil || refreshToken == "" || refresher == nil {
		return nil
	}
	session, err := refresher.RefreshSession(c.Request.Context(), refreshToken)
	if err != nil || session == nil || session.AccessToken == "" {
		logger.Info("Token refresh failed", "error", err)
		return nil
	}

	helpers.SetSessionCookies(c, session.AccessToken, session.RefreshToken, session.ExpiresIn, secure)
	logger.Info("Token refreshed successfully",
		"user_id", session.User.ID,
		"expires_in", session.ExpiresIn,
	)
	if session.User.ID != uuid.Nil {
		return helpers.SessionUserFromAuthUser(session.User, session.AccessToken)
	}
	user, err := verifier.Verify(session.AccessToken)
	if err != nil {
		return nil
	}
	return user
}

// AuthMiddleware guards API routes; a missing or invalid session is a 401.
func AuthMiddleware(verifier TokenVerifier, refresher SessionRefresher, secure bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := resolveUser(c, verifier, refresher, secure, logger)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized access",
			})
			return
		}
		c.Set(helpers.ContextUserKey, user)
		c.Next()
	}
}

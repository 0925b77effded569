package middleware

import (
	"log/slog"
	"net/http"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/gin-gonic/gin"
)

// SignupRedirect is where an anonymous visitor of returnTo is sent.
func SignupRedirect(signupURL, returnTo string) string {
	return signupURL + "?returnTo=" + helpers.EncodeURIComponent(returnTo)
}

// RequireSession lets a request through only when a session user is present
// at check time. Everyone else is redirected to signup with a returnTo
// pointing back at the requested path and query. No error body is written.
func RequireSession(verifier TokenVerifier, refresher SessionRefresher, signupURL string, secure bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := resolveUser(c, verifier, refresher, secure, logger)
		if user == nil {
			c.Redirect(http.StatusFound, SignupRedirect(signupURL, c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Set(helpers.ContextUserKey, user)
		c.Next()
	}
}

// GuardWhen runs guard only for requests that protected selects.
func GuardWhen(protected func(*gin.Context) bool, guard gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if protected(c) {
			guard(c)
			return
		}
		c.Next()
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/services"
	"github.com/gin-gonic/gin"
)

func BusinessSignup(b *services.BusinessService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.BusinessSignup
		_ = c.ShouldBindJSON(&req)
		if err := b.Signup(c.Request.Context(), &req); err != nil {
			helpers.RespondError(c, logger, err, "Internal server error")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Account created. Please check your email for the verification link.",
		})
	}
}

func BusinessVerify(b *services.BusinessService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := b.Verify(c.Request.Context(), c.Param("token")); err != nil {
			helpers.RespondError(c, logger, err, "Internal server error")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Account verified successfully. You can now log in.",
		})
	}
}

func BusinessLogin(b *services.BusinessService, secure bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds services.Credentials
		_ = c.ShouldBindJSON(&creds)
		session, err := b.Login(c.Request.Context(), &creds)
		if err != nil {
			helpers.RespondError(c, logger, err, "Internal server error")
			return
		}

		helpers.SetSessionCookies(c, session.AccessToken, session.RefreshToken, session.ExpiresIn, secure)
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"session": session,
			"user":    session.User,
		})
	}
}

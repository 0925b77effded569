package handlers

import (
	"log/slog"
	"net/http"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/services"
	"github.com/gin-gonic/gin"
)

func handoffMeta(c *gin.Context) services.HandoffMeta {
	meta := services.HandoffMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if user, ok := helpers.CurrentUser(c); ok {
		id := user.ID
		meta.UserID = &id
	}
	return meta
}

// SubmitForm stores one form submission and returns the chat deep link.
func SubmitForm(f *services.FormService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, ok := services.NewSubmission(c.Param("kind"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown form"})
			return
		}
		if err := c.ShouldBindJSON(sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		res, err := f.Submit(c.Request.Context(), sub, handoffMeta(c))
		if err != nil {
			helpers.RespondError(c, logger, err, "Something went wrong. Please try again.")
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

func Contact(f *services.FormService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.ContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		res, err := f.Contact(c.Request.Context(), &req, handoffMeta(c))
		if err != nil {
			helpers.RespondError(c, logger, err, "Something went wrong. Please try again.")
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

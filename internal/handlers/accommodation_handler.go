package handlers

import (
	"log/slog"
	"net/http"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/campsum/campsum-api/internal/services"
	"github.com/gin-gonic/gin"
)

func ListAccommodations(a *services.AccommodationService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := a.List(c.Request.Context())
		if err != nil {
			helpers.RespondError(c, logger, err, "Could not load accommodations.")
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(list))
	}
}

func GetAccommodation(a *services.AccommodationService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := a.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			helpers.RespondError(c, logger, err, "Could not load this property.")
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(item, ""))
	}
}

func AccommodationInterest(a *services.AccommodationService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			return
		}

		res, err := a.Interest(c.Request.Context(), user, c.Param("id"), handoffMeta(c))
		if err != nil {
			helpers.RespondError(c, logger, err, "Could not prepare your enquiry.")
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/campsum/campsum-api/internal/catalog"
	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/campsum/campsum-api/internal/services"
	"github.com/gin-gonic/gin"
)

func GetProfile(a *services.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			return
		}

		profile, err := a.GetProfile(c.Request.Context(), user.ID)
		if err != nil {
			helpers.RespondError(c, logger, err, "Could not load your profile.")
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

func ListUniversities(u *services.UniversityService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := u.ListActive(c.Request.Context())
		if err != nil {
			helpers.RespondError(c, logger, err, "Could not load universities.")
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(list))
	}
}

func GetCatalog(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(cat, ""))
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/campsum/campsum-api/internal/services"
	"github.com/gin-gonic/gin"
)

func CreateListing(m *services.MarketplaceService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: User ID not found in token."})
			return
		}

		var item models.MarketplaceItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Type, title, and category are required fields."})
			return
		}

		created, err := m.CreateListing(c.Request.Context(), user.ID, &item)
		if err != nil {
			helpers.RespondError(c, logger, err, "An error occurred while creating the listing.")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Listing created successfully!",
			"item":    created,
		})
	}
}

func GetListings(m *services.MarketplaceService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: User ID not found in token."})
			return
		}

		filter, err := services.ParseListingQuery(c.Request.URL.Query())
		if err != nil {
			helpers.RespondError(c, logger, err, "")
			return
		}
		items, err := m.ListListings(c.Request.Context(), user.ID, filter)
		if err != nil {
			helpers.RespondError(c, logger, err, "An error occurred while fetching the listings.")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func GetMyListings(m *services.MarketplaceService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: User ID not found in token."})
			return
		}

		items, err := m.MyListings(c.Request.Context(), user.ID)
		if err != nil {
			helpers.RespondError(c, logger, err, "An error occurred while fetching your listings.")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func UpdateListing(m *services.MarketplaceService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: User ID not found."})
			return
		}

		var changes map[string]interface{}
		if err := c.ShouldBindJSON(&changes); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		item, err := m.UpdateListing(c.Request.Context(), user.ID, c.Param("itemId"), changes)
		if err != nil {
			helpers.RespondError(c, logger, err, "An error occurred while updating the listing.")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Listing updated successfully!",
			"item":    item,
		})
	}
}

func DeleteListing(m *services.MarketplaceService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: User ID not found."})
			return
		}

		if err := m.DeleteListing(c.Request.Context(), user.ID, c.Param("itemId")); err != nil {
			helpers.RespondError(c, logger, err, "An error occurred while deleting the listing.")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Listing deleted successfully!"})
	}
}

func ReportListing(m *services.MarketplaceService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := helpers.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: User ID not found in token."})
			return
		}

		var req services.ReportRequest
		_ = c.ShouldBindJSON(&req)
		report, err := m.ReportListing(c.Request.Context(), user.ID, c.Param("itemId"), &req)
		if err != nil {
			helpers.RespondError(c, logger, err, "An error occurred while submitting the report.")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Report submitted successfully!",
			"report":  report,
		})
	}
}

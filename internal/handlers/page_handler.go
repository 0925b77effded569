package handlers

import (
	"net/http"

	"github.com/campsum/campsum-api/internal/catalog"
	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/campsum/campsum-api/internal/services"
	"github.com/gin-gonic/gin"
)

// GetPage serves the descriptor for a page. Guarded pages only reach this
// handler once the session guard has let the request through.
func GetPage(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := cat.Page(c.Param("page"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}

		data := gin.H{"page": page}
		if page.Form != "" {
			if opts := formOptions(cat, page.Form); len(opts) > 0 {
				data["options"] = opts
			}
		}
		if user, ok := helpers.CurrentUser(c); ok {
			data["user"] = user
		}
		c.JSON(http.StatusOK, models.SuccessResponse(data, ""))
	}
}

var formOptionLists = map[string][]string{
	services.KindRoomRequest:      {"room_locations", "room_types", "genders"},
	services.KindMealSubscription: {"meal_plans", "packing", "meal_locations"},
	services.KindBloodDonor:       {"blood_groups", "genders"},
	services.KindMentalWellness:   {"time_slots", "session_types"},
}

func formOptions(cat *catalog.Catalog, form string) map[string][]catalog.Option {
	out := map[string][]catalog.Option{}
	for _, name := range formOptionLists[form] {
		if opts, ok := cat.Options[name]; ok {
			out[name] = opts
		}
	}
	return out
}

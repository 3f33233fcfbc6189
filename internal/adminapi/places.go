package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

func registerPlacesRoutes() {
	webserver.ApiGET("/google-reviews", GoogleReviews)
}

// GoogleReviews returns the property's Google reviews, or sample reviews
// while the Places API is not set up
// @Summary Google reviews
// @Tags Reviews
// @Success 200 {array} places.Review
// @Router /api/google-reviews [get]
func GoogleReviews(c echo.Context) error {
	return ok(c, GetAppContext(c).Places().Reviews(c.Request().Context()))
}

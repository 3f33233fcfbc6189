package adminapi

import (
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/riverhouse-belgrade/riverhouse/internal/media"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

type reviewPayload struct {
	AuthorName string `json:"authorName" validate:"max=255"`
	Rating     int    `json:"rating"`
	Text       string `json:"text" validate:"max=5000"`
	ImageUrl   string `json:"imageUrl" validate:"max=1024"`
}

type reviewUpdatePayload struct {
	ID         flexID  `json:"id"`
	AuthorName *string `json:"authorName" validate:"omitempty,max=255"`
	Rating     *int    `json:"rating"`
	Text       *string `json:"text" validate:"omitempty,max=5000"`
	ImageUrl   *string `json:"imageUrl" validate:"omitempty,max=1024"`
	Featured   *bool   `json:"featured"`
	Order      *int    `json:"order"`
	Approved   *bool   `json:"approved"`
}

func registerReviewRoutes() {
	webserver.ApiGET("/reviews", ListReviews)
	webserver.ApiGET("/reviews/summary", ReviewSummary)
	webserver.ApiPOST("/reviews", CreateReview, webserver.PublicLimit())
	webserver.ApiPOST("/reviews/upload", UploadReviewImage, webserver.PublicLimit())
	webserver.ApiPUT("/reviews", UpdateReview, sessionRequired())
	webserver.ApiDELETE("/reviews", DeleteReview, sessionRequired())
}

// ListReviews lists approved reviews; operators with a session see all of them
// @Summary list reviews
// @Tags Reviews
// @Param featured query bool false "Featured only, at most 6"
// @Success 200 {array} domain.Review
// @Router /api/reviews [get]
func ListReviews(c echo.Context) error {
	_, isOperator := GetAppContext(c).Sessions().Optional(c)
	featured, _ := strconv.ParseBool(c.QueryParam("featured"))

	items, err := store.NewReviewStore(GetDB(c)).List(c.Request().Context(), store.ReviewFilter{
		FeaturedOnly:      featured,
		IncludeUnapproved: isOperator,
	})
	if err != nil {
		return failErr(c, err, "query reviews")
	}
	return ok(c, items)
}

// CreateReview stores a guest review
// @Summary submit a review
// @Tags Reviews
// @Param body body reviewPayload true "review"
// @Success 200 {object} domain.Review
// @Router /api/reviews [post]
func CreateReview(c echo.Context) error {
	var payload reviewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	item, err := store.NewReviewStore(GetDB(c)).Create(c.Request().Context(), store.ReviewInput{
		AuthorName: payload.AuthorName,
		Rating:     payload.Rating,
		Text:       payload.Text,
		ImageUrl:   payload.ImageUrl,
	})
	if err != nil {
		return failErr(c, err, "create review")
	}
	return ok(c, item)
}

func UpdateReview(c echo.Context) error {
	var payload reviewUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	id, valid := requestID(c, payload.ID)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Review ID is required", nil)
	}

	item, err := store.NewReviewStore(GetDB(c)).Update(c.Request().Context(), id, store.ReviewUpdate{
		AuthorName: payload.AuthorName,
		Rating:     payload.Rating,
		Text:       payload.Text,
		ImageUrl:   payload.ImageUrl,
		Featured:   payload.Featured,
		Order:      payload.Order,
		Approved:   payload.Approved,
	})
	if err != nil {
		return failErr(c, err, "update review")
	}
	logOperation(c, "update_review", strconv.FormatInt(id, 10))
	return ok(c, item)
}

func DeleteReview(c echo.Context) error {
	id, valid := parseID(c.QueryParam("id"))
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Review ID is required", nil)
	}
	if err := store.NewReviewStore(GetDB(c)).Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err, "delete review")
	}
	logOperation(c, "delete_review", strconv.FormatInt(id, 10))
	return okFlag(c)
}

// ReviewSummary rating statistics of approved reviews
func ReviewSummary(c echo.Context) error {
	summary, err := store.NewReviewStore(GetDB(c)).Summary(c.Request().Context())
	if err != nil {
		return failErr(c, err, "summarize reviews")
	}
	return ok(c, summary)
}

// UploadReviewImage stores a guest photo attached to a review
func UploadReviewImage(c echo.Context) error {
	appCtx := GetAppContext(c)
	gateway := appCtx.Media()
	if gateway == nil {
		return failErr(c, media.ErrNotConfigured, "upload review image")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "No file uploaded", nil)
	}
	if err := media.CheckImage(fh.Header.Get(echo.HeaderContentType), fh.Size, media.MaxReviewImageBytes); err != nil {
		return failErr(c, err, "upload review image")
	}

	asset, err := uploadFile(c, gateway, path.Join(appCtx.Config().Media.UploadFolder, "reviews"), fh)
	if err != nil {
		return failErr(c, err, "upload review image")
	}
	return ok(c, asset)
}

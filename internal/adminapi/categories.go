package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/riverhouse-belgrade/riverhouse/internal/store"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

type categoryPayload struct {
	Name        string   `json:"name" validate:"max=255"`
	Description string   `json:"description" validate:"max=2000"`
	ImageUrls   []string `json:"imageUrls"`
	Order       int      `json:"order"`
}

type categoryUpdatePayload struct {
	ID          flexID    `json:"id"`
	Name        *string   `json:"name" validate:"omitempty,max=255"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	ImageUrls   *[]string `json:"imageUrls"`
	Order       *int      `json:"order"`
}

func registerCategoryRoutes() {
	webserver.ApiGET("/categories", ListCategories)
	webserver.ApiPOST("/categories", CreateCategory, sessionRequired())
	webserver.ApiPUT("/categories", UpdateCategory, sessionRequired())
	webserver.ApiDELETE("/categories", DeleteCategory, sessionRequired())
}

// ListCategories lists gallery categories, or returns one when ?id= is given
// @Summary gallery categories
// @Tags Gallery
// @Param id query string false "Category ID"
// @Success 200 {array} domain.GalleryCategory
// @Router /api/categories [get]
func ListCategories(c echo.Context) error {
	categories := store.NewCategoryStore(GetDB(c))
	ctx := c.Request().Context()

	if q := c.QueryParam("id"); q != "" {
		id, valid := parseID(q)
		if !valid {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
		}
		item, err := categories.Get(ctx, id)
		if err != nil {
			return failErr(c, err, "query category")
		}
		return ok(c, item)
	}

	items, err := categories.List(ctx)
	if err != nil {
		return failErr(c, err, "query categories")
	}
	return ok(c, items)
}

func CreateCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	item, err := store.NewCategoryStore(GetDB(c)).Create(c.Request().Context(), store.CategoryInput{
		Name:        payload.Name,
		Description: payload.Description,
		ImageUrls:   payload.ImageUrls,
		Order:       payload.Order,
	})
	if err != nil {
		return failErr(c, err, "create category")
	}
	logOperation(c, "create_category", item.Name)
	return ok(c, item)
}

func UpdateCategory(c echo.Context) error {
	var payload categoryUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	id, valid := requestID(c, payload.ID)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Category ID is required", nil)
	}

	item, err := store.NewCategoryStore(GetDB(c)).Update(c.Request().Context(), id, store.CategoryUpdate{
		Name:        payload.Name,
		Description: payload.Description,
		ImageUrls:   payload.ImageUrls,
		Order:       payload.Order,
	})
	if err != nil {
		return failErr(c, err, "update category")
	}
	logOperation(c, "update_category", item.Name)
	return ok(c, item)
}

// DeleteCategory removes a category; deleting a missing id still succeeds
func DeleteCategory(c echo.Context) error {
	id, valid := parseID(c.QueryParam("id"))
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Category ID is required", nil)
	}
	deleted, err := store.NewCategoryStore(GetDB(c)).Delete(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err, "delete category")
	}
	if deleted {
		logOperation(c, "delete_category", strconv.FormatInt(id, 10))
	}
	return okFlag(c)
}

package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

type pricePayload struct {
	Price                *float64              `json:"price" validate:"omitempty,min=0"`
	Description          string                `json:"description" validate:"max=4000"`
	IncludedItems        []string              `json:"includedItems"`
	IncludedItemsDetails []domain.IncludedItem `json:"includedItemsDetails"`
	AdditionalBenefits   string                `json:"additionalBenefits" validate:"max=2000"`
	Note                 string                `json:"note" validate:"max=2000"`
}

type priceUpdatePayload struct {
	ID                   flexID                 `json:"id"`
	Price                *float64               `json:"price" validate:"omitempty,min=0"`
	Description          *string                `json:"description" validate:"omitempty,max=4000"`
	IncludedItems        *[]string              `json:"includedItems"`
	IncludedItemsDetails *[]domain.IncludedItem `json:"includedItemsDetails"`
	AdditionalBenefits   *string                `json:"additionalBenefits" validate:"omitempty,max=2000"`
	Note                 *string                `json:"note" validate:"omitempty,max=2000"`
}

func registerPriceRoutes() {
	for _, prefix := range []string{"/prices", "/pricing"} {
		webserver.ApiGET(prefix, GetPrice)
		webserver.ApiPOST(prefix, CreatePrice, sessionRequired())
		webserver.ApiPUT(prefix, UpdatePrice, sessionRequired())
		webserver.ApiDELETE(prefix, DeletePrice, sessionRequired())
	}
	webserver.ApiPOST("/prices/migrate", MigratePrices, sessionRequired())
}

// GetPrice returns the price record, or null when none exists
// @Summary current price
// @Tags Pricing
// @Success 200 {object} domain.Price
// @Router /api/prices [get]
func GetPrice(c echo.Context) error {
	p, err := store.NewPriceStore(GetDB(c)).Get(c.Request().Context())
	if errors.Is(err, store.ErrNotFound) {
		return ok(c, nil)
	} else if err != nil {
		return failErr(c, err, "query price")
	}
	return ok(c, p)
}

// CreatePrice replaces the price record
func CreatePrice(c echo.Context) error {
	var payload pricePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	p, err := store.NewPriceStore(GetDB(c)).Create(c.Request().Context(), store.PriceInput{
		Price:                payload.Price,
		Description:          payload.Description,
		IncludedItems:        payload.IncludedItems,
		IncludedItemsDetails: payload.IncludedItemsDetails,
		AdditionalBenefits:   payload.AdditionalBenefits,
		Note:                 payload.Note,
	})
	if err != nil {
		return failErr(c, err, "create price")
	}
	logOperation(c, "create_price", strconv.FormatFloat(p.Price, 'f', -1, 64))
	return ok(c, p)
}

func UpdatePrice(c echo.Context) error {
	var payload priceUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	id, valid := requestID(c, payload.ID)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Price ID is required", nil)
	}

	p, err := store.NewPriceStore(GetDB(c)).Update(c.Request().Context(), id, store.PriceUpdate{
		Price:                payload.Price,
		Description:          payload.Description,
		IncludedItems:        payload.IncludedItems,
		IncludedItemsDetails: payload.IncludedItemsDetails,
		AdditionalBenefits:   payload.AdditionalBenefits,
		Note:                 payload.Note,
	})
	if err != nil {
		return failErr(c, err, "update price")
	}
	logOperation(c, "update_price", strconv.FormatInt(p.ID, 10))
	return ok(c, p)
}

func DeletePrice(c echo.Context) error {
	id, valid := parseID(c.QueryParam("id"))
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Price ID is required", nil)
	}
	if err := store.NewPriceStore(GetDB(c)).Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err, "delete price")
	}
	logOperation(c, "delete_price", strconv.FormatInt(id, 10))
	return okFlag(c)
}

// MigratePrices upgrades legacy included-items on demand
func MigratePrices(c echo.Context) error {
	n, err := GetAppContext(c).MigratePrices(c.Request().Context())
	if err != nil {
		return failErr(c, err, "migrate prices")
	}
	logOperation(c, "migrate_prices", strconv.Itoa(n))
	return ok(c, map[string]int{"migrated": n})
}

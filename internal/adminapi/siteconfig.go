package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/internal/media"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

const importListMax = 1000

type siteConfigPayload struct {
	HeroImageUrl     *string   `json:"heroImageUrl" validate:"omitempty,max=1024"`
	LogoUrl          *string   `json:"logoUrl" validate:"omitempty,max=1024"`
	FeaturedImages   *[]string `json:"featuredImages"`
	InstagramImages  *[]string `json:"instagramImages"`
	GalleryImageUrls *[]string `json:"galleryImageUrls"`
}

type importPayload struct {
	Folder       string `json:"folder"`
	HeroImageUrl string `json:"heroImageUrl"`
	LogoUrl      string `json:"logoUrl"`
}

type importResponse struct {
	*domain.SiteConfig
	Count  int    `json:"count"`
	Folder string `json:"folder"`
}

func registerSiteConfigRoutes() {
	webserver.ApiGET("/images", GetSiteConfig)
	webserver.ApiPUT("/images", UpdateSiteConfig, sessionRequired())
	webserver.ApiPOST("/images/import", ImportSiteImages, sessionRequired())
}

// GetSiteConfig returns the site configuration with dead hero/logo links
// replaced by their fallbacks
// @Summary site configuration
// @Tags Site
// @Success 200 {object} domain.SiteConfig
// @Router /api/images [get]
func GetSiteConfig(c echo.Context) error {
	ctx := c.Request().Context()
	cfg, err := store.NewSiteConfigStore(GetDB(c)).Get(ctx)
	if err != nil {
		zap.L().Error("query site config failed, serving defaults", zap.Error(err))
		return ok(c, domain.SiteConfig{
			LogoUrl:          domain.DefaultLogoURL,
			FeaturedImages:   []string{},
			InstagramImages:  []string{},
			GalleryImageUrls: []string{},
		})
	}
	resolved := GetAppContext(c).Prober().Resolve(ctx, *cfg)
	return ok(c, resolved)
}

// UpdateSiteConfig applies a partial update; image lists are clipped to their caps
// @Summary update site configuration
// @Tags Site
// @Param body body siteConfigPayload true "fields to change"
// @Success 200 {object} domain.SiteConfig
// @Router /api/images [put]
func UpdateSiteConfig(c echo.Context) error {
	var payload siteConfigPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse site configuration", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	cfg, err := store.NewSiteConfigStore(GetDB(c)).Update(c.Request().Context(), store.SiteConfigUpdate{
		HeroImageUrl:     payload.HeroImageUrl,
		LogoUrl:          payload.LogoUrl,
		FeaturedImages:   payload.FeaturedImages,
		InstagramImages:  payload.InstagramImages,
		GalleryImageUrls: payload.GalleryImageUrls,
	})
	if err != nil {
		return failErr(c, err, "update site configuration")
	}
	logOperation(c, "update_images", "site configuration updated")
	return ok(c, cfg)
}

// ImportSiteImages fills the gallery list from a hosted folder
// @Summary import hosted images
// @Tags Site
// @Param body body importPayload false "folder and optional hero/logo"
// @Success 200 {object} importResponse
// @Router /api/images/import [post]
func ImportSiteImages(c echo.Context) error {
	var payload importPayload
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&payload); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse import parameters", nil)
		}
	}
	appCtx := GetAppContext(c)
	gateway := appCtx.Media()
	if gateway == nil {
		return failErr(c, media.ErrNotConfigured, "import images")
	}

	folder := strings.TrimSpace(payload.Folder)
	if folder == "" {
		folder = appCtx.Config().Media.UploadFolder
	}
	ctx := c.Request().Context()
	assets, err := gateway.List(ctx, folder, importListMax)
	if err != nil {
		return failErr(c, err, "list images")
	}
	if len(assets) == 0 {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "No images found in folder", map[string]string{"folder": folder})
	}
	urls := make([]string, 0, len(assets))
	for _, a := range assets {
		urls = append(urls, a.URL)
	}

	cfg, err := store.NewSiteConfigStore(GetDB(c)).Import(ctx, urls, payload.HeroImageUrl, payload.LogoUrl)
	if err != nil {
		return failErr(c, err, "import images")
	}
	logOperation(c, "import_images", "imported "+folder)
	return ok(c, importResponse{SiteConfig: cfg, Count: len(urls), Folder: folder})
}

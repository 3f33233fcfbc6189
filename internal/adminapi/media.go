package adminapi

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/riverhouse-belgrade/riverhouse/internal/media"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

type listImagesResponse struct {
	Folder string   `json:"folder"`
	Count  int      `json:"count"`
	Urls   []string `json:"urls"`
}

type uploadFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type batchUploadResponse struct {
	Uploaded []media.Asset   `json:"uploaded"`
	Failed   []uploadFailure `json:"failed"`
}

func registerMediaRoutes() {
	webserver.ApiGET("/cloudinary/list", ListImages)
	webserver.ApiPOST("/upload", UploadImage, sessionRequired())
	webserver.ApiPOST("/upload/batch", UploadImages, sessionRequired())
	webserver.ApiDELETE("/cloudinary/delete", DeleteImage, sessionRequired())
}

func gatewayOf(c echo.Context) (media.Gateway, error) {
	gateway := GetAppContext(c).Media()
	if gateway == nil {
		return nil, media.ErrNotConfigured
	}
	return gateway, nil
}

func uploadFolder(c echo.Context, folder string) string {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return GetAppContext(c).Config().Media.UploadFolder
	}
	return folder
}

func uploadFile(c echo.Context, gateway media.Gateway, folder string, fh *multipart.FileHeader) (*media.Asset, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gateway.Upload(c.Request().Context(), folder, fh.Filename, fh.Header.Get(echo.HeaderContentType), f)
}

// ListImages lists hosted image urls of a folder
// @Summary list hosted images
// @Tags Media
// @Param folder query string false "Folder"
// @Param max query int false "Maximum number of images, default 200"
// @Success 200 {object} listImagesResponse
// @Router /api/cloudinary/list [get]
func ListImages(c echo.Context) error {
	gateway, err := gatewayOf(c)
	if err != nil {
		return failErr(c, err, "list images")
	}
	folder := uploadFolder(c, c.QueryParam("folder"))
	max, _ := strconv.Atoi(c.QueryParam("max"))
	if max <= 0 {
		max = media.DefaultListMax
	}

	assets, err := gateway.List(c.Request().Context(), folder, max)
	if err != nil {
		return failErr(c, err, "list images")
	}
	urls := make([]string, 0, len(assets))
	for _, a := range assets {
		urls = append(urls, a.URL)
	}
	return ok(c, listImagesResponse{Folder: folder, Count: len(urls), Urls: urls})
}

// UploadImage uploads one multipart file
func UploadImage(c echo.Context) error {
	gateway, err := gatewayOf(c)
	if err != nil {
		return failErr(c, err, "upload image")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "No file uploaded", nil)
	}
	if err := media.CheckImage(fh.Header.Get(echo.HeaderContentType), fh.Size, 0); err != nil {
		return failErr(c, err, "upload image")
	}
	asset, err := uploadFile(c, gateway, uploadFolder(c, c.FormValue("folder")), fh)
	if err != nil {
		return failErr(c, err, "upload image")
	}
	logOperation(c, "upload_image", asset.PublicID)
	return ok(c, asset)
}

// UploadImages uploads every file part in order, continuing past failures
func UploadImages(c echo.Context) error {
	gateway, err := gatewayOf(c)
	if err != nil {
		return failErr(c, err, "upload images")
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File["file"]) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "No files uploaded", nil)
	}
	folder := uploadFolder(c, c.FormValue("folder"))

	resp := batchUploadResponse{Uploaded: []media.Asset{}, Failed: []uploadFailure{}}
	for _, fh := range form.File["file"] {
		err := media.CheckImage(fh.Header.Get(echo.HeaderContentType), fh.Size, 0)
		var asset *media.Asset
		if err == nil {
			asset, err = uploadFile(c, gateway, folder, fh)
		}
		if err != nil {
			zap.L().Warn("batch upload item failed", zap.String("file", fh.Filename), zap.Error(err))
			resp.Failed = append(resp.Failed, uploadFailure{Name: fh.Filename, Error: err.Error()})
			continue
		}
		resp.Uploaded = append(resp.Uploaded, *asset)
	}
	logOperation(c, "upload_images", strconv.Itoa(len(resp.Uploaded))+" uploaded")
	return ok(c, resp)
}

// DeleteImage deletes a hosted image by url or public id. A missing image
// counts as deleted.
func DeleteImage(c echo.Context) error {
	gateway, err := gatewayOf(c)
	if err != nil {
		return failErr(c, err, "delete image")
	}
	publicID := strings.TrimSpace(c.QueryParam("publicId"))
	if publicID == "" {
		if u := strings.TrimSpace(c.QueryParam("url")); u != "" {
			publicID, _ = gateway.PublicID(u)
		}
	}
	if publicID == "" {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "A valid url or publicId is required", nil)
	}

	result, err := gateway.Delete(c.Request().Context(), publicID)
	if err != nil {
		return failErr(c, err, "delete image")
	}
	logOperation(c, "delete_image", publicID)
	return ok(c, map[string]interface{}{"ok": true, "result": result})
}

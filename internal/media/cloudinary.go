package media

import (
	"context"
	"io"
	"regexp"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin/search"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var cloudinaryPublicID = regexp.MustCompile(`/upload/(?:v\d+/)?(.+?)(?:\.(jpg|jpeg|png|gif|webp|svg))?$`)

// Cloudinary hosts images on a Cloudinary cloud
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.Wrap(ErrNotConfigured, "cloudinary credentials missing")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "init cloudinary")
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Name() string { return "cloudinary" }

func (c *Cloudinary) Upload(ctx context.Context, folder, _, _ string, body io.Reader) (*Asset, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}
	resp, err := c.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}
	if resp.Error.Message != "" {
		return nil, errors.Wrap(ErrUpstream, resp.Error.Message)
	}
	return &Asset{PublicID: resp.PublicID, URL: resp.SecureURL}, nil
}

// List follows the search cursor until max assets are collected
func (c *Cloudinary) List(ctx context.Context, folder string, max int) ([]Asset, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}
	max = normalizeMax(max)
	assets := make([]Asset, 0)
	cursor := ""
	for {
		res, err := c.cld.Admin.Search(ctx, search.Query{
			Expression: "folder=" + folder,
			MaxResults: pageSize(max - len(assets)),
			NextCursor: cursor,
			SortBy:     []search.SortByField{{"public_id": search.Ascending}},
		})
		if err != nil {
			return nil, errors.Wrap(ErrUpstream, err.Error())
		}
		if res.Error.Message != "" {
			return nil, errors.Wrap(ErrUpstream, res.Error.Message)
		}
		for _, r := range res.Assets {
			if r.SecureURL != "" {
				assets = append(assets, Asset{PublicID: r.PublicID, URL: r.SecureURL})
			}
		}
		cursor = res.NextCursor
		if cursor == "" || len(assets) >= max {
			break
		}
	}
	if len(assets) > max {
		assets = assets[:max]
	}
	return assets, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string) (string, error) {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return "", errors.Wrap(ErrUpstream, err.Error())
	}
	if resp.Error.Message != "" {
		return "", errors.Wrap(ErrUpstream, resp.Error.Message)
	}
	if resp.Result != ResultOK && resp.Result != ResultNotFound {
		zap.L().Warn("unexpected cloudinary destroy result",
			zap.String("public_id", publicID), zap.String("result", resp.Result))
		return "", errors.Wrap(ErrUpstream, resp.Result)
	}
	return resp.Result, nil
}

func (c *Cloudinary) PublicID(url string) (string, bool) {
	return ExtractCloudinaryPublicID(url)
}

// ExtractCloudinaryPublicID returns the public id of a Cloudinary delivery
// URL, without the version segment and the image extension.
func ExtractCloudinaryPublicID(url string) (string, bool) {
	m := cloudinaryPublicID.FindStringSubmatch(url)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

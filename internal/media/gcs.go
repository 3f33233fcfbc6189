package media

import (
	"context"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS hosts images in a publicly readable Google Cloud Storage bucket
type GCS struct {
	bucket    *gcs.BucketHandle
	publicURL string
}

func NewGCS(ctx context.Context, bucketName, publicURL, credentialsFile string) (*GCS, error) {
	if bucketName == "" {
		return nil, errors.Wrap(ErrNotConfigured, "gcs bucket missing")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "init gcs client")
	}
	if publicURL == "" {
		publicURL = "https://storage.googleapis.com/" + bucketName
	}
	return &GCS{
		bucket:    client.Bucket(bucketName),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (g *GCS) Name() string { return "gcs" }

func (g *GCS) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*Asset, error) {
	name, err := objectName(folder, filename, contentType)
	if err != nil {
		return nil, err
	}
	w := g.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}
	return &Asset{PublicID: name, URL: g.publicURL + "/" + name}, nil
}

func (g *GCS) List(ctx context.Context, folder string, max int) ([]Asset, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}
	max = normalizeMax(max)
	query := &gcs.Query{}
	if folder != "" {
		query.Prefix = folder + "/"
	}
	assets := make([]Asset, 0)
	it := g.bucket.Objects(ctx, query)
	for len(assets) < max {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(ErrUpstream, err.Error())
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		assets = append(assets, Asset{PublicID: attrs.Name, URL: g.publicURL + "/" + attrs.Name})
	}
	return assets, nil
}

func (g *GCS) Delete(ctx context.Context, publicID string) (string, error) {
	err := g.bucket.Object(publicID).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ResultNotFound, nil
	}
	if err != nil {
		return "", errors.Wrap(ErrUpstream, err.Error())
	}
	return ResultOK, nil
}

func (g *GCS) PublicID(url string) (string, bool) {
	return stripPrefix(url, g.publicURL)
}

package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/riverhouse-belgrade/riverhouse/config"
)

const (
	ResultOK       = "ok"
	ResultNotFound = "not found"

	DefaultListMax = 200
	MaxPageSize    = 200

	MaxReviewImageBytes = 5 << 20
)

var (
	ErrUpstream      = errors.New("image hosting request failed")
	ErrNotConfigured = errors.New("image hosting is not configured")
	ErrInvalidName   = errors.New("invalid object name")
	ErrInvalidImage  = errors.New("invalid image")
)

// Asset one hosted image
type Asset struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// Gateway is the image hosting backend: folders of images addressed by a
// stable public id.
type Gateway interface {
	Name() string
	// Upload stores body under folder and returns its public address
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*Asset, error)
	// List returns up to max assets of folder ordered by public id
	List(ctx context.Context, folder string, max int) ([]Asset, error)
	// Delete removes an asset and returns ResultOK or ResultNotFound
	Delete(ctx context.Context, publicID string) (string, error)
	// PublicID extracts the public id from a hosted URL
	PublicID(url string) (string, bool)
}

// NewGateway builds the backend selected by cfg.Media.Provider
func NewGateway(ctx context.Context, cfg *config.AppConfig) (Gateway, error) {
	mc := cfg.Media
	switch strings.ToLower(mc.Provider) {
	case "cloudinary":
		return NewCloudinary(mc.CloudName, mc.ApiKey, mc.ApiSecret)
	case "s3":
		return NewS3(ctx, mc)
	case "gcs":
		return NewGCS(ctx, mc.Bucket, mc.PublicURL, mc.Credentials)
	case "", "filesystem":
		return NewFilesystem(cfg.GetMediaDir(), mc.FsURLPrefix)
	default:
		return nil, fmt.Errorf("unsupported media provider %q", mc.Provider)
	}
}

// CheckImage validates an upload's declared content type and size.
// maxBytes <= 0 disables the size check.
func CheckImage(contentType string, size, maxBytes int64) error {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return errors.Wrap(ErrInvalidImage, "file must be an image")
	}
	if maxBytes > 0 && size > maxBytes {
		return errors.Wrapf(ErrInvalidImage, "image must be smaller than %dMB", maxBytes>>20)
	}
	return nil
}

func cleanFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if strings.Contains(folder, "..") || strings.ContainsAny(folder, `\`) {
		return "", ErrInvalidName
	}
	return folder, nil
}

// objectName returns folder/<uuid><ext>, the extension taken from the
// original file name or the content type.
func objectName(folder, filename, contentType string) (string, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	name := uuid.NewString() + ext
	if folder == "" {
		return name, nil
	}
	return path.Join(folder, name), nil
}

func stripPrefix(url, base string) (string, bool) {
	base = strings.TrimRight(base, "/") + "/"
	if base == "/" || !strings.HasPrefix(url, base) {
		return "", false
	}
	id := strings.TrimPrefix(url, base)
	if id == "" || strings.Contains(id, "..") {
		return "", false
	}
	return id, true
}

func pageSize(remaining int) int {
	if remaining > MaxPageSize {
		return MaxPageSize
	}
	return remaining
}

func normalizeMax(max int) int {
	if max <= 0 {
		return DefaultListMax
	}
	return max
}

package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverhouse-belgrade/riverhouse/config"
)

func TestExtractCloudinaryPublicID(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345678/river-house-belgrade/terasa.jpg", "river-house-belgrade/terasa", true},
		{"https://res.cloudinary.com/demo/image/upload/river-house-belgrade/reviews/a1.webp", "river-house-belgrade/reviews/a1", true},
		{"https://res.cloudinary.com/demo/image/upload/v1/folder/file.name.png", "folder/file.name", true},
		{"https://res.cloudinary.com/demo/image/upload/v1/folder/raw", "folder/raw", true},
		{"https://example.com/images/a.jpg", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractCloudinaryPublicID(tc.url)
		assert.Equal(t, tc.ok, ok, tc.url)
		assert.Equal(t, tc.want, got, tc.url)
	}
}

func TestCheckImage(t *testing.T) {
	assert.NoError(t, CheckImage("image/jpeg", 1024, MaxReviewImageBytes))
	assert.ErrorIs(t, CheckImage("application/pdf", 1024, MaxReviewImageBytes), ErrInvalidImage)
	assert.ErrorIs(t, CheckImage("image/png", MaxReviewImageBytes+1, MaxReviewImageBytes), ErrInvalidImage)
	assert.NoError(t, CheckImage("image/png", MaxReviewImageBytes+1, 0))
}

func TestObjectName(t *testing.T) {
	name, err := objectName("river-house-belgrade/", "IMG_001.JPG", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "river-house-belgrade/"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	name, err = objectName("", "blob", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	_, err = objectName("../etc", "x.jpg", "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFilesystemGateway(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFilesystem(root, "/media")
	require.NoError(t, err)
	ctx := context.Background()

	a1, err := fs.Upload(ctx, "river-house-belgrade", "a.jpg", "image/jpeg", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = fs.Upload(ctx, "river-house-belgrade", "b.png", "image/png", strings.NewReader("two"))
	require.NoError(t, err)
	_, err = fs.Upload(ctx, "other", "c.png", "image/png", strings.NewReader("three"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a1.URL, "/media/river-house-belgrade/"))
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(a1.PublicID)))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	list, err := fs.List(ctx, "river-house-belgrade", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	limited, err := fs.List(ctx, "river-house-belgrade", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	empty, err := fs.List(ctx, "nothing-here", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	id, ok := fs.PublicID(a1.URL)
	require.True(t, ok)
	assert.Equal(t, a1.PublicID, id)
	id, ok = fs.PublicID("https://riverhouse.rs" + a1.URL)
	require.True(t, ok)
	assert.Equal(t, a1.PublicID, id)
	_, ok = fs.PublicID("https://elsewhere.example/x.jpg")
	assert.False(t, ok)

	res, err := fs.Delete(ctx, a1.PublicID)
	require.NoError(t, err)
	assert.Equal(t, ResultOK, res)

	res, err = fs.Delete(ctx, a1.PublicID)
	require.NoError(t, err)
	assert.Equal(t, ResultNotFound, res)

	_, err = fs.Delete(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestNewGatewayProviders(t *testing.T) {
	cfg := config.DefaultAppConfig()
	cfg.Media.Provider = "filesystem"
	cfg.Media.FsRoot = t.TempDir()
	gw, err := NewGateway(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "filesystem", gw.Name())

	cfg.Media.Provider = "cloudinary"
	_, err = NewGateway(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNotConfigured)

	cfg.Media.Provider = "s3"
	_, err = NewGateway(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNotConfigured)

	cfg.Media.Provider = "ftp"
	_, err = NewGateway(context.Background(), cfg)
	assert.Error(t, err)
}

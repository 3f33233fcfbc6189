package media

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Filesystem stores images under a local directory served at urlPrefix
type Filesystem struct {
	root      string
	urlPrefix string
}

func NewFilesystem(root, urlPrefix string) (*Filesystem, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create media root %s", absRoot)
	}
	if urlPrefix == "" {
		urlPrefix = "/media"
	}
	return &Filesystem{root: absRoot, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

func (fs *Filesystem) Name() string { return "filesystem" }

// Root is the directory the web server exposes at URLPrefix
func (fs *Filesystem) Root() string { return fs.root }

func (fs *Filesystem) URLPrefix() string { return fs.urlPrefix }

func (fs *Filesystem) fullPath(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	return filepath.Join(fs.root, filepath.FromSlash(name)), nil
}

func (fs *Filesystem) Upload(_ context.Context, folder, filename, contentType string, body io.Reader) (*Asset, error) {
	name, err := objectName(folder, filename, contentType)
	if err != nil {
		return nil, err
	}
	full, err := fs.fullPath(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, errors.Wrap(err, "create media folder")
	}
	f, err := os.OpenFile(full, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "create media file")
	}
	_, err = io.Copy(f, body)
	errClose := f.Close()
	if err == nil {
		err = errClose
	}
	if err != nil {
		_ = os.Remove(full)
		return nil, errors.Wrap(err, "write media file")
	}
	zap.L().Info("media file stored", zap.String("name", name))
	return &Asset{PublicID: name, URL: path.Join(fs.urlPrefix, name)}, nil
}

func (fs *Filesystem) List(_ context.Context, folder string, max int) ([]Asset, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}
	max = normalizeMax(max)
	entries, err := os.ReadDir(filepath.Join(fs.root, filepath.FromSlash(folder)))
	if os.IsNotExist(err) {
		return []Asset{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read media folder")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	assets := make([]Asset, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := path.Join(folder, e.Name())
		assets = append(assets, Asset{PublicID: name, URL: path.Join(fs.urlPrefix, name)})
		if len(assets) >= max {
			break
		}
	}
	return assets, nil
}

func (fs *Filesystem) Delete(_ context.Context, publicID string) (string, error) {
	full, err := fs.fullPath(publicID)
	if err != nil {
		return "", err
	}
	err = os.Remove(full)
	if os.IsNotExist(err) {
		return ResultNotFound, nil
	}
	if err != nil {
		return "", errors.Wrap(err, "delete media file")
	}
	zap.L().Info("media file deleted", zap.String("name", publicID))
	return ResultOK, nil
}

func (fs *Filesystem) PublicID(url string) (string, bool) {
	// accept absolute URLs pointing at this server as well
	if i := strings.Index(url, fs.urlPrefix+"/"); i > 0 && strings.Contains(url[:i], "://") {
		url = url[i:]
	}
	return stripPrefix(url, fs.urlPrefix)
}

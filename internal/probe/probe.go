package probe

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
)

const DefaultTimeout = 2500 * time.Millisecond

var externalURL = regexp.MustCompile(`^https?://`)

// IsExternal reports whether url points at a remote http(s) host
func IsExternal(url string) bool {
	return externalURL.MatchString(url)
}

// Prober checks that image URLs still resolve
type Prober struct {
	timeout time.Duration
	client  *http.Client
}

func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{timeout: timeout, client: &http.Client{}}
}

// Alive sends a bounded HEAD request. Empty URLs are dead and local paths
// are trusted without a request.
func (p *Prober) Alive(ctx context.Context, url string) bool {
	if url == "" {
		return false
	}
	if !IsExternal(url) {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var code int
	err := gout.New(p.client).
		HEAD(url).
		WithContext(ctx).
		SetTimeout(p.timeout).
		Code(&code).
		Do()
	if err != nil {
		zap.L().Debug("image probe failed", zap.String("url", url), zap.Error(err))
		return false
	}
	return code >= 200 && code < 400
}

// Resolve returns a copy of cfg with a dead hero or logo replaced by its
// fallback. The stored record is not touched.
func (p *Prober) Resolve(ctx context.Context, cfg domain.SiteConfig) domain.SiteConfig {
	var heroOk, logoOk bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		heroOk = p.Alive(gctx, cfg.HeroImageUrl)
		return nil
	})
	g.Go(func() error {
		logoOk = p.Alive(gctx, cfg.LogoUrl)
		return nil
	})
	_ = g.Wait()

	if !heroOk {
		cfg.HeroImageUrl = domain.FallbackHeroURL
	}
	if !logoOk {
		cfg.LogoUrl = domain.DefaultLogoURL
	}
	return cfg
}

package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/pkg/common"
)

// SiteConfigUpdate partial site configuration write; nil fields are left untouched
type SiteConfigUpdate struct {
	HeroImageUrl     *string
	LogoUrl          *string
	FeaturedImages   *[]string
	InstagramImages  *[]string
	GalleryImageUrls *[]string
}

// SiteConfigStore reads and writes the singleton site configuration row
type SiteConfigStore struct {
	db *gorm.DB
}

func NewSiteConfigStore(db *gorm.DB) *SiteConfigStore {
	return &SiteConfigStore{db: db}
}

func defaultSiteConfig() domain.SiteConfig {
	cfg := domain.SiteConfig{
		ID:      domain.SiteConfigID,
		LogoUrl: domain.DefaultLogoURL,
	}
	cfg.Normalize()
	return cfg
}

// Get returns the site configuration, creating the default row when none exists
func (s *SiteConfigStore) Get(ctx context.Context) (*domain.SiteConfig, error) {
	return getSiteConfig(s.db.WithContext(ctx))
}

func getSiteConfig(tx *gorm.DB) (*domain.SiteConfig, error) {
	var cfg domain.SiteConfig
	err := tx.First(&cfg, domain.SiteConfigID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := defaultSiteConfig()
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&def).Error; err != nil {
			return nil, errors.Wrap(err, "create default site config")
		}
		err = tx.First(&cfg, domain.SiteConfigID).Error
	}
	if err != nil {
		return nil, errors.Wrap(err, "query site config")
	}
	return &cfg, nil
}

// Update applies a partial write. Rotation lists are clipped to their caps,
// never rejected.
func (s *SiteConfigStore) Update(ctx context.Context, upd SiteConfigUpdate) (*domain.SiteConfig, error) {
	if upd.HeroImageUrl != nil && strings.TrimSpace(*upd.HeroImageUrl) == "" {
		return nil, invalidf("heroImageUrl must not be empty")
	}

	var result *domain.SiteConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := getSiteConfig(tx)
		if err != nil {
			return err
		}
		if upd.HeroImageUrl != nil {
			cfg.HeroImageUrl = strings.TrimSpace(*upd.HeroImageUrl)
		}
		if upd.LogoUrl != nil {
			cfg.LogoUrl = strings.TrimSpace(*upd.LogoUrl)
			if cfg.LogoUrl == "" {
				cfg.LogoUrl = domain.DefaultLogoURL
			}
		}
		if upd.FeaturedImages != nil {
			cfg.FeaturedImages = common.TrimStrings(*upd.FeaturedImages)
		}
		if upd.InstagramImages != nil {
			cfg.InstagramImages = common.TrimStrings(*upd.InstagramImages)
		}
		if upd.GalleryImageUrls != nil {
			cfg.GalleryImageUrls = common.TrimStrings(*upd.GalleryImageUrls)
		}
		cfg.Normalize()
		if err := tx.Save(cfg).Error; err != nil {
			return errors.Wrap(err, "save site config")
		}
		result = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Import replaces the gallery list with urls and fills hero and logo,
// preferring explicit values, then the stored ones, then the first url.
func (s *SiteConfigStore) Import(ctx context.Context, urls []string, hero, logo string) (*domain.SiteConfig, error) {
	urls = common.TrimStrings(urls)
	if len(urls) == 0 {
		return nil, invalidf("no images to import")
	}
	var result *domain.SiteConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := getSiteConfig(tx)
		if err != nil {
			return err
		}
		switch {
		case strings.TrimSpace(hero) != "":
			cfg.HeroImageUrl = strings.TrimSpace(hero)
		case cfg.HeroImageUrl == "":
			cfg.HeroImageUrl = urls[0]
		}
		if strings.TrimSpace(logo) != "" {
			cfg.LogoUrl = strings.TrimSpace(logo)
		}
		cfg.GalleryImageUrls = datatypes.JSONSlice[string](urls)
		cfg.Normalize()
		if err := tx.Save(cfg).Error; err != nil {
			return errors.Wrap(err, "save site config")
		}
		result = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

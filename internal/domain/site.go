package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// SiteConfigID is the fixed key of the singleton site configuration row
	SiteConfigID int64 = 1

	MaxFeaturedImages  = 6
	MaxInstagramImages = 8

	DefaultLogoURL  = "/static/favicons/s25-removebg-preview.png"
	FallbackHeroURL = "https://res.cloudinary.com/demo/image/upload/w_1600,c_fill/sample.jpg"
)

// SiteConfig hero, logo and image rotations of the public site
type SiteConfig struct {
	ID               int64                       `gorm:"primaryKey;autoIncrement:false" json:"-"`
	HeroImageUrl     string                      `gorm:"size:1024" json:"heroImageUrl"`
	LogoUrl          string                      `gorm:"size:1024" json:"logoUrl"`
	FeaturedImages   datatypes.JSONSlice[string] `json:"featuredImages"`
	InstagramImages  datatypes.JSONSlice[string] `json:"instagramImages"`
	GalleryImageUrls datatypes.JSONSlice[string] `json:"galleryImageUrls"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

func (SiteConfig) TableName() string {
	return "site_config"
}

// Normalize replaces nil lists with empty ones and clips the rotations to their caps
func (s *SiteConfig) Normalize() {
	s.FeaturedImages = clipStrings(s.FeaturedImages, MaxFeaturedImages)
	s.InstagramImages = clipStrings(s.InstagramImages, MaxInstagramImages)
	if s.GalleryImageUrls == nil {
		s.GalleryImageUrls = datatypes.JSONSlice[string]{}
	}
}

func (s *SiteConfig) AfterFind(*gorm.DB) error {
	s.Normalize()
	return nil
}

func clipStrings(items datatypes.JSONSlice[string], n int) datatypes.JSONSlice[string] {
	if items == nil {
		return datatypes.JSONSlice[string]{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// GalleryCategory named, ordered group of gallery images
type GalleryCategory struct {
	ID          int64                       `json:"id,string"`
	Name        string                      `gorm:"size:255" json:"name"`
	Description string                      `json:"description"`
	ImageUrls   datatypes.JSONSlice[string] `json:"imageUrls"`
	Order       int                         `gorm:"column:sort_order;index" json:"order"`
	CreatedAt   time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (GalleryCategory) TableName() string {
	return "gallery_category"
}

func (c *GalleryCategory) AfterFind(*gorm.DB) error {
	if c.ImageUrls == nil {
		c.ImageUrls = datatypes.JSONSlice[string]{}
	}
	return nil
}

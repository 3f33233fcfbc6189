package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/pkg/common"
)

// CategoryInput fields of a new gallery category
type CategoryInput struct {
	Name        string
	Description string
	ImageUrls   []string
	Order       int
}

// CategoryUpdate partial category write; nil fields are left untouched
type CategoryUpdate struct {
	Name        *string
	Description *string
	ImageUrls   *[]string
	Order       *int
}

type CategoryStore struct {
	db *gorm.DB
}

func NewCategoryStore(db *gorm.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// List returns all categories by display order, newest first within the same order
func (s *CategoryStore) List(ctx context.Context) ([]domain.GalleryCategory, error) {
	var items []domain.GalleryCategory
	err := s.db.WithContext(ctx).
		Order("sort_order ASC").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	return items, nil
}

func (s *CategoryStore) Get(ctx context.Context, id int64) (*domain.GalleryCategory, error) {
	var item domain.GalleryCategory
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "query category")
	}
	return &item, nil
}

func (s *CategoryStore) Create(ctx context.Context, in CategoryInput) (*domain.GalleryCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidf("name is required")
	}
	urls := in.ImageUrls
	if urls == nil {
		urls = []string{}
	}
	item := domain.GalleryCategory{
		ID:          common.UUIDint64(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ImageUrls:   datatypes.JSONSlice[string](urls),
		Order:       in.Order,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return &item, nil
}

func (s *CategoryStore) Update(ctx context.Context, id int64, upd CategoryUpdate) (*domain.GalleryCategory, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, invalidf("name is required")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		item.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		item.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.ImageUrls != nil {
		urls := *upd.ImageUrls
		if urls == nil {
			urls = []string{}
		}
		item.ImageUrls = datatypes.JSONSlice[string](urls)
	}
	if upd.Order != nil {
		item.Order = *upd.Order
	}
	item.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, errors.Wrap(err, "update category")
	}
	return item, nil
}

// Delete removes the category. Deleting an absent id is not an error;
// the returned bool reports whether a row was removed.
func (s *CategoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.GalleryCategory{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "delete category")
	}
	return res.RowsAffected > 0, nil
}

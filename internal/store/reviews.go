package store

import (
	"context"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/pkg/common"
)

const (
	FeaturedReviewLimit = 6
	ReviewListLimit     = 100
)

// ReviewFilter selects reviews for listing. IncludeUnapproved must only be
// set for callers holding a valid session.
type ReviewFilter struct {
	FeaturedOnly      bool
	IncludeUnapproved bool
}

type ReviewInput struct {
	AuthorName string
	Rating     int
	Text       string
	ImageUrl   string
}

// ReviewUpdate partial review write; nil fields are left untouched
type ReviewUpdate struct {
	AuthorName *string
	Rating     *int
	Text       *string
	ImageUrl   *string
	Featured   *bool
	Order      *int
	Approved   *bool
}

// ReviewSummary rating statistics over approved reviews
type ReviewSummary struct {
	Count        int         `json:"count"`
	Average      float64     `json:"average"`
	Median       float64     `json:"median"`
	Distribution map[int]int `json:"distribution"`
}

type ReviewStore struct {
	db *gorm.DB
}

func NewReviewStore(db *gorm.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

func validRating(r int) bool {
	return r >= domain.MinRating && r <= domain.MaxRating
}

func (s *ReviewStore) List(ctx context.Context, filter ReviewFilter) ([]domain.Review, error) {
	db := s.db.WithContext(ctx).Model(&domain.Review{})
	if !filter.IncludeUnapproved {
		db = db.Where("approved = ?", true)
	}
	limit := ReviewListLimit
	if filter.FeaturedOnly {
		db = db.Where("featured = ?", true)
		limit = FeaturedReviewLimit
	}
	var items []domain.Review
	err := db.Order("sort_order ASC").Order("created_at DESC").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "query reviews")
	}
	return items, nil
}

func (s *ReviewStore) Get(ctx context.Context, id int64) (*domain.Review, error) {
	var item domain.Review
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "query review")
	}
	return &item, nil
}

// Create stores a public submission. New reviews are published immediately
// and are never featured.
func (s *ReviewStore) Create(ctx context.Context, in ReviewInput) (*domain.Review, error) {
	author := strings.TrimSpace(in.AuthorName)
	text := strings.TrimSpace(in.Text)
	if author == "" || text == "" {
		return nil, invalidf("authorName and text are required")
	}
	if !validRating(in.Rating) {
		return nil, invalidf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	item := domain.Review{
		ID:         common.UUIDint64(),
		AuthorName: author,
		Rating:     in.Rating,
		Text:       text,
		ImageUrl:   strings.TrimSpace(in.ImageUrl),
		Featured:   false,
		Approved:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, errors.Wrap(err, "create review")
	}
	return &item, nil
}

func (s *ReviewStore) Update(ctx context.Context, id int64, upd ReviewUpdate) (*domain.Review, error) {
	if upd.Rating != nil && !validRating(*upd.Rating) {
		return nil, invalidf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	if upd.AuthorName != nil && strings.TrimSpace(*upd.AuthorName) == "" {
		return nil, invalidf("authorName must not be empty")
	}
	if upd.Text != nil && strings.TrimSpace(*upd.Text) == "" {
		return nil, invalidf("text must not be empty")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.AuthorName != nil {
		item.AuthorName = strings.TrimSpace(*upd.AuthorName)
	}
	if upd.Rating != nil {
		item.Rating = *upd.Rating
	}
	if upd.Text != nil {
		item.Text = strings.TrimSpace(*upd.Text)
	}
	if upd.ImageUrl != nil {
		item.ImageUrl = strings.TrimSpace(*upd.ImageUrl)
	}
	if upd.Featured != nil {
		item.Featured = *upd.Featured
	}
	if upd.Order != nil {
		item.Order = *upd.Order
	}
	if upd.Approved != nil {
		item.Approved = *upd.Approved
	}
	item.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, errors.Wrap(err, "update review")
	}
	return item, nil
}

// Delete removes a review, returning ErrNotFound when the id is absent
func (s *ReviewStore) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete review")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Summary computes rating statistics over approved reviews
func (s *ReviewStore) Summary(ctx context.Context) (*ReviewSummary, error) {
	var ratings []int
	err := s.db.WithContext(ctx).Model(&domain.Review{}).
		Where("approved = ?", true).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, errors.Wrap(err, "query ratings")
	}
	summary := &ReviewSummary{Count: len(ratings), Distribution: map[int]int{}}
	for r := domain.MinRating; r <= domain.MaxRating; r++ {
		summary.Distribution[r] = 0
	}
	if len(ratings) == 0 {
		return summary, nil
	}
	data := make(stats.Float64Data, 0, len(ratings))
	for _, r := range ratings {
		data = append(data, float64(r))
		summary.Distribution[r]++
	}
	if summary.Average, err = data.Mean(); err != nil {
		return nil, errors.Wrap(err, "mean rating")
	}
	if summary.Median, err = data.Median(); err != nil {
		return nil, errors.Wrap(err, "median rating")
	}
	summary.Average, _ = stats.Round(summary.Average, 2)
	return summary, nil
}

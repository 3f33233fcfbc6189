package store

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/pkg/common"
)

var validate = validator.New()

type RegistrationInput struct {
	FullName string
	Email    string
	Phone    string
	Message  string
}

// RegistrationFilter narrows listing and export; zero values match everything
type RegistrationFilter struct {
	Q     string
	Since time.Time
	Until time.Time
}

type RegistrationStore struct {
	db *gorm.DB
}

func NewRegistrationStore(db *gorm.DB) *RegistrationStore {
	return &RegistrationStore{db: db}
}

func (s *RegistrationStore) Create(ctx context.Context, in RegistrationInput) (*domain.Registration, error) {
	name := strings.TrimSpace(in.FullName)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return nil, invalidf("fullName and email are required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, invalidf("email is not a valid address")
	}
	item := domain.Registration{
		ID:        common.UUIDint64(),
		FullName:  name,
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, errors.Wrap(err, "create registration")
	}
	return &item, nil
}

func (s *RegistrationStore) filtered(ctx context.Context, f RegistrationFilter) *gorm.DB {
	db := s.db.WithContext(ctx).Model(&domain.Registration{})
	if q := strings.TrimSpace(f.Q); q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("full_name ILIKE ? OR email ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			db = db.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", "%"+strings.ToLower(q)+"%", "%"+strings.ToLower(q)+"%")
		}
	}
	if !f.Since.IsZero() {
		db = db.Where("created_at >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		db = db.Where("created_at < ?", f.Until)
	}
	return db
}

// List returns one page of registrations, newest first, with the total match count
func (s *RegistrationStore) List(ctx context.Context, f RegistrationFilter, page, pageSize int) ([]domain.Registration, int64, error) {
	db := s.filtered(ctx, f)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count registrations")
	}
	var items []domain.Registration
	err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "query registrations")
	}
	return items, total, nil
}

// All returns every matching registration, newest first
func (s *RegistrationStore) All(ctx context.Context, f RegistrationFilter) ([]domain.Registration, error) {
	var items []domain.Registration
	if err := s.filtered(ctx, f).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "query registrations")
	}
	return items, nil
}

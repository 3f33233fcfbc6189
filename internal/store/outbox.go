package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/pkg/common"
)

// OutboxStore tracks outbound email delivery
type OutboxStore struct {
	db *gorm.DB
}

func NewOutboxStore(db *gorm.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Create(ctx context.Context, msg *domain.MailOutbox) error {
	if msg.ID == 0 {
		msg.ID = common.UUIDint64()
	}
	if msg.Status == "" {
		msg.Status = domain.MailStatusPending
	}
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = time.Now()
	return errors.Wrap(s.db.WithContext(ctx).Create(msg).Error, "create outbox message")
}

func (s *OutboxStore) MarkSent(ctx context.Context, id int64) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&domain.MailOutbox{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     domain.MailStatusSent,
		"attempts":   gorm.Expr("attempts + ?", 1),
		"last_error": "",
		"sent_at":    now,
		"updated_at": now,
	}).Error
	return errors.Wrap(err, "mark outbox message sent")
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, msg string) error {
	err := s.db.WithContext(ctx).Model(&domain.MailOutbox{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     domain.MailStatusFailed,
		"attempts":   gorm.Expr("attempts + ?", 1),
		"last_error": msg,
		"updated_at": time.Now(),
	}).Error
	return errors.Wrap(err, "mark outbox message failed")
}

// GetRetryable returns failed messages that have not used up their attempts
func (s *OutboxStore) GetRetryable(ctx context.Context, maxAttempts, limit int) ([]*domain.MailOutbox, error) {
	var items []*domain.MailOutbox
	err := s.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", domain.MailStatusFailed, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error
	return items, errors.Wrap(err, "query retryable outbox messages")
}

func (s *OutboxStore) ListByRegistration(ctx context.Context, regID int64) ([]domain.MailOutbox, error) {
	var items []domain.MailOutbox
	err := s.db.WithContext(ctx).Where("registration_id = ?", regID).Order("created_at ASC").Find(&items).Error
	return items, errors.Wrap(err, "query outbox messages")
}

package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/pkg/common"
)

// OperatorStore persists operator credentials and the operator action log
type OperatorStore struct {
	db *gorm.DB
}

func NewOperatorStore(db *gorm.DB) *OperatorStore {
	return &OperatorStore{db: db}
}

func (s *OperatorStore) GetByUsername(ctx context.Context, username string) (*domain.SysOpr, error) {
	var opr domain.SysOpr
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&opr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "query operator")
	}
	return &opr, nil
}

func (s *OperatorStore) Create(ctx context.Context, opr *domain.SysOpr) error {
	if opr.ID == 0 {
		opr.ID = common.UUIDint64()
	}
	if opr.Status == "" {
		opr.Status = domain.OprStatusEnabled
	}
	opr.CreatedAt = time.Now()
	opr.UpdatedAt = time.Now()
	return errors.Wrap(s.db.WithContext(ctx).Create(opr).Error, "create operator")
}

func (s *OperatorStore) TouchLogin(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Model(&domain.SysOpr{}).Where("id = ?", id).
		Update("last_login", time.Now()).Error
	return errors.Wrap(err, "update operator last login")
}

// AddLog records an operator action
func (s *OperatorStore) AddLog(ctx context.Context, name, ip, action, desc string) error {
	entry := domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   name,
		OprIp:     ip,
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}
	return errors.Wrap(s.db.WithContext(ctx).Create(&entry).Error, "create operator log")
}

func (s *OperatorStore) ListLogs(ctx context.Context, page, pageSize int) ([]domain.SysOprLog, int64, error) {
	db := s.db.WithContext(ctx).Model(&domain.SysOprLog{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count operator logs")
	}
	var items []domain.SysOprLog
	err := db.Order("opt_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "query operator logs")
	}
	return items, total, nil
}

// PurgeLogs deletes log entries older than the given number of days
func (s *OperatorStore) PurgeLogs(ctx context.Context, days int) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("opt_time < ?", time.Now().Add(-time.Hour*24*time.Duration(days))).
		Delete(&domain.SysOprLog{})
	return res.RowsAffected, errors.Wrap(res.Error, "purge operator logs")
}

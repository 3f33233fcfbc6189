package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/pkg/common"
)

type includedItemTemplate struct {
	icon        string
	description string
}

// legacyItemMapping upgrades the old flat benefit titles
var legacyItemMapping = map[string]includedItemTemplate{
	"Jacuzzi":           {icon: "🛁", description: "Za potpuno opuštanje i intiman wellness doživljaj."},
	"Sauna":             {icon: "🔥", description: "Sauna najvišeg kvaliteta, idealna za relaksaciju i detoks."},
	"Sezonski bazen":    {icon: "🏊", description: "Privatni sezonski bazen — savršen za uživanje tokom toplih dana."},
	"Opremljen prostor": {icon: "🏡", description: "Moderan enterijer, potpuna privatnost i maksimalan komfor."},
	"Wi-Fi":             {icon: "⚡"},
	"Privatnost":        {icon: "🔒"},
}

const defaultItemIcon = "✓"

// PriceInput fields of a new price record; Price is required
type PriceInput struct {
	Price                *float64
	Description          string
	IncludedItems        []string
	IncludedItemsDetails []domain.IncludedItem
	AdditionalBenefits   string
	Note                 string
}

// PriceUpdate partial price write; nil fields are left untouched
type PriceUpdate struct {
	Price                *float64
	Description          *string
	IncludedItems        *[]string
	IncludedItemsDetails *[]domain.IncludedItem
	AdditionalBenefits   *string
	Note                 *string
}

type PriceStore struct {
	db *gorm.DB
}

func NewPriceStore(db *gorm.DB) *PriceStore {
	return &PriceStore{db: db}
}

// Get returns the live price record or ErrNotFound. A legacy row is
// upgraded and persisted before it is returned.
func (s *PriceStore) Get(ctx context.Context) (*domain.Price, error) {
	var p domain.Price
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "query price")
	}
	if upgradeLegacyPrice(&p) {
		if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
			return nil, errors.Wrap(err, "save migrated price")
		}
		zap.L().Info("legacy price items migrated", zap.Int64("id", p.ID))
	}
	return &p, nil
}

// Create replaces every stored price with a single new record
func (s *PriceStore) Create(ctx context.Context, in PriceInput) (*domain.Price, error) {
	if in.Price == nil {
		return nil, invalidf("price is required")
	}
	if *in.Price < 0 {
		return nil, invalidf("price must not be negative")
	}
	p := domain.Price{
		ID:                   common.UUIDint64(),
		Price:                *in.Price,
		Description:          strings.TrimSpace(in.Description),
		IncludedItems:        datatypes.JSONSlice[string](common.TrimStrings(in.IncludedItems)),
		IncludedItemsDetails: datatypes.JSONSlice[domain.IncludedItem](cleanItems(in.IncludedItemsDetails)),
		AdditionalBenefits:   strings.TrimSpace(in.AdditionalBenefits),
		Note:                 strings.TrimSpace(in.Note),
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Price{}).Error; err != nil {
			return errors.Wrap(err, "clear prices")
		}
		return errors.Wrap(tx.Create(&p).Error, "create price")
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PriceStore) Update(ctx context.Context, id int64, upd PriceUpdate) (*domain.Price, error) {
	if upd.Price != nil && *upd.Price < 0 {
		return nil, invalidf("price must not be negative")
	}
	var p domain.Price
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "query price")
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Description != nil {
		p.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.IncludedItems != nil {
		p.IncludedItems = common.TrimStrings(*upd.IncludedItems)
	}
	if upd.IncludedItemsDetails != nil {
		p.IncludedItemsDetails = cleanItems(*upd.IncludedItemsDetails)
	}
	if upd.AdditionalBenefits != nil {
		p.AdditionalBenefits = strings.TrimSpace(*upd.AdditionalBenefits)
	}
	if upd.Note != nil {
		p.Note = strings.TrimSpace(*upd.Note)
	}
	p.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, errors.Wrap(err, "update price")
	}
	return &p, nil
}

// Delete removes the price record; an absent id is not an error
func (s *PriceStore) Delete(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Price{}).Error
	return errors.Wrap(err, "delete price")
}

// MigrateLegacy upgrades every legacy price row and returns how many changed.
// Running it again is a no-op.
func (s *PriceStore) MigrateLegacy(ctx context.Context) (int, error) {
	var prices []domain.Price
	if err := s.db.WithContext(ctx).Find(&prices).Error; err != nil {
		return 0, errors.Wrap(err, "query prices")
	}
	migrated := 0
	for i := range prices {
		if !upgradeLegacyPrice(&prices[i]) {
			continue
		}
		if err := s.db.WithContext(ctx).Save(&prices[i]).Error; err != nil {
			return migrated, errors.Wrapf(err, "save price %d", prices[i].ID)
		}
		migrated++
	}
	return migrated, nil
}

// upgradeLegacyPrice fills IncludedItemsDetails from the flat IncludedItems
// list when the detailed list is empty. It reports whether p changed.
func upgradeLegacyPrice(p *domain.Price) bool {
	if len(p.IncludedItemsDetails) > 0 || len(p.IncludedItems) == 0 {
		return false
	}
	details := make([]domain.IncludedItem, 0, len(p.IncludedItems))
	for _, title := range common.TrimStrings(p.IncludedItems) {
		tpl, ok := legacyItemMapping[title]
		if !ok {
			tpl = includedItemTemplate{icon: defaultItemIcon}
		}
		details = append(details, domain.IncludedItem{
			Icon:        tpl.icon,
			Title:       title,
			Description: tpl.description,
		})
	}
	if len(details) == 0 {
		return false
	}
	p.IncludedItemsDetails = details
	if strings.TrimSpace(p.AdditionalBenefits) == "" {
		p.AdditionalBenefits = domain.DefaultAdditionalBenefits
	}
	p.UpdatedAt = time.Now()
	return true
}

func cleanItems(items []domain.IncludedItem) []domain.IncludedItem {
	out := make([]domain.IncludedItem, 0, len(items))
	for _, it := range items {
		it.Title = strings.TrimSpace(it.Title)
		if it.Title == "" {
			continue
		}
		it.Icon = strings.TrimSpace(it.Icon)
		if it.Icon == "" {
			it.Icon = defaultItemIcon
		}
		it.Description = strings.TrimSpace(it.Description)
		out = append(out, it)
	}
	return out
}

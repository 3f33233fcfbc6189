package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func strPtr(s string) *string { return &s }

func urls(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://img.example.com/%d.jpg", i)
	}
	return out
}

func TestSiteConfigDefaults(t *testing.T) {
	s := NewSiteConfigStore(newTestDB(t))
	cfg, err := s.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "", cfg.HeroImageUrl)
	assert.Equal(t, domain.DefaultLogoURL, cfg.LogoUrl)
	assert.NotNil(t, cfg.FeaturedImages)
	assert.Empty(t, cfg.FeaturedImages)
	assert.NotNil(t, cfg.InstagramImages)

	// second read hits the same singleton
	again, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.CreatedAt.Unix(), again.CreatedAt.Unix())
}

func TestSiteConfigUpdateTruncates(t *testing.T) {
	db := newTestDB(t)
	s := NewSiteConfigStore(db)
	ctx := context.Background()

	featured := urls(9)
	insta := urls(12)
	cfg, err := s.Update(ctx, SiteConfigUpdate{
		HeroImageUrl:    strPtr("https://img.example.com/hero.jpg"),
		FeaturedImages:  &featured,
		InstagramImages: &insta,
	})
	require.NoError(t, err)
	assert.Equal(t, featured[:6], []string(cfg.FeaturedImages))
	assert.Len(t, cfg.InstagramImages, domain.MaxInstagramImages)

	stored, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, featured[:6], []string(stored.FeaturedImages))
	assert.Len(t, stored.InstagramImages, domain.MaxInstagramImages)
	assert.Equal(t, "https://img.example.com/hero.jpg", stored.HeroImageUrl)

	var count int64
	db.Model(&domain.SiteConfig{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSiteConfigPartialUpdate(t *testing.T) {
	s := NewSiteConfigStore(newTestDB(t))
	ctx := context.Background()

	featured := []string{"a", "b"}
	_, err := s.Update(ctx, SiteConfigUpdate{FeaturedImages: &featured, LogoUrl: strPtr("/logo.png")})
	require.NoError(t, err)

	cfg, err := s.Update(ctx, SiteConfigUpdate{LogoUrl: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, []string(cfg.FeaturedImages))
	assert.Equal(t, domain.DefaultLogoURL, cfg.LogoUrl)

	_, err = s.Update(ctx, SiteConfigUpdate{HeroImageUrl: strPtr("  ")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSiteConfigImport(t *testing.T) {
	s := NewSiteConfigStore(newTestDB(t))
	ctx := context.Background()

	cfg, err := s.Import(ctx, []string{"u1", "u2", "u3"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "u1", cfg.HeroImageUrl)
	assert.Equal(t, []string{"u1", "u2", "u3"}, []string(cfg.GalleryImageUrls))

	cfg, err = s.Import(ctx, []string{"u4"}, "", "/logo.svg")
	require.NoError(t, err)
	assert.Equal(t, "u1", cfg.HeroImageUrl)
	assert.Equal(t, "/logo.svg", cfg.LogoUrl)

	_, err = s.Import(ctx, nil, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCategoryRoundTripAndOrder(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.Create(ctx, CategoryInput{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	c1, err := s.Create(ctx, CategoryInput{Name: "Terasa", ImageUrls: []string{"a", "b", "c"}, Order: 2})
	require.NoError(t, err)
	_, err = s.Create(ctx, CategoryInput{Name: "Spavaća soba", Order: 1})
	require.NoError(t, err)

	got, err := s.Get(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, []string(got.ImageUrls))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Spavaća soba", list[0].Name)
	assert.Equal(t, "Terasa", list[1].Name)
	assert.NotNil(t, list[0].ImageUrls)
}

func TestCategoryUpdateDelete(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	c, err := s.Create(ctx, CategoryInput{Name: "Kuhinja"})
	require.NoError(t, err)

	order := 5
	imgs := []string{"x"}
	updated, err := s.Update(ctx, c.ID, CategoryUpdate{Order: &order, ImageUrls: &imgs})
	require.NoError(t, err)
	assert.Equal(t, "Kuhinja", updated.Name)
	assert.Equal(t, 5, updated.Order)
	assert.Equal(t, []string{"x"}, []string(updated.ImageUrls))

	_, err = s.Update(ctx, 42, CategoryUpdate{Order: &order})
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := s.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPriceCreateSingleton(t *testing.T) {
	db := newTestDB(t)
	s := NewPriceStore(db)
	ctx := context.Background()

	_, err := s.Create(ctx, PriceInput{Description: "missing price"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	neg := -1.0
	_, err = s.Create(ctx, PriceInput{Price: &neg})
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, v := range []float64{100, 150, 180} {
		v := v
		_, err := s.Create(ctx, PriceInput{Price: &v, Description: "noćenje"})
		require.NoError(t, err)

		var count int64
		db.Model(&domain.Price{}).Count(&count)
		assert.Equal(t, int64(1), count)
	}

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 180.0, p.Price)
}

func TestPriceGetEmpty(t *testing.T) {
	s := NewPriceStore(newTestDB(t))
	_, err := s.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPriceLegacyMigrationOnRead(t *testing.T) {
	db := newTestDB(t)
	s := NewPriceStore(db)
	ctx := context.Background()

	legacy := domain.Price{
		ID:            7,
		Price:         120,
		IncludedItems: datatypes.JSONSlice[string]{"Jacuzzi", "Parking mesto", " "},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&legacy).Error)

	p, err := s.Get(ctx)
	require.NoError(t, err)
	require.Len(t, p.IncludedItemsDetails, 2)
	assert.Equal(t, domain.IncludedItem{
		Icon:        "🛁",
		Title:       "Jacuzzi",
		Description: "Za potpuno opuštanje i intiman wellness doživljaj.",
	}, p.IncludedItemsDetails[0])
	assert.Equal(t, "✓", p.IncludedItemsDetails[1].Icon)
	assert.Equal(t, domain.DefaultAdditionalBenefits, p.AdditionalBenefits)

	// persisted: the raw row already carries the details
	var raw domain.Price
	require.NoError(t, db.First(&raw, 7).Error)
	assert.Len(t, raw.IncludedItemsDetails, 2)

	n, err := s.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPriceMigrateLegacy(t *testing.T) {
	db := newTestDB(t)
	s := NewPriceStore(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.Price{
		ID:                 1,
		IncludedItems:      datatypes.JSONSlice[string]{"Sauna", "Wi-Fi"},
		AdditionalBenefits: "Doručak",
	}).Error)

	n, err := s.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "🔥", p.IncludedItemsDetails[0].Icon)
	assert.Equal(t, "⚡", p.IncludedItemsDetails[1].Icon)
	assert.Empty(t, p.IncludedItemsDetails[1].Description)
	assert.Equal(t, "Doručak", p.AdditionalBenefits)

	n, err = s.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPriceUpdate(t *testing.T) {
	s := NewPriceStore(newTestDB(t))
	ctx := context.Background()
	v := 100.0
	p, err := s.Create(ctx, PriceInput{Price: &v, Note: "min 2 noći"})
	require.NoError(t, err)

	nv := 130.0
	items := []domain.IncludedItem{{Title: "Sauna"}, {Title: " "}}
	up, err := s.Update(ctx, p.ID, PriceUpdate{Price: &nv, IncludedItemsDetails: &items})
	require.NoError(t, err)
	assert.Equal(t, 130.0, up.Price)
	assert.Equal(t, "min 2 noći", up.Note)
	require.Len(t, up.IncludedItemsDetails, 1)
	assert.Equal(t, "✓", up.IncludedItemsDetails[0].Icon)

	_, err = s.Update(ctx, 99, PriceUpdate{Price: &nv})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, p.ID))
	_, err = s.Get(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewCreateValidation(t *testing.T) {
	db := newTestDB(t)
	s := NewReviewStore(db)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := s.Create(ctx, ReviewInput{AuthorName: "Ana", Rating: rating, Text: "ok"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	_, err := s.Create(ctx, ReviewInput{AuthorName: " ", Rating: 5, Text: "ok"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	var count int64
	db.Model(&domain.Review{}).Count(&count)
	assert.Equal(t, int64(0), count)

	r, err := s.Create(ctx, ReviewInput{AuthorName: "Ana", Rating: 5, Text: "Great stay"})
	require.NoError(t, err)
	assert.True(t, r.Approved)
	assert.False(t, r.Featured)
}

func TestReviewListFilters(t *testing.T) {
	s := NewReviewStore(newTestDB(t))
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 8; i++ {
		r, err := s.Create(ctx, ReviewInput{AuthorName: fmt.Sprintf("Gost %d", i), Rating: 4, Text: "lepo"})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	yes, no := true, false
	for _, id := range ids[:7] {
		_, err := s.Update(ctx, id, ReviewUpdate{Featured: &yes})
		require.NoError(t, err)
	}
	_, err := s.Update(ctx, ids[7], ReviewUpdate{Approved: &no})
	require.NoError(t, err)

	public, err := s.List(ctx, ReviewFilter{})
	require.NoError(t, err)
	assert.Len(t, public, 7)

	all, err := s.List(ctx, ReviewFilter{IncludeUnapproved: true})
	require.NoError(t, err)
	assert.Len(t, all, 8)

	featured, err := s.List(ctx, ReviewFilter{FeaturedOnly: true})
	require.NoError(t, err)
	assert.Len(t, featured, FeaturedReviewLimit)
}

func TestReviewUpdateDelete(t *testing.T) {
	s := NewReviewStore(newTestDB(t))
	ctx := context.Background()
	r, err := s.Create(ctx, ReviewInput{AuthorName: "Ana", Rating: 5, Text: "Great stay"})
	require.NoError(t, err)

	bad := 9
	_, err = s.Update(ctx, r.ID, ReviewUpdate{Rating: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	good := 3
	up, err := s.Update(ctx, r.ID, ReviewUpdate{Rating: &good})
	require.NoError(t, err)
	assert.Equal(t, 3, up.Rating)

	require.NoError(t, s.Delete(ctx, r.ID))
	assert.ErrorIs(t, s.Delete(ctx, r.ID), ErrNotFound)
}

func TestReviewSummary(t *testing.T) {
	s := NewReviewStore(newTestDB(t))
	ctx := context.Background()

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)

	for _, rating := range []int{5, 4, 5, 3} {
		_, err := s.Create(ctx, ReviewInput{AuthorName: "Gost", Rating: rating, Text: "tekst"})
		require.NoError(t, err)
	}
	sum, err = s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Count)
	assert.InDelta(t, 4.25, sum.Average, 0.001)
	assert.InDelta(t, 4.5, sum.Median, 0.001)
	assert.Equal(t, 2, sum.Distribution[5])
	assert.Equal(t, 0, sum.Distribution[1])
}

func TestRegistrationCreateAndList(t *testing.T) {
	s := NewRegistrationStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.Create(ctx, RegistrationInput{FullName: "Ana"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Create(ctx, RegistrationInput{FullName: "Ana", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Create(ctx, RegistrationInput{FullName: "Ana Jovanović", Email: "ana@example.com", Phone: "+381 60 000"})
	require.NoError(t, err)
	_, err = s.Create(ctx, RegistrationInput{FullName: "Marko Petrović", Email: "marko@example.com"})
	require.NoError(t, err)

	items, total, err := s.List(ctx, RegistrationFilter{Q: "marko"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Marko Petrović", items[0].FullName)

	all, err := s.All(ctx, RegistrationFilter{Since: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := s.All(ctx, RegistrationFilter{Until: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOperatorStoreAndLogs(t *testing.T) {
	s := NewOperatorStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.GetByUsername(ctx, "admin")
	assert.ErrorIs(t, err, ErrNotFound)

	opr := &domain.SysOpr{Username: "admin", Password: "hash"}
	require.NoError(t, s.Create(ctx, opr))
	assert.NotZero(t, opr.ID)
	require.NoError(t, s.TouchLogin(ctx, opr.ID))

	got, err := s.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.OprStatusEnabled, got.Status)
	assert.False(t, got.LastLogin.IsZero())

	require.NoError(t, s.AddLog(ctx, "admin", "127.0.0.1", "login", "operator login"))
	logs, total, err := s.ListLogs(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "login", logs[0].OptAction)

	n, err := s.PurgeLogs(ctx, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestOutboxRetryable(t *testing.T) {
	s := NewOutboxStore(newTestDB(t))
	ctx := context.Background()

	msg := &domain.MailOutbox{RegistrationID: 1, Kind: domain.MailKindVisitorAck, Recipient: "ana@example.com"}
	require.NoError(t, s.Create(ctx, msg))
	assert.Equal(t, domain.MailStatusPending, msg.Status)

	require.NoError(t, s.MarkFailed(ctx, msg.ID, "dial tcp: refused"))
	items, err := s.GetRetryable(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Attempts)

	require.NoError(t, s.MarkFailed(ctx, msg.ID, "again"))
	require.NoError(t, s.MarkFailed(ctx, msg.ID, "and again"))
	items, err = s.GetRetryable(ctx, 3, 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, s.MarkSent(ctx, msg.ID))
	list, err := s.ListByRegistration(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.MailStatusSent, list[0].Status)
	assert.NotNil(t, list[0].SentAt)
}

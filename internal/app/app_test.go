package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
	"gorm.io/datatypes"

	"github.com/riverhouse-belgrade/riverhouse/config"
	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/pkg/common"
)

type nopSender struct {
	mu   sync.Mutex
	sent int
}

func (s *nopSender) DialAndSend(m ...*gomail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent += len(m)
	return nil
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = "test.db"
	cfg.Web.Secret = "test-secret"

	a := NewApplication(cfg)
	a.OverrideDB(getDatabase(cfg.Database, t.TempDir()))
	require.NoError(t, a.MigrateDB(false))
	require.NoError(t, a.InitServices(context.Background(), &nopSender{}))
	t.Cleanup(a.Release)
	return a
}

func TestInitServices(t *testing.T) {
	a := newTestApp(t)

	assert.NotNil(t, a.Sessions())
	assert.NotNil(t, a.Prober())
	assert.NotNil(t, a.Places())
	assert.NotNil(t, a.Bus())
	assert.NotNil(t, a.Mailer())
	require.NotNil(t, a.Media())
	assert.Equal(t, "filesystem", a.Media().Name())
}

func TestCheckSiteConfigCreatesSingleton(t *testing.T) {
	a := newTestApp(t)
	a.checkSiteConfig()
	a.checkSiteConfig()

	var count int64
	require.NoError(t, a.DB().Model(&domain.SiteConfig{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMigratePrices(t *testing.T) {
	a := newTestApp(t)
	legacy := domain.Price{
		ID:            common.UUIDint64(),
		Price:         120,
		IncludedItems: datatypes.JSONSlice[string]{"Jacuzzi", "Sauna"},
		CreatedAt:     time.Now(),
	}
	require.NoError(t, a.DB().Create(&legacy).Error)

	n, err := a.MigratePrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = a.MigratePrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSchedClearExpireData(t *testing.T) {
	a := newTestApp(t)
	old := domain.SysOprLog{ID: common.UUIDint64(), OprName: "admin", OptAction: "login",
		OptTime: time.Now().Add(-400 * 24 * time.Hour)}
	recent := domain.SysOprLog{ID: common.UUIDint64(), OprName: "admin", OptAction: "login",
		OptTime: time.Now()}
	require.NoError(t, a.DB().Create(&old).Error)
	require.NoError(t, a.DB().Create(&recent).Error)

	a.SchedClearExpireData()

	var count int64
	require.NoError(t, a.DB().Model(&domain.SysOprLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSystemMonitorSample(t *testing.T) {
	a := newTestApp(t)
	a.SchedSystemMonitorTask()
	st := a.SystemStatus()
	assert.False(t, st.SampledAt.IsZero())
	assert.False(t, st.StartedAt.IsZero())
}

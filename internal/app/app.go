package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/riverhouse-belgrade/riverhouse/config"
	"github.com/riverhouse-belgrade/riverhouse/internal/auth"
	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/internal/media"
	"github.com/riverhouse-belgrade/riverhouse/internal/notify"
	"github.com/riverhouse-belgrade/riverhouse/internal/places"
	"github.com/riverhouse-belgrade/riverhouse/internal/probe"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	sessions  *auth.SessionManager
	gateway   media.Gateway
	prober    *probe.Prober
	places    *places.Client
	bus       EventBus.Bus
	mailer    *notify.Mailer

	statusMu sync.RWMutex
	status   SystemStatus
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ SessionProvider   = (*Application)(nil)
	_ MediaProvider     = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Sessions() *auth.SessionManager {
	return a.sessions
}

func (a *Application) Media() media.Gateway {
	return a.gateway
}

func (a *Application) Prober() *probe.Prober {
	return a.prober
}

func (a *Application) Places() *places.Client {
	return a.places
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) Mailer() *notify.Mailer {
	return a.mailer
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.GetDataDir())
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.checkSiteConfig()
	a.checkPrices()

	if err := a.InitServices(context.Background(), nil); err != nil {
		zap.S().Errorf("service initialization failed: %v", err)
	}

	a.initJob()
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var (
		log *zap.Logger
		err error
	)
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		log = zap.New(core, zap.AddCaller())
	} else {
		log, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(log)
}

// InitServices wires the services that sit on top of the database. A nil
// sender delivers mail over SMTP.
func (a *Application) InitServices(ctx context.Context, sender notify.Sender) error {
	cfg := a.appConfig

	a.sessions = auth.NewSessionManager(
		store.NewOperatorStore(a.gormDB),
		cfg.Web.Secret,
		auth.Bootstrap{Username: cfg.Admin.DefaultUser, Password: cfg.Admin.DefaultPass},
	)
	if cfg.Web.Secret == "" {
		zap.L().Warn("ADMIN_JWT_SECRET is not set, admin login is disabled")
	}

	gateway, err := media.NewGateway(ctx, cfg)
	if err != nil {
		zap.L().Warn("image hosting unavailable",
			zap.String("provider", cfg.Media.Provider), zap.Error(err))
	} else {
		a.gateway = gateway
		zap.L().Info("image hosting ready", zap.String("provider", gateway.Name()))
	}

	a.prober = probe.NewProber(probe.DefaultTimeout)
	a.places = places.NewClient(cfg.Places, cfg.PlacesCacheTTL())
	a.bus = EventBus.New()

	if sender == nil {
		sender = notify.NewSMTPSender(cfg.Mail)
	}
	a.mailer, err = notify.NewMailer(cfg.Mail, sender, store.NewOutboxStore(a.gormDB), cfg.Jobs.OutboxAttempts)
	if err != nil {
		return err
	}
	return a.mailer.Subscribe(a.bus, true)
}

func getDatabase(cfg config.DBConfig, datadir string) *gorm.DB {
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dbfile := cfg.Name
		if dbfile == "" {
			dbfile = "riverhouse.db"
		}
		if dbfile != ":memory:" && !filepath.IsAbs(dbfile) {
			dbfile = path.Join(datadir, dbfile)
		}
		dialector = sqlite.Open(dbfile)
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		zap.S().Fatalf("database connection failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Fatalf("database handle error: %v", err)
	}
	if cfg.Type == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// MigratePrices upgrades legacy price rows in place
func (a *Application) MigratePrices(ctx context.Context) (int, error) {
	return store.NewPriceStore(a.gormDB).MigrateLegacy(ctx)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.bus != nil {
		a.bus.WaitAsync()
	}
	if a.mailer != nil {
		a.mailer.Release()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}

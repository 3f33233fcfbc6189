package app

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/riverhouse-belgrade/riverhouse/config"
	"github.com/riverhouse-belgrade/riverhouse/internal/auth"
	"github.com/riverhouse-belgrade/riverhouse/internal/media"
	"github.com/riverhouse-belgrade/riverhouse/internal/notify"
	"github.com/riverhouse-belgrade/riverhouse/internal/places"
	"github.com/riverhouse-belgrade/riverhouse/internal/probe"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// SessionProvider provides the admin session issuer/verifier
type SessionProvider interface {
	Sessions() *auth.SessionManager
}

// MediaProvider provides the image hosting gateway.
// Media returns nil when the configured provider could not be initialized.
type MediaProvider interface {
	Media() media.Gateway
}

// ProbeProvider provides the image reachability prober
type ProbeProvider interface {
	Prober() *probe.Prober
}

// PlacesProvider provides the Google reviews client
type PlacesProvider interface {
	Places() *places.Client
}

// EventProvider provides the in-process event bus
type EventProvider interface {
	Bus() EventBus.Bus
}

// MailerProvider provides the transactional mailer
type MailerProvider interface {
	Mailer() *notify.Mailer
}

// StatusProvider provides the latest host/process sample
type StatusProvider interface {
	SystemStatus() SystemStatus
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	SessionProvider
	MediaProvider
	ProbeProvider
	PlacesProvider
	EventProvider
	MailerProvider
	StatusProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// MigratePrices upgrades legacy price records and returns how many changed
	MigratePrices(ctx context.Context) (int, error)
}

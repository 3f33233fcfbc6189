package config

import (
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	Secret       string   `yaml:"secret"`
	SecureCookie bool     `yaml:"secure_cookie"`
	CorsOrigins  []string `yaml:"cors_origins"`
	LoginRate    int      `yaml:"login_rate"`  // login attempts per minute per IP, 0 disables
	PublicRate   int      `yaml:"public_rate"` // public POSTs per minute per IP, 0 disables
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// AdminConfig bootstrap operator credentials
type AdminConfig struct {
	DefaultUser string `yaml:"default_user"`
	DefaultPass string `yaml:"default_pass"`
}

// MediaConfig image hosting configuration
type MediaConfig struct {
	Provider     string `yaml:"provider"` // cloudinary | s3 | gcs | filesystem
	UploadFolder string `yaml:"upload_folder"`

	CloudName string `yaml:"cloud_name"`
	ApiKey    string `yaml:"api_key"`
	ApiSecret string `yaml:"api_secret"`

	Bucket      string `yaml:"bucket"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	PublicURL   string `yaml:"public_url"`
	Credentials string `yaml:"credentials"` // GCS service account json file

	FsRoot      string `yaml:"fs_root"`
	FsURLPrefix string `yaml:"fs_url_prefix"`
}

// MailConfig SMTP configuration
type MailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Passwd     string `yaml:"passwd"`
	From       string `yaml:"from"`
	AdminEmail string `yaml:"admin_email"`
	SiteURL    string `yaml:"site_url"`
}

// PlacesConfig Google Places configuration
type PlacesConfig struct {
	PlaceID  string `yaml:"place_id"`
	ApiKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	CacheTTL int    `yaml:"cache_ttl"` // seconds
}

// JobsConfig cron expressions for background jobs
type JobsConfig struct {
	OutboxRetry    string `yaml:"outbox_retry"`
	OutboxAttempts int    `yaml:"outbox_attempts"`
	OprLogMaxDays  int    `yaml:"oprlog_max_days"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Admin    AdminConfig  `yaml:"admin"`
	Media    MediaConfig  `yaml:"media"`
	Mail     MailConfig   `yaml:"mail"`
	Places   PlacesConfig `yaml:"places"`
	Jobs     JobsConfig   `yaml:"jobs"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetMediaDir() string {
	if c.Media.FsRoot != "" {
		return c.Media.FsRoot
	}
	return path.Join(c.System.Workdir, "media")
}

// PlacesCacheTTL returns the Google reviews cache lifetime
func (c *AppConfig) PlacesCacheTTL() time.Duration {
	if c.Places.CacheTTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.Places.CacheTTL) * time.Second
}

// InitDirs creates the work directories
func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
	if c.Media.Provider == "filesystem" {
		_ = os.MkdirAll(c.GetMediaDir(), 0o755)
	}
}

// DefaultAppConfig returns the built-in configuration
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "RiverHouse",
			Location: "Europe/Belgrade",
			Workdir:  "/var/riverhouse",
		},
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        3000,
			CorsOrigins: []string{"*"},
			LoginRate:   10,
			PublicRate:  20,
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "riverhouse",
			User:     "postgres",
			Passwd:   "postgres",
			MaxConn:  50,
			IdleConn: 5,
		},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "/var/riverhouse/logs/riverhouse.log",
		},
		Media: MediaConfig{
			Provider:     "filesystem",
			UploadFolder: "river-house-belgrade",
			Region:       "eu-central-1",
			FsURLPrefix:  "/media",
		},
		Mail: MailConfig{
			Port:       587,
			From:       "River House Belgrade <noreply@riverhouse.rs>",
			AdminEmail: "info@riverhouse.rs",
			SiteURL:    "https://riverhouse.rs",
		},
		Places: PlacesConfig{
			Endpoint: "https://maps.googleapis.com/maps/api/place/details/json",
			CacheTTL: 3600,
		},
		Jobs: JobsConfig{
			OutboxRetry:    "@every 5m",
			OutboxAttempts: 3,
			OprLogMaxDays:  365,
		},
	}
}

// LoadConfig reads the yaml file at cfile (if present) over the defaults
// and applies environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	setEnvValue("RIVERHOUSE_WORKDIR", &c.System.Workdir)
	setEnvValue("RIVERHOUSE_LOCATION", &c.System.Location)
	setEnvBoolValue("RIVERHOUSE_DEBUG", &c.System.Debug)

	setEnvValue("RIVERHOUSE_WEB_HOST", &c.Web.Host)
	setEnvIntValue("RIVERHOUSE_WEB_PORT", &c.Web.Port)
	setEnvValue("RIVERHOUSE_WEB_SECRET", &c.Web.Secret)
	setEnvValue("ADMIN_JWT_SECRET", &c.Web.Secret)
	setEnvBoolValue("RIVERHOUSE_SECURE_COOKIE", &c.Web.SecureCookie)
	setEnvIntValue("RIVERHOUSE_LOGIN_RATE", &c.Web.LoginRate)
	setEnvIntValue("RIVERHOUSE_PUBLIC_RATE", &c.Web.PublicRate)
	if v := os.Getenv("RIVERHOUSE_CORS_ORIGINS"); v != "" {
		c.Web.CorsOrigins = strings.Split(v, ",")
	}

	setEnvValue("RIVERHOUSE_DB_TYPE", &c.Database.Type)
	setEnvValue("RIVERHOUSE_DB_HOST", &c.Database.Host)
	setEnvIntValue("RIVERHOUSE_DB_PORT", &c.Database.Port)
	setEnvValue("RIVERHOUSE_DB_NAME", &c.Database.Name)
	setEnvValue("RIVERHOUSE_DB_USER", &c.Database.User)
	setEnvValue("RIVERHOUSE_DB_PWD", &c.Database.Passwd)
	setEnvBoolValue("RIVERHOUSE_DB_DEBUG", &c.Database.Debug)

	setEnvValue("RIVERHOUSE_LOGGER_MODE", &c.Logger.Mode)
	setEnvBoolValue("RIVERHOUSE_LOGGER_FILE_ENABLE", &c.Logger.FileEnable)
	setEnvValue("RIVERHOUSE_LOGGER_FILENAME", &c.Logger.Filename)

	setEnvValue("ADMIN_DEFAULT_USER", &c.Admin.DefaultUser)
	setEnvValue("ADMIN_DEFAULT_PASS", &c.Admin.DefaultPass)

	setEnvValue("RIVERHOUSE_MEDIA_PROVIDER", &c.Media.Provider)
	setEnvValue("CLOUDINARY_UPLOAD_FOLDER", &c.Media.UploadFolder)
	setEnvValue("CLOUDINARY_CLOUD_NAME", &c.Media.CloudName)
	setEnvValue("CLOUDINARY_API_KEY", &c.Media.ApiKey)
	setEnvValue("CLOUDINARY_API_SECRET", &c.Media.ApiSecret)
	setEnvValue("RIVERHOUSE_MEDIA_BUCKET", &c.Media.Bucket)
	setEnvValue("RIVERHOUSE_MEDIA_REGION", &c.Media.Region)
	setEnvValue("RIVERHOUSE_MEDIA_ENDPOINT", &c.Media.Endpoint)
	setEnvValue("RIVERHOUSE_MEDIA_ACCESS_KEY", &c.Media.AccessKey)
	setEnvValue("RIVERHOUSE_MEDIA_SECRET_KEY", &c.Media.SecretKey)
	setEnvValue("RIVERHOUSE_MEDIA_PUBLIC_URL", &c.Media.PublicURL)
	setEnvValue("RIVERHOUSE_MEDIA_CREDENTIALS", &c.Media.Credentials)
	setEnvValue("RIVERHOUSE_MEDIA_FS_ROOT", &c.Media.FsRoot)

	setEnvBoolValue("RIVERHOUSE_MAIL_ENABLED", &c.Mail.Enabled)
	setEnvValue("RIVERHOUSE_SMTP_HOST", &c.Mail.Host)
	setEnvIntValue("RIVERHOUSE_SMTP_PORT", &c.Mail.Port)
	setEnvValue("RIVERHOUSE_SMTP_USER", &c.Mail.User)
	setEnvValue("RIVERHOUSE_SMTP_PWD", &c.Mail.Passwd)
	setEnvValue("RIVERHOUSE_MAIL_FROM", &c.Mail.From)
	setEnvValue("ADMIN_EMAIL", &c.Mail.AdminEmail)

	setEnvValue("GOOGLE_PLACE_ID", &c.Places.PlaceID)
	setEnvValue("GOOGLE_PLACES_API_KEY", &c.Places.ApiKey)
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mailsig/sigsync/domain"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	Sync        SyncConfig
	Filter      FilterConfig
	Template    TemplateConfig
	Branding    BrandingConfig
	Directory   DirectoryConfig
	Mailbox     MailboxConfig
	Credential  CredentialConfig
	History     HistoryConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Schedule    ScheduleConfig
	HTTP        HTTPConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

// SyncConfig controls batching, rate limiting and retry for the pipeline.
type SyncConfig struct {
	Domain        string
	BatchSize     int
	BatchDelay    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Concurrency   int
	DryRun        bool
}

// Validate checks the run preconditions. It is called at run start, not at
// load time, so that diagnostic commands work without a full configuration.
func (c SyncConfig) Validate() error {
	if strings.TrimSpace(c.Domain) == "" {
		return domain.ErrMissingDomain
	}
	if c.BatchSize <= 0 {
		return domain.ErrInvalidBatchSize
	}
	return nil
}

type FilterConfig struct {
	IncludedUsers    []string
	ExcludedUsers    []string
	ExcludedOrgUnits []string
	IncludeArchived  bool
	IncludeSuspended bool
}

// Rules builds the domain rule set for the configured sync domain.
func (c FilterConfig) Rules(syncDomain string) domain.FilterRules {
	return domain.NewFilterRules(
		syncDomain,
		c.IncludedUsers,
		c.ExcludedUsers,
		c.ExcludedOrgUnits,
		c.IncludeArchived,
		c.IncludeSuspended,
	)
}

type TemplateConfig struct {
	ID        string
	Dir       string
	RemoteURL string
	CacheTTL  time.Duration
}

// BrandingConfig holds organization-wide values substituted into every signature.
type BrandingConfig struct {
	CompanyName string
	Website     string
	LogoURL     string
	PrimaryFont string
	AccentColor string
}

type DirectoryConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type MailboxConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type CredentialConfig struct {
	Issuer         string
	PrivateKeyPath string
	TokenURL       string
	Scope          string
	Timeout        time.Duration
}

// HistoryConfig selects where run reports persist. Backend applies to serve
// mode only; the one-shot CLI commands always use the local bolt file.
// Retention prunes bolt reports older than the given age when the store
// opens; zero keeps everything.
type HistoryConfig struct {
	Backend   string // "postgres" or "bolt"
	Path      string
	Limit     int
	Retention time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type ScheduleConfig struct {
	Enabled  bool
	Interval time.Duration
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	AdminToken   string
}

type ContextConfig struct {
	RunTimeout      time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "sigsync"),
		Environment: getString("APP_ENV", "development"),
		Sync: SyncConfig{
			Domain:        getString("SYNC_DOMAIN", ""),
			BatchSize:     getInt("SYNC_BATCH_SIZE", 10),
			BatchDelay:    getDuration("SYNC_BATCH_DELAY", 2*time.Second),
			RetryAttempts: getInt("SYNC_RETRY_ATTEMPTS", 3),
			RetryDelay:    getDuration("SYNC_RETRY_DELAY", 5*time.Second),
			Concurrency:   getInt("SYNC_CONCURRENCY", 4),
			DryRun:        getBool("SYNC_DRY_RUN", false),
		},
		Filter: FilterConfig{
			IncludedUsers:    getStringSlice("FILTER_INCLUDED_USERS"),
			ExcludedUsers:    getStringSlice("FILTER_EXCLUDED_USERS"),
			ExcludedOrgUnits: getStringSlice("FILTER_EXCLUDED_ORG_UNITS"),
			IncludeArchived:  getBool("FILTER_INCLUDE_ARCHIVED", false),
			IncludeSuspended: getBool("FILTER_INCLUDE_SUSPENDED", false),
		},
		Template: TemplateConfig{
			ID:        getString("TEMPLATE_ID", "default"),
			Dir:       getString("TEMPLATE_DIR", "./templates"),
			RemoteURL: getString("TEMPLATE_REMOTE_URL", ""),
			CacheTTL:  getDuration("TEMPLATE_CACHE_TTL", time.Hour),
		},
		Branding: BrandingConfig{
			CompanyName: getString("BRANDING_COMPANY_NAME", ""),
			Website:     getString("BRANDING_WEBSITE", ""),
			LogoURL:     getString("BRANDING_LOGO_URL", ""),
			PrimaryFont: getString("BRANDING_PRIMARY_FONT", "Arial, sans-serif"),
			AccentColor: getString("BRANDING_ACCENT_COLOR", "#1a1a1a"),
		},
		Directory: DirectoryConfig{
			BaseURL: getString("DIRECTORY_BASE_URL", ""),
			Token:   os.Getenv("DIRECTORY_TOKEN"),
			Timeout: getDuration("DIRECTORY_TIMEOUT", 15*time.Second),
		},
		Mailbox: MailboxConfig{
			BaseURL: getString("MAILBOX_BASE_URL", ""),
			Token:   os.Getenv("MAILBOX_TOKEN"),
			Timeout: getDuration("MAILBOX_TIMEOUT", 15*time.Second),
		},
		Credential: CredentialConfig{
			Issuer:         getString("CREDENTIAL_ISSUER", ""),
			PrivateKeyPath: getString("CREDENTIAL_PRIVATE_KEY_PATH", ""),
			TokenURL:       getString("CREDENTIAL_TOKEN_URL", ""),
			Scope:          getString("CREDENTIAL_SCOPE", "mailbox.settings.write"),
			Timeout:        getDuration("CREDENTIAL_TIMEOUT", 10*time.Second),
		},
		History: HistoryConfig{
			Backend:   getString("HISTORY_BACKEND", "postgres"),
			Path:      getString("HISTORY_BOLT_PATH", "./data/history.db"),
			Limit:     getInt("HISTORY_LIMIT", 20),
			Retention: getDuration("HISTORY_RETENTION", 0),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "sigsync_db"),
			User:            getString("DB_USER", "sigsync_user"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Schedule: ScheduleConfig{
			Enabled:  getBool("SCHEDULE_ENABLED", true),
			Interval: getDuration("SCHEDULE_INTERVAL", time.Hour),
		},
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			AdminToken:   os.Getenv("SERVER_ADMIN_TOKEN"),
		},
		Context: ContextConfig{
			RunTimeout:      getDuration("RUN_TIMEOUT", 30*time.Minute),
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getStringSlice(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

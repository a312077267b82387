package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Notify     NotifyConfig     `mapstructure:"notify"`
}

type AppConfig struct {
	Name      string `mapstructure:"name"`
	Env       string `mapstructure:"env"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// UpstreamConfig tunes the OData client. RetryCount is the number of retries
// after the first attempt.
type UpstreamConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Language       string        `mapstructure:"language"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryCount     int           `mapstructure:"retry_count"`
	RetryWait      time.Duration `mapstructure:"retry_wait"`
	RetryMaxWait   time.Duration `mapstructure:"retry_max_wait"`
	PageSize       int           `mapstructure:"page_size"`
	RecentCacheTTL time.Duration `mapstructure:"recent_cache_ttl"`
}

type SyncConfig struct {
	IntervalHours         int           `mapstructure:"interval_hours"`
	DiscoveryCronHour     int           `mapstructure:"discovery_cron_hour"`
	DiscoveryLookbackDays int           `mapstructure:"discovery_lookback_days"`
	MinSessionID          int64         `mapstructure:"min_session_id"`
	VoteDelay             time.Duration `mapstructure:"vote_delay"`
	SessionDelay          time.Duration `mapstructure:"session_delay"`
	ReferenceCron         string        `mapstructure:"reference_cron"`
	CommitteeCron         string        `mapstructure:"committee_cron"`
	VotingCron            string        `mapstructure:"voting_cron"`
	BusinessCacheCron     string        `mapstructure:"business_cache_cron"`
	BusinessCacheYears    []string      `mapstructure:"business_cache_years"`
}

type PredictionConfig struct {
	ModelVersion string        `mapstructure:"model_version"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type NotifyConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	From         string `mapstructure:"from"`
	UseTLS       bool   `mapstructure:"use_tls"`
}

// IntervalSpec renders the business/schedule sync cadence as a cron "@every" spec.
func (s SyncConfig) IntervalSpec() string {
	return fmt.Sprintf("@every %dh", s.IntervalHours)
}

// DiscoverySpec runs the monitoring discovery once a day at DiscoveryCronHour.
func (s SyncConfig) DiscoverySpec() string {
	return fmt.Sprintf("0 %d * * *", s.DiscoveryCronHour)
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.config")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || isMissingFile(err) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("upstream", cfg.Upstream.BaseURL),
	)

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url is required")
	}
	if c.Sync.IntervalHours <= 0 {
		return fmt.Errorf("sync.interval_hours must be positive, got %d", c.Sync.IntervalHours)
	}
	if c.Sync.DiscoveryCronHour < 0 || c.Sync.DiscoveryCronHour > 23 {
		return fmt.Errorf("sync.discovery_cron_hour must be within 0..23, got %d", c.Sync.DiscoveryCronHour)
	}
	if c.Prediction.ModelVersion == "" {
		return errors.New("prediction.model_version is required")
	}
	return nil
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

// Defaults returns the configuration used when neither file nor env override anything.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "parlmonitor")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/parlmonitor.sqlite?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")

	v.SetDefault("upstream.base_url", "https://ws.parlament.ch/odata.svc")
	v.SetDefault("upstream.language", "DE")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.retry_count", 3)
	v.SetDefault("upstream.retry_wait", 2*time.Second)
	v.SetDefault("upstream.retry_max_wait", 16*time.Second)
	v.SetDefault("upstream.page_size", 500)
	v.SetDefault("upstream.recent_cache_ttl", 6*time.Hour)

	v.SetDefault("sync.interval_hours", 6)
	v.SetDefault("sync.discovery_cron_hour", 7)
	v.SetDefault("sync.discovery_lookback_days", 2)
	v.SetDefault("sync.min_session_id", 5100)
	v.SetDefault("sync.vote_delay", 500*time.Millisecond)
	v.SetDefault("sync.session_delay", time.Second)
	v.SetDefault("sync.reference_cron", "0 3 1 * *")
	v.SetDefault("sync.committee_cron", "30 3 1 * *")
	v.SetDefault("sync.voting_cron", "0 4 * * 0")
	v.SetDefault("sync.business_cache_cron", "0 2 * * *")
	v.SetDefault("sync.business_cache_years", []string{})

	v.SetDefault("prediction.model_version", "statistical_v1")
	v.SetDefault("prediction.cache_ttl", 24*time.Hour)

	v.SetDefault("notify.smtp_port", 587)
	v.SetDefault("notify.use_tls", true)
}

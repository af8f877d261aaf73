package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"presyo-tracker/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Source    SourceConfig    `mapstructure:"source"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Output    OutputConfig    `mapstructure:"output"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the observation
// history. Optional: without a DSN the pipeline runs on the current
// snapshot only.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SourceConfig describes the monitoring site. The category and region
// mappings are configuration, not constants: the upstream site renames
// paths and parameters without notice.
type SourceConfig struct {
	BaseURL        string            `mapstructure:"base_url"`
	RegionQueryKey string            `mapstructure:"region_query_key"`
	UserAgent      string            `mapstructure:"user_agent"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	RetryBackoff   time.Duration     `mapstructure:"retry_backoff"`
	PoliteDelay    time.Duration     `mapstructure:"polite_delay"`
	CategoryPaths  map[string]string `mapstructure:"category_paths"`
	RegionParams   map[string]string `mapstructure:"region_params"`
}

// ScrapeConfig bounds extraction concurrency.
type ScrapeConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// AnalyticsConfig tunes the time-series metrics.
type AnalyticsConfig struct {
	ShortWindow      int `mapstructure:"short_window"`
	LongWindow       int `mapstructure:"long_window"`
	VolatilityWindow int `mapstructure:"volatility_window"`
	MinSamples       int `mapstructure:"min_samples"`
	TrendDays        int `mapstructure:"trend_days"`
	TopMovers        int `mapstructure:"top_movers"`
}

// OutputConfig sets where published documents land.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// SchedulerConfig governs the watch-mode cadence.
type SchedulerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
	LockKey       int64         `mapstructure:"lock_key"`
}

// AlertingConfig defines mover alert thresholds and routing.
type AlertingConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	ThresholdPct float64        `mapstructure:"threshold_pct"`
	Telegram     TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig holds bot credentials for alert delivery.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRESYOTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "presyotracker")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("source.base_url", "http://www.bantaypresyo.da.gov.ph")
	v.SetDefault("source.region_query_key", "rid")
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("source.request_timeout", "30s")
	v.SetDefault("source.retry_backoff", "2s")
	v.SetDefault("source.polite_delay", "1500ms")

	v.SetDefault("scrape.concurrency", 6)

	v.SetDefault("analytics.short_window", 7)
	v.SetDefault("analytics.long_window", 30)
	v.SetDefault("analytics.volatility_window", 30)
	v.SetDefault("analytics.min_samples", 5)
	v.SetDefault("analytics.trend_days", 30)
	v.SetDefault("analytics.top_movers", 10)

	v.SetDefault("output.dir", "output/data")

	v.SetDefault("scheduler.interval", "6h")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.startup_delay", "0s")
	v.SetDefault("scheduler.lock_key", int64(0x70726573))

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.threshold_pct", 10.0)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if c.Source.RegionQueryKey == "" {
		return fmt.Errorf("source.region_query_key is required")
	}
	if c.Source.RequestTimeout <= 0 {
		return fmt.Errorf("source.request_timeout must be greater than zero")
	}
	if c.Scrape.Concurrency <= 0 {
		return fmt.Errorf("scrape.concurrency must be greater than zero")
	}
	if c.Analytics.ShortWindow <= 0 || c.Analytics.LongWindow <= 0 {
		return fmt.Errorf("analytics windows must be greater than zero")
	}
	if c.Analytics.ShortWindow >= c.Analytics.LongWindow {
		return fmt.Errorf("analytics.short_window must be smaller than analytics.long_window")
	}
	if c.Analytics.MinSamples <= 0 {
		return fmt.Errorf("analytics.min_samples must be greater than zero")
	}
	if c.Analytics.TrendDays <= 0 {
		return fmt.Errorf("analytics.trend_days must be greater than zero")
	}
	if c.Analytics.TopMovers <= 0 {
		return fmt.Errorf("analytics.top_movers must be greater than zero")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Alerting.ThresholdPct < 0 {
		return fmt.Errorf("alerting.threshold_pct cannot be negative")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required when telegram is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}

package config

import (
	"strings"
	"time"

	"github.com/flexprice/console/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache" validate:"required"`
	Pricing    PricingConfig    `mapstructure:"pricing" validate:"required"`
	Invoice    InvoiceConfig    `mapstructure:"invoice" validate:"required"`
	EventBus   EventBusConfig   `mapstructure:"event_bus" validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level" validate:"required"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Type    string        `mapstructure:"type"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// PricingConfig holds the knobs of the price resolution rules.
type PricingConfig struct {
	DefaultCurrency string `mapstructure:"default_currency" validate:"required,len=3"`
	// FixedDiscountProration selects how a fixed discount shows on the
	// monthly-equivalent view of a yearly price.
	FixedDiscountProration types.FixedDiscountProrationPolicy `mapstructure:"fixed_discount_proration" validate:"required"`
}

type InvoiceConfig struct {
	DefaultDueDays   int `mapstructure:"default_due_days" validate:"min=0"`
	RecurringWorkers int `mapstructure:"recurring_workers" validate:"min=1"`
}

type EventBusConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Topic      string `mapstructure:"topic" validate:"required"`
	BufferSize int64  `mapstructure:"buffer_size" validate:"min=0"`
}

// NewConfig loads the configuration from defaults, an optional config.yaml and
// CONSOLE_ prefixed environment variables, in increasing priority.
func NewConfig() (*Configuration, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// GetDefaultConfig returns the configuration built from defaults only.
func GetDefaultConfig() *Configuration {
	v := viper.New()
	setDefaults(v)

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Validate checks the configuration for required and well formed values.
func (c *Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if err := c.Pricing.FixedDiscountProration.Validate(); err != nil {
		return err
	}
	return types.ValidateCurrencyCode(c.Pricing.DefaultCurrency)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))

	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("logging.fluentd_enabled", false)
	v.SetDefault("logging.fluentd_host", "")
	v.SetDefault("logging.fluentd_port", 24224)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("pricing.default_currency", "usd")
	v.SetDefault("pricing.fixed_discount_proration", string(types.FixedDiscountProrationProrateMonthly))

	v.SetDefault("invoice.default_due_days", 30)
	v.SetDefault("invoice.recurring_workers", 4)

	v.SetDefault("event_bus.enabled", true)
	v.SetDefault("event_bus.topic", "console.events")
	v.SetDefault("event_bus.buffer_size", 256)
}

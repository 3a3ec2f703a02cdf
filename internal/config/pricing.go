package config

import (
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// CommissionConfig is the platform cut for one side of a transaction.
// A nil or zero percentage disables the commission.
type CommissionConfig struct {
	Percentage *float64 `mapstructure:"percentage"`
}

// PricingConfig is read from pricing.yml and may change while running.
type PricingConfig struct {
	ProviderCommission CommissionConfig `mapstructure:"provider_commission"`
	CustomerCommission CommissionConfig `mapstructure:"customer_commission"`
	// Timezone is the zone booking dates are counted in.
	Timezone string `mapstructure:"timezone"`

	location *time.Location
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		ProviderCommission: CommissionConfig{Percentage: floatPtr(10)},
		Timezone:           "UTC",
	}
}

func floatPtr(v float64) *float64 { return &v }

// Location is the zone for Timezone, falling back to UTC. Configs handed out
// by a PricingConfigHolder carry it already resolved.
func (c PricingConfig) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func (c PricingConfig) withLocation() PricingConfig {
	c.location = c.Location()
	return c
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
	log     *zap.Logger
}

func NewPricingConfigHolder(appCfg Config, log *zap.Logger) (*PricingConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	for _, path := range appCfg.PricingConfigPaths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("MARKETPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	v.SetDefault("pricing.provider_commission.percentage", *defaults.ProviderCommission.Percentage)
	v.SetDefault("pricing.timezone", defaults.Timezone)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Info("pricing config file not found, using defaults")
	}

	cfg, err := decodePricingConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{log: log.Named("pricing.config")}
	holder.current.Store(cfg)

	if appCfg.PricingConfigWatch && v.ConfigFileUsed() != "" {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			holder.reload(v, e.Name)
		})
	}

	return holder, nil
}

// NewStaticPricingConfigHolder wraps a fixed config, for tests and tools.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{log: zap.NewNop()}
	holder.current.Store(cfg.withLocation())
	return holder
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

// reload swaps in the file's current contents. Invalid updates are logged and
// the previous config stays active.
func (h *PricingConfigHolder) reload(v *viper.Viper, source string) {
	updated, err := decodePricingConfig(v)
	if err != nil {
		h.log.Warn("pricing config reload ignored", zap.String("file", source), zap.Error(err))
		return
	}
	h.current.Store(updated)
	h.log.Info("pricing config reloaded", zap.String("file", source))
}

// decodePricingConfig unmarshals the whole tree so defaults are merged with
// partially specified files leaf by leaf.
func decodePricingConfig(v *viper.Viper) (PricingConfig, error) {
	var file struct {
		Pricing PricingConfig `mapstructure:"pricing"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return PricingConfig{}, err
	}
	if err := validatePricingConfig(file.Pricing); err != nil {
		return PricingConfig{}, err
	}
	loc, err := loadLocation(file.Pricing.Timezone)
	if err != nil {
		return PricingConfig{}, errors.New("pricing.timezone is not a known IANA zone")
	}
	file.Pricing.location = loc
	return file.Pricing, nil
}

func validatePricingConfig(cfg PricingConfig) error {
	if !validPercentage(cfg.ProviderCommission.Percentage) {
		return errors.New("pricing.provider_commission.percentage must be between 0 and 100")
	}
	if !validPercentage(cfg.CustomerCommission.Percentage) {
		return errors.New("pricing.customer_commission.percentage must be between 0 and 100")
	}
	return nil
}

func validPercentage(p *float64) bool {
	if p == nil {
		return true
	}
	return !math.IsNaN(*p) && *p >= 0 && *p <= 100
}

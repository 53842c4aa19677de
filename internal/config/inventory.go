package config

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	LowStockModePercentage = "percentage"
	LowStockModeFixed      = "fixed"

	LowStockBaseOriginal = "original"
	LowStockBasePrevious = "previous"
)

// InventoryConfig carries the tunables of the fertilizer stock ledger.
type InventoryConfig struct {
	LowStock LowStockConfig `mapstructure:"lowStock"`
}

// LowStockConfig selects how the low_stock threshold is computed.
// Percentage mode takes Percent of the base quantity (original purchase
// quantity or the quantity before the triggering update); fixed mode uses
// Floor as an absolute low-water mark.
type LowStockConfig struct {
	Mode    string  `mapstructure:"mode"`
	Percent float64 `mapstructure:"percent"`
	Base    string  `mapstructure:"base"`
	Floor   float64 `mapstructure:"floor"`
}

func DefaultInventoryConfig() InventoryConfig {
	return InventoryConfig{
		LowStock: LowStockConfig{
			Mode:    LowStockModePercentage,
			Percent: 20,
			Base:    LowStockBaseOriginal,
			Floor:   10,
		},
	}
}

type InventoryConfigHolder struct {
	current atomic.Value // holds InventoryConfig

	mu        sync.Mutex
	listeners []func(InventoryConfig)
}

var inventoryConfigPaths = []string{
	"/var/lib/agrichar/config",
	"/etc/agrichar",
	".",
}

// NewInventoryConfigHolder reads inventory.yml from the standard search paths
// and keeps watching it for changes.
func NewInventoryConfigHolder(log *zap.Logger) (*InventoryConfigHolder, error) {
	return LoadInventoryConfigHolder(log, inventoryConfigPaths...)
}

func LoadInventoryConfigHolder(log *zap.Logger, paths ...string) (*InventoryConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.inventory")

	v := viper.New()
	v.SetConfigName("inventory")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("AGRICHAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInventoryConfig()
	v.SetDefault("inventory.lowStock.mode", defaults.LowStock.Mode)
	v.SetDefault("inventory.lowStock.percent", defaults.LowStock.Percent)
	v.SetDefault("inventory.lowStock.base", defaults.LowStock.Base)
	v.SetDefault("inventory.lowStock.floor", defaults.LowStock.Floor)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg, err := decodeInventoryConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &InventoryConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeInventoryConfig(v)
			if err != nil {
				log.Warn("inventory config reload ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.Set(updated)
			log.Info("inventory config reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

// NewStaticInventoryConfigHolder returns a holder that never reloads.
func NewStaticInventoryConfigHolder(cfg InventoryConfig) *InventoryConfigHolder {
	holder := &InventoryConfigHolder{}
	holder.current.Store(normalizeInventoryConfig(cfg))
	return holder
}

func (h *InventoryConfigHolder) Get() InventoryConfig {
	return h.current.Load().(InventoryConfig)
}

// Set stores cfg and notifies listeners.
func (h *InventoryConfigHolder) Set(cfg InventoryConfig) {
	cfg = normalizeInventoryConfig(cfg)
	h.current.Store(cfg)

	h.mu.Lock()
	listeners := append([]func(InventoryConfig){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// OnChange registers fn to run after every successful reload.
func (h *InventoryConfigHolder) OnChange(fn func(InventoryConfig)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

func decodeInventoryConfig(v *viper.Viper) (InventoryConfig, error) {
	var cfg InventoryConfig
	if err := v.UnmarshalKey("inventory", &cfg); err != nil {
		return InventoryConfig{}, err
	}
	cfg = normalizeInventoryConfig(cfg)
	if err := validateInventoryConfig(cfg); err != nil {
		return InventoryConfig{}, err
	}
	return cfg, nil
}

func normalizeInventoryConfig(cfg InventoryConfig) InventoryConfig {
	cfg.LowStock.Mode = strings.ToLower(strings.TrimSpace(cfg.LowStock.Mode))
	cfg.LowStock.Base = strings.ToLower(strings.TrimSpace(cfg.LowStock.Base))
	if cfg.LowStock.Base == "" {
		cfg.LowStock.Base = LowStockBaseOriginal
	}
	return cfg
}

func validateInventoryConfig(cfg InventoryConfig) error {
	switch cfg.LowStock.Mode {
	case LowStockModePercentage:
		if cfg.LowStock.Percent <= 0 || cfg.LowStock.Percent >= 100 {
			return errors.New("inventory.lowStock.percent must be between 0 and 100")
		}
		switch cfg.LowStock.Base {
		case LowStockBaseOriginal, LowStockBasePrevious:
		default:
			return errors.New("inventory.lowStock.base must be original or previous")
		}
	case LowStockModeFixed:
		if cfg.LowStock.Floor < 0 {
			return errors.New("inventory.lowStock.floor cannot be negative")
		}
	default:
		return errors.New("inventory.lowStock.mode must be percentage or fixed")
	}
	return nil
}

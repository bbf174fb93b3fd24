package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
	"github.com/connermo/ai4s/internal/session"
)

// cliConfig holds the console configuration.
type cliConfig struct {
	APIBase            string        `mapstructure:"api-base"`
	Token              string        `mapstructure:"token"`
	SessionPath        string        `mapstructure:"session-path"`
	AuditPath          string        `mapstructure:"audit-path"`
	ExportDir          string        `mapstructure:"export-dir"`
	Section            string        `mapstructure:"section"`
	RefreshInterval    time.Duration `mapstructure:"refresh-interval"`
	SettleDelay        time.Duration `mapstructure:"settle-delay"`
	VisibilityDebounce time.Duration `mapstructure:"visibility-debounce"`
	OptionsMaxRetries  int           `mapstructure:"options-max-retries"`
	OptionsRetryDelay  time.Duration `mapstructure:"options-retry-delay"`
	OptionsTimeout     time.Duration `mapstructure:"options-timeout"`
	RequestTimeout     time.Duration `mapstructure:"request-timeout"`
	RateLimit          float64       `mapstructure:"rate-limit"`
	RateBurst          int           `mapstructure:"rate-burst"`
	ServerHost         string        `mapstructure:"server-host"`
	ReverseScrollWheel bool          `mapstructure:"reverse-scroll-wheel"`
	ConfigPath         string        `mapstructure:"-"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("AI4S")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-base", model.DefaultAPIBase)
	v.SetDefault("token", "")
	v.SetDefault("session-path", session.DefaultPath())
	v.SetDefault("audit-path", filepath.Join(home, ".local", "state", "ai4s", "audit.jsonl"))
	v.SetDefault("export-dir", ".")
	v.SetDefault("section", string(refresh.SectionDashboard))
	v.SetDefault("refresh-interval", model.DefaultRefreshInterval)
	v.SetDefault("settle-delay", model.DefaultSettleDelay)
	v.SetDefault("visibility-debounce", model.DefaultVisibilityDebounce)
	v.SetDefault("options-max-retries", model.DefaultOptionsMaxRetries)
	v.SetDefault("options-retry-delay", model.DefaultOptionsRetryDelay)
	v.SetDefault("options-timeout", model.DefaultOptionsTimeout)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("rate-limit", model.DefaultRateLimit)
	v.SetDefault("rate-burst", model.DefaultRateBurst)
	v.SetDefault("server-host", "")
	v.SetDefault("reverse-scroll-wheel", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "ai4s", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if _, err := refresh.ParseSection(cfg.Section); err != nil {
		return cfg, fmt.Errorf("invalid section: %q", cfg.Section)
	}
	if cfg.OptionsMaxRetries < 0 {
		return cfg, fmt.Errorf("invalid options-max-retries: %d", cfg.OptionsMaxRetries)
	}

	cfg.SessionPath = expandHome(home, cfg.SessionPath)
	cfg.AuditPath = expandHome(home, cfg.AuditPath)
	cfg.ExportDir = expandHome(home, cfg.ExportDir)

	return cfg, nil
}

// refreshConfig maps the timing keys onto the controller config.
func (c cliConfig) refreshConfig() refresh.Config {
	return refresh.Config{
		Interval:           c.RefreshInterval,
		SettleDelay:        c.SettleDelay,
		VisibilityDebounce: c.VisibilityDebounce,
		MaxRetries:         c.OptionsMaxRetries,
		RetryDelay:         c.OptionsRetryDelay,
		OptionsTimeout:     c.OptionsTimeout,
	}
}

// serverHost returns the host users connect to, defaulting to the API host.
func (c cliConfig) serverHost() string {
	if c.ServerHost != "" {
		return c.ServerHost
	}
	base := strings.TrimPrefix(strings.TrimPrefix(c.APIBase, "http://"), "https://")
	if i := strings.IndexAny(base, ":/"); i >= 0 {
		base = base[:i]
	}
	return base
}

func expandHome(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

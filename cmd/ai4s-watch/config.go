package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
	"github.com/connermo/ai4s/internal/session"
)

const defaultListenAddr = "127.0.0.1:3900"

// appConfig holds the watcher configuration.
type appConfig struct {
	APIBase            string        `mapstructure:"api-base"`
	Token              string        `mapstructure:"token"`
	SessionPath        string        `mapstructure:"session-path"`
	ListenAddr         string        `mapstructure:"listen-addr"`
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
	ConfigPath         string        `mapstructure:"-"`
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

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
	v.SetDefault("listen-addr", defaultListenAddr)
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
	if _, _, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
		return cfg, fmt.Errorf("invalid listen-addr %q: %w", cfg.ListenAddr, err)
	}
	if strings.HasPrefix(cfg.SessionPath, "~/") {
		cfg.SessionPath = filepath.Join(home, cfg.SessionPath[2:])
	}

	return cfg, nil
}

func (c appConfig) refreshConfig() refresh.Config {
	return refresh.Config{
		Interval:           c.RefreshInterval,
		SettleDelay:        c.SettleDelay,
		VisibilityDebounce: c.VisibilityDebounce,
		MaxRetries:         c.OptionsMaxRetries,
		RetryDelay:         c.OptionsRetryDelay,
		OptionsTimeout:     c.OptionsTimeout,
	}
}

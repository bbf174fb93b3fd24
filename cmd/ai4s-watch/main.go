package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/connermo/ai4s/internal/session"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var listenAddr string
	var apiBase string
	var token string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/ai4s/config.yml)")
	flag.StringVar(&listenAddr, "listen", "", "override the status API listen address")
	flag.StringVar(&apiBase, "api", "", "override the admin API base URL")
	flag.StringVar(&token, "token", "", "admin token (default is the saved console session)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("ai4s-watch - Headless Refresh Watcher\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if apiBase != "" {
		cfg.APIBase = apiBase
	}
	if token != "" {
		cfg.Token = token
	}

	if err := runWatcher(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveToken returns the configured token or the one saved by the console.
func resolveToken(cfg appConfig) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	sess, err := session.NewStore(cfg.SessionPath).Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return "", errors.New("no token configured; log in with ai4s-admin or pass -token")
		}
		return "", err
	}
	return sess.Token, nil
}

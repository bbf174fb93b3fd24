package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/connermo/ai4s/internal/actions"
	"github.com/connermo/ai4s/internal/apiclient"
	"github.com/connermo/ai4s/internal/audit"
	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
	"github.com/connermo/ai4s/internal/session"
	"github.com/connermo/ai4s/internal/tui"
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
	var apiBase string
	var token string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/ai4s/config.yml)")
	flag.StringVar(&apiBase, "api", "", "override the admin API base URL")
	flag.StringVar(&token, "token", "", "admin token to use instead of the saved session")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("ai4s-admin - GPU Platform Admin Console\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if apiBase != "" {
		cfg.APIBase = apiBase
	}
	if token != "" {
		cfg.Token = token
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	store := session.NewStore(cfg.SessionPath)
	sess, ok := initialSession(cfg, store, time.Now())

	client := apiclient.New(cfg.APIBase,
		apiclient.WithToken(sess.Token),
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)

	bridge := tui.NewBridge(64)
	ctrl := refresh.New(client, cfg.refreshConfig(), bridge.Callbacks())
	// Unblock pending callbacks before waiting for the controller.
	defer func() {
		bridge.Close()
		ctrl.Close()
	}()

	var opts []actions.Option
	var activity tui.Activity
	auditLog, err := audit.Open(cfg.AuditPath, audit.DefaultKeep)
	if err != nil {
		log.Printf("admin: activity journal disabled: %v", err)
	} else {
		defer auditLog.Close()
		opts = append(opts, actions.WithJournal(auditLog))
		activity = auditLog
	}
	svc := actions.NewService(client, ctrl, opts...)

	section, _ := refresh.ParseSection(cfg.Section)
	admin := tui.NewAdminModel(tui.AdminDeps{
		Controller:         ctrl,
		Service:            svc,
		Activity:           activity,
		Store:              store,
		Tokens:             client,
		Section:            section,
		ServerHost:         cfg.serverHost(),
		ExportDir:          cfg.ExportDir,
		Interval:           cfg.RefreshInterval,
		ReverseScrollWheel: cfg.ReverseScrollWheel,
	})
	login := tui.NewLoginModel(tui.LoginDeps{
		Auth:    client,
		Store:   store,
		Tokens:  client,
		APIBase: cfg.APIBase,
	})

	var app *tui.App
	if ok {
		admin.Enter(sess)
		app = tui.NewApp(admin, login)
	} else {
		app = tui.NewApp(login, admin)
	}
	log.Printf("admin: starting on %s (api %s, session %t)", app.ActivePage(), cfg.APIBase, ok)

	p := tea.NewProgram(app.Listen(bridge.Wait),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// initialSession returns a usable admin session from the -token flag or the
// saved session file. A saved session for another API base is ignored.
func initialSession(cfg cliConfig, store *session.Store, now time.Time) (session.Session, bool) {
	if cfg.Token != "" {
		sess, err := session.FromLogin(model.LoginResponse{Token: cfg.Token}, cfg.APIBase, now)
		if err != nil {
			log.Printf("admin: token rejected: %v", err)
			return session.Session{}, false
		}
		return sess, true
	}

	sess, err := store.Load()
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			log.Printf("admin: load session: %v", err)
		}
		return session.Session{}, false
	}
	if sess.APIBase != "" && sess.APIBase != cfg.APIBase {
		return session.Session{}, false
	}
	if err := sess.Validate(now); err != nil {
		log.Printf("admin: saved session unusable: %v", err)
		if clearErr := store.Clear(); clearErr != nil {
			log.Printf("admin: clear session: %v", clearErr)
		}
		return session.Session{}, false
	}
	return sess, true
}

func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "ai4s")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := filepath.Join(logDir, "ai4s-admin.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/connermo/ai4s/internal/apiclient"
	"github.com/connermo/ai4s/internal/httpserver"
	"github.com/connermo/ai4s/internal/refresh"
)

// runWatcher polls the admin API headlessly and serves its state over HTTP.
func runWatcher(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	token, err := resolveToken(cfg)
	if err != nil {
		return err
	}
	client := apiclient.New(cfg.APIBase,
		apiclient.WithToken(token),
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)

	var apiServer *httpserver.Server
	ctrl := refresh.New(client, cfg.refreshConfig(), refresh.Callbacks{
		Render: func(res refresh.Result) { apiServer.Observe(res) },
		Error: func(res refresh.Result) {
			log.Printf("watch: refresh %s failed (%s): %v", res.Target, res.Reason, res.Err)
			if apiclient.IsUnauthorized(res.Err) {
				log.Printf("watch: token rejected, refresh the saved session with ai4s-admin")
			}
		},
	})
	defer ctrl.Close()

	apiServer = httpserver.NewServer(cfg.ListenAddr, ctrl)
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	defer apiServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	section, _ := refresh.ParseSection(cfg.Section)
	printStartupBanner(cfg, apiServer.Addr(), section)
	log.Printf("watch: started on %s, section %s, api %s", apiServer.Addr(), section, cfg.APIBase)

	ctrl.Start(section)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case err, ok := <-apiServer.Errors():
			if ok && err != nil {
				return fmt.Errorf("api server: %w", err)
			}
			return errors.New("api server stopped")
		case <-gctx.Done():
			return nil
		}
	})

	err = g.Wait()
	signal.Stop(sigCh)
	if err != nil {
		log.Printf("watch: %v", err)
	}
	return err
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

	logPath := filepath.Join(logDir, "ai4s-watch.log")
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

func printStartupBanner(cfg appConfig, addr string, section refresh.Section) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
     ╔═╗╦╦ ╦╔═╗
     ╠═╣║╚═╣╚═╗
     ╩ ╩╩  ╩╚═╝  watch`)

	var lines []string
	lines = append(lines, "", logo, "    "+dim.Render("v"+version), "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator, "")

	lines = append(lines, bold.Render("    Upstream"), "")
	lines = append(lines, fmt.Sprintf("    %s  Admin API      %s", check, cyan.Render(cfg.APIBase)))
	lines = append(lines, fmt.Sprintf("    %s  Section        %s", check, dim.Render(string(section))))
	lines = append(lines, fmt.Sprintf("    %s  Interval       %s", check, dim.Render(cfg.RefreshInterval.String())))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Gateway"), "")
	lines = append(lines, fmt.Sprintf("    %s  Status API     %s", check, cyan.Render("http://"+addr+"/api/status")))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"), "")
	if _, err := os.Stat(cfg.ConfigPath); err == nil {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "", separator, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}

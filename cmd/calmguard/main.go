package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/calmguard/ecomcare/internal/client/chatapi"
	"github.com/calmguard/ecomcare/internal/config"
	"github.com/calmguard/ecomcare/internal/service/conversation"
	"github.com/calmguard/ecomcare/internal/service/exchange"
	"github.com/calmguard/ecomcare/internal/tui"
)

type appConfig struct {
	baseURL   string
	timeout   time.Duration
	altScreen bool
	logFile   string
}

func parseFlags(args []string, defaults config.ClientConfig, altScreen bool) (appConfig, error) {
	cfg := appConfig{}
	fs := flag.NewFlagSet("calmguard", flag.ContinueOnError)
	fs.StringVar(&cfg.baseURL, "url", defaults.BaseURL, "Support analysis API base URL")
	fs.DurationVar(&cfg.timeout, "timeout", defaults.Timeout, "Per-request timeout")
	fs.BoolVar(&cfg.altScreen, "alt-screen", altScreen, "Render in the terminal alternate screen")
	fs.StringVar(&cfg.logFile, "log-file", envOr("CALMGUARD_LOG_FILE", ""), "Write diagnostic logs to this file")
	if err := fs.Parse(args); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	defaults, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	altScreen, err := config.ParseBoolEnv("CALMGUARD_ALT_SCREEN", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	cfg, err := parseFlags(os.Args[1:], defaults, altScreen)
	if err != nil {
		os.Exit(2)
	}

	// 全屏界面运行期间标准输出不可用，日志写入文件或丢弃。
	if cfg.logFile != "" {
		f, err := tea.LogToFile(cfg.logFile, "calmguard")
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := chatapi.NewClient(cfg.baseURL, chatapi.WithTimeout(cfg.timeout))
	store := conversation.NewStore(conversation.DefaultGreeting)
	controller := exchange.NewController(store, client)

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithMouseCellMotion()}
	if cfg.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(tui.New(ctx, controller, cfg.baseURL), opts...)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "calmguard fatal error: %v\n", err)
		os.Exit(1)
	}
}

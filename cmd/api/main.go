package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/calmguard/ecomcare/internal/config"
	"github.com/calmguard/ecomcare/internal/handler"
	"github.com/calmguard/ecomcare/internal/llm"
	"github.com/calmguard/ecomcare/internal/prompts"
	"github.com/calmguard/ecomcare/internal/service/support"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	promptSet, err := prompts.Load(cfg.Prompts.Path)
	if err != nil {
		log.Fatalf("failed to load prompts: %v", err)
	}

	generator, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		log.Printf("warning: failed to initialize LLM provider %s: %v", cfg.LLM.Provider, err)
		generator = nil
	}
	if generator == nil {
		log.Println("未配置可用的大模型，所有分析阶段使用关键词规则")
	} else {
		log.Printf("LLM provider %s initialized successfully", cfg.LLM.Provider)
	}

	pipeline := support.NewPipeline(generator, promptSet, support.WithCache(cfg.LLM.CacheSize))
	router := handler.NewRouter(pipeline, cfg.Server.AllowedOrigin)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("CalmGuard API listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

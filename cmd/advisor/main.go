package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockadvisor/internal/agent"
	"stockadvisor/internal/llm"
	"stockadvisor/internal/logger"
	"stockadvisor/internal/marketdata"
	"stockadvisor/internal/server"
	"stockadvisor/internal/session"
	"stockadvisor/internal/store"
	"stockadvisor/internal/tools"
	"stockadvisor/internal/trace"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("ADVISOR_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger.Init()
	if err := trace.Init(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	market := marketdata.NewGateway(cfg)
	generator := llm.New(cfg)
	dispatcher := tools.NewDispatcher(market, cfg)
	sessions := session.NewStore(cfg.Session.MaxHistory)
	orch := agent.NewOrchestrator(generator, dispatcher, sessions, cfg)
	srv := server.New(orch, sessions, cfg)

	if !generator.HealthCheck(ctx) {
		logger.Warn(ctx, "Ollama not reachable at startup, chat will degrade", "host", cfg.Ollama.Host)
	}

	go func() {
		logger.Info(ctx, "Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "Server shutdown failed", err)
	}
	market.Close()
	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "Tracer shutdown failed", err)
	}
}

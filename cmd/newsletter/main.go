package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/deusflow/newsletter/internal/app"
	"github.com/deusflow/newsletter/internal/config"
	"github.com/deusflow/newsletter/internal/digest"
	"github.com/deusflow/newsletter/internal/logger"
	"github.com/deusflow/newsletter/internal/mailer"
	"github.com/deusflow/newsletter/internal/metrics"
	"github.com/deusflow/newsletter/internal/naver"
	"github.com/deusflow/newsletter/internal/rewrite"
	"github.com/deusflow/newsletter/internal/state"
)

func main() {
	logger.Init()

	// Check if we should start HTTP server for monitoring
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := state.New(cfg.StateDBPath)
	if err != nil {
		logger.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var searcher digest.Searcher
	if cfg.SearchEnabled() {
		client, err := naver.NewClient(cfg.NaverClientID, cfg.NaverClientSecret, cfg.RequestTimeout)
		if err != nil {
			logger.Error("failed to build naver client", "error", err)
			os.Exit(1)
		}
		searcher = client
	}

	rewriter := rewrite.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.MaxRewriteRequests)
	mail := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)

	a := app.New(cfg, store, searcher, rewriter, mail)
	if err := a.Run(context.Background()); err != nil {
		metrics.Global.SetError(err.Error())
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	log.Printf("Starting monitoring server on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Printf("Monitoring server error: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

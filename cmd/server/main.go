package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/chunker"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/headers"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Result storage.
	st, err := store.Open(ctx, store.Options{
		Backend:      cfg.StoreBackend,
		PathstoreURL: cfg.PathstoreURL,
		PathstoreKey: cfg.PathstoreAPIKey,
		S3: store.S3Config{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Endpoint:  cfg.S3Endpoint,
		},
	})
	if err != nil {
		log.Error("store init failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	// Header discovery.
	provider, err := headers.NewProvider(ctx, headers.ProviderConfig{
		Name:            cfg.LLMProvider,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
	})
	if err != nil {
		log.Error("llm provider init failed", "provider", cfg.LLMProvider, "error", err)
		os.Exit(1)
	}
	var discoverer *headers.Discoverer
	var stats *headers.LLMStats
	if provider != nil {
		stats = headers.NewLLMStats(time.Hour)
		discoverer = headers.NewDiscoverer(pipeline.WithRetry(provider, log), headers.Config{
			Chunk: chunker.Config{
				ChunkSize:    cfg.DiscoveryChunkTokens,
				ChunkOverlap: cfg.DiscoveryChunkOverlap,
				MinChunk:     100,
			},
			MaxConcurrent: cfg.MaxConcurrentDiscover,
			Stats:         stats,
		}, log)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
		Worker: pipeline.WorkerConfig{
			Parser:          parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
			DiscoveredMatch: cfg.DiscoveredMatch(),
		},
	}, discoverer, st, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if c, ok := provider.(interface{ Close() }); ok {
			c.Close()
		}
		if c, ok := st.(interface{ Close() }); ok {
			c.Close()
		}
	}()

	storeName := "none"
	if st != nil {
		storeName = st.Name()
	}
	log.Info("starting docoutline",
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
		"store", storeName,
		"workers", cfg.WorkerCount,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

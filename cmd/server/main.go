package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/stylescout/backend/config"
	"github.com/stylescout/backend/internal/analyzer"
	httpDelivery "github.com/stylescout/backend/internal/delivery/http"
	"github.com/stylescout/backend/internal/detector"
	"github.com/stylescout/backend/internal/domain"
	"github.com/stylescout/backend/internal/infrastructure/airuntime"
	"github.com/stylescout/backend/internal/infrastructure/imagefetch"
	"github.com/stylescout/backend/internal/infrastructure/relay"
	"github.com/stylescout/backend/internal/infrastructure/settings"
	"github.com/stylescout/backend/internal/infrastructure/wardrobestore"
	"github.com/stylescout/backend/internal/usecase"
	"github.com/stylescout/backend/internal/wardrobe"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting StyleScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Model runtime: %s (model: %s)", cfg.Runtime.BaseURL, cfg.Runtime.Model)

	// Infrastructure
	runtime := airuntime.NewClient(cfg.Runtime.BaseURL, cfg.Runtime.Model)
	fetcher := imagefetch.NewFetcher()
	settingsStore := settings.NewMemoryStore()

	// Detection + analysis
	debug := cfg.Analysis.Debug || cfg.Server.Environment == "development"
	det := detector.New(detector.DefaultRegistry(), detector.Config{Debug: debug})

	engineCfg := analyzer.Config{
		CacheCapacity:     cfg.Analysis.CacheCapacity,
		ShortCircuitCache: cfg.Analysis.CacheShortCircuit,
		CallTimeout:       cfg.Analysis.CallTimeout,
		Debug:             debug,
	}
	styleEngine := analyzer.NewEngine(runtime, fetcher, analyzer.StyleStrategy(), engineCfg)
	promptEngine := analyzer.NewEngine(runtime, fetcher, analyzer.PromptStrategy(), engineCfg)
	batch := analyzer.BatchOptions{Size: cfg.Analysis.BatchSize, Delay: cfg.Analysis.BatchDelay}

	// Wardrobe subsystem is optional: without a Firestore project the
	// matching endpoint answers 501 and style scoring runs without a profile
	ctx := context.Background()
	var profiles domain.ProfileRepository
	var outfitService *usecase.OutfitService
	if cfg.Wardrobe.ProjectID != "" {
		store, err := wardrobestore.NewStore(ctx, cfg.Wardrobe.ProjectID, cfg.Wardrobe.CredentialsFile, cfg.Wardrobe.UserID)
		if err != nil {
			log.Fatalf("Failed to connect wardrobe store: %v", err)
		}
		defer store.Close()
		profiles = store

		filter := wardrobe.NewFilter(relay.NewModelFilter(runtime))
		filter.SetDebug(debug)
		outfitService = usecase.NewOutfitService(store, filter)
		outfitService.Start(ctx)
		log.Printf("Wardrobe matching enabled (project: %s)", cfg.Wardrobe.ProjectID)
	} else {
		log.Printf("Wardrobe matching disabled: no Firestore project configured")
	}

	scanService := usecase.NewScanService(det, styleEngine, promptEngine, settingsStore, profiles, batch)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(scanService, outfitService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}

package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"cinelog/config"
	"cinelog/handlers"
	"cinelog/internal/database"
	"cinelog/services/discovery"
	"cinelog/services/genai"
	"cinelog/services/metadata"
	"cinelog/services/review"
	"cinelog/services/reviews"
	"cinelog/utils"
)

func main() {
	settingsPath := os.Getenv("CINELOG_SETTINGS")
	if settingsPath == "" {
		settingsPath = "data/settings.json"
	}

	configManager := config.NewManager(settingsPath)
	settings, err := configManager.Load()
	if err != nil {
		log.Fatalf("[main] failed to load settings: %v", err)
	}

	if settings.Logging.Path != "" {
		rotated := &lumberjack.Logger{
			Filename:   settings.Logging.Path,
			MaxSize:    settings.Logging.MaxSizeMB,
			MaxBackups: settings.Logging.MaxBackups,
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
	}

	if err := discovery.ValidateCatalog(); err != nil {
		log.Fatalf("[main] invalid catalog: %v", err)
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	metadataClient := metadata.NewClient(
		settings.Metadata.APIKey,
		settings.Metadata.BaseURL,
		settings.Metadata.Language,
		settings.Metadata.Region,
		time.Duration(settings.Metadata.TimeoutSeconds)*time.Second,
	)
	genaiClient := genai.NewClient(
		settings.GenAI.APIKey,
		settings.GenAI.BaseURL,
		settings.GenAI.Model,
		time.Duration(settings.GenAI.TimeoutSeconds)*time.Second,
	)

	discoverySvc := discovery.NewService(metadataClient)
	store := reviews.NewStore()
	bridge := reviews.NewBridge(store, db.Repository)
	sessions := review.NewManager(genaiClient, bridge)
	quick := review.NewQuick(bridge)

	router := utils.NewRouter()
	handlers.NewDiscoveryHandler(discoverySvc).RegisterRoutes(router)
	handlers.NewChatHandler(sessions, metadataClient).RegisterRoutes(router)
	handlers.NewReviewsHandler(quick, bridge).RegisterRoutes(router)

	addr := settings.Server.ListenAddr
	log.Printf("[main] listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("[main] server error: %v", err)
	}
}

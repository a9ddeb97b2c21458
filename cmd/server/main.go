package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BILBIL17/physioconnect/internal/ai"
	"github.com/BILBIL17/physioconnect/internal/api"
	"github.com/BILBIL17/physioconnect/internal/config"
	"github.com/BILBIL17/physioconnect/internal/kvstore"
	"github.com/BILBIL17/physioconnect/internal/service"
	"github.com/BILBIL17/physioconnect/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting PhysioConnect Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Storage Backend ---
	kv, err := openStore(cfg.Storage)
	if err != nil {
		log.Fatalf("FATAL: Could not open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer func() {
		log.Println("Closing storage...")
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := kv.Close(closeCtx); err != nil {
			log.Printf("ERROR: Failed to close storage: %v", err)
		}
	}()
	log.Printf("Storage backend ready (driver: %s).", cfg.Storage.Driver)

	records := store.NewRecordStore(kv)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	userService := service.NewUserService(records)
	authService := service.NewAuthService(records, userService, cfg.Admin, cfg.JWT.Secret, cfg.JWT.Expiration)
	contentService := service.NewContentService(records)
	progressService := service.NewProgressService(records)
	sessionService := service.NewSessionService(records.Markers(), userService, cfg.AI)
	chatAdapter := ai.NewAdapter()

	// --- Resume Session ---
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	state := sessionService.Resume(startupCtx)
	cancelStartup()
	log.Printf("Session resumed (view: %s, user: %q, admin: %t).", state.View, state.UserID, state.AdminLoggedIn)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, userService, contentService, progressService, sessionService, chatAdapter)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // AI round-trips can be slow
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// openStore selects the key-value backend from configuration.
func openStore(cfg config.StorageConfig) (kvstore.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "":
		return kvstore.NewSQLiteStore(cfg.SQLitePath)
	case "mongo":
		return kvstore.NewMongoStore(cfg.Mongo.URI, cfg.Mongo.Name)
	case "s3":
		return kvstore.NewS3Store(cfg.S3)
	case "memory":
		return kvstore.NewMemoryStore(), nil
	}
	return nil, errors.New("unknown storage driver: " + cfg.Driver)
}

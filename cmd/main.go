package main

import (
	"chat-relay/auth"
	relayhttp "chat-relay/infrastructure/http"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/storage"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. This pattern is preferred over calling
// os.Exit or panic directly because:
//  1. It ensures all 'defer' statements (like database cleanup) are
//     executed before the program exits.
//  2. It improves testability by decoupling initialization from the main
//     entry point.
//  3. It provides a structured way to handle graceful shutdowns for the
//     HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)
	auth.SetSigningKey(config.TokenSecret)

	charReplacement, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & services
	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	blobStore, err := storage.NewDiskStore(config.UploadsDir, log)
	if err != nil {
		return err
	}
	authService := services.NewAuthService(userRepository, config.TokenTTL)
	chatService := services.NewChatService(messageRepository, userRepository)
	resolver := auth.NewResolver(authService)

	// 4. Realtime core
	filter, err := moderation.NewFilter(moderation.DefaultWords(), charReplacement)
	if err != nil {
		return fmt.Errorf("moderation filter build failed: %w", err)
	}
	metrics := observability.NewMetrics()
	registry := runtime.NewRegistry()
	presence := runtime.NewBroadcaster(registry, metrics, log)
	router := runtime.NewRouter(registry, messageRepository, blobStore, filter, metrics, log)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers under supervision
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(workers.NewBadgerGCWorker(db, config.BadgerGCInterval, log))
	supervisor.Add(workers.NewTelemetryWorker(log, registry, metrics, config.TelemetryInterval))
	go supervisor.Run(ctx)

	// 7. HTTP server
	server := relayhttp.NewServer(log, relayhttp.Config{
		ClientOrigin:  config.ClientOrigin,
		UploadsDir:    config.UploadsDir,
		SecureCookies: config.SecureCookies,
		LoginRate:     rate.Limit(config.LoginRatePerSecond),
		LoginBurst:    config.LoginBurst,
		Session: runtime.SessionConfig{
			PingInterval: config.PingInterval,
			PongTimeout:  config.PongTimeout,
			WriteTimeout: config.WriteTimeout,
			MaxFrameSize: config.MaxFrameSize,
			SendBuffer:   config.SendBuffer,
		},
	}, authService, chatService, resolver, registry, presence, router, metrics)

	httpServer := &http.Server{
		Addr:    config.Addr,
		Handler: server.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", config.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	supervisor.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

// newLogger builds the process-wide structured logger from the configured
// level name.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

package main

import (
	"context"
	"dm-lab/auth"
	"dm-lab/contract"
	"dm-lab/infrastructure/http/server"
	"dm-lab/infrastructure/storage"
	"dm-lab/internal"
	"dm-lab/moderation"
	"dm-lab/runtime"
	"dm-lab/runtime/workers"
	"dm-lab/services"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2

	shutdownTimeout = 10 * time.Second
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run keeps every defer on the exit path and hands the exit code back to main.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	moderator, err := buildModerator(config, logger)
	if err != nil {
		return exitConfig, err
	}

	// 2. Storage (Badger + Bluge)
	db, err := openDatabase(config, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	indexWriter, err := storage.OpenIndexWriter(config.BlugeFilepath)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = indexWriter.Close()
	}()

	userRepository := storage.NewUserRepository(db)
	messageRepository := storage.NewMessageRepository(db, logger)
	contactRepository := storage.NewContactRepository(db, logger)
	messageIndex := storage.NewMessageIndex(indexWriter, logger)
	directory := services.NewDirectory(userRepository)
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)

	// 3. Realtime: registry, hub, supervised fanout
	hub := runtime.NewHub(logger, runtime.NewRegistry(), tokens, config.SinkTimeout)
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(logger, supervisor, hub, config.BufferSize,
		config.MetricInterval, config.LatencyThreshold)

	// 4. Use cases
	locks := runtime.NewKeyedMutex()
	authService := services.NewAuthService(userRepository, tokens)
	messageService := services.NewMessageService(logger, messageRepository, messageIndex,
		directory, orchestrator, moderator, locks, time.Now)
	contactService := services.NewContactService(logger, contactRepository, directory, orchestrator, locks)
	chatListService := services.NewChatListService(logger, messageRepository, contactRepository, directory)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		orchestrator.Start(ctx)
	}()

	// 6. HTTP Server Setup
	api := server.NewServer(ctx, logger, authService, messageService, contactService, chatListService,
		directory, tokens, hub, orchestrator, server.Options{
			AllowedOrigins:       config.Origins(),
			SecureCookie:         config.SecureCookie,
			CookieDuration:       config.AuthTokenDuration,
			ConnectionBufferSize: config.ConnectionBufferSize,
			WriteTimeout:         config.WriteTimeout,
		})
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code := exitOK
	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
	case err = <-errChan:
		logger.Error("HTTP server failed", "error", err)
		code = exitRuntime
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("HTTP server shutdown incomplete", "error", shutdownErr)
	}
	orchestrator.Stop()
	<-orchestratorDone
	logger.Info("Program stopped cleanly")

	return code, err
}

func openDatabase(config internal.Config, logger *slog.Logger) (*badger.DB, error) {
	if config.BadgerFilepath == "" {
		logger.Warn("BADGER_FILEPATH is empty, data will not survive a restart")
		return storage.OpenInMemory()
	}
	return storage.OpenBadger(config.BadgerFilepath, strings.EqualFold(config.LogLevel, "DEBUG"))
}

// buildModerator returns a nil interface when moderation is off, so the message service skips it.
func buildModerator(config internal.Config, logger *slog.Logger) (contract.TextModerator, error) {
	if !config.ModerationEnabled {
		return nil, nil
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return nil, err
	}
	dictionaries, err := moderation.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("loading censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(dictionaries.Words, charReplacement, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Moderation enabled", "words", len(dictionaries.Words), "languages", dictionaries.Languages)
	return moderator, nil
}

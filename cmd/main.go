package main

import (
	"context"
	"fmt"
	"mentorhub/httpapi"
	"mentorhub/observability"
	"mentorhub/repositories"
	"mentorhub/runtime"
	"mentorhub/runtime/workers"
	"mentorhub/services"
	"mentorhub/transport/ws"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB) for the durable message store
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Relay side: registry, relay, supervised workers
	registry := runtime.NewSessionRegistry()
	monitoring := observability.NewMonitoringManager()
	relay := runtime.NewRelay(log, registry, monitoring, config.BufferSize)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewPresenceFanout(log, registry, relay.Presence()))
	sup.Add(workers.NewStatsWorker(log, monitoring, registry, config.StatsInterval))

	// 4. Store side: repository, service, REST API
	store := repositories.NewMessageStore(db, log)
	messages := services.NewMessageService(store)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 6. One HTTP surface: websocket relay + REST store.
	// The two share a process but not a transaction; a client calls both
	// per send and only the store is authoritative for history.
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewServer(log, relay, config.ConnectionBufferSize))
	mux.Handle("/api/", httpapi.NewServer(log, messages).Routes())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("mentorhub relay"))
	})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown was not clean", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

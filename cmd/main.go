package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"raid-lab/domain/event"
	"raid-lab/internal"
	"raid-lab/moderation"
	"raid-lab/projection"
	"raid-lab/runtime"
	"raid-lab/runtime/workers"
	"raid-lab/storage"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK = iota
	exitRuntime
	exitConfig
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout))
}

// ConsoleSink prints every event of the sessions on the console.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *ConsoleSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.out, "[%s] %s\n", e.SessionID().String()[:8], Describe(e))
	return err
}

// run initializes all components, runs the console until quit or a signal,
// and returns the process exit code. Every defer runs before main exits.
func run(in io.Reader, out io.Writer) int {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return exitConfig
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return exitConfig
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Boss catalog (BadgerDB + bluge)
	opts := badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING)
	if config.BadgerFilepath == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		log.Error("Database opening failed", "error", err)
		return exitRuntime
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := storage.NewInMemoryBossIndex()
	if err != nil {
		log.Error("Boss index opening failed", "error", err)
		return exitRuntime
	}
	defer func() { _ = index.Close() }()

	catalog, err := runtime.NewCatalogLoader(runtime.CatalogFS()).LoadAll("catalog")
	if err != nil {
		log.Error("Boss catalog loading failed", "error", err)
		return exitRuntime
	}
	bosses := storage.NewBossRepository(db, index, log)
	if err := bosses.Seed(catalog); err != nil {
		log.Error("Boss catalog seeding failed", "error", err)
		return exitRuntime
	}
	log.Info(fmt.Sprintf("%d boss tiers loaded", len(catalog)))

	// 3. Moderation
	censored, err := runtime.NewCensoredLoader(runtime.CensoredFS()).LoadAll("censored")
	if err != nil {
		log.Error("Censored words loading failed", "error", err)
		return exitRuntime
	}
	log.Info(fmt.Sprintf("%d censored files loaded [%s]", len(censored.Languages), strings.Join(censored.Languages, ",")))
	moderator, err := moderation.NewModerator(censored.Words, charReplacement)
	if err != nil {
		log.Error("Moderator build failed", "error", err)
		return exitRuntime
	}

	// 4. Setup Supervision & Orchestration
	telemetryChan := make(chan event.Event, config.BufferSize)
	supervisor := workers.NewSupervisor(log).WithTelemetry(telemetryChan)
	orchestrator := runtime.NewOrchestrator(log, supervisor, runtime.NewRegistry(),
		bosses, bosses, moderator, telemetryChan, runtime.Settings{
			NumWorkers:           config.NumberOfWorkers,
			BufferSize:           config.BufferSize,
			SinkTimeout:          config.SinkTimeout,
			RaidOptions:          config.RaidOptions(),
			MuleOptions:          config.MuleOptions(),
			InvitePageSize:       config.InvitePageSize,
			SessionTTL:           config.SessionTTL,
			ExpiryInterval:       config.ExpiryInterval,
			MetricInterval:       config.MetricInterval,
			LowCapacityThreshold: config.LowCapacityThreshold,
		})
	orchestrator.Add(projection.NewRoster(), &ConsoleSink{out: out})

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- orchestrator.Start(ctx) }()

	// 6. Console loop
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	console := NewConsole(orchestrator, out)
	fmt.Fprintln(out, "raid-lab ready, type help")
loop:
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down gracefully...")
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			quit, err := console.Execute(line)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
			if quit {
				break loop
			}
		}
	}

	// 7. Final Cleanup
	orchestrator.Stop()
	if err := <-done; err != nil {
		log.Error("Orchestrator failed", "error", err)
		return exitRuntime
	}
	log.Info("Program stopped cleanly")
	return exitOK
}

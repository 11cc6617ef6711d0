// POS Bridge - local peripheral service for point-of-sale front ends.
//
// The bridge loads receipt printers, cash drawers and customer displays from
// configuration and lets a POS client drive them over a websocket JSON
// protocol guarded by a single shared secret.
//
// Usage:
//
//	posbridge                     run the service (config from POSBRIDGE_CONFIG)
//	posbridge version             print build information
//	posbridge hash-token SECRET   print an argon2id hash for auth.token_hash
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/posbridge/internal/api"
	"github.com/nerrad567/posbridge/internal/device"
	"github.com/nerrad567/posbridge/internal/events"
	"github.com/nerrad567/posbridge/internal/hardware"
	"github.com/nerrad567/posbridge/internal/infrastructure/config"
	"github.com/nerrad567/posbridge/internal/infrastructure/database"
	"github.com/nerrad567/posbridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/posbridge/internal/infrastructure/logging"
	"github.com/nerrad567/posbridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/posbridge/internal/journal"
	"github.com/nerrad567/posbridge/internal/security"
	"github.com/nerrad567/posbridge/internal/session"
	"github.com/nerrad567/posbridge/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// journalPruneInterval is how often old journal entries are removed
	// while the service runs, in addition to the sweep at startup.
	journalPruneInterval = 24 * time.Hour
)

const usage = `usage:
  posbridge                     run the service
  posbridge version             print build information
  posbridge hash-token SECRET   print an argon2id hash for auth.token_hash
`

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

// runCLI dispatches subcommands and returns the process exit code.
func runCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Fprintf(stdout, "posbridge %s (commit %s, built %s)\n", version, commit, date)
			return 0

		case "hash-token":
			if len(args) != 2 || args[1] == "" {
				fmt.Fprint(stderr, usage)
				return 2
			}
			hash, err := security.HashToken(args[1])
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
			fmt.Fprintln(stdout, hash)
			return 0

		case "serve":
			// Same as no arguments.

		default:
			fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
			return 2
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// run starts the bridge and blocks until ctx is cancelled. Configuration,
// device and bind failures are returned so the process exits non-zero.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // startup sequence: linear wiring of optional subsystems
	log := logging.Default()
	log.Info("starting POS bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, logCloser, err := logging.Open(cfg.Logging, version)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logCloser.Close()
	log.Info("configuration loaded", "path", configPath)

	if strings.EqualFold(cfg.Logging.Output, "file") {
		removed, cleanErr := logging.CleanupOldLogs(filepath.Dir(cfg.Logging.File.Path), cfg.Logging.File.MaxAge, time.Now())
		if cleanErr != nil {
			log.Warn("log cleanup incomplete", "error", cleanErr)
		}
		if removed > 0 {
			log.Info("removed old log files", "count", removed)
		}
	}

	logSerialPorts(log)

	registry := device.NewRegistry()
	registry.SetLogger(log)
	if err := registry.Load(cfg.Devices); err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	gate, err := security.FromConfig(cfg.Auth)
	if err != nil {
		return fmt.Errorf("configuring auth: %w", err)
	}

	var sinks []events.Sink

	var db *database.DB
	var journalRepo *journal.SQLiteRepository
	if cfg.Journal.Enabled {
		db, journalRepo, err = openJournal(ctx, cfg.Journal, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing journal")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()
		sinks = append(sinks, journal.NewSink(journalRepo))
	}

	// The broker and metrics store are optional: the bridge keeps serving the
	// till when they are unreachable.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("MQTT unavailable, command events will not be published", "error", err)
		} else {
			mqttClient.SetLogger(log)
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"topic_prefix", cfg.MQTT.TopicPrefix,
			)
			sinks = append(sinks, events.NewMQTTSink(mqttClient, mqttClient.Topics().CommandEvent, byte(cfg.MQTT.QoS)))
		}
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			log.Warn("InfluxDB unavailable, command metrics will not be written", "error", influxErr)
		} else {
			influxClient.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			defer func() {
				log.Info("closing InfluxDB connection")
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
			sinks = append(sinks, events.NewMetricsSink(influxClient))
		}
	}

	bus := events.NewBus(events.DefaultBufferSize, sinks...)
	bus.SetLogger(log)

	dispatcher := session.NewDispatcher(registry, gate)
	dispatcher.SetLogger(log)
	dispatcher.SetEmitter(bus)

	deps := api.Deps{
		Server:     cfg.Server,
		WS:         cfg.WebSocket,
		Logger:     log,
		Registry:   registry,
		Dispatcher: dispatcher,
		Gate:       gate,
		DB:         db,
		Bus:        bus,
		Version:    version,
	}
	if journalRepo != nil {
		deps.Journal = journalRepo
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}

	// The bus outlives the server so events from the last commands are delivered.
	busCtx, stopBus := context.WithCancel(context.Background())
	defer stopBus()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bus.Run(busCtx)
	})
	if journalRepo != nil {
		g.Go(func() error {
			pruneJournalLoop(gctx, journalRepo, cfg.Journal.RetentionDays, log)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, cleaning up")
		err := server.Close()
		stopBus()
		return err
	})

	log.Info("initialisation complete, waiting for shutdown signal")
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("POS bridge stopped", "events", bus.Stats())
	return nil
}

// getConfigPath returns the configuration file path from POSBRIDGE_CONFIG
// or the default.
func getConfigPath() string {
	if path := os.Getenv("POSBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

func logSerialPorts(log *logging.Logger) {
	ports, err := hardware.ListSerialPorts()
	if err != nil {
		log.Warn("serial port enumeration failed", "error", err)
		return
	}
	log.Info("serial ports available", "ports", ports)
}

// openJournal opens and migrates the journal database and prunes entries
// past retention.
func openJournal(ctx context.Context, cfg config.JournalConfig, log *logging.Logger) (*database.DB, *journal.SQLiteRepository, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening journal: %w", err)
	}

	if err := db.Migrate(ctx, migrations.FS, "."); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, nil, fmt.Errorf("migrating journal: %w", err)
	}
	log.Info("journal ready", "path", cfg.Path)

	repo := journal.NewSQLiteRepository(db.DB)
	pruneJournal(ctx, repo, cfg.RetentionDays, log)
	return db, repo, nil
}

func pruneJournalLoop(ctx context.Context, repo journal.Repository, days int, log *logging.Logger) {
	if days <= 0 {
		return
	}
	ticker := time.NewTicker(journalPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneJournal(ctx, repo, days, log)
		}
	}
}

func pruneJournal(ctx context.Context, repo journal.Repository, days int, log *logging.Logger) {
	n, err := journal.PruneOlderThan(ctx, repo, days, time.Now())
	if err != nil {
		log.Warn("journal prune failed", "error", err)
		return
	}
	if n > 0 {
		log.Info("pruned journal entries", "count", n, "retention_days", days)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jroosing/minidns/internal/api"
	"github.com/jroosing/minidns/internal/api/handlers"
	"github.com/jroosing/minidns/internal/config"
	"github.com/jroosing/minidns/internal/database"
	"github.com/jroosing/minidns/internal/logging"
	"github.com/jroosing/minidns/internal/resolvers"
	"github.com/jroosing/minidns/internal/server"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML configuration file (or set MINIDNS_CONFIG)")
		host        = flag.String("host", "", "Override bind host")
		port        = flag.Int("port", 0, "Override bind port")
		workers     = flag.Int("workers", -1, "Clamp GOMAXPROCS (can only reduce; -1 means default/auto)")
		recordsFile = flag.String("records", "", "Override the YAML records file")
		recordsDB   = flag.String("db", "", "Override the SQLite records database")
		enableAPI   = flag.Bool("api", false, "Enable the management API")
		jsonLogs    = flag.Bool("json-logs", false, "Enable JSON structured logging")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *workers >= 0 {
		cfg.Server.Workers = config.WorkerSetting{Mode: config.WorkersFixed, Value: *workers}
	}
	if *recordsFile != "" {
		cfg.Records.File = *recordsFile
	}
	if *recordsDB != "" {
		cfg.Records.Database = *recordsDB
	}
	if *enableAPI {
		cfg.API.Enabled = true
	}
	if *jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var db *database.DB
	if cfg.Records.Database != "" {
		var err error
		db, err = database.Open(cfg.Records.Database)
		if err != nil {
			return fmt.Errorf("open records database: %w", err)
		}
		defer db.Close()
		logger.Info("records database", "path", cfg.Records.Database, "schema_version", db.SchemaVersion())
	}

	table, err := server.LoadRecordTable(ctx, cfg, db)
	if err != nil {
		return err
	}
	resolver := resolvers.NewStaticResolver(table)

	logger.Info("MiniDNS starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"workers", cfg.Server.Workers.String(),
		"records", table.Len(),
		"api", cfg.API.Enabled,
	)

	runner := server.NewRunner(logger)

	if cfg.API.Enabled {
		apiServer := api.New(cfg, db, logger)
		apiServer.Handler().SetRecords(table, resolver)
		apiServer.Handler().SetDNSStatsFunc(func() handlers.DNSStatsSnapshot {
			s := runner.Stats().Snapshot()
			return handlers.DNSStatsSnapshot{
				QueriesTotal:      s.QueriesTotal,
				QueriesUDP:        s.QueriesUDP,
				ResponsesAnswered: s.ResponsesAnswered,
				ResponsesNoAnswer: s.ResponsesNoAnswer,
				ResponsesErr:      s.ResponsesErr,
				Dropped:           s.Dropped,
				AvgLatencyMs:      s.AvgLatencyMs,
			}
		})
		go func() {
			if err := apiServer.Run(ctx); err != nil {
				logger.Error("api server failed", "err", err)
			}
		}()
	}

	return runner.RunWithContext(ctx, cfg, resolver)
}

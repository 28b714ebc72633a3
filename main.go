package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"figimapper/internal/checkpoint"
	"figimapper/internal/config"
	"figimapper/internal/dispatcher"
	"figimapper/internal/export"
	"figimapper/internal/figi"
	"figimapper/internal/logging"
	"figimapper/internal/metrics"
	"figimapper/internal/openfigi"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// summaryRows caps the console table; the workbook always has every row
const summaryRows = 20

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	runID := uuid.NewString()
	logger := logging.NewLogger("figimapper").With().Str("run_id", runID).Logger()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn().Msg("received interrupt signal, finishing in-flight chunks")
		cancel()
	}()

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	if err := run(ctx, cfg, runID, logger, collector); err != nil {
		logger.Fatal().Err(err).Msg("mapping run failed")
	}
}

func run(ctx context.Context, cfg *config.Config, runID string, logger zerolog.Logger, collector *metrics.Collector) error {
	values, err := readIdentifiers(cfg.InputFile)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return dispatcher.ErrEmptyInput
	}

	store, closeStore := newCheckpointStore(cfg, runID)
	defer closeStore()

	client := openfigi.NewClient(openfigi.Options{
		APIKey:            cfg.APIKey,
		URL:               cfg.URL,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Transport: openfigi.TransportOptions{
			HTTPProxy:  cfg.HTTPProxy,
			HTTPSProxy: cfg.HTTPSProxy,
			RetryCount: cfg.RetryCount,
		},
	})

	chunks := (len(values) + cfg.APILimit - 1) / cfg.APILimit
	bar := progressbar.NewOptions(chunks,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Mapping chunks"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
	)

	d := dispatcher.New(client, dispatcher.Config{
		APILimit:            cfg.APILimit,
		Workers:             cfg.NumThreads,
		CheckpointEvery:     cfg.CheckpointEvery,
		CheckpointOnFailure: true,
	},
		dispatcher.WithCheckpoint(store.Save),
		dispatcher.WithMetrics(collector),
		dispatcher.WithLogger(logger),
		dispatcher.WithOnOutcome(func(figi.ChunkResult) {
			_ = bar.Add(1)
		}),
	)

	rs, err := d.Submit(ctx, cfg.ParsedIDType(), values)
	if err != nil {
		return err
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if err := export.RenderSummary(os.Stdout, rs, summaryRows); err != nil {
		return err
	}

	if err := export.WriteXLSX(rs.Table(), cfg.OutputFile); err != nil {
		return err
	}

	summary := color.New(color.Bold, color.FgGreen)
	if rs.Matched() < rs.Len() {
		summary = color.New(color.Bold, color.FgYellow)
	}
	summary.Printf("Matched %d of %d identifiers, results written to %s\n", rs.Matched(), rs.Len(), cfg.OutputFile)

	return nil
}

// readIdentifiers reads one identifier per line from path, or stdin when path is empty.
// Blank lines and lines starting with # are skipped.
func readIdentifiers(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parseIdentifiers(r)
}

func parseIdentifiers(r io.Reader) ([]string, error) {
	var values []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values = append(values, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read identifiers: %w", err)
	}
	return values, nil
}

// newCheckpointStore builds the configured store and a func releasing its resources
func newCheckpointStore(cfg *config.Config, runID string) (checkpoint.Store, func()) {
	switch cfg.CheckpointBackend {
	case config.CheckpointRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return checkpoint.NewRedisStore(rdb, runID, cfg.CheckpointTTL), func() { _ = rdb.Close() }
	case config.CheckpointNone:
		return checkpoint.Noop{}, func() {}
	default:
		return checkpoint.NewFileStore(cfg.CheckpointPath), func() {}
	}
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
	}
}

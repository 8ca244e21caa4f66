package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/app"
	"github.com/kailas-cloud/concierge/internal/config"
	"github.com/kailas-cloud/concierge/internal/domain/entity"
	"github.com/kailas-cloud/concierge/internal/domain/summary"
	logpkg "github.com/kailas-cloud/concierge/internal/logger"
	listingrepo "github.com/kailas-cloud/concierge/internal/repository/listing"
	answeruc "github.com/kailas-cloud/concierge/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/concierge/internal/usecase/health"
	"github.com/kailas-cloud/concierge/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/concierge/internal/usecase/retrieval"
)

// setup loads the config and logger named by the global flags.
func setup(c *cli.Context) (config.Config, *zap.Logger, error) {
	env := c.String("env")

	var (
		cfg config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	logger, err := logpkg.New(logpkg.Options{Env: env, Level: level, Service: "concierge-indexer"})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

func buildCommand(c *cli.Context) error {
	bizPath, evtPath := c.String("businesses"), c.String("events")
	if bizPath == "" && evtPath == "" {
		return errors.New("at least one of --businesses or --events is required")
	}
	mode, err := ingest.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}

	var req ingest.BuildRequest
	req.Mode = mode
	if bizPath != "" {
		if req.Businesses, err = listingrepo.ReadBusinesses(bizPath); err != nil {
			return fmt.Errorf("read businesses: %w", err)
		}
	}
	if evtPath != "" {
		if req.Events, err = listingrepo.ReadEvents(evtPath); err != nil {
			return fmt.Errorf("read events: %w", err)
		}
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	embedders := app.NewEmbedders(cfg.Embedding, cfg.Storage.KeyPrefix, store, logger)
	writers := ingest.Writers{
		Combined: app.NewWriter(&cfg, store, cfg.Collections.Combined),
		Business: app.NewWriter(&cfg, store, cfg.Collections.Business),
		Event:    app.NewWriter(&cfg, store, cfg.Collections.Event),
	}

	batchSize, workers := cfg.Index.BatchSize, cfg.Index.Workers
	if c.IsSet("batch-size") {
		batchSize = c.Int("batch-size")
	}
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	svc := ingest.New(embedders.Document, writers, logger).
		WithBatchSize(batchSize).
		WithWorkers(workers)

	fmt.Fprintf(c.App.Writer, "Indexing %d businesses and %d events (%s mode)...\n",
		len(req.Businesses), len(req.Events), mode)

	res, err := svc.Build(ctx, req)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	printBuildResult(c.App.Writer, res)
	return nil
}

func askCommand(c *cli.Context) error {
	raw := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if raw == "" {
		return errors.New("a query is required")
	}
	t, err := entity.Parse(c.String("type"))
	if err != nil {
		return err
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := logpkg.Into(c.Context, logger)
	store, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	embedders := app.NewEmbedders(cfg.Embedding, cfg.Storage.KeyPrefix, store, logger)
	cols := app.NewCollections(&cfg, store, embedders.Query)
	rc, err := app.SelectContext(ctx, cols.Combined, cols.Business, cols.Event, logger)
	if err != nil {
		return err
	}

	retrieval := retrievaluc.New(rc, nil).
		WithTimeout(cfg.Retrieval.SearchTimeout)
	ans, err := answeruc.New(retrieval, summary.New()).Ask(ctx, raw, t)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	printAnswer(c.App.Writer, ans)
	return nil
}

func statusCommand(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := app.OpenStore(c.Context, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	embedders := app.NewEmbedders(cfg.Embedding, cfg.Storage.KeyPrefix, nil, logger)
	cols := app.NewCollections(&cfg, store, embedders.Query)
	report := healthuc.New(store, embedders.Provider, cols.Combined, cols.Business, cols.Event).Check(c.Context)

	printReport(c.App.Writer, report)
	if report.Status == healthuc.Unhealthy {
		return errors.New("database unreachable")
	}
	return nil
}

func printBuildResult(w io.Writer, res ingest.BuildResult) {
	fmt.Fprintf(w, "Indexed %d businesses and %d events in %s\n", res.Businesses, res.Events, res.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  skipped: %d businesses, %d events\n", res.SkippedBusinesses, res.SkippedEvents)
	fmt.Fprintf(w, "  linked events: %d\n", res.LinkedEvents)
	for _, name := range sortedKeys(res.Collections) {
		fmt.Fprintf(w, "  %s: %d documents\n", name, res.Collections[name])
	}
	fmt.Fprintf(w, "  embedding tokens: %d\n", res.Tokens)
}

func printAnswer(w io.Writer, ans answeruc.Answer) {
	fmt.Fprintf(w, "Q: %s\nA: %s\n", ans.Query, ans.Answer)
	for i := range ans.Results {
		r := &ans.Results[i]
		fmt.Fprintf(w, "\n%d. [%s] %s (score %s)\n", i+1, r.Type, r.Name, r.Score)
		if r.Location != "" {
			fmt.Fprintf(w, "   Location: %s\n", r.Location)
		}
		if r.IsEvent() && r.Date != "" {
			fmt.Fprintf(w, "   When: %s\n", strings.TrimSpace(r.Date+" "+r.Time))
		}
		if r.VenueInfo != "" {
			fmt.Fprintf(w, "   Venue: %s\n", r.VenueInfo)
		}
		for _, e := range r.UpcomingEvents {
			fmt.Fprintf(w, "   - %s\n", e)
		}
		if r.Description != "" {
			fmt.Fprintf(w, "   %s\n", truncate(r.Description, 160))
		}
	}
}

func printReport(w io.Writer, report healthuc.Report) {
	fmt.Fprintf(w, "status: %s\n", report.Status)

	for _, name := range sortedKeys(report.Checks) {
		line := fmt.Sprintf("  %s: %s", name, report.Checks[name])
		if col, ok := strings.CutPrefix(name, "collection:"); ok {
			if n, ok := report.Documents[col]; ok {
				line += fmt.Sprintf(" (%d documents)", n)
			}
		}
		fmt.Fprintln(w, line)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

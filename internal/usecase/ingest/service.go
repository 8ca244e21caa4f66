// Package ingest turns business and event listings into indexed documents.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/domain/document"
	"github.com/kailas-cloud/concierge/internal/domain/listing"
)

// Mode selects the collection layout written by Build.
type Mode string

// Build modes.
const (
	ModeCombined Mode = "combined"
	ModeSplit    Mode = "split"
)

// ParseMode converts CLI input to a Mode. Empty input means combined.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeCombined:
		return ModeCombined, nil
	case ModeSplit:
		return ModeSplit, nil
	default:
		return "", fmt.Errorf("unknown build mode %q (want combined or split)", s)
	}
}

// Defaults for embedding batches.
const (
	DefaultBatchSize = 64
	DefaultWorkers   = 4
)

// Writers are the target collections. Combined is used in combined mode,
// Business and Event in split mode.
type Writers struct {
	Combined DocumentWriter
	Business DocumentWriter
	Event    DocumentWriter
}

// BuildRequest is one indexing run.
type BuildRequest struct {
	Businesses []listing.Business
	Events     []listing.Event
	Mode       Mode
}

// BuildResult reports what a run wrote.
type BuildResult struct {
	Businesses        int
	Events            int
	SkippedBusinesses int
	SkippedEvents     int
	LinkedEvents      int
	// Collections maps collection name to written document count.
	Collections map[string]int
	Tokens      int
	Duration    time.Duration
}

// Service builds collections from listings.
type Service struct {
	embed     Embedder
	writers   Writers
	batchSize int
	workers   int
	logger    *zap.Logger
}

// New creates an ingest service.
func New(embed Embedder, writers Writers, logger *zap.Logger) *Service {
	return &Service{
		embed:     embed,
		writers:   writers,
		batchSize: DefaultBatchSize,
		workers:   DefaultWorkers,
		logger:    logger,
	}
}

// WithBatchSize sets the number of pages per embedding request.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithWorkers sets the number of concurrent embedding batches.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

type target struct {
	writer DocumentWriter
	docs   []document.Document
}

// Build cleans and links the listings, then drops, recreates and fills the
// target collections. A collection with nothing to write is left untouched.
func (s *Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	start := time.Now()

	mode := req.Mode
	if mode == "" {
		mode = ModeCombined
	}
	if err := s.checkWriters(mode); err != nil {
		return BuildResult{}, err
	}

	res := BuildResult{Collections: make(map[string]int)}
	businesses, events := s.prepare(req, &res)

	var targets []target
	switch mode {
	case ModeCombined:
		all := make([]document.Document, 0, len(businesses)+len(events))
		all = append(all, businesses...)
		all = append(all, events...)
		targets = []target{{s.writers.Combined, all}}
	case ModeSplit:
		targets = []target{{s.writers.Business, businesses}, {s.writers.Event, events}}
	}

	for _, t := range targets {
		if len(t.docs) == 0 {
			s.logger.Warn("nothing to index", zap.String("collection", t.writer.Name()))
			continue
		}
		tokens, err := s.write(ctx, t)
		if err != nil {
			return BuildResult{}, fmt.Errorf("index %s: %w", t.writer.Name(), err)
		}
		res.Collections[t.writer.Name()] = len(t.docs)
		res.Tokens += tokens
	}

	res.Duration = time.Since(start)
	s.logger.Info("index build completed",
		zap.String("mode", string(mode)),
		zap.Int("businesses", res.Businesses),
		zap.Int("events", res.Events),
		zap.Int("skipped_businesses", res.SkippedBusinesses),
		zap.Int("skipped_events", res.SkippedEvents),
		zap.Int("linked_events", res.LinkedEvents),
		zap.Int("tokens", res.Tokens),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (s *Service) checkWriters(mode Mode) error {
	switch mode {
	case ModeCombined:
		if s.writers.Combined == nil {
			return errors.New("combined mode requires a combined collection")
		}
	case ModeSplit:
		if s.writers.Business == nil || s.writers.Event == nil {
			return errors.New("split mode requires business and event collections")
		}
	default:
		return fmt.Errorf("unknown build mode %q", mode)
	}
	return nil
}

// prepare cleans rows, links events to venues and renders documents.
func (s *Service) prepare(req BuildRequest, res *BuildResult) (businesses, events []document.Document) {
	kept := make([]listing.Business, 0, len(req.Businesses))
	for _, b := range req.Businesses {
		if cb, ok := cleanBusiness(b); ok {
			kept = append(kept, cb)
		}
	}
	keptEvents := make([]listing.Event, 0, len(req.Events))
	for _, e := range req.Events {
		if ce, ok := cleanEvent(e); ok {
			keptEvents = append(keptEvents, ce)
		}
	}
	res.SkippedBusinesses = len(req.Businesses) - len(kept)
	res.SkippedEvents = len(req.Events) - len(keptEvents)

	matches := LinkVenues(keptEvents, kept)
	byVenue := eventsByVenue(matches)

	businesses = make([]document.Document, len(kept))
	for i, b := range kept {
		linked := make([]listing.Event, 0, len(byVenue[i]))
		for _, ei := range byVenue[i] {
			linked = append(linked, keptEvents[ei])
		}
		businesses[i] = BusinessDocument(b, linked)
	}

	events = make([]document.Document, len(keptEvents))
	for i, e := range keptEvents {
		var venue *listing.Business
		if m := matches[i]; m.Linked() {
			venue = &kept[m.Business]
			res.LinkedEvents++
		}
		events[i] = EventDocument(e, venue)
	}

	res.Businesses = len(businesses)
	res.Events = len(events)
	return businesses, events
}

// write recreates the collection and embeds pages batch by batch on a worker pool.
// The first failing batch cancels the remaining ones.
func (s *Service) write(ctx context.Context, t target) (int, error) {
	if err := t.writer.Recreate(ctx); err != nil {
		return 0, fmt.Errorf("recreate: %w", err)
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		tokens   int
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for off := 0; off < len(t.docs); off += s.batchSize {
		batch := t.docs[off:min(off+s.batchSize, len(t.docs))]
		first := off

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			n, err := s.writeBatch(ctx, t.writer, batch)
			if err != nil {
				fail(fmt.Errorf("batch at %d: %w", first, err))
				return
			}
			mu.Lock()
			tokens += n
			mu.Unlock()
			s.logger.Debug("batch indexed",
				zap.String("collection", t.writer.Name()),
				zap.Int("offset", first),
				zap.Int("size", len(batch)),
			)
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("submit batch at %d: %w", first, submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return 0, firstErr
	}
	return tokens, nil
}

func (s *Service) writeBatch(ctx context.Context, w DocumentWriter, docs []document.Document) (int, error) {
	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Content()
	}

	emb, err := domain.BatchEmbed(ctx, s.embed, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(emb.Embeddings) != len(docs) {
		return 0, fmt.Errorf("embed: got %d vectors for %d pages", len(emb.Embeddings), len(docs))
	}

	items := make([]document.Embedded, len(docs))
	for i := range docs {
		items[i] = document.Embedded{Document: docs[i], Vector: emb.Embeddings[i]}
	}
	if err := w.UpsertBatch(ctx, items); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	return emb.TotalTokens, nil
}

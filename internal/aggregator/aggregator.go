package aggregator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/source"
)

const DefaultLimit = 20

type Config struct {
	// DefaultLimit caps the merged result when the query has no limit.
	DefaultLimit int `mapstructure:"default-limit"`
	// SourceTimeout bounds every adapter call independently. Zero leaves it to the adapter.
	SourceTimeout time.Duration `mapstructure:"source-timeout"`
	// MaxConcurrency limits parallel adapter calls. Zero means all at once.
	MaxConcurrency int `mapstructure:"max-concurrency"`
}

// SourceResult is the settled outcome of one adapter call.
type SourceResult struct {
	Source  string
	Records []listing.Record
	Err     error
	Elapsed time.Duration
}

func (r SourceResult) OK() bool {
	return r.Err == nil
}

type Aggregator struct {
	adapters []source.Adapter
	cfg      Config
	logger   *zap.Logger
}

func New(adapters []source.Adapter, cfg Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}

	registered := make([]source.Adapter, len(adapters))
	copy(registered, adapters)

	return &Aggregator{
		adapters: registered,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "aggregator")),
	}
}

// Search queries every adapter and merges the successful results.
// Failing sources are dropped; only an invalid query is returned as an error.
func (a *Aggregator) Search(ctx context.Context, query listing.SearchQuery) ([]listing.Record, error) {
	records, _, err := a.SearchDetailed(ctx, query)
	return records, err
}

// SearchDetailed is Search that also reports the outcome of each source in registration order.
func (a *Aggregator) SearchDetailed(ctx context.Context, query listing.SearchQuery) ([]listing.Record, []SourceResult, error) {
	if err := query.Validate(); err != nil {
		return nil, nil, err
	}

	started := time.Now()
	results := a.settle(ctx, query)

	merged := make([]listing.Record, 0)
	for _, res := range results {
		if !res.OK() {
			a.logger.Warn("source failed",
				zap.String("source", res.Source),
				zap.Duration("elapsed", res.Elapsed),
				zap.Error(res.Err),
			)
			continue
		}
		a.logger.Debug("source done",
			zap.String("source", res.Source),
			zap.Int("count", len(res.Records)),
			zap.Duration("elapsed", res.Elapsed),
		)
		merged = append(merged, res.Records...)
	}

	limit := a.cfg.DefaultLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}

	a.logger.Info("search finished",
		zap.String("query", query.Query),
		zap.Int("sources", len(results)),
		zap.Int("results", len(merged)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return merged, results, nil
}

// settle runs every adapter and waits for all of them. Each task owns its slot in
// results and never returns an error, so one failure cancels nothing.
func (a *Aggregator) settle(ctx context.Context, query listing.SearchQuery) []SourceResult {
	results := make([]SourceResult, len(a.adapters))

	g := new(errgroup.Group)
	if a.cfg.MaxConcurrency > 0 {
		g.SetLimit(a.cfg.MaxConcurrency)
	}

	for i, adapter := range a.adapters {
		g.Go(func() error {
			results[i] = a.run(ctx, adapter, query)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type outcome struct {
	records []listing.Record
	err     error
}

// run calls one adapter under the source timeout. An adapter that ignores
// cancellation is abandoned when the timeout fires.
func (a *Aggregator) run(ctx context.Context, adapter source.Adapter, query listing.SearchQuery) SourceResult {
	res := SourceResult{Source: adapter.Name()}
	started := time.Now()

	if a.cfg.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.SourceTimeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: adapter panicked: %v", listing.ErrSourceUnavailable, r)}
			}
		}()
		records, err := adapter.Search(ctx, query)
		done <- outcome{records: records, err: err}
	}()

	select {
	case out := <-done:
		res.Records, res.Err = out.records, out.err
	case <-ctx.Done():
		res.Err = fmt.Errorf("%w: %v", listing.ErrSourceUnavailable, ctx.Err())
	}

	if res.Err != nil {
		res.Records = nil
	}
	res.Elapsed = time.Since(started)

	return res
}

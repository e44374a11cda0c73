package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/aggregator"
	"github.com/spigell/jobhound/internal/ai"
	"github.com/spigell/jobhound/internal/filtering"
	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/logger"
	"github.com/spigell/jobhound/internal/matcher"
)

// Searcher is satisfied by *aggregator.Aggregator.
type Searcher interface {
	SearchDetailed(ctx context.Context, query listing.SearchQuery) ([]listing.Record, []aggregator.SourceResult, error)
}

// Ranker is satisfied by *matcher.Matcher.
type Ranker interface {
	Rank(records []listing.Record, profile matcher.Profile) []listing.Record
}

// Runner is satisfied by *Pipeline.
type Runner interface {
	Run(ctx context.Context, query listing.SearchQuery, profile matcher.Profile, steps []filtering.Filter) (*Result, error)
}

type Config struct {
	Filters  filtering.Config
	Reviewer *ai.Reviewer
}

// Result is the outcome of one pipeline execution.
type Result struct {
	Query    listing.SearchQuery
	Listings *listing.Listings
	Sources  []aggregator.SourceResult
}

// Pipeline runs search, ranking and the post-rank filters in that order.
type Pipeline struct {
	searcher Searcher
	ranker   Ranker
	cfg      Config
	logger   *zap.Logger
}

func New(searcher Searcher, ranker Ranker, cfg Config, l *zap.Logger) *Pipeline {
	if l == nil {
		l = zap.NewNop()
	}
	return &Pipeline{
		searcher: searcher,
		ranker:   ranker,
		cfg:      cfg,
		logger:   l.With(zap.String("component", "pipeline")),
	}
}

// Run executes the pipeline. Filters keep per-run state, so callers pass a
// fresh set of steps each time; nil means filtering.Default().
func (p *Pipeline) Run(ctx context.Context, query listing.SearchQuery, profile matcher.Profile, steps []filtering.Filter) (*Result, error) {
	if steps == nil {
		steps = filtering.Default()
	}

	p.logger.Info("starting the search", logger.QueryFields(query)...)

	records, sources, err := p.searcher.SearchDetailed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	ranked := p.ranker.Rank(records, profile)

	cfg := p.cfg.Filters
	deps := filtering.Deps{
		Logger:   p.logger,
		Profile:  profile,
		Reviewer: p.cfg.Reviewer,
	}

	filtered, err := filtering.Run(ctx, &cfg, deps, steps, listing.NewListings(ranked))
	if err != nil {
		return nil, fmt.Errorf("filtering: %w", err)
	}

	p.logger.Info("pipeline finished",
		zap.Int("found", len(records)),
		zap.Int("left", filtered.Len()),
	)

	return &Result{Query: query, Listings: filtered, Sources: sources}, nil
}

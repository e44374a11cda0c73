// Package scheduler repeats a search on a cron schedule and reports listings
// that were not seen in earlier runs.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/logger"
	"github.com/spigell/jobhound/internal/matcher"
	"github.com/spigell/jobhound/internal/pipeline"
)

const DefaultSchedule = "@every 1h"

type Config struct {
	Schedule string `mapstructure:"schedule"`
}

// Scheduler wraps robfig/cron. Runs never overlap.
type Scheduler struct {
	cron     *cron.Cron
	runner   pipeline.Runner
	schedule string
	query    listing.SearchQuery
	profile  matcher.Profile
	logger   *zap.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func New(runner pipeline.Runner, cfg Config, query listing.SearchQuery, profile matcher.Profile, l *zap.Logger) (*Scheduler, error) {
	if l == nil {
		l = zap.NewNop()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", cfg.Schedule, err)
	}

	l = l.With(zap.String("component", "scheduler"))
	cl := cronLogger{l.Sugar()}

	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		runner:   runner,
		schedule: cfg.Schedule,
		query:    query,
		profile:  profile,
		logger:   l,
		seen:     make(map[string]struct{}),
	}, nil
}

// Run executes one search immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.Tick(ctx)

	s.cron.Start()
	s.logger.Info("cron started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("cron stopped")
	return nil
}

// Tick runs the search once and returns the listings not seen before.
func (s *Scheduler) Tick(ctx context.Context) []listing.Record {
	res, err := s.runner.Run(ctx, s.query, s.profile, nil)
	if err != nil {
		s.logger.Error("scheduled search failed", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	var fresh []listing.Record
	for _, rec := range res.Listings.Items {
		if _, ok := s.seen[rec.ListingURL]; ok {
			continue
		}
		s.seen[rec.ListingURL] = struct{}{}
		fresh = append(fresh, rec)
	}
	total := len(s.seen)
	s.mu.Unlock()

	for _, rec := range fresh {
		s.logger.Info("new listing", logger.RecordFields(rec)...)
	}
	s.logger.Info("scheduled search finished",
		zap.Int("found", res.Listings.Len()),
		zap.Int("new", len(fresh)),
		zap.Int("seen", total),
	)

	return fresh
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

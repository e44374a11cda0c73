package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/matcher"
)

type minimumScoreFilter struct {
	toggle
	minimum int
}

// NewMinimumScore creates a filter that drops ranked listings scoring below the configured minimum.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumScore < 0 || cfg.MinimumScore > matcher.MaxScore {
		return fmt.Errorf("minimum score must be within [0, %d], got %d", matcher.MaxScore, cfg.MinimumScore)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, l *listing.Listings) (*listing.Listings, Step, error) {
	initial := l.Len()
	if f.minimum == 0 {
		return l, stepOf(initial, l), nil
	}

	removed := l.RemoveFunc(func(r listing.Record) bool {
		return r.Score() < f.minimum
	})
	if len(removed) > 0 {
		deps.Logger.Debug("excluding listings below minimum score",
			zap.Int("minimum_score", f.minimum),
			zap.Strings("excluded_listings", removed),
		)
	}

	return l, stepOf(initial, l), nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.Itoa(f.minimum)},
	}
}

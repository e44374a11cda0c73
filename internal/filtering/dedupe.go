package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
)

type dedupeFilter struct {
	toggle
	active bool
}

// NewDedupe creates a filter that keeps only the first record for each listing URL.
func NewDedupe() Filter {
	return &dedupeFilter{}
}

func (f *dedupeFilter) Name() string { return "dedupe" }

func (f *dedupeFilter) Validate(cfg *Config) error {
	f.active = cfg != nil && cfg.Dedupe
	return nil
}

func (f *dedupeFilter) Apply(_ context.Context, deps Deps, l *listing.Listings) (*listing.Listings, Step, error) {
	initial := l.Len()
	if !f.active {
		return l, stepOf(initial, l), nil
	}

	seen := make(map[string]struct{}, initial)
	removed := l.RemoveFunc(func(r listing.Record) bool {
		if _, ok := seen[r.ListingURL]; ok {
			return true
		}
		seen[r.ListingURL] = struct{}{}
		return false
	})

	if len(removed) > 0 {
		deps.Logger.Debug("excluding duplicated listings", zap.Strings("excluded_listings", removed))
	}

	return l, stepOf(initial, l), nil
}

func (f *dedupeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled() && f.active, Reason: f.reason}
}

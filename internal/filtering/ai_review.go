package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
)

type aiReviewFilter struct {
	toggle
	config AIConfig
}

// NewAIReview creates the AI review step. It annotates listings and, when
// configured, drops those the model judged unfit.
func NewAIReview() Filter {
	return &aiReviewFilter{}
}

func (f *aiReviewFilter) Name() string { return "ai_review" }

func (f *aiReviewFilter) Validate(cfg *Config) error {
	f.config = AIConfig{}
	if cfg != nil {
		f.config = cfg.AI
	}
	if !f.config.Enabled {
		return nil
	}
	if strings.TrimSpace(f.config.Provider) == "" {
		return fmt.Errorf("ai provider is required when ai review is enabled")
	}
	if f.config.Top < 0 {
		return fmt.Errorf("ai top must not be negative, got %d", f.config.Top)
	}
	return nil
}

func (f *aiReviewFilter) Apply(ctx context.Context, deps Deps, l *listing.Listings) (*listing.Listings, Step, error) {
	initial := l.Len()
	if !f.config.Enabled {
		return l, stepOf(initial, l), nil
	}
	if deps.Reviewer == nil {
		deps.Logger.Info("ai reviewer is not configured; skipping ai_review filter")
		return l, stepOf(initial, l), nil
	}

	l.Items = deps.Reviewer.Review(ctx, l.Items, deps.Profile)

	if f.config.DropUnfit {
		rejected := l.RemoveFunc(func(r listing.Record) bool {
			return r.Review != nil && r.Review.Error == "" && !r.Review.Fit
		})
		if len(rejected) > 0 {
			deps.Logger.Info("listings rejected by AI provider",
				zap.Strings("excluded_listings", rejected),
				zap.Int("listings_left", l.Len()),
			)
		}
	}

	return l, stepOf(initial, l), nil
}

func (f *aiReviewFilter) Status() Status {
	details := map[string]string{
		"top":        strconv.Itoa(f.config.Top),
		"drop_unfit": strconv.FormatBool(f.config.DropUnfit),
	}
	if f.config.Provider != "" {
		details["provider"] = f.config.Provider
	}
	if f.config.Model != "" {
		details["model"] = f.config.Model
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled() && f.config.Enabled, Reason: f.reason, Details: details}
}

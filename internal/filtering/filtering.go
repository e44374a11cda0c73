package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/ai"
	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/matcher"
)

// Filter represents a single post-rank step applied to listings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, l *listing.Listings) (*listing.Listings, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger   *zap.Logger
	Profile  matcher.Profile
	Reviewer *ai.Reviewer
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

func stepOf(initial int, l *listing.Listings) Step {
	return Step{Initial: initial, Dropped: initial - l.Len(), Left: l.Len()}
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	Dedupe       bool     `mapstructure:"dedupe"`
	Companies    []string `mapstructure:"companies"`
	RedFlags     []string `mapstructure:"red-flags"`
	ExcludeFile  string   `mapstructure:"exclude-file"`
	MinimumScore int      `mapstructure:"minimum-score"`
	AI           AIConfig `mapstructure:"-"`
}

// AIConfig stores the parts of AI configuration used by the ai_review step.
type AIConfig struct {
	Enabled   bool
	Provider  string
	Model     string
	Top       int
	DropUnfit bool
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns every known filter in execution order.
func Default() []Filter {
	return []Filter{
		NewDedupe(),
		NewCompanies(),
		NewRedFlags(),
		NewExcludeFile(),
		NewMinimumScore(),
		NewAIReview(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// DisableAll disables every step. Used when filtering is switched off entirely.
func DisableAll(steps []Filter, reason string) {
	for _, step := range steps {
		step.Disable(reason)
	}
}

// Run validates and then executes the supplied filters sequentially.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, l *listing.Listings) (*listing.Listings, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, l)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		l = next
	}

	return l, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// toggle is embedded by filters to implement Disable and IsEnabled.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

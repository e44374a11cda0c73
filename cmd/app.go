package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/aggregator"
	"github.com/spigell/jobhound/internal/ai"
	"github.com/spigell/jobhound/internal/ai/gemini"
	"github.com/spigell/jobhound/internal/detail"
	"github.com/spigell/jobhound/internal/filtering"
	"github.com/spigell/jobhound/internal/logger"
	"github.com/spigell/jobhound/internal/matcher"
	"github.com/spigell/jobhound/internal/pipeline"
	"github.com/spigell/jobhound/internal/secrets"
	"github.com/spigell/jobhound/internal/source"
)

// application holds the components shared by every command.
type application struct {
	config   *Config
	logger   *zap.Logger
	matcher  *matcher.Matcher
	fetcher  *detail.Fetcher
	pipeline *pipeline.Pipeline
}

// newApplication builds the logger and every component from the viper config.
// Unrecoverable errors terminate the process.
func newApplication(ctx context.Context) *application {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	client := &http.Client{}

	cfgs := make([]source.Config, 0, len(config.Sources))
	for _, cfg := range config.Sources {
		if cfg.Timeout <= 0 {
			cfg.Timeout = config.HTTP.Timeout
		}
		if cfg.UserAgent == "" {
			cfg.UserAgent = config.HTTP.UserAgent
		}
		cfgs = append(cfgs, cfg)
	}

	registry, err := source.Build(cfgs, client, logger)
	if err != nil {
		logger.Fatal("building sources", zap.Error(err))
	}
	if registry.Len() == 0 {
		logger.Fatal("no sources enabled", zap.String("hint", "enable at least one entry under sources"))
	}
	logger.Debug("sources enabled", zap.Strings("sources", registry.Names()))

	agg := aggregator.New(registry.Adapters(), config.Aggregator, logger)
	m := matcher.New(config.Ranking, logger)
	fetcher := detail.New(client, detail.Config{
		UserAgent: config.HTTP.UserAgent,
		Timeout:   config.HTTP.DetailTimeout,
	}, logger)

	filters := config.Filters
	filters.AI = filtering.AIConfig{
		Enabled:   config.AI.Enabled,
		Provider:  config.AI.Provider,
		Model:     config.AI.Gemini.Model,
		Top:       config.AI.Top,
		DropUnfit: config.AI.DropUnfit,
	}

	var reviewer *ai.Reviewer
	if config.AI.Enabled {
		reviewer, err = newReviewer(ctx, &config.AI, logger)
		if err != nil {
			logger.Warn("skipping AI review", zap.Error(err))
		}
	}

	p := pipeline.New(agg, m, pipeline.Config{
		Filters:  filters,
		Reviewer: reviewer,
	}, logger)

	return &application{
		config:   config,
		logger:   logger,
		matcher:  m,
		fetcher:  fetcher,
		pipeline: p,
	}
}

func newReviewer(ctx context.Context, cfg *AIConfig, l *zap.Logger) (*ai.Reviewer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
		Value: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.api-key-file or GEMINI_API_KEY)", err)
	}

	aiLogger := logger.WithAIFields(l, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, aiLogger)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	evaluator := gemini.NewEvaluator(generator, minScore, cfg.Gemini.MaxLogLength,
		aiLogger.With(zap.Float64("minimum_fit_score", minScore)),
	)
	evaluator.SetPromptOverrides(cfg.Gemini.Prompt)

	return ai.NewReviewer(evaluator, cfg.Top, aiLogger), nil
}

// filterSteps returns a fresh set of filter steps, all disabled when noFilters is set.
func filterSteps(noFilters bool) []filtering.Filter {
	steps := filtering.Default()
	if noFilters {
		filtering.DisableAll(steps, "disabled by --no-filters flag")
	}
	return steps
}

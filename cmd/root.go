package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/jobhound/internal/aggregator"
	"github.com/spigell/jobhound/internal/ai/gemini"
	"github.com/spigell/jobhound/internal/detail"
	"github.com/spigell/jobhound/internal/filtering"
	"github.com/spigell/jobhound/internal/listing"
	"github.com/spigell/jobhound/internal/matcher"
	"github.com/spigell/jobhound/internal/scheduler"
	"github.com/spigell/jobhound/internal/source"
)

const (
	appName = "jobhound"
)

type Config struct {
	Search     listing.SearchQuery `mapstructure:"search"`
	Profile    matcher.Profile     `mapstructure:"profile"`
	HTTP       HTTPConfig          `mapstructure:"http"`
	Aggregator aggregator.Config   `mapstructure:"aggregator"`
	Sources    []source.Config     `mapstructure:"sources"`
	Ranking    matcher.Weights     `mapstructure:"ranking"`
	Filters    filtering.Config    `mapstructure:"filters"`
	AI         AIConfig            `mapstructure:"ai"`
	Serve      ServeConfig         `mapstructure:"serve"`
	Watch      scheduler.Config    `mapstructure:"watch"`
}

type HTTPConfig struct {
	UserAgent     string        `mapstructure:"user-agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	DetailTimeout time.Duration `mapstructure:"detail-timeout"`
}

type AIConfig struct {
	Enabled         bool         `mapstructure:"enabled"`
	Provider        string       `mapstructure:"provider"`
	APIKey          string       `mapstructure:"api-key" json:"-"`
	APIKeyFile      string       `mapstructure:"api-key-file"`
	Top             int          `mapstructure:"top"`
	DropUnfit       bool         `mapstructure:"drop-unfit"`
	MinimumFitScore float64      `mapstructure:"minimum-fit-score"`
	Gemini          GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	Model        string                 `mapstructure:"model"`
	MaxLogLength int                    `mapstructure:"max-log-length"`
	Prompt       gemini.PromptOverrides `mapstructure:"prompt"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "jobhound searches several job boards at once and ranks the results against your profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobhound.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging and results")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("search.limit", 0)
	viper.SetDefault("search.query", "")
	viper.SetDefault("search.location", "")

	viper.SetDefault("profile.skills", "")
	viper.SetDefault("profile.desired-title", "")

	viper.SetDefault("http.user-agent", source.DefaultUserAgent)
	viper.SetDefault("http.timeout", source.DefaultTimeout)
	viper.SetDefault("http.detail-timeout", detail.DefaultTimeout)

	viper.SetDefault("aggregator.default-limit", aggregator.DefaultLimit)
	viper.SetDefault("aggregator.source-timeout", time.Duration(0))
	viper.SetDefault("aggregator.max-concurrency", 0)

	sources := make([]map[string]interface{}, 0)
	for _, cfg := range source.DefaultConfigs() {
		sources = append(sources, map[string]interface{}{
			"name":        cfg.Name,
			"enabled":     cfg.Enabled,
			"base-url":    cfg.BaseURL,
			"max-results": cfg.MaxResults,
		})
	}
	viper.SetDefault("sources", sources)

	weights := matcher.DefaultWeights()
	viper.SetDefault("ranking.title", weights.Title)
	viper.SetDefault("ranking.skill", weights.Skill)
	viper.SetDefault("ranking.preferred-source", weights.PreferredSource)
	viper.SetDefault("ranking.remote", weights.Remote)
	viper.SetDefault("ranking.max", weights.Max)
	viper.SetDefault("ranking.preferred-sources", weights.PreferredSources)

	viper.SetDefault("filters.dedupe", true)
	viper.SetDefault("filters.companies", []string{})
	viper.SetDefault("filters.red-flags", []string{})
	viper.SetDefault("filters.exclude-file", "")
	viper.SetDefault("filters.minimum-score", 0)

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.api-key", "")
	viper.SetDefault("ai.api-key-file", "")
	viper.SetDefault("ai.top", 5)
	viper.SetDefault("ai.drop-unfit", false)
	viper.SetDefault("ai.minimum-fit-score", 0)
	viper.SetDefault("ai.gemini.model", "")
	viper.SetDefault("ai.gemini.max-log-length", 0)

	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("watch.schedule", scheduler.DefaultSchedule)
}

func initConfig() {
	viper.SetEnvPrefix(strings.ToUpper(appName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
	}

	// Every key has a default, so a missing config file is fine. A broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

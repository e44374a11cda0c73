package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobhound/internal/listing"
)

const (
	// DefaultUserAgent is a realistic desktop browser user agent. Job boards reject obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultTimeout = 10 * time.Second
)

// Adapter fetches and parses listings from a single job board.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query listing.SearchQuery) ([]listing.Record, error)
}

// Config configures one adapter. Zero values fall back to the adapter defaults.
type Config struct {
	Name       string        `mapstructure:"name"`
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base-url"`
	MaxResults int           `mapstructure:"max-results"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user-agent"`
}

func (c Config) withDefaults(d Config) Config {
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

var defaultConfigs = map[string]Config{
	key(IndeedName):         {Name: IndeedName, BaseURL: "https://www.indeed.com", MaxResults: 10},
	key(LinkedInName):       {Name: LinkedInName, BaseURL: "https://www.linkedin.com", MaxResults: 10},
	key(WeWorkRemotelyName): {Name: WeWorkRemotelyName, BaseURL: "https://weworkremotely.com", MaxResults: 5},
	key(RemoteOKName):       {Name: RemoteOKName, BaseURL: "https://remoteok.com", MaxResults: 5},
	key(HeadHunterName):     {Name: HeadHunterName, BaseURL: "https://api.hh.ru", MaxResults: 5},
}

type builder func(cfg Config, client *http.Client, logger *zap.Logger) Adapter

var builders = map[string]builder{
	key(IndeedName):         func(c Config, h *http.Client, l *zap.Logger) Adapter { return NewIndeed(c, h, l) },
	key(LinkedInName):       func(c Config, h *http.Client, l *zap.Logger) Adapter { return NewLinkedIn(c, h, l) },
	key(WeWorkRemotelyName): func(c Config, h *http.Client, l *zap.Logger) Adapter { return NewWeWorkRemotely(c, h, l) },
	key(RemoteOKName):       func(c Config, h *http.Client, l *zap.Logger) Adapter { return NewRemoteOK(c, h, l) },
	key(HeadHunterName):     func(c Config, h *http.Client, l *zap.Logger) Adapter { return NewHeadHunter(c, h, l) },
}

// DefaultConfigs returns configs for every known adapter in the default registration order.
func DefaultConfigs() []Config {
	names := []string{IndeedName, LinkedInName, WeWorkRemotelyName, RemoteOKName, HeadHunterName}
	cfgs := make([]Config, 0, len(names))
	for _, name := range names {
		cfg := defaultConfigs[key(name)]
		cfg.Enabled = true
		cfgs = append(cfgs, cfg)
	}
	return cfgs
}

// Build creates the enabled adapters in configuration order and registers them.
func Build(cfgs []Config, client *http.Client, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{}
	}

	registry := NewRegistry()
	for _, cfg := range cfgs {
		build, ok := builders[key(cfg.Name)]
		if !ok {
			return nil, fmt.Errorf("unknown source %q", cfg.Name)
		}
		if !cfg.Enabled {
			logger.Debug("source disabled", zap.String("source", cfg.Name))
			continue
		}
		if err := registry.Register(build(cfg, client, logger)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// key folds names like "We Work Remotely", "we-work-remotely" and "weworkremotely" together.
func key(name string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(name))
}

// Registry keeps adapters in registration order.
type Registry struct {
	adapters []Adapter
	index    map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

// Register adds an adapter. Names must be unique.
func (r *Registry) Register(adapter Adapter) error {
	if r.index == nil {
		r.index = map[string]int{}
	}
	k := key(adapter.Name())
	if _, ok := r.index[k]; ok {
		return fmt.Errorf("source %s is already registered", adapter.Name())
	}
	r.index[k] = len(r.adapters)
	r.adapters = append(r.adapters, adapter)
	return nil
}

// Resolve returns an adapter by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Adapter, error) {
	if i, ok := r.index[key(name)]; ok {
		return r.adapters[i], nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// Adapters returns a copy of the registered adapters in order.
func (r *Registry) Adapters() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		names = append(names, a.Name())
	}
	return names
}

func (r *Registry) Len() int {
	return len(r.adapters)
}
